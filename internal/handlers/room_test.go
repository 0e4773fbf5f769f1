package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ktfth/roleta-online/internal/api"
	"github.com/ktfth/roleta-online/internal/handlers"
	"github.com/ktfth/roleta-online/internal/models"
	"github.com/ktfth/roleta-online/internal/registry"
	"github.com/ktfth/roleta-online/internal/signaling"
)

type nopConn struct{}

func (nopConn) Send([]byte) bool { return true }

func newTestRouter(t *testing.T) (http.Handler, *registry.Registry) {
	t.Helper()
	logger := zerolog.Nop()
	reg := registry.New(logger)
	relay := signaling.NewRelay(reg, logger)
	h := handlers.NewHandler(reg, relay, logger)
	return api.NewRouter(logger, h, []string{"*"}), reg
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListRoomsEmpty(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/rooms", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var listed []models.RoomSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty listing, got %d entries", len(listed))
	}
}

func TestListRoomsNeverLeaksPasswords(t *testing.T) {
	router, reg := newTestRouter(t)

	if _, err := reg.Create(registry.RoomParams{ID: "pub", UserName: "Alice", HasCamera: true}, nopConn{}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Create(registry.RoomParams{ID: "priv", UserName: "Bob", IsPrivate: true, Password: "segredo"}, nopConn{}); err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, router, http.MethodGet, "/rooms", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if strings.Contains(strings.ToLower(body), "password") || strings.Contains(body, "segredo") {
		t.Fatalf("listing leaked a password: %s", body)
	}

	var listed []models.RoomSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].ID != "pub" {
		t.Fatalf("expected only the public room, got %v", listed)
	}
}

func TestGetRoom(t *testing.T) {
	router, reg := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/rooms/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var notFound map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &notFound); err != nil {
		t.Fatal(err)
	}
	if notFound["error"] == "" || notFound["message"] == "" {
		t.Fatalf("expected error and message fields, got %v", notFound)
	}

	if _, err := reg.Create(registry.RoomParams{ID: "sala", UserName: "Alice", HasCamera: true}, nopConn{}); err != nil {
		t.Fatal(err)
	}

	rec = doJSON(t, router, http.MethodGet, "/rooms/sala", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var detail models.RoomDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatal(err)
	}
	if detail.ID != "sala" || detail.UserName != "Alice" || !detail.HasCamera || !detail.IsTransmitting {
		t.Fatalf("unexpected detail: %+v", detail)
	}
}

func TestVerifyRoomPassword(t *testing.T) {
	router, reg := newTestRouter(t)

	if _, err := reg.Create(registry.RoomParams{ID: "open", UserName: "A"}, nopConn{}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Create(registry.RoomParams{ID: "locked", UserName: "B", IsPrivate: true, Password: "p"}, nopConn{}); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"public room accepts anything", "/rooms/open/verify", `{"password":""}`, http.StatusOK},
		{"correct password", "/rooms/locked/verify", `{"password":"p"}`, http.StatusOK},
		{"wrong password", "/rooms/locked/verify", `{"password":"x"}`, http.StatusUnauthorized},
		{"missing room", "/rooms/ghost/verify", `{"password":"p"}`, http.StatusNotFound},
		{"malformed body", "/rooms/locked/verify", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := doJSON(t, router, http.MethodPost, tc.path, tc.body)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.name, tc.status, rec.Code, rec.Body.String())
		}
		if tc.status == http.StatusOK && !strings.Contains(rec.Body.String(), `"success":true`) {
			t.Fatalf("%s: expected success body, got %s", tc.name, rec.Body.String())
		}
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var health handlers.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" {
		t.Fatalf("unexpected health: %+v", health)
	}
}
