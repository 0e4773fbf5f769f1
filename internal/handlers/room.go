package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ktfth/roleta-online/internal/registry"
)

// VerifyPasswordRequest is the body of POST /rooms/{id}/verify.
type VerifyPasswordRequest struct {
	Password string `json:"password"`
}

// VerifyPasswordResponse is returned when the password grants access.
type VerifyPasswordResponse struct {
	Success bool `json:"success"`
}

// RoomNotFoundResponse carries a hint for the lobby page waiting on a room.
type RoomNotFoundResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ListRooms handles GET /rooms: the public room listing. Private rooms are
// excluded and the result never carries a password. On an internal failure
// the caller gets a 500 with an empty list rather than a crash.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error().Interface("panic", rec).Msg("room listing failed")
			h.JSON(w, http.StatusInternalServerError, []struct{}{})
		}
	}()

	w.Header().Set("Cache-Control", "no-cache")
	h.JSON(w, http.StatusOK, h.registry.List())
}

// GetRoom handles GET /rooms/{id}: the pre-join view of a single room.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, ok := h.registry.Get(id)
	if !ok {
		w.Header().Set("Cache-Control", "no-cache")
		h.JSON(w, http.StatusNotFound, RoomNotFoundResponse{
			Error:   "room not found",
			Message: "wait for the creator to start the room",
		})
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	h.JSON(w, http.StatusOK, detail)
}

// VerifyRoomPassword handles POST /rooms/{id}/verify. It shares the
// registry's password gate with the websocket join, so the two can never
// drift apart.
func (h *Handler) VerifyRoomPassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req VerifyPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ok, err := h.registry.VerifyPassword(id, req.Password)
	if err != nil {
		if errors.Is(err, registry.ErrRoomNotFound) {
			h.Error(w, http.StatusNotFound, "room not found")
			return
		}
		h.Error(w, http.StatusInternalServerError, "verification failed")
		return
	}
	if !ok {
		h.Error(w, http.StatusUnauthorized, "wrong password")
		return
	}

	h.JSON(w, http.StatusOK, VerifyPasswordResponse{Success: true})
}
