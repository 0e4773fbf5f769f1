package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/ktfth/roleta-online/internal/registry"
	"github.com/ktfth/roleta-online/internal/signaling"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	registry *registry.Registry
	relay    *signaling.Relay
	logger   zerolog.Logger
}

// NewHandler creates a new Handler backed by the given registry and relay.
func NewHandler(reg *registry.Registry, relay *signaling.Relay, logger zerolog.Logger) *Handler {
	return &Handler{registry: reg, relay: relay, logger: logger}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// sanitizeName trims and limits a display name to 100 characters, removing
// control characters.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)

	// Remove control characters
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	// Limit to 100 characters
	if len(name) > 100 {
		name = name[:100]
	}

	return name
}
