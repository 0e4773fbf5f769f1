package handlers

import (
	"net/http"
	"time"
)

const version = "0.1.0"

var startedAt = time.Now()

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Rooms     int    `json:"rooms"`
	Timestamp string `json:"timestamp"`
}

// Health handles the health check endpoint. There are no external
// dependencies to probe; the registry lives in process memory, so answering
// at all means the service is healthy.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   version,
		Uptime:    time.Since(startedAt).Round(time.Second).String(),
		Rooms:     h.registry.Len(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
