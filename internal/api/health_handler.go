package api

import (
	"net/http"

	"github.com/jurisai/jurisai-api/internal/api/shared"
)

// HealthResponse is the body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Advisor string `json:"advisor"`
}

// HealthHandler reports service liveness and whether the advisor is
// configured.
type HealthHandler struct {
	advisorReady bool
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(advisorReady bool) *HealthHandler {
	return &HealthHandler{advisorReady: advisorReady}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	advisor := "ready"
	if !h.advisorReady {
		advisor = "unavailable"
	}
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Advisor: advisor,
	})
}
