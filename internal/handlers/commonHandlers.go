package handlers

import (
	"net/http"
	"time"

	"docpdf/internal/database"
	"docpdf/internal/utils"
)

const apiVersion = "1.0.0"

type CommonHandler struct {
	db database.Service
}

func NewCommonHandler(db database.Service) *CommonHandler {
	return &CommonHandler{db: db}
}

func (h *CommonHandler) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "DocPDF Manager API"})
}

// HealthHandler reports per-dependency status. Any failing dependency
// degrades the whole endpoint to 503 so load balancers stop routing here.
func (h *CommonHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	checks := h.db.Health(r.Context())

	status := "healthy"
	code := http.StatusOK
	for _, ok := range checks {
		if !ok {
			status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	utils.RespondWithJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  checks,
		"version":   apiVersion,
	})
}
