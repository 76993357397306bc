package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/parisxmas/OxiDB/qrform/internal/models"
)

// HealthCheck reports a problem with a dependency, or nil.
type HealthCheck func() error

type HealthHandler struct {
	checks []HealthCheck
	now    func() time.Time
}

func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, now: time.Now}
}

// Health always answers 200; a failing check turns status into DEGRADED.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, message := "OK", "Server is running"
	for _, check := range h.checks {
		if err := check(); err != nil {
			log.Printf("Warning: health check failed: %v", err)
			status, message = "DEGRADED", "Server is running; last write to the submission store failed"
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"message":   message,
		"timestamp": models.FormatTimestamp(h.now()),
	})
}
