package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// DependencyCheck probes one backing service.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler reports readiness of the process and its dependencies.
type HealthHandler struct {
	checks  []DependencyCheck
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler over the given checks.
func NewHealthHandler(checks ...DependencyCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for _, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			deps[c.Name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
		} else {
			deps[c.Name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       http.StatusText(status),
		"dependencies": deps,
	})
}
