package httpapi

import (
	"context"
	"net/http"
	"time"
)

// healthTimeout bounds every dependency ping.
const healthTimeout = 2 * time.Second

// Check pings one dependency.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type healthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Health answers 200 when every check passes and 503 otherwise.
func Health(service string, checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Service: service}
		status := http.StatusOK

		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for _, c := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			err := c.Ping(ctx)
			cancel()
			if err != nil {
				resp.Checks[c.Name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[c.Name] = "ok"
		}

		WriteJSON(w, status, resp)
	}
}
