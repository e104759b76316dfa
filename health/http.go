package health

import (
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

// Response is the body of the detailed health endpoint.
type Response struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Checks    []CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is one component in a Response.
type CheckResponse struct {
	Name     string         `json:"name"`
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// httpStatus maps a status to a probe response code. Degraded still serves.
func httpStatus(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// Liveness answers 200 while the process runs.
func Liveness(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Readiness runs every check and answers with a one-word status.
func Readiness(agg *Aggregator) echo.HandlerFunc {
	return func(c echo.Context) error {
		status := Overall(agg.CheckAll(c.Request().Context()))
		word := map[Status]string{
			StatusHealthy:   "OK",
			StatusDegraded:  "DEGRADED",
			StatusUnhealthy: "UNHEALTHY",
		}[status]
		return c.String(httpStatus(status), word)
	}
}

// Detailed runs every check and answers with a JSON Response.
func Detailed(agg *Aggregator) echo.HandlerFunc {
	return func(c echo.Context) error {
		results := agg.CheckAll(c.Request().Context())
		status := Overall(results)

		resp := Response{
			Status:    status.String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make([]CheckResponse, 0, len(results)),
		}
		for name, r := range results {
			cr := CheckResponse{
				Name:     name,
				Status:   r.Status.String(),
				Message:  r.Message,
				Duration: r.Duration.String(),
				Details:  r.Details,
			}
			if r.Error != nil {
				cr.Error = r.Error.Error()
			}
			resp.Checks = append(resp.Checks, cr)
		}
		sort.Slice(resp.Checks, func(i, j int) bool { return resp.Checks[i].Name < resp.Checks[j].Name })

		return c.JSON(httpStatus(status), resp)
	}
}

// RegisterRoutes mounts the probe endpoints on e.
func RegisterRoutes(e *echo.Echo, agg *Aggregator) {
	e.GET("/healthz", Liveness)
	e.GET("/readyz", Readiness(agg))
	e.GET("/health", Detailed(agg))
}
