package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/mise/internal/app/services"
	"github.com/fr0stylo/mise/internal/db"
)

// StatsSource reports tracker counters.
type StatsSource interface {
	Stats() services.ActivityStats
}

// LatencySource reports recent database latency.
type LatencySource interface {
	QueryLatencyStats() []db.QueryLatency
}

// HealthRoutes registers liveness endpoints.
type HealthRoutes struct {
	stats   StatsSource
	latency LatencySource
}

// NewHealthRoutes constructs health routes. latency may be nil.
func NewHealthRoutes(stats StatsSource, latency LatencySource) *HealthRoutes {
	return &HealthRoutes{stats: stats, latency: latency}
}

// RegisterRoutes registers health endpoints.
func (h *HealthRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/healthz", h.handleHealth)
}

type healthResponse struct {
	Status   string                 `json:"status"`
	Activity services.ActivityStats `json:"activity"`
	Database []db.QueryLatency      `json:"database,omitempty"`
}

func (h *HealthRoutes) handleHealth(c echo.Context) error {
	resp := healthResponse{Status: "ok", Activity: h.stats.Stats()}
	if h.latency != nil {
		resp.Database = h.latency.QueryLatencyStats()
	}
	return c.JSON(http.StatusOK, resp)
}
