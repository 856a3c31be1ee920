package public

import (
	"net/http"

	"coordination-api/coordination/types"

	"github.com/labstack/echo/v4"
)

// StatsResponse wraps the raw counters with the derived mean latency.
type StatsResponse struct {
	types.IntegrationStats
	AverageLatencyMs string `json:"average_latency_ms"`
}

func (s *Server) getStats(ctx echo.Context) error {
	st, err := s.keeper.GetStats(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, StatsResponse{
		IntegrationStats: st,
		AverageLatencyMs: st.AverageLatencyMs().String(),
	})
}

func (s *Server) getDeployment(ctx echo.Context) error {
	d, err := s.keeper.GetDeployment(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, d)
}

func (s *Server) getFees(ctx echo.Context) error {
	entries, err := s.keeper.GetFeeSchedule(ctx.Request().Context())
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []types.FeeScheduleEntry{}
	}
	return ctx.JSON(http.StatusOK, map[string]any{"fees": entries})
}
