package public

import (
	"errors"
	"net/http"

	"coordination-api/coordination/types"
	"coordination-api/reportstorage"

	"github.com/labstack/echo/v4"
)

// InsightListResponse pages through a pool's insight sequence. From and To
// bound the report periods; zero means unbounded.
type InsightListResponse struct {
	PoolId   string             `json:"pool_id"`
	Insights []types.MEVInsight `json:"insights"`
	From     int64              `json:"from"`
	To       int64              `json:"to"`
	Limit    int64              `json:"limit"`
	Offset   int64              `json:"offset"`
}

func (s *Server) getInsights(ctx echo.Context) error {
	poolId := ctx.Param("pool_id")
	from := parseInt64Param(ctx, "from")
	to := parseInt64Param(ctx, "to")
	limit, offset := parsePagination(ctx)

	insights, err := s.keeper.ListInsights(ctx.Request().Context(), poolId, from, to, limit, offset)
	if err != nil {
		return err
	}
	if insights == nil {
		insights = []types.MEVInsight{}
	}
	return ctx.JSON(http.StatusOK, InsightListResponse{
		PoolId:   poolId,
		Insights: insights,
		From:     from,
		To:       to,
		Limit:    limit,
		Offset:   offset,
	})
}

// getReport resolves a content pointer to the full report document.
func (s *Server) getReport(ctx echo.Context) error {
	if s.reportStorage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "report storage not configured")
	}

	report, err := s.reportStorage.Retrieve(ctx.Request().Context(), ctx.Param("pointer"))
	if err != nil {
		if errors.Is(err, reportstorage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "report not found")
		}
		return err
	}
	return ctx.Blob(http.StatusOK, echo.MIMEApplicationJSON, report)
}
