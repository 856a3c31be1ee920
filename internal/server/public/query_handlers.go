package public

import (
	"encoding/json"
	"net/http"

	"coordination-api/coordination/types"
	"coordination-api/utils"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// SubmitQueryRequest is the body for POST /v1/queries. Payment is the amount
// the requester attaches; it must cover the fee for the query type.
type SubmitQueryRequest struct {
	QueryType string          `json:"query_type"`
	Params    json.RawMessage `json:"params,omitempty"`
	Payment   string          `json:"payment"`
}

func (s *Server) postQuery(ctx echo.Context) error {
	requester := ctx.Request().Header.Get(utils.XRequesterAddressHeader)
	if requester == "" {
		return echo.NewHTTPError(http.StatusBadRequest, utils.XRequesterAddressHeader+" header required")
	}

	var req SubmitQueryRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.QueryType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query_type required")
	}
	payment, err := decimal.NewFromString(req.Payment)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payment amount")
	}

	q, err := s.keeper.SubmitQuery(ctx.Request().Context(), requester, req.QueryType, req.Params, payment)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (s *Server) getQueryById(ctx echo.Context) error {
	q, err := s.keeper.GetQuery(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, q)
}

// QueryListResponse pages through queries in submission order.
type QueryListResponse struct {
	Queries []types.AnalyticsQuery `json:"queries"`
	Limit   int64                  `json:"limit"`
	Offset  int64                  `json:"offset"`
}

func (s *Server) getQueries(ctx echo.Context) error {
	limit, offset := parsePagination(ctx)
	queries, err := s.keeper.ListQueries(ctx.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	if queries == nil {
		queries = []types.AnalyticsQuery{}
	}
	return ctx.JSON(http.StatusOK, QueryListResponse{Queries: queries, Limit: limit, Offset: offset})
}

// postExpireQuery is deliberately unauthenticated: once the TTL has elapsed,
// anyone may trigger the expiry transition.
func (s *Server) postExpireQuery(ctx echo.Context) error {
	queryId := ctx.Param("id")
	if err := s.keeper.ExpireQuery(ctx.Request().Context(), queryId); err != nil {
		return err
	}
	q, err := s.keeper.GetQuery(ctx.Request().Context(), queryId)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, q)
}
