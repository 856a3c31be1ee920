package admin

import (
	"net/http"

	"coordination-api/coordination/types"
	"coordination-api/logging"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func (s *Server) postQueryProcessing(ctx echo.Context) error {
	addr, err := caller(ctx)
	if err != nil {
		return err
	}
	if err := s.keeper.MarkQueryProcessing(ctx.Request().Context(), addr, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CompleteQueryRequest posts a query result. Either the responder supplies a
// pointer into an external system, or it inlines the result document and the
// server stores it and derives the pointer.
type CompleteQueryRequest struct {
	ResultPointer string `json:"result_pointer,omitempty"`
	Result        []byte `json:"result,omitempty"`
}

func (s *Server) postQueryComplete(ctx echo.Context) error {
	addr, err := caller(ctx)
	if err != nil {
		return err
	}

	var req CompleteQueryRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	rctx := ctx.Request().Context()
	pointer := req.ResultPointer
	if pointer == "" && len(req.Result) > 0 {
		if s.reportStorage == nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "report storage not configured")
		}
		pointer, err = s.reportStorage.Store(rctx, req.Result)
		if err != nil {
			logging.Error("failed to store inline result", types.Storage, "queryId", ctx.Param("id"), "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to store result")
		}
	}

	if err := s.keeper.CompleteQuery(rctx, addr, ctx.Param("id"), pointer); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, map[string]string{"result_pointer": pointer})
}

func (s *Server) postQueryFail(ctx echo.Context) error {
	addr, err := caller(ctx)
	if err != nil {
		return err
	}
	if err := s.keeper.FailQuery(ctx.Request().Context(), addr, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// RecordInsightRequest appends one MEV insight. Amounts travel as decimal
// strings. Report either points into an external system via ReportPointer or
// is inlined and stored server-side.
type RecordInsightRequest struct {
	PoolId            string `json:"pool_id"`
	ExtractedAmount   string `json:"extracted_amount"`
	PreventedAmount   string `json:"prevented_amount"`
	OpportunityCount  uint64 `json:"opportunity_count"`
	SandwichAttacks   uint64 `json:"sandwich_attacks"`
	FrontRunAttempts  uint64 `json:"front_run_attempts"`
	LiquidationEvents uint64 `json:"liquidation_events"`
	PeriodStart       int64  `json:"period_start"`
	PeriodEnd         int64  `json:"period_end"`
	ReportPointer     string `json:"report_pointer,omitempty"`
	Report            []byte `json:"report,omitempty"`
}

func (s *Server) postInsight(ctx echo.Context) error {
	addr, err := caller(ctx)
	if err != nil {
		return err
	}

	var req RecordInsightRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	extracted, err := decimal.NewFromString(req.ExtractedAmount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid extracted_amount")
	}
	prevented, err := decimal.NewFromString(req.PreventedAmount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prevented_amount")
	}

	rctx := ctx.Request().Context()
	pointer := req.ReportPointer
	if pointer == "" && len(req.Report) > 0 {
		if s.reportStorage == nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "report storage not configured")
		}
		pointer, err = s.reportStorage.Store(rctx, req.Report)
		if err != nil {
			logging.Error("failed to store insight report", types.Storage, "poolId", req.PoolId, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to store report")
		}
	}

	ins, err := s.keeper.RecordInsight(rctx, addr, types.MEVInsight{
		PoolId:            req.PoolId,
		ExtractedAmount:   extracted,
		PreventedAmount:   prevented,
		OpportunityCount:  req.OpportunityCount,
		SandwichAttacks:   req.SandwichAttacks,
		FrontRunAttempts:  req.FrontRunAttempts,
		LiquidationEvents: req.LiquidationEvents,
		PeriodStart:       req.PeriodStart,
		PeriodEnd:         req.PeriodEnd,
		ReportPointer:     pointer,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ins)
}
