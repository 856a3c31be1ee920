package admin

import (
	"net/http"

	"coordination-api/coordination/types"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func (s *Server) getAIServiceConfig(ctx echo.Context) error {
	cfg, err := s.keeper.GetAIServiceConfig(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cfg)
}

// putAIServiceConfig replaces the AI-service descriptor wholesale.
func (s *Server) putAIServiceConfig(ctx echo.Context) error {
	addr, err := caller(ctx)
	if err != nil {
		return err
	}

	var cfg types.AIServiceConfig
	if err := ctx.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.keeper.ConfigureAIService(ctx.Request().Context(), addr, cfg); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cfg)
}

// SetFeeRequest sets the required payment for one query type.
type SetFeeRequest struct {
	Fee string `json:"fee"`
}

func (s *Server) putFee(ctx echo.Context) error {
	addr, err := caller(ctx)
	if err != nil {
		return err
	}

	var req SetFeeRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	fee, err := decimal.NewFromString(req.Fee)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid fee amount")
	}

	queryType := ctx.Param("query_type")
	if err := s.keeper.SetQueryTypeFee(ctx.Request().Context(), addr, queryType, fee); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// SetSupportedRequest toggles admission for one query type.
type SetSupportedRequest struct {
	Supported bool `json:"supported"`
}

func (s *Server) putFeeSupported(ctx echo.Context) error {
	addr, err := caller(ctx)
	if err != nil {
		return err
	}

	var req SetSupportedRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	queryType := ctx.Param("query_type")
	if err := s.keeper.SetQueryTypeSupported(ctx.Request().Context(), addr, queryType, req.Supported); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) getResponders(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{"responders": s.keeper.Responders()})
}

func (s *Server) postResponder(ctx echo.Context) error {
	addr, err := caller(ctx)
	if err != nil {
		return err
	}
	if err := s.keeper.AddResponder(addr, ctx.Param("address")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) deleteResponder(ctx echo.Context) error {
	addr, err := caller(ctx)
	if err != nil {
		return err
	}
	if err := s.keeper.RemoveResponder(addr, ctx.Param("address")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
