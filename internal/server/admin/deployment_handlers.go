package admin

import (
	"net/http"

	"coordination-api/coordination/types"

	"github.com/labstack/echo/v4"
)

func (s *Server) postDeployment(ctx echo.Context) error {
	addr, err := caller(ctx)
	if err != nil {
		return err
	}

	var req types.DeploymentConfig
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	d, err := s.keeper.RequestDeployment(ctx.Request().Context(), addr, req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, d)
}

// DeploymentStatusRequest advances the deployment state machine.
type DeploymentStatusRequest struct {
	Status types.DeploymentStatus `json:"status"`
}

func (s *Server) postDeploymentStatus(ctx echo.Context) error {
	addr, err := caller(ctx)
	if err != nil {
		return err
	}

	var req DeploymentStatusRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	rctx := ctx.Request().Context()
	switch req.Status {
	case types.DeploymentStatusDeploying:
		err = s.keeper.MarkDeploymentDeploying(rctx, addr)
	case types.DeploymentStatusActive:
		err = s.keeper.MarkDeploymentActive(rctx, addr)
	case types.DeploymentStatusUpdating:
		err = s.keeper.MarkDeploymentUpdating(rctx, addr)
	case types.DeploymentStatusFailed:
		err = s.keeper.MarkDeploymentFailed(rctx, addr)
	case types.DeploymentStatusSuspended:
		err = s.keeper.MarkDeploymentSuspended(rctx, addr)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown deployment status")
	}
	if err != nil {
		return err
	}

	d, err := s.keeper.GetDeployment(rctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, d)
}
