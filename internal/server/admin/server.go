package admin

import (
	"context"
	"net/http"

	"coordination-api/coordination/keeper"
	"coordination-api/internal/server/middleware"
	"coordination-api/reportstorage"
	"coordination-api/utils"

	"github.com/labstack/echo/v4"
)

// Server is the operator- and responder-facing API. The caller identity
// comes from the X-Account-Address header; the keeper enforces which
// identity may do what.
type Server struct {
	e             *echo.Echo
	keeper        *keeper.Keeper
	reportStorage reportstorage.ReportStorage
}

func NewServer(k *keeper.Keeper, reportStorage reportstorage.ReportStorage) *Server {
	e := echo.New()
	e.HTTPErrorHandler = middleware.TransparentErrorHandler

	s := &Server{
		e:             e,
		keeper:        k,
		reportStorage: reportStorage,
	}

	e.Use(middleware.LoggingMiddleware)
	g := e.Group("/admin/v1/")

	g.POST("deployments", s.postDeployment)
	g.POST("deployments/status", s.postDeploymentStatus)

	g.GET("ai-service", s.getAIServiceConfig)
	g.PUT("ai-service", s.putAIServiceConfig)

	g.PUT("fees/:query_type", s.putFee)
	g.PUT("fees/:query_type/supported", s.putFeeSupported)

	g.GET("responders", s.getResponders)
	g.POST("responders/:address", s.postResponder)
	g.DELETE("responders/:address", s.deleteResponder)

	g.POST("queries/:id/processing", s.postQueryProcessing)
	g.POST("queries/:id/complete", s.postQueryComplete)
	g.POST("queries/:id/fail", s.postQueryFail)

	g.POST("insights", s.postInsight)

	return s
}

// Start serves until Shutdown is called or the listener fails.
func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// caller extracts the acting account identity from the request.
func caller(ctx echo.Context) (string, error) {
	addr := ctx.Request().Header.Get(utils.XAccountAddressHeader)
	if addr == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, utils.XAccountAddressHeader+" header required")
	}
	return addr, nil
}
