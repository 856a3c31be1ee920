package public

import (
	"context"
	"net/http"

	"coordination-api/apiconfig"
	"coordination-api/coordination/keeper"
	"coordination-api/internal/event"
	"coordination-api/internal/server/middleware"
	"coordination-api/reportstorage"

	"github.com/labstack/echo/v4"
)

// Server is the requester-facing API: query submission and reads, insight
// reads, stats and the live event feed. Result posting and administration
// live on the admin server.
type Server struct {
	e             *echo.Echo
	keeper        *keeper.Keeper
	configManager *apiconfig.ConfigManager
	reportStorage reportstorage.ReportStorage
	hub           *event.Hub
}

func NewServer(
	k *keeper.Keeper,
	configManager *apiconfig.ConfigManager,
	reportStorage reportstorage.ReportStorage,
	hub *event.Hub,
) *Server {
	e := echo.New()
	e.HTTPErrorHandler = middleware.TransparentErrorHandler

	s := &Server{
		e:             e,
		keeper:        k,
		configManager: configManager,
		reportStorage: reportStorage,
		hub:           hub,
	}

	e.Use(middleware.LoggingMiddleware)
	g := e.Group("/v1/")

	g.GET("status", s.getStatus)

	g.POST("queries", s.postQuery)
	g.GET("queries", s.getQueries)
	g.GET("queries/:id", s.getQueryById)
	g.POST("queries/:id/expire", s.postExpireQuery)

	g.GET("insights/:pool_id", s.getInsights)
	g.GET("reports/:pointer", s.getReport)

	g.GET("stats", s.getStats)
	g.GET("deployment", s.getDeployment)
	g.GET("fees", s.getFees)

	g.GET("events", s.getEventsFeed)

	return s
}

// Start serves until Shutdown is called or the listener fails.
func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) getStatus(ctx echo.Context) error {
	resp := struct {
		Status    string `json:"status"`
		PublicUrl string `json:"public_url,omitempty"`
	}{Status: "ok"}
	if s.configManager != nil {
		resp.PublicUrl = s.configManager.GetConfig().Api.PublicUrl
	}
	return ctx.JSON(http.StatusOK, resp)
}
