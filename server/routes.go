package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())

	s.RegisterRouteHandler("GET "+RouteStatus, ChainMiddleware(s.StatusHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteLive, ChainMiddleware(s.LiveHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCatchup, ChainMiddleware(s.CatchupHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteSubtitles, ChainMiddleware(s.SubtitlesHandler(), s.APIMiddleware(s.CompressionMiddleware)...))
}
