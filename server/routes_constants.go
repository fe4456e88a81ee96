package server

const (
	RouteHealth    = "/healthz"
	RouteMetrics   = "/metrics"
	RouteStatus    = "/v1/status"
	RouteRefresh   = "/v1/refresh"
	RouteLive      = "/v1/live"
	RouteCatchup   = "/v1/catchup"
	RouteSubtitles = "/v1/subtitles.srt"
)
