package server

import (
	"github.com/OFFIS-RIT/stormgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/stormgraph/internal/server/routes"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo, requireAuth bool) {
	e.GET("/health", routes.HealthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	var mw []echo.MiddlewareFunc
	if requireAuth {
		mw = append(mw, middleware.AuthMiddleware)
	}
	apiRoutes := e.Group("/api", mw...)

	// Document routes
	apiRoutes.POST("/docs/upload", routes.UploadDocumentHandler)

	// Extraction job routes
	apiRoutes.POST("/extract/run", routes.RunExtractionHandler)
	apiRoutes.GET("/extract/status", routes.GetExtractionStatusHandler)

	// Graph routes
	apiRoutes.GET("/graph", routes.GetGraphHandler)
	apiRoutes.POST("/graph/nodes", routes.CreateNodesHandler)
	apiRoutes.POST("/graph/edges", routes.CreateEdgesHandler)
	apiRoutes.DELETE("/graph/nodes/:id", routes.DeleteNodeHandler)
	apiRoutes.DELETE("/graph/edges/:id", routes.DeleteEdgeHandler)
	apiRoutes.GET("/graph/node/:id/trace", routes.GetNodeTraceHandler)
	apiRoutes.GET("/graph/recommend/ms-candidates", routes.GetClusterCandidatesHandler)
}
