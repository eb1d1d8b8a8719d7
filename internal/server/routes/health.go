package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/stormgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/stormgraph/pkg/store"

	"github.com/labstack/echo/v4"
)

func HealthHandler(c echo.Context) error {
	type healthResponse struct {
		Status     string `json:"status"`
		GraphStore string `json:"graph_store"`
		Extraction string `json:"extraction"`
	}

	app := c.(*middleware.AppContext).App
	graphStatus := app.Store.Status()

	res := healthResponse{
		Status:     "healthy",
		GraphStore: graphStatus.String(),
		Extraction: "enabled",
	}
	if graphStatus != store.StatusConnected {
		res.Status = "degraded"
	}
	if !app.Graph.ExtractionEnabled() {
		res.Extraction = "mock"
	}

	return c.JSON(http.StatusOK, res)
}
