package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/stormgraph/pkg/jobs"
	"github.com/OFFIS-RIT/stormgraph/pkg/logger"
	"github.com/OFFIS-RIT/stormgraph/pkg/store"

	"github.com/labstack/echo/v4"
)

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// storeError maps graph and job store errors to HTTP responses.
func storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrStoreUnavailable):
		return errorJSON(c, http.StatusServiceUnavailable, "Graph store unavailable")
	case errors.Is(err, store.ErrNodeNotFound):
		return errorJSON(c, http.StatusNotFound, "Node not found")
	case errors.Is(err, store.ErrEdgeNotFound):
		return errorJSON(c, http.StatusNotFound, "Edge not found")
	case errors.Is(err, store.ErrEndpointMissing):
		return errorJSON(c, http.StatusBadRequest, "Edge endpoint missing")
	case errors.Is(err, jobs.ErrJobNotFound):
		return errorJSON(c, http.StatusNotFound, "Job not found")
	}
	logger.Error("[Server] Request failed", "path", c.Path(), "err", err)
	return errorJSON(c, http.StatusInternalServerError, "Internal server error")
}
