package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/stormgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/stormgraph/pkg/jobs"
	"github.com/OFFIS-RIT/stormgraph/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RunExtractionHandler queues an extraction job for a document and returns
// without waiting for it.
func RunExtractionHandler(c echo.Context) error {
	type runExtractionBody struct {
		DocID string `json:"doc_id" validate:"required"`
	}

	type runExtractionResponse struct {
		JobID  string      `json:"job_id"`
		DocID  string      `json:"doc_id"`
		Status jobs.Status `json:"status"`
	}

	data := new(runExtractionBody)
	if err := c.Bind(data); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(data); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	job, err := app.Tracker.Enqueue(ctx, data.DocID)
	if err != nil {
		return storeError(c, err)
	}

	if err := app.Dispatcher.Dispatch(ctx, job); err != nil {
		logger.Error("[Server] Failed to dispatch extraction job", "job_id", job.ID, "err", err)
		if ferr := app.Tracker.Fail(ctx, job.ID, "failed to dispatch job: "+err.Error()); ferr != nil {
			logger.Warn("[Server] Failed to mark undispatched job", "job_id", job.ID, "err", ferr)
		}
		return errorJSON(c, http.StatusServiceUnavailable, "Failed to queue extraction job")
	}

	return c.JSON(http.StatusOK, runExtractionResponse{
		JobID:  job.ID,
		DocID:  job.DocID,
		Status: job.Status,
	})
}

func GetExtractionStatusHandler(c echo.Context) error {
	type getStatusParams struct {
		JobID string `query:"job_id" validate:"required"`
	}

	params := new(getStatusParams)
	if err := c.Bind(params); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request params")
	}
	if err := c.Validate(params); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request params")
	}

	ctx := c.Request().Context()
	job, err := c.(*middleware.AppContext).App.Tracker.Get(ctx, params.JobID)
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(http.StatusOK, job)
}
