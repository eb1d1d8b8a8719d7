package routes

import (
	"errors"
	"io"
	"net/http"

	"github.com/OFFIS-RIT/stormgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/stormgraph/pkg/loader"
	"github.com/OFFIS-RIT/stormgraph/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newDocID() string {
	return "doc-" + uuid.NewString()
}

// UploadDocumentHandler splits an uploaded pdf, docx or txt file into
// fragments and stores them as DocFrag nodes of a new document.
func UploadDocumentHandler(c echo.Context) error {
	type uploadResponse struct {
		DocID     string `json:"doc_id"`
		Filename  string `json:"filename"`
		Pages     int    `json:"pages"`
		Fragments int    `json:"fragments"`
		FileKey   string `json:"file_key,omitempty"`
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "No file provided")
	}
	if fileHeader.Filename == "" {
		return errorJSON(c, http.StatusBadRequest, "No filename provided")
	}
	format, err := loader.FormatFromName(fileHeader.Filename)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Failed to read file")
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Failed to read file")
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	pages, err := loader.ExtractPages(ctx, fileHeader.Filename, content)
	if err != nil {
		if errors.Is(err, loader.ErrUnsupportedFormat) {
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
		logger.Error("[Server] Failed to extract document text", "filename", fileHeader.Filename, "err", err)
		return errorJSON(c, http.StatusUnprocessableEntity, "Failed to extract document text")
	}

	docID := newDocID()
	fragments, err := app.Graph.Fragments(docID, pages)
	if err != nil {
		return storeError(c, err)
	}
	if err := app.Store.SaveFragments(ctx, fragments); err != nil {
		return storeError(c, err)
	}

	res := uploadResponse{
		DocID:     docID,
		Filename:  fileHeader.Filename,
		Pages:     len(pages),
		Fragments: len(fragments),
	}

	if app.Documents != nil {
		key, err := app.Documents.PutFile(ctx, docID, fileHeader.Filename, format.ContentType(), content)
		if err != nil {
			logger.Warn("[Server] Failed to archive uploaded document", "doc_id", docID, "err", err)
		} else {
			res.FileKey = key
		}
	}

	logger.Info("[Server] Document uploaded", "doc_id", docID, "pages", res.Pages, "fragments", res.Fragments)
	return c.JSON(http.StatusOK, res)
}
