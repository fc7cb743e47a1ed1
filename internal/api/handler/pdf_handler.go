package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/roknskapar/pdf-processor/internal/core/domain"
	"github.com/roknskapar/pdf-processor/internal/core/ports"
)

// PDFHandler handles upload, lookup and purge of processed PDF files.
type PDFHandler struct {
	pdfService ports.PDFService
	registry   ports.FileRegistry
}

func NewPDFHandler(pdfService ports.PDFService, registry ports.FileRegistry) *PDFHandler {
	return &PDFHandler{pdfService: pdfService, registry: registry}
}

type processResponse struct {
	Message string                    `json:"message"`
	Results []domain.ProcessingResult `json:"results"`
}

// Process handles POST /api/pdf/process: accepts a multipart batch, runs
// extraction on every PDF and returns per-file outcomes. The batch always
// answers 200; individual failures are reported in the results.
//
// @Summary      Process a batch of PDF files
// @Tags         pdf
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        files  formData  file  true  "PDF files to process"
// @Success      200    {object}  processResponse
// @Failure      400    {object}  map[string]string
// @Router       /api/pdf/process [post]
func (h *PDFHandler) Process(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	results, err := h.pdfService.ProcessFiles(c.Request().Context(), form.File["files"])
	if err != nil {
		return err
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}

	return c.JSON(http.StatusOK, processResponse{
		Message: fmt.Sprintf("Processed %d files successfully, %d files failed", succeeded, len(results)-succeeded),
		Results: results,
	})
}

// Processed handles GET /api/pdf/processed: lists every file currently held
// in the registry.
//
// @Summary      List processed files
// @Tags         pdf
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.ProcessedFile
// @Router       /api/pdf/processed [get]
func (h *PDFHandler) Processed(c echo.Context) error {
	return c.JSON(http.StatusOK, h.registry.List())
}

// File handles GET /api/pdf/file/:id: streams the stored PDF inline. An
// unknown id, or an entry whose temp file is already gone, answers 404.
//
// @Summary      Download a processed PDF
// @Tags         pdf
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "Processed file id"
// @Success      200  {file}    file
// @Failure      404  {object}  map[string]string
// @Router       /api/pdf/file/{id} [get]
func (h *PDFHandler) File(c echo.Context) error {
	entry, ok := h.registry.Get(c.Param("id"))
	if !ok {
		return domain.ErrFileNotFound
	}
	if _, err := os.Stat(entry.FilePath); err != nil {
		return domain.ErrFileNotFound
	}
	return c.Inline(entry.FilePath, entry.FileName)
}

// Clear handles DELETE /api/pdf/clear: removes every temp file and empties
// the registry.
//
// @Summary      Purge all processed files
// @Tags         pdf
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Router       /api/pdf/clear [delete]
func (h *PDFHandler) Clear(c echo.Context) error {
	h.registry.Clear()
	return c.JSON(http.StatusOK, messageResponse{Message: "All processed files cleared"})
}
