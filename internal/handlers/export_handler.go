package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"cv-formatter/internal/export"
	"cv-formatter/internal/repositories"
)

type ExportHandler struct {
	cvRepo   repositories.CVRepository
	exporter *export.Exporter
}

func NewExportHandler(cvRepo repositories.CVRepository, exporter *export.Exporter) *ExportHandler {
	return &ExportHandler{
		cvRepo:   cvRepo,
		exporter: exporter,
	}
}

// HandleExport streams a stored CV in the requested format. `?styled=1`
// selects the raster-banded PDF rendition.
func (h *ExportHandler) HandleExport(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid CV ID format",
		})
	}

	record, err := h.cvRepo.FindByID(recordID)
	if err != nil {
		return errorResponse(c, err)
	}

	format := c.Params("format")
	styled := c.Query("styled") == "1" || c.Query("styled") == "true"

	output, err := h.exporter.Render(c.Context(), record, format, styled)
	if err != nil {
		return errorResponse(c, err)
	}

	c.Set(fiber.HeaderContentType, output.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", output.Filename))
	return c.Send(output.Bytes)
}
