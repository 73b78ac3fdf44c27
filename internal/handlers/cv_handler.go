package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"cv-formatter/internal/models"
	"cv-formatter/internal/repositories"
)

type CVHandler struct {
	cvRepo repositories.CVRepository
}

func NewCVHandler(cvRepo repositories.CVRepository) *CVHandler {
	return &CVHandler{
		cvRepo: cvRepo,
	}
}

// HandleList returns all stored CVs, newest first.
func (h *CVHandler) HandleList(c *fiber.Ctx) error {
	records, err := h.cvRepo.FindAll()
	if err != nil {
		return errorResponse(c, err)
	}

	items := make([]models.CVListItem, 0, len(records))
	for _, record := range records {
		items = append(items, models.CVListItem{
			ID:               record.ID.String(),
			OriginalFileName: record.OriginalFileName,
			UploadDate:       record.UploadDate.Format(time.RFC3339),
		})
	}

	return c.JSON(items)
}

// HandleGet returns one stored CV record.
func (h *CVHandler) HandleGet(c *fiber.Ctx) error {
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

	return c.JSON(record)
}
