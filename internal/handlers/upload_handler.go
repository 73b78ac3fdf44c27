package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"cv-formatter/internal/models"
	"cv-formatter/internal/services"
)

type UploadHandler struct {
	storageService services.StorageService
	formatter      services.FormatterService
	maxFileSize    int64
}

func NewUploadHandler(
	storageService services.StorageService,
	formatter services.FormatterService,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
		formatter:      formatter,
		maxFileSize:    maxFileSize,
	}
}

// HandleUpload receives the "cv" multipart file, runs the formatting
// pipeline and returns the structured result. The temp file is deleted by
// the pipeline on every exit path.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("cv")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded. Please upload a 'cv' file (.pdf or .docx).",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("CV file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	_, filePath, err := h.storageService.SaveFile(file)
	if err != nil {
		return errorResponse(c, err)
	}

	record, cv, err := h.formatter.FormatCV(c.Context(), filePath, file.Filename)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.UploadResponse{
		ID:               record.ID.String(),
		OriginalFileName: record.OriginalFileName,
		Formatted:        cv,
	})
}
