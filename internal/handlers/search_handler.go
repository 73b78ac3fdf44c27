package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"cv-formatter/internal/models"
	"cv-formatter/internal/repositories"
	"cv-formatter/internal/services"
)

type SearchHandler struct {
	cvRepo  repositories.CVRepository
	indexer services.IndexerService
}

func NewSearchHandler(cvRepo repositories.CVRepository, indexer services.IndexerService) *SearchHandler {
	return &SearchHandler{
		cvRepo:  cvRepo,
		indexer: indexer,
	}
}

// HandleSearch finds stored CVs semantically similar to the query text.
func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing query parameter 'q'",
		})
	}

	limit := 5
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 20 {
		limit = v
	}

	matches, err := h.indexer.Search(c.Context(), query, limit)
	if err != nil {
		return errorResponse(c, err)
	}

	items := make([]models.SearchResponseItem, 0, len(matches))
	seen := make(map[string]bool)
	for _, match := range matches {
		// Several chunks of the same record can match; keep the best one.
		if seen[match.RecordID] {
			continue
		}
		seen[match.RecordID] = true

		item := models.SearchResponseItem{
			ID:      match.RecordID,
			Score:   match.Score,
			Excerpt: match.Excerpt,
		}
		if recordID, err := uuid.Parse(match.RecordID); err == nil {
			if record, err := h.cvRepo.FindByID(recordID); err == nil {
				item.OriginalFileName = record.OriginalFileName
			}
		}
		items = append(items, item)
	}

	return c.JSON(items)
}
