package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cv-formatter/internal/models"
)

const indexChunkSize = 1000

// IndexerService keeps the semantic search index in sync with stored CV
// records. Indexing runs after the record is durable; a failure here is
// logged and never fails the upload.
type IndexerService interface {
	IndexRecord(ctx context.Context, record *models.CVRecord, cv *models.CanonicalCV) error
	Search(ctx context.Context, query string, limit int) ([]CVMatch, error)
}

type indexerService struct {
	gemini GeminiService
	qdrant QdrantService
}

func NewIndexerService(gemini GeminiService, qdrant QdrantService) IndexerService {
	return &indexerService{
		gemini: gemini,
		qdrant: qdrant,
	}
}

// IndexRecord implements IndexerService.
func (s *indexerService) IndexRecord(ctx context.Context, record *models.CVRecord, cv *models.CanonicalCV) error {
	text := strings.Join(cv.Flatten(), "\n")

	chunks := ChunkText(text, indexChunkSize)
	for i, chunk := range chunks {
		embedding, err := s.gemini.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}

		if err := s.qdrant.UpsertChunk(ctx, record.ID.String(), chunk, embedding); err != nil {
			return fmt.Errorf("failed to store chunk %d: %w", i, err)
		}
	}

	log.Printf("🔍 Indexed %d chunks for record %s\n", len(chunks), record.ID)
	return nil
}

// Search implements IndexerService.
func (s *indexerService) Search(ctx context.Context, query string, limit int) ([]CVMatch, error) {
	embedding, err := s.gemini.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := s.qdrant.SearchSimilar(ctx, embedding, limit)
	if err != nil {
		return nil, err
	}

	return matches, nil
}
