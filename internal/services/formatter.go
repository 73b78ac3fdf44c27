package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"cv-formatter/internal/models"
)

// CVStore is the slice of the record store the pipeline needs: persist one
// finished record. The full repository lives in the repositories package.
type CVStore interface {
	Create(record *models.CVRecord) error
}

// FormatterService runs the full pipeline for one uploaded document:
// extract → prompt → restructure → normalize → persist. Each invocation is
// blocking and sequential; no state is shared between invocations beyond the
// record store.
type FormatterService interface {
	FormatCV(ctx context.Context, filePath, originalFileName string) (*models.CVRecord, *models.CanonicalCV, error)
}

type formatterService struct {
	cvRepo        CVStore
	extractor     ExtractorService
	geminiService GeminiService
	normalizer    NormalizerService
	indexer       IndexerService
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewFormatterService(
	cvRepo CVStore,
	extractor ExtractorService,
	geminiService GeminiService,
	normalizer NormalizerService,
	indexer IndexerService,
	maxRetries int,
) FormatterService {
	// At least one model call always happens.
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &formatterService{
		cvRepo:        cvRepo,
		extractor:     extractor,
		geminiService: geminiService,
		normalizer:    normalizer,
		indexer:       indexer,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

// FormatCV implements FormatterService. The uploaded temp file is deleted on
// every exit path; no partial record is persisted when any stage fails.
func (f *formatterService) FormatCV(ctx context.Context, filePath, originalFileName string) (*models.CVRecord, *models.CanonicalCV, error) {
	defer func() {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			log.Printf("⚠️  Failed to delete temp file %s: %v\n", filePath, err)
		}
	}()

	log.Printf("📄 Extracting text from %s...\n", originalFileName)
	rawText, err := f.extractor.ExtractText(filePath, filepath.Ext(originalFileName))
	if err != nil {
		return nil, nil, err
	}
	rawText = CleanText(rawText)

	prompt := f.promptBuilder.BuildFormatPrompt(rawText)

	log.Println("🤖 Restructuring CV with LLM...")
	modelText, err := f.generateWithRetry(ctx, prompt)
	if err != nil {
		return nil, nil, err
	}

	cv, err := f.normalizer.Normalize(modelText)
	if err != nil {
		return nil, nil, err
	}

	serialized, err := json.Marshal(cv)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to serialize cv: %w", err)
	}

	record := &models.CVRecord{
		ID:               uuid.New(),
		OriginalFileName: originalFileName,
		FormattedCV:      string(serialized),
		UploadDate:       time.Now(),
	}
	if err := f.cvRepo.Create(record); err != nil {
		return nil, nil, err
	}

	// The record is durable at this point; index failures must not undo that.
	if err := f.indexer.IndexRecord(ctx, record, cv); err != nil {
		log.Printf("⚠️  Failed to index record %s: %v\n", record.ID, err)
	}

	log.Printf("✅ CV formatted and stored with ID %s\n", record.ID)
	return record, cv, nil
}

// generateWithRetry retries the model call only for rate limits and transport
// failures; a malformed prompt contract would fail the same way every time,
// so those errors surface immediately.
func (f *formatterService) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		text, err := f.geminiService.GenerateText(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var upstream *UpstreamError
		if !errors.As(err, &upstream) || !upstream.Retryable() {
			return "", err
		}

		if attempt < f.maxRetries {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			log.Printf("⚠️  Attempt %d failed: %v. Retrying in %s...\n", attempt, err, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", &UpstreamError{Status: 0, Body: ctx.Err().Error()}
			}
		}
	}

	return "", lastErr
}
