package services

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-formatter/internal/config"
	"cv-formatter/internal/models"
)

type fakeStore struct {
	created []*models.CVRecord
	err     error
}

func (s *fakeStore) Create(record *models.CVRecord) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, record)
	return nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (e *fakeExtractor) ExtractText(_, _ string) (string, error) {
	return e.text, e.err
}

type fakeGemini struct {
	calls     int
	responses []string
	errs      []error
}

func (g *fakeGemini) GenerateText(_ context.Context, _ string) (string, error) {
	i := g.calls
	g.calls++
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "", ErrNoContent
}

func (g *fakeGemini) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

type fakeIndexer struct {
	indexed int
	err     error
}

func (f *fakeIndexer) IndexRecord(_ context.Context, _ *models.CVRecord, _ *models.CanonicalCV) error {
	if f.err != nil {
		return f.err
	}
	f.indexed++
	return nil
}

func (f *fakeIndexer) Search(_ context.Context, _ string, _ int) ([]CVMatch, error) {
	return nil, nil
}

func writeTempUpload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cv_upload.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-stub"), 0o644))
	return path
}

func newPipeline(store *fakeStore, gemini *fakeGemini, indexer *fakeIndexer, maxRetries int) FormatterService {
	return NewFormatterService(
		store,
		&fakeExtractor{text: "Jane Doe\nEngineer at Acme"},
		gemini,
		NewNormalizerService(config.NormalizerConfig{}),
		indexer,
		maxRetries,
	)
}

func TestFormatCVHappyPath(t *testing.T) {
	store := &fakeStore{}
	gemini := &fakeGemini{responses: []string{validModelJSON}}
	indexer := &fakeIndexer{}
	path := writeTempUpload(t)

	record, cv, err := newPipeline(store, gemini, indexer, 3).FormatCV(context.Background(), path, "jane_doe.pdf")

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", cv.Header.Name)
	assert.Equal(t, "jane_doe.pdf", record.OriginalFileName)
	assert.NotEqual(t, record.ID.String(), "00000000-0000-0000-0000-000000000000")

	require.Len(t, store.created, 1)
	assert.JSONEq(t, record.FormattedCV, store.created[0].FormattedCV)
	assert.Equal(t, 1, indexer.indexed)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "temp upload must be deleted after success")
}

func TestFormatCVMalformedModelOutputPersistsNothing(t *testing.T) {
	store := &fakeStore{}
	gemini := &fakeGemini{responses: []string{"sorry, I cannot help with that"}}
	path := writeTempUpload(t)

	_, _, err := newPipeline(store, gemini, &fakeIndexer{}, 3).FormatCV(context.Background(), path, "jane_doe.pdf")

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Empty(t, store.created)
	assert.Equal(t, 1, gemini.calls, "schema failures must not be retried")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "temp upload must be deleted on failure too")
}

func TestFormatCVRetriesRateLimitThenSucceeds(t *testing.T) {
	store := &fakeStore{}
	gemini := &fakeGemini{
		errs:      []error{&UpstreamError{Status: http.StatusTooManyRequests, Body: "quota"}},
		responses: []string{"", validModelJSON},
	}
	path := writeTempUpload(t)

	_, cv, err := newPipeline(store, gemini, &fakeIndexer{}, 3).FormatCV(context.Background(), path, "jane_doe.pdf")

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", cv.Header.Name)
	assert.Equal(t, 2, gemini.calls)
}

func TestFormatCVDoesNotRetryDefiniteRejections(t *testing.T) {
	store := &fakeStore{}
	gemini := &fakeGemini{
		errs: []error{&UpstreamError{Status: http.StatusBadRequest, Body: "bad prompt"}},
	}
	path := writeTempUpload(t)

	_, _, err := newPipeline(store, gemini, &fakeIndexer{}, 3).FormatCV(context.Background(), path, "jane_doe.pdf")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadRequest, upstream.Status)
	assert.Equal(t, 1, gemini.calls)
	assert.Empty(t, store.created)
}

func TestFormatCVExhaustsRetries(t *testing.T) {
	rateLimited := &UpstreamError{Status: http.StatusTooManyRequests, Body: "quota"}
	gemini := &fakeGemini{errs: []error{rateLimited, rateLimited, rateLimited}}
	path := writeTempUpload(t)

	_, _, err := newPipeline(&fakeStore{}, gemini, &fakeIndexer{}, 3).FormatCV(context.Background(), path, "jane_doe.pdf")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamRateLimited)
	assert.Equal(t, 3, gemini.calls)
}

func TestFormatCVZeroRetriesStillCallsModel(t *testing.T) {
	store := &fakeStore{}
	gemini := &fakeGemini{responses: []string{validModelJSON}}
	path := writeTempUpload(t)

	_, cv, err := newPipeline(store, gemini, &fakeIndexer{}, 0).FormatCV(context.Background(), path, "jane_doe.pdf")

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", cv.Header.Name)
	assert.Equal(t, 1, gemini.calls)
}

func TestFormatCVExtractionFailure(t *testing.T) {
	store := &fakeStore{}
	pipeline := NewFormatterService(
		store,
		&fakeExtractor{err: ErrExtraction},
		&fakeGemini{},
		NewNormalizerService(config.NormalizerConfig{}),
		&fakeIndexer{},
		3,
	)
	path := writeTempUpload(t)

	_, _, err := pipeline.FormatCV(context.Background(), path, "jane_doe.pdf")

	assert.ErrorIs(t, err, ErrExtraction)
	assert.Empty(t, store.created)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFormatCVIndexFailureIsNonFatal(t *testing.T) {
	store := &fakeStore{}
	indexer := &fakeIndexer{err: errors.New("qdrant down")}
	gemini := &fakeGemini{responses: []string{validModelJSON}}
	path := writeTempUpload(t)

	record, _, err := newPipeline(store, gemini, indexer, 3).FormatCV(context.Background(), path, "jane_doe.pdf")

	require.NoError(t, err, "indexing is best-effort once the record is durable")
	require.NotNil(t, record)
	require.Len(t, store.created, 1)
}
