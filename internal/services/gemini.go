package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"cv-formatter/internal/config"
)

// GeminiService is the restructuring client. It performs a single
// request/response call per invocation; retry policy belongs to the caller.
type GeminiService interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

// NewGeminiService builds the client from an explicit configuration object:
// credential, optional endpoint override and request deadline all come from
// cfg, never from the process environment at call time.
func NewGeminiService(cfg config.GeminiConfig) (GeminiService, error) {
	ctx := context.Background()

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Endpoint != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		modelName:  cfg.Model,
		embedModel: "text-embedding-004",
	}, nil
}

// GenerateText implements GeminiService. Failures are classified: an upstream
// HTTP error becomes *UpstreamError with the status and body attached, and a
// success response carrying no generated text becomes ErrNoContent so callers
// never mistake silence for an empty answer.
func (g *geminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	temperature := float32(0.3)
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), genConfig)
	if err != nil {
		return "", classifyUpstreamError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrNoContent
	}

	text := resp.Text()
	if text == "" {
		return "", ErrNoContent
	}

	return text, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Keep well under the embedding model's input limit
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, classifyUpstreamError(err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, ErrNoContent
	}

	return result.Embeddings[0].Values, nil
}

// classifyUpstreamError maps SDK errors onto the upstream taxonomy. A timeout
// is an upstream failure, never success-with-empty-content.
func classifyUpstreamError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		body := apiErr.Message
		if body == "" {
			body = apiErr.Status
		}
		return &UpstreamError{Status: apiErr.Code, Body: body}
	}

	return &UpstreamError{Status: 0, Body: err.Error()}
}
