package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// GeminiClient implements ports.Scorer and ports.Summarizer on top of the
// Gemini API. Both operations carry their own timeout; response parsing is
// tolerant of code-fenced JSON.
type GeminiClient struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

var _ ports.Scorer = (*GeminiClient)(nil)
var _ ports.Summarizer = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   client.GenerativeModel(cfg.Model),
		timeout: cfg.RequestTimeout(),
	}, nil
}

// Close releases the underlying connection.
func (g *GeminiClient) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Score sends the unique titles in one request and returns one row per title
// the model recognized. Missing rows and malformed output are the caller's
// concern: a parse failure surfaces as an error so the whole batch can
// degrade.
func (g *GeminiClient) Score(ctx context.Context, titles []string) ([]domain.TitleScore, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	text, err := g.generate(ctx, scorePrompt(titles))
	if err != nil {
		return nil, fmt.Errorf("score titles: %w", err)
	}

	return ParseScoreResponse(text)
}

// Summarize condenses one article body.
func (g *GeminiClient) Summarize(ctx context.Context, content string) (string, error) {
	text, err := g.generate(ctx, summaryPrompt(content))
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (g *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 ||
		resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty model response")
	}

	if text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text); ok {
		return string(text), nil
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// ParseScoreResponse unmarshals the scoring response after stripping any
// markdown code fences the model wrapped around the JSON.
func ParseScoreResponse(text string) ([]domain.TitleScore, error) {
	cleaned := stripCodeFence(text)

	var rows []domain.TitleScore
	if err := json.Unmarshal([]byte(cleaned), &rows); err != nil {
		return nil, fmt.Errorf("parse score response: %w", err)
	}
	return rows, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
