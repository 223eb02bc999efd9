package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider constructs Gemini model handles from a shared client.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingCredential
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	if p != nil && p.client != nil {
		p.client.Close()
	}
}

// NewModel returns a handle for a gemini-* model. No request is sent.
func (p *GeminiProvider) NewModel(name string) (TextModel, error) {
	if p == nil || p.client == nil {
		return nil, ErrMissingCredential
	}
	if !strings.HasPrefix(name, "gemini") {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return &geminiModel{client: p.client, name: name}, nil
}

type geminiModel struct {
	client *genai.Client
	name   string
}

func (m *geminiModel) Name() string { return m.name }

func (m *geminiModel) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	// GenerativeModel carries its config by value, so each call gets its own.
	model := m.client.GenerativeModel(m.name)
	model.SetTemperature(cfg.Temperature)
	if cfg.TopK > 0 {
		model.SetTopK(cfg.TopK)
	}
	if cfg.TopP > 0 {
		model.SetTopP(cfg.TopP)
	}
	if cfg.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(cfg.MaxOutputTokens)
	}
	if cfg.JSON {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no response candidates from %s", ErrEmptyResponse, m.name)
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}
	if responseText.Len() == 0 {
		return "", fmt.Errorf("%w: %s returned no text", ErrEmptyResponse, m.name)
	}
	return responseText.String(), nil
}
