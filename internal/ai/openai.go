package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	oaioption "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIProvider constructs chat-completion model handles (gpt-*, o*).
type OpenAIProvider struct {
	client openai.Client
}

// NewOpenAIProvider returns a provider authenticated with apiKey.
func NewOpenAIProvider(apiKey string) (*OpenAIProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingCredential
	}
	return &OpenAIProvider{client: openai.NewClient(oaioption.WithAPIKey(apiKey))}, nil
}

func (p *OpenAIProvider) NewModel(name string) (TextModel, error) {
	if p == nil {
		return nil, ErrMissingCredential
	}
	if !isOpenAIModel(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return &openAIModel{client: p.client, name: name}, nil
}

func isOpenAIModel(name string) bool {
	return strings.HasPrefix(name, "gpt-") || (len(name) > 1 && name[0] == 'o' && name[1] >= '0' && name[1] <= '9')
}

type openAIModel struct {
	client openai.Client
	name   string
}

func (m *openAIModel) Name() string { return m.name }

func (m *openAIModel) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(m.name),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if cfg.Temperature > 0 {
		params.Temperature = openai.Float(float64(cfg.Temperature))
	}
	if cfg.TopP > 0 {
		params.TopP = openai.Float(float64(cfg.TopP))
	}
	if cfg.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(cfg.MaxOutputTokens))
	}
	if cfg.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai generation error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: no choices from %s", ErrEmptyResponse, m.name)
	}
	return resp.Choices[0].Message.Content, nil
}
