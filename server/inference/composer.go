package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ponyo877/signtalk/server/domain"
	openai "github.com/sashabaranov/go-openai"
)

const composePrompt = "You convert Korean Sign Language gloss sequences into one natural Korean sentence. " +
	"Reply with the sentence only."

// JoinComposer joins tokens with spaces.
type JoinComposer struct{}

func (JoinComposer) Compose(_ context.Context, tokens []string) (string, error) {
	return strings.Join(tokens, " "), nil
}

type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// OpenAIComposer asks a chat completion model to turn gloss tokens into a
// sentence. Any OpenAI-compatible endpoint works through BaseURL.
type OpenAIComposer struct {
	client *openai.Client
	model  string
}

func NewOpenAIComposer(cfg OpenAIConfig) (*OpenAIComposer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing API key")
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	} else {
		config.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIComposer{client: openai.NewClientWithConfig(config), model: model}, nil
}

func (c *OpenAIComposer) Compose(ctx context.Context, tokens []string) (string, error) {
	if len(tokens) == 0 {
		return "", nil
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: composePrompt},
			{Role: openai.ChatMessageRoleUser, Content: strings.Join(tokens, " ")},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", domain.ErrUpstreamInvalidResponse)
	}
	sentence := strings.TrimSpace(resp.Choices[0].Message.Content)
	if sentence == "" {
		return "", fmt.Errorf("%w: empty sentence", domain.ErrUpstreamInvalidResponse)
	}
	return sentence, nil
}
