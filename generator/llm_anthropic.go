package generator

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"story_weaver/logger"
)

const anthropicMaxTokens = 4096

// AnthropicLLM implements LLMClient on the Messages API.
type AnthropicLLM struct {
	Model  string
	client anthropic.Client
}

func NewAnthropicLLMFromConfig(cfg *LLMSettings) (*AnthropicLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("anthropic api key missing; provide llm.api_key")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if base := normalizeAnthropicBaseURL(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	return &AnthropicLLM{Model: cfg.Model, client: anthropic.NewClient(opts...)}, nil
}

func (a *AnthropicLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	log := logger.Named("llm").WithField("model", a.Model)
	log.WithField("chars", len(prompt.User)).Debug("-> messages request")

	msg, err := a.client.Messages.New(ctx, buildAnthropicParams(prompt, anthropic.Model(a.Model)))
	if err != nil {
		log.WithError(err).Warn("<- messages request failed")
		return "", err
	}
	text := extractAnthropicText(msg.Content)
	log.WithField("chars", len(text)).Debug("<- messages response")
	return text, nil
}

func buildAnthropicParams(prompt Prompt, model anthropic.Model) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
	}
	if system := strings.TrimSpace(prompt.System); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params
}

func extractAnthropicText(blocks []anthropic.ContentBlockUnion) string {
	var sb strings.Builder
	for _, block := range blocks {
		if v, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(v.Text)
		}
	}
	return sb.String()
}

func normalizeAnthropicBaseURL(raw string) string {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	base = strings.TrimSuffix(base, "/v1")
	return strings.TrimRight(base, "/")
}
