package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"story_weaver/history"
)

// Agent 负责把表单参数组装成 prompt、调用模型并产出 Record。
type Agent struct {
	llm LLMClient
	now func() time.Time
}

func NewAgent(llm LLMClient) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm, now: time.Now}, nil
}

// WithClock 替换时间来源，测试用。
func (a *Agent) WithClock(now func() time.Time) *Agent {
	cp := *a
	cp.now = now
	return &cp
}

// Generate 调用模型生成内容；失败时不会产生任何 Record。
func (a *Agent) Generate(ctx context.Context, p Params) (history.Record, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return history.Record{}, err
	}

	raw, err := a.llm.Complete(ctx, BuildGenerationPrompt(p))
	if err != nil {
		return history.Record{}, fmt.Errorf("generate: %w", err)
	}
	content, err := PostProcess(raw)
	if err != nil {
		return history.Record{}, fmt.Errorf("generate: %w", err)
	}

	return history.Record{
		Content:   content,
		Theme:     p.Theme,
		Language:  p.Language,
		Style:     p.Style,
		Length:    p.Length,
		Timestamp: a.now(),
		Custom:    p.Custom(),
	}, nil
}

// Translate 翻译一段内容并附带文化注释。
func (a *Agent) Translate(ctx context.Context, content, target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("%w: target language", ErrMissingField)
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: content", ErrMissingField)
	}
	raw, err := a.llm.Complete(ctx, BuildTranslationPrompt(content, target))
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	text, err := PostProcess(raw)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return text, nil
}
