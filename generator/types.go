package generator

import (
	"errors"
	"fmt"
	"strings"

	"story_weaver/history"
)

var (
	// ErrMissingField 表示表单必填项为空。
	ErrMissingField = errors.New("missing required field")
	// ErrEmptyResponse 表示模型返回了空文本。
	ErrEmptyResponse = errors.New("model returned empty text")
)

// DefaultStyle 是自定义模式下未填写风格时的占位值。
const DefaultStyle = "Custom"

// Params 描述一次生成请求（模板模式或自定义 prompt 模式）。
type Params struct {
	Theme        string
	Language     string
	Style        string
	Length       history.Length
	CustomPrompt string
}

// Custom 表示是否走自定义 prompt。
func (p Params) Custom() bool {
	return strings.TrimSpace(p.CustomPrompt) != ""
}

// Normalize trims every text field and fills the style default.
func (p Params) Normalize() Params {
	p.Theme = strings.TrimSpace(p.Theme)
	p.Language = strings.TrimSpace(p.Language)
	p.Style = strings.TrimSpace(p.Style)
	p.CustomPrompt = strings.TrimSpace(p.CustomPrompt)
	if p.Style == "" {
		if p.CustomPrompt != "" {
			p.Style = DefaultStyle
		} else {
			p.Style = Styles()[0]
		}
	}
	return p
}

// Validate 只做存在性检查：主题和语言必填。
func (p Params) Validate() error {
	if strings.TrimSpace(p.Theme) == "" {
		return fmt.Errorf("%w: theme", ErrMissingField)
	}
	if strings.TrimSpace(p.Language) == "" {
		return fmt.Errorf("%w: language", ErrMissingField)
	}
	return nil
}

// ValidateCustom 在自定义模式下额外要求 prompt。
func (p Params) ValidateCustom() error {
	if strings.TrimSpace(p.CustomPrompt) == "" {
		return fmt.Errorf("%w: prompt", ErrMissingField)
	}
	return p.Validate()
}
