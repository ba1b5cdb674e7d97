package generator

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System string
	User   string
}

// BuildGenerationPrompt 生成创作提示词；自定义模式直接透传用户 prompt。
func BuildGenerationPrompt(p Params) Prompt {
	if p.Custom() {
		return Prompt{User: p.CustomPrompt}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are a culturally-aware creative writer. Generate a %s in %s language.\n\n", p.Style, p.Language))
	sb.WriteString(fmt.Sprintf("Theme: %s\n", p.Theme))
	sb.WriteString(fmt.Sprintf("Style: %s\n", p.Style))
	sb.WriteString(fmt.Sprintf("Length: %s\n\n", p.Length.Guidance()))
	sb.WriteString("Requirements:\n")
	sb.WriteString(fmt.Sprintf("1. Write ENTIRELY in %s (no English unless it's English language request)\n", p.Language))
	sb.WriteString("2. Incorporate authentic cultural elements and details\n")
	sb.WriteString("3. Make it engaging and vivid with rich descriptions\n")
	sb.WriteString(fmt.Sprintf("4. Use appropriate literary devices for the %s format\n", p.Style))
	sb.WriteString("5. Ensure cultural sensitivity and accuracy\n\n")
	sb.WriteString(fmt.Sprintf("Generate the %s now:", p.Style))

	return Prompt{User: sb.String()}
}

// BuildTranslationPrompt 生成翻译 + 文化注释提示词。
func BuildTranslationPrompt(text, target string) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Translate the following text to %s and provide cultural context:\n\n", target))
	sb.WriteString(fmt.Sprintf("Text: %s\n\n", text))
	sb.WriteString("Format:\n")
	sb.WriteString("Translation: [translated text]\n")
	sb.WriteString("Cultural Notes: [brief explanation of cultural elements]")
	return Prompt{User: sb.String()}
}
