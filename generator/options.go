package generator

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

var styles = []string{"Story", "Poem", "Description", "Dialogue", "Letter", "Myth"}

var popularLanguages = []string{
	"Spanish", "French", "German",
	"Hindi", "Urdu", "Bengali",
	"Chinese", "Japanese", "Korean",
	"Arabic", "Hebrew", "Persian",
	"Russian", "Portuguese", "Italian",
	"English", "Swahili", "Turkish", "Tamil", "Sanskrit",
}

// Styles 返回表单中的风格建议。
func Styles() []string {
	return append([]string(nil), styles...)
}

// PopularLanguages 返回侧边栏的语言建议。
func PopularLanguages() []string {
	return append([]string(nil), popularLanguages...)
}

// SuggestLanguages 对语言建议做模糊匹配；空查询返回前 limit 个。
// limit <= 0 表示不限制。
func SuggestLanguages(query string, limit int) []string {
	query = strings.TrimSpace(query)
	var out []string
	if query == "" {
		out = PopularLanguages()
	} else {
		for _, m := range fuzzy.Find(query, popularLanguages) {
			out = append(out, m.Str)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
