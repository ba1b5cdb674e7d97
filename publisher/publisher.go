// Package publisher turns stored records into things a browser can show or
// save: HTML renderings, previews and plain-text downloads.
package publisher

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"story_weaver/history"
)

// PreviewWidth is the display width of the translate tab preview.
const PreviewWidth = 300

const fallbackFilename = "story"

var md = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// RenderHTML converts model markdown to HTML. Raw HTML in the model output is
// not passed through.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Preview shortens content to width display cells, appending "..." when cut.
func Preview(content string, width int) string {
	if width <= 0 || runewidth.StringWidth(content) <= width {
		return content
	}
	return runewidth.Truncate(content, width, "...")
}

// DownloadFilename builds "<theme>_<language>.txt". Spaces become underscores
// and anything that is not a letter, digit, '_' or '-' is dropped.
func DownloadFilename(theme, language string) string {
	name := sanitize(theme)
	if lang := sanitize(language); lang != "" {
		if name != "" {
			name += "_"
		}
		name += lang
	}
	if name == "" {
		name = fallbackFilename
	}
	return name + ".txt"
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune('_')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WriteDownload sends rec's content as a plain-text attachment.
func WriteDownload(w http.ResponseWriter, rec history.Record) error {
	name := DownloadFilename(rec.Theme, rec.Language)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", fmt.Sprint(len(rec.Content)))
	_, err := io.WriteString(w, rec.Content)
	return err
}
