package publisher

import (
	"net/http/httptest"
	"strings"
	"testing"

	"story_weaver/history"
)

func TestDownloadFilename(t *testing.T) {
	tests := []struct {
		theme, lang, want string
	}{
		{"Tea Ceremony", "Japanese", "Tea_Ceremony_Japanese.txt"},
		{"Diwali!", "Hindi", "Diwali_Hindi.txt"},
		{"Día de Muertos", "Spanish", "Día_de_Muertos_Spanish.txt"},
		{"../../etc/passwd", "x", "etcpasswd_x.txt"},
		{"", "", "story.txt"},
		{"???", "Hindi", "Hindi.txt"},
	}
	for _, tt := range tests {
		if got := DownloadFilename(tt.theme, tt.lang); got != tt.want {
			t.Fatalf("DownloadFilename(%q, %q) = %q, want %q", tt.theme, tt.lang, got, tt.want)
		}
	}
}

func TestPreview(t *testing.T) {
	short := "hola"
	if got := Preview(short, PreviewWidth); got != short {
		t.Fatalf("Preview(short) = %q", got)
	}
	long := strings.Repeat("a", 400)
	got := Preview(long, PreviewWidth)
	if !strings.HasSuffix(got, "...") || len(got) != PreviewWidth {
		t.Fatalf("Preview(long) len=%d suffix ok=%v", len(got), strings.HasSuffix(got, "..."))
	}
	if got := Preview(long, 0); got != long {
		t.Fatalf("width 0 should disable truncation")
	}
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML("# Diwali\n\nLamps *glow*.\n\n<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(out, "<h1>Diwali</h1>") || !strings.Contains(out, "<em>glow</em>") {
		t.Fatalf("unexpected html %q", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("raw html passed through: %q", out)
	}
}

func TestWriteDownload(t *testing.T) {
	rec := history.Record{Content: "Once upon a time", Theme: "Tea Ceremony", Language: "Japanese"}
	w := httptest.NewRecorder()
	if err := WriteDownload(w, rec); err != nil {
		t.Fatalf("WriteDownload: %v", err)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename=Tea_Ceremony_Japanese.txt" {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	if w.Body.String() != rec.Content {
		t.Fatalf("body = %q", w.Body.String())
	}
}
