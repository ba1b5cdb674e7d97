package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordGeneration(t *testing.T) {
	m := New()
	m.RecordGeneration("template", time.Second, nil)
	m.RecordGeneration("template", time.Second, errors.New("boom"))
	m.RecordGeneration("custom", time.Second, nil)

	if got := testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("template", "success")); got != 1 {
		t.Fatalf("template/success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("template", "error")); got != 1 {
		t.Fatalf("template/error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("custom", "success")); got != 1 {
		t.Fatalf("custom/success = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordTranslation(10*time.Millisecond, nil)
	m.ActiveSessions.Set(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`story_weaver_translations_total{status="success"} 1`,
		"story_weaver_active_sessions 3",
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestIndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ClearsTotal.Inc()
	if got := testutil.ToFloat64(b.ClearsTotal); got != 0 {
		t.Fatalf("registries leak between instances: %v", got)
	}
}
