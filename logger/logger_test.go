package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestPlainFormatter(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	cases := []struct {
		name string
		data logrus.Fields
		want string
	}{
		{
			name: "component and fields",
			data: logrus.Fields{"component": "server", "caller": "x.go:1", "status": 200, "path": "/api/generate"},
			want: "x.go:1 [2025-01-02T03:04:05Z] [INFO] [server] handled path=/api/generate status=200\n",
		},
		{
			name: "bare",
			data: logrus.Fields{},
			want: "[2025-01-02T03:04:05Z] [INFO] handled\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := &logrus.Entry{
				Logger:  logrus.New(),
				Time:    ts,
				Level:   logrus.InfoLevel,
				Message: "handled",
				Data:    tc.data,
			}
			out, err := (PlainFormatter{}).Format(entry)
			if err != nil {
				t.Fatalf("Format() error: %v", err)
			}
			if string(out) != tc.want {
				t.Fatalf("unexpected format:\nwant: %q\ngot:  %q", tc.want, string(out))
			}
		})
	}
}

func TestNamedWritesThroughRoot(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(PlainFormatter{})
	SetRoot(l)
	t.Cleanup(func() { SetRoot(nil) })

	Named("history").WithField("size", 2).Info("cleared")
	got := buf.String()
	if !strings.Contains(got, "[history] cleared size=2") {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != logrus.DebugLevel {
		t.Fatalf("debug not parsed")
	}
	if ParseLevel("nonsense") != logrus.InfoLevel {
		t.Fatalf("unknown level should fall back to info")
	}
}
