package history

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseLength(t *testing.T) {
	tests := []struct {
		in      string
		want    Length
		wantErr bool
	}{
		{in: "short", want: Short},
		{in: "Medium", want: Medium},
		{in: "Long (6-8 paragraphs)", want: Long},
		{in: "  long  ", want: Long},
		{in: "", wantErr: true},
		{in: "epic", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLength(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLength(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLength(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseLength(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLengthLabelsAndGuidance(t *testing.T) {
	for _, l := range Lengths() {
		parsed, err := ParseLength(l.Label())
		if err != nil || parsed != l {
			t.Fatalf("label %q did not parse back to %v: %v %v", l.Label(), l, parsed, err)
		}
		if !strings.Contains(l.Guidance(), "paragraphs") {
			t.Fatalf("%v guidance = %q", l, l.Guidance())
		}
	}
	if Medium.Guidance() != "4-5 paragraphs or 12-16 lines" {
		t.Fatalf("Medium.Guidance() = %q", Medium.Guidance())
	}
}

func TestRecordJSONUsesLengthIdentity(t *testing.T) {
	r := Record{Theme: "Diwali", Language: "Hindi", Length: Long, Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"length":"long"`) {
		t.Fatalf("unexpected json %s", data)
	}
	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Length != Long {
		t.Fatalf("length = %v, want long", back.Length)
	}
}

func TestRecordTitle(t *testing.T) {
	r := Record{Theme: "Tea Ceremony", Language: "Japanese", Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
	if got, want := r.Title(), "2025-01-02 03:04:05 - Tea Ceremony (Japanese)"; got != want {
		t.Fatalf("Title() = %q, want %q", got, want)
	}
}
