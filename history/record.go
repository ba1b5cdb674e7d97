package history

import (
	"fmt"
	"strings"
	"time"
)

// StampLayout is the fixed timestamp format shown next to every record.
const StampLayout = "2006-01-02 15:04:05"

// Length is the size class requested for a generation.
type Length int

const (
	Short Length = iota
	Medium
	Long
)

var lengthInfo = [...]struct {
	id       string
	label    string
	guidance string
}{
	Short:  {id: "short", label: "Short (2-3 paragraphs)", guidance: "2-3 paragraphs or 8-10 lines"},
	Medium: {id: "medium", label: "Medium (4-5 paragraphs)", guidance: "4-5 paragraphs or 12-16 lines"},
	Long:   {id: "long", label: "Long (6-8 paragraphs)", guidance: "6-8 paragraphs or 20-24 lines"},
}

// Lengths returns every size class in display order.
func Lengths() []Length {
	return []Length{Short, Medium, Long}
}

func (l Length) valid() bool {
	return l >= Short && l <= Long
}

// String returns the stable identity used in URLs, JSON and config.
func (l Length) String() string {
	if !l.valid() {
		return fmt.Sprintf("length(%d)", int(l))
	}
	return lengthInfo[l].id
}

// Label is the human facing name offered in the form.
func (l Length) Label() string {
	if !l.valid() {
		return l.String()
	}
	return lengthInfo[l].label
}

// Guidance is the size instruction handed to the model.
func (l Length) Guidance() string {
	if !l.valid() {
		return lengthInfo[Medium].guidance
	}
	return lengthInfo[l].guidance
}

// ParseLength accepts the identity ("short"), the display label
// ("Short (2-3 paragraphs)") or any casing of the leading word.
func ParseLength(s string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return Short, fmt.Errorf("length is required")
	}
	for _, l := range Lengths() {
		info := lengthInfo[l]
		if v == info.id || v == strings.ToLower(info.label) {
			return l, nil
		}
		if word, _, _ := strings.Cut(v, " "); word == info.id {
			return l, nil
		}
	}
	return Short, fmt.Errorf("unknown length %q", s)
}

func (l Length) MarshalText() ([]byte, error) {
	if !l.valid() {
		return nil, fmt.Errorf("invalid length %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Length) UnmarshalText(b []byte) error {
	parsed, err := ParseLength(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Record is one generation result. It is created once by the generator and
// never changed after it is appended to a Store.
type Record struct {
	Content   string    `json:"content"`
	Theme     string    `json:"theme"`
	Language  string    `json:"language"`
	Style     string    `json:"style"`
	Length    Length    `json:"length"`
	Timestamp time.Time `json:"timestamp"`
	Custom    bool      `json:"custom"`
}

// Stamp formats the capture time with StampLayout.
func (r Record) Stamp() string {
	return r.Timestamp.Format(StampLayout)
}

// Title is the selection label: "<stamp> - <theme> (<language>)".
func (r Record) Title() string {
	return fmt.Sprintf("%s - %s (%s)", r.Stamp(), r.Theme, r.Language)
}
