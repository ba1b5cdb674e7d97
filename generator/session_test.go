package generator

import (
	"context"
	"errors"
	"testing"

	"story_weaver/history"
)

func TestSessionGenerateAppendsOnlyOnSuccess(t *testing.T) {
	llm := &fakeLLM{reply: "story"}
	s := NewSession("s1", newTestAgent(t, llm))
	ctx := context.Background()

	e, err := s.Generate(ctx, Params{Theme: "Diwali", Language: "Hindi", Length: history.Short})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if e.Ref.Index != 0 || e.Record.Theme != "Diwali" {
		t.Fatalf("entry = %+v", e)
	}

	llm.err = errBoom
	if _, err := s.Generate(ctx, Params{Theme: "Tea Ceremony", Language: "Japanese"}); !errors.Is(err, errBoom) {
		t.Fatalf("expected model failure, got %v", err)
	}
	if _, err := s.GenerateCustom(ctx, Params{Theme: "x", Language: "y"}); !errors.Is(err, ErrMissingField) {
		t.Fatalf("custom without prompt: err=%v", err)
	}
	if got := s.Stats().Total; got != 1 {
		t.Fatalf("failed calls changed the store: total=%d", got)
	}
}

func TestSessionGenerateIgnoresStrayCustomPrompt(t *testing.T) {
	llm := &fakeLLM{reply: "story"}
	s := NewSession("s1", newTestAgent(t, llm))

	e, err := s.Generate(context.Background(), Params{Theme: "Diwali", Language: "Hindi", CustomPrompt: "ignored"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if e.Record.Custom {
		t.Fatalf("template generation was recorded as custom")
	}
}

func TestSessionEntriesOrder(t *testing.T) {
	llm := &fakeLLM{reply: "story"}
	s := NewSession("s1", newTestAgent(t, llm))
	ctx := context.Background()
	for _, theme := range []string{"a", "b", "c"} {
		if _, err := s.Generate(ctx, Params{Theme: theme, Language: "Hindi"}); err != nil {
			t.Fatalf("Generate(%s): %v", theme, err)
		}
	}

	recent := s.Entries(true)
	if len(recent) != 3 || recent[0].Record.Theme != "c" || recent[0].Ref.Index != 2 || recent[2].Record.Theme != "a" {
		t.Fatalf("recent = %+v", recent)
	}
	original := s.Entries(false)
	if original[0].Record.Theme != "a" || original[0].Ref.Index != 0 {
		t.Fatalf("original = %+v", original)
	}
}

func TestSessionTranslateRejectsStaleRef(t *testing.T) {
	llm := &fakeLLM{reply: "story"}
	s := NewSession("s1", newTestAgent(t, llm))
	ctx := context.Background()

	e, err := s.Generate(ctx, Params{Theme: "Diwali", Language: "Hindi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	llm.reply = "Translation: ..."
	if _, text, err := s.Translate(ctx, e.Ref, "English"); err != nil || text != "Translation: ..." {
		t.Fatalf("Translate: text=%q err=%v", text, err)
	}

	if n := s.Clear(); n != 1 {
		t.Fatalf("Clear() = %d, want 1", n)
	}
	llm.reply = "story"
	if _, err := s.Generate(ctx, Params{Theme: "Tea Ceremony", Language: "Japanese"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	calls := len(llm.prompts)
	if _, _, err := s.Translate(ctx, e.Ref, "English"); !errors.Is(err, history.ErrIndexOutOfRange) {
		t.Fatalf("stale ref: err=%v, want ErrIndexOutOfRange", err)
	}
	if len(llm.prompts) != calls {
		t.Fatalf("model was called for a stale reference")
	}
	if _, err := s.Get(s.Ref(0)); err != nil {
		t.Fatalf("fresh ref: %v", err)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	agent := newTestAgent(t, &fakeLLM{reply: "story"})
	a := NewSession("a", agent)
	b := NewSession("b", agent)

	if _, err := a.Generate(context.Background(), Params{Theme: "Diwali", Language: "Hindi"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := b.Stats().Total; got != 0 {
		t.Fatalf("session b sees %d records from session a", got)
	}
	if _, err := b.Get(b.Ref(0)); !errors.Is(err, history.ErrIndexOutOfRange) {
		t.Fatalf("b.Get(0): err=%v", err)
	}
}
