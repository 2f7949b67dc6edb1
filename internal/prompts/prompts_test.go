package prompts

import (
	"strings"
	"testing"
)

func TestLoadParsesEmbeddedFile(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := []string{
		"lesson_prompt",
		"vocab_prompt",
		"grammar_prompt",
		"question_prompt",
		"evaluate_lesson_prompt",
		"roleplay_system_prompt",
		"roleplay_goal_generator.system",
		"roleplay_goal_generator.human",
		"end_check_prompt",
		"evaluate_roleplay_prompt",
		"writing_goal_prompt",
		"writing_vocab_prompt",
		"evaluate_writing_prompt",
	}
	names := s.Names()
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, w := range want {
		if !have[w] {
			t.Errorf("missing prompt %q", w)
		}
	}
}

func TestRenderSubstitutesAllPlaceholders(t *testing.T) {
	s := MustLoad()

	out, err := s.Render("end_check_prompt", map[string]string{
		"goal_text": "order a coffee",
		"reply":     "Here is your coffee, enjoy!",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "order a coffee") {
		t.Errorf("goal not substituted: %q", out)
	}
	if strings.Contains(out, "{{") {
		t.Errorf("unresolved placeholder remains: %q", out)
	}
}

func TestRenderKeepsBracesInValues(t *testing.T) {
	s := MustLoad()

	out, err := s.Render("evaluate_roleplay_prompt", map[string]string{
		"lesson_title": "Im Cafe",
		"lesson_body":  "Ein kurzer Text.",
		"goal_text":    "order a coffee",
		"user_role":    "customer",
		"ai_role":      "barista",
		"conversation": "User: what does {{ mean in Go templates?\nAI: It opens an action.",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "what does {{ mean in Go templates?") {
		t.Errorf("braces in value were mangled: %q", out)
	}
}

func TestRenderDoesNotReExpandValues(t *testing.T) {
	s := MustLoad()

	out, err := s.Render("end_check_prompt", map[string]string{
		"goal_text": "{{ reply }}",
		"reply":     "done",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "{{ reply }}") {
		t.Errorf("value was re-substituted: %q", out)
	}
}

func TestRenderFailsOnMissingVar(t *testing.T) {
	s := MustLoad()

	_, err := s.Render("end_check_prompt", map[string]string{
		"goal_text": "order a coffee",
	})
	if err == nil {
		t.Fatal("expected error for unresolved placeholder")
	}
	if !strings.Contains(err.Error(), "reply") {
		t.Errorf("error should name the placeholder: %v", err)
	}
}

func TestRenderFailsOnUnknownVar(t *testing.T) {
	s := MustLoad()

	_, err := s.Render("end_check_prompt", map[string]string{
		"goal_text": "order a coffee",
		"reply":     "done",
		"bogus":     "x",
	})
	if err == nil {
		t.Fatal("expected error for var without placeholder")
	}
}

func TestRenderFailsOnUnknownPrompt(t *testing.T) {
	s := MustLoad()
	if _, err := s.Render("no_such_prompt", nil); err == nil {
		t.Fatal("expected error for unknown prompt")
	}
}

func TestRoleplaySystemPrompt(t *testing.T) {
	s := MustLoad()

	out, err := s.Render("roleplay_system_prompt", map[string]string{
		"lesson_title": "Im Cafe",
		"lesson_body":  "Ein kurzer Text.",
		"goal_text":    "order a coffee",
		"user_role":    "customer",
		"ai_role":      "barista",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "locked into the role: barista") {
		t.Errorf("ai_role not substituted everywhere: %q", out)
	}
}
