package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

var scoreSchema = &Schema{
	Name:        "test-score",
	Description: "test schema",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{"type": "integer"},
		},
		"required": []any{"score"},
	},
}

type scoreOut struct {
	Score int `json:"score"`
}

func TestFallbackDecoder_StructuredTierWins(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"score": 75}`)})
	d := FallbackDecoder{Provider: mock}

	var out scoreOut
	if err := d.Decode(context.Background(), Request{Schema: scoreSchema}, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Score != 75 {
		t.Errorf("expected score 75, got %d", out.Score)
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected a single provider call, got %d", mock.CallCount())
	}
}

func TestFallbackDecoder_FallsBackToFreeText(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrInvalidResponse{Err: errors.New("truncated")}},
		MockResponse{Content: json.RawMessage("Sure thing!\n```json\n{\"score\": 42}\n```")},
	)
	d := FallbackDecoder{Provider: mock}

	var out scoreOut
	if err := d.Decode(context.Background(), Request{Schema: scoreSchema}, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Score != 42 {
		t.Errorf("expected score 42, got %d", out.Score)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 provider calls, got %d", mock.CallCount())
	}
	// Second call must have been free-text (no schema).
	if mock.Calls[1].Schema != nil {
		t.Error("tier two must drop the schema from the request")
	}
}

func TestFallbackDecoder_BothTiersFail(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad")}},
		MockResponse{Content: json.RawMessage("sorry, I cannot answer that")},
	)
	d := FallbackDecoder{Provider: mock}

	var out scoreOut
	err := d.Decode(context.Background(), Request{Schema: scoreSchema}, &out)
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestFallbackDecoder_AuthErrorNotRetried(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrAuth{Err: errors.New("401")}})
	d := FallbackDecoder{Provider: mock}

	var out scoreOut
	err := d.Decode(context.Background(), Request{Schema: scoreSchema}, &out)
	var authErr *ErrAuth
	if !errors.As(err, &authErr) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("auth failure must not trigger the free-text tier, got %d calls", mock.CallCount())
	}
}

func TestFallbackDecoder_FreeTextTierValidatesSchema(t *testing.T) {
	// JSON extracted in tier two still has to conform to the schema.
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"score": "not-an-int"}`)},
	)
	d := FallbackDecoder{Provider: mock}

	var out scoreOut
	err := d.DecodeFreeText(context.Background(), Request{Schema: scoreSchema}, &out)
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected schema validation failure, got %v", err)
	}
}

func TestFallbackDecoder_RequiresSchema(t *testing.T) {
	d := FallbackDecoder{Provider: NewMockProvider()}
	var out scoreOut
	if err := d.Decode(context.Background(), Request{}, &out); err == nil {
		t.Fatal("expected error for missing schema")
	}
}
