package writing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/Muhsiinn/Jonas-AI/internal/llm"
	"github.com/Muhsiinn/Jonas-AI/internal/prompts"
)

type stubProviders struct {
	mock *llm.MockProvider
}

func (s *stubProviders) Provider(_ context.Context, _ string) (llm.Provider, error) {
	return s.mock, nil
}

func vocabJSON(n int) json.RawMessage {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"term":"Wort%d","meaning":"word %d","example":"ein Wort%d"}`, i, i, i)
	}
	return json.RawMessage(`{"vocab":[` + strings.Join(items, ",") + `]}`)
}

func TestGenerateProducesGoalAndVocabs(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddResponse(llm.MockResponse{Content: json.RawMessage(
		`{"goal":"Schreibe eine E-Mail an deinen Professor."}`)})
	mock.AddResponse(llm.MockResponse{Content: vocabJSON(12)})
	svc := NewService(&stubProviders{mock: mock}, prompts.MustLoad())

	ex, err := svc.Generate(context.Background(), "I was sick and missed university")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ex.Goal != "Schreibe eine E-Mail an deinen Professor." {
		t.Errorf("goal = %q", ex.Goal)
	}
	if len(ex.Vocabs) != 12 {
		t.Errorf("vocabs = %d", len(ex.Vocabs))
	}

	// The vocab prompt carries the generated goal, not the raw situation.
	vocabReq := mock.Calls[1]
	if !strings.Contains(vocabReq.System, ex.Goal) {
		t.Errorf("vocab prompt missing goal: %q", vocabReq.System)
	}
}

func TestEmptyGoalShortCircuitsVocabs(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddResponse(llm.MockResponse{Content: json.RawMessage(`{"goal":""}`)})
	svc := NewService(&stubProviders{mock: mock}, prompts.MustLoad())

	ex, err := svc.Generate(context.Background(), "nothing happened")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(ex.Vocabs) != 0 {
		t.Errorf("vocabs = %v, want empty", ex.Vocabs)
	}
	if mock.CallCount() != 1 {
		t.Errorf("empty goal still called the model %d times", mock.CallCount())
	}
}

func TestVocabCountBounds(t *testing.T) {
	cases := []struct {
		n  int
		ok bool
	}{
		{9, false},
		{10, true},
		{15, true},
		{16, false},
		{1, false},
	}

	for _, tc := range cases {
		mock := llm.NewMockProvider()
		mock.AddResponse(llm.MockResponse{Content: json.RawMessage(`{"goal":"Schreibe etwas."}`)})
		mock.AddResponse(llm.MockResponse{Content: vocabJSON(tc.n)})
		svc := NewService(&stubProviders{mock: mock}, prompts.MustLoad())

		_, err := svc.Generate(context.Background(), "situation")
		if tc.ok && err != nil {
			t.Errorf("n=%d: unexpected error %v", tc.n, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("n=%d: expected contract violation", tc.n)
		}
	}
}

func TestEvaluateGradesAttempt(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"score":78,"strengths":"Clear structure","improvements":"Mind the cases","review":"Good work overall, keep going."}`)})
	svc := NewService(&stubProviders{mock: mock}, prompts.MustLoad())

	eval, err := svc.Evaluate(context.Background(), "Schreibe eine E-Mail.", "Sehr geehrter Herr Professor, ...")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if eval.Score != 78 {
		t.Errorf("score = %d", eval.Score)
	}

	req := mock.LastCall()
	if !strings.Contains(req.System, "Sehr geehrter Herr Professor") {
		t.Errorf("evaluation prompt missing learner text: %q", req.System)
	}
}
