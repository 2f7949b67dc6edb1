// Package writing generates the daily writing exercise: a concrete writing
// goal derived from the day's situation, a vocabulary list for it, and an
// evaluation of the learner's attempt.
package writing

import (
	"context"
	"fmt"

	"github.com/Muhsiinn/Jonas-AI/internal/llm"
	"github.com/Muhsiinn/Jonas-AI/internal/prompts"
	"github.com/Muhsiinn/Jonas-AI/internal/workflow"
)

// Vocabulary size contract enforced on the model's output.
const (
	minVocabs = 10
	maxVocabs = 15
)

// Pipeline stage names.
const (
	StageGoal   = "writing"
	StageVocabs = "vocab_maker"
)

// VocabItem is one vocabulary entry for the writing goal.
type VocabItem struct {
	Term    string `json:"term"`
	Meaning string `json:"meaning"`
	Example string `json:"example"`
}

// State carries the pipeline between stages.
type State struct {
	Situation string
	Goal      string
	Vocabs    []VocabItem
}

// Exercise is the pipeline's final output.
type Exercise struct {
	Goal   string      `json:"goal"`
	Vocabs []VocabItem `json:"vocabs"`
}

// Evaluation grades a learner's writing attempt.
type Evaluation struct {
	Score        int    `json:"score"`
	Strengths    string `json:"strengths"`
	Improvements string `json:"improvements"`
	Review       string `json:"review"`
}

// Providers resolves a model id to a ready provider. Satisfied by
// llm.Factory.
type Providers interface {
	Provider(ctx context.Context, model string) (llm.Provider, error)
}

// Service runs the writing pipeline and grades attempts.
type Service struct {
	providers Providers
	prompts   *prompts.Store
}

// NewService creates a writing service.
func NewService(providers Providers, store *prompts.Store) *Service {
	return &Service{providers: providers, prompts: store}
}

// Generate produces the writing exercise for the given situation.
func (s *Service) Generate(ctx context.Context, situation string) (*Exercise, error) {
	pipeline, err := workflow.NewGraph[State]().
		AddNode(StageGoal, s.makeGoal).
		AddNode(StageVocabs, s.makeVocabs).
		AddEdge(StageGoal, StageVocabs).
		AddEdge(StageVocabs, workflow.End).
		SetEntryPoint(StageGoal).
		Compile()
	if err != nil {
		return nil, fmt.Errorf("build writing pipeline: %w", err)
	}

	final, err := pipeline.Run(ctx, State{Situation: situation})
	if err != nil {
		return nil, err
	}
	return &Exercise{Goal: final.Goal, Vocabs: final.Vocabs}, nil
}

func (s *Service) makeGoal(ctx context.Context, state State) (State, error) {
	ctx = llm.WithPurpose(ctx, "writing-goal")

	prompt, err := s.prompts.Render("writing_goal_prompt", map[string]string{
		"daily_situation": state.Situation,
	})
	if err != nil {
		return state, err
	}

	provider, err := s.providers.Provider(ctx, llm.DefaultModel)
	if err != nil {
		return state, err
	}

	var out struct {
		Goal string `json:"goal"`
	}
	err = llm.FallbackDecoder{Provider: provider}.Decode(ctx, llm.Request{
		System: prompt,
		Schema: GoalSchema,
	}, &out)
	if err != nil {
		return state, fmt.Errorf("generate writing goal: %w", err)
	}

	state.Goal = out.Goal
	return state, nil
}

// makeVocabs generates the vocabulary list. An empty goal short-circuits to
// an empty list; a vocabulary count outside the contract is treated as a
// model failure, not silently accepted.
func (s *Service) makeVocabs(ctx context.Context, state State) (State, error) {
	if state.Goal == "" {
		state.Vocabs = []VocabItem{}
		return state, nil
	}

	ctx = llm.WithPurpose(ctx, "writing-vocab")

	prompt, err := s.prompts.Render("writing_vocab_prompt", map[string]string{
		"goal": state.Goal,
	})
	if err != nil {
		return state, err
	}

	provider, err := s.providers.Provider(ctx, llm.DefaultModel)
	if err != nil {
		return state, err
	}

	var out struct {
		Vocab []VocabItem `json:"vocab"`
	}
	err = llm.FallbackDecoder{Provider: provider}.Decode(ctx, llm.Request{
		System: prompt,
		Schema: VocabSchema,
	}, &out)
	if err != nil {
		return state, fmt.Errorf("generate writing vocabulary: %w", err)
	}

	if n := len(out.Vocab); n < minVocabs || n > maxVocabs {
		return state, fmt.Errorf("writing vocabulary: model returned %d items, contract is %d-%d", n, minVocabs, maxVocabs)
	}

	state.Vocabs = out.Vocab
	return state, nil
}

// Evaluate grades the learner's attempt against the stored goal.
func (s *Service) Evaluate(ctx context.Context, goal, userInput string) (*Evaluation, error) {
	ctx = llm.WithPurpose(ctx, "writing-evaluation")

	prompt, err := s.prompts.Render("evaluate_writing_prompt", map[string]string{
		"goal":       goal,
		"user_input": userInput,
	})
	if err != nil {
		return nil, err
	}

	provider, err := s.providers.Provider(ctx, llm.DefaultModel)
	if err != nil {
		return nil, err
	}

	var eval Evaluation
	err = llm.FallbackDecoder{Provider: provider}.Decode(ctx, llm.Request{
		System: prompt,
		Schema: EvaluationSchema,
	}, &eval)
	if err != nil {
		return nil, fmt.Errorf("evaluate writing: %w", err)
	}
	return &eval, nil
}
