package lesson

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Muhsiinn/Jonas-AI/internal/llm"
	"github.com/Muhsiinn/Jonas-AI/internal/workflow"
)

// Pipeline stage names, also surfaced as SSE progress steps.
const (
	StageArticle   = "lesson_maker"
	StageVocab     = "vocab_maker"
	StageGrammar   = "grammar_maker"
	StageQuestions = "question_maker"
)

// Providers resolves a model id to a ready provider. Satisfied by
// llm.Factory.
type Providers interface {
	Provider(ctx context.Context, model string) (llm.Provider, error)
}

func (s *Service) buildPipeline() (*workflow.Pipeline[State], error) {
	return workflow.NewGraph[State]().
		AddNode(StageArticle, s.makeArticle).
		AddNode(StageVocab, s.makeVocabs).
		AddNode(StageGrammar, s.makeGrammar).
		AddNode(StageQuestions, s.makeQuestions).
		AddEdge(StageArticle, StageVocab).
		AddEdge(StageVocab, StageGrammar).
		AddEdge(StageGrammar, StageQuestions).
		AddEdge(StageQuestions, workflow.End).
		SetEntryPoint(StageArticle).
		Compile()
}

func (s *Service) makeArticle(ctx context.Context, state State) (State, error) {
	ctx = llm.WithPurpose(ctx, "lesson")

	prompt, err := s.prompts.Render("lesson_prompt", map[string]string{
		"situation":           state.Situation,
		"user_reading_level":  state.Profile.ReadingLevel,
		"user_speaking_level": state.Profile.SpeakingLevel,
		"user_region":         state.Profile.Region,
		"user_goal":           state.Profile.Goal,
	})
	if err != nil {
		return state, err
	}

	provider, err := s.providers.Provider(ctx, llm.DefaultModel)
	if err != nil {
		return state, err
	}

	var article Article
	err = llm.FallbackDecoder{Provider: provider}.Decode(ctx, llm.Request{
		System: prompt,
		Schema: ArticleSchema,
	}, &article)
	if err != nil {
		var auth *llm.ErrAuth
		if errors.As(err, &auth) {
			return state, fmt.Errorf(
				"OpenRouter API authentication failed, check OPENROUTER_API_KEY (get a key at https://openrouter.ai/keys): %w", err)
		}
		return state, fmt.Errorf("generate article: %w", err)
	}

	state.Lesson = &article
	return state, nil
}

func (s *Service) makeVocabs(ctx context.Context, state State) (State, error) {
	ctx = llm.WithPurpose(ctx, "lesson-vocab")

	prompt, err := s.prompts.Render("vocab_prompt", map[string]string{
		"lesson_text": strings.Join(state.Lesson.Paragraphs, " "),
	})
	if err != nil {
		return state, err
	}

	provider, err := s.providers.Provider(ctx, llm.AuxModel)
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
		return state, fmt.Errorf("generate vocabulary: %w", err)
	}

	state.Vocabs = out.Vocab
	return state, nil
}

func (s *Service) makeGrammar(ctx context.Context, state State) (State, error) {
	ctx = llm.WithPurpose(ctx, "lesson-grammar")

	prompt, err := s.prompts.Render("grammar_prompt", map[string]string{
		"lesson_text":         strings.Join(state.Lesson.Paragraphs, " "),
		"user_reading_level":  state.Profile.ReadingLevel,
		"user_speaking_level": state.Profile.SpeakingLevel,
	})
	if err != nil {
		return state, err
	}

	provider, err := s.providers.Provider(ctx, llm.AuxModel)
	if err != nil {
		return state, err
	}

	var out struct {
		Grammar []GrammarRule `json:"grammar"`
	}
	err = llm.FallbackDecoder{Provider: provider}.Decode(ctx, llm.Request{
		System: prompt,
		Schema: GrammarSchema,
	}, &out)
	if err != nil {
		return state, fmt.Errorf("generate grammar: %w", err)
	}

	state.Grammar = out.Grammar
	return state, nil
}

func (s *Service) makeQuestions(ctx context.Context, state State) (State, error) {
	ctx = llm.WithPurpose(ctx, "lesson-questions")

	prompt, err := s.prompts.Render("question_prompt", map[string]string{
		"situation":           state.Situation,
		"user_reading_level":  state.Profile.ReadingLevel,
		"user_speaking_level": state.Profile.SpeakingLevel,
		"user_region":         state.Profile.Region,
		"user_goal":           state.Profile.Goal,
		"lesson_text":         strings.Join(state.Lesson.Paragraphs, " "),
		"grammar_rules":       formatGrammarRules(state.Grammar),
	})
	if err != nil {
		return state, err
	}

	provider, err := s.providers.Provider(ctx, llm.DefaultModel)
	if err != nil {
		return state, err
	}

	var out struct {
		Questions []Question `json:"questions"`
	}
	err = llm.FallbackDecoder{Provider: provider}.Decode(ctx, llm.Request{
		System: prompt,
		Schema: QuestionSchema,
	}, &out)
	if err != nil {
		return state, fmt.Errorf("generate questions: %w", err)
	}

	state.Questions = out.Questions
	return state, nil
}

func formatGrammarRules(rules []GrammarRule) string {
	if len(rules) == 0 {
		return "No grammar rules available"
	}
	lines := make([]string, len(rules))
	for i, g := range rules {
		lines[i] = fmt.Sprintf("- %s: %s", g.Rule, g.Explanation)
	}
	return strings.Join(lines, "\n")
}
