package lesson

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Muhsiinn/Jonas-AI/internal/llm"
	"github.com/Muhsiinn/Jonas-AI/internal/prompts"
)

// Event is one entry in the lesson generation progress feed.
type Event struct {
	Type    string   `json:"type"`
	Step    string   `json:"step,omitempty"`
	Message string   `json:"message,omitempty"`
	Data    *Content `json:"data,omitempty"`
}

// Service runs the lesson pipeline and grades learner answers.
type Service struct {
	providers Providers
	prompts   *prompts.Store
}

// NewService creates a lesson service.
func NewService(providers Providers, store *prompts.Store) *Service {
	return &Service{providers: providers, prompts: store}
}

// Generate runs the full pipeline and returns the complete lesson.
func (s *Service) Generate(ctx context.Context, profile Profile, situation string) (*Content, error) {
	return s.GenerateStream(ctx, profile, situation, nil)
}

// GenerateStream runs the pipeline, calling emit after each stage so callers
// can surface progress incrementally. emit may be nil. The final "complete"
// event carries the full lesson.
func (s *Service) GenerateStream(ctx context.Context, profile Profile, situation string, emit func(Event)) (*Content, error) {
	pipeline, err := s.buildPipeline()
	if err != nil {
		return nil, fmt.Errorf("build lesson pipeline: %w", err)
	}

	if emit != nil {
		emit(Event{Type: "progress", Step: "started", Message: "Starting lesson creation..."})
	}

	initial := State{Profile: profile, Situation: situation}

	var observe func(node string, state State)
	if emit != nil {
		observe = func(node string, state State) {
			switch node {
			case StageArticle:
				emit(Event{Type: "progress", Step: "lesson", Message: "Article generated!"})
			case StageVocab:
				emit(Event{Type: "progress", Step: "vocab", Message: "Vocabulary generated!"})
			case StageGrammar:
				emit(Event{Type: "progress", Step: "grammar", Message: "Grammar extracted!"})
			case StageQuestions:
				emit(Event{Type: "progress", Step: "questions", Message: "Questions generated!"})
			}
		}
	}

	final, err := pipeline.Stream(ctx, initial, observe)
	if err != nil {
		return nil, err
	}

	content := &Content{
		Lesson:    *final.Lesson,
		Vocabs:    final.Vocabs,
		Grammar:   final.Grammar,
		Questions: final.Questions,
	}
	if emit != nil {
		emit(Event{Type: "complete", Data: content})
	}
	return content, nil
}

// Evaluate grades the learner's answers against the lesson content.
func (s *Service) Evaluate(ctx context.Context, content *Content, answers []Answer) (*Evaluation, error) {
	ctx = llm.WithPurpose(ctx, "lesson-evaluation")

	answersByID := make(map[int]string, len(answers))
	for _, a := range answers {
		answersByID[a.QuestionID] = a.Answer
	}

	articleJSON, err := json.Marshal(content.Lesson.Paragraphs)
	if err != nil {
		return nil, fmt.Errorf("encode article: %w", err)
	}
	vocabJSON, err := json.Marshal(content.Vocabs)
	if err != nil {
		return nil, fmt.Errorf("encode vocab: %w", err)
	}
	questionsJSON, err := json.Marshal(content.Questions)
	if err != nil {
		return nil, fmt.Errorf("encode questions: %w", err)
	}
	answersJSON, err := json.Marshal(answersByID)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}

	prompt, err := s.prompts.Render("evaluate_lesson_prompt", map[string]string{
		"article":   string(articleJSON),
		"vocab":     string(vocabJSON),
		"questions": string(questionsJSON),
		"answers":   string(answersJSON),
	})
	if err != nil {
		return nil, err
	}

	provider, err := s.providers.Provider(ctx, llm.ReasonModel)
	if err != nil {
		return nil, err
	}

	var eval Evaluation
	err = llm.FallbackDecoder{Provider: provider}.Decode(ctx, llm.Request{
		System: prompt,
		Schema: EvaluationSchema,
	}, &eval)
	if err != nil {
		return nil, fmt.Errorf("evaluate lesson: %w", err)
	}
	return &eval, nil
}
