package roleplay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Muhsiinn/Jonas-AI/internal/lesson"
	"github.com/Muhsiinn/Jonas-AI/internal/llm"
	"github.com/Muhsiinn/Jonas-AI/internal/prompts"
	"github.com/Muhsiinn/Jonas-AI/internal/store"
)

// ErrNoLesson is returned when a session is requested before the day's
// lesson exists.
var ErrNoLesson = errors.New("roleplay: no lesson for today")

// ErrNoSession is returned when chat or finish is invoked before a goal was
// generated.
var ErrNoSession = errors.New("roleplay: no session for today")

// Service orchestrates roleplay sessions: goal generation, per-turn chat,
// and the final evaluation.
type Service struct {
	providers Providers
	prompts   *prompts.Store
	flags     EndFlags
	checker   *Checker
	sessions  store.RoleplayRepo
	lessons   store.LessonRepo
}

// NewService creates a roleplay service.
func NewService(providers Providers, promptStore *prompts.Store, flags EndFlags, sessions store.RoleplayRepo, lessons store.LessonRepo) *Service {
	return &Service{
		providers: providers,
		prompts:   promptStore,
		flags:     flags,
		checker:   NewChecker(providers, promptStore, flags),
		sessions:  sessions,
		lessons:   lessons,
	}
}

// GenerateGoal creates the day's roleplay scenario from the day's lesson
// and persists it. An existing session is returned as-is.
func (s *Service) GenerateGoal(ctx context.Context, userID, day string) (*Scenario, error) {
	if existing, err := s.sessions.GetSession(ctx, userID, day); err == nil {
		var sc Scenario
		if err := json.Unmarshal([]byte(existing.Goal), &sc); err == nil {
			return &sc, nil
		}
		// Pre-JSON rows stored the bare goal text.
		return &Scenario{Goal: existing.Goal}, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	title, body, err := s.lessonContext(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	ctx = llm.WithPurpose(ctx, "roleplay-goal")

	system, err := s.prompts.Render("roleplay_goal_generator.system", nil)
	if err != nil {
		return nil, err
	}
	human, err := s.prompts.Render("roleplay_goal_generator.human", map[string]string{
		"lesson_title": title,
		"lesson_body":  body,
	})
	if err != nil {
		return nil, err
	}

	provider, err := s.providers.Provider(ctx, llm.ReasonModel)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	err = llm.FallbackDecoder{Provider: provider}.Decode(ctx, llm.Request{
		System:   system,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: human}},
		Schema:   ScenarioSchema,
	}, &scenario)
	if err != nil {
		return nil, fmt.Errorf("generate roleplay goal: %w", err)
	}

	encoded, err := json.Marshal(scenario)
	if err != nil {
		return nil, fmt.Errorf("encode scenario: %w", err)
	}
	if err := s.sessions.PutSession(ctx, store.RoleplaySession{
		UserID: userID,
		Day:    day,
		Goal:   string(encoded),
	}); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// ChatResult is what one chat invocation returns to the caller.
type ChatResult struct {
	Reply      string      `json:"reply"`
	Done       bool        `json:"done"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}

// Chat advances the conversation by one turn. Only turns produced by this
// invocation are persisted; history loaded from the store is never
// rewritten. After the reply is stored, a background end check is kicked
// off; its verdict affects the NEXT turn.
func (s *Service) Chat(ctx context.Context, userID, day, userInput string) (*ChatResult, error) {
	state, err := s.loadState(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	state.UserInput = userInput
	previousLen := len(state.History)

	graph, err := s.buildGraph()
	if err != nil {
		return nil, fmt.Errorf("build roleplay graph: %w", err)
	}

	final, err := graph.Run(ctx, *state)
	if err != nil {
		return nil, err
	}

	newTurns := make([]store.ChatTurn, 0, len(final.History)-previousLen)
	for i := previousLen; i < len(final.History); i++ {
		newTurns = append(newTurns, store.ChatTurn{
			Seq:     i,
			Role:    string(final.History[i].Role),
			Content: final.History[i].Content,
		})
	}
	if err := s.sessions.AppendTurns(ctx, userID, day, newTurns); err != nil {
		return nil, err
	}

	if final.Evaluation != nil {
		if err := s.storeEvaluation(ctx, userID, day, final.Evaluation); err != nil {
			return nil, err
		}
	} else {
		s.checker.Kick(userID, day, final.GoalText, final.Reply)
	}

	return &ChatResult{
		Reply:      final.Reply,
		Done:       final.Done,
		Evaluation: final.Evaluation,
	}, nil
}

// FinishResult is the evaluation plus its aggregate score.
type FinishResult struct {
	Evaluation Evaluation `json:"evaluation"`
	Score      int        `json:"score"`
}

// Finish evaluates the session. Evaluation happens at most once: if a
// record already exists it is normalized and returned without another
// model call.
func (s *Service) Finish(ctx context.Context, userID, day string) (*FinishResult, error) {
	session, err := s.sessions.GetSession(ctx, userID, day)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	if len(session.Evaluation) > 0 {
		var raw map[string]any
		if err := json.Unmarshal(session.Evaluation, &raw); err != nil {
			return nil, fmt.Errorf("decode stored evaluation: %w", err)
		}
		eval := NormalizeEvaluation(raw)
		return &FinishResult{Evaluation: eval, Score: eval.Score()}, nil
	}

	state, err := s.loadState(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	eval, err := s.evaluate(ctx, *state)
	if err != nil {
		return nil, err
	}
	if err := s.storeEvaluation(ctx, userID, day, eval); err != nil {
		return nil, err
	}
	return &FinishResult{Evaluation: *eval, Score: eval.Score()}, nil
}

func (s *Service) storeEvaluation(ctx context.Context, userID, day string, eval *Evaluation) error {
	encoded, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("encode evaluation: %w", err)
	}
	return s.sessions.SetEvaluation(ctx, userID, day, encoded)
}

// loadState assembles the graph state from the stored session, lesson and
// turn history.
func (s *Service) loadState(ctx context.Context, userID, day string) (*State, error) {
	session, err := s.sessions.GetSession(ctx, userID, day)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := json.Unmarshal([]byte(session.Goal), &scenario); err != nil {
		scenario = Scenario{Goal: session.Goal}
	}

	title, body, err := s.lessonContext(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	stored, err := s.sessions.Turns(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	history := make([]Turn, len(stored))
	for i, t := range stored {
		history[i] = Turn{Role: llm.Role(t.Role), Content: t.Content}
	}

	return &State{
		UserID:      userID,
		Day:         day,
		LessonTitle: title,
		LessonBody:  body,
		GoalText:    scenario.Goal,
		UserRole:    scenario.UserRole,
		AIRole:      scenario.AIRole,
		History:     history,
	}, nil
}

func (s *Service) lessonContext(ctx context.Context, userID, day string) (title, body string, err error) {
	rec, err := s.lessons.Get(ctx, userID, day)
	if errors.Is(err, store.ErrNotFound) {
		return "", "", ErrNoLesson
	}
	if err != nil {
		return "", "", err
	}

	var content lesson.Content
	if err := json.Unmarshal(rec.Content, &content); err != nil {
		return "", "", fmt.Errorf("decode lesson content: %w", err)
	}
	return content.Lesson.Title, strings.Join(content.Lesson.Paragraphs, " "), nil
}
