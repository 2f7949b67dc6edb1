package roleplay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Muhsiinn/Jonas-AI/internal/llm"
	"github.com/Muhsiinn/Jonas-AI/internal/workflow"
)

// Graph node names.
const (
	nodeChat       = "chat"
	nodeCheckEnd   = "check_db_end"
	nodeEvaluate   = "evaluate"
	branchEvaluate = "evaluate"
	branchEnd      = "end"
)

// windowTurns caps how many recent turns are sent to the provider. A leading
// system turn is always prepended on top of the window, so the outbound list
// holds at most windowTurns+1 messages.
const windowTurns = 10

// Providers resolves a model id to a ready provider. Satisfied by
// llm.Factory.
type Providers interface {
	Provider(ctx context.Context, model string) (llm.Provider, error)
}

// EndFlags is the consuming should-end flag store. Satisfied by
// flagstore.Store.
type EndFlags interface {
	SetShouldEnd(ctx context.Context, userID, day string) error
	ConsumeShouldEnd(ctx context.Context, userID, day string) (bool, error)
}

func (s *Service) buildGraph() (*workflow.Pipeline[State], error) {
	return workflow.NewGraph[State]().
		AddNode(nodeChat, s.chatNode).
		AddNode(nodeCheckEnd, s.checkEndNode).
		AddNode(nodeEvaluate, s.evaluateNode).
		SetEntryPoint(nodeChat).
		AddEdge(nodeChat, nodeCheckEnd).
		AddConditionalEdge(nodeCheckEnd, shouldEvaluate, map[string]string{
			branchEvaluate: nodeEvaluate,
			branchEnd:      workflow.End,
		}).
		AddEdge(nodeEvaluate, workflow.End).
		Compile()
}

func shouldEvaluate(state State) string {
	if state.Done {
		return branchEvaluate
	}
	return branchEnd
}

// providerWindow builds the outbound message list: the most recent
// windowTurns turns, with the system turn (if any) always kept in front.
func providerWindow(history []Turn) []llm.Message {
	var system *Turn
	turns := history
	if len(history) > 0 && history[0].Role == llm.RoleSystem {
		system = &history[0]
		turns = history[1:]
	}
	if len(turns) > windowTurns {
		turns = turns[len(turns)-windowTurns:]
	}

	messages := make([]llm.Message, 0, len(turns)+1)
	if system != nil {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system.Content})
	}
	for _, t := range turns {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}
	return messages
}

// chatNode advances the conversation by one exchange. The system turn is
// built once, on the session's first turn, and never regenerated.
func (s *Service) chatNode(ctx context.Context, state State) (State, error) {
	ctx = llm.WithPurpose(ctx, "roleplay-chat")

	if len(state.History) == 0 {
		system, err := s.prompts.Render("roleplay_system_prompt", map[string]string{
			"lesson_title": state.LessonTitle,
			"lesson_body":  state.LessonBody,
			"goal_text":    state.GoalText,
			"user_role":    state.UserRole,
			"ai_role":      state.AIRole,
		})
		if err != nil {
			return state, err
		}
		state.History = append(state.History, Turn{Role: llm.RoleSystem, Content: system})
	}

	state.History = append(state.History, Turn{Role: llm.RoleUser, Content: state.UserInput})

	provider, err := s.providers.Provider(ctx, llm.DefaultModel)
	if err != nil {
		return state, err
	}

	resp, err := provider.Generate(ctx, llm.Request{
		Messages: providerWindow(state.History),
	})
	if err != nil {
		return state, fmt.Errorf("roleplay chat: %w", err)
	}

	state.Reply = resp.Text()
	state.History = append(state.History, Turn{Role: llm.RoleAssistant, Content: state.Reply})
	state.TurnCount++
	return state, nil
}

// checkEndNode consumes the should-end flag set by the background checker.
// Flag store errors degrade to "keep going": a flaky redis must not
// terminate a healthy conversation.
func (s *Service) checkEndNode(ctx context.Context, state State) (State, error) {
	done, err := s.flags.ConsumeShouldEnd(ctx, state.UserID, state.Day)
	if err != nil {
		slog.Warn("should-end flag check failed", "user", state.UserID, "error", err)
		state.Done = false
		return state, nil
	}
	state.Done = done
	return state, nil
}

// evaluateNode grades the finished conversation.
func (s *Service) evaluateNode(ctx context.Context, state State) (State, error) {
	eval, err := s.evaluate(ctx, state)
	if err != nil {
		return state, err
	}
	state.Evaluation = eval
	state.Done = true
	return state, nil
}

func (s *Service) evaluate(ctx context.Context, state State) (*Evaluation, error) {
	ctx = llm.WithPurpose(ctx, "roleplay-evaluation")

	prompt, err := s.prompts.Render("evaluate_roleplay_prompt", map[string]string{
		"lesson_title": state.LessonTitle,
		"lesson_body":  state.LessonBody,
		"goal_text":    state.GoalText,
		"user_role":    state.UserRole,
		"ai_role":      state.AIRole,
		"conversation": renderTranscript(state.History),
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
		return nil, fmt.Errorf("evaluate roleplay: %w", err)
	}
	return &eval, nil
}

// renderTranscript pairs user and assistant turns index-wise and renders
// them as alternating lines. Unpaired trailing turns are dropped.
func renderTranscript(history []Turn) string {
	var userTurns, aiTurns []string
	for _, t := range history {
		switch t.Role {
		case llm.RoleUser:
			userTurns = append(userTurns, t.Content)
		case llm.RoleAssistant:
			aiTurns = append(aiTurns, t.Content)
		}
	}

	n := len(userTurns)
	if len(aiTurns) < n {
		n = len(aiTurns)
	}

	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		lines = append(lines, fmt.Sprintf("User: %s\nAI: %s", userTurns[i], aiTurns[i]))
	}
	return strings.Join(lines, "\n")
}
