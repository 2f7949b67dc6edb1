// Package roleplay runs the conversational practice sessions: a goal is
// generated from the day's lesson, the learner chats with the model in
// character, a background check decides when the conversation is over, and
// a final evaluation grades the learner's side of the transcript.
package roleplay

import "github.com/Muhsiinn/Jonas-AI/internal/llm"

// Turn is one message in the conversation.
type Turn struct {
	Role    llm.Role `json:"role"`
	Content string   `json:"content"`
}

// Scenario is the generated roleplay setup.
type Scenario struct {
	Goal     string `json:"goal"`
	UserRole string `json:"user_role"`
	AIRole   string `json:"ai_role"`
}

// State carries a session through one graph invocation. Each chat request
// runs the graph exactly once: one chat step, one end-flag check, and an
// evaluation only when the flag says the conversation is over.
type State struct {
	UserID string
	Day    string

	LessonTitle string
	LessonBody  string
	GoalText    string
	UserRole    string
	AIRole      string

	History   []Turn
	UserInput string
	Reply     string
	TurnCount int

	Done       bool
	Evaluation *Evaluation
}

// KeyMistake is the most important error in the learner's transcript.
type KeyMistake struct {
	Original    string `json:"original"`
	Corrected   string `json:"corrected"`
	Explanation string `json:"explanation"`
}

// ImprovedSentence shows how a native speaker would phrase one of the
// learner's sentences.
type ImprovedSentence struct {
	Original    string `json:"original"`
	Improved    string `json:"improved"`
	Explanation string `json:"explanation"`
}

// VocabularyUpgrade suggests a stronger word choice.
type VocabularyUpgrade struct {
	Original    string `json:"original"`
	Upgraded    string `json:"upgraded"`
	Explanation string `json:"explanation"`
}

// Evaluation is the structured grade for a finished session.
type Evaluation struct {
	GrammarScore      int               `json:"grammarScore"`
	ClarityScore      int               `json:"clarityScore"`
	NaturalnessScore  int               `json:"naturalnessScore"`
	KeyMistake        KeyMistake        `json:"keyMistake"`
	ImprovedSentence  ImprovedSentence  `json:"improvedSentence"`
	VocabularyUpgrade VocabularyUpgrade `json:"vocabularyUpgrade"`
}

// Score is the aggregate reported to the caller: the integer-truncated mean
// of the three sub-scores.
func (e Evaluation) Score() int {
	return (e.GrammarScore + e.ClarityScore + e.NaturalnessScore) / 3
}
