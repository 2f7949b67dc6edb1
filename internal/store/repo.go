package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Situation is the daily conversation situation a lesson is built from.
type Situation struct {
	UserID    string
	Day       string
	Situation string
	CreatedAt time.Time
}

// Lesson is a generated lesson, stored as an opaque JSON blob so the store
// does not depend on pipeline types.
type Lesson struct {
	UserID     string
	Day        string
	Content    json.RawMessage
	Evaluation json.RawMessage
	CreatedAt  time.Time
}

// RoleplaySession tracks a roleplay conversation for a user and day.
type RoleplaySession struct {
	UserID     string
	Day        string
	Goal       string
	Evaluation json.RawMessage
	CreatedAt  time.Time
}

// ChatTurn is one message in a roleplay conversation. Seq is a dense
// zero-based index within the session.
type ChatTurn struct {
	Seq     int    `json:"seq"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Writing is a writing exercise: a goal, its vocabulary, and optionally an
// evaluation of the user's attempt.
type Writing struct {
	UserID     string
	Day        string
	Goal       string
	Vocabs     json.RawMessage
	Evaluation json.RawMessage
	CreatedAt  time.Time
}

// SituationRepo stores daily situations.
type SituationRepo interface {
	Get(ctx context.Context, userID, day string) (*Situation, error)
	Put(ctx context.Context, s Situation) error
}

// LessonRepo stores generated lessons and their evaluations.
type LessonRepo interface {
	Get(ctx context.Context, userID, day string) (*Lesson, error)
	Put(ctx context.Context, l Lesson) error
	SetEvaluation(ctx context.Context, userID, day string, eval json.RawMessage) error
}

// RoleplayRepo stores roleplay sessions. Turns are append-only; AppendTurns
// persists only turns with Seq at or beyond the current count.
type RoleplayRepo interface {
	GetSession(ctx context.Context, userID, day string) (*RoleplaySession, error)
	PutSession(ctx context.Context, s RoleplaySession) error
	Turns(ctx context.Context, userID, day string) ([]ChatTurn, error)
	AppendTurns(ctx context.Context, userID, day string, turns []ChatTurn) error
	SetEvaluation(ctx context.Context, userID, day string, eval json.RawMessage) error
}

// WritingRepo stores writing exercises.
type WritingRepo interface {
	Get(ctx context.Context, userID, day string) (*Writing, error)
	Put(ctx context.Context, w Writing) error
	SetEvaluation(ctx context.Context, userID, day string, eval json.RawMessage) error
}

// LLMRequestEventData captures one LLM round trip for the event log.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	LatencyMs    int64
	Success      bool
	InputTokens  int
	OutputTokens int
	RequestBody  string
	ResponseBody string
	ErrorMessage string
}

// LLMEvent is a persisted LLM request event.
type LLMEvent struct {
	ID           int64
	Provider     string
	Model        string
	Purpose      string
	LatencyMs    int64
	Success      bool
	InputTokens  int
	OutputTokens int
	ErrorMessage string
	CreatedAt    time.Time
}

// LLMEventDetail is an LLMEvent with the captured bodies included.
type LLMEventDetail struct {
	LLMEvent
	RequestBody  string
	ResponseBody string
}

// QueryOpts filters and bounds an event query.
type QueryOpts struct {
	Limit       int
	Provider    string
	OnlyFailure bool
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)
	GetLLMEvent(ctx context.Context, id int64) (*LLMEventDetail, error)
}
