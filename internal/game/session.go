package game

import (
	"github.com/google/uuid"

	"triviarooms/internal/model"
)

// SessionIDPrefix marks ids produced by the session builder.
const SessionIDPrefix = "session_"

// IDGenerator yields process-unique tokens.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }

// UUIDs generates random UUID strings.
var UUIDs IDGenerator = IDFunc(uuid.NewString)

// SessionBuilder seeds new rooms. It holds no shared game state.
type SessionBuilder struct {
	ids   IDGenerator
	clock Clock
}

func NewSessionBuilder(ids IDGenerator, clock Clock) *SessionBuilder {
	if ids == nil {
		ids = UUIDs
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &SessionBuilder{ids: ids, clock: clock}
}

// CreateSession wraps questions in a fresh session. An empty question list is
// accepted and yields a zero-question session.
func (b *SessionBuilder) CreateSession(questions []model.Question, category, difficulty string) *model.GameSession {
	qs := make([]model.Question, len(questions))
	copy(qs, questions)
	return &model.GameSession{
		SessionID:            SessionIDPrefix + b.ids.NewID(),
		Questions:            qs,
		CurrentQuestionIndex: 0,
		Score:                0,
		Answers:              []int{},
		Category:             category,
		Difficulty:           difficulty,
		StartTime:            b.clock.Now(),
	}
}
