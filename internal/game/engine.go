// Package game holds the room state machine. Functions here are pure: they
// validate and mutate the records they are handed and never touch the store.
// Callers persist the result with a conditional write.
package game

import (
	"fmt"
	"time"

	"triviarooms/internal/model"
)

// DefaultBaseAward is the flat award for a correct answer before the time bonus.
const DefaultBaseAward = 1000

// Engine applies room transitions. The zero value is not usable; use NewEngine.
type Engine struct {
	baseAward int
}

func NewEngine(baseAward int) *Engine {
	if baseAward <= 0 {
		baseAward = DefaultBaseAward
	}
	return &Engine{baseAward: baseAward}
}

// Award computes points for a correct answer:
//
//	base + floor(base * remaining / limit)
//
// where remaining is the unused part of the answer window, clamped to [0, limit].
func (e *Engine) Award(room *model.Room, submittedAt time.Time) int {
	limit := room.TimeLimit().Milliseconds()
	if limit <= 0 {
		return e.baseAward
	}
	remaining := limit - submittedAt.Sub(room.QuestionStartTime).Milliseconds()
	if remaining < 0 {
		remaining = 0
	}
	if remaining > limit {
		remaining = limit
	}
	return e.baseAward + int(int64(e.baseAward)*remaining/limit)
}

// Start moves a waiting room to active on its first question.
func (e *Engine) Start(room *model.Room, now time.Time) error {
	if room.Status != model.RoomWaiting {
		return fmt.Errorf("%w: cannot start a %s room", model.ErrInvalidStateTransition, room.Status)
	}
	if room.TotalQuestions == 0 {
		return model.Validationf("room %s has no questions", room.Code)
	}
	room.Status = model.RoomActive
	room.CurrentQuestionIndex = 0
	room.QuestionStartTime = now
	return nil
}

// SubmitAnswer records the player's first answer to the current question and
// returns the points awarded. submittedAt must come from the server clock.
func (e *Engine) SubmitAnswer(room *model.Room, player *model.Player, q *model.Question, answerIndex int, submittedAt time.Time) (int, error) {
	if room.Status != model.RoomActive {
		return 0, fmt.Errorf("%w: room is %s", model.ErrInvalidState, room.Status)
	}
	if player.RoomCode != room.Code {
		return 0, model.ErrPlayerNotFound
	}
	if q.Index != room.CurrentQuestionIndex {
		return 0, fmt.Errorf("%w: question %d, room is on %d", model.ErrStaleQuestion, q.Index, room.CurrentQuestionIndex)
	}
	if answerIndex < 0 || answerIndex >= len(q.Options) {
		return 0, model.Validationf("answer %d out of range [0,%d)", answerIndex, len(q.Options))
	}
	if player.HasAnswered() {
		return 0, model.ErrAlreadyAnswered
	}
	if submittedAt.Before(room.QuestionStartTime) {
		return 0, model.Validationf("answer submitted before question %d opened", q.Index)
	}
	if submittedAt.After(room.Deadline()) {
		return 0, model.ErrTimeExpired
	}

	answer := answerIndex
	player.CurrentAnswer = &answer

	awarded := 0
	if q.IsCorrect(answerIndex) {
		awarded = e.Award(room, submittedAt)
		player.Score += awarded
	}
	return awarded, nil
}

// CanAdvance is the host's gate: everyone answered, or the window has passed.
func CanAdvance(room *model.Room, players []*model.Player, now time.Time) bool {
	if room.Status != model.RoomActive {
		return false
	}
	if now.Sub(room.QuestionStartTime) > room.TimeLimit() {
		return true
	}
	return AnsweredCount(players) == len(players)
}

// AnsweredCount counts players holding an answer to the current question.
func AnsweredCount(players []*model.Player) int {
	n := 0
	for _, p := range players {
		if p.HasAnswered() {
			n++
		}
	}
	return n
}

// Advance clears every answer, then moves to the next question or finishes.
// Clearing first keeps an old answer from counting toward the next round.
func (e *Engine) Advance(room *model.Room, players []*model.Player, now time.Time) error {
	if room.Status != model.RoomActive {
		return fmt.Errorf("%w: room is %s", model.ErrAdvanceNotAllowed, room.Status)
	}
	if !CanAdvance(room, players, now) {
		return fmt.Errorf("%w: %d of %d answered", model.ErrAdvanceNotAllowed, AnsweredCount(players), len(players))
	}

	for _, p := range players {
		p.CurrentAnswer = nil
	}

	if room.CurrentQuestionIndex+1 < room.TotalQuestions {
		room.CurrentQuestionIndex++
		room.QuestionStartTime = now
		return nil
	}
	room.Status = model.RoomFinished
	finished := now
	room.FinishedAt = &finished
	return nil
}
