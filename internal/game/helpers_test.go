package game

import (
	"time"

	"triviarooms/internal/model"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time { return c.now }

func activeRoom(total, limit int) *model.Room {
	return &model.Room{
		Code:              "ABC123",
		Status:            model.RoomActive,
		TotalQuestions:    total,
		TimeLimitSeconds:  limit,
		QuestionStartTime: t0,
	}
}

func newPlayer(id string, seq int) *model.Player {
	return &model.Player{ID: id, RoomCode: "ABC123", Name: id, Seq: seq, IsHost: seq == 0}
}

func question(idx, correct int) *model.Question {
	return &model.Question{
		Index:         idx,
		Text:          "Which planet is largest?",
		Options:       []string{"Mars", "Jupiter", "Venus", "Earth"},
		CorrectAnswer: correct,
	}
}

func answer(i int) *int { return &i }
