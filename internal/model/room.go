package model

import "time"

type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomActive   RoomStatus = "active"
	RoomFinished RoomStatus = "finished"
)

// Room is the shared game record. Version is bumped by the store on every
// conditional write and must not be modified by callers.
type Room struct {
	Code                 string     `json:"code" bson:"code"`
	Status               RoomStatus `json:"status" bson:"status"`
	HostPlayerID         string     `json:"hostPlayerId" bson:"hostPlayerId"`
	SessionID            string     `json:"sessionId" bson:"sessionId"`
	Category             string     `json:"category" bson:"category"`
	Difficulty           string     `json:"difficulty" bson:"difficulty"`
	CurrentQuestionIndex int        `json:"currentQuestionIndex" bson:"currentQuestionIndex"`
	TotalQuestions       int        `json:"totalQuestions" bson:"totalQuestions"`
	QuestionStartTime    time.Time  `json:"questionStartTime" bson:"questionStartTime"`
	TimeLimitSeconds     int        `json:"timeLimitSeconds" bson:"timeLimitSeconds"`
	CreatedAt            time.Time  `json:"createdAt" bson:"createdAt"`
	FinishedAt           *time.Time `json:"finishedAt,omitempty" bson:"finishedAt,omitempty"`
	Version              int64      `json:"version" bson:"version"`
}

// TimeLimit returns the per-question answer window.
func (r *Room) TimeLimit() time.Duration {
	return time.Duration(r.TimeLimitSeconds) * time.Second
}

// Deadline is the last instant at which an answer for the current question is accepted.
func (r *Room) Deadline() time.Time {
	return r.QuestionStartTime.Add(r.TimeLimit())
}
