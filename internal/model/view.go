package model

import "time"

// RosterEntry is one line of the ranked player list shown to clients.
type RosterEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	IsHost      bool   `json:"isHost"`
	Score       int    `json:"score"`
	HasAnswered bool   `json:"hasAnswered"`
}

// RevealedQuestion discloses the correct answer of a round that has closed.
type RevealedQuestion struct {
	Index         int `json:"questionIndex"`
	CorrectAnswer int `json:"correctAnswer"`
}

// PlayerView is the per-player slice of an active room.
type PlayerView struct {
	RoomCode         string            `json:"roomCode"`
	Status           RoomStatus        `json:"status"`
	Question         PublicQuestion    `json:"question"`
	TotalQuestions   int               `json:"totalQuestions"`
	QuestionStart    time.Time         `json:"questionStartTime"`
	TimeLimitSeconds int               `json:"timeLimitSeconds"`
	HasAnswered      bool              `json:"hasAnswered"`
	Players          []RosterEntry     `json:"players"`
	PreviousRound    *RevealedQuestion `json:"previousRound,omitempty"`
}

// HostControls mirrors the advance gate for the host UI. The engine remains
// the enforcement point.
type HostControls struct {
	AdvanceEnabled bool   `json:"advanceEnabled"`
	Reason         string `json:"reason,omitempty"`
}

// HostView is the aggregate view polled by the host.
type HostView struct {
	RoomCode         string         `json:"roomCode"`
	Status           RoomStatus     `json:"status"`
	Question         PublicQuestion `json:"question"`
	QuestionIndex    int            `json:"questionIndex"`
	TotalQuestions   int            `json:"totalQuestions"`
	QuestionStart    time.Time      `json:"questionStartTime"`
	TimeLimitSeconds int            `json:"timeLimitSeconds"`
	AnsweredCount    int            `json:"answeredCount"`
	TotalPlayers     int            `json:"totalPlayers"`
	CanAdvance       bool           `json:"canAdvance"`
	Controls         HostControls   `json:"controls"`
	Players          []RosterEntry  `json:"players"`
}

// RoomSummary is valid in every status: lobby polling and final results.
type RoomSummary struct {
	RoomCode             string        `json:"roomCode"`
	DisplayCode          string        `json:"displayCode"`
	Status               RoomStatus    `json:"status"`
	Category             string        `json:"category"`
	Difficulty           string        `json:"difficulty"`
	CurrentQuestionIndex int           `json:"currentQuestionIndex"`
	TotalQuestions       int           `json:"totalQuestions"`
	TimeLimitSeconds     int           `json:"timeLimitSeconds"`
	Players              []RosterEntry `json:"players"`
}

// LeaderboardEntry is a ranked score line.
type LeaderboardEntry struct {
	PlayerID string `json:"playerId" bson:"playerId"`
	Name     string `json:"name" bson:"name"`
	Score    int    `json:"score" bson:"score"`
	Rank     int    `json:"rank" bson:"rank"`
}

// AnswerResult is returned to the player after an accepted submission.
type AnswerResult struct {
	QuestionIndex int `json:"questionIndex"`
	Awarded       int `json:"awarded"`
	Score         int `json:"score"`
}
