package model

import "time"

// GameResult is the archived outcome of a finished room.
type GameResult struct {
	RoomCode       string             `json:"roomCode" bson:"roomCode"`
	SessionID      string             `json:"sessionId" bson:"sessionId"`
	Category       string             `json:"category" bson:"category"`
	Difficulty     string             `json:"difficulty" bson:"difficulty"`
	TotalQuestions int                `json:"totalQuestions" bson:"totalQuestions"`
	Standings      []LeaderboardEntry `json:"standings" bson:"standings"`
	FinishedAt     time.Time          `json:"finishedAt" bson:"finishedAt"`
}

// RoomRecord is the archived shape of a created room and its questions.
type RoomRecord struct {
	Room      Room       `json:"room" bson:"room"`
	Questions []Question `json:"questions" bson:"questions"`
}
