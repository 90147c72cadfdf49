package model

import "time"

// GameSession seeds a new room. It is not persisted on its own.
type GameSession struct {
	SessionID            string     `json:"sessionId"`
	Questions            []Question `json:"questions"`
	CurrentQuestionIndex int        `json:"currentQuestionIndex"`
	Score                int        `json:"score"`
	Answers              []int      `json:"answers"`
	Category             string     `json:"category"`
	Difficulty           string     `json:"difficulty"`
	StartTime            time.Time  `json:"startTime"`
}
