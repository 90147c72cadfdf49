package model

import "time"

// Player represents a participant in a room. The host is a player too.
type Player struct {
	ID       string `json:"id" bson:"playerId"`
	RoomCode string `json:"roomCode" bson:"roomCode"`
	Name     string `json:"name" bson:"name"`
	Avatar   string `json:"avatar" bson:"avatar"`
	IsHost   bool   `json:"isHost" bson:"isHost"`
	Score    int    `json:"score" bson:"score"`
	// CurrentAnswer is nil until the player answers the room's current question.
	CurrentAnswer *int      `json:"currentAnswer" bson:"currentAnswer"`
	Seq           int       `json:"seq" bson:"seq"` // join order, host is 0
	JoinedAt      time.Time `json:"joinedAt" bson:"joinedAt"`
	Version       int64     `json:"version" bson:"version"`
}

func (p *Player) HasAnswered() bool {
	return p.CurrentAnswer != nil
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (p *Player) Clone() *Player {
	c := *p
	if p.CurrentAnswer != nil {
		a := *p.CurrentAnswer
		c.CurrentAnswer = &a
	}
	return &c
}

// PlayerJoinResponse is returned when a player joins or creates a room.
type PlayerJoinResponse struct {
	PlayerID    string     `json:"playerId"`
	Token       string     `json:"token"`
	RoomCode    string     `json:"roomCode"`
	DisplayCode string     `json:"displayCode"`
	IsHost      bool       `json:"isHost"`
	Status      RoomStatus `json:"status"`
}
