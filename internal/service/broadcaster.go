package service

import "triviarooms/internal/model"

// Broadcaster interface for WebSocket notifications (avoids import cycle)
type Broadcaster interface {
	NotifyRoom(roomCode string, event model.RoomEvent)
	DisconnectRoom(roomCode string)
}

type noopBroadcaster struct{}

func (noopBroadcaster) NotifyRoom(string, model.RoomEvent) {}
func (noopBroadcaster) DisconnectRoom(string)              {}
