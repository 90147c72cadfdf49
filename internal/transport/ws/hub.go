package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"triviarooms/internal/model"
)

// MessageType defines the type of WebSocket message
type MessageType string

// MsgRoomUpdated tells clients to re-read the room. It is the only message
// the server sends.
const MsgRoomUpdated MessageType = "room_updated"

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans room notifications out to connected sockets
type Hub struct {
	// Room -> connections
	rooms map[string]map[*Connection]struct{}

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once
}

// Connection represents a WebSocket connection
type Connection struct {
	RoomCode string
	PlayerID string
	IsHost   bool
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to broadcast. Close drops every socket in
// the room after delivery.
type BroadcastMessage struct {
	RoomCode string
	Message  *Message
	Close    bool
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		rooms:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for code, conns := range h.rooms {
				for conn := range conns {
					close(conn.Send)
				}
				delete(h.rooms, code)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.rooms[conn.RoomCode] == nil {
				h.rooms[conn.RoomCode] = make(map[*Connection]struct{})
			}
			h.rooms[conn.RoomCode][conn] = struct{}{}
			h.mu.Unlock()
			zap.L().Debug("socket connected",
				zap.String("room", conn.RoomCode),
				zap.String("player", conn.PlayerID),
				zap.Bool("host", conn.IsHost))

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.rooms[conn.RoomCode]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.rooms, conn.RoomCode)
					}
					zap.L().Debug("socket disconnected", zap.String("room", conn.RoomCode), zap.String("player", conn.PlayerID))
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg *BroadcastMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.rooms[msg.RoomCode]

	if msg.Message != nil {
		data, err := json.Marshal(msg.Message)
		if err != nil {
			zap.L().Error("failed to encode socket message", zap.Error(err))
			return
		}
		for conn := range conns {
			select {
			case conn.Send <- data:
			default:
				// Drop message if buffer full; the next poll catches up
			}
		}
	}

	if msg.Close {
		for conn := range conns {
			close(conn.Send)
		}
		delete(h.rooms, msg.RoomCode)
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

func (h *Hub) enqueue(msg *BroadcastMessage) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// NotifyRoom tells every socket in the room that it changed (implements service.Broadcaster)
func (h *Hub) NotifyRoom(roomCode string, event model.RoomEvent) {
	data, _ := json.Marshal(event)
	h.enqueue(&BroadcastMessage{
		RoomCode: roomCode,
		Message:  &Message{Type: MsgRoomUpdated, Payload: data},
	})
}

// DisconnectRoom closes every socket in the room once queued messages are sent (implements service.Broadcaster)
func (h *Hub) DisconnectRoom(roomCode string) {
	h.enqueue(&BroadcastMessage{RoomCode: roomCode, Close: true})
}

// ConnCount returns the number of sockets open for a room
func (h *Hub) ConnCount(roomCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomCode])
}

// Close stops the hub and closes all sockets
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
