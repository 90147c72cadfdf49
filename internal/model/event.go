package model

// Room change events pushed to sockets. They carry no game state; clients
// re-read the room through the normal endpoints.
const (
	EventPlayerJoined     = "player_joined"
	EventGameStarted      = "game_started"
	EventAnswerSubmitted  = "answer_submitted"
	EventQuestionAdvanced = "question_advanced"
	EventGameFinished     = "game_finished"
)

// RoomEvent is the payload of a room_updated message.
type RoomEvent struct {
	Event         string     `json:"event"`
	QuestionIndex int        `json:"questionIndex"`
	Status        RoomStatus `json:"status"`
}
