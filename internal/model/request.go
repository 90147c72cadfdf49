package model

// CreateRoomRequest creates a room either from inline questions or from a
// quiz in the bank. TimeLimitSeconds 0 selects the configured default.
type CreateRoomRequest struct {
	HostName         string     `json:"hostName" validate:"required,max=32"`
	HostAvatar       string     `json:"hostAvatar" validate:"max=64"`
	QuizID           string     `json:"quizId"`
	Category         string     `json:"category" validate:"max=64"`
	Difficulty       string     `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	TimeLimitSeconds int        `json:"timeLimitSeconds" validate:"gte=0"`
	Questions        []Question `json:"questions" validate:"omitempty,dive"`
}

type JoinRoomRequest struct {
	Name   string `json:"name" validate:"required,max=32"`
	Avatar string `json:"avatar" validate:"max=64"`
}

// SubmitAnswerRequest carries the chosen option. QuestionIndex, when sent,
// pins the answer to the question the client was shown.
type SubmitAnswerRequest struct {
	AnswerIndex   *int `json:"answerIndex" validate:"required"`
	QuestionIndex *int `json:"questionIndex,omitempty" validate:"omitempty,gte=0"`
}

// AdvanceRequest optionally names the question the host is closing.
type AdvanceRequest struct {
	QuestionIndex *int `json:"questionIndex,omitempty" validate:"omitempty,gte=0"`
}
