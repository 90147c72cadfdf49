package model

import (
	"errors"
	"fmt"
)

// Error families. Callers classify with errors.Is against these.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

var (
	ErrRoomNotFound     = fmt.Errorf("room %w", ErrNotFound)
	ErrPlayerNotFound   = fmt.Errorf("player %w", ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	ErrQuizNotFound     = fmt.Errorf("quiz %w", ErrNotFound)
)

// Business rule rejections. Retrying without new input reproduces them.
var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidState           = errors.New("room is not in a state that allows this")
	ErrAdvanceNotAllowed      = errors.New("advance not allowed")
	ErrAlreadyAnswered        = errors.New("already answered")
	ErrTimeExpired            = errors.New("time expired")
	ErrStaleQuestion          = errors.New("question is no longer current")
	ErrNotHost                = errors.New("only the host may do this")
	ErrRoomFull               = errors.New("room is full")
)

// Store outcomes.
var (
	// ErrStoreConflict means a conditional write lost to a concurrent update.
	// The whole operation may be retried with fresh state.
	ErrStoreConflict = errors.New("store conflict")
	ErrRoomCodeTaken = errors.New("room code already in use")
)

// Validationf wraps a formatted message in ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
