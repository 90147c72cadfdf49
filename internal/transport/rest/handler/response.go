package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"triviarooms/internal/model"
	"triviarooms/internal/roomcode"
	"triviarooms/internal/service"
)

var validate = validator.New()

type errorBody struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, roomcode.ErrInvalidFormat):
		return http.StatusBadRequest, false
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, false
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, false
	case errors.Is(err, model.ErrNotHost):
		return http.StatusForbidden, false
	case errors.Is(err, model.ErrStoreConflict):
		return http.StatusConflict, true
	case errors.Is(err, model.ErrAlreadyAnswered),
		errors.Is(err, model.ErrInvalidStateTransition),
		errors.Is(err, model.ErrAdvanceNotAllowed),
		errors.Is(err, model.ErrStaleQuestion),
		errors.Is(err, model.ErrRoomCodeTaken),
		errors.Is(err, model.ErrRoomFull):
		return http.StatusConflict, false
	case errors.Is(err, model.ErrTimeExpired), errors.Is(err, model.ErrInvalidState):
		return http.StatusUnprocessableEntity, false
	case errors.Is(err, service.ErrQuizBankUnavailable):
		return http.StatusServiceUnavailable, false
	default:
		return http.StatusInternalServerError, false
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, retryable := statusFor(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, status, "internal error")
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Retryable: retryable})
}

// decode reads a JSON body into req and runs its validate tags.
func decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Details: err.Error()})
		return false
	}
	return true
}

// roomCode reads {code} from the path, accepting display forms like "abc-123".
func roomCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := roomcode.Normalize(mux.Vars(r)["code"])
	if !roomcode.IsValid(code) {
		writeError(w, http.StatusBadRequest, "invalid room code: "+strings.TrimSpace(mux.Vars(r)["code"]))
		return "", false
	}
	return code, true
}
