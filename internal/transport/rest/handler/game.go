package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"triviarooms/internal/model"
	"triviarooms/internal/service"
	"triviarooms/internal/transport/rest/middleware"
)

// GameHandler handles the in-game endpoints for players and the host
type GameHandler struct {
	roomSvc *service.RoomService
	gameSvc *service.GameService
}

// NewGameHandler creates a new game handler
func NewGameHandler(roomSvc *service.RoomService, gameSvc *service.GameService) *GameHandler {
	return &GameHandler{roomSvc: roomSvc, gameSvc: gameSvc}
}

// Question handles GET /v1/rooms/{code}/question
func (h *GameHandler) Question(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.gameSvc.PlayerView(ctx, middleware.GetRoomCode(ctx), middleware.GetPlayerID(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// SubmitAnswer handles POST /v1/rooms/{code}/answers
func (h *GameHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitAnswerRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	res, err := h.gameSvc.SubmitAnswer(ctx, middleware.GetRoomCode(ctx), middleware.GetPlayerID(ctx), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Start handles POST /v1/rooms/{code}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary, err := h.roomSvc.StartGame(ctx, middleware.GetRoomCode(ctx), middleware.GetPlayerID(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Host handles GET /v1/rooms/{code}/host
func (h *GameHandler) Host(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.gameSvc.HostView(ctx, middleware.GetRoomCode(ctx), middleware.GetPlayerID(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Advance handles POST /v1/rooms/{code}/advance. The body is optional.
func (h *GameHandler) Advance(w http.ResponseWriter, r *http.Request) {
	var req model.AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	summary, err := h.gameSvc.Advance(ctx, middleware.GetRoomCode(ctx), middleware.GetPlayerID(ctx), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
