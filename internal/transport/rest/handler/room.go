package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"

	"triviarooms/internal/model"
	"triviarooms/internal/service"
)

const qrSize = 320

// RoomHandler handles room lifecycle endpoints
type RoomHandler struct {
	roomSvc       *service.RoomService
	gameSvc       *service.GameService
	publicBaseURL string
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomSvc *service.RoomService, gameSvc *service.GameService, publicBaseURL string) *RoomHandler {
	return &RoomHandler{
		roomSvc:       roomSvc,
		gameSvc:       gameSvc,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateRoomRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.roomSvc.CreateRoom(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Join handles POST /v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code, ok := roomCode(w, r)
	if !ok {
		return
	}

	var req model.JoinRoomRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.roomSvc.JoinRoom(r.Context(), code, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code, ok := roomCode(w, r)
	if !ok {
		return
	}

	summary, err := h.roomSvc.Summary(r.Context(), code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Leaderboard handles GET /v1/rooms/{code}/leaderboard
func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	code, ok := roomCode(w, r)
	if !ok {
		return
	}

	top := 20
	if topStr := r.URL.Query().Get("top"); topStr != "" {
		if n, err := strconv.Atoi(topStr); err == nil && n > 0 {
			top = n
		}
	}

	entries, err := h.gameSvc.Leaderboard(r.Context(), code, top)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

// QR handles GET /v1/rooms/{code}/qr: a PNG pointing at the join page.
func (h *RoomHandler) QR(w http.ResponseWriter, r *http.Request) {
	code, ok := roomCode(w, r)
	if !ok {
		return
	}
	if _, err := h.roomSvc.Summary(r.Context(), code); err != nil {
		writeServiceError(w, r, err)
		return
	}

	png, err := qrcode.Encode(h.publicBaseURL+"/join/"+code, qrcode.Medium, qrSize)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(png)
}
