package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"triviarooms/internal/model"
	"triviarooms/internal/service"
	"triviarooms/internal/transport/rest/middleware"
)

// QuizHandler handles quiz bank endpoints
type QuizHandler struct {
	quizSvc *service.QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizSvc *service.QuizService) *QuizHandler {
	return &QuizHandler{quizSvc: quizSvc}
}

// Create handles POST /v1/quizzes
func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	curatorID := middleware.GetCuratorID(r.Context())
	if curatorID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var quiz model.Quiz
	if !decode(w, r, &quiz) {
		return
	}

	id, err := h.quizSvc.Create(r.Context(), curatorID, &quiz)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// List handles GET /v1/quizzes
func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := int64(50)
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}

	quizzes, err := h.quizSvc.List(r.Context(), r.URL.Query().Get("category"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"quizzes": quizzes})
}

// Get handles GET /v1/quizzes/{quizId}
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizSvc.GetByID(r.Context(), mux.Vars(r)["quizId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}
