package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"triviarooms/internal/config"
	"triviarooms/internal/service"
	"triviarooms/internal/transport/rest/handler"
	"triviarooms/internal/transport/rest/middleware"
	"triviarooms/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService   *service.AuthService
	QuizService   *service.QuizService
	RoomService   *service.RoomService
	GameService   *service.GameService
	WSHub         *ws.Hub
	CORS          config.CORSConfig
	PublicBaseURL string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	quizHandler := handler.NewQuizHandler(c.QuizService)
	roomHandler := handler.NewRoomHandler(c.RoomService, c.GameService, c.PublicBaseURL)
	gameHandler := handler.NewGameHandler(c.RoomService, c.GameService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.CORS.Origins)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(middleware.CORS(c.CORS))
	r.Use(middleware.AccessLog)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}", roomHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/qr", roomHandler.QR).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/leaderboard", roomHandler.Leaderboard).Methods("GET", "OPTIONS")

	// WebSocket route (public with token in query param)
	v1.HandleFunc("/ws/rooms/{code}", wsHandler.RoomWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Curator routes (quiz bank)
	curatorRoutes := v1.NewRoute().Subrouter()
	curatorRoutes.Use(authMW.RequireCurator)

	curatorRoutes.HandleFunc("/quizzes", quizHandler.Create).Methods("POST", "OPTIONS")
	curatorRoutes.HandleFunc("/quizzes", quizHandler.List).Methods("GET", "OPTIONS")
	curatorRoutes.HandleFunc("/quizzes/{quizId}", quizHandler.Get).Methods("GET", "OPTIONS")

	// Host routes (require the room's host token)
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/rooms/{code}/start", gameHandler.Start).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{code}/host", gameHandler.Host).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{code}/advance", gameHandler.Advance).Methods("POST", "OPTIONS")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/rooms/{code}/question", gameHandler.Question).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{code}/answers", gameHandler.SubmitAnswer).Methods("POST", "OPTIONS")

	return r
}
