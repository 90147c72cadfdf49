package rest

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triviarooms/internal/config"
	"triviarooms/internal/game"
	"triviarooms/internal/model"
	"triviarooms/internal/service"
	"triviarooms/internal/store"
	"triviarooms/internal/transport/ws"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testAPI struct {
	handler http.Handler
	clock   *stepClock
	auth    *service.AuthService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	clock := &stepClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	rules := config.GameConfig{
		DefaultTimeLimitSeconds: 30,
		MinTimeLimitSeconds:     5,
		MaxTimeLimitSeconds:     300,
		BaseAward:               1000,
		ConflictRetries:         1,
		MaxPlayers:              10,
		CodeAttempts:            10,
	}
	st := store.NewMemoryStore()
	authSvc := service.NewAuthService(config.AuthConfig{
		JWTSecret:       "router-secret",
		TokenTTL:        time.Hour,
		CuratorUsername: "curator",
		CuratorPassword: "pw",
	}, clock)
	engine := game.NewEngine(rules.BaseAward)
	builder := game.NewSessionBuilder(game.IDFunc(func() string { return "sess" }), clock)
	roomSvc := service.NewRoomService(st, nil, nil, authSvc, builder, engine, clock, rules)
	gameSvc := service.NewGameService(st, nil, engine, clock, rules.ConflictRetries)

	hub := ws.NewHub()
	t.Cleanup(hub.Close)
	roomSvc.SetBroadcaster(hub)
	gameSvc.SetBroadcaster(hub)

	h := NewRouter(&Container{
		AuthService:   authSvc,
		QuizService:   service.NewQuizService(nil),
		RoomService:   roomSvc,
		GameService:   gameSvc,
		WSHub:         hub,
		PublicBaseURL: "https://trivia.example",
	})
	return &testAPI{handler: h, clock: clock, auth: authSvc}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func twoQuestions() []model.Question {
	return []model.Question{
		{Text: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: 1},
		{Text: "Capital of France?", Options: []string{"Paris", "Rome", "Oslo"}, CorrectAnswer: 0},
	}
}

func (a *testAPI) createRoom(t *testing.T) model.PlayerJoinResponse {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/v1/rooms", "", model.CreateRoomRequest{
		HostName:  "Host",
		Questions: twoQuestions(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[model.PlayerJoinResponse](t, rec)
}

func (a *testAPI) join(t *testing.T, code, name string) model.PlayerJoinResponse {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/v1/rooms/"+code+"/join", "", model.JoinRoomRequest{Name: name})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[model.PlayerJoinResponse](t, rec)
}

func answerBody(i int) model.SubmitAnswerRequest {
	return model.SubmitAnswerRequest{AnswerIndex: &i}
}

func TestRouter_FullGame(t *testing.T) {
	api := newTestAPI(t)
	host := api.createRoom(t)
	assert.True(t, host.IsHost)
	assert.Equal(t, model.RoomWaiting, host.Status)

	// display format is accepted in the path
	alice := api.join(t, host.DisplayCode, "Alice")
	assert.Equal(t, host.RoomCode, alice.RoomCode)
	assert.False(t, alice.IsHost)

	rec := api.do(t, http.MethodPost, "/v1/rooms/"+host.RoomCode+"/start", host.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.RoomActive, decodeBody[model.RoomSummary](t, rec).Status)

	rec = api.do(t, http.MethodGet, "/v1/rooms/"+host.RoomCode+"/question", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[model.PlayerView](t, rec)
	assert.Equal(t, "2+2?", view.Question.Text)
	assert.NotContains(t, rec.Body.String(), "correctAnswer")

	// round 0: both answer, host wrong
	api.clock.Advance(3 * time.Second)
	rec = api.do(t, http.MethodPost, "/v1/rooms/"+host.RoomCode+"/answers", alice.Token, answerBody(1))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[model.AnswerResult](t, rec)
	assert.Positive(t, res.Awarded)

	rec = api.do(t, http.MethodPost, "/v1/rooms/"+host.RoomCode+"/answers", alice.Token, answerBody(0))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodPost, "/v1/rooms/"+host.RoomCode+"/answers", host.Token, answerBody(0))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decodeBody[model.AnswerResult](t, rec).Awarded)

	rec = api.do(t, http.MethodGet, "/v1/rooms/"+host.RoomCode+"/host", host.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hv := decodeBody[model.HostView](t, rec)
	assert.Equal(t, 2, hv.AnsweredCount)
	assert.True(t, hv.CanAdvance)

	rec = api.do(t, http.MethodPost, "/v1/rooms/"+host.RoomCode+"/advance", host.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decodeBody[model.RoomSummary](t, rec).CurrentQuestionIndex)

	// round 1: nobody answers, host advances after the deadline
	rec = api.do(t, http.MethodPost, "/v1/rooms/"+host.RoomCode+"/advance", host.Token, model.AdvanceRequest{})
	assert.Equal(t, http.StatusConflict, rec.Code)

	api.clock.Advance(31 * time.Second)
	rec = api.do(t, http.MethodPost, "/v1/rooms/"+host.RoomCode+"/answers", alice.Token, answerBody(0))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	idx := 1
	rec = api.do(t, http.MethodPost, "/v1/rooms/"+host.RoomCode+"/advance", host.Token, model.AdvanceRequest{QuestionIndex: &idx})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	final := decodeBody[model.RoomSummary](t, rec)
	assert.Equal(t, model.RoomFinished, final.Status)

	rec = api.do(t, http.MethodGet, "/v1/rooms/"+host.RoomCode+"/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board := decodeBody[struct {
		Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
	}](t, rec)
	require.Len(t, board.Leaderboard, 2)
	assert.Equal(t, alice.PlayerID, board.Leaderboard[0].PlayerID)
	assert.Equal(t, 1, board.Leaderboard[0].Rank)
	assert.Equal(t, host.PlayerID, board.Leaderboard[1].PlayerID)

	rec = api.do(t, http.MethodPost, "/v1/rooms/"+host.RoomCode+"/join", "", model.JoinRoomRequest{Name: "Late"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouter_StatusMapping(t *testing.T) {
	api := newTestAPI(t)
	host := api.createRoom(t)
	alice := api.join(t, host.RoomCode, "Alice")
	other := api.createRoom(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"unknown room", http.MethodGet, "/v1/rooms/ZZZZZZ", "", nil, http.StatusNotFound},
		{"malformed code", http.MethodGet, "/v1/rooms/AB", "", nil, http.StatusBadRequest},
		{"join without name", http.MethodPost, "/v1/rooms/" + host.RoomCode + "/join", "", model.JoinRoomRequest{}, http.StatusBadRequest},
		{"create without questions", http.MethodPost, "/v1/rooms", "", model.CreateRoomRequest{HostName: "H"}, http.StatusBadRequest},
		{"create with bad time limit", http.MethodPost, "/v1/rooms", "", model.CreateRoomRequest{HostName: "H", Questions: twoQuestions(), TimeLimitSeconds: 1}, http.StatusBadRequest},
		{"question without token", http.MethodGet, "/v1/rooms/" + host.RoomCode + "/question", "", nil, http.StatusUnauthorized},
		{"question with garbage token", http.MethodGet, "/v1/rooms/" + host.RoomCode + "/question", "nope", nil, http.StatusUnauthorized},
		{"token for another room", http.MethodGet, "/v1/rooms/" + other.RoomCode + "/question", alice.Token, nil, http.StatusForbidden},
		{"player cannot start", http.MethodPost, "/v1/rooms/" + host.RoomCode + "/start", alice.Token, nil, http.StatusForbidden},
		{"question before start", http.MethodGet, "/v1/rooms/" + host.RoomCode + "/question", alice.Token, nil, http.StatusUnprocessableEntity},
		{"answer before start", http.MethodPost, "/v1/rooms/" + host.RoomCode + "/answers", alice.Token, answerBody(0), http.StatusUnprocessableEntity},
		{"answer missing index", http.MethodPost, "/v1/rooms/" + host.RoomCode + "/answers", alice.Token, map[string]int{}, http.StatusBadRequest},
		{"answer negative question index", http.MethodPost, "/v1/rooms/" + host.RoomCode + "/answers", alice.Token, map[string]int{"answerIndex": 0, "questionIndex": -1}, http.StatusBadRequest},
		{"advance before start", http.MethodPost, "/v1/rooms/" + host.RoomCode + "/advance", host.Token, nil, http.StatusConflict},
		{"quiz bank without curator", http.MethodGet, "/v1/quizzes", "", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestRouter_ConflictRetryableFlag(t *testing.T) {
	api := newTestAPI(t)
	host := api.createRoom(t)

	rec := api.do(t, http.MethodPost, "/v1/rooms/"+host.RoomCode+"/advance", host.Token, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody[map[string]interface{}](t, rec)
	assert.NotEmpty(t, body["error"])
	assert.Nil(t, body["retryable"])
}

func TestRouter_QuizBankDisabled(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/v1/auth/login", "", model.LoginRequest{Username: "curator", Password: "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/v1/auth/login", "", model.LoginRequest{Username: "curator", Password: "pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decodeBody[model.LoginResponse](t, rec)
	require.NotEmpty(t, login.Token)

	rec = api.do(t, http.MethodGet, "/v1/quizzes", login.Token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = api.do(t, http.MethodPost, "/v1/rooms", "", model.CreateRoomRequest{HostName: "H", QuizID: "abc"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_QRCode(t *testing.T) {
	api := newTestAPI(t)
	host := api.createRoom(t)

	rec := api.do(t, http.MethodGet, "/v1/rooms/"+host.RoomCode+"/qr", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())

	rec = api.do(t, http.MethodGet, "/v1/rooms/ZZZZZZ/qr", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_HealthAndPreflight(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = api.do(t, http.MethodOptions, "/v1/quizzes", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
