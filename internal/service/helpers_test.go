package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"triviarooms/internal/config"
	"triviarooms/internal/game"
	"triviarooms/internal/model"
	"triviarooms/internal/store"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingBroadcaster struct {
	mu           sync.Mutex
	events       []model.RoomEvent
	disconnected []string
}

func (b *recordingBroadcaster) NotifyRoom(_ string, e model.RoomEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBroadcaster) DisconnectRoom(code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, code)
}

func (b *recordingBroadcaster) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.Event
	}
	return out
}

type fakeArchive struct {
	mu      sync.Mutex
	rooms   []*model.RoomRecord
	results []*model.GameResult
	err     error
}

func (a *fakeArchive) SaveRoom(_ context.Context, r *model.RoomRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rooms = append(a.rooms, r)
	return a.err
}

func (a *fakeArchive) GetRoom(_ context.Context, code string) (*model.RoomRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.rooms {
		if r.Room.Code == code {
			return r, nil
		}
	}
	return nil, model.ErrRoomNotFound
}

func (a *fakeArchive) SaveResult(_ context.Context, r *model.GameResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, r)
	return a.err
}

func (a *fakeArchive) GetResult(_ context.Context, code string) (*model.GameResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.results {
		if r.RoomCode == code {
			return r, nil
		}
	}
	return nil, model.ErrRoomNotFound
}

type fakeQuizRepo struct {
	quizzes map[string]*model.Quiz
}

func (r *fakeQuizRepo) Create(_ context.Context, q *model.Quiz) (string, error) {
	id := fmt.Sprintf("%024d", len(r.quizzes)+1)
	q.ID = id
	r.quizzes[id] = q
	return id, nil
}

func (r *fakeQuizRepo) GetByID(_ context.Context, id string) (*model.Quiz, error) {
	q, ok := r.quizzes[id]
	if !ok {
		return nil, model.ErrQuizNotFound
	}
	return q, nil
}

func (r *fakeQuizRepo) List(context.Context, string, int64) ([]*model.Quiz, error) {
	out := []*model.Quiz{}
	for _, q := range r.quizzes {
		out = append(out, q)
	}
	return out, nil
}

func (r *fakeQuizRepo) Delete(context.Context, string) error { return nil }

func testRules() config.GameConfig {
	return config.GameConfig{
		DefaultTimeLimitSeconds: 30,
		MinTimeLimitSeconds:     5,
		MaxTimeLimitSeconds:     300,
		BaseAward:               1000,
		ConflictRetries:         1,
		MaxPlayers:              50,
		CodeAttempts:            10,
	}
}

type fixture struct {
	clock   *manualClock
	store   store.RoomStore
	archive *fakeArchive
	quizzes *fakeQuizRepo
	events  *recordingBroadcaster
	auth    *AuthService
	rooms   *RoomService
	games   *GameService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, store.NewMemoryStore())
}

func newFixtureWithStore(t *testing.T, st store.RoomStore) *fixture {
	t.Helper()
	clock := &manualClock{now: t0}
	rules := testRules()
	f := &fixture{
		clock:   clock,
		store:   st,
		archive: &fakeArchive{},
		quizzes: &fakeQuizRepo{quizzes: map[string]*model.Quiz{}},
		events:  &recordingBroadcaster{},
	}
	f.auth = NewAuthService(config.AuthConfig{
		JWTSecret:       "test-secret",
		TokenTTL:        time.Hour,
		CuratorUsername: "curator",
		CuratorPassword: "pw",
	}, clock)
	engine := game.NewEngine(rules.BaseAward)
	builder := game.NewSessionBuilder(game.IDFunc(func() string { return "fixed" }), clock)
	f.rooms = NewRoomService(st, f.quizzes, f.archive, f.auth, builder, engine, clock, rules)
	f.games = NewGameService(st, f.archive, engine, clock, rules.ConflictRetries)
	f.rooms.SetBroadcaster(f.events)
	f.games.SetBroadcaster(f.events)
	return f
}

func questions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			Text:          fmt.Sprintf("question %d", i),
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: i % 4,
		}
	}
	return qs
}

// createRoom makes a room with n questions and returns the host's join data.
func (f *fixture) createRoom(t *testing.T, n int) *model.PlayerJoinResponse {
	t.Helper()
	host, err := f.rooms.CreateRoom(context.Background(), &model.CreateRoomRequest{
		HostName:  "Host",
		Questions: questions(n),
	})
	require.NoError(t, err)
	return host
}

func (f *fixture) join(t *testing.T, code, name string) *model.PlayerJoinResponse {
	t.Helper()
	p, err := f.rooms.JoinRoom(context.Background(), code, &model.JoinRoomRequest{Name: name})
	require.NoError(t, err)
	return p
}

func (f *fixture) answer(code, playerID string, idx int) (*model.AnswerResult, error) {
	return f.games.SubmitAnswer(context.Background(), code, playerID, &model.SubmitAnswerRequest{AnswerIndex: &idx})
}

func intPtr(v int) *int { return &v }
