package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triviarooms/internal/model"
	"triviarooms/internal/roomcode"
)

func TestCreateRoom(t *testing.T) {
	f := newFixture(t)
	host := f.createRoom(t, 3)

	assert.True(t, roomcode.IsValid(host.RoomCode))
	assert.True(t, host.IsHost)
	assert.Equal(t, model.RoomWaiting, host.Status)
	assert.Equal(t, host.RoomCode[:3]+"-"+host.RoomCode[3:], host.DisplayCode)

	claims, err := f.auth.ValidatePlayerToken(host.Token)
	require.NoError(t, err)
	assert.Equal(t, host.PlayerID, claims.PlayerID)
	assert.Equal(t, host.RoomCode, claims.RoomCode)
	assert.True(t, claims.IsHost)

	summary, err := f.rooms.Summary(context.Background(), host.RoomCode)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalQuestions)
	assert.Equal(t, 30, summary.TimeLimitSeconds)
	require.Len(t, summary.Players, 1)
	assert.True(t, summary.Players[0].IsHost)

	room, err := f.store.GetRoom(context.Background(), host.RoomCode)
	require.NoError(t, err)
	assert.Equal(t, "session_fixed", room.SessionID)

	require.Len(t, f.archive.rooms, 1)
	archived := f.archive.rooms[0]
	require.Len(t, archived.Questions, 3)
	for i, q := range archived.Questions {
		assert.Equal(t, i, q.Index)
	}
}

func TestCreateRoom_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]*model.CreateRoomRequest{
		"no questions": {HostName: "H"},
		"bad answer": {HostName: "H", Questions: []model.Question{
			{Text: "q", Options: []string{"a", "b"}, CorrectAnswer: 2},
		}},
		"one option": {HostName: "H", Questions: []model.Question{
			{Text: "q", Options: []string{"a"}},
		}},
		"limit too short": {HostName: "H", Questions: questions(1), TimeLimitSeconds: 2},
		"limit too long":  {HostName: "H", Questions: questions(1), TimeLimitSeconds: 301},
		"quiz and inline": {HostName: "H", Questions: questions(1), QuizID: "x"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.rooms.CreateRoom(ctx, req)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestCreateRoom_CodeCollision(t *testing.T) {
	f := newFixture(t)
	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	f.rooms.newCode = func() string {
		c := codes[0]
		codes = codes[1:]
		return c
	}

	first := f.createRoom(t, 1)
	second := f.createRoom(t, 1)
	assert.Equal(t, "AAAAAA", first.RoomCode)
	assert.Equal(t, "BBBBBB", second.RoomCode)
}

func TestCreateRoom_CodeSpaceExhausted(t *testing.T) {
	f := newFixture(t)
	f.rooms.newCode = func() string { return "AAAAAA" }
	f.createRoom(t, 1)

	_, err := f.rooms.CreateRoom(context.Background(), &model.CreateRoomRequest{HostName: "H", Questions: questions(1)})
	assert.ErrorIs(t, err, model.ErrRoomCodeTaken)
}

func TestCreateRoom_FromQuiz(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.quizzes.Create(ctx, &model.Quiz{
		Title:      "Capitals",
		Category:   "geography",
		Difficulty: "easy",
		Questions:  questions(4),
	})
	require.NoError(t, err)

	host, err := f.rooms.CreateRoom(ctx, &model.CreateRoomRequest{HostName: "H", QuizID: id, TimeLimitSeconds: 10})
	require.NoError(t, err)

	summary, err := f.rooms.Summary(ctx, host.RoomCode)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalQuestions)
	assert.Equal(t, "geography", summary.Category)
	assert.Equal(t, "easy", summary.Difficulty)
	assert.Equal(t, 10, summary.TimeLimitSeconds)

	_, err = f.rooms.CreateRoom(ctx, &model.CreateRoomRequest{HostName: "H", QuizID: "missing"})
	assert.ErrorIs(t, err, model.ErrQuizNotFound)

	f.rooms.quizRepo = nil
	_, err = f.rooms.CreateRoom(ctx, &model.CreateRoomRequest{HostName: "H", QuizID: id})
	assert.ErrorIs(t, err, ErrQuizBankUnavailable)
}

func TestCreateRoom_ArchiveFailureIgnored(t *testing.T) {
	f := newFixture(t)
	f.archive.err = assert.AnError
	host := f.createRoom(t, 1)
	assert.NotEmpty(t, host.RoomCode)
}

func TestJoinRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.createRoom(t, 2)

	p := f.join(t, host.RoomCode, "Ann")
	assert.False(t, p.IsHost)
	assert.NotEqual(t, host.PlayerID, p.PlayerID)

	claims, err := f.auth.ValidatePlayerToken(p.Token)
	require.NoError(t, err)
	assert.False(t, claims.IsHost)

	_, err = f.rooms.JoinRoom(ctx, "ZZZZZZ", &model.JoinRoomRequest{Name: "x"})
	assert.ErrorIs(t, err, model.ErrRoomNotFound)

	assert.Equal(t, []string{model.EventPlayerJoined}, f.events.names())
}

func TestJoinRoom_Full(t *testing.T) {
	f := newFixture(t)
	f.rooms.rules.MaxPlayers = 2
	host := f.createRoom(t, 1)
	f.join(t, host.RoomCode, "Ann")

	_, err := f.rooms.JoinRoom(context.Background(), host.RoomCode, &model.JoinRoomRequest{Name: "Bob"})
	assert.ErrorIs(t, err, model.ErrRoomFull)
}

func TestJoinRoom_LateAndFinished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.createRoom(t, 1)
	_, err := f.rooms.StartGame(ctx, host.RoomCode, host.PlayerID)
	require.NoError(t, err)

	_, err = f.answer(host.RoomCode, host.PlayerID, 0)
	require.NoError(t, err)

	late := f.join(t, host.RoomCode, "Late")
	assert.Equal(t, model.RoomActive, late.Status)
	p, err := f.store.GetPlayer(ctx, host.RoomCode, late.PlayerID)
	require.NoError(t, err)
	assert.Zero(t, p.Score)
	assert.Nil(t, p.CurrentAnswer)

	// the late joiner now holds the gate closed
	_, err = f.games.Advance(ctx, host.RoomCode, host.PlayerID, nil)
	assert.ErrorIs(t, err, model.ErrAdvanceNotAllowed)

	_, err = f.answer(host.RoomCode, late.PlayerID, 3)
	require.NoError(t, err)
	summary, err := f.games.Advance(ctx, host.RoomCode, host.PlayerID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.RoomFinished, summary.Status)

	_, err = f.rooms.JoinRoom(ctx, host.RoomCode, &model.JoinRoomRequest{Name: "Too late"})
	assert.ErrorIs(t, err, model.ErrInvalidState)
}

func TestStartGame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.createRoom(t, 2)
	p := f.join(t, host.RoomCode, "Ann")

	_, err := f.rooms.StartGame(ctx, host.RoomCode, p.PlayerID)
	assert.ErrorIs(t, err, model.ErrNotHost)

	summary, err := f.rooms.StartGame(ctx, host.RoomCode, host.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomActive, summary.Status)
	assert.Equal(t, 0, summary.CurrentQuestionIndex)

	room, err := f.store.GetRoom(ctx, host.RoomCode)
	require.NoError(t, err)
	assert.True(t, room.QuestionStartTime.Equal(t0))

	_, err = f.rooms.StartGame(ctx, host.RoomCode, host.PlayerID)
	assert.ErrorIs(t, err, model.ErrInvalidStateTransition)
}
