package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"triviarooms/internal/config"
	"triviarooms/internal/game"
	"triviarooms/internal/model"
	"triviarooms/internal/repository"
	"triviarooms/internal/roomcode"
	"triviarooms/internal/store"
)

// RoomService handles room lifecycle operations
type RoomService struct {
	store       store.RoomStore
	quizRepo    repository.QuizRepo
	archive     repository.ArchiveRepo
	authSvc     *AuthService
	builder     *game.SessionBuilder
	engine      *game.Engine
	clock       game.Clock
	rules       config.GameConfig
	broadcaster Broadcaster

	newCode     func() string
	newPlayerID func() string
}

// NewRoomService creates a new room service. quizRepo and archive may be nil
// when Mongo is disabled.
func NewRoomService(
	roomStore store.RoomStore,
	quizRepo repository.QuizRepo,
	archive repository.ArchiveRepo,
	authSvc *AuthService,
	builder *game.SessionBuilder,
	engine *game.Engine,
	clock game.Clock,
	rules config.GameConfig,
) *RoomService {
	return &RoomService{
		store:       roomStore,
		quizRepo:    quizRepo,
		archive:     archive,
		authSvc:     authSvc,
		builder:     builder,
		engine:      engine,
		clock:       clock,
		rules:       rules,
		broadcaster: noopBroadcaster{},
		newCode:     roomcode.Generate,
		newPlayerID: newPlayerID,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *RoomService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateRoom seeds a session, persists the room under a fresh code and
// returns the host's credentials. The host is the room's first player.
func (s *RoomService) CreateRoom(ctx context.Context, req *model.CreateRoomRequest) (*model.PlayerJoinResponse, error) {
	questions, category, difficulty, err := s.resolveQuestions(ctx, req)
	if err != nil {
		return nil, err
	}
	limit, err := s.timeLimit(req.TimeLimitSeconds)
	if err != nil {
		return nil, err
	}

	session := s.builder.CreateSession(questions, category, difficulty)
	now := s.clock.Now()
	hostID := s.newPlayerID()

	room := &model.Room{
		Status:           model.RoomWaiting,
		HostPlayerID:     hostID,
		SessionID:        session.SessionID,
		Category:         session.Category,
		Difficulty:       session.Difficulty,
		TotalQuestions:   len(session.Questions),
		TimeLimitSeconds: limit,
		CreatedAt:        now,
	}
	host := &model.Player{
		ID:       hostID,
		Name:     req.HostName,
		Avatar:   req.HostAvatar,
		IsHost:   true,
		JoinedAt: now,
	}

	attempts := max(s.rules.CodeAttempts, 1)
	for attempt := 0; attempt < attempts; attempt++ {
		room.Code = s.newCode()
		host.RoomCode = room.Code
		err = s.store.CreateRoom(ctx, room, host, session.Questions)
		if !errors.Is(err, model.ErrRoomCodeTaken) {
			break
		}
		zap.L().Warn("room code collision", zap.String("room", room.Code), zap.Int("attempt", attempt+1))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	token, err := s.authSvc.GeneratePlayerToken(room.Code, hostID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.archiveRoom(ctx, room, session.Questions)
	zap.L().Info("room created",
		zap.String("room", room.Code),
		zap.String("player", hostID),
		zap.String("session", session.SessionID),
		zap.Int("questions", room.TotalQuestions))

	return s.joinResponse(room, host, token), nil
}

func (s *RoomService) resolveQuestions(ctx context.Context, req *model.CreateRoomRequest) ([]model.Question, string, string, error) {
	questions, category, difficulty := req.Questions, req.Category, req.Difficulty
	if req.QuizID != "" {
		if len(req.Questions) > 0 {
			return nil, "", "", model.Validationf("send either quizId or questions, not both")
		}
		if s.quizRepo == nil {
			return nil, "", "", ErrQuizBankUnavailable
		}
		quiz, err := s.quizRepo.GetByID(ctx, req.QuizID)
		if err != nil {
			return nil, "", "", err
		}
		questions = quiz.Questions
		if category == "" {
			category = quiz.Category
		}
		if difficulty == "" {
			difficulty = quiz.Difficulty
		}
	}
	if len(questions) == 0 {
		return nil, "", "", model.Validationf("a room needs at least one question")
	}

	out := make([]model.Question, len(questions))
	for i, q := range questions {
		if err := q.Check(); err != nil {
			return nil, "", "", err
		}
		q.Index = i
		out[i] = q
	}
	return out, category, difficulty, nil
}

func (s *RoomService) timeLimit(requested int) (int, error) {
	if requested == 0 {
		return s.rules.DefaultTimeLimitSeconds, nil
	}
	if requested < s.rules.MinTimeLimitSeconds || requested > s.rules.MaxTimeLimitSeconds {
		return 0, model.Validationf("timeLimitSeconds must be between %d and %d", s.rules.MinTimeLimitSeconds, s.rules.MaxTimeLimitSeconds)
	}
	return requested, nil
}

func (s *RoomService) archiveRoom(ctx context.Context, room *model.Room, questions []model.Question) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveRoom(ctx, &model.RoomRecord{Room: *room, Questions: questions}); err != nil {
		zap.L().Error("failed to archive room", zap.String("room", room.Code), zap.Error(err))
	}
}

// JoinRoom adds a player to a waiting or running room. Late joiners start
// with no score and no answer.
func (s *RoomService) JoinRoom(ctx context.Context, code string, req *model.JoinRoomRequest) (*model.PlayerJoinResponse, error) {
	var room *model.Room
	player := &model.Player{
		ID:       s.newPlayerID(),
		RoomCode: code,
		Name:     req.Name,
		Avatar:   req.Avatar,
	}

	err := withRetry(ctx, s.rules.ConflictRetries, func() error {
		var err error
		room, err = s.store.GetRoom(ctx, code)
		if err != nil {
			return err
		}
		if room.Status == model.RoomFinished {
			return fmt.Errorf("%w: room has finished", model.ErrInvalidState)
		}
		players, err := s.store.ListPlayers(ctx, code)
		if err != nil {
			return err
		}
		if len(players) >= s.rules.MaxPlayers {
			return model.ErrRoomFull
		}
		player.JoinedAt = s.clock.Now()
		return s.store.AddPlayer(ctx, room, player)
	})
	if err != nil {
		return nil, err
	}

	token, err := s.authSvc.GeneratePlayerToken(code, player.ID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	zap.L().Info("player joined",
		zap.String("room", code),
		zap.String("player", player.ID),
		zap.Int("seq", player.Seq))
	s.broadcaster.NotifyRoom(code, model.RoomEvent{
		Event:         model.EventPlayerJoined,
		QuestionIndex: room.CurrentQuestionIndex,
		Status:        room.Status,
	})

	return s.joinResponse(room, player, token), nil
}

// StartGame moves the room to its first question. Only the host may start.
func (s *RoomService) StartGame(ctx context.Context, code, callerID string) (*model.RoomSummary, error) {
	var room *model.Room
	err := withRetry(ctx, s.rules.ConflictRetries, func() error {
		var err error
		room, err = s.store.GetRoom(ctx, code)
		if err != nil {
			return err
		}
		if room.HostPlayerID != callerID {
			return model.ErrNotHost
		}
		if err := s.engine.Start(room, s.clock.Now()); err != nil {
			return err
		}
		return s.store.SaveRoom(ctx, room)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("game started", zap.String("room", code), zap.String("player", callerID))
	s.broadcaster.NotifyRoom(code, model.RoomEvent{
		Event:         model.EventGameStarted,
		QuestionIndex: room.CurrentQuestionIndex,
		Status:        room.Status,
	})
	return s.Summary(ctx, code)
}

// Summary is the lobby and results view; it is valid in every status. Once
// the live room has expired, finished games are served from the archive.
func (s *RoomService) Summary(ctx context.Context, code string) (*model.RoomSummary, error) {
	room, err := s.store.GetRoom(ctx, code)
	if errors.Is(err, model.ErrRoomNotFound) && s.archive != nil {
		return s.archivedSummary(ctx, code)
	}
	if err != nil {
		return nil, err
	}
	players, err := s.store.ListPlayers(ctx, code)
	if err != nil {
		return nil, err
	}
	return game.Summarize(room, players)
}

func (s *RoomService) archivedSummary(ctx context.Context, code string) (*model.RoomSummary, error) {
	record, err := s.archive.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	result, err := s.archive.GetResult(ctx, code)
	if err != nil {
		return nil, err
	}
	return game.SummarizeArchived(&record.Room, result)
}

func (s *RoomService) joinResponse(room *model.Room, p *model.Player, token string) *model.PlayerJoinResponse {
	display, err := roomcode.Format(room.Code)
	if err != nil {
		display = room.Code
	}
	return &model.PlayerJoinResponse{
		PlayerID:    p.ID,
		Token:       token,
		RoomCode:    room.Code,
		DisplayCode: display,
		IsHost:      p.IsHost,
		Status:      room.Status,
	}
}
