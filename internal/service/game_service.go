package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"triviarooms/internal/game"
	"triviarooms/internal/model"
	"triviarooms/internal/repository"
	"triviarooms/internal/store"
)

// snapshotAttempts bounds re-reads while a round is being written.
const snapshotAttempts = 3

// GameService runs the question loop of an active room: answers, the host's
// advance and the polled views.
type GameService struct {
	store       store.RoomStore
	archive     repository.ArchiveRepo
	engine      *game.Engine
	clock       game.Clock
	retries     int
	broadcaster Broadcaster
}

// NewGameService creates a new game service. archive may be nil.
func NewGameService(roomStore store.RoomStore, archive repository.ArchiveRepo, engine *game.Engine, clock game.Clock, conflictRetries int) *GameService {
	return &GameService{
		store:       roomStore,
		archive:     archive,
		engine:      engine,
		clock:       clock,
		retries:     conflictRetries,
		broadcaster: noopBroadcaster{},
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SubmitAnswer records the player's answer to the current question. The
// answer is bound to the question open when the request arrived; if the host
// advances first the submission fails with ErrStaleQuestion.
func (s *GameService) SubmitAnswer(ctx context.Context, code, playerID string, req *model.SubmitAnswerRequest) (*model.AnswerResult, error) {
	if req.AnswerIndex == nil {
		return nil, model.Validationf("answerIndex is required")
	}
	submittedAt := s.clock.Now()
	pinned := -1
	clientPinned := req.QuestionIndex != nil
	if clientPinned {
		if *req.QuestionIndex < 0 {
			return nil, model.Validationf("questionIndex must not be negative")
		}
		pinned = *req.QuestionIndex
	}

	var result *model.AnswerResult
	err := withRetry(ctx, s.retries, func() error {
		room, err := s.store.GetRoom(ctx, code)
		if err != nil {
			return err
		}
		if room.Status != model.RoomActive {
			return fmt.Errorf("%w: room is %s", model.ErrInvalidState, room.Status)
		}
		if !clientPinned && pinned < 0 {
			// a question opened after the request arrived was never shown to this player
			if room.QuestionStartTime.After(submittedAt) {
				return fmt.Errorf("%w: question %d opened after the answer arrived", model.ErrStaleQuestion, room.CurrentQuestionIndex)
			}
			pinned = room.CurrentQuestionIndex
		}
		if room.CurrentQuestionIndex != pinned {
			return fmt.Errorf("%w: question %d, room is on %d", model.ErrStaleQuestion, pinned, room.CurrentQuestionIndex)
		}

		player, err := s.store.GetPlayer(ctx, code, playerID)
		if err != nil {
			return err
		}
		q, err := s.store.GetQuestion(ctx, code, room.CurrentQuestionIndex)
		if err != nil {
			return err
		}
		awarded, err := s.engine.SubmitAnswer(room, player, q, *req.AnswerIndex, submittedAt)
		if err != nil {
			return err
		}
		if err := s.store.SavePlayer(ctx, room, player); err != nil {
			return err
		}
		result = &model.AnswerResult{QuestionIndex: q.Index, Awarded: awarded, Score: player.Score}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("answer accepted",
		zap.String("room", code),
		zap.String("player", playerID),
		zap.Int("question", result.QuestionIndex),
		zap.Int("awarded", result.Awarded))
	s.broadcaster.NotifyRoom(code, model.RoomEvent{
		Event:         model.EventAnswerSubmitted,
		QuestionIndex: result.QuestionIndex,
		Status:        model.RoomActive,
	})
	return result, nil
}

// Advance closes the current question for everyone and opens the next one,
// or finishes the game after the last. Only the host may advance, and only
// once the gate is open.
func (s *GameService) Advance(ctx context.Context, code, callerID string, req *model.AdvanceRequest) (*model.RoomSummary, error) {
	if req != nil && req.QuestionIndex != nil && *req.QuestionIndex < 0 {
		return nil, model.Validationf("questionIndex must not be negative")
	}
	var (
		room    *model.Room
		players []*model.Player
		closed  int
	)
	err := withRetry(ctx, s.retries, func() error {
		var err error
		room, err = s.store.GetRoom(ctx, code)
		if err != nil {
			return err
		}
		if room.HostPlayerID != callerID {
			return model.ErrNotHost
		}
		if req != nil && req.QuestionIndex != nil && room.Status == model.RoomActive && *req.QuestionIndex != room.CurrentQuestionIndex {
			return fmt.Errorf("%w: question %d is already closed", model.ErrAdvanceNotAllowed, *req.QuestionIndex)
		}
		players, err = s.store.ListPlayers(ctx, code)
		if err != nil {
			return err
		}
		closed = room.CurrentQuestionIndex
		if err := s.engine.Advance(room, players, s.clock.Now()); err != nil {
			return err
		}
		return s.store.SaveRound(ctx, room, players)
	})
	if err != nil {
		return nil, err
	}

	if room.Status == model.RoomFinished {
		zap.L().Info("game finished", zap.String("room", code), zap.Int("question", closed))
		s.archiveResult(ctx, room, players)
		s.broadcaster.NotifyRoom(code, model.RoomEvent{
			Event:         model.EventGameFinished,
			QuestionIndex: room.CurrentQuestionIndex,
			Status:        room.Status,
		})
		s.broadcaster.DisconnectRoom(code)
	} else {
		zap.L().Info("question advanced", zap.String("room", code), zap.Int("question", room.CurrentQuestionIndex))
		s.broadcaster.NotifyRoom(code, model.RoomEvent{
			Event:         model.EventQuestionAdvanced,
			QuestionIndex: room.CurrentQuestionIndex,
			Status:        room.Status,
		})
	}
	return game.Summarize(room, players)
}

func (s *GameService) archiveResult(ctx context.Context, room *model.Room, players []*model.Player) {
	if s.archive == nil {
		return
	}
	finished := s.clock.Now()
	if room.FinishedAt != nil {
		finished = *room.FinishedAt
	}
	result := &model.GameResult{
		RoomCode:       room.Code,
		SessionID:      room.SessionID,
		Category:       room.Category,
		Difficulty:     room.Difficulty,
		TotalQuestions: room.TotalQuestions,
		Standings:      game.Leaderboard(players, 0),
		FinishedAt:     finished,
	}
	if err := s.archive.SaveResult(ctx, result); err != nil {
		zap.L().Error("failed to archive result", zap.String("room", room.Code), zap.Error(err))
	}
}

// snapshot reads the room and its roster from the same round.
func (s *GameService) snapshot(ctx context.Context, code string) (*model.Room, []*model.Player, error) {
	for i := 0; i < snapshotAttempts; i++ {
		room, err := s.store.GetRoom(ctx, code)
		if err != nil {
			return nil, nil, err
		}
		players, err := s.store.ListPlayers(ctx, code)
		if err != nil {
			return nil, nil, err
		}
		again, err := s.store.GetRoom(ctx, code)
		if err != nil {
			return nil, nil, err
		}
		if again.Version == room.Version {
			return room, players, nil
		}
	}
	return nil, nil, model.ErrStoreConflict
}

func (s *GameService) currentQuestion(ctx context.Context, room *model.Room) (*model.Question, error) {
	if room.Status != model.RoomActive {
		return nil, nil
	}
	return s.store.GetQuestion(ctx, room.Code, room.CurrentQuestionIndex)
}

// PlayerView is the per-player poll: the open question without its answer,
// the ranked roster, and the answer to the round that just closed.
func (s *GameService) PlayerView(ctx context.Context, code, playerID string) (*model.PlayerView, error) {
	room, players, err := s.snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	q, err := s.currentQuestion(ctx, room)
	if err != nil {
		return nil, err
	}
	var previous *model.Question
	if room.Status == model.RoomActive && room.CurrentQuestionIndex > 0 {
		if previous, err = s.store.GetQuestion(ctx, code, room.CurrentQuestionIndex-1); err != nil {
			return nil, err
		}
	}
	return game.ProjectForPlayer(room, players, q, previous, playerID)
}

// HostView is the host's poll, including the advance gate.
func (s *GameService) HostView(ctx context.Context, code, callerID string) (*model.HostView, error) {
	room, players, err := s.snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	q, err := s.currentQuestion(ctx, room)
	if err != nil {
		return nil, err
	}
	return game.ProjectForHost(room, players, q, callerID, s.clock.Now())
}

// Leaderboard returns the top players, all of them when top <= 0.
func (s *GameService) Leaderboard(ctx context.Context, code string, top int) ([]model.LeaderboardEntry, error) {
	if _, err := s.store.GetRoom(ctx, code); err != nil {
		if errors.Is(err, model.ErrRoomNotFound) && s.archive != nil {
			return s.archivedLeaderboard(ctx, code, top)
		}
		return nil, err
	}
	players, err := s.store.Standings(ctx, code, top)
	if err != nil {
		return nil, err
	}
	return game.Leaderboard(players, top), nil
}

func (s *GameService) archivedLeaderboard(ctx context.Context, code string, top int) ([]model.LeaderboardEntry, error) {
	result, err := s.archive.GetResult(ctx, code)
	if err != nil {
		return nil, err
	}
	entries := result.Standings
	if top > 0 && len(entries) > top {
		entries = entries[:top]
	}
	return entries, nil
}
