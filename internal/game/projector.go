package game

import (
	"fmt"
	"sort"
	"time"

	"triviarooms/internal/model"
	"triviarooms/internal/roomcode"
)

// Rank orders players by score descending. Ties keep join order, so repeated
// polls of the same state always list tied players identically.
func Rank(players []*model.Player) []*model.Player {
	ranked := make([]*model.Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Seq < ranked[j].Seq
	})
	return ranked
}

// Roster renders ranked players for clients.
func Roster(players []*model.Player) []model.RosterEntry {
	ranked := Rank(players)
	out := make([]model.RosterEntry, len(ranked))
	for i, p := range ranked {
		out[i] = model.RosterEntry{
			ID:          p.ID,
			Name:        p.Name,
			Avatar:      p.Avatar,
			IsHost:      p.IsHost,
			Score:       p.Score,
			HasAnswered: p.HasAnswered(),
		}
	}
	return out
}

// Leaderboard converts ranked players into numbered entries, keeping at most
// limit entries when limit > 0.
func Leaderboard(players []*model.Player, limit int) []model.LeaderboardEntry {
	ranked := Rank(players)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]model.LeaderboardEntry, len(ranked))
	for i, p := range ranked {
		out[i] = model.LeaderboardEntry{PlayerID: p.ID, Name: p.Name, Score: p.Score, Rank: i + 1}
	}
	return out
}

func findPlayer(players []*model.Player, id string) *model.Player {
	for _, p := range players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ProjectForPlayer builds the view one player polls during a game. The
// correct answer of the open question is never included; previous, when
// given, is the round that just closed and is revealed.
func ProjectForPlayer(room *model.Room, players []*model.Player, question, previous *model.Question, playerID string) (*model.PlayerView, error) {
	if room == nil {
		return nil, model.ErrRoomNotFound
	}
	me := findPlayer(players, playerID)
	if me == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, playerID)
	}
	if room.Status != model.RoomActive {
		return nil, fmt.Errorf("%w: room is %s", model.ErrInvalidState, room.Status)
	}
	if question == nil || question.Index != room.CurrentQuestionIndex {
		return nil, model.ErrQuestionNotFound
	}

	view := &model.PlayerView{
		RoomCode:         room.Code,
		Status:           room.Status,
		Question:         question.Public(),
		TotalQuestions:   room.TotalQuestions,
		QuestionStart:    room.QuestionStartTime,
		TimeLimitSeconds: room.TimeLimitSeconds,
		HasAnswered:      me.HasAnswered(),
		Players:          Roster(players),
	}
	if previous != nil && previous.Index < room.CurrentQuestionIndex {
		view.PreviousRound = &model.RevealedQuestion{Index: previous.Index, CorrectAnswer: previous.CorrectAnswer}
	}
	return view, nil
}

// ProjectForHost builds the host's aggregate view with the advance gate.
func ProjectForHost(room *model.Room, players []*model.Player, question *model.Question, callerID string, now time.Time) (*model.HostView, error) {
	if room == nil {
		return nil, model.ErrRoomNotFound
	}
	caller := findPlayer(players, callerID)
	if caller == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, callerID)
	}
	if !caller.IsHost {
		return nil, model.ErrNotHost
	}
	if room.Status != model.RoomActive {
		return nil, fmt.Errorf("%w: room is %s", model.ErrInvalidState, room.Status)
	}
	if question == nil || question.Index != room.CurrentQuestionIndex {
		return nil, model.ErrQuestionNotFound
	}

	answered := AnsweredCount(players)
	gate := CanAdvance(room, players, now)
	controls := model.HostControls{AdvanceEnabled: gate}
	if !gate {
		controls.Reason = fmt.Sprintf("waiting for %d of %d players", len(players)-answered, len(players))
	}

	return &model.HostView{
		RoomCode:         room.Code,
		Status:           room.Status,
		Question:         question.Public(),
		QuestionIndex:    room.CurrentQuestionIndex,
		TotalQuestions:   room.TotalQuestions,
		QuestionStart:    room.QuestionStartTime,
		TimeLimitSeconds: room.TimeLimitSeconds,
		AnsweredCount:    answered,
		TotalPlayers:     len(players),
		CanAdvance:       gate,
		Controls:         controls,
		Players:          Roster(players),
	}, nil
}

// Summarize builds the status-independent room view.
func Summarize(room *model.Room, players []*model.Player) (*model.RoomSummary, error) {
	if room == nil {
		return nil, model.ErrRoomNotFound
	}
	display, err := roomcode.Format(room.Code)
	if err != nil {
		return nil, err
	}
	return &model.RoomSummary{
		RoomCode:             room.Code,
		DisplayCode:          display,
		Status:               room.Status,
		Category:             room.Category,
		Difficulty:           room.Difficulty,
		CurrentQuestionIndex: room.CurrentQuestionIndex,
		TotalQuestions:       room.TotalQuestions,
		TimeLimitSeconds:     room.TimeLimitSeconds,
		Players:              Roster(players),
	}, nil
}

// SummarizeArchived rebuilds the final summary of a finished room whose live
// state has expired, from its archived record and standings.
func SummarizeArchived(room *model.Room, result *model.GameResult) (*model.RoomSummary, error) {
	if room == nil || result == nil {
		return nil, model.ErrRoomNotFound
	}
	display, err := roomcode.Format(room.Code)
	if err != nil {
		return nil, err
	}
	players := make([]model.RosterEntry, len(result.Standings))
	for i, e := range result.Standings {
		players[i] = model.RosterEntry{
			ID:     e.PlayerID,
			Name:   e.Name,
			IsHost: e.PlayerID == room.HostPlayerID,
			Score:  e.Score,
		}
	}
	last := result.TotalQuestions - 1
	if last < 0 {
		last = 0
	}
	return &model.RoomSummary{
		RoomCode:             room.Code,
		DisplayCode:          display,
		Status:               model.RoomFinished,
		Category:             result.Category,
		Difficulty:           result.Difficulty,
		CurrentQuestionIndex: last,
		TotalQuestions:       result.TotalQuestions,
		TimeLimitSeconds:     room.TimeLimitSeconds,
		Players:              players,
	}, nil
}
