package store

import (
	"context"
	"fmt"
	"sync"

	"triviarooms/internal/game"
	"triviarooms/internal/model"
)

type memRoom struct {
	room      model.Room
	questions []model.Question
	players   map[string]*model.Player
	roster    []string
}

// MemoryStore is a single-process RoomStore with the same conditional write
// rules as RedisStore.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*memRoom
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*memRoom)}
}

func (s *MemoryStore) lookup(code string) (*memRoom, error) {
	r, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return r, nil
}

func (s *MemoryStore) check(room *model.Room) (*memRoom, error) {
	r, err := s.lookup(room.Code)
	if err != nil {
		return nil, err
	}
	if r.room.Version != room.Version {
		return nil, model.ErrStoreConflict
	}
	return r, nil
}

func (s *MemoryStore) CreateRoom(_ context.Context, room *model.Room, host *model.Player, questions []model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.Code]; ok {
		return model.ErrRoomCodeTaken
	}

	room.Version = 1
	host.Version = 1
	host.Seq = 0
	qs := make([]model.Question, len(questions))
	copy(qs, questions)
	s.rooms[room.Code] = &memRoom{
		room:      *room,
		questions: qs,
		players:   map[string]*model.Player{host.ID: host.Clone()},
		roster:    []string{host.ID},
	}
	return nil
}

func (s *MemoryStore) GetRoom(_ context.Context, code string) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.lookup(code)
	if err != nil {
		return nil, err
	}
	room := r.room
	return &room, nil
}

func (s *MemoryStore) GetQuestion(_ context.Context, code string, index int) (*model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[code]
	if !ok || index < 0 || index >= len(r.questions) {
		return nil, fmt.Errorf("%w: %s #%d", model.ErrQuestionNotFound, code, index)
	}
	q := r.questions[index]
	q.Options = append([]string(nil), q.Options...)
	return &q, nil
}

func (s *MemoryStore) GetPlayer(_ context.Context, code, playerID string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, playerID)
	}
	p, ok := r.players[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, playerID)
	}
	return p.Clone(), nil
}

func (s *MemoryStore) ListPlayers(_ context.Context, code string) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[code]
	if !ok {
		return []*model.Player{}, nil
	}
	out := make([]*model.Player, 0, len(r.roster))
	for _, id := range r.roster {
		out = append(out, r.players[id].Clone())
	}
	return out, nil
}

func (s *MemoryStore) Standings(ctx context.Context, code string, limit int) ([]*model.Player, error) {
	players, err := s.ListPlayers(ctx, code)
	if err != nil {
		return nil, err
	}
	ranked := game.Rank(players)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (s *MemoryStore) AddPlayer(_ context.Context, room *model.Room, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.check(room)
	if err != nil {
		return err
	}
	if _, ok := r.players[player.ID]; ok {
		return model.ErrStoreConflict
	}

	player.Seq = len(r.roster)
	player.Version = 1
	r.players[player.ID] = player.Clone()
	r.roster = append(r.roster, player.ID)
	room.Version++
	r.room = *room
	return nil
}

func (s *MemoryStore) SaveRoom(_ context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.check(room)
	if err != nil {
		return err
	}
	room.Version++
	r.room = *room
	return nil
}

func (s *MemoryStore) SavePlayer(_ context.Context, room *model.Room, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.check(room)
	if err != nil {
		return err
	}
	if err := checkPlayer(r, player); err != nil {
		return err
	}
	player.Version++
	r.players[player.ID] = player.Clone()
	return nil
}

func (s *MemoryStore) SaveRound(_ context.Context, room *model.Room, players []*model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.check(room)
	if err != nil {
		return err
	}
	for _, p := range players {
		if err := checkPlayer(r, p); err != nil {
			return err
		}
	}

	room.Version++
	r.room = *room
	for _, p := range players {
		p.Version++
		r.players[p.ID] = p.Clone()
	}
	return nil
}

func checkPlayer(r *memRoom, p *model.Player) error {
	cur, ok := r.players[p.ID]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrPlayerNotFound, p.ID)
	}
	if cur.Version != p.Version {
		return model.ErrStoreConflict
	}
	return nil
}
