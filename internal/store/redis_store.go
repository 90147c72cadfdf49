package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"triviarooms/internal/model"
)

// DefaultTTL is how long an idle room lives in Redis.
const DefaultTTL = 24 * time.Hour

// RedisStore keeps each room as a handful of keys and implements the
// conditional writes with WATCH/MULTI/EXEC.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis backed room store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Key helpers
func (s *RedisStore) roomKey(code string) string {
	return fmt.Sprintf("room:%s", code)
}

func (s *RedisStore) questionsKey(code string) string {
	return fmt.Sprintf("room:%s:questions", code)
}

func (s *RedisStore) rosterKey(code string) string {
	return fmt.Sprintf("room:%s:roster", code)
}

func (s *RedisStore) playerKey(code, playerID string) string {
	return fmt.Sprintf("room:%s:p:%s", code, playerID)
}

func (s *RedisStore) lbKey(code string) string {
	return fmt.Sprintf("room:%s:lb", code)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getJSON[T any](ctx context.Context, c stringGetter, key string) (*T, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func txErr(err error) error {
	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrStoreConflict
	}
	return err
}

func (s *RedisStore) checkRoom(ctx context.Context, tx *redis.Tx, room *model.Room) error {
	cur, err := getJSON[model.Room](ctx, tx, s.roomKey(room.Code))
	if err != nil {
		return err
	}
	if cur == nil {
		return model.ErrRoomNotFound
	}
	if cur.Version != room.Version {
		return model.ErrStoreConflict
	}
	return nil
}

func (s *RedisStore) checkPlayer(ctx context.Context, tx *redis.Tx, code string, p *model.Player) error {
	cur, err := getJSON[model.Player](ctx, tx, s.playerKey(code, p.ID))
	if err != nil {
		return err
	}
	if cur == nil {
		return fmt.Errorf("%w: %s", model.ErrPlayerNotFound, p.ID)
	}
	if cur.Version != p.Version {
		return model.ErrStoreConflict
	}
	return nil
}

func (s *RedisStore) CreateRoom(ctx context.Context, room *model.Room, host *model.Player, questions []model.Question) error {
	code := room.Code
	rk := s.roomKey(code)

	nextRoom := *room
	nextRoom.Version = 1
	nextHost := host.Clone()
	nextHost.Version = 1
	nextHost.Seq = 0

	roomData, err := json.Marshal(&nextRoom)
	if err != nil {
		return err
	}
	hostData, err := json.Marshal(nextHost)
	if err != nil {
		return err
	}
	qs := make([]interface{}, len(questions))
	for i := range questions {
		data, err := json.Marshal(&questions[i])
		if err != nil {
			return err
		}
		qs[i] = data
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, rk).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return model.ErrRoomCodeTaken
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rk, roomData, s.ttl)
			if len(qs) > 0 {
				pipe.RPush(ctx, s.questionsKey(code), qs...)
				pipe.Expire(ctx, s.questionsKey(code), s.ttl)
			}
			pipe.Set(ctx, s.playerKey(code, nextHost.ID), hostData, s.ttl)
			pipe.RPush(ctx, s.rosterKey(code), nextHost.ID)
			pipe.Expire(ctx, s.rosterKey(code), s.ttl)
			pipe.ZAdd(ctx, s.lbKey(code), redis.Z{Score: rankScore(nextHost), Member: nextHost.ID})
			pipe.Expire(ctx, s.lbKey(code), s.ttl)
			return nil
		})
		return err
	}, rk)
	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrRoomCodeTaken
	}
	if err != nil {
		return err
	}

	room.Version = nextRoom.Version
	host.Version = nextHost.Version
	host.Seq = nextHost.Seq
	return nil
}

func (s *RedisStore) GetRoom(ctx context.Context, code string) (*model.Room, error) {
	room, err := getJSON[model.Room](ctx, s.client, s.roomKey(code))
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

func (s *RedisStore) GetQuestion(ctx context.Context, code string, index int) (*model.Question, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: %s #%d", model.ErrQuestionNotFound, code, index)
	}
	data, err := s.client.LIndex(ctx, s.questionsKey(code), int64(index)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s #%d", model.ErrQuestionNotFound, code, index)
	}
	if err != nil {
		return nil, err
	}
	var q model.Question
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *RedisStore) GetPlayer(ctx context.Context, code, playerID string) (*model.Player, error) {
	p, err := getJSON[model.Player](ctx, s.client, s.playerKey(code, playerID))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, playerID)
	}
	return p, nil
}

func (s *RedisStore) ListPlayers(ctx context.Context, code string) ([]*model.Player, error) {
	ids, err := s.client.LRange(ctx, s.rosterKey(code), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return s.loadPlayers(ctx, code, ids)
}

func (s *RedisStore) Standings(ctx context.Context, code string, limit int) ([]*model.Player, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.client.ZRevRange(ctx, s.lbKey(code), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	return s.loadPlayers(ctx, code, ids)
}

func (s *RedisStore) loadPlayers(ctx context.Context, code string, ids []string) ([]*model.Player, error) {
	if len(ids) == 0 {
		return []*model.Player{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.playerKey(code, id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	players := make([]*model.Player, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var p model.Player
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			return nil, err
		}
		players = append(players, &p)
	}
	return players, nil
}

func (s *RedisStore) AddPlayer(ctx context.Context, room *model.Room, player *model.Player) error {
	code := room.Code
	rk, rosterKey, pk := s.roomKey(code), s.rosterKey(code), s.playerKey(code, player.ID)

	nextRoom := *room
	nextRoom.Version = room.Version + 1
	roomData, err := json.Marshal(&nextRoom)
	if err != nil {
		return err
	}
	next := player.Clone()
	next.Version = 1

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		if err := s.checkRoom(ctx, tx, room); err != nil {
			return err
		}
		exists, err := tx.Exists(ctx, pk).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return model.ErrStoreConflict
		}
		seq, err := tx.LLen(ctx, rosterKey).Result()
		if err != nil {
			return err
		}
		next.Seq = int(seq)
		data, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rk, roomData, redis.KeepTTL)
			pipe.Set(ctx, pk, data, s.ttl)
			pipe.RPush(ctx, rosterKey, next.ID)
			pipe.ZAdd(ctx, s.lbKey(code), redis.Z{Score: rankScore(next), Member: next.ID})
			return nil
		})
		return err
	}, rk, rosterKey, pk)
	if err := txErr(err); err != nil {
		return err
	}

	room.Version = nextRoom.Version
	player.Version = next.Version
	player.Seq = next.Seq
	return nil
}

func (s *RedisStore) SaveRoom(ctx context.Context, room *model.Room) error {
	rk := s.roomKey(room.Code)
	next := *room
	next.Version = room.Version + 1
	data, err := json.Marshal(&next)
	if err != nil {
		return err
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		if err := s.checkRoom(ctx, tx, room); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rk, data, redis.KeepTTL)
			return nil
		})
		return err
	}, rk)
	if err := txErr(err); err != nil {
		return err
	}
	room.Version = next.Version
	return nil
}

func (s *RedisStore) SavePlayer(ctx context.Context, room *model.Room, player *model.Player) error {
	rk, pk := s.roomKey(room.Code), s.playerKey(room.Code, player.ID)
	next := player.Clone()
	next.Version = player.Version + 1
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		if err := s.checkRoom(ctx, tx, room); err != nil {
			return err
		}
		if err := s.checkPlayer(ctx, tx, room.Code, player); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, pk, data, redis.KeepTTL)
			pipe.ZAdd(ctx, s.lbKey(room.Code), redis.Z{Score: rankScore(next), Member: next.ID})
			return nil
		})
		return err
	}, rk, pk)
	if err := txErr(err); err != nil {
		return err
	}
	player.Version = next.Version
	return nil
}

func (s *RedisStore) SaveRound(ctx context.Context, room *model.Room, players []*model.Player) error {
	code := room.Code
	keys := make([]string, 0, len(players)+1)
	keys = append(keys, s.roomKey(code))

	nextRoom := *room
	nextRoom.Version = room.Version + 1
	roomData, err := json.Marshal(&nextRoom)
	if err != nil {
		return err
	}
	payloads := make([][]byte, len(players))
	for i, p := range players {
		next := p.Clone()
		next.Version = p.Version + 1
		if payloads[i], err = json.Marshal(next); err != nil {
			return err
		}
		keys = append(keys, s.playerKey(code, p.ID))
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		if err := s.checkRoom(ctx, tx, room); err != nil {
			return err
		}
		for _, p := range players {
			if err := s.checkPlayer(ctx, tx, code, p); err != nil {
				return err
			}
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keys[0], roomData, redis.KeepTTL)
			for i, p := range players {
				pipe.Set(ctx, s.playerKey(code, p.ID), payloads[i], redis.KeepTTL)
			}
			return nil
		})
		return err
	}, keys...)
	if err := txErr(err); err != nil {
		return err
	}

	room.Version = nextRoom.Version
	for _, p := range players {
		p.Version++
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
