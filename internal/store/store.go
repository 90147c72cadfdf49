// Package store keeps the shared room state. It is the only lock boundary
// between concurrent requests: every write is conditional on the version the
// caller read, and a lost race surfaces as model.ErrStoreConflict.
package store

import (
	"context"

	"triviarooms/internal/model"
)

// RoomStore is implemented by RedisStore and MemoryStore.
//
// Reads return copies. Successful writes bump Version on the records passed
// in, so a caller can chain writes without re-reading.
type RoomStore interface {
	// CreateRoom persists a new room with its host and questions.
	// It fails with model.ErrRoomCodeTaken if the code is in use.
	CreateRoom(ctx context.Context, room *model.Room, host *model.Player, questions []model.Question) error
	GetRoom(ctx context.Context, code string) (*model.Room, error)
	GetQuestion(ctx context.Context, code string, index int) (*model.Question, error)
	// ListPlayers returns the roster in join order.
	ListPlayers(ctx context.Context, code string) ([]*model.Player, error)
	GetPlayer(ctx context.Context, code, playerID string) (*model.Player, error)
	// Standings returns players by score descending, ties in join order.
	// limit <= 0 means all.
	Standings(ctx context.Context, code string, limit int) ([]*model.Player, error)

	// AddPlayer appends player to the roster if room is unchanged. It assigns
	// Seq and bumps the room version.
	AddPlayer(ctx context.Context, room *model.Room, player *model.Player) error
	// SaveRoom writes room if its version is unchanged.
	SaveRoom(ctx context.Context, room *model.Room) error
	// SavePlayer writes player if neither it nor room changed since read.
	SavePlayer(ctx context.Context, room *model.Room, player *model.Player) error
	// SaveRound writes room and all players together if none changed.
	SaveRound(ctx context.Context, room *model.Room, players []*model.Player) error
}

// seqSpan bounds players per room for the standings sort key.
const seqSpan = 1 << 16

// rankScore orders by score then earlier join first when sorted descending.
func rankScore(p *model.Player) float64 {
	return float64(p.Score)*seqSpan + float64(seqSpan-1-p.Seq)
}
