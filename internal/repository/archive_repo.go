package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"triviarooms/internal/model"
)

// ArchiveRepo keeps a durable copy of rooms and their final standings.
// Live game state never reads from it.
type ArchiveRepo interface {
	SaveRoom(ctx context.Context, record *model.RoomRecord) error
	GetRoom(ctx context.Context, code string) (*model.RoomRecord, error)
	SaveResult(ctx context.Context, result *model.GameResult) error
	GetResult(ctx context.Context, code string) (*model.GameResult, error)
}

type archiveRepo struct {
	rooms   *mongo.Collection
	results *mongo.Collection
}

// NewArchiveRepo creates a new archive repository
func NewArchiveRepo(db *mongo.Database) ArchiveRepo {
	return &archiveRepo{
		rooms:   db.Collection("rooms"),
		results: db.Collection("results"),
	}
}

func (r *archiveRepo) SaveRoom(ctx context.Context, record *model.RoomRecord) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.rooms.ReplaceOne(ctx, bson.M{"room.code": record.Room.Code}, record, opts)
	return err
}

func (r *archiveRepo) GetRoom(ctx context.Context, code string) (*model.RoomRecord, error) {
	var record model.RoomRecord
	err := r.rooms.FindOne(ctx, bson.M{"room.code": code}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, model.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *archiveRepo) SaveResult(ctx context.Context, result *model.GameResult) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.results.ReplaceOne(ctx, bson.M{"roomCode": result.RoomCode}, result, opts)
	return err
}

func (r *archiveRepo) GetResult(ctx context.Context, code string) (*model.GameResult, error) {
	var result model.GameResult
	err := r.results.FindOne(ctx, bson.M{"roomCode": code}).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, model.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
