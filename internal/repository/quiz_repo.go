package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"triviarooms/internal/model"
)

// QuizRepo handles MongoDB operations for the quiz bank
type QuizRepo interface {
	Create(ctx context.Context, quiz *model.Quiz) (string, error)
	GetByID(ctx context.Context, id string) (*model.Quiz, error)
	List(ctx context.Context, category string, limit int64) ([]*model.Quiz, error)
	Delete(ctx context.Context, id string) error
}

type quizRepo struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewQuizRepo creates a new quiz repository
func NewQuizRepo(db *mongo.Database) QuizRepo {
	return &quizRepo{
		collection: db.Collection("quizzes"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *quizRepo) Create(ctx context.Context, quiz *model.Quiz) (string, error) {
	if quiz.ID == "" {
		quiz.ID = primitive.NewObjectID().Hex()
	}
	quiz.CreatedAt = r.now()
	quiz.UpdatedAt = quiz.CreatedAt
	for i := range quiz.Questions {
		quiz.Questions[i].Index = i
	}

	if _, err := r.collection.InsertOne(ctx, quiz); err != nil {
		return "", fmt.Errorf("insert quiz: %w", err)
	}
	return quiz.ID, nil
}

func (r *quizRepo) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrQuizNotFound, id)
	}

	var quiz model.Quiz
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&quiz)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("%w: %s", model.ErrQuizNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// List returns quizzes newest first, optionally filtered by category.
func (r *quizRepo) List(ctx context.Context, category string, limit int64) ([]*model.Quiz, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	quizzes := []*model.Quiz{}
	if err := cursor.All(ctx, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *quizRepo) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", model.ErrQuizNotFound, id)
	}
	return nil
}
