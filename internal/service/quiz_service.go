package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"triviarooms/internal/model"
	"triviarooms/internal/repository"
)

// ErrQuizBankUnavailable is returned when no quiz repository is configured.
var ErrQuizBankUnavailable = errors.New("quiz bank is not configured")

// QuizService handles quiz bank operations
type QuizService struct {
	quizRepo repository.QuizRepo
}

// NewQuizService creates a new quiz service. quizRepo may be nil.
func NewQuizService(quizRepo repository.QuizRepo) *QuizService {
	return &QuizService{quizRepo: quizRepo}
}

// Create stores a quiz authored by curatorID
func (s *QuizService) Create(ctx context.Context, curatorID string, quiz *model.Quiz) (string, error) {
	if s.quizRepo == nil {
		return "", ErrQuizBankUnavailable
	}
	for i := range quiz.Questions {
		if err := quiz.Questions[i].Check(); err != nil {
			return "", err
		}
	}
	quiz.ID = ""
	quiz.AuthorID = curatorID

	id, err := s.quizRepo.Create(ctx, quiz)
	if err != nil {
		return "", err
	}
	zap.L().Info("quiz created",
		zap.String("quiz", id),
		zap.String("curator", curatorID),
		zap.Int("questions", len(quiz.Questions)))
	return id, nil
}

// GetByID retrieves a quiz by ID
func (s *QuizService) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	if s.quizRepo == nil {
		return nil, ErrQuizBankUnavailable
	}
	return s.quizRepo.GetByID(ctx, id)
}

// List returns quizzes, optionally for one category
func (s *QuizService) List(ctx context.Context, category string, limit int64) ([]*model.Quiz, error) {
	if s.quizRepo == nil {
		return nil, ErrQuizBankUnavailable
	}
	return s.quizRepo.List(ctx, category, limit)
}
