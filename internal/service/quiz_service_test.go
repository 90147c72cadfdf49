package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triviarooms/internal/model"
)

func TestQuizService(t *testing.T) {
	ctx := context.Background()
	repo := &fakeQuizRepo{quizzes: map[string]*model.Quiz{}}
	svc := NewQuizService(repo)

	id, err := svc.Create(ctx, "curator_1", &model.Quiz{Title: "Rivers", Questions: questions(2)})
	require.NoError(t, err)

	quiz, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "curator_1", quiz.AuthorID)

	_, err = svc.Create(ctx, "curator_1", &model.Quiz{Title: "Broken", Questions: []model.Question{
		{Text: "q", Options: []string{"a", "b"}, CorrectAnswer: 5},
	}})
	assert.ErrorIs(t, err, model.ErrValidation)

	list, err := svc.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	disabled := NewQuizService(nil)
	_, err = disabled.List(ctx, "", 0)
	assert.ErrorIs(t, err, ErrQuizBankUnavailable)
	_, err = disabled.Create(ctx, "c", &model.Quiz{})
	assert.ErrorIs(t, err, ErrQuizBankUnavailable)
}
