package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"triviarooms/internal/model"
)

// withRetry runs op again with fresh state when it loses a conditional
// write, at most retries extra times. The last conflict is returned as is.
func withRetry(ctx context.Context, retries int, op func() error) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		err = op()
		if !errors.Is(err, model.ErrStoreConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

func newPlayerID() string {
	return "p_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
