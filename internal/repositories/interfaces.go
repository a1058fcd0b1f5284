package repositories

import (
	"context"
	"errors"

	"github.com/norsk-prova/quiz-session-service/internal/models"
)

// ErrNotFound is returned by Load when no session state has been persisted
// under the session name.
var ErrNotFound = errors.New("session state not found")

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// SessionRepository is the durable key-value persistence layer for session
// state, keyed by a fixed session name. Every mutating session operation
// writes through here, so a reload mid-quiz resumes from the last recorded
// answer.
type SessionRepository interface {
	Save(ctx context.Context, state *models.SessionState) error
	Load(ctx context.Context) (*models.SessionState, error)
	Clear(ctx context.Context) error
}
