package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/norsk-prova/quiz-session-service/internal/models"
	"github.com/norsk-prova/quiz-session-service/internal/repositories"
)

// sessionRepository persists the serialized session state under a single
// fixed key, the server-side analog of the browser's localStorage entry.
type sessionRepository struct {
	client *redis.Client
	key    string
}

func NewSessionRepository(client *redis.Client, key string) repositories.SessionRepository {
	return &sessionRepository{
		client: client,
		key:    key,
	}
}

func (r *sessionRepository) Save(ctx context.Context, state *models.SessionState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	if err := r.client.Set(ctx, r.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to persist session state: %w", err)
	}
	return nil
}

func (r *sessionRepository) Load(ctx context.Context) (*models.SessionState, error) {
	payload, err := r.client.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session state: %w", err)
	}
	state := models.NewSessionState()
	if err := json.Unmarshal(payload, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return state, nil
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session state: %w", err)
	}
	return nil
}
