package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/norsk-prova/quiz-session-service/internal/models"
	"github.com/norsk-prova/quiz-session-service/internal/repositories"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_state (
	name       TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// sessionRepository is the embedded durable storage for deployments without
// Redis: one row per session name in a local SQLite file.
type sessionRepository struct {
	db   *sql.DB
	name string
}

func NewSessionRepository(db *sql.DB, name string) (repositories.SessionRepository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create session_state table: %w", err)
	}
	return &sessionRepository{db: db, name: name}, nil
}

func (r *sessionRepository) Save(ctx context.Context, state *models.SessionState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO session_state (name, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		r.name, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to persist session state: %w", err)
	}
	return nil
}

func (r *sessionRepository) Load(ctx context.Context) (*models.SessionState, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM session_state WHERE name = ?`, r.name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
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
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM session_state WHERE name = ?`, r.name); err != nil {
		return fmt.Errorf("failed to clear session state: %w", err)
	}
	return nil
}
