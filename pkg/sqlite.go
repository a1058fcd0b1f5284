package pkg

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/norsk-prova/quiz-session-service/internal/config"
)

func NewSQLiteDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Single writer; the session store serializes mutations anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite connection failed: %w", err)
	}

	return db, nil
}
