// Package source fetches question sets by key. A key composes difficulty,
// category and set number (e.g. "A1-Lytting-Sett-2") and resolves to a JSON
// file holding an ordered array of questions.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/norsk-prova/quiz-session-service/internal/models"
)

// QuestionSource resolves a set key to its ordered question sequence.
// Absence of the expected array shape is a load error.
type QuestionSource interface {
	Fetch(ctx context.Context, key string) ([]models.QuestionSpec, error)
}

func decodeSet(key string, payload []byte) ([]models.QuestionSpec, error) {
	trimmed := strings.TrimSpace(string(payload))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("set %q payload is not an array", key)
	}
	var questions []models.QuestionSpec
	if err := json.Unmarshal(payload, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode set %q: %w", key, err)
	}
	return questions, nil
}

// HTTPSource fetches `{baseURL}/{key}.json`, the same shape the original
// static hosting serves.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, key string) ([]models.QuestionSpec, error) {
	url := s.baseURL + "/" + key + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for set %q: %w", key, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch set %q: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch set %q: status %d", key, resp.StatusCode)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read set %q: %w", key, err)
	}
	return decodeSet(key, payload)
}

// FileSource reads `{dir}/{key}.json` from a local directory.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) Fetch(ctx context.Context, key string) ([]models.QuestionSpec, error) {
	// Keys are caller-supplied; keep them inside the set directory.
	name := filepath.Base(key) + ".json"
	payload, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read set %q: %w", key, err)
	}
	return decodeSet(key, payload)
}
