package services

import (
	"errors"
	"fmt"

	"github.com/norsk-prova/quiz-session-service/internal/codec"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Session store errors
	ErrSetNotLoaded    = errors.New("question set not loaded")
	ErrSessionFinished = errors.New("session already reached its terminal state")

	// Navigation errors
	ErrFieldsIncomplete = errors.New("multi-field answer has empty sub-fields")
	ErrUnknownQuestion  = errors.New("question identity outside the loaded set")

	// Countdown errors
	ErrCountdownRunning = errors.New("countdown already running")
)

// LoadError marks a failed question-set fetch or a malformed payload. It is
// recoverable: the previous loaded set stays intact and the caller can retry.
type LoadError struct {
	Key string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load question set %q: %v", e.Key, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func NewLoadError(key string, err error) *LoadError {
	return &LoadError{Key: key, Err: err}
}

// ===== ERROR HELPERS =====

// IsLoadError checks if error represents a recoverable set-load failure.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// IsDecodeError checks if error represents a malformed encoded answer.
// Decode errors are swallowed into "no answer" by callers, never fatal.
func IsDecodeError(err error) bool {
	return errors.Is(err, codec.ErrMalformed)
}

// IsTerminal checks if error represents an operation against a finished
// session.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrSessionFinished)
}
