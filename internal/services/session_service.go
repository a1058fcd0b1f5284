package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/norsk-prova/quiz-session-service/internal/models"
	"github.com/norsk-prova/quiz-session-service/internal/repositories"
	"github.com/norsk-prova/quiz-session-service/internal/source"
	"github.com/norsk-prova/quiz-session-service/internal/utils"
)

// ReviewResponse is the review screen payload: the final score block plus
// per-question correctness re-derived from the persisted encoded values.
type ReviewResponse struct {
	Summary   models.ScoreSummary     `json:"summary"`
	Questions []models.QuestionReview `json:"questions"`
}

// SessionService owns the mutable session aggregate: the loaded question
// set, recorded answers, position, tallies and deadline. Every mutation is
// written through to the durable repository before it returns.
type SessionService interface {
	// LoadSet fetches and replaces the loaded question set, atomically
	// resetting answers, tallies and position. On failure the previous
	// state is retained and the error is kept readable via LoadErr.
	LoadSet(ctx context.Context, key string, mode models.SessionMode) (*models.SessionState, error)

	// Resume restores persisted state from durable storage, if any.
	Resume(ctx context.Context) (*models.SessionState, error)

	// Snapshot returns a copy of the current state for read-only use.
	Snapshot() models.SessionState
	// LoadErr reports the most recent set-load failure, nil when the last
	// load succeeded.
	LoadErr() error
	// Current returns the question at the current position and its
	// recorded answer, if any.
	Current() (*models.QuestionSpec, *models.RecordedAnswer, error)
	// AnsweredMap reports, per position, whether an answer is recorded.
	AnsweredMap() []bool

	// RecordAnswer upserts the answer for an identity; last write wins.
	RecordAnswer(ctx context.Context, identity int, encoded string) error
	// ScoreOnce increments exactly one tally for an identity, at most once
	// per attempt. It reports whether this call counted.
	ScoreOnce(ctx context.Context, identity int, correct bool) (bool, error)
	MarkCorrect(ctx context.Context) error
	MarkIncorrect(ctx context.Context) error

	// Advance, Retreat and SetPosition move the position, clamped to
	// [1, len]; out-of-range requests are silent no-ops, not errors.
	Advance(ctx context.Context) (int, error)
	Retreat(ctx context.Context) (int, error)
	SetPosition(ctx context.Context, position int) (int, error)

	// Finish transitions the session to its terminal state and disarms the
	// deadline. It reports false when the session was already finished.
	Finish(ctx context.Context) (bool, error)
	Reset(ctx context.Context) error
	SetDeadline(ctx context.Context, deadline time.Time) error

	Review() (*ReviewResponse, error)
}

type sessionService struct {
	repo      repositories.SessionRepository
	src       source.QuestionSource
	logger    *slog.Logger
	validator *utils.Validator
	rng       *rand.Rand

	mu      sync.Mutex
	state   *models.SessionState
	loadErr error
}

func NewSessionService(
	repo repositories.SessionRepository,
	src source.QuestionSource,
	logger *slog.Logger,
	validator *utils.Validator,
) SessionService {
	return &sessionService{
		repo:      repo,
		src:       src,
		logger:    logger,
		validator: validator,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		state:     models.NewSessionState(),
	}
}

// ===== LIFECYCLE =====

func (s *sessionService) LoadSet(ctx context.Context, key string, mode models.SessionMode) (*models.SessionState, error) {
	s.logger.Info("Loading question set", "key", key, "mode", mode)

	questions, err := s.src.Fetch(ctx, key)
	if err != nil {
		loadErr := NewLoadError(key, err)
		s.mu.Lock()
		s.loadErr = loadErr
		s.mu.Unlock()
		s.logger.Error("Failed to load question set", "key", key, "error", err)
		return nil, loadErr
	}

	if err := s.validateSet(questions); err != nil {
		loadErr := NewLoadError(key, err)
		s.mu.Lock()
		s.loadErr = loadErr
		s.mu.Unlock()
		s.logger.Error("Question set failed validation", "key", key, "error", err)
		return nil, loadErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prepareQuestions(questions)
	if mode == "" {
		mode = deriveMode(key, questions)
	}

	// The whole attempt resets as one indivisible step: stale answers from
	// a previous set must never leak into the new set's tallies.
	state := models.NewSessionState()
	state.SetKey = key
	state.Mode = mode
	state.Phase = models.PhaseInProgress
	state.Questions = questions
	s.state = state
	s.loadErr = nil

	if err := s.persist(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("Question set loaded",
		"key", key,
		"mode", mode,
		"questions_count", len(questions))

	snapshot := s.state.Clone()
	return &snapshot, nil
}

func (s *sessionService) Resume(ctx context.Context) (*models.SessionState, error) {
	state, err := s.repo.Load(ctx)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resume session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if state.Answers == nil {
		state.Answers = make(map[int]models.RecordedAnswer)
	}
	if state.Scored == nil {
		state.Scored = make(map[int]bool)
	}
	s.state = state

	s.logger.Info("Resumed persisted session",
		"key", state.SetKey,
		"position", state.Position,
		"answers_count", len(state.Answers))

	snapshot := state.Clone()
	return &snapshot, nil
}

func (s *sessionService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = models.NewSessionState()
	s.loadErr = nil

	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	s.logger.Info("Session reset")
	return nil
}

// ===== READS =====

func (s *sessionService) Snapshot() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Deep copy: the caller reads outside the lock while mutations keep
	// writing the live maps.
	return s.state.Clone()
}

func (s *sessionService) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

func (s *sessionService) Current() (*models.QuestionSpec, *models.RecordedAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Loaded() {
		return nil, nil, ErrSetNotLoaded
	}
	question := s.state.QuestionAt(s.state.Position)
	if answer, ok := s.state.AnswerFor(s.state.Position); ok {
		return question, &answer, nil
	}
	return question, nil, nil
}

func (s *sessionService) AnsweredMap() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	answered := make([]bool, len(s.state.Questions))
	for i := range answered {
		_, answered[i] = s.state.Answers[i+1]
	}
	return answered
}

// ===== ANSWER RECORDING & TALLIES =====

func (s *sessionService) RecordAnswer(ctx context.Context, identity int, encoded string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Answers[identity] = models.RecordedAnswer{
		QuestionIdentity: identity,
		EncodedValue:     encoded,
	}
	return s.persist(ctx)
}

func (s *sessionService) ScoreOnce(ctx context.Context, identity int, correct bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Scored[identity] {
		return false, nil
	}
	s.state.Scored[identity] = true
	if correct {
		s.state.CorrectCount++
	} else {
		s.state.IncorrectCount++
	}
	if err := s.persist(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *sessionService) MarkCorrect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CorrectCount++
	return s.persist(ctx)
}

func (s *sessionService) MarkIncorrect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IncorrectCount++
	return s.persist(ctx)
}

// ===== NAVIGATION =====

func (s *sessionService) Advance(ctx context.Context) (int, error) {
	return s.moveTo(ctx, func(p int) int { return p + 1 })
}

func (s *sessionService) Retreat(ctx context.Context) (int, error) {
	return s.moveTo(ctx, func(p int) int { return p - 1 })
}

func (s *sessionService) SetPosition(ctx context.Context, position int) (int, error) {
	return s.moveTo(ctx, func(int) int { return position })
}

func (s *sessionService) moveTo(ctx context.Context, next func(int) int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Loaded() {
		return 0, ErrSetNotLoaded
	}
	target := clamp(next(s.state.Position), 1, len(s.state.Questions))
	if target == s.state.Position {
		// Boundary no-op: nothing changed, nothing to persist.
		return target, nil
	}
	s.state.Position = target
	if err := s.persist(ctx); err != nil {
		return 0, err
	}
	return target, nil
}

// ===== TERMINAL STATE & DEADLINE =====

func (s *sessionService) Finish(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Finished() {
		return false, nil
	}
	s.state.Phase = models.PhaseFinished
	s.state.Deadline = 0
	if err := s.persist(ctx); err != nil {
		return false, err
	}
	s.logger.Info("Session finished",
		"key", s.state.SetKey,
		"correct", s.state.CorrectCount,
		"incorrect", s.state.IncorrectCount)
	return true, nil
}

func (s *sessionService) SetDeadline(ctx context.Context, deadline time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deadline.IsZero() {
		s.state.Deadline = 0
	} else {
		s.state.Deadline = deadline.UnixMilli()
	}
	return s.persist(ctx)
}

// ===== REVIEW =====

func (s *sessionService) Review() (*ReviewResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Loaded() {
		return nil, ErrSetNotLoaded
	}
	return buildReview(s.state), nil
}

// persist writes the state through to durable storage. Callers hold s.mu.
func (s *sessionService) persist(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.state); err != nil {
		s.logger.Error("Failed to persist session state", "error", err)
		return fmt.Errorf("failed to persist session state: %w", err)
	}
	return nil
}
