package models

import "time"

type SessionMode string

const (
	// ModeReading is self-paced: every answer event advances immediately.
	ModeReading SessionMode = "reading"
	// ModeListening is timed: advancement waits for the media-ended signal
	// or an explicit manual navigation.
	ModeListening SessionMode = "listening"
)

type SessionPhase string

const (
	PhaseIdle       SessionPhase = "idle"
	PhaseInProgress SessionPhase = "in_progress"
	PhaseFinished   SessionPhase = "finished"
)

// SessionState is the single mutable aggregate for one attempt. It is
// serialized as-is to durable storage after every mutation so a reload
// resumes the same attempt.
type SessionState struct {
	SetKey string       `json:"set_key"`
	Mode   SessionMode  `json:"mode"`
	Phase  SessionPhase `json:"phase"`

	Questions []QuestionSpec `json:"questions"`

	// Answers and Scored are keyed by question identity (ordinal position).
	Answers map[int]RecordedAnswer `json:"answers"`
	Scored  map[int]bool           `json:"scored"`

	// Position is 1-based; 1 <= Position <= len(Questions) once loaded.
	Position int `json:"position"`

	CorrectCount   int `json:"correct_count"`
	IncorrectCount int `json:"incorrect_count"`

	// Deadline is unix milliseconds; zero means the countdown is unarmed.
	Deadline int64 `json:"deadline"`
}

func NewSessionState() *SessionState {
	return &SessionState{
		Phase:    PhaseIdle,
		Answers:  make(map[int]RecordedAnswer),
		Scored:   make(map[int]bool),
		Position: 1,
	}
}

// The read helpers take value receivers so they can be called directly on
// snapshot copies.

func (s SessionState) Loaded() bool {
	return len(s.Questions) > 0
}

func (s SessionState) Finished() bool {
	return s.Phase == PhaseFinished
}

// QuestionAt returns the question with the given identity, or nil when the
// identity does not reference the loaded set.
func (s SessionState) QuestionAt(identity int) *QuestionSpec {
	if identity < 1 || identity > len(s.Questions) {
		return nil
	}
	return &s.Questions[identity-1]
}

func (s SessionState) AnswerFor(identity int) (RecordedAnswer, bool) {
	a, ok := s.Answers[identity]
	return a, ok
}

func (s SessionState) DeadlineTime() time.Time {
	if s.Deadline == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.Deadline)
}

// Clone returns a copy safe to read outside the owning service's lock. The
// answer and scored maps are copied; the question slice is shared since
// questions are immutable once loaded.
func (s SessionState) Clone() SessionState {
	c := s
	c.Answers = make(map[int]RecordedAnswer, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v
	}
	c.Scored = make(map[int]bool, len(s.Scored))
	for k, v := range s.Scored {
		c.Scored[k] = v
	}
	return c
}
