package events

import "time"

type EventType string

const (
	// Emitted by the session core.
	EventAnswerRecorded  EventType = "session.answer_recorded"
	EventSessionFinished EventType = "session.finished"
	EventTimeExpired     EventType = "session.time_expired"

	// Emitted by the audio-playback collaborator in listening mode; the
	// navigation controller consumes it to drive advancement.
	EventMediaEnded EventType = "playback.media_ended"
)

const (
	EventSource  = "quiz-session-service"
	EventVersion = "1.0"
)

// SessionEvent is the envelope for every event on the in-process bus.
type SessionEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	SetKey   string `json:"set_key,omitempty"`
	Position int    `json:"position,omitempty"`
	Identity int    `json:"identity,omitempty"`
	Correct  *bool  `json:"correct,omitempty"`
}
