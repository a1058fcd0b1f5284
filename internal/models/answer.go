package models

// RecordedAnswer is the packed answer for one question within an attempt.
// QuestionIdentity is the 1-based ordinal position of the question in the
// loaded set. A resubmission replaces the encoded value entirely.
type RecordedAnswer struct {
	QuestionIdentity int    `json:"question_identity"`
	EncodedValue     string `json:"encoded_value"`
}

// FieldResult is per-sub-field correctness for the review screen.
type FieldResult struct {
	Index     int    `json:"index"`
	Submitted string `json:"submitted"`
	Expected  string `json:"expected"`
	Correct   bool   `json:"correct"`
}

// QuestionReview is one question's entry on the review screen, re-derived
// from the persisted encoded value.
type QuestionReview struct {
	Position     int           `json:"position"`
	Kind         QuestionKind  `json:"kind"`
	Question     string        `json:"question"`
	Answered     bool          `json:"answered"`
	EncodedValue string        `json:"encoded_value,omitempty"`
	Correct      bool          `json:"correct"`
	Fields       []FieldResult `json:"fields,omitempty"`
}

type ScoreBand string

const (
	BandPass   ScoreBand = "pass"
	BandRetry  ScoreBand = "retry"
	BandFailed ScoreBand = "failed"
)

// ScoreSummary is the final-score block of the review screen. AdvanceUnlocked
// gates the "continue to next level" action at 60 percent.
type ScoreSummary struct {
	Percentage      int       `json:"percentage"`
	Band            ScoreBand `json:"band"`
	AdvanceUnlocked bool      `json:"advance_unlocked"`
	Correct         int       `json:"correct"`
	Incorrect       int       `json:"incorrect"`
	Submitted       int       `json:"submitted"`
	Total           int       `json:"total"`
}
