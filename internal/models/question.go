package models

import (
	"encoding/json"
	"fmt"
)

type QuestionKind string

// Wire names match the question-set JSON files.
const (
	KindScalarChoice    QuestionKind = "multiple"
	KindImageChoice     QuestionKind = "image"
	KindWordInText      QuestionKind = "word-selection"
	KindParagraphChoice QuestionKind = "paragraph-selection"
	KindFillInBlanks    QuestionKind = "sentence-dropdown"
	KindRegionClick     QuestionKind = "image-click"
	KindMultiDropdown   QuestionKind = "multi_dropdown"
	KindDualDropdown    QuestionKind = "dual_dropdown"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// AnswerKey holds a ground-truth answer that is either a single string or an
// ordered list of strings in the set JSON, depending on the question kind.
type AnswerKey struct {
	Single string
	Multi  []string
}

func (k *AnswerKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		k.Single = s
		k.Multi = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		k.Single = ""
		k.Multi = list
		return nil
	}
	return fmt.Errorf("answer key must be a string or a list of strings: %s", string(data))
}

func (k AnswerKey) MarshalJSON() ([]byte, error) {
	if k.Multi != nil {
		return json.Marshal(k.Multi)
	}
	return json.Marshal(k.Single)
}

func (k AnswerKey) IsList() bool {
	return k.Multi != nil
}

// Region is a circular target on an image, in the image's native resolution.
type Region struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius" validate:"omitempty,min=0"`
}

// SubQuestion is one labelled row of a multi-field dropdown question. Single
// dropdown rows carry CorrectAnswer; dual dropdown grid rows carry a pair in
// CorrectAnswers.
type SubQuestion struct {
	Label          string   `json:"label"`
	CorrectAnswer  string   `json:"correct_answer,omitempty"`
	CorrectAnswers []string `json:"correct_answers,omitempty"`
}

// QuestionSpec is one question as loaded from a question-set file. It is
// immutable for the lifetime of an attempt; its identity within a session is
// its 1-based ordinal position in the loaded set, never its text.
type QuestionSpec struct {
	Kind       QuestionKind    `json:"type" validate:"required,question_kind"`
	Category   string          `json:"category,omitempty"`
	Difficulty DifficultyLevel `json:"difficulty,omitempty" validate:"omitempty,difficulty_level"`

	Context  string `json:"context,omitempty"`
	Question string `json:"question" validate:"required"`

	CorrectAnswer    AnswerKey `json:"correct_answer"`
	IncorrectAnswers []string  `json:"incorrect_answers,omitempty"`
	Options          []string  `json:"options,omitempty"`

	Sentence   string   `json:"sentence,omitempty"`
	Paragraphs []string `json:"paragraphs,omitempty"`

	SentenceParts   []string   `json:"sentenceParts,omitempty"`
	DropdownOptions [][]string `json:"dropdownOptions,omitempty"`

	SubQuestions []SubQuestion `json:"subQuestions,omitempty"`
	Questions    []string      `json:"questions,omitempty"`
	OptionSets   [][]string    `json:"optionSets,omitempty"`

	Image       string  `json:"image,omitempty"`
	CorrectArea *Region `json:"correctArea,omitempty"`
	Sound       string  `json:"sound,omitempty"`
}

// FieldCount is the number of independently answerable sub-parts.
func (q *QuestionSpec) FieldCount() int {
	switch q.Kind {
	case KindFillInBlanks:
		if len(q.DropdownOptions) > 0 {
			return len(q.DropdownOptions)
		}
		return len(q.CorrectAnswer.Multi)
	case KindMultiDropdown:
		return len(q.SubQuestions)
	case KindDualDropdown:
		return 2 * len(q.SubQuestions)
	default:
		return 1
	}
}

func (q *QuestionSpec) IsMultiField() bool {
	switch q.Kind {
	case KindFillInBlanks, KindMultiDropdown, KindDualDropdown:
		return true
	}
	return false
}

// GroundTruth flattens the expected answer into one string per sub-field.
// Dual dropdown grids map row i to flat indices 2i and 2i+1, so flat index
// f corresponds to row f/2 and column f%2. Region-click questions have no
// string ground truth; their geometry lives in CorrectArea.
func (q *QuestionSpec) GroundTruth() []string {
	switch q.Kind {
	case KindFillInBlanks:
		return q.CorrectAnswer.Multi
	case KindMultiDropdown:
		truth := make([]string, len(q.SubQuestions))
		for i, sub := range q.SubQuestions {
			truth[i] = sub.CorrectAnswer
		}
		return truth
	case KindDualDropdown:
		truth := make([]string, 0, 2*len(q.SubQuestions))
		for _, sub := range q.SubQuestions {
			pair := sub.CorrectAnswers
			for col := 0; col < 2; col++ {
				if col < len(pair) {
					truth = append(truth, pair[col])
				} else {
					truth = append(truth, "")
				}
			}
		}
		return truth
	case KindRegionClick:
		return nil
	default:
		return []string{q.CorrectAnswer.Single}
	}
}
