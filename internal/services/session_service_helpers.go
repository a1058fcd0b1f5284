package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/norsk-prova/quiz-session-service/internal/evaluator"
	"github.com/norsk-prova/quiz-session-service/internal/models"
)

func (s *sessionService) validateSet(questions []models.QuestionSpec) error {
	if len(questions) == 0 {
		return fmt.Errorf("question set is empty")
	}
	for i := range questions {
		if err := s.validator.Validate(&questions[i]); err != nil {
			return fmt.Errorf("question %d invalid: %w", i+1, err)
		}
	}
	return nil
}

// prepareQuestions normalizes a freshly fetched set in place: question and
// context text is HTML-entity decoded, and scalar-choice questions without
// a pre-built option list get their incorrect answers shuffled together
// with the correct one. Shuffling happens once at load so the review screen
// shows the same order the participant saw.
func (s *sessionService) prepareQuestions(questions []models.QuestionSpec) {
	for i := range questions {
		q := &questions[i]
		q.Question = html.UnescapeString(q.Question)
		q.Context = html.UnescapeString(q.Context)

		if q.Kind == models.KindScalarChoice && len(q.Options) == 0 {
			options := make([]string, 0, len(q.IncorrectAnswers)+1)
			for _, opt := range q.IncorrectAnswers {
				options = append(options, html.UnescapeString(opt))
			}
			options = append(options, html.UnescapeString(q.CorrectAnswer.Single))
			s.rng.Shuffle(len(options), func(a, b int) {
				options[a], options[b] = options[b], options[a]
			})
			q.Options = options
		}
		if q.CorrectAnswer.Multi == nil {
			q.CorrectAnswer.Single = html.UnescapeString(q.CorrectAnswer.Single)
		}
	}
}

// deriveMode picks the session mode from the set itself: listening sets
// (Lytting) carry audio and advance on the media-ended signal, everything
// else is self-paced reading.
func deriveMode(key string, questions []models.QuestionSpec) models.SessionMode {
	if strings.Contains(key, "Lytting") {
		return models.ModeListening
	}
	for _, q := range questions {
		if strings.Contains(q.Category, "Lytting") || q.Sound != "" {
			return models.ModeListening
		}
	}
	return models.ModeReading
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// buildReview re-derives per-question correctness from the persisted
// encoded values. Malformed or absent values render as "no answer".
func buildReview(state *models.SessionState) *ReviewResponse {
	reviews := make([]models.QuestionReview, 0, len(state.Questions))
	for i := range state.Questions {
		q := &state.Questions[i]
		identity := i + 1
		review := models.QuestionReview{
			Position: identity,
			Kind:     q.Kind,
			Question: q.Question,
		}
		if answer, ok := state.Answers[identity]; ok {
			res := evaluator.Evaluate(q, answer.EncodedValue)
			review.Answered = res.Answered
			review.Correct = res.Correct
			review.Fields = res.Fields
			if res.Answered {
				review.EncodedValue = answer.EncodedValue
			}
		}
		reviews = append(reviews, review)
	}
	return &ReviewResponse{
		Summary:   scoreSummary(state),
		Questions: reviews,
	}
}

// scoreSummary computes the final-score block: floor percentage with the
// 60/30 band split, and the next-level gate at 60 percent.
func scoreSummary(state *models.SessionState) models.ScoreSummary {
	summary := models.ScoreSummary{
		Correct:   state.CorrectCount,
		Incorrect: state.IncorrectCount,
		Submitted: state.CorrectCount + state.IncorrectCount,
		Total:     len(state.Questions),
	}
	if summary.Total > 0 {
		summary.Percentage = state.CorrectCount * 100 / summary.Total
	}
	switch {
	case summary.Percentage >= 60:
		summary.Band = models.BandPass
		summary.AdvanceUnlocked = true
	case summary.Percentage >= 30:
		summary.Band = models.BandRetry
	default:
		summary.Band = models.BandFailed
	}
	return summary
}
