// Package evaluator decides answer correctness. The same evaluation path is
// used at submission time and when re-deriving the review screen from
// persisted encoded values, so the two always agree.
package evaluator

import (
	"math"
	"strings"

	"github.com/norsk-prova/quiz-session-service/internal/codec"
	"github.com/norsk-prova/quiz-session-service/internal/models"
)

// Normalize trims leading/trailing whitespace and collapses internal runs of
// whitespace to a single space. Ground-truth strings in the set files are
// not guaranteed pre-trimmed, so both sides of every comparison go through
// this.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func equalNormalized(submitted, truth string) bool {
	return Normalize(submitted) == Normalize(truth)
}

// Result is the outcome of evaluating one persisted encoded value against
// its question. Answered is false when the value is absent or malformed;
// such answers count as unanswered, never as an error.
type Result struct {
	Answered bool
	Correct  bool
	Fields   []models.FieldResult
}

// Evaluate re-derives correctness for a question from its persisted encoded
// value. For region-click questions the persisted tag is read back as
// authoritative; geometry is never recomputed against a re-render.
func Evaluate(q *models.QuestionSpec, encoded string) Result {
	if encoded == "" {
		return Result{}
	}

	switch q.Kind {
	case models.KindRegionClick:
		click, err := codec.DecodeRegionClick(encoded)
		if err != nil {
			return Result{}
		}
		return Result{Answered: true, Correct: click.Correct}

	case models.KindFillInBlanks, models.KindMultiDropdown, models.KindDualDropdown:
		truth := q.GroundTruth()
		fields, err := codec.DecodeFields(encoded, q.FieldCount())
		if err != nil {
			return Result{}
		}
		return evaluateFields(fields, truth)

	default:
		submitted := codec.DecodeScalar(encoded)
		correct := equalNormalized(submitted, q.CorrectAnswer.Single)
		return Result{
			Answered: true,
			Correct:  correct,
			Fields: []models.FieldResult{{
				Submitted: submitted,
				Expected:  q.CorrectAnswer.Single,
				Correct:   correct,
			}},
		}
	}
}

// evaluateFields compares a dense submitted vector against the flattened
// ground truth. The question is fully correct only when every sub-field
// matches; there is no partial credit at the question level.
func evaluateFields(submitted, truth []string) Result {
	res := Result{Answered: true, Correct: true}
	for i := range truth {
		value := ""
		if i < len(submitted) {
			value = submitted[i]
		}
		ok := equalNormalized(value, truth[i])
		if !ok {
			res.Correct = false
		}
		res.Fields = append(res.Fields, models.FieldResult{
			Index:     i,
			Submitted: value,
			Expected:  truth[i],
			Correct:   ok,
		})
	}
	return res
}

// Complete reports whether every sub-field of a multi-field answer is
// non-empty. Scalar and region-click kinds are complete once any value is
// recorded. Malformed values are never complete.
func Complete(q *models.QuestionSpec, encoded string) bool {
	if encoded == "" {
		return false
	}
	if !q.IsMultiField() {
		return true
	}
	fields, err := codec.DecodeFields(encoded, q.FieldCount())
	if err != nil {
		return false
	}
	for _, f := range fields {
		if f == "" {
			return false
		}
	}
	return true
}

// ScoreRegionClick decides a region-click answer at click time. The click
// point arrives in on-screen coordinates and is scaled to the image's native
// resolution before measuring Euclidean distance to the region's center.
// The boundary is inclusive: distance == radius is correct.
func ScoreRegionClick(clickX, clickY, displayW, displayH, nativeW, nativeH float64, region models.Region) (nativeX, nativeY float64, correct bool) {
	nativeX, nativeY = clickX, clickY
	if displayW > 0 && displayH > 0 && nativeW > 0 && nativeH > 0 {
		nativeX = clickX * nativeW / displayW
		nativeY = clickY * nativeH / displayH
	}
	distance := math.Hypot(nativeX-region.X, nativeY-region.Y)
	return nativeX, nativeY, distance <= region.Radius
}
