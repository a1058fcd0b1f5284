package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norsk-prova/quiz-session-service/internal/events"
	"github.com/norsk-prova/quiz-session-service/internal/models"
)

func newTestNavigation(t *testing.T, sets map[string][]models.QuestionSpec) (*NavigationController, SessionService, *events.MockEventPublisher) {
	t.Helper()
	session, _, _ := newTestSession(t, sets)
	publisher := events.NewMockEventPublisher(testLogger())
	nav := NewNavigationController(session, publisher, testLogger())
	return nav, session, publisher
}

func eventsOfType(publisher *events.MockEventPublisher, eventType events.EventType) []events.SessionEvent {
	matched := make([]events.SessionEvent, 0)
	for _, event := range publisher.GetPublishedEvents() {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func TestSelfPacedRunToCompletion(t *testing.T) {
	ctx := context.Background()
	nav, session, publisher := newTestNavigation(t, map[string][]models.QuestionSpec{
		"A1-Lesing-Sett-1": scalarSet(5),
	})
	_, err := session.LoadSet(ctx, "A1-Lesing-Sett-1", "")
	require.NoError(t, err)

	// First three correct, last two wrong.
	for i := 1; i <= 5; i++ {
		encoded := fmt.Sprintf("riktig-%d", i)
		if i > 3 {
			encoded = "feil-a"
		}
		state := session.Snapshot()
		require.Equal(t, i, state.Position)

		outcome, err := nav.SubmitAnswer(ctx, state.Position, encoded)
		require.NoError(t, err)
		assert.True(t, outcome.Scored)
		assert.Equal(t, i <= 3, outcome.Correct)
	}

	state := session.Snapshot()
	assert.True(t, state.Finished())
	assert.Equal(t, 3, state.CorrectCount)
	assert.Equal(t, 2, state.IncorrectCount)
	assert.Equal(t, 5, state.Position)

	assert.Len(t, eventsOfType(publisher, events.EventAnswerRecorded), 5)
	assert.Len(t, eventsOfType(publisher, events.EventSessionFinished), 1)

	// Further submissions against a finished session are rejected.
	_, err = nav.SubmitAnswer(ctx, 5, "riktig-5")
	assert.ErrorIs(t, err, ErrSessionFinished)
}

func TestMultiFieldScoresOnlyWhenComplete(t *testing.T) {
	ctx := context.Background()
	question := models.QuestionSpec{
		Kind:          models.KindFillInBlanks,
		Question:      "Fyll inn",
		CorrectAnswer: models.AnswerKey{Multi: []string{"a", "b", "c"}},
	}
	nav, session, _ := newTestNavigation(t, map[string][]models.QuestionSpec{
		"set": {question},
	})
	_, err := session.LoadSet(ctx, "set", "")
	require.NoError(t, err)

	outcome, err := nav.SubmitAnswer(ctx, 1, "0|a||1|b")
	require.NoError(t, err)
	assert.True(t, outcome.AwaitingFields)
	assert.False(t, outcome.Scored)
	assert.Equal(t, 0, session.Snapshot().CorrectCount)

	// Continue is gated on completeness too.
	_, err = nav.Continue(ctx)
	assert.ErrorIs(t, err, ErrFieldsIncomplete)

	outcome, err = nav.SubmitAnswer(ctx, 1, "0|a||1|b||2|c")
	require.NoError(t, err)
	assert.False(t, outcome.AwaitingFields)
	assert.True(t, outcome.Scored)
	assert.True(t, outcome.Correct)
	// Multi-field questions never auto-advance on the answer event itself.
	assert.False(t, outcome.Advanced)

	outcome, err = nav.Continue(ctx)
	require.NoError(t, err)
	assert.True(t, outcome.Finished)
	assert.Equal(t, 1, session.Snapshot().CorrectCount)
}

func TestReAnswerDoesNotDoubleCount(t *testing.T) {
	ctx := context.Background()
	question := models.QuestionSpec{
		Kind:          models.KindFillInBlanks,
		Question:      "Fyll inn",
		CorrectAnswer: models.AnswerKey{Multi: []string{"a", "b"}},
	}
	nav, session, _ := newTestNavigation(t, map[string][]models.QuestionSpec{
		"set": {question, scalarSet(1)[0]},
	})
	_, err := session.LoadSet(ctx, "set", "")
	require.NoError(t, err)

	outcome, err := nav.SubmitAnswer(ctx, 1, "0|a||1|b")
	require.NoError(t, err)
	assert.True(t, outcome.Scored)

	// Changing a field and re-completing must not add a second tally.
	outcome, err = nav.SubmitAnswer(ctx, 1, "0|x||1|b")
	require.NoError(t, err)
	assert.False(t, outcome.Scored)

	state := session.Snapshot()
	assert.Equal(t, 1, state.CorrectCount)
	assert.Equal(t, 0, state.IncorrectCount)
}

func TestConcurrentRecordAndContinue(t *testing.T) {
	ctx := context.Background()
	question := models.QuestionSpec{
		Kind:          models.KindFillInBlanks,
		Question:      "Fyll inn",
		CorrectAnswer: models.AnswerKey{Multi: []string{"a", "b", "c"}},
	}
	nav, session, _ := newTestNavigation(t, map[string][]models.QuestionSpec{
		"set": {question},
	})
	_, err := session.LoadSet(ctx, "set", "")
	require.NoError(t, err)

	// Field re-submissions racing the continue trigger must not touch the
	// live answer map concurrently. Run with -race.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			_ = session.RecordAnswer(ctx, 1, "0|a||1|b")
		}
	}()
	for i := 0; i < 200; i++ {
		// Incomplete fields keep this erroring; only the access pattern
		// matters here.
		_, _ = nav.Continue(ctx)
	}
	<-done

	assert.False(t, session.Snapshot().Finished())
}

func TestListeningModeWaitsForMediaEnded(t *testing.T) {
	ctx := context.Background()
	nav, session, _ := newTestNavigation(t, map[string][]models.QuestionSpec{
		"A1-Lytting-Sett-1": scalarSet(2),
	})
	_, err := session.LoadSet(ctx, "A1-Lytting-Sett-1", "")
	require.NoError(t, err)
	require.Equal(t, models.ModeListening, session.Snapshot().Mode)

	outcome, err := nav.SubmitAnswer(ctx, 1, "riktig-1")
	require.NoError(t, err)
	assert.True(t, outcome.Scored)
	// Answering in listening mode never moves the position.
	assert.False(t, outcome.Advanced)
	assert.Equal(t, 1, session.Snapshot().Position)

	require.NoError(t, nav.OnMediaEnded(ctx))
	assert.Equal(t, 2, session.Snapshot().Position)

	// The last media-ended finishes the session; a late duplicate is a no-op.
	require.NoError(t, nav.OnMediaEnded(ctx))
	assert.True(t, session.Snapshot().Finished())
	require.NoError(t, nav.OnMediaEnded(ctx))
	assert.True(t, session.Snapshot().Finished())
}

func TestRegionClickDecidedAtSubmitTime(t *testing.T) {
	ctx := context.Background()
	question := models.QuestionSpec{
		Kind:        models.KindRegionClick,
		Question:    "Pek på hunden",
		Image:       "dog.png",
		CorrectArea: &models.Region{X: 100, Y: 100, Radius: 50},
	}
	nav, session, _ := newTestNavigation(t, map[string][]models.QuestionSpec{
		"set": {question},
	})
	_, err := session.LoadSet(ctx, "set", "")
	require.NoError(t, err)

	outcome, err := nav.SubmitRegionClick(ctx, 1, RegionClickRequest{
		ClickX: 60, ClickY: 55,
		DisplayW: 400, DisplayH: 300,
		NativeW: 800, NativeH: 600,
	})
	require.NoError(t, err)
	assert.True(t, outcome.Scored)
	assert.True(t, outcome.Correct)

	// The persisted value carries native coordinates and the decided tag.
	state := session.Snapshot()
	assert.Equal(t, "120|110|correct", state.Answers[1].EncodedValue)

	review, err := session.Review()
	require.NoError(t, err)
	assert.True(t, review.Questions[0].Correct)
}

func TestRegionClickOnNonRegionQuestion(t *testing.T) {
	ctx := context.Background()
	nav, session, _ := newTestNavigation(t, map[string][]models.QuestionSpec{
		"set": scalarSet(1),
	})
	_, err := session.LoadSet(ctx, "set", "")
	require.NoError(t, err)

	_, err = nav.SubmitRegionClick(ctx, 1, RegionClickRequest{ClickX: 10, ClickY: 10})
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestUnknownIdentityRecordsWithoutScoring(t *testing.T) {
	ctx := context.Background()
	nav, session, _ := newTestNavigation(t, map[string][]models.QuestionSpec{
		"set": scalarSet(2),
	})
	_, err := session.LoadSet(ctx, "set", "")
	require.NoError(t, err)

	outcome, err := nav.SubmitAnswer(ctx, 9, "svar")
	require.NoError(t, err)
	assert.False(t, outcome.Scored)

	state := session.Snapshot()
	assert.Contains(t, state.Answers, 9)
	assert.Equal(t, 0, state.CorrectCount+state.IncorrectCount)
	assert.Equal(t, 1, state.Position)
}

func TestForceFinishPublishesOnce(t *testing.T) {
	ctx := context.Background()
	nav, session, publisher := newTestNavigation(t, map[string][]models.QuestionSpec{
		"set": scalarSet(2),
	})
	_, err := session.LoadSet(ctx, "set", "")
	require.NoError(t, err)

	require.NoError(t, nav.ForceFinish(ctx))
	require.NoError(t, nav.ForceFinish(ctx))

	assert.Len(t, eventsOfType(publisher, events.EventSessionFinished), 1)
	assert.True(t, session.Snapshot().Finished())
}

func TestManualNavigation(t *testing.T) {
	ctx := context.Background()
	nav, session, _ := newTestNavigation(t, map[string][]models.QuestionSpec{
		"set": scalarSet(3),
	})
	_, err := session.LoadSet(ctx, "set", "")
	require.NoError(t, err)

	outcome, err := nav.Next(ctx)
	require.NoError(t, err)
	assert.True(t, outcome.Advanced)
	assert.Equal(t, 2, outcome.Position)

	pos, err := nav.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	pos, err = nav.JumpTo(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	// Next at the last question is the terminal transition.
	outcome, err = nav.Next(ctx)
	require.NoError(t, err)
	assert.True(t, outcome.Finished)
	assert.False(t, outcome.Advanced)
}
