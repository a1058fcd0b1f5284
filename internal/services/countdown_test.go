package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norsk-prova/quiz-session-service/internal/events"
	"github.com/norsk-prova/quiz-session-service/internal/models"
)

func newTestCountdown(t *testing.T) (*Countdown, SessionService, *events.MockEventPublisher, *time.Time) {
	t.Helper()
	session, _, _ := newTestSession(t, map[string][]models.QuestionSpec{
		"set": scalarSet(3),
	})
	publisher := events.NewMockEventPublisher(testLogger())
	nav := NewNavigationController(session, publisher, testLogger())
	countdown := NewCountdown(session, nav, publisher, testLogger(), time.Hour)

	// The clock is frozen and stepped by hand; ticks are driven directly.
	// Millisecond truncation matches the stored deadline resolution.
	clock := time.Now().Truncate(time.Millisecond)
	countdown.now = func() time.Time { return clock }
	return countdown, session, publisher, &clock
}

func TestCountdownExpiresOnce(t *testing.T) {
	ctx := context.Background()
	countdown, session, publisher, clock := newTestCountdown(t)
	_, err := session.LoadSet(ctx, "set", "")
	require.NoError(t, err)
	require.NoError(t, session.SetDeadline(ctx, clock.Add(2*time.Second)))

	// Two ticks before the deadline: nothing happens.
	*clock = clock.Add(time.Second)
	assert.False(t, countdown.tick(ctx))
	*clock = clock.Add(999 * time.Millisecond)
	assert.False(t, countdown.tick(ctx))
	assert.Empty(t, publisher.GetPublishedEvents())
	assert.False(t, session.Snapshot().Finished())

	// Third tick crosses the deadline: one expiry, session finished.
	*clock = clock.Add(time.Second)
	assert.True(t, countdown.tick(ctx))
	assert.True(t, session.Snapshot().Finished())
	assert.Len(t, eventsOfType(publisher, events.EventTimeExpired), 1)
	assert.Len(t, eventsOfType(publisher, events.EventSessionFinished), 1)

	// A straggler tick after expiry must not fire again.
	*clock = clock.Add(time.Second)
	assert.True(t, countdown.tick(ctx))
	assert.Len(t, eventsOfType(publisher, events.EventTimeExpired), 1)
}

func TestCountdownDisarmedByFinish(t *testing.T) {
	ctx := context.Background()
	countdown, session, publisher, clock := newTestCountdown(t)
	_, err := session.LoadSet(ctx, "set", "")
	require.NoError(t, err)
	require.NoError(t, session.SetDeadline(ctx, clock.Add(time.Minute)))

	// Finishing the attempt zeroes the deadline; ticking then stops without
	// ever publishing an expiry.
	_, err = session.Finish(ctx)
	require.NoError(t, err)
	assert.True(t, countdown.tick(ctx))
	assert.Empty(t, eventsOfType(publisher, events.EventTimeExpired))
}

func TestCountdownArmsDefaultDuration(t *testing.T) {
	ctx := context.Background()
	countdown, session, _, clock := newTestCountdown(t)
	_, err := session.LoadSet(ctx, "set", "")
	require.NoError(t, err)
	require.Zero(t, session.Snapshot().Deadline)

	require.NoError(t, countdown.Start(ctx))
	defer countdown.Stop()

	// Lazy arming: the deadline is set only when the countdown starts.
	state := session.Snapshot()
	require.NotZero(t, state.Deadline)
	assert.Equal(t, clock.Add(time.Hour).UnixMilli(), state.Deadline)
	assert.Equal(t, time.Hour, countdown.Remaining())

	// A second start while running is rejected.
	assert.ErrorIs(t, countdown.Start(ctx), ErrCountdownRunning)
}

func TestCountdownRemainingUnarmed(t *testing.T) {
	countdown, _, _, _ := newTestCountdown(t)
	assert.Zero(t, countdown.Remaining())
}
