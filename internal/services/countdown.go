package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/norsk-prova/quiz-session-service/internal/events"
)

// Countdown ticks once per second against the session deadline and forces
// termination when it elapses. Expiry is single-shot: the handler checks
// for an already-terminal session and never fires twice.
type Countdown struct {
	session   SessionService
	nav       *NavigationController
	publisher events.EventPublisher
	logger    *slog.Logger

	interval        time.Duration
	defaultDuration time.Duration
	now             func() time.Time

	mu      sync.Mutex
	fired   bool
	running bool
	cancel  context.CancelFunc
}

func NewCountdown(
	session SessionService,
	nav *NavigationController,
	publisher events.EventPublisher,
	logger *slog.Logger,
	defaultDuration time.Duration,
) *Countdown {
	return &Countdown{
		session:         session,
		nav:             nav,
		publisher:       publisher,
		logger:          logger,
		interval:        time.Second,
		defaultDuration: defaultDuration,
		now:             time.Now,
	}
}

// Start arms and runs the countdown. Ticking against an unset deadline
// would expire immediately, so an unarmed session gets the default quiz
// duration first.
func (c *Countdown) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrCountdownRunning
	}
	c.running = true
	c.fired = false
	ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	state := c.session.Snapshot()
	if state.Deadline == 0 {
		deadline := c.now().Add(c.defaultDuration)
		if err := c.session.SetDeadline(ctx, deadline); err != nil {
			c.Stop()
			return err
		}
		c.logger.Info("Countdown armed with default duration",
			"deadline", deadline,
			"duration", c.defaultDuration)
	}

	go c.run(ctx)
	return nil
}

func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.running = false
}

// Remaining is the coarse time left, zero once elapsed or unarmed.
func (c *Countdown) Remaining() time.Duration {
	state := c.session.Snapshot()
	if state.Deadline == 0 {
		return 0
	}
	remaining := state.DeadlineTime().Sub(c.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *Countdown) run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.tick(ctx) {
				return
			}
		}
	}
}

// tick evaluates the deadline once; it reports true when ticking should
// stop. The expiry event fires at most once per Start.
func (c *Countdown) tick(ctx context.Context) bool {
	state := c.session.Snapshot()
	if state.Deadline == 0 {
		// Disarmed mid-run, e.g. by session completion.
		return state.Finished()
	}
	if state.DeadlineTime().Sub(c.now()) > 0 {
		return false
	}

	c.mu.Lock()
	if c.fired {
		c.mu.Unlock()
		return true
	}
	c.fired = true
	c.mu.Unlock()

	c.logger.Info("Countdown expired", "key", state.SetKey, "position", state.Position)

	event := events.NewSessionEvent(events.EventTimeExpired)
	event.SetKey = state.SetKey
	event.Position = state.Position
	if err := c.publisher.PublishSessionEvent(ctx, event); err != nil {
		c.logger.Error("Failed to publish time-expired event", "error", err)
	}

	if !state.Finished() {
		if err := c.nav.ForceFinish(ctx); err != nil {
			c.logger.Error("Failed to force session termination on expiry", "error", err)
		}
	}
	return true
}
