package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/norsk-prova/quiz-session-service/internal/codec"
	"github.com/norsk-prova/quiz-session-service/internal/events"
	"github.com/norsk-prova/quiz-session-service/internal/evaluator"
	"github.com/norsk-prova/quiz-session-service/internal/models"
)

// AnswerOutcome describes what a navigation-triggering answer event did.
type AnswerOutcome struct {
	Identity       int  `json:"identity"`
	Scored         bool `json:"scored"`
	Correct        bool `json:"correct"`
	AwaitingFields bool `json:"awaiting_fields"`
	Advanced       bool `json:"advanced"`
	Finished       bool `json:"finished"`
	Position       int  `json:"position"`
}

// NavigationController decides, per answer event, whether to score and
// whether to advance, based on the session mode: self-paced reading
// advances immediately, timed listening waits for the media-ended signal or
// manual navigation. Multi-field questions never auto-advance; the explicit
// continue trigger, gated on completeness, substitutes for it.
type NavigationController struct {
	session   SessionService
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewNavigationController(
	session SessionService,
	publisher events.EventPublisher,
	logger *slog.Logger,
) *NavigationController {
	return &NavigationController{
		session:   session,
		publisher: publisher,
		logger:    logger,
	}
}

// SubmitAnswer records an answer, scores it when the per-kind rules allow,
// and applies the mode's advance policy. Multi-field answers are scored
// only on the event that completes every sub-field.
func (n *NavigationController) SubmitAnswer(ctx context.Context, identity int, encoded string) (*AnswerOutcome, error) {
	state := n.session.Snapshot()
	if !state.Loaded() {
		return nil, ErrSetNotLoaded
	}
	if state.Finished() {
		return nil, ErrSessionFinished
	}

	if err := n.session.RecordAnswer(ctx, identity, encoded); err != nil {
		return nil, err
	}
	n.publishEvent(ctx, events.EventAnswerRecorded, &state, identity, nil)

	outcome := &AnswerOutcome{Identity: identity, Position: state.Position}

	question := state.QuestionAt(identity)
	if question == nil {
		// The store accepts unknown identities; there is nothing to score.
		n.logger.Warn("Answer recorded for unknown question identity", "identity", identity)
		return outcome, nil
	}

	if question.IsMultiField() && !evaluator.Complete(question, encoded) {
		// Progressive multi-field input: the vector is re-encoded on each
		// field change but only the completion event may score.
		outcome.AwaitingFields = true
		return outcome, nil
	}

	res := evaluator.Evaluate(question, encoded)
	counted, err := n.session.ScoreOnce(ctx, identity, res.Correct)
	if err != nil {
		return nil, err
	}
	outcome.Scored = counted
	outcome.Correct = res.Correct

	if state.Mode == models.ModeReading && !question.IsMultiField() {
		advanced, finished, position, err := n.advanceOrFinish(ctx)
		if err != nil {
			return nil, err
		}
		outcome.Advanced = advanced
		outcome.Finished = finished
		outcome.Position = position
	}

	n.logger.Info("Answer submitted",
		"identity", identity,
		"kind", question.Kind,
		"scored", outcome.Scored,
		"correct", outcome.Correct,
		"advanced", outcome.Advanced)

	return outcome, nil
}

// RegionClickRequest carries one click on a region-click question: the
// on-screen click point plus the rendered and native image dimensions the
// widget observed, so the core can scale before measuring distance.
type RegionClickRequest struct {
	ClickX   float64 `json:"click_x"`
	ClickY   float64 `json:"click_y"`
	DisplayW float64 `json:"display_w" validate:"omitempty,gt=0"`
	DisplayH float64 `json:"display_h" validate:"omitempty,gt=0"`
	NativeW  float64 `json:"native_w" validate:"omitempty,gt=0"`
	NativeH  float64 `json:"native_h" validate:"omitempty,gt=0"`
}

// SubmitRegionClick decides region-click correctness once, here, and
// persists the decided tag inside the encoded value. Review never
// recomputes the geometry against a potentially rescaled re-render.
func (n *NavigationController) SubmitRegionClick(ctx context.Context, identity int, req RegionClickRequest) (*AnswerOutcome, error) {
	state := n.session.Snapshot()
	if !state.Loaded() {
		return nil, ErrSetNotLoaded
	}
	question := state.QuestionAt(identity)
	if question == nil {
		return nil, ErrUnknownQuestion
	}
	if question.Kind != models.KindRegionClick || question.CorrectArea == nil {
		return nil, fmt.Errorf("%w: question %d is not a region-click question", ErrUnknownQuestion, identity)
	}

	x, y, correct := evaluator.ScoreRegionClick(
		req.ClickX, req.ClickY,
		req.DisplayW, req.DisplayH,
		req.NativeW, req.NativeH,
		*question.CorrectArea)
	encoded := codec.EncodeRegionClick(x, y, correct)
	return n.SubmitAnswer(ctx, identity, encoded)
}

// Continue is the explicit advance trigger for multi-field questions in
// self-paced mode, gated on every sub-field being non-empty.
func (n *NavigationController) Continue(ctx context.Context) (*AnswerOutcome, error) {
	state := n.session.Snapshot()
	if !state.Loaded() {
		return nil, ErrSetNotLoaded
	}
	if state.Finished() {
		return nil, ErrSessionFinished
	}

	identity := state.Position
	question := state.QuestionAt(identity)
	if question == nil {
		return nil, ErrUnknownQuestion
	}

	encoded := ""
	if answer, ok := state.AnswerFor(identity); ok {
		encoded = answer.EncodedValue
	}
	if question.IsMultiField() && !evaluator.Complete(question, encoded) {
		return nil, fmt.Errorf("%w: question %d", ErrFieldsIncomplete, identity)
	}

	outcome := &AnswerOutcome{Identity: identity, Position: state.Position}
	if encoded != "" {
		res := evaluator.Evaluate(question, encoded)
		counted, err := n.session.ScoreOnce(ctx, identity, res.Correct)
		if err != nil {
			return nil, err
		}
		outcome.Scored = counted
		outcome.Correct = res.Correct
	}

	advanced, finished, position, err := n.advanceOrFinish(ctx)
	if err != nil {
		return nil, err
	}
	outcome.Advanced = advanced
	outcome.Finished = finished
	outcome.Position = position
	return outcome, nil
}

// Next is a manual advance; in listening mode it is one of the two inputs
// that move the position at all.
func (n *NavigationController) Next(ctx context.Context) (*AnswerOutcome, error) {
	state := n.session.Snapshot()
	if !state.Loaded() {
		return nil, ErrSetNotLoaded
	}
	if state.Finished() {
		return nil, ErrSessionFinished
	}
	advanced, finished, position, err := n.advanceOrFinish(ctx)
	if err != nil {
		return nil, err
	}
	return &AnswerOutcome{Advanced: advanced, Finished: finished, Position: position}, nil
}

// Previous retreats one position; at question 1 it is a pure no-op.
func (n *NavigationController) Previous(ctx context.Context) (int, error) {
	return n.session.Retreat(ctx)
}

// JumpTo serves the question-overview grid.
func (n *NavigationController) JumpTo(ctx context.Context, position int) (int, error) {
	return n.session.SetPosition(ctx, position)
}

// OnMediaEnded consumes the audio collaborator's ended signal. Racing a
// manual navigation is resolved by the idempotent terminal transition: once
// finished, further signals are no-ops.
func (n *NavigationController) OnMediaEnded(ctx context.Context) error {
	state := n.session.Snapshot()
	if !state.Loaded() || state.Finished() {
		return nil
	}
	_, _, _, err := n.advanceOrFinish(ctx)
	return err
}

// ForceFinish drives the terminal transition from the countdown. It checks
// for an already-finished session so expiry racing navigation cannot
// double-fire the finished event.
func (n *NavigationController) ForceFinish(ctx context.Context) error {
	state := n.session.Snapshot()
	changed, err := n.session.Finish(ctx)
	if err != nil {
		return err
	}
	if changed {
		n.publishEvent(ctx, events.EventSessionFinished, &state, 0, nil)
	}
	return nil
}

// Run pumps media-ended signals from the bus into the controller until the
// context is cancelled.
func (n *NavigationController) Run(ctx context.Context, bus *events.Bus) error {
	messages, err := bus.Subscribe(ctx, events.EventMediaEnded)
	if err != nil {
		return fmt.Errorf("failed to subscribe to media-ended events: %w", err)
	}
	go func() {
		for msg := range messages {
			if err := n.OnMediaEnded(ctx); err != nil {
				n.logger.Error("Failed to handle media-ended signal", "error", err)
			}
			msg.Ack()
		}
	}()
	return nil
}

// advanceOrFinish advances one position, or performs the terminal
// transition when already at the last question.
func (n *NavigationController) advanceOrFinish(ctx context.Context) (advanced, finished bool, position int, err error) {
	state := n.session.Snapshot()
	if state.Position >= len(state.Questions) {
		changed, err := n.session.Finish(ctx)
		if err != nil {
			return false, false, state.Position, err
		}
		if changed {
			n.publishEvent(ctx, events.EventSessionFinished, &state, 0, nil)
		}
		return false, true, state.Position, nil
	}
	position, err = n.session.Advance(ctx)
	if err != nil {
		return false, false, state.Position, err
	}
	return true, false, position, nil
}

func (n *NavigationController) publishEvent(ctx context.Context, eventType events.EventType, state *models.SessionState, identity int, correct *bool) {
	event := events.NewSessionEvent(eventType)
	event.SetKey = state.SetKey
	event.Position = state.Position
	event.Identity = identity
	event.Correct = correct
	if err := n.publisher.PublishSessionEvent(ctx, event); err != nil {
		n.logger.Error("Failed to publish session event",
			"event_type", eventType,
			"error", err)
	}
}
