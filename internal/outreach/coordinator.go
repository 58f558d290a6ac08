package outreach

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/matchbox-ai/outreach-cli/internal/model"
)

// Recorder persists reply outcomes. Implemented by the store; nil disables
// persistence.
type Recorder interface {
	RecordReply(ctx context.Context, attemptID string, intent model.ReplyIntent) error
}

// Coordinator consumes reply events, classifies each one, and routes it:
// questions and declines surface to the operator, shared phone numbers
// escalate to a call.
type Coordinator struct {
	tracker    *Tracker
	classifier *Classifier
	escalator  *Escalator
	recorder   Recorder
	notify     func(string)
}

func NewCoordinator(tracker *Tracker, classifier *Classifier, escalator *Escalator, recorder Recorder, notify func(string)) *Coordinator {
	if notify == nil {
		notify = func(string) {}
	}
	return &Coordinator{
		tracker:    tracker,
		classifier: classifier,
		escalator:  escalator,
		recorder:   recorder,
		notify:     notify,
	}
}

// Run processes reply events until the context ends or the tracker's channel
// closes. Errors on individual replies are reported and never stop the loop.
func (c *Coordinator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.tracker.Replies():
			if !ok {
				return
			}
			c.handle(ctx, ev)
		}
	}
}

func (c *Coordinator) handle(ctx context.Context, ev ReplyEvent) {
	log := zap.L().With(
		zap.String("attempt_id", ev.Attempt.ID),
		zap.String("sender", ev.Sender),
	)
	c.notify(fmt.Sprintf("Reply from %s: %s", ev.Sender, ev.Subject))

	intent, err := c.classifier.Classify(ctx, ev.Subject, ev.Body)
	if err != nil {
		log.Error("reply classification failed", zap.Error(err))
		c.notify(fmt.Sprintf("Could not classify the reply from %s. Please read it manually.", ev.Sender))
		return
	}
	c.record(ctx, ev.Attempt.ID, intent, log)

	switch intent.Kind {
	case model.IntentQuestion:
		log.Info("reply classified as question")
		c.notify(fmt.Sprintf("%s has a question about the campaign:\n%s", ev.Sender, ev.Body))

	case model.IntentDeclined:
		log.Info("reply classified as declined")
		c.notify(fmt.Sprintf("%s has declined the collaboration.", ev.Sender))

	case model.IntentEscalateCall:
		log.Info("reply classified as call escalation", zap.String("phone", intent.Phone))
		c.escalate(ctx, ev, intent.Phone, log)

	default:
		log.Warn("reply could not be classified", zap.String("reason", intent.Reason))
		c.notify(fmt.Sprintf("The reply from %s could not be understood (%s). Please read it manually.", ev.Sender, intent.Reason))
	}
}

func (c *Coordinator) escalate(ctx context.Context, ev ReplyEvent, phone string, log *zap.Logger) {
	if c.escalator == nil {
		log.Warn("call escalation requested but calling is not configured")
		c.notify(fmt.Sprintf("%s shared a phone number (%s) but calling is not configured.", ev.Sender, phone))
		return
	}

	session, err := c.escalator.Escalate(ctx, ev.Attempt.Campaign, ev.Attempt.Creator, phone)
	if err != nil {
		log.Error("call escalation failed", zap.Error(err))
		c.notify(fmt.Sprintf("Could not start the call with %s. The number %s was saved for manual follow-up.", ev.Sender, phone))
		return
	}
	c.notify(fmt.Sprintf("Negotiation call with %s started (call %s).", ev.Sender, session.CallID))
}

func (c *Coordinator) record(ctx context.Context, attemptID string, intent model.ReplyIntent, log *zap.Logger) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordReply(ctx, attemptID, intent); err != nil {
		log.Warn("failed to persist reply outcome", zap.Error(err))
	}
}
