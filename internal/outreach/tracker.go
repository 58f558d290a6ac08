// Package outreach owns the email outreach lifecycle: send, thread-aware
// reply detection, timed follow-up, expiry, reply classification, and call
// escalation.
package outreach

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matchbox-ai/outreach-cli/internal/model"
	"github.com/matchbox-ai/outreach-cli/pkg/mailbox"
)

// Attempt is one tracked outbound email plus its follow-up/reply lifecycle.
// The tracker is the only writer of attempt state.
type Attempt struct {
	ID           string
	Recipient    string
	Subject      string
	Body         string
	SentAt       time.Time
	MessageID    string
	FollowUpSent bool
	Timeout      time.Duration
	Creator      model.CreatorRecord
	Campaign     model.CampaignContext
}

// ReplyEvent is published on the tracker's reply channel when an inbound
// message matches a tracked attempt.
type ReplyEvent struct {
	Sender  string
	Subject string
	Body    string
	Attempt Attempt
}

// StatusRecorder persists attempt state transitions. Implemented by the
// store; nil disables persistence.
type StatusRecorder interface {
	UpdateOutreachStatus(ctx context.Context, attemptID string, status model.OutreachStatus) error
}

// SendRequest describes one initial outreach send.
type SendRequest struct {
	Recipient string
	Subject   string
	Body      string
	Timeout   time.Duration
	Creator   model.CreatorRecord
	Campaign  model.CampaignContext
}

// Tracker monitors in-flight outreach attempts on a fixed poll interval.
// Replies are published to a channel with exactly one consumer; consumer
// errors can never crash the loop.
type Tracker struct {
	mail     mailbox.Mailbox
	tmpl     Templates
	interval time.Duration

	mu       sync.Mutex
	attempts map[string]*Attempt

	events chan ReplyEvent
	stop   chan struct{}
	done   chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once

	recorder StatusRecorder
	now      func() time.Time
}

// NewTracker creates a tracker. Call Start to begin monitoring.
func NewTracker(mail mailbox.Mailbox, tmpl Templates, pollInterval time.Duration) *Tracker {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &Tracker{
		mail:     mail,
		tmpl:     tmpl,
		interval: pollInterval,
		attempts: make(map[string]*Attempt),
		events:   make(chan ReplyEvent, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetRecorder wires status persistence. Call before Start.
func (t *Tracker) SetRecorder(r StatusRecorder) {
	t.recorder = r
}

// Replies returns the reply event channel. Exactly one consumer is expected.
func (t *Tracker) Replies() <-chan ReplyEvent {
	return t.events
}

// Send delivers the initial message and registers the attempt for
// monitoring. A transport failure returns a DeliveryError and registers
// nothing.
func (t *Tracker) Send(ctx context.Context, req SendRequest) (Attempt, error) {
	messageID, err := t.mail.Send(ctx, mailbox.Outgoing{
		To:      req.Recipient,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		return Attempt{}, &DeliveryError{Recipient: req.Recipient, Err: err}
	}

	att := &Attempt{
		ID:        uuid.NewString(),
		Recipient: req.Recipient,
		Subject:   req.Subject,
		Body:      req.Body,
		SentAt:    t.now(),
		MessageID: messageID,
		Timeout:   req.Timeout,
		Creator:   req.Creator,
		Campaign:  req.Campaign,
	}

	t.mu.Lock()
	t.attempts[att.ID] = att
	t.mu.Unlock()

	zap.L().Info("outreach sent",
		zap.String("attempt_id", att.ID),
		zap.String("recipient", req.Recipient),
		zap.String("subject", req.Subject),
		zap.Duration("timeout", req.Timeout),
	)
	return *att, nil
}

// Pending returns a snapshot of the attempts still being tracked.
func (t *Tracker) Pending() []Attempt {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Attempt, 0, len(t.attempts))
	for _, att := range t.attempts {
		out = append(out, *att)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out
}

// Start launches the monitoring loop.
func (t *Tracker) Start(ctx context.Context) {
	t.startOnce.Do(func() {
		go t.run(ctx)
	})
}

// Stop signals the loop to exit and waits a bounded grace period for it.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
		select {
		case <-t.done:
		case <-time.After(5 * time.Second):
			zap.L().Warn("outreach monitor did not exit within grace period")
		}
	})
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)

	log := zap.L().With(zap.String("component", "outreach.tracker"))
	log.Info("starting outreach monitor", zap.Duration("interval", t.interval))

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("outreach monitor stopped", zap.Error(ctx.Err()))
			return
		case <-t.stop:
			log.Info("outreach monitor stopped")
			return
		case <-ticker.C:
			t.poll(ctx)
		}
	}
}

// poll runs one monitoring pass over every tracked attempt. A single
// attempt's failure never stops the others from being checked.
func (t *Tracker) poll(ctx context.Context) {
	now := t.now()

	t.mu.Lock()
	snapshot := make([]*Attempt, 0, len(t.attempts))
	for _, att := range t.attempts {
		snapshot = append(snapshot, att)
	}
	t.mu.Unlock()

	for _, att := range snapshot {
		log := zap.L().With(
			zap.String("attempt_id", att.ID),
			zap.String("recipient", att.Recipient),
		)

		if ev, found := t.checkReply(ctx, att, log); found {
			t.remove(att.ID)
			log.Info("reply detected", zap.String("subject", ev.Subject))
			t.publish(ev)
			continue
		}

		elapsed := now.Sub(att.SentAt)
		if elapsed < att.Timeout {
			continue
		}

		if !att.FollowUpSent {
			t.sendFollowUp(ctx, att, now, log)
			continue
		}

		// One follow-up per attempt, ever. A second silent timeout expires it.
		log.Info("no reply after follow-up period, expiring attempt")
		t.remove(att.ID)
		t.recordStatus(ctx, att.ID, model.OutreachStatusExpired, log)
	}
}

func (t *Tracker) recordStatus(ctx context.Context, attemptID string, status model.OutreachStatus, log *zap.Logger) {
	if t.recorder == nil {
		return
	}
	if err := t.recorder.UpdateOutreachStatus(ctx, attemptID, status); err != nil {
		log.Warn("failed to persist attempt status", zap.String("status", string(status)), zap.Error(err))
	}
}

// sendFollowUp threads a single follow-up under the original message and
// refreshes the attempt in place. A failed follow-up send expires the
// attempt with no further retries.
func (t *Tracker) sendFollowUp(ctx context.Context, att *Attempt, now time.Time, log *zap.Logger) {
	messageID, err := t.mail.Send(ctx, mailbox.Outgoing{
		To:        att.Recipient,
		Subject:   t.tmpl.FollowUpSubjectPrefix + att.Subject,
		Body:      t.tmpl.FollowUpNotice + "\n\n" + att.Body,
		InReplyTo: att.MessageID,
	})
	if err != nil {
		log.Warn("follow-up send failed, expiring attempt", zap.Error(err))
		t.remove(att.ID)
		t.recordStatus(ctx, att.ID, model.OutreachStatusExpired, log)
		return
	}

	t.mu.Lock()
	att.FollowUpSent = true
	att.SentAt = now
	att.MessageID = messageID
	t.mu.Unlock()

	t.recordStatus(ctx, att.ID, model.OutreachStatusFollowedUp, log)
	log.Info("follow-up sent", zap.String("message_id", messageID))
}

// checkReply searches the mailbox for a message from the recipient that is
// newer than the last send and matches the attempt by threading headers or
// subject similarity. Mailbox errors are logged and skip only this attempt
// for this pass.
func (t *Tracker) checkReply(ctx context.Context, att *Attempt, log *zap.Logger) (ReplyEvent, bool) {
	uids, err := t.mail.SearchFrom(ctx, att.Recipient)
	if err != nil {
		log.Warn("mailbox search failed", zap.Error(err))
		return ReplyEvent{}, false
	}

	// Newest first; IMAP search results are usually oldest first.
	for i := len(uids) - 1; i >= 0; i-- {
		raw, err := t.mail.FetchMessage(ctx, uids[i])
		if err != nil {
			log.Warn("message fetch failed", zap.Uint32("uid", uids[i]), zap.Error(err))
			continue
		}

		msg, err := mailbox.Parse(raw)
		if err != nil {
			log.Warn("message parse failed", zap.Uint32("uid", uids[i]), zap.Error(err))
			continue
		}

		if msg.Date.IsZero() || !msg.Date.After(att.SentAt) {
			continue
		}
		if !matchesReply(msg, att.Subject, att.MessageID) {
			continue
		}

		return ReplyEvent{
			Sender:  att.Recipient,
			Subject: msg.Subject,
			Body:    msg.Body,
			Attempt: *att,
		}, true
	}
	return ReplyEvent{}, false
}

// publish hands the event to the consumer, giving up only on shutdown.
func (t *Tracker) publish(ev ReplyEvent) {
	select {
	case t.events <- ev:
	case <-t.stop:
	}
}

func (t *Tracker) remove(id string) {
	t.mu.Lock()
	delete(t.attempts, id)
	t.mu.Unlock()
}
