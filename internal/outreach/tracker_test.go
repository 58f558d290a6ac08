package outreach

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchbox-ai/outreach-cli/internal/model"
)

var trackerBase = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// newTestTracker wires a tracker to a fake mailbox and a settable clock.
func newTestTracker(mail *fakeMailbox) (*Tracker, *time.Time) {
	now := trackerBase
	tr := NewTracker(mail, DefaultTemplates(), 30*time.Second)
	tr.now = func() time.Time { return now }
	return tr, &now
}

func sendTestAttempt(t *testing.T, tr *Tracker) Attempt {
	t.Helper()
	att, err := tr.Send(context.Background(), SendRequest{
		Recipient: "creator@example.com",
		Subject:   "Collaboration with MatchBox",
		Body:      "Hello!",
		Timeout:   2 * time.Hour,
	})
	require.NoError(t, err)
	return att
}

func TestTracker_SendRegistersAttempt(t *testing.T) {
	mail := newFakeMailbox()
	tr, _ := newTestTracker(mail)

	att := sendTestAttempt(t, tr)

	assert.Equal(t, "<msg-1@test>", att.MessageID)
	assert.Equal(t, trackerBase, att.SentAt)
	assert.False(t, att.FollowUpSent)
	require.Len(t, tr.Pending(), 1)
}

func TestTracker_SendFailureReturnsDeliveryError(t *testing.T) {
	mail := newFakeMailbox()
	mail.sendErr = assert.AnError
	tr, _ := newTestTracker(mail)

	_, err := tr.Send(context.Background(), SendRequest{Recipient: "creator@example.com"})

	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "creator@example.com", de.Recipient)
	assert.Empty(t, tr.Pending())
}

func TestTracker_FollowUpAtTimeout(t *testing.T) {
	mail := newFakeMailbox()
	tr, now := newTestTracker(mail)
	sendTestAttempt(t, tr)

	// Just before the timeout nothing happens.
	*now = trackerBase.Add(2*time.Hour - time.Minute)
	tr.poll(context.Background())
	assert.Equal(t, 1, mail.sentCount())

	// At the timeout exactly one follow-up goes out, threaded under the
	// original message.
	*now = trackerBase.Add(2 * time.Hour)
	tr.poll(context.Background())
	require.Equal(t, 2, mail.sentCount())

	followUp, followUpID := mail.sentAt(1)
	assert.True(t, strings.HasPrefix(followUp.Subject, "Follow-up: "))
	assert.Equal(t, "<msg-1@test>", followUp.InReplyTo)
	assert.Contains(t, followUp.Body, "follow-up to my previous email")

	pending := tr.Pending()
	require.Len(t, pending, 1)
	assert.True(t, pending[0].FollowUpSent)
	assert.Equal(t, trackerBase.Add(2*time.Hour), pending[0].SentAt)
	assert.Equal(t, followUpID, pending[0].MessageID)
}

func TestTracker_ExpiresAfterSecondTimeout(t *testing.T) {
	mail := newFakeMailbox()
	tr, now := newTestTracker(mail)
	sendTestAttempt(t, tr)

	*now = trackerBase.Add(2 * time.Hour)
	tr.poll(context.Background())
	require.Len(t, tr.Pending(), 1)

	// The second window counts from the follow-up, not the original send.
	*now = trackerBase.Add(4*time.Hour - time.Minute)
	tr.poll(context.Background())
	require.Len(t, tr.Pending(), 1)

	*now = trackerBase.Add(4 * time.Hour)
	tr.poll(context.Background())
	assert.Empty(t, tr.Pending())
	// No third send ever happens.
	assert.Equal(t, 2, mail.sentCount())
}

func TestTracker_ReplyByThreadingHeader(t *testing.T) {
	mail := newFakeMailbox()
	tr, now := newTestTracker(mail)
	att := sendTestAttempt(t, tr)

	// Subject is unrelated; the In-Reply-To header alone must match.
	mail.deliver("creator@example.com", rawReply(
		"creator@example.com", "hey there", att.MessageID,
		"Sounds interesting, call me at +919876543210",
		trackerBase.Add(time.Hour),
	))

	*now = trackerBase.Add(time.Hour + time.Minute)
	tr.poll(context.Background())

	select {
	case ev := <-tr.Replies():
		assert.Equal(t, "creator@example.com", ev.Sender)
		assert.Equal(t, att.ID, ev.Attempt.ID)
		assert.Contains(t, ev.Body, "call me")
	default:
		t.Fatal("expected a reply event")
	}
	assert.Empty(t, tr.Pending())
	// Reply before the timeout means no follow-up.
	assert.Equal(t, 1, mail.sentCount())
}

func TestTracker_ReplyBySubjectFallback(t *testing.T) {
	mail := newFakeMailbox()
	tr, now := newTestTracker(mail)
	sendTestAttempt(t, tr)

	// No threading headers at all; the re: subject carries the match.
	mail.deliver("creator@example.com", rawReply(
		"creator@example.com", "Re: Collaboration with MatchBox", "",
		"Yes, tell me more.",
		trackerBase.Add(time.Hour),
	))

	*now = trackerBase.Add(time.Hour + time.Minute)
	tr.poll(context.Background())

	select {
	case ev := <-tr.Replies():
		assert.Equal(t, "Re: Collaboration with MatchBox", ev.Subject)
	default:
		t.Fatal("expected a reply event")
	}
}

func TestTracker_OldMessagesIgnored(t *testing.T) {
	mail := newFakeMailbox()
	tr, now := newTestTracker(mail)
	att := sendTestAttempt(t, tr)

	// A message predating the send, even with matching headers, is not a
	// reply to it.
	mail.deliver("creator@example.com", rawReply(
		"creator@example.com", "Re: Collaboration with MatchBox", att.MessageID,
		"old conversation",
		trackerBase.Add(-time.Hour),
	))

	*now = trackerBase.Add(time.Minute)
	tr.poll(context.Background())

	select {
	case <-tr.Replies():
		t.Fatal("stale message must not produce a reply event")
	default:
	}
	require.Len(t, tr.Pending(), 1)
}

func TestTracker_FollowUpSendFailureExpires(t *testing.T) {
	mail := newFakeMailbox()
	tr, now := newTestTracker(mail)
	sendTestAttempt(t, tr)

	mail.sendErr = assert.AnError
	*now = trackerBase.Add(2 * time.Hour)
	tr.poll(context.Background())

	assert.Empty(t, tr.Pending())
}

func TestTracker_RecorderSeesTransitions(t *testing.T) {
	mail := newFakeMailbox()
	tr, now := newTestTracker(mail)
	rec := &recordingStatusRecorder{}
	tr.SetRecorder(rec)
	att := sendTestAttempt(t, tr)

	*now = trackerBase.Add(2 * time.Hour)
	tr.poll(context.Background())
	*now = trackerBase.Add(4 * time.Hour)
	tr.poll(context.Background())

	require.Len(t, rec.statuses, 2)
	assert.Equal(t, att.ID, rec.ids[0])
	assert.Equal(t, model.OutreachStatusFollowedUp, rec.statuses[0])
	assert.Equal(t, model.OutreachStatusExpired, rec.statuses[1])
}

type recordingStatusRecorder struct {
	ids      []string
	statuses []model.OutreachStatus
}

func (r *recordingStatusRecorder) UpdateOutreachStatus(ctx context.Context, attemptID string, status model.OutreachStatus) error {
	r.ids = append(r.ids, attemptID)
	r.statuses = append(r.statuses, status)
	return nil
}

func TestTracker_StartStop(t *testing.T) {
	mail := newFakeMailbox()
	tr, _ := newTestTracker(mail)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr.Start(ctx)
	tr.Stop()

	select {
	case <-tr.done:
	case <-time.After(time.Second):
		t.Fatal("monitor goroutine did not exit")
	}
}
