package outreach

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/matchbox-ai/outreach-cli/pkg/mailbox"
	"github.com/matchbox-ai/outreach-cli/pkg/vapi"
)

// --- LLM Mock ---

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Chat(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

// --- Vapi Mock ---

type mockVapi struct {
	mock.Mock
}

func (m *mockVapi) UpdateAssistantPrompt(ctx context.Context, assistantID, systemPrompt string) error {
	args := m.Called(ctx, assistantID, systemPrompt)
	return args.Error(0)
}

func (m *mockVapi) CreateCall(ctx context.Context, req vapi.CallRequest) (*vapi.Call, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vapi.Call), args.Error(1)
}

// --- Mailbox fake ---

// fakeMailbox is a stateful in-memory mailbox. Sends are recorded; the inbox
// is seeded per sender with raw RFC 822 messages.
type fakeMailbox struct {
	mu      sync.Mutex
	sent    []mailbox.Outgoing
	sentIDs []string
	sendErr error
	inbox   map[string][][]byte
	nextID  int

	lastSender string
}

func newFakeMailbox() *fakeMailbox {
	return &fakeMailbox{inbox: make(map[string][][]byte)}
}

func (f *fakeMailbox) Send(ctx context.Context, out mailbox.Outgoing) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.nextID++
	id := fmt.Sprintf("<msg-%d@test>", f.nextID)
	f.sent = append(f.sent, out)
	f.sentIDs = append(f.sentIDs, id)
	return id, nil
}

func (f *fakeMailbox) SearchFrom(ctx context.Context, sender string) ([]uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uids := make([]uint32, len(f.inbox[sender]))
	for i := range uids {
		uids[i] = uint32(i + 1)
	}
	// Messages are stashed under the uid-keyed sender for fetch.
	f.lastSender = sender
	return uids, nil
}

func (f *fakeMailbox) FetchMessage(ctx context.Context, uid uint32) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.inbox[f.lastSender]
	if int(uid) > len(msgs) {
		return nil, fmt.Errorf("no message %d", uid)
	}
	return msgs[uid-1], nil
}

func (f *fakeMailbox) deliver(sender string, raw []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbox[sender] = append(f.inbox[sender], raw)
}

func (f *fakeMailbox) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeMailbox) sentAt(i int) (mailbox.Outgoing, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[i], f.sentIDs[i]
}

// rawReply builds a minimal RFC 822 reply.
func rawReply(from, subject, inReplyTo, body string, date time.Time) []byte {
	msg := fmt.Sprintf("From: %s\r\nSubject: %s\r\nDate: %s\r\n", from, subject, date.Format(time.RFC1123Z))
	if inReplyTo != "" {
		msg += fmt.Sprintf("In-Reply-To: %s\r\n", inReplyTo)
	}
	msg += "\r\n" + body
	return []byte(msg)
}
