// Package mailbox is the mail collaborator: SMTP send with threading headers,
// IMAP search-by-sender and fetch, and raw message parsing.
package mailbox

import "context"

// Outgoing is one message to send. InReplyTo, when set, threads the message
// under an earlier one via In-Reply-To/References headers.
type Outgoing struct {
	To        string
	Subject   string
	Body      string
	InReplyTo string
}

// Mailbox defines the operations the outreach tracker needs.
type Mailbox interface {
	// Send delivers the message and returns the generated Message-ID.
	Send(ctx context.Context, out Outgoing) (string, error)
	// SearchFrom returns the UIDs of inbox messages from the given sender.
	SearchFrom(ctx context.Context, sender string) ([]uint32, error)
	// FetchMessage returns the raw RFC 822 bytes of one message.
	FetchMessage(ctx context.Context, uid uint32) ([]byte, error)
}

// Config holds mailbox server settings and credentials.
type Config struct {
	SMTPHost string
	SMTPPort int
	IMAPHost string
	IMAPPort int
	Address  string
	Password string
	// Timeout bounds each SMTP/IMAP network operation.
	Timeout int
}
