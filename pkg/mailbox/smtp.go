package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// client implements Mailbox over plain SMTP/IMAP connections, one session
// per operation.
type client struct {
	cfg Config
}

// New creates a Mailbox from server settings.
func New(cfg Config) Mailbox {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30
	}
	return &client{cfg: cfg}
}

func (c *client) timeout() time.Duration {
	return time.Duration(c.cfg.Timeout) * time.Second
}

// newMessageID generates an RFC 5322 Message-ID under the sender's domain.
func (c *client) newMessageID() string {
	domain := "localhost"
	if i := strings.LastIndexByte(c.cfg.Address, '@'); i >= 0 {
		domain = c.cfg.Address[i+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

// Send delivers one plain-text message over SMTP with STARTTLS and returns
// the generated Message-ID used for reply threading.
func (c *client) Send(ctx context.Context, out Outgoing) (string, error) {
	messageID := c.newMessageID()

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", c.cfg.Address)
	fmt.Fprintf(&msg, "To: %s\r\n", out.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", out.Subject)
	fmt.Fprintf(&msg, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	if out.InReplyTo != "" {
		fmt.Fprintf(&msg, "In-Reply-To: %s\r\n", out.InReplyTo)
		fmt.Fprintf(&msg, "References: %s\r\n", out.InReplyTo)
	}
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(out.Body)
	msg.WriteString("\r\n")

	if err := c.sendSTARTTLS(ctx, out.To, msg.String()); err != nil {
		return "", err
	}
	return messageID, nil
}

func (c *client) sendSTARTTLS(ctx context.Context, rcpt, msg string) error {
	addr := fmt.Sprintf("%s:%d", c.cfg.SMTPHost, c.cfg.SMTPPort)

	dialer := &net.Dialer{Timeout: c.timeout()}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return eris.Wrapf(err, "mailbox: dial smtp %s", addr)
	}
	// Bound the whole SMTP exchange, not just the dial.
	_ = conn.SetDeadline(time.Now().Add(c.timeout()))

	cl, err := smtp.NewClient(conn, c.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return eris.Wrap(err, "mailbox: smtp client")
	}
	defer cl.Close()

	if err := cl.StartTLS(&tls.Config{
		ServerName: c.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}); err != nil {
		return eris.Wrap(err, "mailbox: starttls")
	}

	auth := smtp.PlainAuth("", c.cfg.Address, c.cfg.Password, c.cfg.SMTPHost)
	if err := cl.Auth(auth); err != nil {
		return eris.Wrap(err, "mailbox: smtp auth")
	}

	if err := cl.Mail(c.cfg.Address); err != nil {
		return eris.Wrap(err, "mailbox: smtp MAIL")
	}
	if err := cl.Rcpt(rcpt); err != nil {
		return eris.Wrapf(err, "mailbox: smtp RCPT %s", rcpt)
	}

	w, err := cl.Data()
	if err != nil {
		return eris.Wrap(err, "mailbox: smtp DATA")
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return eris.Wrap(err, "mailbox: smtp write")
	}
	if err := w.Close(); err != nil {
		return eris.Wrap(err, "mailbox: smtp close")
	}

	return cl.Quit()
}
