package mailbox

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"
	"github.com/rotisserie/eris"
)

// dialIMAP opens an authenticated IMAP session with the inbox selected.
// Callers must Logout the returned client.
func (c *client) dialIMAP(ctx context.Context, readOnly bool) (*imapclient.Client, error) {
	addr := fmt.Sprintf("%s:%d", c.cfg.IMAPHost, c.cfg.IMAPPort)

	dialer := &net.Dialer{Timeout: c.timeout()}
	cl, err := imapclient.DialWithDialerTLS(dialer, addr, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "mailbox: dial imap %s", addr)
	}
	cl.Timeout = c.timeout()

	if err := cl.Login(c.cfg.Address, c.cfg.Password); err != nil {
		cl.Logout()
		return nil, eris.Wrap(err, "mailbox: imap login")
	}
	if _, err := cl.Select("INBOX", readOnly); err != nil {
		cl.Logout()
		return nil, eris.Wrap(err, "mailbox: imap select inbox")
	}

	// Cancellation is cooperative: an in-flight command is allowed to finish,
	// but we refuse to start one on a dead context.
	if ctx.Err() != nil {
		cl.Logout()
		return nil, ctx.Err()
	}
	return cl, nil
}

// SearchFrom returns UIDs of inbox messages whose From header matches sender.
func (c *client) SearchFrom(ctx context.Context, sender string) ([]uint32, error) {
	cl, err := c.dialIMAP(ctx, true)
	if err != nil {
		return nil, err
	}
	defer cl.Logout()

	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("From", sender)

	uids, err := cl.UidSearch(criteria)
	if err != nil {
		return nil, eris.Wrapf(err, "mailbox: imap search from %s", sender)
	}
	return uids, nil
}

// FetchMessage returns the raw RFC 822 bytes of one message by UID.
func (c *client) FetchMessage(ctx context.Context, uid uint32) ([]byte, error) {
	cl, err := c.dialIMAP(ctx, true)
	if err != nil {
		return nil, err
	}
	defer cl.Logout()

	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem()}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- cl.UidFetch(seqset, items, messages)
	}()

	var raw []byte
	for msg := range messages {
		r := msg.GetBody(section)
		if r == nil {
			continue
		}
		body, readErr := io.ReadAll(r)
		if readErr != nil {
			return nil, eris.Wrapf(readErr, "mailbox: read message %d", uid)
		}
		raw = body
	}

	if err := <-done; err != nil {
		return nil, eris.Wrapf(err, "mailbox: imap fetch %d", uid)
	}
	if raw == nil {
		return nil, eris.Errorf("mailbox: message %d has no body", uid)
	}
	return raw, nil
}
