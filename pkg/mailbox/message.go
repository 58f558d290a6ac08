package mailbox

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Message is a parsed inbound mail with the headers reply matching needs and
// the extracted plain-text body.
type Message struct {
	From       string
	Subject    string
	Date       time.Time
	MessageID  string
	InReplyTo  string
	References string
	Body       string
}

// quoteMarkers split off common quoted-reply boilerplate appended by mail
// clients below the actual reply text.
var quoteMarkers = regexp.MustCompile(`(?s)On .* wrote:|-----Original Message-----|From:.*Sent:.*To:.*Subject:|\[Quoted text hidden\]`)

// Parse decodes raw RFC 822 bytes into a Message. The body is the first
// text/plain part that is not an attachment, with quoted-reply boilerplate
// trimmed off.
func Parse(raw []byte) (*Message, error) {
	m, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, eris.Wrap(err, "mailbox: parse message")
	}

	msg := &Message{
		MessageID:  m.Header.Get("Message-ID"),
		InReplyTo:  m.Header.Get("In-Reply-To"),
		References: m.Header.Get("References"),
	}

	if addr, err := mail.ParseAddress(m.Header.Get("From")); err == nil {
		msg.From = addr.Address
	} else {
		msg.From = m.Header.Get("From")
	}

	dec := new(mime.WordDecoder)
	if subject, err := dec.DecodeHeader(m.Header.Get("Subject")); err == nil {
		msg.Subject = subject
	} else {
		msg.Subject = m.Header.Get("Subject")
	}

	if date, err := m.Header.Date(); err == nil {
		msg.Date = date.UTC()
	}

	body, err := extractPlainBody(m.Header.Get("Content-Type"), m.Header.Get("Content-Transfer-Encoding"), m.Body)
	if err != nil {
		return nil, err
	}
	msg.Body = TrimQuoted(body)

	return msg, nil
}

// TrimQuoted strips quoted-reply boilerplate and surrounding whitespace.
func TrimQuoted(body string) string {
	if loc := quoteMarkers.FindStringIndex(body); loc != nil {
		body = body[:loc[0]]
	}
	return strings.TrimSpace(body)
}

// extractPlainBody walks a (possibly nested) MIME structure and returns the
// first text/plain part that is not an attachment.
func extractPlainBody(contentType, transferEncoding string, r io.Reader) (string, error) {
	if contentType == "" {
		return decodeBody(transferEncoding, r)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Unparseable Content-Type: treat the body as plain text.
		return decodeBody(transferEncoding, r)
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		if mediaType != "" && mediaType != "text/plain" {
			return "", nil
		}
		return decodeBody(transferEncoding, r)
	}

	mr := multipart.NewReader(r, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", eris.Wrap(err, "mailbox: read mime part")
		}

		disposition := part.Header.Get("Content-Disposition")
		if strings.Contains(strings.ToLower(disposition), "attachment") {
			continue
		}

		body, err := extractPlainBody(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part)
		if err != nil {
			return "", err
		}
		if body != "" {
			return body, nil
		}
	}
}

func decodeBody(transferEncoding string, r io.Reader) (string, error) {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return "", eris.Wrap(err, "mailbox: read body")
	}
	return string(body), nil
}
