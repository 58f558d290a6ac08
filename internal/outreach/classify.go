package outreach

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/matchbox-ai/outreach-cli/internal/model"
	"github.com/matchbox-ai/outreach-cli/pkg/llm"
)

const classifySystemPrompt = `You are an automation bot from MatchBox AI (use this as your name) made for analyzing the reply of the client (influencer) to a mail which was sent in order to get their phone number to proceed further negotiation and finally get a deal. You must analyze their reply and give out only a tag as a response. Three cases can happen: [1] if their reply is a query and they want to ask something, use tag <follow-up-reply> [2] if they deny the deal, return tag <follow-up-cancel> [3] if they share their contact info (their phone number), use tag <init-call> with their correct phone number next to it with country code. Your response must contain only 1 tag. The mail will be provided in the content. If none of the cases are met or an error occurs, return only an <error> tag enclosing the error info in it.`

var (
	phonePattern = regexp.MustCompile(`(?i)<init-call>\s*([\d\s\-\+]+)`)
	errPattern   = regexp.MustCompile(`(?is)<error>(.*?)</error>`)
)

// Classifier maps free-form reply text to a discrete intent via the model.
type Classifier struct {
	ai llm.Client
}

func NewClassifier(ai llm.Client) *Classifier {
	return &Classifier{ai: ai}
}

// Classify sends the reply to the model and parses its tagged verdict. The
// error return covers only model transport failures; any response shape,
// including garbage, still yields an intent.
func (c *Classifier) Classify(ctx context.Context, subject, body string) (model.ReplyIntent, error) {
	content := fmt.Sprintf("Subject : %s\n%s", subject, body)
	resp, err := c.ai.Chat(ctx, classifySystemPrompt, content)
	if err != nil {
		return model.ReplyIntent{}, eris.Wrap(err, "outreach: classify reply")
	}
	return ParseIntent(resp), nil
}

// ParseIntent maps a tagged model response to an intent. It never fails: a
// response matching no known tag, or a malformed one, is IntentUnparseable
// with the raw text preserved in Reason.
func ParseIntent(resp string) model.ReplyIntent {
	lower := strings.ToLower(strings.TrimSpace(resp))

	switch {
	case strings.HasPrefix(lower, "<follow-up-reply>"):
		return model.ReplyIntent{Kind: model.IntentQuestion}

	case strings.HasPrefix(lower, "<follow-up-cancel>"):
		return model.ReplyIntent{Kind: model.IntentDeclined}

	case strings.HasPrefix(lower, "<init-call>"):
		if phone, ok := extractPhone(lower); ok {
			return model.ReplyIntent{Kind: model.IntentEscalateCall, Phone: phone}
		}
		return model.ReplyIntent{
			Kind:   model.IntentUnparseable,
			Reason: "call requested without a valid phone number: " + strings.TrimSpace(resp),
		}
	}

	if m := errPattern.FindStringSubmatch(resp); m != nil {
		return model.ReplyIntent{Kind: model.IntentUnparseable, Reason: strings.TrimSpace(m[1])}
	}
	return model.ReplyIntent{Kind: model.IntentUnparseable, Reason: strings.TrimSpace(resp)}
}

// extractPhone pulls and normalizes the number following an <init-call> tag.
// Spaces and hyphens are stripped; the remainder must be digits with an
// optional leading plus.
func extractPhone(lower string) (string, bool) {
	m := phonePattern.FindStringSubmatch(lower)
	if m == nil {
		return "", false
	}

	phone := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(m[1]))
	digits := strings.TrimPrefix(phone, "+")
	if digits == "" {
		return "", false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return phone, true
}
