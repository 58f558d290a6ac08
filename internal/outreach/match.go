package outreach

import (
	"strings"

	"github.com/matchbox-ai/outreach-cli/pkg/mailbox"
)

// matchesReply decides whether a message from the recipient is a reply to
// this attempt. Threading headers are authoritative; the subject-similarity
// fallback exists because not all mail clients preserve them, and it is an
// acknowledged heuristic with possible false positives and negatives.
func matchesReply(msg *mailbox.Message, originalSubject, originalMessageID string) bool {
	if originalMessageID != "" {
		if headerContainsID(msg.InReplyTo, originalMessageID) || headerContainsID(msg.References, originalMessageID) {
			return true
		}
	}

	original := strings.ToLower(strings.TrimSpace(originalSubject))
	if original == "" {
		return false
	}

	subject := strings.ToLower(msg.Subject)
	clean := normalizeSubject(subject)

	if strings.Contains(subject, "re:") && strings.Contains(clean, original) {
		return true
	}
	if strings.Contains(clean, original) && len(clean) >= len(original)*7/10 {
		return true
	}
	return false
}

// headerContainsID checks whether a threading header, which may carry several
// space-separated message IDs, includes the given one.
func headerContainsID(header, messageID string) bool {
	for _, id := range strings.Fields(header) {
		if id == messageID {
			return true
		}
	}
	return false
}

// normalizeSubject strips the common reply/forward prefixes.
func normalizeSubject(subject string) string {
	clean := strings.TrimSpace(subject)
	for {
		stripped := clean
		for _, prefix := range []string{"re:", "fwd:", "fw:"} {
			if strings.HasPrefix(stripped, prefix) {
				stripped = strings.TrimSpace(stripped[len(prefix):])
			}
		}
		if stripped == clean {
			return clean
		}
		clean = stripped
	}
}
