package model

// IntentKind enumerates the recognized reply intents.
type IntentKind string

const (
	// IntentQuestion means the creator replied with a query; keep the thread alive.
	IntentQuestion IntentKind = "ask_question"
	// IntentDeclined means the creator turned the offer down.
	IntentDeclined IntentKind = "declined"
	// IntentEscalateCall means the creator shared a phone number for a call.
	IntentEscalateCall IntentKind = "escalate_call"
	// IntentUnparseable means the classifier could not map the reply to a tag.
	IntentUnparseable IntentKind = "unparseable"
)

// ReplyIntent is the classified meaning of one creator reply. Phone is set
// only for IntentEscalateCall, Reason only for IntentUnparseable.
type ReplyIntent struct {
	Kind   IntentKind
	Phone  string
	Reason string
}

// CallSession records one placed negotiation call. Sessions are created only
// after a successful escalate_call intent and are never retried automatically.
type CallSession struct {
	CallID      string
	Phone       string
	AssistantID string
	Creator     CreatorRecord
	Campaign    CampaignContext
}
