package outreach

import (
	"context"

	"go.uber.org/zap"

	"github.com/matchbox-ai/outreach-cli/internal/model"
	"github.com/matchbox-ai/outreach-cli/pkg/vapi"
)

// Escalator hands a creator conversation off to a voice call. The assistant
// prompt update and the call are a strict two-step sequence: an update
// failure aborts before any dial attempt.
type Escalator struct {
	client        vapi.Client
	assistantID   string
	phoneNumberID string
	tmpl          Templates
}

func NewEscalator(client vapi.Client, assistantID, phoneNumberID string, tmpl Templates) *Escalator {
	return &Escalator{
		client:        client,
		assistantID:   assistantID,
		phoneNumberID: phoneNumberID,
		tmpl:          tmpl,
	}
}

// Escalate renders the negotiation script for this campaign and creator,
// pushes it to the voice assistant, then places the outbound call.
func (e *Escalator) Escalate(ctx context.Context, campaign model.CampaignContext, creator model.CreatorRecord, phone string) (model.CallSession, error) {
	script, err := e.tmpl.RenderScript(campaign, creator)
	if err != nil {
		return model.CallSession{}, &EscalationError{Stage: "update", Err: err}
	}

	if err := e.client.UpdateAssistantPrompt(ctx, e.assistantID, script); err != nil {
		return model.CallSession{}, &EscalationError{Stage: "update", Err: err}
	}
	zap.L().Info("voice assistant updated",
		zap.String("assistant_id", e.assistantID),
		zap.String("creator", creator.Username),
	)

	call, err := e.client.CreateCall(ctx, vapi.CallRequest{
		AssistantID:   e.assistantID,
		PhoneNumberID: e.phoneNumberID,
		Customer:      vapi.Customer{Number: phone},
	})
	if err != nil {
		return model.CallSession{}, &EscalationError{Stage: "call", Err: err}
	}

	zap.L().Info("call placed",
		zap.String("call_id", call.ID),
		zap.String("phone", phone),
	)
	return model.CallSession{
		CallID:      call.ID,
		Phone:       phone,
		AssistantID: e.assistantID,
		Creator:     creator,
		Campaign:    campaign,
	}, nil
}
