package model

import "time"

// RunStatus tracks a campaign run through its lifecycle.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one execution of the discovery-and-outreach pipeline for a campaign.
type Run struct {
	ID        string          `json:"id"`
	Campaign  CampaignContext `json:"campaign"`
	Status    RunStatus       `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OutreachStatus tracks one outreach attempt's persisted state.
type OutreachStatus string

const (
	OutreachStatusSent       OutreachStatus = "sent"
	OutreachStatusFollowedUp OutreachStatus = "followed_up"
	OutreachStatusReplied    OutreachStatus = "replied"
	OutreachStatusExpired    OutreachStatus = "expired"
)

// OutreachRecord is the persisted view of one outreach attempt.
type OutreachRecord struct {
	AttemptID string         `json:"attempt_id"`
	RunID     string         `json:"run_id"`
	Recipient string         `json:"recipient"`
	Subject   string         `json:"subject"`
	Status    OutreachStatus `json:"status"`
	Intent    string         `json:"intent,omitempty"`
	Phone     string         `json:"phone,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
