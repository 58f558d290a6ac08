// Package store persists campaign runs, discovered creators, and the
// outreach log. Two backends are provided: SQLite for single-operator use
// and Postgres for shared deployments.
package store

import (
	"context"

	"github.com/matchbox-ai/outreach-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the outreach pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, campaign model.CampaignContext) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Creators
	SaveCreators(ctx context.Context, runID string, creators []model.CreatorRecord) error
	ListCreators(ctx context.Context, runID string) ([]model.CreatorRecord, error)

	// Outreach log
	LogOutreach(ctx context.Context, rec model.OutreachRecord) error
	UpdateOutreachStatus(ctx context.Context, attemptID string, status model.OutreachStatus) error
	RecordReply(ctx context.Context, attemptID string, intent model.ReplyIntent) error
	ListOutreach(ctx context.Context, runID string) ([]model.OutreachRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
