package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchbox-ai/outreach-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_RunLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	campaign := model.CampaignContext{
		Title:    "FitFuel Launch",
		Category: "fitness",
	}
	run, err := st.CreateRun(ctx, campaign)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, got.Status)
	assert.Equal(t, "FitFuel Launch", got.Campaign.Title)
	assert.Equal(t, "fitness", got.Campaign.Category)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSQLite_UpdateRunStatus_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateRunStatus(context.Background(), "missing", model.RunStatusFailed)
	assert.Error(t, err)
}

func TestSQLite_ListRuns_FilterByStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	r1, err := st.CreateRun(ctx, model.CampaignContext{Category: "fitness"})
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, model.CampaignContext{Category: "food"})
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, r1.ID, model.RunStatusComplete))

	complete, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, r1.ID, complete[0].ID)

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLite_CreatorsRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.CampaignContext{Category: "fitness"})
	require.NoError(t, err)

	creators := []model.CreatorRecord{
		{ID: "u1", Username: "alexfit", PublicEmail: "alex@example.com", FollowerCount: 12000},
		{ID: "u2", Username: "bmoves", PublicEmail: "b@example.com", FollowerCount: 9000},
	}
	require.NoError(t, st.SaveCreators(ctx, run.ID, creators))

	got, err := st.ListCreators(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Ordered by username.
	assert.Equal(t, "alexfit", got[0].Username)
	assert.Equal(t, 12000, got[0].FollowerCount)
	assert.Equal(t, "bmoves", got[1].Username)
}

func TestSQLite_SaveCreators_UpsertsOnRerun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.CampaignContext{Category: "fitness"})
	require.NoError(t, err)

	require.NoError(t, st.SaveCreators(ctx, run.ID, []model.CreatorRecord{{ID: "u1", Username: "old"}}))
	require.NoError(t, st.SaveCreators(ctx, run.ID, []model.CreatorRecord{{ID: "u1", Username: "new"}}))

	got, err := st.ListCreators(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Username)
}

func TestSQLite_OutreachLogLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := model.OutreachRecord{
		AttemptID: "att-1",
		RunID:     "run-1",
		Recipient: "alex@example.com",
		Subject:   "Collaboration",
	}
	require.NoError(t, st.LogOutreach(ctx, rec))

	require.NoError(t, st.UpdateOutreachStatus(ctx, "att-1", model.OutreachStatusFollowedUp))
	require.NoError(t, st.RecordReply(ctx, "att-1", model.ReplyIntent{
		Kind:  model.IntentEscalateCall,
		Phone: "+919876543210",
	}))

	recs, err := st.ListOutreach(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, model.OutreachStatusReplied, recs[0].Status)
	assert.Equal(t, "escalate_call", recs[0].Intent)
	assert.Equal(t, "+919876543210", recs[0].Phone)
}

func TestSQLite_RecordReply_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.RecordReply(context.Background(), "missing", model.ReplyIntent{Kind: model.IntentQuestion})
	assert.Error(t, err)
}
