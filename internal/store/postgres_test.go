package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchbox-ai/outreach-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "queued", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), model.CampaignContext{Category: "fitness"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	campaignJSON, err := json.Marshal(model.CampaignContext{Title: "FitFuel Launch", Category: "fitness"})
	require.NoError(t, err)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, campaign, status, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "campaign", "status", "created_at", "updated_at"}).
			AddRow("run-1", campaignJSON, "running", now, now))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.Equal(t, "FitFuel Launch", run.Campaign.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, campaign, status, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("failed", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRunStatus(context.Background(), "missing", model.RunStatusFailed)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveCreators_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`ON CONFLICT \(run_id, id\) DO UPDATE`).
		WithArgs("u1", "run-1", "alexfit", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveCreators(context.Background(), "run-1", []model.CreatorRecord{
		{ID: "u1", Username: "alexfit"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecordReply(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE outreach_log SET status`).
		WithArgs("replied", "escalate_call", "+919876543210", pgxmock.AnyArg(), "att-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.RecordReply(context.Background(), "att-1", model.ReplyIntent{
		Kind:  model.IntentEscalateCall,
		Phone: "+919876543210",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListOutreach(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	intent := "ask_question"
	var noPhone *string
	mock.ExpectQuery(`SELECT attempt_id, run_id, recipient, subject, status, intent, phone, created_at, updated_at`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"attempt_id", "run_id", "recipient", "subject", "status", "intent", "phone", "created_at", "updated_at",
		}).AddRow("att-1", "run-1", "alex@example.com", "Collaboration", "replied", &intent, noPhone, now, now))

	recs, err := s.ListOutreach(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, model.OutreachStatusReplied, recs[0].Status)
	assert.Equal(t, "ask_question", recs[0].Intent)
	assert.Empty(t, recs[0].Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
