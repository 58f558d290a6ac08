package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/matchbox-ai/outreach-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	campaign   JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS creators (
	id         TEXT NOT NULL,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	username   TEXT NOT NULL,
	record     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, id)
);

CREATE TABLE IF NOT EXISTS outreach_log (
	attempt_id TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	recipient  TEXT NOT NULL,
	subject    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'sent',
	intent     TEXT,
	phone      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_creators_run_id ON creators(run_id);
CREATE INDEX IF NOT EXISTS idx_outreach_log_run_id ON outreach_log(run_id);
CREATE INDEX IF NOT EXISTS idx_outreach_log_status ON outreach_log(status);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, campaign model.CampaignContext) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	campaignJSON, err := json.Marshal(campaign)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal campaign")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, campaign, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, campaignJSON, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Campaign:  campaign,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, campaign, status, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)

	var r model.Run
	var campaignJSON []byte
	var status string
	err := row.Scan(&r.ID, &campaignJSON, &status, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get run")
	}
	if err := json.Unmarshal(campaignJSON, &r.Campaign); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal campaign")
	}
	r.Status = model.RunStatus(status)
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, campaign, status, created_at, updated_at FROM runs`
	var args []any

	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var campaignJSON []byte
		var status string
		if err := rows.Scan(&r.ID, &campaignJSON, &status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(campaignJSON, &r.Campaign); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal campaign")
		}
		r.Status = model.RunStatus(status)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveCreators(ctx context.Context, runID string, creators []model.CreatorRecord) error {
	now := time.Now().UTC()
	for _, c := range creators {
		recordJSON, err := json.Marshal(c)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal creator %s", c.Username)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO creators (id, run_id, username, record, created_at) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (run_id, id) DO UPDATE SET username = EXCLUDED.username, record = EXCLUDED.record`,
			c.ID, runID, c.Username, recordJSON, now,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert creator %s", c.Username)
		}
	}
	return nil
}

func (s *PostgresStore) ListCreators(ctx context.Context, runID string) ([]model.CreatorRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT record FROM creators WHERE run_id = $1 ORDER BY username`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list creators")
	}
	defer rows.Close()

	var creators []model.CreatorRecord
	for rows.Next() {
		var recordJSON []byte
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan creator")
		}
		var c model.CreatorRecord
		if err := json.Unmarshal(recordJSON, &c); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal creator")
		}
		creators = append(creators, c)
	}
	return creators, eris.Wrap(rows.Err(), "postgres: list creators iterate")
}

func (s *PostgresStore) LogOutreach(ctx context.Context, rec model.OutreachRecord) error {
	now := time.Now().UTC()
	status := rec.Status
	if status == "" {
		status = model.OutreachStatusSent
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO outreach_log (attempt_id, run_id, recipient, subject, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.AttemptID, rec.RunID, rec.Recipient, rec.Subject, string(status), now, now,
	)
	return eris.Wrapf(err, "postgres: log outreach %s", rec.AttemptID)
}

func (s *PostgresStore) UpdateOutreachStatus(ctx context.Context, attemptID string, status model.OutreachStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE outreach_log SET status = $1, updated_at = $2 WHERE attempt_id = $3`,
		string(status), time.Now().UTC(), attemptID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update outreach status %s", attemptID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("outreach attempt not found: %s", attemptID)
	}
	return nil
}

func (s *PostgresStore) RecordReply(ctx context.Context, attemptID string, intent model.ReplyIntent) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE outreach_log SET status = $1, intent = $2, phone = $3, updated_at = $4 WHERE attempt_id = $5`,
		string(model.OutreachStatusReplied), string(intent.Kind), intent.Phone, time.Now().UTC(), attemptID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: record reply %s", attemptID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("outreach attempt not found: %s", attemptID)
	}
	return nil
}

func (s *PostgresStore) ListOutreach(ctx context.Context, runID string) ([]model.OutreachRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT attempt_id, run_id, recipient, subject, status, intent, phone, created_at, updated_at
		 FROM outreach_log WHERE run_id = $1 ORDER BY created_at`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list outreach")
	}
	defer rows.Close()

	var recs []model.OutreachRecord
	for rows.Next() {
		var rec model.OutreachRecord
		var status string
		var intent, phone *string
		if err := rows.Scan(&rec.AttemptID, &rec.RunID, &rec.Recipient, &rec.Subject, &status, &intent, &phone, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan outreach record")
		}
		rec.Status = model.OutreachStatus(status)
		if intent != nil {
			rec.Intent = *intent
		}
		if phone != nil {
			rec.Phone = *phone
		}
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: list outreach iterate")
}
