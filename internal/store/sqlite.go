package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/matchbox-ai/outreach-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	campaign   TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS creators (
	id         TEXT NOT NULL,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	username   TEXT NOT NULL,
	record     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
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
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_creators_run_id ON creators(run_id);
CREATE INDEX IF NOT EXISTS idx_outreach_log_run_id ON outreach_log(run_id);
CREATE INDEX IF NOT EXISTS idx_outreach_log_status ON outreach_log(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, campaign model.CampaignContext) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	campaignJSON, err := json.Marshal(campaign)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal campaign")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, campaign, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(campaignJSON), string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Campaign:  campaign,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, campaign, status, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)

	var r model.Run
	var campaignJSON, status string
	err := row.Scan(&r.ID, &campaignJSON, &status, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get run")
	}
	if err := json.Unmarshal([]byte(campaignJSON), &r.Campaign); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal campaign")
	}
	r.Status = model.RunStatus(status)
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, campaign, status, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var campaignJSON, status string
		if err := rows.Scan(&r.ID, &campaignJSON, &status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if err := json.Unmarshal([]byte(campaignJSON), &r.Campaign); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal campaign")
		}
		r.Status = model.RunStatus(status)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveCreators(ctx context.Context, runID string, creators []model.CreatorRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save creators")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, c := range creators {
		recordJSON, err := json.Marshal(c)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal creator %s", c.Username)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO creators (id, run_id, username, record, created_at) VALUES (?, ?, ?, ?, ?)`,
			c.ID, runID, c.Username, string(recordJSON), now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert creator %s", c.Username)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit save creators")
}

func (s *SQLiteStore) ListCreators(ctx context.Context, runID string) ([]model.CreatorRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM creators WHERE run_id = ? ORDER BY username`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list creators")
	}
	defer rows.Close()

	var creators []model.CreatorRecord
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan creator")
		}
		var c model.CreatorRecord
		if err := json.Unmarshal([]byte(recordJSON), &c); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal creator")
		}
		creators = append(creators, c)
	}
	return creators, eris.Wrap(rows.Err(), "sqlite: list creators iterate")
}

func (s *SQLiteStore) LogOutreach(ctx context.Context, rec model.OutreachRecord) error {
	now := time.Now().UTC()
	status := rec.Status
	if status == "" {
		status = model.OutreachStatusSent
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outreach_log (attempt_id, run_id, recipient, subject, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.AttemptID, rec.RunID, rec.Recipient, rec.Subject, string(status), now, now,
	)
	return eris.Wrapf(err, "sqlite: log outreach %s", rec.AttemptID)
}

func (s *SQLiteStore) UpdateOutreachStatus(ctx context.Context, attemptID string, status model.OutreachStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE outreach_log SET status = ?, updated_at = ? WHERE attempt_id = ?`,
		string(status), time.Now().UTC(), attemptID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update outreach status %s", attemptID)
	}
	return checkRowsAffected(res, "outreach attempt", attemptID)
}

func (s *SQLiteStore) RecordReply(ctx context.Context, attemptID string, intent model.ReplyIntent) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE outreach_log SET status = ?, intent = ?, phone = ?, updated_at = ? WHERE attempt_id = ?`,
		string(model.OutreachStatusReplied), string(intent.Kind), intent.Phone, time.Now().UTC(), attemptID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: record reply %s", attemptID)
	}
	return checkRowsAffected(res, "outreach attempt", attemptID)
}

func (s *SQLiteStore) ListOutreach(ctx context.Context, runID string) ([]model.OutreachRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT attempt_id, run_id, recipient, subject, status, intent, phone, created_at, updated_at
		 FROM outreach_log WHERE run_id = ? ORDER BY created_at`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list outreach")
	}
	defer rows.Close()

	var recs []model.OutreachRecord
	for rows.Next() {
		var rec model.OutreachRecord
		var status string
		var intent, phone sql.NullString
		if err := rows.Scan(&rec.AttemptID, &rec.RunID, &rec.Recipient, &rec.Subject, &status, &intent, &phone, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan outreach record")
		}
		rec.Status = model.OutreachStatus(status)
		rec.Intent = intent.String
		rec.Phone = phone.String
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list outreach iterate")
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s %s", kind, id)
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", kind, id)
	}
	return nil
}
