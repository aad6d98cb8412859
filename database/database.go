package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/mager/makampitch/config"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS pitch_runs (
	id         SERIAL PRIMARY KEY,
	mbid       TEXT NOT NULL,
	module     TEXT NOT NULL,
	version    TEXT NOT NULL,
	status     TEXT NOT NULL,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL
)`

// Run statuses.
const (
	StatusDone   = "done"
	StatusFailed = "failed"
)

// Run is one execution of a pitch module for a recording.
type Run struct {
	MBID      string
	Module    string
	Version   string
	Status    string
	Error     string
	CreatedAt time.Time
}

// RunLog records module runs. A RunLog without a database drops records.
type RunLog struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// ProvideDatabase provides a postgres client, or nil when no database is configured.
func ProvideDatabase(logger *zap.SugaredLogger, cfg config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("no database configured, run log disabled")
		return nil, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Errorw("Failed to open database connection", "error", err)
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		logger.Errorw("Failed to ping database", "error", err)
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		logger.Errorw("Failed to create schema", "error", err)
		return nil, err
	}

	return db, nil
}

// ProvideRunLog provides the run log backed by db.
func ProvideRunLog(logger *zap.SugaredLogger, db *sql.DB) *RunLog {
	return &RunLog{db: db, log: logger}
}

// Record stores a run.
func (l *RunLog) Record(ctx context.Context, run Run) error {
	if l == nil || l.db == nil {
		return nil
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO pitch_runs (mbid, module, version, status, error, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		run.MBID, run.Module, run.Version, run.Status, sql.NullString{String: run.Error, Valid: run.Error != ""}, run.CreatedAt,
	)
	if err != nil {
		l.log.Errorw("Failed to record run", "mbid", run.MBID, "module", run.Module, "error", err)
	}
	return err
}

// Latest returns the most recent run of module for a recording.
func (l *RunLog) Latest(ctx context.Context, mbid, module string) (*Run, error) {
	if l == nil || l.db == nil {
		return nil, sql.ErrNoRows
	}
	row := l.db.QueryRowContext(ctx, `
		SELECT mbid, module, version, status, COALESCE(error, ''), created_at
		FROM pitch_runs
		WHERE mbid = $1 AND module = $2
		ORDER BY created_at DESC
		LIMIT 1`, mbid, module)

	var run Run
	if err := row.Scan(&run.MBID, &run.Module, &run.Version, &run.Status, &run.Error, &run.CreatedAt); err != nil {
		return nil, err
	}
	return &run, nil
}

// Failed builds a failed run record for err.
func Failed(mbid, module, version string, err error) Run {
	return Run{MBID: mbid, Module: module, Version: version, Status: StatusFailed, Error: err.Error()}
}

// Done builds a successful run record.
func Done(mbid, module, version string) Run {
	return Run{MBID: mbid, Module: module, Version: version, Status: StatusDone}
}

var Options = ProvideDatabase
