package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/longregen/dailybrief/internal/ports"
)

const DefaultQueryTimeout = 30 * time.Second

// Schema creates the audit table when it does not exist yet.
const Schema = `
	CREATE TABLE IF NOT EXISTS audit_records (
		id           TEXT PRIMARY KEY,
		run_id       TEXT,
		category     TEXT NOT NULL,
		candidate_id TEXT,
		generation   INTEGER,
		payload      TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// execer is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresSink inserts one row per record.
type PostgresSink struct {
	db     execer
	ids    ports.IDGenerator
	closer func()
}

// NewPostgresSink opens a pool and makes sure the table exists.
func NewPostgresSink(ctx context.Context, url string, ids ports.IDGenerator) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &PostgresSink{db: pool, ids: ids, closer: pool.Close}

	schemaCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := s.EnsureSchema(schemaCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create audit_records: %w", err)
	}
	return nil
}

func (s *PostgresSink) Record(ctx context.Context, r ports.AuditRecord) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	id := s.ids.GenerateRecordID()

	query := `
		INSERT INTO audit_records (
			id, run_id, category, candidate_id, generation, payload, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	_, err := s.db.Exec(ctx, query,
		id,
		nullString(r.RunID),
		r.Category,
		nullString(r.CandidateID),
		r.Generation,
		r.Payload,
		r.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert audit record: %w", err)
	}

	return "postgres:audit_records/" + id, nil
}

func (s *PostgresSink) Close() error {
	if s.closer != nil {
		s.closer()
	}
	return nil
}

// withTimeout wraps a context with a default query timeout if not already set
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, DefaultQueryTimeout)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
