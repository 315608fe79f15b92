// Package postgres provides optional PostgreSQL-backed persistence for
// completed alignment builds: the aggregate [align.AlignmentReport] and
// the full per-sentence [align.ResolvedSpan] breakdown behind it, so a
// caller can audit or re-render a past build without rerunning the
// aligner.
//
// Usage:
//
//	store, err := postgres.NewStore(ctx, dsn)
//	if err != nil { … }
//	defer store.Close()
//
//	_ = store.SaveBuild(ctx, buildID, report, outcomes)
//	rec, _ := store.GetBuild(ctx, buildID)
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlAlignmentReports = `
CREATE TABLE IF NOT EXISTS alignment_reports (
    id             TEXT         PRIMARY KEY,
    num_sentences  INTEGER      NOT NULL,
    aligned        INTEGER      NOT NULL,
    unaligned      INTEGER      NOT NULL,
    warnings       INTEGER      NOT NULL,
    methods_local  INTEGER      NOT NULL DEFAULT 0,
    methods_llm    INTEGER      NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_alignment_reports_created_at
    ON alignment_reports (created_at);
`

const ddlResolvedSpans = `
CREATE TABLE IF NOT EXISTS resolved_spans (
    report_id    TEXT         NOT NULL REFERENCES alignment_reports (id) ON DELETE CASCADE,
    sentence_idx INTEGER      NOT NULL,
    text         TEXT         NOT NULL DEFAULT '',
    start_ms     BIGINT       NOT NULL DEFAULT 0,
    end_ms       BIGINT       NOT NULL DEFAULT 0,
    score        DOUBLE PRECISION NOT NULL DEFAULT 0,
    note         TEXT         NOT NULL DEFAULT '',
    status       TEXT         NOT NULL,
    method       TEXT         NOT NULL DEFAULT '',
    start_idx    INTEGER      NOT NULL DEFAULT 0,
    end_idx      INTEGER      NOT NULL DEFAULT 0,
    has_idx      BOOLEAN      NOT NULL DEFAULT false,
    PRIMARY KEY (report_id, sentence_idx)
);

CREATE INDEX IF NOT EXISTS idx_resolved_spans_status
    ON resolved_spans (status);
`

// Migrate creates or ensures all required tables and indexes exist. It is
// idempotent and safe to call on every application start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{ddlAlignmentReports, ddlResolvedSpans}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return nil
}
