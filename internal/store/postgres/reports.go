package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sentalign/sentalign/internal/aligner"
	"github.com/sentalign/sentalign/pkg/align"
)

// SaveBuild persists one completed alignment build under buildID: the
// aggregate report row plus one resolved_spans row per sentence outcome
// (including sentences that aligned cleanly, unlike [align.AlignmentReport]'s
// own Details slice which only carries non-ok entries).
//
// SaveBuild is not transactional across the two tables beyond what a single
// pgx batch provides; a failure while inserting spans leaves the aggregate
// report row in place without its per-sentence breakdown.
func (s *Store) SaveBuild(ctx context.Context, buildID string, report align.AlignmentReport, outcomes []aligner.Outcome) error {
	const insertReport = `
		INSERT INTO alignment_reports
		    (id, num_sentences, aligned, unaligned, warnings, methods_local, methods_llm)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
		    num_sentences = EXCLUDED.num_sentences,
		    aligned       = EXCLUDED.aligned,
		    unaligned     = EXCLUDED.unaligned,
		    warnings      = EXCLUDED.warnings,
		    methods_local = EXCLUDED.methods_local,
		    methods_llm   = EXCLUDED.methods_llm`

	if _, err := s.pool.Exec(ctx, insertReport,
		buildID,
		report.NumSentences,
		report.Aligned,
		report.Unaligned,
		report.Warnings,
		report.Methods.Local,
		report.Methods.LLM,
	); err != nil {
		return fmt.Errorf("postgres store: save report: %w", err)
	}

	batch := &pgx.Batch{}
	const insertSpan = `
		INSERT INTO resolved_spans
		    (report_id, sentence_idx, text, start_ms, end_ms, score, note, status, method, start_idx, end_idx, has_idx)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (report_id, sentence_idx) DO UPDATE SET
		    text      = EXCLUDED.text,
		    start_ms  = EXCLUDED.start_ms,
		    end_ms    = EXCLUDED.end_ms,
		    score     = EXCLUDED.score,
		    note      = EXCLUDED.note,
		    status    = EXCLUDED.status,
		    method    = EXCLUDED.method,
		    start_idx = EXCLUDED.start_idx,
		    end_idx   = EXCLUDED.end_idx,
		    has_idx   = EXCLUDED.has_idx`

	for _, o := range outcomes {
		var startMS, endMS, startIdx, endIdx int64
		var score float64
		var note, method string
		var hasIdx bool
		if o.Span != nil {
			startMS, endMS = o.Span.StartMS, o.Span.EndMS
			score = o.Span.Quality.Score
			note = o.Span.Quality.Note
			method = string(o.Span.Method)
			startIdx, endIdx = int64(o.Span.StartIdx), int64(o.Span.EndIdx)
			hasIdx = o.Span.HasIdx
		}
		batch.Queue(insertSpan,
			buildID,
			o.Sentence.Idx,
			truncateText(o.Sentence.Text, 120),
			startMS,
			endMS,
			score,
			note,
			string(o.Status),
			method,
			startIdx,
			endIdx,
			hasIdx,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range outcomes {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres store: save spans: %w", err)
		}
	}
	return nil
}

// BuildRecord is one saved alignment build: its aggregate report and the
// full per-sentence span breakdown, ordered by sentence index.
type BuildRecord struct {
	ID        string
	CreatedAt time.Time
	Report    align.AlignmentReport
	Spans     []align.ResolvedSpan
}

// GetBuild loads a previously saved build by ID. Returns pgx.ErrNoRows if
// no build with that ID exists.
func (s *Store) GetBuild(ctx context.Context, buildID string) (*BuildRecord, error) {
	const reportQ = `
		SELECT num_sentences, aligned, unaligned, warnings, methods_local, methods_llm, created_at
		FROM   alignment_reports
		WHERE  id = $1`

	rec := &BuildRecord{ID: buildID}
	row := s.pool.QueryRow(ctx, reportQ, buildID)
	if err := row.Scan(
		&rec.Report.NumSentences,
		&rec.Report.Aligned,
		&rec.Report.Unaligned,
		&rec.Report.Warnings,
		&rec.Report.Methods.Local,
		&rec.Report.Methods.LLM,
		&rec.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("postgres store: get build: %w", err)
	}

	const spansQ = `
		SELECT sentence_idx, text, start_ms, end_ms, score, note, status, method, start_idx, end_idx, has_idx
		FROM   resolved_spans
		WHERE  report_id = $1
		ORDER  BY sentence_idx`

	rows, err := s.pool.Query(ctx, spansQ, buildID)
	if err != nil {
		return nil, fmt.Errorf("postgres store: get spans: %w", err)
	}
	spans, details, err := collectSpans(rows)
	if err != nil {
		return nil, err
	}
	rec.Spans = spans
	rec.Report.Details = details

	return rec, nil
}

// ListBuildIDs returns the IDs of the most recently created builds, newest
// first, capped at limit.
func (s *Store) ListBuildIDs(ctx context.Context, limit int) ([]string, error) {
	const q = `
		SELECT id
		FROM   alignment_reports
		ORDER  BY created_at DESC
		LIMIT  $1`

	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres store: list builds: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres store: scan build ids: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// collectSpans scans resolved_spans rows into both a ResolvedSpan slice
// (full per-sentence breakdown, index-aligned with sentence order) and a
// Detail slice restricted to non-ok statuses, matching how a live build's
// [align.AlignmentReport.Details] is populated.
func collectSpans(rows pgx.Rows) ([]align.ResolvedSpan, []align.Detail, error) {
	defer rows.Close()

	var spans []align.ResolvedSpan
	var details []align.Detail
	for rows.Next() {
		var (
			idx                int
			text, status, meth string
			startMS, endMS     int64
			score              float64
			note               string
			startIdx, endIdx   int64
			hasIdx             bool
		)
		if err := rows.Scan(&idx, &text, &startMS, &endMS, &score, &note, &status, &meth, &startIdx, &endIdx, &hasIdx); err != nil {
			return nil, nil, fmt.Errorf("postgres store: scan span row: %w", err)
		}

		span := align.ResolvedSpan{
			StartMS:  startMS,
			EndMS:    endMS,
			Quality:  align.Quality{Score: score, Note: note},
			Status:   align.Status(status),
			Method:   align.Method(meth),
			StartIdx: int(startIdx),
			EndIdx:   int(endIdx),
			HasIdx:   hasIdx,
		}
		spans = append(spans, span)

		if span.Status != align.StatusOK {
			details = append(details, align.Detail{
				Idx:      idx,
				Text:     text,
				Status:   span.Status,
				Score:    score,
				Method:   span.Method,
				HasSpan:  hasIdx,
				StartIdx: int(startIdx),
				EndIdx:   int(endIdx),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("postgres store: iterate span rows: %w", err)
	}
	return spans, details, nil
}

// truncateText mirrors align.truncateText (unexported in pkg/align) for the
// text snapshot stored alongside each span.
func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
