/*
Package sqlite provides SQLite-backed persistence for the claim engine's two
durable concerns: the published rate history and the decision audit log.

PURPOSE:
  The core engine is stateless; everything durable lives here.
  - rate_segments: the benchmark publication history. Append-only; the
    in-memory rates.Table is rebuilt from it at startup and after every
    publication.
  - decisions: an immutable audit row per Decide call, carrying the full
    serialized decision (verdicts, traces, per-component rows) so any
    reported figure can be explained later.

APPEND-ONLY ENFORCEMENT:
  Neither table is ever UPDATEd or DELETEd. A wrong rate publication is
  corrected by publishing a new segment; a wrong decision is superseded by
  re-deciding the claim, leaving both rows in the log.

WAL MODE:
  The database opens with WAL so concurrent readers don't block the single
  writer.

SEE ALSO:
  - rates: the in-memory table these rows hydrate
  - api: records a decision row per decide request
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/kestrel/claims-engine/calendar"
	"github.com/kestrel/claims-engine/claims"
	"github.com/kestrel/claims-engine/limitation"
	"github.com/kestrel/claims-engine/rates"
)

// ErrDecisionNotFound is returned when a decision id has no audit row.
var ErrDecisionNotFound = errors.New("decision not found")

// Store persists rate publications and decision audit rows.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rate_segments (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		term                TEXT NOT NULL,
		effective_from      TEXT NOT NULL,
		annual_rate_percent TEXT NOT NULL,
		created_at          TEXT NOT NULL,
		UNIQUE(term, effective_from)
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id                TEXT PRIMARY KEY,
		claim_id          TEXT NOT NULL,
		cutoff            TEXT NOT NULL,
		status            TEXT NOT NULL,
		general_outcome   TEXT,
		execution_outcome TEXT,
		total_interest    TEXT NOT NULL,
		total_amount      TEXT NOT NULL,
		record_json       TEXT NOT NULL,
		created_at        TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_claim ON decisions(claim_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RATE SEGMENTS
// =============================================================================

// AppendRateSegment records one benchmark publication. Publications for the
// same term and date are rejected by the unique index; corrections are new
// publications at a later date.
func (s *Store) AppendRateSegment(ctx context.Context, term rates.Term, from calendar.Date, annualRatePercent decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rate_segments (term, effective_from, annual_rate_percent, created_at)
		VALUES (?, ?, ?, ?)`,
		string(term), from.String(), annualRatePercent.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("append rate segment: %w", err)
	}
	return nil
}

// LoadRateTable rebuilds the in-memory table from the publication history.
// Per-term effective_to boundaries are derived from publication order, the
// same way the YAML seed loader derives them.
func (s *Store) LoadRateTable(ctx context.Context) (*rates.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT term, effective_from, annual_rate_percent
		FROM rate_segments
		ORDER BY term, effective_from`)
	if err != nil {
		return nil, fmt.Errorf("load rate segments: %w", err)
	}
	defer rows.Close()

	var segments []rates.Segment
	for rows.Next() {
		var term, from, rate string
		if err := rows.Scan(&term, &from, &rate); err != nil {
			return nil, fmt.Errorf("scan rate segment: %w", err)
		}

		effectiveFrom, err := calendar.Parse(from)
		if err != nil {
			return nil, fmt.Errorf("rate segment date %q: %w", from, err)
		}
		ratePercent, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("rate segment rate %q: %w", rate, err)
		}

		// Close the previous open segment of the same term.
		if n := len(segments); n > 0 && segments[n-1].Term == rates.Term(term) {
			segments[n-1].EffectiveTo = effectiveFrom
		}
		segments = append(segments, rates.Segment{
			Term:              rates.Term(term),
			EffectiveFrom:     effectiveFrom,
			AnnualRatePercent: ratePercent,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rates.NewTable(segments)
}

// =============================================================================
// DECISION AUDIT LOG
// =============================================================================

// DecisionRecord is one immutable audit row. RecordJSON carries the full
// serialized decision including traces.
type DecisionRecord struct {
	ID               string
	ClaimID          string
	Cutoff           string
	Status           string
	GeneralOutcome   string
	ExecutionOutcome string
	TotalInterest    string
	TotalAmount      string
	RecordJSON       string
	CreatedAt        string
}

// AppendDecision records one decide outcome. Append-only.
func (s *Store) AppendDecision(ctx context.Context, d *claims.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertDecision(ctx, s.db, d)
}

// AppendDecisions records a batch of audit rows in one transaction. Either
// every decision lands in the log or none does; a mid-batch failure never
// leaves a partial prefix behind.
func (s *Store) AppendDecisions(ctx context.Context, decisions []*claims.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin decision batch: %w", err)
	}
	for _, d := range decisions {
		if err := insertDecision(ctx, tx, d); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decision batch: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertDecision(ctx context.Context, db execer, d *claims.Decision) error {
	record, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("serialize decision: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO decisions
			(id, claim_id, cutoff, status, general_outcome, execution_outcome,
			 total_interest, total_amount, record_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.ClaimID, d.Cutoff.String(), string(d.Status),
		outcomeOf(d.General), outcomeOf(d.Execution),
		d.TotalInterest.String(), d.TotalAmount.String(),
		string(record), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("append decision: %w", err)
	}
	return nil
}

// ListDecisions returns audit rows, newest first. Empty claimID lists all.
func (s *Store) ListDecisions(ctx context.Context, claimID string, limit int) ([]DecisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, claim_id, cutoff, status,
		       COALESCE(general_outcome, ''), COALESCE(execution_outcome, ''),
		       total_interest, total_amount, record_json, created_at
		FROM decisions`
	args := []any{}
	if claimID != "" {
		query += ` WHERE claim_id = ?`
		args = append(args, claimID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var records []DecisionRecord
	for rows.Next() {
		var r DecisionRecord
		if err := rows.Scan(&r.ID, &r.ClaimID, &r.Cutoff, &r.Status,
			&r.GeneralOutcome, &r.ExecutionOutcome,
			&r.TotalInterest, &r.TotalAmount, &r.RecordJSON, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetDecision returns one audit row by id.
func (s *Store) GetDecision(ctx context.Context, id string) (*DecisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, claim_id, cutoff, status,
		       COALESCE(general_outcome, ''), COALESCE(execution_outcome, ''),
		       total_interest, total_amount, record_json, created_at
		FROM decisions WHERE id = ?`, id)

	var r DecisionRecord
	err := row.Scan(&r.ID, &r.ClaimID, &r.Cutoff, &r.Status,
		&r.GeneralOutcome, &r.ExecutionOutcome,
		&r.TotalInterest, &r.TotalAmount, &r.RecordJSON, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDecisionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get decision: %w", err)
	}
	return &r, nil
}

func outcomeOf(v *limitation.Verdict) any {
	if v == nil {
		return nil
	}
	return string(v.Outcome)
}
