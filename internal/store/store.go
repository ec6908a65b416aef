// Package store persists pipeline output between CLI runs.
//
// SQLite is the snapshot store: canonical events and predicted edges are
// written after each run and read back for reporting. The core packages
// never touch it; persistence is strictly a caller concern.
//
// Store is safe for concurrent use. The underlying sql.DB handles
// connection pooling; each exported method is a single transaction.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/dealgraph/dealgraph/pkg/errors"
	"github.com/dealgraph/dealgraph/pkg/events"
)

// Store handles persistence of canonical events and predicted edges.
type Store struct {
	db *sql.DB
}

// Open creates (or opens) a SQLite store at the given path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}

	// WAL for concurrent reads while the watch loop writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.WrapIO("open", path, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.WrapIO("migrate", path, err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS canonical_events (
		id TEXT PRIMARY KEY,
		source_company TEXT NOT NULL,
		target_company TEXT,
		deal_type TEXT NOT NULL,
		deal_value REAL,
		deal_date DATETIME,
		description TEXT,
		source TEXT NOT NULL,
		discovered_at DATETIME NOT NULL,
		confidence_score REAL NOT NULL,
		source_count INTEGER NOT NULL,
		conflicts_resolved INTEGER NOT NULL,
		resolution_metadata TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_events_discovered ON canonical_events(discovered_at DESC);
	CREATE INDEX IF NOT EXISTS idx_events_source_company ON canonical_events(source_company);
	CREATE INDEX IF NOT EXISTS idx_events_deal_type ON canonical_events(deal_type);

	CREATE TABLE IF NOT EXISTS predicted_edges (
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		relationship_type TEXT NOT NULL,
		confidence_score REAL NOT NULL,
		reasoning TEXT,
		predicted_at DATETIME NOT NULL,
		PRIMARY KEY (source_id, target_id)
	);

	CREATE INDEX IF NOT EXISTS idx_edges_score ON predicted_edges(confidence_score DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveEvents upserts canonical events in a single transaction. Re-resolving
// the same group produces a new event ID, so the previous row for the same
// deal is replaced by ID only when IDs collide; history stays otherwise.
func (s *Store) SaveEvents(ctx context.Context, evts []events.CanonicalEvent) (int, error) {
	if len(evts) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.WrapIO("write", "canonical_events", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO canonical_events (
			id, source_company, target_company, deal_type, deal_value,
			deal_date, description, source, discovered_at,
			confidence_score, source_count, conflicts_resolved,
			resolution_metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			confidence_score = excluded.confidence_score,
			source_count = excluded.source_count,
			conflicts_resolved = excluded.conflicts_resolved,
			resolution_metadata = excluded.resolution_metadata
	`)
	if err != nil {
		return 0, errors.WrapIO("write", "canonical_events", err)
	}
	defer stmt.Close()

	var saved int
	for i := range evts {
		e := &evts[i]
		metadata, err := json.Marshal(e.Resolution)
		if err != nil {
			return saved, errors.WrapIO("write", "canonical_events", err)
		}
		if _, err := stmt.ExecContext(ctx,
			e.ID,
			e.SourceCompany,
			nullString(e.TargetCompany),
			string(e.DealType),
			nullFloat(e.DealValue),
			nullTime(e.DealDate),
			e.Description,
			e.Source,
			e.DiscoveredAt,
			e.ConfidenceScore,
			e.SourceCount,
			e.ConflictsResolved,
			string(metadata),
		); err != nil {
			return saved, errors.WrapIO("write", "canonical_events", err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.WrapIO("write", "canonical_events", err)
	}
	return saved, nil
}

// Events returns stored canonical events ordered by discovery time, newest
// first. A non-positive limit returns everything.
func (s *Store) Events(ctx context.Context, limit int) ([]events.CanonicalEvent, error) {
	query := `
		SELECT id, source_company, target_company, deal_type, deal_value,
			deal_date, description, source, discovered_at,
			confidence_score, source_count, conflicts_resolved,
			resolution_metadata
		FROM canonical_events
		ORDER BY discovered_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapIO("read", "canonical_events", err)
	}
	defer rows.Close()

	var out []events.CanonicalEvent
	for rows.Next() {
		var e events.CanonicalEvent
		var target sql.NullString
		var value sql.NullFloat64
		var date sql.NullTime
		var metadata string
		if err := rows.Scan(
			&e.ID, &e.SourceCompany, &target, &e.DealType, &value,
			&date, &e.Description, &e.Source, &e.DiscoveredAt,
			&e.ConfidenceScore, &e.SourceCount, &e.ConflictsResolved,
			&metadata,
		); err != nil {
			return nil, errors.WrapIO("read", "canonical_events", err)
		}
		if target.Valid {
			e.TargetCompany = &target.String
		}
		if value.Valid {
			e.DealValue = &value.Float64
		}
		if date.Valid {
			d := date.Time.UTC()
			e.DealDate = &d
		}
		if metadata != "" {
			if err := json.Unmarshal([]byte(metadata), &e.Resolution); err != nil {
				return nil, errors.WrapIO("read", "canonical_events", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveEdges replaces the predicted-edge snapshot. Predictions are derived
// data, so each run overwrites the previous set wholesale.
func (s *Store) SaveEdges(ctx context.Context, edges []events.Edge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapIO("write", "predicted_edges", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM predicted_edges"); err != nil {
		return errors.WrapIO("write", "predicted_edges", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO predicted_edges (
			source_id, target_id, relationship_type,
			confidence_score, reasoning, predicted_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.WrapIO("write", "predicted_edges", err)
	}
	defer stmt.Close()

	for i := range edges {
		e := &edges[i]
		reasoning, err := json.Marshal(e.Reasoning)
		if err != nil {
			return errors.WrapIO("write", "predicted_edges", err)
		}
		predictedAt := e.PredictedDate
		if predictedAt.IsZero() {
			predictedAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx,
			e.SourceID,
			e.TargetID,
			string(e.Type),
			e.ConfidenceScore,
			string(reasoning),
			predictedAt,
		); err != nil {
			return errors.WrapIO("write", "predicted_edges", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapIO("write", "predicted_edges", err)
	}
	return nil
}

// Edges returns the stored prediction snapshot ordered by score, highest
// first.
func (s *Store) Edges(ctx context.Context) ([]events.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_id, target_id, relationship_type,
			confidence_score, reasoning, predicted_at
		FROM predicted_edges
		ORDER BY confidence_score DESC, source_id, target_id
	`)
	if err != nil {
		return nil, errors.WrapIO("read", "predicted_edges", err)
	}
	defer rows.Close()

	var out []events.Edge
	for rows.Next() {
		var e events.Edge
		var reasoning string
		if err := rows.Scan(
			&e.SourceID, &e.TargetID, &e.Type,
			&e.ConfidenceScore, &reasoning, &e.PredictedDate,
		); err != nil {
			return nil, errors.WrapIO("read", "predicted_edges", err)
		}
		if reasoning != "" {
			if err := json.Unmarshal([]byte(reasoning), &e.Reasoning); err != nil {
				return nil, errors.WrapIO("read", "predicted_edges", err)
			}
		}
		e.IsPredicted = true
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
