// Package index maintains a rebuildable SQLite summary of the JSON
// history records for fast aggregate queries. It stores metadata only,
// never content snapshots; the per-artifact record files stay
// authoritative and the index can be dropped and rebuilt at any time.
package index

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver.

	"github.com/highbeam/spectrail/internal/history"
)

// DB wraps the SQLite connection holding the edit-entry index.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the index database at dbPath with WAL mode and a
// 5-second busy timeout, then runs any pending migrations.
func Open(dbPath string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("check journal mode: %w", err)
	}
	if journalMode != "wal" {
		_ = db.Close()
		return nil, fmt.Errorf("expected WAL journal mode, got %q", journalMode)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Rebuild drops every indexed row and re-ingests all records under the
// store's history root in one transaction, so readers never observe a
// half-built index.
func (d *DB) Rebuild(store *history.Store) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM edit_entries`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear index: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO edit_entries
		(artifact_path, entry_id, timestamp, source, lines_added, lines_removed, version_tag)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	err = store.Walk(func(relPath string, l *history.Log) error {
		for _, e := range l.Entries {
			_, err := stmt.Exec(
				relPath,
				e.ID,
				e.Timestamp.UTC().Format(time.RFC3339),
				string(e.Source),
				e.LinesAdded,
				e.LinesRemoved,
				e.VersionTag,
			)
			if err != nil {
				return fmt.Errorf("index entry %s of %s: %w", e.ID, relPath, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	return nil
}

// EntryCount returns the number of indexed edit entries.
func (d *DB) EntryCount() (int64, error) {
	var count int64
	err := d.db.QueryRow(`SELECT COUNT(*) FROM edit_entries`).Scan(&count)
	return count, err
}

// SourceCount aggregates entries and line churn for one edit source.
type SourceCount struct {
	Source       string
	Entries      int64
	LinesAdded   int64
	LinesRemoved int64
}

// SourceBreakdown returns per-source totals, busiest source first.
func (d *DB) SourceBreakdown() ([]SourceCount, error) {
	rows, err := d.db.Query(`
		SELECT source, COUNT(*), SUM(lines_added), SUM(lines_removed)
		FROM edit_entries
		GROUP BY source
		ORDER BY COUNT(*) DESC, source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceCount
	for rows.Next() {
		var sc SourceCount
		if err := rows.Scan(&sc.Source, &sc.Entries, &sc.LinesAdded, &sc.LinesRemoved); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ArtifactChurn aggregates edit activity for one artifact path.
type ArtifactChurn struct {
	Path         string
	Entries      int64
	LinesAdded   int64
	LinesRemoved int64
	LastEdit     string
}

// TopArtifacts returns the most-edited artifacts, capped at limit.
func (d *DB) TopArtifacts(limit int) ([]ArtifactChurn, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.db.Query(`
		SELECT artifact_path, COUNT(*), SUM(lines_added), SUM(lines_removed), MAX(timestamp)
		FROM edit_entries
		GROUP BY artifact_path
		ORDER BY COUNT(*) DESC, artifact_path
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ArtifactChurn
	for rows.Next() {
		var ac ArtifactChurn
		if err := rows.Scan(&ac.Path, &ac.Entries, &ac.LinesAdded, &ac.LinesRemoved, &ac.LastEdit); err != nil {
			return nil, err
		}
		out = append(out, ac)
	}
	return out, rows.Err()
}
