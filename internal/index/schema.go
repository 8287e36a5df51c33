package index

// schemaVersion is the current schema version. Increment when adding
// migrations.
const schemaVersion = 1

// migrations maps version numbers to SQL statements that bring the schema
// from (version-1) to (version).
var migrations = map[int]string{
	1: `
-- One row per edit entry ingested from the JSON history records.
-- Metadata only; content snapshots stay in the records.
CREATE TABLE IF NOT EXISTS edit_entries (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	artifact_path TEXT    NOT NULL,
	entry_id      TEXT    NOT NULL UNIQUE,
	timestamp     TEXT    NOT NULL,
	source        TEXT    NOT NULL,
	lines_added   INTEGER NOT NULL DEFAULT 0,
	lines_removed INTEGER NOT NULL DEFAULT 0,
	version_tag   TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_edit_entries_path ON edit_entries(artifact_path);
CREATE INDEX IF NOT EXISTS idx_edit_entries_source ON edit_entries(source);
CREATE INDEX IF NOT EXISTS idx_edit_entries_timestamp ON edit_entries(timestamp);
`,
}
