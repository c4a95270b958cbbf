package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the run history schema.
const Schema = `
-- Validation run records
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    recorded_at TIMESTAMP NOT NULL,

    -- Field reference
    space TEXT NOT NULL,
    entry TEXT NOT NULL,
    field TEXT NOT NULL,

    -- Validation context
    content_type TEXT NOT NULL,
    layout_type TEXT NOT NULL,
    entry_count INTEGER NOT NULL,

    -- Outcome
    valid BOOLEAN NOT NULL,
    duration_ms INTEGER NOT NULL,
    violations TEXT
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_runs_recorded_at ON runs(recorded_at);
CREATE INDEX IF NOT EXISTS idx_runs_field ON runs(space, entry, field);
CREATE INDEX IF NOT EXISTS idx_runs_layout_type ON runs(layout_type);
CREATE INDEX IF NOT EXISTS idx_runs_valid ON runs(valid);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
