package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mosaic-hq/bento/pkg/history"
	"mosaic-hq/bento/pkg/layout"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/history.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "history.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, history.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return history.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return history.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return history.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return history.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return history.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return history.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// Store persists a run record to the database.
func (s *SQLiteStorage) Store(ctx context.Context, run *history.Run) error {
	violations, err := json.Marshal(run.Violations)
	if err != nil {
		return history.NewStorageError("sqlite", "marshal_violations", err)
	}

	query := `
		INSERT INTO runs (
			id, recorded_at,
			space, entry, field,
			content_type, layout_type, entry_count,
			valid, duration_ms, violations
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.RecordedAt,
		run.Space, run.Entry, run.Field,
		run.ContentType, run.LayoutType, run.EntryCount,
		run.Valid, run.Duration.Milliseconds(), string(violations),
	)
	if err != nil {
		return history.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves runs matching the query filters, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *history.Query) ([]*history.Run, error) {
	where, args := buildWhere(query)

	sqlQuery := `
		SELECT id, recorded_at, space, entry, field,
		       content_type, layout_type, entry_count,
		       valid, duration_ms, violations
		FROM runs
	` + where + " ORDER BY recorded_at DESC"

	if query.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", query.Limit)
		if query.Offset > 0 {
			sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, history.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	results := []*history.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, history.NewStorageError("sqlite", "scan", err)
		}
		results = append(results, run)
	}
	if err := rows.Err(); err != nil {
		return nil, history.NewStorageError("sqlite", "query", err)
	}

	return results, nil
}

// Count returns the number of runs matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *history.Query) (int64, error) {
	where, args := buildWhere(query)

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs"+where, args...).Scan(&count)
	if err != nil {
		return 0, history.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Delete removes runs matching the query filters.
func (s *SQLiteStorage) Delete(ctx context.Context, query *history.Query) (int64, error) {
	where, args := buildWhere(query)

	result, err := s.db.ExecContext(ctx, "DELETE FROM runs"+where, args...)
	if err != nil {
		return 0, history.NewStorageError("sqlite", "delete", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, history.NewStorageError("sqlite", "delete", err)
	}

	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return history.NewStorageError("sqlite", "close", err)
	}
	return nil
}

// buildWhere translates query filters into a WHERE clause.
func buildWhere(query *history.Query) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if query.Space != "" {
		conds = append(conds, "space = ?")
		args = append(args, query.Space)
	}
	if query.Entry != "" {
		conds = append(conds, "entry = ?")
		args = append(args, query.Entry)
	}
	if query.Field != "" {
		conds = append(conds, "field = ?")
		args = append(args, query.Field)
	}
	if query.LayoutType != "" {
		conds = append(conds, "layout_type = ?")
		args = append(args, query.LayoutType)
	}
	if query.OnlyInvalid {
		conds = append(conds, "valid = 0")
	}
	if query.StartTime != nil {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		conds = append(conds, "recorded_at <= ?")
		args = append(args, *query.EndTime)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// scanRun reads one row into a Run.
func scanRun(rows *sql.Rows) (*history.Run, error) {
	var run history.Run
	var durationMs int64
	var violations sql.NullString

	err := rows.Scan(
		&run.ID, &run.RecordedAt, &run.Space, &run.Entry, &run.Field,
		&run.ContentType, &run.LayoutType, &run.EntryCount,
		&run.Valid, &durationMs, &violations,
	)
	if err != nil {
		return nil, err
	}

	run.Duration = time.Duration(durationMs) * time.Millisecond

	if violations.Valid && violations.String != "" && violations.String != "null" {
		var vs []layout.Violation
		if err := json.Unmarshal([]byte(violations.String), &vs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal violations: %w", err)
		}
		run.Violations = vs
	}

	return &run, nil
}
