package config

import "time"

// Config is the root configuration for the bento service.
// It is loaded from a YAML file, with defaults applied for any fields
// left unset, and can be overridden by BENTO_* environment variables.
type Config struct {
	// Server contains the HTTP server configuration.
	Server ServerConfig `yaml:"server"`

	// Layouts contains the layout registry configuration.
	Layouts LayoutsConfig `yaml:"layouts"`

	// Entries contains the content API client configuration.
	Entries EntriesConfig `yaml:"entries"`

	// History contains the validation run history configuration.
	History HistoryConfig `yaml:"history"`

	// Revalidation contains the background revalidation configuration.
	Revalidation RevalidationConfig `yaml:"revalidation"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// ListenAddress is the address the server binds to.
	// Default: 127.0.0.1:8080
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request on a
	// kept-alive connection.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is how long graceful shutdown waits for in-flight
	// requests.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds the handling of a single request, including
	// any entry fetches it triggers.
	// Default: 15s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// AuthToken, when set, requires requests to carry it as a bearer
	// token. Empty disables authentication.
	AuthToken string `yaml:"auth_token"`

	// CORS contains cross-origin settings for browser-based editors.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS settings.
type CORSConfig struct {
	// Enabled turns CORS header handling on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists origins allowed to call the API.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// LayoutsConfig contains layout registry settings.
type LayoutsConfig struct {
	// Dir is the directory holding layout YAML files.
	// Default: ./layouts
	Dir string `yaml:"dir"`

	// Watch enables hot reloading when layout files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a reload after a file
	// change.
	// Default: 250ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// EntriesConfig contains content API client settings.
type EntriesConfig struct {
	// BaseURL is the content API base URL. Required when the server must
	// fetch entries itself.
	BaseURL string `yaml:"base_url"`

	// Token is the bearer token for the content API. Optional.
	Token string `yaml:"token"`

	// Timeout is the per-request timeout.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the retry count for transient fetch failures.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`
}

// HistoryConfig contains validation run history settings.
type HistoryConfig struct {
	// Enabled turns run recording on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "memory" or "sqlite".
	// Default: sqlite
	Backend string `yaml:"backend"`

	// SQLite contains settings for the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention contains pruning settings.
	Retention RetentionConfig `yaml:"retention"`

	// Query contains read-side settings.
	Query QueryConfig `yaml:"query"`
}

// SQLiteConfig contains sqlite storage settings.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: data/history.db
	Path string `yaml:"path"`

	// MaxOpenConns limits open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns limits idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long a locked database is retried.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains history pruning settings.
type RetentionConfig struct {
	// Days is the maximum age of kept runs. Zero disables age pruning.
	// Default: 90
	Days int `yaml:"days"`

	// MaxRecords caps the number of kept runs. Zero disables the cap.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// Schedule is the cron expression for the pruning job.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`
}

// QueryConfig contains history query settings.
type QueryConfig struct {
	// DefaultLimit is the page size when the caller does not specify one.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit caps the page size a caller may request.
	// Default: 1000
	MaxLimit int `yaml:"max_limit"`
}

// RevalidationConfig contains background revalidation settings.
type RevalidationConfig struct {
	// SweepSchedule is the cron expression for revalidating all tracked
	// fields. Empty disables the sweep.
	SweepSchedule string `yaml:"sweep_schedule"`
}

// TelemetryConfig contains logging and metrics settings.
type TelemetryConfig struct {
	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level"`

	// Format is the output format: json or text.
	// Default: json
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled turns the metrics endpoint on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: /metrics
	Path string `yaml:"path"`
}
