package history

import (
	"context"
	"time"

	"mosaic-hq/bento/pkg/layout"
)

// Run is one recorded validation of one field.
type Run struct {
	// ID is the unique run identifier (UUID).
	ID string `json:"id"`

	// RecordedAt is when the run was recorded.
	RecordedAt time.Time `json:"recorded_at"`

	// Space, Entry, and Field identify the validated field.
	Space string `json:"space"`
	Entry string `json:"entry"`
	Field string `json:"field"`

	// ContentType is the content type of the entry owning the field.
	ContentType string `json:"content_type"`

	// LayoutType is the layout the field was validated against.
	LayoutType string `json:"layout_type"`

	// EntryCount is the number of linked entries at validation time.
	EntryCount int `json:"entry_count"`

	// Valid reports whether the arrangement satisfied the layout.
	Valid bool `json:"valid"`

	// Duration is how long the validation took, including entry
	// resolution.
	Duration time.Duration `json:"duration"`

	// Violations holds the violations found, empty when Valid.
	Violations []layout.Violation `json:"violations,omitempty"`
}

// Query filters run records. Zero-value fields are ignored.
type Query struct {
	// Space, Entry, and Field restrict to a specific field reference.
	Space string
	Entry string
	Field string

	// LayoutType restricts to runs against a specific layout.
	LayoutType string

	// OnlyInvalid restricts to runs that found violations.
	OnlyInvalid bool

	// StartTime and EndTime bound RecordedAt.
	StartTime *time.Time
	EndTime   *time.Time

	// Limit and Offset paginate results. Zero Limit means no limit.
	Limit  int
	Offset int
}

// Storage defines the interface for run storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a run record.
	Store(ctx context.Context, run *Run) error

	// Query retrieves runs matching the filters, newest first.
	// Returns an empty slice if no runs match.
	Query(ctx context.Context, query *Query) ([]*Run, error)

	// Count returns the number of runs matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes runs matching the filters and returns how many
	// were removed. Used for retention enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Matches reports whether a run satisfies the query filters, ignoring
// pagination. Storage backends without native filtering use it directly.
func (q *Query) Matches(run *Run) bool {
	if q.Space != "" && run.Space != q.Space {
		return false
	}
	if q.Entry != "" && run.Entry != q.Entry {
		return false
	}
	if q.Field != "" && run.Field != q.Field {
		return false
	}
	if q.LayoutType != "" && run.LayoutType != q.LayoutType {
		return false
	}
	if q.OnlyInvalid && run.Valid {
		return false
	}
	if q.StartTime != nil && run.RecordedAt.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && run.RecordedAt.After(*q.EndTime) {
		return false
	}
	return true
}
