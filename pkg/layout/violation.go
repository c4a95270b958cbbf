package layout

import (
	"fmt"
	"strings"
)

// ViolationKind categorizes a rule violation.
type ViolationKind string

const (
	// KindCountMismatch reports an entry count different from the
	// layout's expected total.
	KindCountMismatch ViolationKind = "count_mismatch"

	// KindMissingAtPosition reports a slot whose index has no entry.
	KindMissingAtPosition ViolationKind = "missing_at_position"

	// KindUnresolvedType reports an entry whose content type could not be
	// determined.
	KindUnresolvedType ViolationKind = "unresolved_type"

	// KindDisallowedType reports an entry whose content type is not
	// accepted by its slot.
	KindDisallowedType ViolationKind = "disallowed_type"

	// KindTypeLimitExceeded reports a content type occurring more often
	// than its aggregate limit allows.
	KindTypeLimitExceeded ViolationKind = "type_limit_exceeded"
)

// Violation is a single rule violation, tagged by kind. Only the fields
// relevant to the kind are populated; Message renders the human-readable
// sentence, so text formatting stays at the presentation boundary.
type Violation struct {
	// Kind is the violation category.
	Kind ViolationKind `json:"kind" yaml:"kind"`

	// Expected is the expected entry count (count_mismatch) or the
	// configured maximum (type_limit_exceeded).
	Expected int `json:"expected,omitempty" yaml:"expected,omitempty"`

	// Actual is the observed entry count (count_mismatch) or the observed
	// occurrence tally (type_limit_exceeded).
	Actual int `json:"actual,omitempty" yaml:"actual,omitempty"`

	// Index is the slot index the violation refers to.
	Index int `json:"index,omitempty" yaml:"index,omitempty"`

	// Slot is the slot name the violation refers to.
	Slot string `json:"slot,omitempty" yaml:"slot,omitempty"`

	// ContentType is the content type identifier involved.
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`

	// Allowed lists the slot's allowed types (disallowed_type only).
	Allowed []string `json:"allowed,omitempty" yaml:"allowed,omitempty"`
}

// CountMismatch reports that the entry list length differs from the
// layout's expected total.
func CountMismatch(expected, actual int) Violation {
	return Violation{Kind: KindCountMismatch, Expected: expected, Actual: actual}
}

// MissingAtPosition reports that a slot's index has no entry.
func MissingAtPosition(index int, slot string) Violation {
	return Violation{Kind: KindMissingAtPosition, Index: index, Slot: slot}
}

// UnresolvedType reports that the content type of the entry at a slot's
// index could not be determined.
func UnresolvedType(index int, slot string) Violation {
	return Violation{Kind: KindUnresolvedType, Index: index, Slot: slot}
}

// DisallowedType reports that the entry at a slot's index has a content
// type the slot does not accept.
func DisallowedType(index int, slot, contentType string, allowed []string) Violation {
	return Violation{
		Kind:        KindDisallowedType,
		Index:       index,
		Slot:        slot,
		ContentType: contentType,
		Allowed:     allowed,
	}
}

// TypeLimitExceeded reports that a content type occurs more often than its
// aggregate limit allows.
func TypeLimitExceeded(contentType string, limit, actual int) Violation {
	return Violation{
		Kind:        KindTypeLimitExceeded,
		ContentType: contentType,
		Expected:    limit,
		Actual:      actual,
	}
}

// Message renders the violation as a human-readable sentence. The wording
// is part of the editor-facing contract; change it only together with the
// surfaces that display it.
func (v Violation) Message() string {
	switch v.Kind {
	case KindCountMismatch:
		return fmt.Sprintf("Expected %d entries, but found %d.", v.Expected, v.Actual)
	case KindMissingAtPosition:
		return fmt.Sprintf("Missing entry at position %d (%s).", v.Index, v.Slot)
	case KindUnresolvedType:
		return fmt.Sprintf("Could not determine content type for entry at position %d (%s).", v.Index, v.Slot)
	case KindDisallowedType:
		return fmt.Sprintf("Invalid content type '%s' at position %d (%s). Allowed types: %s.",
			v.ContentType, v.Index, v.Slot, strings.Join(v.Allowed, ", "))
	case KindTypeLimitExceeded:
		return fmt.Sprintf("Too many entries of type '%s'. Expected maximum %d, but found %d.",
			v.ContentType, v.Expected, v.Actual)
	default:
		return fmt.Sprintf("Unknown violation kind %q.", string(v.Kind))
	}
}

// Result is the outcome of one validation run.
type Result struct {
	// Violations lists every detected rule violation, in deterministic
	// order: count check first, then slots in declaration order, then
	// type limits in declaration order.
	Violations []Violation `json:"violations"`
}

// Valid reports whether the run found no violations. It is always derived
// from the violation list; there is no independently settable flag.
func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// Messages returns the rendered message for each violation, in order.
func (r Result) Messages() []string {
	if len(r.Violations) == 0 {
		return nil
	}
	msgs := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		msgs[i] = v.Message()
	}
	return msgs
}
