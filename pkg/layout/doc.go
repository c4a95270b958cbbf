// Package layout provides the slot-layout validation core for Bento.
//
// A layout assigns named slots to fixed positions in a field's linked-entry
// list. Each slot declares which content types it accepts, and the layout as
// a whole declares an exact expected entry count plus optional per-type
// occurrence limits. Validate checks a sequence of resolved entries against
// one layout configuration and reports every violation it finds.
//
// # Core Types
//
// Config: one layout configuration (slot rules plus aggregate limits)
//
// PositionRule: a named slot with its index and allowed content types
//
// Violation: a single rule violation, tagged by kind with structured fields
//
// Result: the outcome of a validation run; Valid is derived from the
// violation list and is never set independently
//
// # Basic Usage
//
//	cfg, err := layout.ParseConfig(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result := layout.Validate(cfg, entries, entry.ContentTypeOf)
//	for _, v := range result.Violations {
//	    fmt.Println(v.Message())
//	}
//
// # Purity
//
// Validate is a pure, synchronous function of its arguments. It performs no
// I/O, reads no ambient state, and never mutates its inputs, so concurrent
// calls need no coordination and results are safe to memoize by input
// value. Entry records stay opaque to this package: the only attribute read
// is the content type identifier returned by the injected resolve function.
package layout
