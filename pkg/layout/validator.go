package layout

// ResolveFunc maps an opaque linked entry to its content type identifier.
// It returns ok == false when the type cannot be determined (malformed or
// not-yet-resolved record). The validator treats entries only through this
// function; no other attribute is read.
type ResolveFunc[T any] func(item T) (contentType string, ok bool)

// Validate checks items against cfg and returns every violation found.
//
// All checks run and accumulate; an earlier failure never suppresses a
// later one, except that a slot whose entry is missing or unresolvable
// skips its remaining per-slot checks. The one short-circuit is the
// all-empty case: a layout expecting zero entries validates an empty list
// immediately, without running slot or type-limit checks, even if slots
// are declared. Callers depend on that exact behavior; do not extend it to
// other cases.
//
// items may be nil; it is treated as an empty list. A slot index outside
// [0, len(items)) — including a negative index from a malformed config —
// always reports the slot as missing.
func Validate[T any](cfg *Config, items []T, resolve ResolveFunc[T]) Result {
	var violations []Violation

	total := cfg.Limits.TotalEntries
	if total == 0 && len(items) == 0 {
		return Result{}
	}

	if len(items) != total {
		violations = append(violations, CountMismatch(total, len(items)))
	}

	for _, rule := range cfg.Positions {
		if rule.Index < 0 || rule.Index >= len(items) {
			violations = append(violations, MissingAtPosition(rule.Index, rule.Slot))
			continue
		}

		contentType, ok := resolve(items[rule.Index])
		if !ok {
			violations = append(violations, UnresolvedType(rule.Index, rule.Slot))
			continue
		}

		if !containsType(rule.AllowedTypes, contentType) {
			violations = append(violations, DisallowedType(rule.Index, rule.Slot, contentType, rule.AllowedTypes))
		}
	}

	if len(cfg.Limits.TypeLimits) > 0 {
		tally := make(map[string]int, len(items))
		for _, item := range items {
			if contentType, ok := resolve(item); ok {
				tally[contentType]++
			}
		}

		for _, limit := range cfg.Limits.TypeLimits {
			if count := tally[limit.Type]; count > limit.Max {
				violations = append(violations, TypeLimitExceeded(limit.Type, limit.Max, count))
			}
		}
	}

	return Result{Violations: violations}
}

func containsType(allowed []string, contentType string) bool {
	for _, t := range allowed {
		if t == contentType {
			return true
		}
	}
	return false
}
