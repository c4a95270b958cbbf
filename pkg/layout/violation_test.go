package layout

import (
	"encoding/json"
	"testing"
)

func TestViolation_Messages(t *testing.T) {
	tests := []struct {
		name      string
		violation Violation
		want      string
	}{
		{
			name:      "count mismatch",
			violation: CountMismatch(3, 0),
			want:      "Expected 3 entries, but found 0.",
		},
		{
			name:      "missing at position",
			violation: MissingAtPosition(2, "rightColumnBottomCard"),
			want:      "Missing entry at position 2 (rightColumnBottomCard).",
		},
		{
			name:      "unresolved type",
			violation: UnresolvedType(1, "rightColumnTopCard"),
			want:      "Could not determine content type for entry at position 1 (rightColumnTopCard).",
		},
		{
			name:      "disallowed type",
			violation: DisallowedType(1, "rightColumnTopCard", "CardTypeA", []string{"CardTypeB", "CardTypeC"}),
			want:      "Invalid content type 'CardTypeA' at position 1 (rightColumnTopCard). Allowed types: CardTypeB, CardTypeC.",
		},
		{
			name:      "type limit exceeded",
			violation: TypeLimitExceeded("CardTypeA", 1, 2),
			want:      "Too many entries of type 'CardTypeA'. Expected maximum 1, but found 2.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.violation.Message(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResult_ValidDerivedFromViolations(t *testing.T) {
	empty := Result{}
	if !empty.Valid() {
		t.Error("empty result must be valid")
	}

	failed := Result{Violations: []Violation{CountMismatch(1, 0)}}
	if failed.Valid() {
		t.Error("result with violations must be invalid")
	}
}

func TestViolation_JSONCarriesKindAndFields(t *testing.T) {
	v := DisallowedType(1, "rightColumnTopCard", "CardTypeA", []string{"CardTypeB"})

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal violation: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal violation: %v", err)
	}

	if decoded["kind"] != "disallowed_type" {
		t.Errorf("expected kind %q, got %v", "disallowed_type", decoded["kind"])
	}
	if decoded["slot"] != "rightColumnTopCard" {
		t.Errorf("expected slot %q, got %v", "rightColumnTopCard", decoded["slot"])
	}
	if decoded["content_type"] != "CardTypeA" {
		t.Errorf("expected content type %q, got %v", "CardTypeA", decoded["content_type"])
	}
}
