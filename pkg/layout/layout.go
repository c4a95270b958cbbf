package layout

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config describes one layout: which slots exist, where they sit in the
// linked-entry list, and what the entry list as a whole must look like.
//
// LayoutType, TargetContentType, and ValidateField are selector metadata.
// The registry uses them to pick the right config for an editor field; the
// validator itself never reads them.
type Config struct {
	// LayoutType identifies the layout variant (e.g., "bento-1-2").
	// Informational only.
	LayoutType string `yaml:"layout_type" json:"layout_type"`

	// TargetContentType is the content type of the record that carries the
	// validated field.
	TargetContentType string `yaml:"target_content_type" json:"target_content_type"`

	// ValidateField is the field whose linked entries this layout governs.
	ValidateField string `yaml:"validate_field" json:"validate_field"`

	// Positions are the slot rules, in declaration order. Violation
	// ordering follows this order, so it must be stable.
	Positions Positions `yaml:"positions" json:"positions"`

	// Limits are the aggregate constraints on the entry list.
	Limits Limits `yaml:"limits" json:"limits"`
}

// Limits contains the aggregate constraints of a layout.
type Limits struct {
	// TotalEntries is the exact number of linked entries the layout
	// expects. Required; zero means the field must be empty.
	TotalEntries int `yaml:"total_entries" json:"total_entries"`

	// TypeLimits caps how often a content type may occur across the whole
	// entry list, independent of slot placement. Optional.
	TypeLimits TypeLimits `yaml:"type_limits,omitempty" json:"type_limits,omitempty"`
}

// PositionRule is one named slot: an index into the linked-entry list and
// the set of content types allowed there.
type PositionRule struct {
	// Slot is the slot name (the mapping key in YAML).
	Slot string `yaml:"-" json:"slot"`

	// Index is the position in the linked-entry list this slot occupies.
	// Indices need not be contiguous or sorted.
	Index int `yaml:"index" json:"index"`

	// AllowedTypes lists the content type identifiers accepted in this
	// slot, in declaration order. Empty means no type is accepted.
	AllowedTypes []string `yaml:"allowed_types" json:"allowed_types"`
}

// Positions is an ordered list of slot rules. In YAML it is written as a
// mapping from slot name to rule; unmarshalling preserves the mapping's
// declaration order so that violation ordering is deterministic.
type Positions []PositionRule

// UnmarshalYAML decodes a YAML mapping of slot name to rule, keeping the
// declaration order of the keys.
func (p *Positions) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("positions must be a mapping of slot name to rule (line %d)", node.Line)
	}

	out := make(Positions, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		val := node.Content[i+1]

		if seen[key.Value] {
			return fmt.Errorf("duplicate slot %q (line %d)", key.Value, key.Line)
		}
		seen[key.Value] = true

		var rule PositionRule
		if err := val.Decode(&rule); err != nil {
			return fmt.Errorf("slot %q: %w", key.Value, err)
		}
		rule.Slot = key.Value
		out = append(out, rule)
	}

	*p = out
	return nil
}

// MarshalYAML encodes the positions back into a mapping, preserving order.
func (p Positions) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, rule := range p {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: rule.Slot}
		val := &yaml.Node{}
		if err := val.Encode(struct {
			Index        int      `yaml:"index"`
			AllowedTypes []string `yaml:"allowed_types"`
		}{rule.Index, rule.AllowedTypes}); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

// TypeLimit caps the occurrence count of one content type.
type TypeLimit struct {
	// Type is the content type identifier the limit applies to.
	Type string `yaml:"-" json:"type"`

	// Max is the maximum allowed occurrence count across all entries.
	Max int `yaml:"-" json:"max"`
}

// TypeLimits is an ordered list of per-type occurrence limits. In YAML it
// is a mapping from content type identifier to maximum count; declaration
// order is preserved for deterministic violation ordering.
type TypeLimits []TypeLimit

// UnmarshalYAML decodes a YAML mapping of content type to limit, keeping
// the declaration order of the keys.
func (t *TypeLimits) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("type_limits must be a mapping of content type to count (line %d)", node.Line)
	}

	out := make(TypeLimits, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		val := node.Content[i+1]

		if seen[key.Value] {
			return fmt.Errorf("duplicate type limit %q (line %d)", key.Value, key.Line)
		}
		seen[key.Value] = true

		var max int
		if err := val.Decode(&max); err != nil {
			return fmt.Errorf("type limit %q: %w", key.Value, err)
		}
		out = append(out, TypeLimit{Type: key.Value, Max: max})
	}

	*t = out
	return nil
}

// MarshalYAML encodes the limits back into a mapping, preserving order.
func (t TypeLimits) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, tl := range t {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: tl.Type}
		val := &yaml.Node{}
		if err := val.Encode(tl.Max); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

// ParseConfig parses a single layout configuration from YAML.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse layout config: %w", err)
	}
	return &cfg, nil
}

// Rule returns the rule for the named slot, or nil if the layout has no
// such slot.
func (c *Config) Rule(slot string) *PositionRule {
	for i := range c.Positions {
		if c.Positions[i].Slot == slot {
			return &c.Positions[i]
		}
	}
	return nil
}
