package registry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"mosaic-hq/bento/pkg/layout"
)

// File is the on-disk shape of a layout configuration file.
type File struct {
	// Layouts holds the layout configurations declared in the file.
	Layouts []*layout.Config `yaml:"layouts"`
}

// Warning is a non-fatal lint finding for a loaded layout config.
type Warning struct {
	// File is the path of the file the finding refers to.
	File string

	// Layout is the layout_type of the offending config, if known.
	Layout string

	// Message describes the finding.
	Message string
}

// String renders the warning for logs and CLI output.
func (w Warning) String() string {
	if w.Layout == "" {
		return fmt.Sprintf("%s: %s", w.File, w.Message)
	}
	return fmt.Sprintf("%s: layout %q: %s", w.File, w.Layout, w.Message)
}

type selectorKey struct {
	contentType string
	field       string
}

// Registry holds the loaded layout configurations and answers selection
// queries. It is safe for concurrent use; Reload swaps the loaded set
// atomically and only on success.
type Registry struct {
	dir    string
	logger *slog.Logger

	mu       sync.RWMutex
	configs  []*layout.Config
	byTarget map[selectorKey]*layout.Config
	warnings []Warning
}

// Load reads every .yaml/.yml file in dir and builds a registry from the
// layouts they declare. Hidden files are skipped. Files that fail to parse
// make the whole load fail; lint findings do not.
func Load(dir string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		dir:    dir,
		logger: logger.With("component", "layout.registry"),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the layout directory. On any error the previously
// loaded configurations remain in effect.
func (r *Registry) Reload() error {
	configs, warnings, err := loadDir(r.dir)
	if err != nil {
		return err
	}

	byTarget := make(map[selectorKey]*layout.Config, len(configs))
	for _, cfg := range configs {
		key := selectorKey{cfg.TargetContentType, cfg.ValidateField}
		if _, exists := byTarget[key]; exists {
			warnings = append(warnings, Warning{
				Layout: cfg.LayoutType,
				Message: fmt.Sprintf("duplicate selector (%s, %s); first declaration wins",
					cfg.TargetContentType, cfg.ValidateField),
			})
			continue
		}
		byTarget[key] = cfg
	}

	r.mu.Lock()
	r.configs = configs
	r.byTarget = byTarget
	r.warnings = warnings
	r.mu.Unlock()

	r.logger.Info("layout registry loaded",
		"dir", r.dir,
		"layouts", len(configs),
		"warnings", len(warnings),
	)
	for _, w := range warnings {
		r.logger.Warn("layout config lint finding", "finding", w.String())
	}

	return nil
}

// Select returns the configuration declared for the given content type
// and field, if any.
func (r *Registry) Select(contentType, field string) (*layout.Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.byTarget[selectorKey{contentType, field}]
	return cfg, ok
}

// Configs returns the loaded configurations in file order.
func (r *Registry) Configs() []*layout.Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*layout.Config, len(r.configs))
	copy(out, r.configs)
	return out
}

// Warnings returns the lint findings from the most recent load.
func (r *Registry) Warnings() []Warning {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Warning, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Len returns the number of loaded configurations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.configs)
}

// loadDir reads all layout files in dir.
func loadDir(dir string) ([]*layout.Config, []Warning, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read layout directory %q: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var configs []*layout.Config
	var warnings []Warning
	for _, name := range names {
		path := filepath.Join(dir, name)
		fileConfigs, fileWarnings, err := loadFile(path)
		if err != nil {
			return nil, nil, err
		}
		configs = append(configs, fileConfigs...)
		warnings = append(warnings, fileWarnings...)
	}

	return configs, warnings, nil
}

// loadFile parses one layout file and lints its configs.
func loadFile(path string) ([]*layout.Config, []Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read layout file %q: %w", path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse layout file %q: %w", path, err)
	}

	var warnings []Warning
	for _, cfg := range file.Layouts {
		warnings = append(warnings, Lint(cfg, path)...)
	}

	return file.Layouts, warnings, nil
}

// Lint checks one layout config for declarations that load fine but will
// produce confusing validation output. Findings are warnings, never
// errors.
func Lint(cfg *layout.Config, file string) []Warning {
	var out []Warning

	warn := func(format string, args ...interface{}) {
		out = append(out, Warning{
			File:    file,
			Layout:  cfg.LayoutType,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if cfg.LayoutType == "" {
		warn("missing layout_type")
	}
	if cfg.TargetContentType == "" {
		warn("missing target_content_type")
	}
	if cfg.ValidateField == "" {
		warn("missing validate_field")
	}
	if cfg.Limits.TotalEntries < 0 {
		warn("total_entries must be non-negative, got %d", cfg.Limits.TotalEntries)
	}

	indices := make(map[int]string, len(cfg.Positions))
	for _, rule := range cfg.Positions {
		if rule.Index < 0 {
			warn("slot %q has negative index %d; it will always report a missing entry", rule.Slot, rule.Index)
		}
		if rule.Index >= 0 && cfg.Limits.TotalEntries > 0 && rule.Index >= cfg.Limits.TotalEntries {
			warn("slot %q index %d is outside the expected entry count %d", rule.Slot, rule.Index, cfg.Limits.TotalEntries)
		}
		if len(rule.AllowedTypes) == 0 {
			warn("slot %q allows no content types; no entry can satisfy it", rule.Slot)
		}
		if prev, dup := indices[rule.Index]; dup {
			warn("slots %q and %q share index %d", prev, rule.Slot, rule.Index)
		} else {
			indices[rule.Index] = rule.Slot
		}
	}

	for _, tl := range cfg.Limits.TypeLimits {
		if tl.Max < 0 {
			warn("type limit for %q must be non-negative, got %d", tl.Type, tl.Max)
		}
	}

	return out
}
