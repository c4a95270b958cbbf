// Package registry loads layout configurations from YAML files and selects
// the right configuration for an editor field.
//
// A layout file holds one or more layouts under a top-level "layouts" key:
//
//	layouts:
//	  - layout_type: "bento-1-2"
//	    target_content_type: "landingSection"
//	    validate_field: "cards"
//	    positions:
//	      leftColumnFullHeightCard:
//	        index: 0
//	        allowed_types: ["CardTypeA"]
//	    limits:
//	      total_entries: 3
//
// Select picks a configuration by (target content type, field). The
// validator never performs this selection itself; it receives the chosen
// config as a parameter.
//
// Configs are linted on load. Lint findings (duplicate indices, empty
// allowed-type lists, negative counts) are collected as warnings rather
// than load failures: a questionable config still loads and produces
// best-effort validation output, matching the validator's own contract of
// not schema-checking its input.
//
// The Watcher reloads the registry when files in the directory change,
// with debouncing to absorb editor save storms. A failed reload keeps the
// previously loaded registry.
package registry
