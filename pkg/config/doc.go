// Package config loads, defaults, validates, and exposes the bento
// service configuration.
//
// Configuration is declared in YAML:
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//	layouts:
//	  dir: "./layouts"
//	  watch: true
//	history:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/history.db"
//
// Loading follows a fixed sequence: read the file, unmarshal, apply
// defaults for unset fields, apply BENTO_* environment overrides, then
// validate. Validation collects every field error before failing, so one
// load attempt reports everything that is wrong.
//
// The package holds a process-wide singleton for the CLI entry points
// (Initialize, GetConfig). Library packages never read the singleton;
// they take explicit *Config values or the narrower section structs.
package config
