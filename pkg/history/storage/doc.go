// Package storage provides the run storage backends: an in-memory map
// for tests and development, and SQLite for persistence.
//
// Both implement history.Storage. The SQLite backend enables WAL mode
// and a busy timeout by default, and verifies its schema version on
// startup.
package storage
