// Package history records validation runs so editors and operators can
// see how a field's arrangement evolved.
//
// A Run captures one validation of one field: the field reference, the
// layout that was applied, the outcome, and the violations found. Runs
// are written through the Recorder, which enqueues them for asynchronous
// storage writes so validation latency never depends on the history
// backend.
//
// Two storage backends implement the Storage interface: an in-memory map
// for tests and development, and SQLite for persistence. Retention is
// enforced by the retention subpackage on a cron schedule.
package history
