// Package retention prunes old validation runs.
//
// The Pruner enforces two limits: a maximum run age and a maximum run
// count. The Scheduler runs the pruner on a cron schedule (for example
// "0 3 * * *" for daily at 3 AM).
package retention
