// Package monitor revalidates tracked fields when their content changes.
//
// Change notifications arrive faster than entry fetches complete, so two
// revalidations of the same field can overlap. Every revalidation is
// stamped with a per-field generation; a result is adopted as the
// field's latest only if no newer revalidation has been adopted in the
// meantime. Stale results are recorded in history but never published.
//
// Subscribers receive every adopted result. The sweep revalidates all
// tracked fields, either on demand (after a layout reload) or on a cron
// schedule.
package monitor
