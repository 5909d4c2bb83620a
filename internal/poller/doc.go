// Package poller runs a task on a fixed interval.
//
// The poller:
//   - Runs the task immediately on start, then once per interval
//   - Bounds each run with a timeout
//   - Never overlaps runs; a slow run delays the next tick
//   - Logs failures and keeps going
package poller
