// Package model defines the in-memory table shared across tablesync.
//
// A Frame is an ordered list of rows aligned with a column header. The query
// runner returns one; the writer consumes one.
//
// Conventions:
//   - A nil cell, a NaN float, or Missing is SQL NULL.
//   - Every other cell crosses the database boundary as text (see CellText).
package model
