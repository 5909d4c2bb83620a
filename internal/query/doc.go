// Package query runs single SQL statements and materializes their results.
package query
