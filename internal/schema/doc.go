// Package schema reconciles a table's columns with the columns of a frame.
//
// Reconciliation is plan-then-apply: Diff compares the columns
// the catalog reports with the desired set, and Reconcile applies the plan's
// ALTER TABLE statements in a single transaction. New columns are always TEXT.
package schema
