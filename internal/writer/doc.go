// Package writer writes frames into PostgreSQL tables.
//
// Two write policies:
//   - Replace-all (key "*"): TRUNCATE ... RESTART IDENTITY CASCADE, then insert every row.
//   - Upsert (named key): INSERT ... ON CONFLICT (key) DO UPDATE SET every non-key column.
//
// WriteUpsert and WriteReplaceOrUpsert reconcile the table's columns with the
// frame first (see package schema). Every value is bound as text or NULL, and
// rows go out in multi-row INSERT statements inside a single transaction.
package writer
