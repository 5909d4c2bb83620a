// Package database provides connection pool management for PostgreSQL.
//
// A Pool is constructed once with Connect and passed to every component that talks to the
// database. Components depend on the DB interface rather than the concrete pool so they can
// run against a transaction or a mock.
//
// Identifiers (table and column names) never reach SQL text unquoted: they are validated with
// ValidateIdent and rendered through QuoteIdent or TableName.Sanitize.
package database
