package writer

import (
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/tablesync/internal/database"
)

// Wildcard as the key selects the replace-all policy.
const Wildcard = "*"

// maxParams is the protocol limit on bind parameters per statement.
const maxParams = 65535

// WriterConfig contains configuration for the table writer.
type WriterConfig struct {
	// BatchSize is the maximum number of rows per INSERT statement.
	BatchSize int

	// FoldColumns lower-cases frame column names (and the key) before writing,
	// matching how PostgreSQL folds unquoted identifiers.
	FoldColumns bool

	// CreateMissing creates a missing target table with TEXT columns.
	CreateMissing bool
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:   1000,
		FoldColumns: true,
	}
}

// Mode is the write policy that was applied.
type Mode string

const (
	ModeReplace Mode = "replace"
	ModeUpsert  Mode = "upsert"
)

// Result describes one completed write.
type Result struct {
	SyncID  uuid.UUID
	Table   database.TableName
	Mode    Mode
	Key     string // empty for replace
	Created bool
	Added   []string
	Dropped []string

	Rows       int64 // rows sent, after key de-duplication
	Affected   int64 // rows inserted or updated as reported by the server
	Statements int   // INSERT statements issued
	Duration   time.Duration
}

// WriterMetrics holds cumulative counters for a writer.
type WriterMetrics struct {
	Writes        int64
	Rows          int64
	Statements    int64
	SchemaChanges int64
	Errors        int64
}
