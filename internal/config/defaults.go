package config

// Default values for optional configuration fields.
const (
	DefaultDBPort    = 5432
	DefaultDBSSLMode = "require"
	DefaultMaxConns  = 10
	DefaultMinConns  = 1
	DefaultBatchSize = 1000
	DefaultLogLevel  = "info"
)

func (c *Config) applyDefaults() {
	c.Database.ApplyDefaults()

	// Writer defaults
	if c.Writer.BatchSize == 0 {
		c.Writer.BatchSize = DefaultBatchSize
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// ApplyDefaults fills unset connection settings.
func (db *DBConfig) ApplyDefaults() {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
