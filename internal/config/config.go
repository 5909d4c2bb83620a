package config

import "time"

// Config is the root configuration for tablesync.
type Config struct {
	Database DBConfig      `yaml:"database"`
	Writer   WriterConfig  `yaml:"writer"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Log      LogConfig     `yaml:"log"`
}

// DBConfig holds a single database connection pool.
type DBConfig struct {
	Host     string `yaml:"host" envconfig:"HOST"`
	Port     int    `yaml:"port" envconfig:"PORT"`
	Name     string `yaml:"name" envconfig:"DBNAME"`
	User     string `yaml:"user" envconfig:"USER"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
	SSLMode  string `yaml:"ssl_mode" envconfig:"SSLMODE"`
	MaxConns int    `yaml:"max_conns" envconfig:"MAX_CONNS"`
	MinConns int    `yaml:"min_conns" envconfig:"MIN_CONNS"`

	// AcquireTimeout bounds how long a caller waits for a free connection.
	// Zero waits until one is released or the context ends.
	AcquireTimeout time.Duration `yaml:"acquire_timeout" envconfig:"ACQUIRE_TIMEOUT"`
}

// WriterConfig holds table writer settings.
type WriterConfig struct {
	BatchSize    int  `yaml:"batch_size"`
	PreserveCase bool `yaml:"preserve_case"` // Keep frame column names as-is instead of folding to lower case
	CreateTables bool `yaml:"create_tables"` // Create missing target tables with TEXT columns
}

// MetricsConfig holds Prometheus export settings.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // node_exporter textfile path, empty disables
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}
