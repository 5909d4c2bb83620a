// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// When no file is given, the database section can be read straight from TABLESYNC_* variables
// (see LoadFromEnv).
package config
