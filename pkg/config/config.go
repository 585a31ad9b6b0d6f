// Package config provides configuration management for gnbintax.
//
// This package has no I/O dependencies (no file operations, no network
// calls). Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Environment Variables
//
// Use GNBINTAX_ prefix with underscores for nesting:
//
//	GNBINTAX_CONSENSUS_THRESHOLD=80
//	GNBINTAX_CONSENSUS_METHOD=full
//	GNBINTAX_DATABASE_HOST=localhost
//	GNBINTAX_JOBS_NUMBER=8
package config

import (
	"runtime"
	"slices"
)

// Config represents the complete gnbintax configuration.
type Config struct {
	// Ranks is the ordered list of taxonomic ranks, parent before child.
	// The first rank is the root and must never be empty in input data.
	Ranks []string `mapstructure:"ranks" yaml:"ranks"`

	// Consensus contains settings for the per-BIN consensus vote.
	Consensus ConsensusConfig `mapstructure:"consensus" yaml:"consensus"`

	// Database contains PostgreSQL connection settings for publishing.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for per-BIN
	// consensus computation. Defaults to the number of CPU threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// ConsensusConfig contains the knobs of the consensus vote.
type ConsensusConfig struct {
	// Threshold is the agreement percentage, in (0, 100], that a single
	// lineage group must reach for a rank to count as resolved.
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`

	// Method selects the grouping strategy: "full" groups by the whole
	// lineage tuple down to the tested rank, "rank" groups by the tested
	// rank's label alone.
	Method string `mapstructure:"method" yaml:"method"`

	// ExcludeMissingData discards candidate groups whose labels carry
	// placeholder suffixes before percentages are computed, so inherited
	// placeholders cannot win a vote by weight alone.
	ExcludeMissingData bool `mapstructure:"exclude_missing_data" yaml:"exclude_missing_data"`
}

// DatabaseConfig contains PostgreSQL connection parameters for the
// publish command.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize defines the number of rows per bulk insert during
	// publishing. Larger batches are faster but use more memory.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// DefaultRanks is the canonical kingdom→species rank order.
func DefaultRanks() []string {
	return []string{
		"kingdom", "phylum", "class", "order", "family", "genus", "species",
	}
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Ranks: DefaultRanks(),
		Consensus: ConsensusConfig{
			Threshold:          80,
			Method:             "full",
			ExcludeMissingData: false,
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "gnbintax",
			SSLMode:   "disable",
			BatchSize: 50_000,
		},
		Log: LogConfig{
			Format:      "json",
			Level:       "info",
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}

// RankIndex returns the position of a rank in the configured order, or
// -1 when the rank is not configured.
func (c *Config) RankIndex(rank string) int {
	return slices.Index(c.Ranks, rank)
}
