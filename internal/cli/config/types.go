// Package config provides configuration management for the phonebook CLI.
//
// Values are layered with koanf: defaults, then a YAML config file, then
// PHONEBOOK_* environment variables, then explicitly set flags.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	DatabasePath string `koanf:"database"`
	Timezone     string `koanf:"timezone"`
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
	HistoryFile  string `koanf:"history_file"`

	// location is resolved from Timezone by Validate.
	location *time.Location
}

// Default configuration values.
const (
	DefaultDatabase    = "phonebook.db"
	DefaultTimezone    = "Local"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultHistoryName = ".phonebook_history"
)

// Config file names, searched in order.
var configFileNames = []string{"phonebook.yaml", "phonebook.yml"}

// Default returns a Config holding only default values.
func Default() *Config {
	return &Config{
		DatabasePath: DefaultDatabase,
		Timezone:     DefaultTimezone,
		OutputFormat: DefaultOutput,
		location:     time.Local,
	}
}

// Location returns the time zone dates and times are entered and shown in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}
