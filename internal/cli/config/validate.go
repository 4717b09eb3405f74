package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// OutputFormats lists the accepted values of the output setting.
var OutputFormats = []string{"auto", "text", "markdown", "json", "yaml"}

// Validate checks the configuration and resolves the time zone.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database is required")
	}

	c.OutputFormat = strings.ToLower(strings.TrimSpace(c.OutputFormat))
	if c.OutputFormat == "" {
		c.OutputFormat = DefaultOutput
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (use one of: %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}

	tz := strings.TrimSpace(c.Timezone)
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.Timezone = tz
	c.location = loc
	return nil
}
