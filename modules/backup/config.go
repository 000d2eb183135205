package backup

import "fmt"

const (
	defaultSchedule = "0 * * * *"
	defaultKeep     = 24
	defaultDirName  = "backups"
)

// Config holds the backup module configuration.
type Config struct {
	// Schedule is a 5-field cron expression. Defaults to hourly.
	Schedule string `yaml:"schedule"`

	// Dir is the directory archives are written to.
	// Defaults to {DataDir}/backups.
	Dir string `yaml:"dir"`

	// Keep is how many archive files to retain. Older files beyond
	// this count are pruned after each run. Defaults to 24.
	Keep int `yaml:"keep"`
}

func (c *Config) defaults() {
	if c.Schedule == "" {
		c.Schedule = defaultSchedule
	}
	if c.Keep == 0 {
		c.Keep = defaultKeep
	}
}

func (c *Config) validate() error {
	if c.Keep < 0 {
		return fmt.Errorf("backup: keep must be non-negative, got %d", c.Keep)
	}
	return nil
}
