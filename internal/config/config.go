package config

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultStateDir  = "/var/lib/gonett/networks"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds the driver settings gathered from flags and environment.
type Config struct {
	StateDir  string
	LogLevel  string
	LogFormat string // "text" or "json"
}

func Default() *Config {
	return &Config{
		StateDir:  DefaultStateDir,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

func (c *Config) Validate() error {
	if c.StateDir == "" {
		return fmt.Errorf("state dir must not be empty")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log format %q: want text or json", c.LogFormat)
	}
	return nil
}

// ConfigureLogging applies the level and format to the standard logrus
// logger.
func (c *Config) ConfigureLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
