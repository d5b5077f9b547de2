package config

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"json format", func(c *Config) { c.LogFormat = "json" }, false},
		{"debug level", func(c *Config) { c.LogLevel = "debug" }, false},
		{"empty state dir", func(c *Config) { c.StateDir = "" }, true},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"unknown format", func(c *Config) { c.LogFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.GetLevel())
	defer log.SetFormatter(log.StandardLogger().Formatter)

	cfg := &Config{StateDir: "x", LogLevel: "debug", LogFormat: "json"}
	require.NoError(t, cfg.ConfigureLogging())

	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	cfg.LogLevel = "nope"
	assert.Error(t, cfg.ConfigureLogging())
}
