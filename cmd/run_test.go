package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/statemetrics/internal/config"
)

func validTestConfig() *config.Config {
	return &config.Config{
		Crime:  config.CrimeConfig{APIKey: "test-key"},
		Output: config.OutputConfig{Format: "sqlite"},
		Window: config.WindowConfig{From: "2022-01", To: "2023-12"},
	}
}

func TestValidateRunConfig_Valid(t *testing.T) {
	window, err := validateRunConfig(validTestConfig())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), window.From)
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), window.To)
}

func TestValidateRunConfig_InvalidFormat(t *testing.T) {
	for _, format := range []string{"parquet", "xlsx", "", "SQLITE"} {
		c := validTestConfig()
		c.Output.Format = format

		_, err := validateRunConfig(c)
		require.Error(t, err, "format %q must be rejected", format)
		assert.Contains(t, err.Error(), "invalid output format")
	}
}

func TestValidateRunConfig_MissingAPIKey(t *testing.T) {
	for _, key := range []string{"", "   "} {
		c := validTestConfig()
		c.Crime.APIKey = key

		_, err := validateRunConfig(c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key")
	}
}

func TestValidateRunConfig_BadWindow(t *testing.T) {
	c := validTestConfig()
	c.Window.From = "January 2022"

	_, err := validateRunConfig(c)
	require.Error(t, err)
}

func TestValidateRunConfig_InvertedWindow(t *testing.T) {
	c := validTestConfig()
	c.Window.From = "2023-12"
	c.Window.To = "2022-01"

	_, err := validateRunConfig(c)
	require.Error(t, err)
}

func TestValidFormats(t *testing.T) {
	assert.True(t, validFormats["sqlite"])
	assert.True(t, validFormats["csv"])
	assert.True(t, validFormats["json"])
	assert.False(t, validFormats["yaml"])
}
