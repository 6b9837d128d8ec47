// Package config loads application configuration from file, environment,
// and defaults, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Housing   HousingConfig   `yaml:"housing" mapstructure:"housing"`
	Crime     CrimeConfig     `yaml:"crime" mapstructure:"crime"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Window    WindowConfig    `yaml:"window" mapstructure:"window"`
	Reference ReferenceConfig `yaml:"reference" mapstructure:"reference"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// HousingConfig configures the local housing-price input.
type HousingConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	SheetName string `yaml:"sheet_name" mapstructure:"sheet_name"` // xlsx inputs only
}

// CrimeConfig configures the remote crime-statistics source.
type CrimeConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
}

// OutputConfig configures output artifacts.
type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"` // sqlite | csv | json
	Plot   bool   `yaml:"plot" mapstructure:"plot"`
}

// StoreConfig configures the database backend for the sqlite format.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite | postgres
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// WindowConfig bounds the study window, inclusive on both ends.
type WindowConfig struct {
	From string `yaml:"from" mapstructure:"from"` // "2022-01"
	To   string `yaml:"to" mapstructure:"to"`     // "2023-12"
}

// ReferenceConfig configures the state reference list.
type ReferenceConfig struct {
	IncludeDC bool `yaml:"include_dc" mapstructure:"include_dc"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STATEMETRICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("housing.path", "data/housing.csv")
	v.SetDefault("crime.base_url", "https://api.usa.gov/crime/fbi/cde")
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.format", "sqlite")
	v.SetDefault("output.plot", true)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "") // sqlite: defaults to <output.dir>/final_data.db
	v.SetDefault("window.from", "2022-01")
	v.SetDefault("window.to", "2023-12")
	v.SetDefault("reference.include_dc", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
