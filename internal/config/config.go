// Package config loads application configuration from file and environment
// and owns global logger setup.
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
	Sim      SimConfig      `yaml:"sim" mapstructure:"sim"`
	Scenario ScenarioConfig `yaml:"scenario" mapstructure:"scenario"`
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SimConfig holds the default run knobs. Flags override these per command.
type SimConfig struct {
	Simulations int     `yaml:"simulations" mapstructure:"simulations"`
	Threshold   float64 `yaml:"threshold" mapstructure:"threshold"`
	Seed        uint64  `yaml:"seed" mapstructure:"seed"`
	Workers     int     `yaml:"workers" mapstructure:"workers"`
}

// ScenarioConfig selects the parameter basket.
type ScenarioConfig struct {
	// File is a YAML scenario path; empty means the built-in basket.
	File string `yaml:"file" mapstructure:"file"`
}

// ReportConfig configures report output.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// ServerConfig configures the simulate API server.
type ServerConfig struct {
	Port         int     `yaml:"port" mapstructure:"port"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
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
	v.SetEnvPrefix("FISCALSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sim.simulations", 10000)
	v.SetDefault("sim.threshold", 2.0)
	v.SetDefault("sim.seed", 42)
	v.SetDefault("sim.workers", 1)
	v.SetDefault("scenario.file", "")
	v.SetDefault("report.output_dir", "results")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit_rps", 5)
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
