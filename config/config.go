// Package config loads runtime settings for the simulation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the config file looked up when no explicit path is given.
const FileName = "helicopter"

// EnvPrefix prefixes environment overrides, e.g. HELI_LOGLEVEL.
const EnvPrefix = "HELI"

type Config struct {
	LogLevel    string  `mapstructure:"logLevel"`
	LogPretty   bool    `mapstructure:"logPretty"`
	FixedStep   float64 `mapstructure:"fixedStep"`
	FrameStep   float64 `mapstructure:"frameStep"`
	GroundLevel float64 `mapstructure:"groundLevel"`
	Gravity     float64 `mapstructure:"gravity"`
	Scene       string  `mapstructure:"scene"`
	// MaxFixedSteps caps fixed updates per frame so a stall cannot spiral.
	MaxFixedSteps int `mapstructure:"maxFixedSteps"`

	Window WindowConfig `mapstructure:"window"`
}

type WindowConfig struct {
	Width  int     `mapstructure:"width"`
	Height int     `mapstructure:"height"`
	Scale  float64 `mapstructure:"scale"`
}

var (
	ErrInvalidStep = errors.New("config: step must be positive")
	ErrEmptyScene  = errors.New("config: scene is empty")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logPretty", true)
	v.SetDefault("fixedStep", 0.02)
	v.SetDefault("frameStep", 1.0/60.0)
	v.SetDefault("groundLevel", 0.0)
	v.SetDefault("gravity", -9.81)
	v.SetDefault("scene", "default")
	v.SetDefault("maxFixedSteps", 8)

	v.SetDefault("window.width", 1280)
	v.SetDefault("window.height", 720)
	v.SetDefault("window.scale", 10.0)
}

// Load reads defaults, an optional config file and HELI_* environment
// overrides. An explicit path must exist; without one a missing
// helicopter.{yaml,json,toml} in the working directory is fine.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in settings.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func (c *Config) Validate() error {
	if c.FixedStep <= 0 {
		return fmt.Errorf("%w: fixedStep=%v", ErrInvalidStep, c.FixedStep)
	}
	if c.FrameStep <= 0 {
		return fmt.Errorf("%w: frameStep=%v", ErrInvalidStep, c.FrameStep)
	}
	if strings.TrimSpace(c.Scene) == "" {
		return ErrEmptyScene
	}
	if c.MaxFixedSteps <= 0 {
		c.MaxFixedSteps = 1
	}
	return nil
}
