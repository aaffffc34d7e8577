// Package config loads application settings through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/allbin/serialterm"
	"github.com/allbin/serialterm/internal/logging"
	"github.com/allbin/serialterm/internal/session"
)

// EnvPrefix prefixes environment overrides, e.g. SERIALTERM_SERIAL_BAUD.
const EnvPrefix = "SERIALTERM"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the decoded application configuration.
type Config struct {
	Serial  SerialConfig   `mapstructure:"serial"`
	Session SessionConfig  `mapstructure:"session"`
	Errors  ErrorsConfig   `mapstructure:"errors"`
	Log     logging.Config `mapstructure:"log"`
	Save    SaveConfig     `mapstructure:"save"`
}

type SerialConfig struct {
	Baud        int           `mapstructure:"baud"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

type SessionConfig struct {
	ScratchSize int `mapstructure:"scratch_size"`
}

type ErrorsConfig struct {
	// Detail exposes underlying error text to the front-end.
	Detail bool `mapstructure:"detail"`
}

type SaveConfig struct {
	Dir string `mapstructure:"dir"`
}

// Setup registers defaults and environment overrides on v.
func Setup(v *viper.Viper) {
	v.SetDefault("serial.baud", 115200)
	v.SetDefault("serial.read_timeout", session.DefaultReadTimeout)
	v.SetDefault("session.scratch_size", session.DefaultScratchSize)
	v.SetDefault("errors.detail", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("save.dir", ".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges the decoder cannot.
func (c Config) Validate() error {
	if c.Serial.ReadTimeout <= 0 {
		return fmt.Errorf("%w: serial.read_timeout %s", ErrInvalid, c.Serial.ReadTimeout)
	}
	port := serial.DefaultConfig()
	if err := serial.WithBaudRate(c.Serial.Baud)(&port); err != nil {
		return fmt.Errorf("%w: serial.baud %d: %w", ErrInvalid, c.Serial.Baud, err)
	}
	if err := serial.WithReadTimeout(c.Serial.ReadTimeout)(&port); err != nil {
		return fmt.Errorf("%w: serial.read_timeout %s: %w", ErrInvalid, c.Serial.ReadTimeout, err)
	}
	if c.Session.ScratchSize <= 0 {
		return fmt.Errorf("%w: session.scratch_size %d", ErrInvalid, c.Session.ScratchSize)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}
