package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	Setup(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, 115200, cfg.Serial.Baud)
	assert.Equal(t, 50*time.Millisecond, cfg.Serial.ReadTimeout)
	assert.Equal(t, 10240, cfg.Session.ScratchSize)
	assert.True(t, cfg.Errors.Detail)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Log.File)
	assert.Equal(t, ".", cfg.Save.Dir)
}

func TestLoadFromFile(t *testing.T) {
	v := newViper(t)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
serial:
  baud: 9600
  read_timeout: 100ms
errors:
  detail: false
log:
  level: debug
  format: console
save:
  dir: /var/captures
`)))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 9600, cfg.Serial.Baud)
	assert.Equal(t, 100*time.Millisecond, cfg.Serial.ReadTimeout)
	assert.False(t, cfg.Errors.Detail)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "/var/captures", cfg.Save.Dir)
	// untouched keys keep their defaults
	assert.Equal(t, 10240, cfg.Session.ScratchSize)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERIALTERM_SERIAL_BAUD", "57600")
	t.Setenv("SERIALTERM_SESSION_SCRATCH_SIZE", "4096")
	t.Setenv("SERIALTERM_LOG_FILE", "/tmp/serialterm.log")

	cfg, err := Load(newViper(t))
	require.NoError(t, err)
	assert.Equal(t, 57600, cfg.Serial.Baud)
	assert.Equal(t, 4096, cfg.Session.ScratchSize)
	assert.Equal(t, "/tmp/serialterm.log", cfg.Log.File)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"unsupported baud", "serial.baud", 12345},
		{"zero read timeout", "serial.read_timeout", "0s"},
		{"negative read timeout", "serial.read_timeout", "-5ms"},
		{"sub-millisecond read timeout", "serial.read_timeout", "1500us"},
		{"zero scratch", "session.scratch_size", 0},
		{"negative scratch", "session.scratch_size", -1},
		{"unknown level", "log.level", "verbose"},
		{"unknown format", "log.format", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper(t)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
