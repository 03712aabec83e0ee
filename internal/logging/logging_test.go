package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults valid", DefaultConfig(), false},
		{"console format", Config{Level: "debug", Format: "console"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(Config{Level: "debug", Format: "console", Fields: map[string]string{"service": "test"}})
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Debug("smoke")
}

func TestNewLogger_EmptyConfigGetsDefaults(t *testing.T) {
	logger, err := NewLogger(Config{})
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewLogger_InvalidConfig(t *testing.T) {
	_, err := NewLogger(Config{Level: "nope", Format: "json"})
	assert.Error(t, err)
}
