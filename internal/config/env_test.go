package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCI(t *testing.T) {
	tests := []struct {
		name   string
		ci     string
		github string
		want   bool
	}{
		{"unset", "", "", false},
		{"ci true", "true", "", true},
		{"ci numeric", "1", "", true},
		{"ci false", "false", "", false},
		{"github actions", "", "true", true},
		{"garbage", "maybe", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CI", tt.ci)
			t.Setenv("GITHUB_ACTIONS", tt.github)
			assert.Equal(t, tt.want, DetectCI())
		})
	}
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, NormalizeLogLevel(" Debug "))
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("warning"))
	assert.Equal(t, LogLevelError, NormalizeLogLevel("error"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel(""))
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat("JSON"))
	assert.Equal(t, LogFormatText, NormalizeLogFormat("yaml"))
}
