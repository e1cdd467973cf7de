package main

import (
	"io"
	"testing"

	"github.com/ironsheep/corpus-prep/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOK   bool
	}{
		{"no flags", nil, 0, true},
		{"valid flags", []string{"-input", "in", "-output", "out", "-fail-fast"}, 0, true},
		{"unknown flag", []string{"-input", "in", "-colour", "red"}, 2, false},
		{"bad value", []string{"-width", "wide"}, 2, false},
		{"help after flags", []string{"-input", "in", "-help"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Load()
			fs := newFlagSet(&cfg)
			fs.SetOutput(io.Discard)

			code, ok := parseFlags(fs, tt.args)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestParseFlags_AppliesValues(t *testing.T) {
	cfg := config.Load()
	fs := newFlagSet(&cfg)

	_, ok := parseFlags(fs, []string{"-input", "raw", "-fallback-format", "jpg", "-aspect", "1.5"})
	assert.True(t, ok)
	assert.Equal(t, "raw", cfg.InputDir)
	assert.Equal(t, "jpg", cfg.FallbackFormat)
	assert.Equal(t, 1.5, cfg.AspectRatio)
}
