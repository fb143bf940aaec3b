// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/gma"
)

// writeConfig writes a gma.yaml with content into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gma.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
author: Someone
author_id: 76561197960287930
version: 2
compression: true
skip_whitelist: true
workers: 4
log_level: debug
log_format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Someone", cfg.Author)
	assert.Equal(t, uint64(76561197960287930), cfg.AuthorID)
	assert.Equal(t, uint8(2), cfg.Version)
	assert.True(t, cfg.Compression)
	assert.True(t, cfg.SkipWhitelist)
	assert.False(t, cfg.KeepCase)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, gma.DefaultAuthor, cfg.Author)
	assert.Equal(t, gma.DefaultVersion, cfg.Version)
	assert.Zero(t, cfg.AuthorID)
	assert.False(t, cfg.Compression)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "log level", content: "log_level: loud\n", wantErr: "log_level"},
		{name: "log format", content: "log_format: xml\n", wantErr: "log_format"},
		{name: "version", content: "version: 9\n", wantErr: "version 9"},
		{name: "workers", content: "workers: -1\n", wantErr: "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(writeConfig(t, tt.content))
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_BrokenFile(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, "author: [\n"))
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("GMA_AUTHOR", "env author")
	t.Setenv("GMA_AUTHOR_ID", "42")
	t.Setenv("GMA_COMPRESSION", "true")

	cfg, err := Load(writeConfig(t, "author: file author\n"))
	require.NoError(t, err)

	assert.Equal(t, "env author", cfg.Author)
	assert.Equal(t, uint64(42), cfg.AuthorID)
	assert.True(t, cfg.Compression)
}
