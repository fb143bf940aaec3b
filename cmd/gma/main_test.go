// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/gma"
	"gopkg.in/yaml.v3"
)

// runCLI executes the root command with an isolated config and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "gma.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("author: cli tester\n"), 0o600))

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", cfgPath, "--no-progress", "--log-level", "error"}, args...))

	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

// writeAddonDir creates a small addon project and returns its directory.
func writeAddonDir(t *testing.T, withProject bool) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "my_addon")
	files := map[string]string{
		"lua/autorun/init.lua":   "print('init')",
		"materials/gun/skin.vmt": "\"VertexLitGeneric\" {}",
		"materials/gun/skin.psd": "layers",
	}
	if withProject {
		files["addon.json"] = `{"title":"CLI Addon","type":"weapon","tags":["fun","realism"],"ignore":["*.psd"],"description":"cli test"}`
	}

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	return dir
}

func TestCLI_CreateInspectExtract(t *testing.T) {
	t.Parallel()

	dir := writeAddonDir(t, true)
	archive := filepath.Join(t.TempDir(), "out.gma")

	_, err := runCLI(t, "create", dir, "-o", archive, "--author-id", "7")
	require.NoError(t, err)

	out, err := runCLI(t, "info", archive, "--format", "json")
	require.NoError(t, err)

	var info gma.Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "CLI Addon", info.Name)
	assert.Equal(t, "cli tester", info.Author)
	assert.Equal(t, uint64(7), info.AuthorID)
	assert.Equal(t, gma.AddonTypeWeapon, info.Metadata.Type)
	assert.Equal(t, []gma.Tag{gma.TagFun, gma.TagRealism}, info.Metadata.Tags)
	assert.Equal(t, "cli test", info.Metadata.Description)
	require.Len(t, info.Entries, 2)

	out, err = runCLI(t, "info", archive, "--format", "yaml")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "CLI Addon", doc["name"])

	out, err = runCLI(t, "info", archive)
	require.NoError(t, err)
	assert.Contains(t, out, "CLI Addon")
	assert.Contains(t, out, "weapon")

	out, err = runCLI(t, "list", archive)
	require.NoError(t, err)
	assert.Equal(t, "lua/autorun/init.lua\nmaterials/gun/skin.vmt\n", out)

	out, err = runCLI(t, "list", archive, "-l", "--prefix", "materials")
	require.NoError(t, err)
	assert.Contains(t, out, "materials/gun/skin.vmt")
	assert.NotContains(t, out, "init.lua")

	out, err = runCLI(t, "verify", archive)
	require.NoError(t, err)
	assert.Equal(t, "OK: 2 entries\n", out)

	dst := filepath.Join(t.TempDir(), "extracted")
	_, err = runCLI(t, "extract", archive, "-o", dst, "--verify")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dst, "lua", "autorun", "init.lua"))
	require.NoError(t, err)
	assert.Equal(t, "print('init')", string(data))
}

func TestCLI_CreateWithoutProject(t *testing.T) {
	t.Parallel()

	dir := writeAddonDir(t, false)
	archive := filepath.Join(t.TempDir(), "plain.gma")

	_, err := runCLI(t, "create", dir, "-o", archive, "--ignore", "*.psd")
	require.ErrorIs(t, err, gma.ErrMissingName)

	_, err = runCLI(t, "create", dir, "-o", archive, "--name", "Plain", "--type", "spaceship")
	require.ErrorIs(t, err, gma.ErrInvalidAddonType)

	_, err = runCLI(t, "create", dir, "-o", archive, "--name", "Plain")
	require.ErrorIs(t, err, gma.ErrNotWhitelisted)

	_, err = runCLI(t, "create", dir, "-o", archive,
		"--name", "Plain", "--type", "model", "--tag", "build", "--ignore", "*.psd", "--compress", "--format-version", "2")
	require.NoError(t, err)

	r, err := gma.Open(archive)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	assert.True(t, r.Compressed())
	assert.Equal(t, uint8(2), r.Version())
	assert.Equal(t, "Plain", r.Name())
	assert.Equal(t, gma.AddonTypeModel, r.Type())
	assert.Len(t, r.Entries(), 2)
}

func TestCLI_VerifyDetectsCorruption(t *testing.T) {
	t.Parallel()

	dir := writeAddonDir(t, true)
	archive := filepath.Join(t.TempDir(), "out.gma")
	_, err := runCLI(t, "create", dir, "-o", archive)
	require.NoError(t, err)

	data, err := os.ReadFile(archive)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(archive, data, 0o600))

	_, err = runCLI(t, "verify", archive)
	require.ErrorIs(t, err, errVerifyFailed)
}

func TestCLI_InvalidFlags(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, "info", filepath.Join(t.TempDir(), "missing.gma"))
	require.Error(t, err)

	_, err = runCLI(t, "--log-format", "xml", "list", "x.gma")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "log_format"))
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "value", entry["key"])

	buf.Reset()
	newLogger(&buf, "debug", "text").Debug("tinted")
	assert.Contains(t, buf.String(), "tinted")
}
