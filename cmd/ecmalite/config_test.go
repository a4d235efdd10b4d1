// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmalite/ecmalite/internal/elog"
)

func TestParseLevelAcceptsKnownNames(t *testing.T) {
	lvl, ok := parseLevel("WARN")
	assert.True(t, ok)
	assert.Equal(t, elog.LevelWarn, lvl)

	_, ok = parseLevel("not-a-level")
	assert.False(t, ok)
}

func TestReadConfigParsesLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ecmalite.toml")
	require.NoError(t, os.WriteFile(path, []byte(`log_level = "debug"`), 0o644))

	cfg, err := readConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestReadSourceReturnsFileContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.js")
	require.NoError(t, os.WriteFile(path, []byte("1 + 1;"), 0o644))

	src, err := readSource(path)
	require.NoError(t, err)
	assert.Equal(t, "1 + 1;", src)
}
