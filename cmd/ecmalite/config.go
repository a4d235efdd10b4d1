// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"os"
	"strings"

	"github.com/naoina/toml"

	"github.com/ecmalite/ecmalite/internal/elog"
)

// config is the `-config <file>.toml` shape, deliberately small: ecmalite
// has no on-disk VM state (spec §6 "Persisted state: None") so the only
// thing worth persisting host-side is how verbosely the CLI logs.
type config struct {
	LogLevel string `toml:"log_level"`
}

func readConfig(path string) (*config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg config
	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseLevel(s string) (elog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return elog.LevelTrace, true
	case "debug":
		return elog.LevelDebug, true
	case "info":
		return elog.LevelInfo, true
	case "warn", "warning":
		return elog.LevelWarn, true
	case "error":
		return elog.LevelError, true
	case "crit", "critical":
		return elog.LevelCrit, true
	default:
		return elog.LevelInfo, false
	}
}
