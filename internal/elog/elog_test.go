// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package elog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelBelowMinimumIsSuppressed(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelWarn)

	l.Info("should not appear")
	assert.Empty(t, buf.String())

	l.Warn("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestChildLoggerInheritsAndAppendsContext(t *testing.T) {
	var buf bytes.Buffer
	l := New("service", "engine")
	l.SetOutput(&buf)
	l.SetLevel(LevelTrace)

	child := l.New("vm", "1")
	child.Info("ready")

	out := buf.String()
	assert.True(t, strings.Contains(out, "service=engine"))
	assert.True(t, strings.Contains(out, "vm=1"))
}

func TestOddContextGetsMissingMarker(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelTrace)

	l.Error("bad", "onlyKey")
	assert.Contains(t, buf.String(), "onlyKey=MISSING")
}
