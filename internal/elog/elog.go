// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package elog is the ambient leveled logger every ecmalite package and
// cmd/ecmalite log through. It isn't retrieved directly from the teacher
// (go-probe's own `log` package wasn't part of the pack), but its
// dependency closure is: go-stack/stack, mattn/go-colorable, and
// mattn/go-isatty are all present in the teacher's go.mod specifically
// for call-site capture and terminal-aware colored output, the same
// trio the wider go-ethereum/go-probe lineage uses for its log15-style
// logger. Built fresh against those three libraries in their documented
// roles rather than against stdlib `log`.
package elog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level is a log severity, ordered low (verbose) to high (fatal-ish).
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCrit
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCrit:
		return "CRIT"
	default:
		return "?????"
	}
}

// ansi color codes per level, used only when the output stream is a
// terminal (detected via mattn/go-isatty).
var levelColor = map[Level]string{
	LevelTrace: "\x1b[90m",
	LevelDebug: "\x1b[36m",
	LevelInfo:  "\x1b[32m",
	LevelWarn:  "\x1b[33m",
	LevelError: "\x1b[31m",
	LevelCrit:  "\x1b[35m",
}

const ansiReset = "\x1b[0m"

// Logger emits leveled, context-annotated log lines, in the vein of the
// log15-style logger go-probe's own ambient `log` package descends from:
// a context slice of key/value pairs carried by New and appended to at
// each call site, plus a caller frame captured via go-stack/stack.
type Logger struct {
	out     io.Writer
	color   bool
	minimum Level
	ctx     []interface{}
	mu      *sync.Mutex
}

// Root is the process-wide default logger, writing to stderr through
// mattn/go-colorable (a no-op wrapper on non-Windows, ANSI-stripping
// passthrough on legacy Windows consoles) when stderr is a terminal.
var Root = New()

// New creates a standalone Logger over stderr. Use Root for the shared
// process-wide instance; New is for tests or an isolated sub-VM logger
// that shouldn't share Root's minimum-level setting.
func New(ctx ...interface{}) *Logger {
	w := colorable.NewColorableStderr()
	isTerm := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return &Logger{out: w, color: isTerm, minimum: LevelInfo, ctx: ctx, mu: &sync.Mutex{}}
}

// SetOutput redirects where log lines are written (e.g. a test buffer),
// disabling color since the destination is no longer known to be a tty.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
	l.color = false
}

// SetLevel changes the minimum level this logger emits; calls below it
// are cheap no-ops (the message is never formatted).
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minimum = level
}

// New returns a child logger with extra context key/value pairs appended
// (log15's "New(ctx...)" idiom), inherited output/level/color from the
// parent.
func (l *Logger) New(ctx ...interface{}) *Logger {
	merged := make([]interface{}, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	merged = append(merged, ctx...)
	return &Logger{out: l.out, color: l.color, minimum: l.minimum, ctx: merged, mu: l.mu}
}

func (l *Logger) log(level Level, msg string, ctx []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.minimum {
		return
	}

	call := stack.Caller(2)
	ts := time.Now().Format("15:04:05.000")

	var line string
	if l.color {
		line = fmt.Sprintf("%s%-5s%s[%s] %s %+v", levelColor[level], level, ansiReset, ts, msg, call)
	} else {
		line = fmt.Sprintf("%-5s[%s] %s %v", level, ts, msg, call)
	}
	line += formatContext(l.ctx) + formatContext(ctx) + "\n"
	io.WriteString(l.out, line)
}

func formatContext(ctx []interface{}) string {
	if len(ctx) == 0 {
		return ""
	}
	s := ""
	for i := 0; i+1 < len(ctx); i += 2 {
		s += fmt.Sprintf(" %v=%v", ctx[i], ctx[i+1])
	}
	if len(ctx)%2 == 1 {
		s += fmt.Sprintf(" %v=MISSING", ctx[len(ctx)-1])
	}
	return s
}

func (l *Logger) Trace(msg string, ctx ...interface{}) { l.log(LevelTrace, msg, ctx) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.log(LevelDebug, msg, ctx) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.log(LevelInfo, msg, ctx) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.log(LevelWarn, msg, ctx) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.log(LevelError, msg, ctx) }
func (l *Logger) Crit(msg string, ctx ...interface{})  { l.log(LevelCrit, msg, ctx) }

// Trace, Debug, Info, Warn, Error, Crit on the package level proxy Root,
// so callers that don't need their own context can just write
// elog.Info("message", "key", val).
func Trace(msg string, ctx ...interface{}) { Root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { Root.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { Root.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { Root.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { Root.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { Root.Crit(msg, ctx...) }
