// Structured logging tests
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	l := New("test")
	l.SetWriter(buf)
	l.SetColorize(false)
	l.SetLevel(DEBUG)
	return l
}

func TestLoggerBasic(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.Info("Reordering %s", "part.gcode")

	out := buf.String()
	assert.Contains(t, out, "[INFO ]")
	assert.Contains(t, out, "test: ")
	assert.Contains(t, out, "Reordering part.gcode")
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	logger.SetLevel(WARN)

	logger.Debug("debug")
	logger.Info("info")
	assert.Zero(t, buf.Len())

	logger.Warn("warn")
	assert.Contains(t, buf.String(), "warn")
	buf.Reset()

	logger.Error("error")
	assert.Contains(t, buf.String(), "error")
}

func TestParseLevelAndFormat(t *testing.T) {
	cases := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DEBUG},
		{" INFO ", INFO},
		{"warning", WARN},
		{"Error", ERROR},
		{"bogus", INFO},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseLevel(c.in), c.in)
	}
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("yaml"))
}

func TestLoggerJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	logger.SetFormat(FormatJSON)

	logger.With(Fields{"run": "abc"}).WithField("layer", 3).Debug("flush")

	var entry JSONLogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "DEBUG", entry.Level)
	assert.Equal(t, "test", entry.Logger)
	assert.Equal(t, "flush", entry.Message)
	assert.Equal(t, "abc", entry.Fields["run"])
	assert.EqualValues(t, 3, entry.Fields["layer"])
}

func TestLoggerTextFieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.WithFields(Fields{"b": 2, "a": 1}).WithError(errors.New("boom")).Info("done")

	assert.Contains(t, buf.String(), "{a=1, b=2, error=boom}")
}

func TestWithPrefixSharesWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.WithPrefix("reorder").Info("x")
	assert.True(t, strings.Contains(buf.String(), "reorder: x"))
}

func TestLoggerCaller(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	logger.SetCaller(true)

	logger.Info("where")
	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	l.WithField("k", "v").Error("nothing")
}

func TestConfigureFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "error")
	t.Setenv(EnvFormat, "json")
	t.Setenv(EnvCaller, "1")

	l := New("env")
	ConfigureFromEnv(l)

	assert.Equal(t, ERROR, l.GetLevel())
	assert.Equal(t, FormatJSON, l.outFormat)
	assert.True(t, l.caller)
}
