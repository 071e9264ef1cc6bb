package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelTrace, ParseLevel("trace"))
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("Error"))
	assert.Equal(t, LevelNone, ParseLevel("off"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestJSONLogEntryString(t *testing.T) {
	entry := JSONLogEntry{Message: "Test message"}
	var parsed map[string]interface{}
	assert.NoError(t, json.Unmarshal([]byte(entry.String()), &parsed))
	assert.Equal(t, "Test message", parsed["message"])
	assert.Equal(t, "INFO", parsed["severity"]) // Default severity

	entry = JSONLogEntry{
		Message:  "Test message",
		Severity: "ERROR",
		Metadata: map[string]interface{}{"key1": "value1"},
	}
	assert.NoError(t, json.Unmarshal([]byte(entry.String()), &parsed))
	assert.Equal(t, "ERROR", parsed["severity"])
	assert.Equal(t, map[string]interface{}{"key1": "value1"}, parsed["metadata"])
}

func TestJSONLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	l := &jsonLogger{
		metadata: make(map[string]interface{}),
		out:      &buf,
		logLevel: LevelWarn,
		ts:       &ts,
	}
	l.Debug("should be dropped")
	l.Info("should be dropped too")
	l.Warn("kept %d", 1)
	l.Error("kept %d", 2)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.Len(t, lines, 2)

	var parsed map[string]interface{}
	assert.NoError(t, json.Unmarshal(lines[0], &parsed))
	assert.Equal(t, "kept 1", parsed["message"])
	assert.Equal(t, "WARNING", parsed["severity"])
}

func TestJSONLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	l := &jsonLogger{metadata: make(map[string]interface{}), out: &buf, logLevel: LevelInfo}
	child := l.With(map[string]interface{}{"component": "loader", "path": "a.md"})
	child.Info("loaded")

	var parsed map[string]interface{}
	assert.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &parsed))
	assert.Equal(t, "loader", parsed["component"])
	assert.Equal(t, map[string]interface{}{"path": "a.md"}, parsed["metadata"])

	// the parent logger is unchanged
	buf.Reset()
	l.Info("bare")
	parsed = map[string]interface{}{} // Unmarshal merges into a non-nil map; discard keys from the prior parse
	assert.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &parsed))
	_, hasComponent := parsed["component"]
	assert.False(t, hasComponent)
}

func TestTestLoggerMethods(t *testing.T) {
	l := NewTestLogger()

	l.Trace("Trace message", 1)
	l.Debug("Debug message", 2)
	l.Info("Info message", 3)
	l.Warn("Warn message", 4)
	l.Error("Error message", 5)

	assert.Len(t, l.Logs, 5)
	assert.Equal(t, "TRACE", l.Logs[0].Severity)
	assert.Equal(t, "Debug message", l.Logs[1].Message)
	assert.Equal(t, []interface{}{5}, l.Logs[4].Arguments)
}

func TestConsoleLoggerLevelEnabled(t *testing.T) {
	l := NewConsoleLogger(LevelWarn)
	assert.False(t, l.IsLevelEnabled(LevelDebug))
	assert.False(t, l.IsLevelEnabled(LevelInfo))
	assert.True(t, l.IsLevelEnabled(LevelWarn))
	assert.True(t, l.IsLevelEnabled(LevelError))
}

func TestConsoleLoggerWithPrefixDedup(t *testing.T) {
	l := NewConsoleLogger(LevelInfo).WithPrefix("cache").WithPrefix("cache")
	cl, ok := l.(*consoleLogger)
	assert.True(t, ok)
	assert.Equal(t, []string{"cache"}, cl.prefixes)
}
