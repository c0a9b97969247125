package domain

import (
	"fmt"
	"log/slog"
	"sync"

	m "gest.dev/pkg/gest/internal/model"
)

// LogCapture collects the logs a script emits during the current test.
type LogCapture struct {
	mu   sync.Mutex
	logs []m.CapturedLog
}

// NewLogCapture constructs an empty LogCapture.
func NewLogCapture() *LogCapture {
	return &LogCapture{}
}

// Add appends a log entry and mirrors it to the tool log.
func (c *LogCapture) Add(message string, level m.LogLevel) {
	c.mu.Lock()
	c.logs = append(c.logs, m.CapturedLog{Message: message, Level: level})
	c.mu.Unlock()

	slog.Debug("Script log", "level", level, "message", message)
}

// HasLog reports whether any entry was captured at level.
func (c *LogCapture) HasLog(level m.LogLevel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.logs {
		if entry.Level == level {
			return true
		}
	}

	return false
}

// HasMatchingLog reports whether an entry at level matches pattern.
func (c *LogCapture) HasMatchingLog(level m.LogLevel, pattern string) (bool, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return false, fmt.Errorf("invalid log pattern %q: %w", pattern, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.logs {
		if entry.Level == level && re.MatchString(entry.Message) {
			return true, nil
		}
	}

	return false, nil
}

// Logs returns a copy of the captured entries in emission order.
func (c *LogCapture) Logs() []m.CapturedLog {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]m.CapturedLog(nil), c.logs...)
}

// Reset drops every captured entry.
func (c *LogCapture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logs = nil
}
