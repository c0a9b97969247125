package model

// LogLevel is the severity of a captured script log.
type LogLevel string

// Available log levels, lowest severity first.
const (
	LevelTrace LogLevel = "trace"
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogLevels lists every level in severity order.
var LogLevels = []LogLevel{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

// CapturedLog is a single log entry emitted by a script during a test.
type CapturedLog struct {
	Message string
	Level   LogLevel
}
