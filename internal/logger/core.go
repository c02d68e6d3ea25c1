package logger

import (
	"go.uber.org/zap/zapcore"
)

// DBCore is a custom Zap Core that intercepts log entries
type DBCore struct {
	zapcore.Core
	writer *DBLogWriter
}

// NewDBCore wraps an existing core (like the console logger) and adds DB logging
func NewDBCore(baseCore zapcore.Core, writer *DBLogWriter) zapcore.Core {
	return &DBCore{
		Core:   baseCore,
		writer: writer,
	}
}

// Write is called for every log entry
func (c *DBCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	// Only warn and above go to the DB; debug/info would flood the collection
	if entry.Level >= zapcore.WarnLevel {
		var tenantID, actorID string

		enc := zapcore.NewMapObjectEncoder()
		for _, f := range fields {
			f.AddTo(enc)
			if f.Key == "tenant" {
				tenantID = f.String
			}
			if f.Key == "actor" {
				actorID = f.String
			}
		}

		c.writer.AddLog(LogEntry{
			Level:    entry.Level,
			Message:  entry.Message,
			TenantID: tenantID,
			ActorID:  actorID,
			Caller:   entry.Caller.Function,
		})
	}

	return c.Core.Write(entry, fields)
}

// Check decides if we should log this level
func (c *DBCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}
