package audit

import (
	"context"
	"errors"
	"log"
)

// LogWriter writes entries to a standard logger. Used when no database is
// configured.
type LogWriter struct {
	logger *log.Logger
}

// NewLogWriter constructs a LogWriter.
func NewLogWriter(logger *log.Logger) (*LogWriter, error) {
	if logger == nil {
		return nil, errors.New("audit log writer: nil logger")
	}
	return &LogWriter{logger: logger}, nil
}

// Log implements Logger.
func (w *LogWriter) Log(_ context.Context, entry Entry) error {
	if w == nil || w.logger == nil {
		return errors.New("audit log writer: nil logger")
	}
	entry = prepare(entry)
	w.logger.Printf("audit: id=%s action=%s session=%s role=%s resource=%s/%s digest=%s meta=%s",
		entry.ID, entry.Action, entry.SessionID, entry.Role, entry.ResourceType, entry.ResourceID, entry.PayloadDigest, string(entry.Metadata))
	return nil
}
