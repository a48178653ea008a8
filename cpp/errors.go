package cpp

import (
	"fmt"
	"log/slog"
)

// ErrorSink receives diagnostics from the preprocessor.  The engine keeps
// going after reporting, so a sink may collect, log, or abort as the driver
// prefers.
type ErrorSink interface {
	Errorf(tok *Token, format string, args ...any)
}

// LogSink reports diagnostics through slog with filename:line positions.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Errorf(tok *Token, format string, args ...any) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	msg := fmt.Sprintf(format, args...)
	if tok != nil {
		logger.Error(msg, "file", tok.Filename, "line", tok.LineNo+tok.LineDelta)
		return
	}
	logger.Error(msg)
}

// CollectSink accumulates diagnostics; used by tests and by drivers that want
// to fail closed after the walk finishes.
type CollectSink struct {
	Diags []Diagnostic
}

// Diagnostic is one reported preprocessor problem.
type Diagnostic struct {
	Filename string
	Line     int
	Message  string
}

func (s *CollectSink) Errorf(tok *Token, format string, args ...any) {
	d := Diagnostic{Message: fmt.Sprintf(format, args...)}
	if tok != nil {
		d.Filename = tok.Filename
		d.Line = tok.LineNo + tok.LineDelta
	}
	s.Diags = append(s.Diags, d)
}
