package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type SlogLogger struct {
	l *slog.Logger
}

func New() *SlogLogger {
	return NewWithWriter(os.Stdout)
}

func NewWithWriter(w io.Writer) *SlogLogger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	return &SlogLogger{l: slog.New(handler)}
}

func (s *SlogLogger) Info(msg string, args ...any) {
	s.l.Info(msg, args...)
}

func (s *SlogLogger) Error(msg string, args ...any) {
	s.l.Error(msg, args...)
}

// Event writes one networking event. Messages naming a failure are logged at
// error level, everything else at info.
func (s *SlogLogger) Event(message, detail string) {
	if strings.Contains(strings.ToLower(message), "failure") {
		s.l.Error(message, "detail", detail)
		return
	}
	s.l.Info(message, "detail", detail)
}
