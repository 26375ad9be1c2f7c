// Package sinks provides the logging sink implementations wired by the host:
// console text, newline-delimited JSON and an in-memory buffer for tests.
package sinks

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"fightstate/runtime/logging"
)

// Console emits one human-readable line per event.
type Console struct {
	mu       sync.Mutex
	writer   io.Writer
	useColor bool
}

// NewConsole constructs a console sink. A nil writer defaults to stdout.
func NewConsole(w io.Writer, useColor bool) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{writer: w, useColor: useColor}
}

var severityLabels = map[logging.Severity]string{
	logging.SeverityDebug: "DEBUG",
	logging.SeverityInfo:  "INFO",
	logging.SeverityWarn:  "WARN",
	logging.SeverityError: "ERROR",
}

var severityColors = map[logging.Severity]string{
	logging.SeverityDebug: "\033[90m",
	logging.SeverityInfo:  "\033[36m",
	logging.SeverityWarn:  "\033[33m",
	logging.SeverityError: "\033[31m",
}

// Write satisfies logging.Sink.
func (s *Console) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	label := severityLabels[event.Severity]
	if label == "" {
		label = "INFO"
	}
	reset := ""
	color := ""
	if s.useColor {
		color = severityColors[event.Severity]
		if color != "" {
			reset = "\033[0m"
		}
	}
	_, err := fmt.Fprintf(s.writer, "%s %s%-5s%s tick=%d %s actor=%s%s\n",
		event.Time.Format(time.RFC3339),
		color, label, reset,
		event.Tick,
		event.Type,
		event.Actor.ID,
		formatExtra(event.Extra),
	)
	return err
}

// Close satisfies logging.Sink.
func (s *Console) Close(context.Context) error {
	return nil
}

func formatExtra(extra map[string]any) string {
	if len(extra) == 0 {
		return ""
	}
	out := ""
	for k, v := range extra {
		out += fmt.Sprintf(" %s=%v", k, v)
	}
	return out
}
