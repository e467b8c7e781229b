// Package logging builds the structured per-worker loggers used across
// AlphaSolve. Every log line uses one fixed text layout so that tailing a
// worker's log file is the same experience regardless of which component
// emitted the line.
//
// This generalizes the orchestrator run-logging shape seen in
// codeready-toolchain-tarsy's pkg/agent/orchestrator/runner.go (one
// slog.Logger per orchestration unit, attributes carrying the run/worker
// identity) and the "attach one logger per subsystem" layering used by
// None9527-NGOClaw's zap loggers, on top of log/slog rather than zap — see
// DESIGN.md for why slog rather than a third-party logging library.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// lineHandler renders one record per call as:
//
//	2006-01-02 15:04:05.000 │ LEVEL │ msg key=value key=value
type lineHandler struct {
	w     io.Writer
	attrs []slog.Attr
	group string
}

// NewLineHandler wraps w with the AlphaSolve text layout.
func NewLineHandler(w io.Writer) slog.Handler {
	return &lineHandler{w: w}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool { return level >= slog.LevelDebug }

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String()
	line := fmt.Sprintf("%s │ %-5s │ %s",
		r.Time.Format("2006-01-02 15:04:05.000"), level, r.Message)

	for _, a := range h.attrs {
		line += formatAttr(h.group, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		line += formatAttr(h.group, a)
		return true
	})

	_, err := fmt.Fprintln(h.w, line)
	return err
}

func formatAttr(group string, a slog.Attr) string {
	if group != "" {
		return fmt.Sprintf(" %s.%s=%v", group, a.Key, a.Value)
	}
	return fmt.Sprintf(" %s=%v", a.Key, a.Value)
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &lineHandler{w: h.w, group: h.group}
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return next
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	next := &lineHandler{w: h.w, attrs: h.attrs, group: name}
	return next
}

// NewWorkerLogger opens (creating if needed) logDir/worker-<id>.log and
// returns an *slog.Logger writing to it with the AlphaSolve line layout,
// tagged with a "worker" attribute.
func NewWorkerLogger(logDir string, workerID int) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("logging: create log dir: %w", err)
	}
	path := filepath.Join(logDir, fmt.Sprintf("worker-%d.log", workerID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: open %s: %w", path, err)
	}
	logger := slog.New(NewLineHandler(f)).With(slog.Int("worker", workerID))
	return logger, f, nil
}
