// Package diag collects the generator's diagnostics stream: schema
// authoring problems, unresolved references and imports, notation
// ambiguities. Diagnostics never abort a run; they are deduplicated,
// recorded in first-seen order, and emitted through slog.
package diag

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	set "github.com/hashicorp/go-set/v3"
)

// Reporter accumulates deduplicated diagnostic lines. It is not safe
// for concurrent use; the generation run is single-threaded.
type Reporter struct {
	logger *slog.Logger
	seen   *set.Set[string]
	lines  []string
}

func New(logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{
		logger: logger,
		seen:   set.New[string](64),
	}
}

// NewLogger builds the text logger the CLI wires in. Verbose enables
// debug-level output.
func NewLogger(dest io.Writer, verbose bool) *slog.Logger {
	if dest == nil {
		dest = os.Stderr
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(dest, &slog.HandlerOptions{Level: level}))
}

// Infof records an informational diagnostic.
func (r *Reporter) Infof(format string, args ...any) {
	r.record(slog.LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf records a warning diagnostic.
func (r *Reporter) Warnf(format string, args ...any) {
	r.record(slog.LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf records a non-fatal error diagnostic (schema-authoring and
// consistency problems, not Go errors).
func (r *Reporter) Errorf(format string, args ...any) {
	r.record(slog.LevelError, fmt.Sprintf(format, args...))
}

func (r *Reporter) record(level slog.Level, msg string) {
	if !r.seen.Insert(msg) {
		return
	}
	r.lines = append(r.lines, msg)
	r.logger.Log(context.Background(), level, msg)
}

// Lines returns every distinct diagnostic in first-seen order.
func (r *Reporter) Lines() []string {
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Has reports whether the exact diagnostic line was recorded. Intended
// for tests.
func (r *Reporter) Has(line string) bool {
	return r.seen.Contains(line)
}

// Len returns the number of distinct diagnostics recorded.
func (r *Reporter) Len() int {
	return len(r.lines)
}
