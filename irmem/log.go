package irmem

import (
	"io"
	"log/slog"
)

// logger wraps *slog.Logger so downgrade notices stay one call site
// regardless of whether the caller configured a logger.
type logger struct {
	l *slog.Logger
}

func newLogger(l *slog.Logger) *logger {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &logger{l}
}

// downgrade logs a silent Mirror->HostOnly policy downgrade. This is
// observational only: downgrades are never surfaced as errors.
func (lg *logger) downgrade(size, alignment uint64) {
	lg.l.Debug("allocation policy downgraded to HostOnly: process unavailable or cannot JIT",
		slog.Uint64("size", size), slog.Uint64("alignment", alignment))
}

// remoteLost logs that a previously-resolvable process reference can no
// longer be resolved.
func (lg *logger) remoteLost() {
	lg.l.Debug("remote process reference lost; falling back to degraded path")
}
