package irmem

import "log/slog"

// Option configures an optional, ambient piece of a MemoryMap at
// construction time. There is no configuration-file layer: the map has no
// durable state of its own, so functional options cover everything
// (mirrors the teacher's debugger.New(emu), which also takes no config
// object).
type Option func(*MemoryMap)

// WithLogger routes downgrade/degraded-path notices to l instead of
// discarding them.
func WithLogger(l *slog.Logger) Option {
	return func(m *MemoryMap) {
		m.log = newLogger(l)
	}
}

// WithDefaultPolicy sets the policy ImportValue and WriteValue use for the
// blocks they allocate. Defaults to Mirror.
func WithDefaultPolicy(policy AllocationPolicy) Option {
	return func(m *MemoryMap) {
		m.defaultPolicy = policy
	}
}
