package host

import (
	"log/slog"
	"time"
)

// Option defines a functional option for configuring the Prober.
type Option func(*Prober)

// WithBinary sets the host executable to query. Default: "codium".
func WithBinary(name string) Option {
	return func(p *Prober) {
		if name != "" {
			p.binary = name
		}
	}
}

// WithTimeout bounds the version command. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithRunner replaces command execution, for tests.
func WithRunner(run Runner) Option {
	return func(p *Prober) {
		if run != nil {
			p.run = run
		}
	}
}

// WithProductFiles sets product configuration files consulted when the
// binary cannot be run.
func WithProductFiles(paths ...string) Option {
	return func(p *Prober) {
		p.productFiles = append(p.productFiles, paths...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}
