package ipclink

import (
	"log/slog"
	"time"

	"github.com/wagiedev/ipclink-go/internal/config"
)

// Options configures connections, servers and processes.
type Options = config.Options

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options and fills in defaults.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options.Normalize()
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithRegistry sets the registry used to decode incoming frames.
// If not set, a registry with Response and Finish is created per call.
func WithRegistry(registry *Registry) Option {
	return func(o *Options) {
		o.Registry = registry
	}
}

// ===== Connections =====

// WithSilent makes new connections accept sends without transmitting them.
func WithSilent(silent bool) Option {
	return func(o *Options) {
		o.Silent = silent
	}
}

// WithReadBufferSize bounds a single socket read.
func WithReadBufferSize(size int) Option {
	return func(o *Options) {
		o.ReadBufferSize = size
	}
}

// WithNetwork selects the socket family used by Dial and Listen.
// Valid values: "unix" (default), "tcp".
func WithNetwork(network Network) Option {
	return func(o *Options) {
		o.Transport.Network = network
	}
}

// WithConnectTimeout records a connect timeout. It is passed along to
// ConnectToServer but not enforced; bound Dial with its context instead.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Transport.ConnectTimeout = timeout
	}
}

// ===== Processes =====

// WithPipeReadBufferSize bounds a single read from a child's output pipe.
func WithPipeReadBufferSize(size int) Option {
	return func(o *Options) {
		o.PipeReadBufferSize = size
	}
}

// WithDir sets the working directory for spawned processes.
func WithDir(dir string) Option {
	return func(o *Options) {
		o.Dir = dir
	}
}
