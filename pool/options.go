// File: pool/options.go
// Author: momentics <momentics@gmail.com>
//
// Functional options for registries and groups.

package pool

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/hioload-buf/api"
)

// Option configures a Registry.
type Option func(*registryOptions)

type registryOptions struct {
	cfg        *Config
	logger     *slog.Logger
	registerer prometheus.Registerer
	factory    AllocatorFactory
}

// WithConfig replaces DefaultConfig. A nil config is ignored.
func WithConfig(cfg *Config) Option {
	return func(o *registryOptions) {
		if cfg != nil {
			o.cfg = cfg
		}
	}
}

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *registryOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics exports per-group metrics through reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *registryOptions) {
		o.registerer = reg
	}
}

// WithAllocatorFactory overrides how group backends are built.
func WithAllocatorFactory(f AllocatorFactory) Option {
	return func(o *registryOptions) {
		o.factory = f
	}
}

func applyOptions(opts ...Option) *registryOptions {
	o := &registryOptions{
		cfg:    DefaultConfig(),
		logger: slog.Default().With("component", "hioload-buf"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// GroupOption configures a Group at init time.
type GroupOption func(*groupOptions)

type groupOptions struct {
	limitCount int
	limitSize  int64
	allocator  api.Allocator
}

// WithLimitCount caps the number of buffers of a count-limited group.
func WithLimitCount(n int) GroupOption {
	return func(o *groupOptions) { o.limitCount = n }
}

// WithLimitSize caps the bytes of a size-limited group.
func WithLimitSize(n int64) GroupOption {
	return func(o *groupOptions) { o.limitSize = n }
}

// WithAllocator gives the group a specific backend instead of one built by
// the registry factory.
func WithAllocator(a api.Allocator) GroupOption {
	return func(o *groupOptions) { o.allocator = a }
}
