// Package config defines the parser's tunables (spec §6 "Configuration"),
// built through functional options in the same Opt/WithX shape used by
// open-policy-agent/opa's arena storage backend (arena.WithScavenger,
// arena.NewWithOpts) — the pack's closest precedent for configuring a
// single allocator-adjacent component.
package config

import (
	"github.com/sirupsen/logrus"

	"github.com/ha1tch/sqlcore/arena"
)

// Dialect selects minor syntactic variants (spec §6, §9 Open Questions).
type Dialect uint8

const (
	// DialectANSI is the baseline: chained comparisons (a = b = c) are
	// rejected as a syntax error rather than parsed left-associatively,
	// and `^` is not recognized as exponentiation (see DESIGN.md for the
	// rationale behind this Open-Question resolution).
	DialectANSI Dialect = iota
	// DialectExtended allows left-associative chained comparisons and
	// treats `^` as right-associative exponentiation.
	DialectExtended
)

const (
	DefaultMaxDepth        = 1000
	DefaultInitialBytes    = 64 * 1024
	DefaultMaxBlockBytes   = 1024 * 1024
	DefaultMaxTotalBytes   = 100 * 1024 * 1024
	DefaultMaxErrors       = 100
	DefaultContinueOnError = true
)

// Config holds every parser tunable named in spec §6.
type Config struct {
	MaxDepth        int
	InitialBytes    uint64
	MaxBlockBytes   uint64
	MaxTotalBytes   uint64
	MaxErrors       int
	ContinueOnError bool
	Dialect         Dialect
	Logger          *logrus.Entry
}

// Option configures a Config in New.
type Option func(*Config)

// WithMaxDepth overrides max_depth.
func WithMaxDepth(n int) Option { return func(c *Config) { c.MaxDepth = n } }

// WithInitialBytes overrides initial_arena_bytes.
func WithInitialBytes(n uint64) Option { return func(c *Config) { c.InitialBytes = n } }

// WithMaxBlockBytes overrides max_block_bytes.
func WithMaxBlockBytes(n uint64) Option { return func(c *Config) { c.MaxBlockBytes = n } }

// WithMaxTotalBytes overrides max_total_bytes.
func WithMaxTotalBytes(n uint64) Option { return func(c *Config) { c.MaxTotalBytes = n } }

// WithMaxErrors overrides max_errors (script-mode failure budget).
func WithMaxErrors(n int) Option { return func(c *Config) { c.MaxErrors = n } }

// WithContinueOnError overrides continue_on_error.
func WithContinueOnError(b bool) Option { return func(c *Config) { c.ContinueOnError = b } }

// WithDialect selects a dialect.
func WithDialect(d Dialect) Option { return func(c *Config) { c.Dialect = d } }

// WithLogger attaches a structured logger for script-mode recovery
// notices and CLI-level diagnostics. The hot parse path never logs.
func WithLogger(l *logrus.Entry) Option { return func(c *Config) { c.Logger = l } }

// New builds a Config from defaults plus the given options.
func New(opts ...Option) Config {
	c := Config{
		MaxDepth:        DefaultMaxDepth,
		InitialBytes:    DefaultInitialBytes,
		MaxBlockBytes:   DefaultMaxBlockBytes,
		MaxTotalBytes:   DefaultMaxTotalBytes,
		MaxErrors:       DefaultMaxErrors,
		ContinueOnError: DefaultContinueOnError,
		Dialect:         DialectANSI,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ArenaConfig translates the byte-oriented budgets into an arena.Config
// sized for ast.Node slots.
func (c Config) ArenaConfig(elemSize uint64) arena.Config {
	return arena.Config{
		ElemSize:      elemSize,
		InitialBytes:  c.InitialBytes,
		MaxBlockBytes: c.MaxBlockBytes,
		MaxTotalBytes: c.MaxTotalBytes,
	}
}
