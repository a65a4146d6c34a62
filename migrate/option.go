package migrate

import (
	"errors"
	"log/slog"
	"maps"

	"github.com/syssam/idbschema/compiler/gen"
)

// NilPolicy decides what a nil snapshot does to the slot counter.
type NilPolicy string

const (
	// NilSkip ignores nil snapshots: no entry, no slot consumed and the
	// upgrade map is not consulted.
	NilSkip NilPolicy = "skip"
	// NilReserve consumes a slot for every nil snapshot without producing
	// an entry. Registering an upgrade on a reserved slot is an error.
	NilReserve NilPolicy = "reserve"
)

// Valid reports whether p is a known policy.
func (p NilPolicy) Valid() bool {
	return p == NilSkip || p == NilReserve
}

// Config holds the sequencer configuration.
type Config struct {
	// VersionStart is the slot of the first version. Must be at least 1.
	VersionStart int
	// Upgrades maps slots to data upgrades.
	Upgrades map[int]UpgradeFunc
	// NilPolicy handles nil snapshots.
	NilPolicy NilPolicy
	// Strict fails sequencing on breaking changes between versions instead
	// of logging them.
	Strict bool
	// Validate configures breaking change detection.
	Validate []ValidateOption
	// Logger receives non-fatal diagnostics.
	Logger *slog.Logger
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Option configures the sequencer.
type Option func(*Config) error

// WithVersionStart sets the slot of the first version.
func WithVersionStart(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return gen.NewConfigError("VersionStart", n, "must be at least 1")
		}
		c.VersionStart = n
		return nil
	}
}

// WithUpgrade registers fn for the version taking the given slot.
func WithUpgrade(slot int, fn UpgradeFunc) Option {
	return func(c *Config) error {
		if fn == nil {
			return gen.NewConfigError("Upgrade", slot, "upgrade function cannot be nil")
		}
		if _, ok := c.Upgrades[slot]; ok {
			return gen.NewConfigError("Upgrade", slot, "slot already has an upgrade")
		}
		if c.Upgrades == nil {
			c.Upgrades = make(map[int]UpgradeFunc)
		}
		c.Upgrades[slot] = fn
		return nil
	}
}

// WithUpgradeMap merges m into the registered upgrades. Nil functions are
// ignored.
func WithUpgradeMap(m map[int]UpgradeFunc) Option {
	return func(c *Config) error {
		if c.Upgrades == nil {
			c.Upgrades = make(map[int]UpgradeFunc, len(m))
		}
		maps.Copy(c.Upgrades, m)
		maps.DeleteFunc(c.Upgrades, func(_ int, fn UpgradeFunc) bool { return fn == nil })
		return nil
	}
}

// WithNilPolicy sets the nil snapshot policy.
func WithNilPolicy(p NilPolicy) Option {
	return func(c *Config) error {
		if !p.Valid() {
			return gen.NewConfigError("NilPolicy", p, "unsupported policy; use skip or reserve")
		}
		c.NilPolicy = p
		return nil
	}
}

// WithStrict makes breaking changes between versions fatal.
func WithStrict(strict bool) Option {
	return func(c *Config) error {
		c.Strict = strict
		return nil
	}
}

// WithValidateOptions configures breaking change detection.
func WithValidateOptions(opts ...ValidateOption) Option {
	return func(c *Config) error {
		c.Validate = append(c.Validate, opts...)
		return nil
	}
}

// WithLogger sets the logger used for warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return gen.NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		VersionStart: 1,
		NilPolicy:    NilSkip,
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}
