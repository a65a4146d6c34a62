package gen

import (
	"errors"
	"log/slog"
	"slices"
)

// DefaultEntityIDTypes are the scalars accepted as an id field in
// convention mode.
var DefaultEntityIDTypes = []string{"ID", "Int", "String"}

// Config holds the compiler configuration.
type Config struct {
	// EntityIDTypes lists the scalar names a convention-mode id field may
	// have.
	EntityIDTypes []string

	// SuppressDuplicateDirectivesWarning silences the warning logged when a
	// schema redefines a marker directive differently.
	SuppressDuplicateDirectivesWarning bool

	// Logger receives non-fatal diagnostics.
	Logger *slog.Logger

	// Features enables optional compiler behavior.
	Features []Feature

	// Naming derives store names from entity names.
	Naming Naming
}

// FeatureEnabled reports if the given feature name was enabled.
func (c *Config) FeatureEnabled(name string) bool {
	for _, f := range c.Features {
		if f.Name == name {
			return true
		}
	}
	f, ok := FeatureByName(name)
	return ok && f.Default
}

func (c *Config) isEntityIDType(name string) bool {
	return slices.Contains(c.EntityIDTypes, name)
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Option configures the compiler.
type Option func(*Config) error

// WithEntityIDTypes replaces the scalars accepted as a convention-mode id.
func WithEntityIDTypes(types ...string) Option {
	return func(c *Config) error {
		if len(types) == 0 {
			return NewConfigError("EntityIDTypes", nil, "at least one type is required")
		}
		if slices.Contains(types, "") {
			return NewConfigError("EntityIDTypes", types, "type names cannot be empty")
		}
		c.EntityIDTypes = slices.Clone(types)
		return nil
	}
}

// WithSuppressDuplicateDirectivesWarning toggles the redefined marker warning.
func WithSuppressDuplicateDirectivesWarning(suppress bool) Option {
	return func(c *Config) error {
		c.SuppressDuplicateDirectivesWarning = suppress
		return nil
	}
}

// WithLogger sets the logger used for warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithFeatures enables specific features.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		c.Features = append(c.Features, features...)
		return nil
	}
}

// WithFeatureNames enables features by name, as found in config files.
func WithFeatureNames(names ...string) Option {
	return func(c *Config) error {
		for _, n := range names {
			f, ok := FeatureByName(n)
			if !ok {
				return NewConfigError("Features", n, "unknown feature")
			}
			c.Features = append(c.Features, f)
		}
		return nil
	}
}

// WithNaming sets the store naming strategy.
func WithNaming(n Naming) Option {
	return func(c *Config) error {
		if !n.Valid() {
			return NewConfigError("Naming", n, "unsupported naming; use none, plural, snake or plural_snake")
		}
		c.Naming = n
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
// Returns a joined error if any options failed.
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
		EntityIDTypes: slices.Clone(DefaultEntityIDTypes),
		Naming:        NamingNone,
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
