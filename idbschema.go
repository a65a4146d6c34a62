// Package idbschema compiles GraphQL schemas into the index specs of an
// IndexedDB style object store engine and threads successive schema
// snapshots into a versioned migration plan.
//
//	client, err := idbschema.New([]any{v1SDL, v2SDL},
//	    idbschema.WithSequencerOptions(migrate.WithUpgrade(2, addOwnerIDs)),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := client.Apply(ctx, engine); err != nil {
//	    return err
//	}
//
// The compiler and the sequencer live in the compiler/gen and migrate
// packages; this package wires them together and caches their output.
package idbschema

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/idbschema/compiler/gen"
	"github.com/syssam/idbschema/migrate"
)

// Option configures a Client.
type Option func(*options) error

type options struct {
	compiler  []gen.Option
	sequencer []migrate.Option
	cache     Cache
}

// WithCompilerOptions passes options to the schema compiler.
func WithCompilerOptions(opts ...gen.Option) Option {
	return func(o *options) error {
		o.compiler = append(o.compiler, opts...)
		return nil
	}
}

// WithSequencerOptions passes options to the version sequencer.
func WithSequencerOptions(opts ...migrate.Option) Option {
	return func(o *options) error {
		o.sequencer = append(o.sequencer, opts...)
		return nil
	}
}

// WithLogger sets the logger of both the compiler and the sequencer.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) error {
		if l == nil {
			return gen.NewConfigError("Logger", nil, "logger cannot be nil")
		}
		o.compiler = append(o.compiler, gen.WithLogger(l))
		o.sequencer = append(o.sequencer, migrate.WithLogger(l))
		return nil
	}
}

// WithCache caches compiled textual snapshots in c.
func WithCache(c Cache) Option {
	return func(o *options) error {
		if c == nil {
			return gen.NewConfigError("Cache", nil, "cache cannot be nil")
		}
		o.cache = c
		return nil
	}
}

// Client holds the schema snapshots of an application and the plan built
// from them. It is safe for concurrent use.
type Client struct {
	snapshots []any
	compiler  *gen.Compiler
	seqOpts   []migrate.Option
	cache     Cache
	cfg       string

	group singleflight.Group
	mu    sync.RWMutex
	plan  *migrate.Plan
}

// New creates a Client for the given snapshots, oldest first. A nil
// snapshot stands for an empty slot.
func New(snapshots []any, opts ...Option) (*Client, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	c, err := gen.NewCompiler(o.compiler...)
	if err != nil {
		return nil, err
	}
	// Fail on bad sequencer options here rather than on first use.
	if _, err := migrate.NewConfig(o.sequencer...); err != nil {
		return nil, err
	}
	return &Client{
		snapshots: slices.Clone(snapshots),
		compiler:  c,
		seqOpts:   o.sequencer,
		cache:     o.cache,
		cfg:       fingerprint(c.Config()),
	}, nil
}

// Compiler returns the schema compiler of the client.
func (c *Client) Compiler() *gen.Compiler {
	return c.compiler
}

// Compile compiles a single snapshot with the client configuration.
func (c *Client) Compile(ctx context.Context, input any) (gen.StoreSpec, error) {
	return c.cachedCompiler(ctx).Compile(input)
}

func (c *Client) cachedCompiler(ctx context.Context) *cachedCompiler {
	return &cachedCompiler{ctx: ctx, c: c.compiler, cache: c.cache, cfg: c.cfg}
}

// Plan returns the migration plan of the client snapshots. The plan is
// built once; concurrent callers share the same build.
func (c *Client) Plan(ctx context.Context) (*migrate.Plan, error) {
	c.mu.RLock()
	p := c.plan
	c.mu.RUnlock()
	if p != nil {
		return p, nil
	}
	v, err, _ := c.group.Do("plan", func() (any, error) {
		seq, err := migrate.NewSequencer(c.cachedCompiler(ctx), c.seqOpts...)
		if err != nil {
			return nil, err
		}
		p, err := seq.Sequence(c.snapshots...)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.plan = p
		c.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*migrate.Plan), nil
}

// Latest returns the newest version of the plan.
func (c *Client) Latest(ctx context.Context) (migrate.Entry, error) {
	p, err := c.Plan(ctx)
	if err != nil {
		return migrate.Entry{}, err
	}
	e, ok := p.Latest()
	if !ok {
		return migrate.Entry{}, ErrNoVersions
	}
	return e, nil
}

// Store returns the index spec of the named store in the newest version.
func (c *Client) Store(ctx context.Context, name string) (string, error) {
	e, err := c.Latest(ctx)
	if err != nil {
		return "", err
	}
	spec, ok := e.Stores.Get(name)
	if !ok {
		return "", NewStoreNotFoundError(name, e.Version)
	}
	return spec, nil
}

// Apply declares every version of the plan on eng.
func (c *Client) Apply(ctx context.Context, eng migrate.Engine) error {
	p, err := c.Plan(ctx)
	if err != nil {
		return err
	}
	return migrate.Apply(ctx, eng, p)
}
