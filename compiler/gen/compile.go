package gen

import (
	"fmt"

	"github.com/syssam/idbschema/compiler/load"
)

// Compiler turns schema inputs into store specs. A Compiler holds no state
// besides its configuration and is safe for concurrent use.
type Compiler struct {
	cfg *Config
}

// NewCompiler creates a Compiler with the given options.
func NewCompiler(opts ...Option) (*Compiler, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Compiler{cfg: cfg}, nil
}

// MustNewCompiler is like NewCompiler but panics if an option fails.
func MustNewCompiler(opts ...Option) *Compiler {
	c, err := NewCompiler(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Config returns a copy of the compiler configuration.
func (c *Compiler) Config() Config {
	return *c.cfg
}

// Compile loads input, resolves its entities and encodes them. Input may
// be any form accepted by load.Load.
func (c *Compiler) Compile(input any) (StoreSpec, error) {
	s, err := load.Load(input)
	if err != nil {
		return nil, err
	}
	entities, err := c.Resolve(s)
	if err != nil {
		return nil, err
	}
	return c.Encode(entities)
}

// Resolve discovers the entities of s and classifies their fields.
func (c *Compiler) Resolve(s *load.Schema) (*EntityMap, error) {
	return resolve(c.cfg, s)
}

// Encode encodes every entity in order. The whole call fails if any
// entity cannot be encoded or two entities map to the same store name.
func (c *Compiler) Encode(entities *EntityMap) (StoreSpec, error) {
	composite := c.cfg.FeatureEnabled(FeatureCompositeIndex.Name)
	spec := make(StoreSpec, 0, entities.Len())
	owners := make(map[string]string, entities.Len())
	for _, e := range entities.Entities() {
		s, err := encodeEntity(e, composite)
		if err != nil {
			return nil, err
		}
		name := c.cfg.Naming.StoreName(e.Name)
		if owner, ok := owners[name]; ok {
			return nil, NewSchemaError(ErrInvalidSchema, e.Name, "",
				fmt.Sprintf("store name %q is already used by type %s", name, owner))
		}
		owners[name] = e.Name
		spec = append(spec, Store{Name: name, Entity: e.Name, Spec: s})
	}
	return spec, nil
}

// Compile compiles input with a compiler built from opts.
func Compile(input any, opts ...Option) (StoreSpec, error) {
	c, err := NewCompiler(opts...)
	if err != nil {
		return nil, err
	}
	return c.Compile(input)
}
