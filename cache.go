package idbschema

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/idbschema/compiler/gen"
)

// Cache is the interface for caching compiled store specs.
// Users may implement this interface with a shared store so that repeated
// runs skip snapshots that did not change.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache.
	Set(ctx context.Context, key string, value []byte) error
}

// MemoryCache is an in-process Cache. The zero value is ready to use.
type MemoryCache struct {
	mu sync.RWMutex
	m  map[string][]byte
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.m[key], nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = make(map[string][]byte)
	}
	c.m[key] = slices.Clone(value)
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

var cacheSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/syssam/idbschema/cache"))

// CacheKey identifies one compiled snapshot.
type CacheKey struct {
	// Config fingerprints the compiler options that change the output.
	Config string
	// Source is the SDL text of the snapshot.
	Source string
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	return uuid.NewSHA1(cacheSpace, []byte(k.Config+"\x00"+k.Source)).String()
}

// fingerprint renders the compiler options that change compiled output.
func fingerprint(cfg gen.Config) string {
	features := make([]string, 0, len(cfg.Features))
	for _, f := range cfg.Features {
		features = append(features, f.Name)
	}
	slices.Sort(features)
	return fmt.Sprintf("ids=%s;naming=%s;features=%s",
		strings.Join(cfg.EntityIDTypes, ","), cfg.Naming, strings.Join(features, ","))
}

// sourceText returns the SDL text of textual inputs. Parsed documents and
// built schemas are not cached.
func sourceText(input any) (string, bool) {
	switch v := input.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case *ast.Source:
		if v == nil {
			return "", false
		}
		return v.Name + "\x00" + v.Input, true
	case []*ast.Source:
		var sb strings.Builder
		for _, s := range v {
			if s == nil {
				return "", false
			}
			sb.WriteString(s.Name)
			sb.WriteByte(0)
			sb.WriteString(s.Input)
			sb.WriteByte(0)
		}
		return sb.String(), true
	default:
		return "", false
	}
}

// cachedCompiler consults the cache before compiling textual snapshots.
type cachedCompiler struct {
	ctx   context.Context
	c     *gen.Compiler
	cache Cache
	cfg   string
}

func (cc *cachedCompiler) Compile(input any) (gen.StoreSpec, error) {
	if cc.cache == nil {
		return cc.c.Compile(input)
	}
	text, ok := sourceText(input)
	if !ok {
		return cc.c.Compile(input)
	}
	key := CacheKey{Config: cc.cfg, Source: text}.String()
	b, err := cc.cache.Get(cc.ctx, key)
	if err != nil {
		return nil, &CacheError{Op: "get", Key: key, Err: err}
	}
	if b != nil {
		var spec gen.StoreSpec
		if err := msgpack.Unmarshal(b, &spec); err == nil {
			return spec, nil
		}
	}
	spec, err := cc.c.Compile(input)
	if err != nil {
		return nil, err
	}
	if b, err = msgpack.Marshal(spec); err != nil {
		return nil, &CacheError{Op: "encode", Key: key, Err: err}
	}
	if err := cc.cache.Set(cc.ctx, key, b); err != nil {
		return nil, &CacheError{Op: "set", Key: key, Err: err}
	}
	return spec, nil
}
