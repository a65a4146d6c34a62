package load

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/sync/errgroup"
)

// NilSnapshot is the snapshot argument that stands for an empty slot.
const NilSnapshot = "-"

// ReadSources reads the SDL files matched by the given glob patterns, in
// pattern order and, within a pattern, in lexical order. A pattern without
// glob metacharacters that matches nothing is reported as a missing file.
func ReadSources(ctx context.Context, patterns ...string) ([]*ast.Source, error) {
	var paths []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("idbschema: bad pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			matches = []string{p}
		}
		paths = append(paths, matches...)
	}

	sources := make([]*ast.Source, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			b, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("idbschema: read schema: %w", err)
			}
			sources[i] = &ast.Source{Name: path, Input: string(b)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

// Snapshots loads one schema snapshot per argument. Each argument is a glob
// pattern whose files form a single document; NilSnapshot yields a nil
// entry. Snapshots are loaded concurrently and returned in argument order.
func Snapshots(ctx context.Context, args ...string) ([]*Schema, error) {
	out := make([]*Schema, len(args))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, arg := range args {
		if arg == NilSnapshot {
			continue
		}
		eg.Go(func() error {
			sources, err := ReadSources(ctx, arg)
			if err != nil {
				return err
			}
			s, err := Parse(sources...)
			if err != nil {
				return fmt.Errorf("snapshot %d (%s): %w", i, arg, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
