// Command idbschema compiles GraphQL schema snapshots into object store
// index specs and migration plans.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vektah/gqlparser/v2/ast"
	"gopkg.in/yaml.v3"

	"github.com/syssam/idbschema"
	"github.com/syssam/idbschema/compiler/gen/golang"
	"github.com/syssam/idbschema/compiler/load"
	"github.com/syssam/idbschema/internal/config"
	"github.com/syssam/idbschema/migrate"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const defaultLock = "idbschema.lock"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runWithArgs(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// cli is the state shared by every command.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	cfg    *config.File
	cache  *idbschema.MemoryCache
}

type command struct {
	name  string
	usage string
	run   func(c *cli, ctx context.Context, args []string) int
}

var commands = []command{
	{"compile", "print the migration plan of the snapshots", (*cli).compile},
	{"gen", "write the migration plan as Go source", (*cli).gen},
	{"lock", "write or verify the lock file", (*cli).lock},
	{"watch", "print the migration plan each time a snapshot changes", (*cli).watch},
}

func runWithArgs(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("idbschema", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the project file (default: idbschema.{yml,yaml,toml} if present)")
	verbose := fs.Bool("v", false, "enable debug logging")
	fs.Usage = func() {
		_ = writeln(stderr, "Usage: idbschema [-config file] [-v] <command> [flags] [snapshot...]")
		_ = writeln(stderr)
		_ = writeln(stderr, "Each snapshot argument is a glob of schema files; \"-\" is an empty slot.")
		_ = writeln(stderr)
		_ = writeln(stderr, "Commands:")
		for _, cmd := range commands {
			_ = writef(stderr, "  %-8s %s\n", cmd.name, cmd.usage)
		}
		_ = writeln(stderr)
		_ = writeln(stderr, "Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		_ = writeln(stderr, "error: a command is required")
		fs.Usage()
		return exitUsage
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	c := &cli{
		stdout: stdout,
		stderr: stderr,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
		cache:  &idbschema.MemoryCache{},
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		_ = writef(stderr, "error: %v\n", err)
		return exitFailure
	}
	c.cfg = cfg

	name, rest := fs.Arg(0), fs.Args()[1:]
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd.run(c, ctx, rest)
		}
	}
	_ = writef(stderr, "error: unknown command %q\n", name)
	fs.Usage()
	return exitUsage
}

func loadConfig(path string) (*config.File, error) {
	if path == "" {
		found, err := config.Find(".")
		if err != nil || found == "" {
			return &config.File{}, err
		}
		path = found
	}
	return config.Load(path)
}

// patterns returns the snapshot globs: one snapshot per command line
// argument when given, else the project file snapshots followed by its
// gqlgen project. A nil entry is an empty slot.
func (c *cli) patterns(args []string) ([][]string, error) {
	fromConfig := len(args) == 0
	if fromConfig {
		args = c.cfg.Snapshots
	}
	out := make([][]string, 0, len(args)+1)
	for _, a := range args {
		if a == load.NilSnapshot {
			out = append(out, nil)
			continue
		}
		out = append(out, []string{a})
	}
	if fromConfig && c.cfg.GQLGen != "" {
		gc, err := load.LoadGQLGenConfig(c.cfg.GQLGen)
		if err != nil {
			return nil, err
		}
		out = append(out, gc.Patterns())
	}
	return out, nil
}

// snapshots reads every snapshot as SDL sources so that unchanged ones are
// served from the cache.
func (c *cli) snapshots(ctx context.Context, patterns [][]string) ([]any, error) {
	out := make([]any, len(patterns))
	for i, p := range patterns {
		if p == nil {
			continue
		}
		sources, err := load.ReadSources(ctx, p...)
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", i, err)
		}
		out[i] = sources
		c.logger.Debug("snapshot loaded", "index", i, "files", sourceNames(sources))
	}
	return out, nil
}

func sourceNames(sources []*ast.Source) []string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name
	}
	return names
}

// plan loads the snapshots and sequences them.
func (c *cli) plan(ctx context.Context, patterns [][]string) (*migrate.Plan, error) {
	snaps, err := c.snapshots(ctx, patterns)
	if err != nil {
		return nil, err
	}
	client, err := idbschema.New(snaps,
		idbschema.WithLogger(c.logger),
		idbschema.WithCache(c.cache),
		idbschema.WithCompilerOptions(c.cfg.CompilerOptions()...),
		idbschema.WithSequencerOptions(c.cfg.SequencerOptions()...),
	)
	if err != nil {
		return nil, err
	}
	return client.Plan(ctx)
}

// planFromArgs resolves the snapshot arguments and builds their plan,
// returning the exit code to use when it fails.
func (c *cli) planFromArgs(ctx context.Context, fs *flag.FlagSet) (*migrate.Plan, int) {
	patterns, err := c.patterns(fs.Args())
	if err != nil {
		_ = writef(c.stderr, "error: %v\n", err)
		return nil, exitFailure
	}
	if len(patterns) == 0 {
		_ = writeln(c.stderr, "error: no snapshots given and none configured")
		fs.Usage()
		return nil, exitUsage
	}
	p, err := c.plan(ctx, patterns)
	if err != nil {
		_ = writef(c.stderr, "error: %v\n", err)
		return nil, exitFailure
	}
	return p, exitOK
}

func (c *cli) newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {
		_ = writef(c.stderr, "Usage: idbschema %s [flags] [snapshot...]\n\n%s\n\nOptions:\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

func (c *cli) compile(ctx context.Context, args []string) int {
	fs := c.newFlagSet("compile", "Prints the migration plan of the snapshots.")
	format := fs.String("format", "json", "output format: json or yaml")
	latest := fs.Bool("latest", false, "print only the store specs of the newest version")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *format != "json" && *format != "yaml" {
		_ = writef(c.stderr, "error: unsupported format %q\n", *format)
		return exitUsage
	}
	p, code := c.planFromArgs(ctx, fs)
	if p == nil {
		return code
	}
	if err := c.print(p, *format, *latest); err != nil {
		_ = writef(c.stderr, "error: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func (c *cli) print(p *migrate.Plan, format string, latest bool) error {
	var v any = p
	if latest {
		e, ok := p.Latest()
		if !ok {
			return idbschema.ErrNoVersions
		}
		v = e.Stores
	}
	if format == "yaml" {
		enc := yaml.NewEncoder(c.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) gen(ctx context.Context, args []string) int {
	fs := c.newFlagSet("gen", "Writes the migration plan as Go source.")
	out := fs.String("o", c.cfg.Output.Path, `output file, "-" for stdout`)
	pkg := fs.String("pkg", "", "package name (default: output.package or schema)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *out == "" {
		_ = writeln(c.stderr, "error: -o is required")
		fs.Usage()
		return exitUsage
	}
	p, code := c.planFromArgs(ctx, fs)
	if p == nil {
		return code
	}
	opts := c.cfg.GenerateOptions()
	if *pkg != "" {
		opts = append(opts, golang.WithPackage(*pkg))
	}
	var err error
	if *out == "-" {
		err = golang.Write(c.stdout, p, opts...)
	} else {
		err = golang.WriteFile(*out, p, opts...)
	}
	if err != nil {
		_ = writef(c.stderr, "error: %v\n", err)
		return exitFailure
	}
	c.logger.Debug("go source written", "path", *out, "versions", p.Len())
	return exitOK
}

func (c *cli) lock(ctx context.Context, args []string) int {
	fs := c.newFlagSet("lock", "Writes the lock file of the migration plan, or verifies the plan against it.")
	def := c.cfg.Lock
	if def == "" {
		def = defaultLock
	}
	path := fs.String("lock", def, "lock file path")
	verify := fs.Bool("verify", false, "verify the plan against the lock file instead of writing it")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	p, code := c.planFromArgs(ctx, fs)
	if p == nil {
		return code
	}
	if !*verify {
		if err := migrate.WriteLock(*path, migrate.NewLock(p)); err != nil {
			_ = writef(c.stderr, "error: %v\n", err)
			return exitFailure
		}
		_ = writef(c.stdout, "locked %d versions in %s\n", p.Len(), *path)
		return exitOK
	}
	l, err := migrate.ReadLock(*path)
	if err != nil {
		_ = writef(c.stderr, "error: %v\n", err)
		return exitFailure
	}
	if err := l.Verify(p); err != nil {
		_ = writef(c.stderr, "error: %v\n", err)
		return exitFailure
	}
	_ = writef(c.stdout, "%s is up to date\n", *path)
	return exitOK
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
