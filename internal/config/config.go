// Package config loads the idbschema project file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/syssam/idbschema/compiler/gen"
	"github.com/syssam/idbschema/compiler/gen/golang"
	"github.com/syssam/idbschema/migrate"
)

// Names are the file names Find looks for, in order.
var Names = []string{"idbschema.yml", "idbschema.yaml", "idbschema.toml"}

// File is the project file.
type File struct {
	// Snapshots lists one glob pattern per schema snapshot, oldest first.
	// "-" stands for an empty slot.
	Snapshots []string `yaml:"snapshots" toml:"snapshots" validate:"dive,required"`
	// GQLGen is a gqlgen.yml whose schema files form the newest snapshot.
	GQLGen string `yaml:"gqlgen" toml:"gqlgen"`
	// VersionStart is the slot of the first snapshot.
	VersionStart int `yaml:"versionStart" toml:"versionStart" validate:"omitempty,gte=1"`
	// NilPolicy is how empty slots are handled: skip or reserve.
	NilPolicy string `yaml:"nilPolicy" toml:"nilPolicy" validate:"omitempty,oneof=skip reserve"`
	// Naming is the store naming strategy.
	Naming string `yaml:"naming" toml:"naming" validate:"omitempty,oneof=none plural snake plural_snake"`
	// EntityIDTypes overrides the id types recognized by convention.
	EntityIDTypes []string `yaml:"entityIdTypes" toml:"entityIdTypes" validate:"dive,required"`
	// Features enables optional compiler features by name.
	Features []string `yaml:"features" toml:"features" validate:"dive,required"`

	SuppressDuplicateDirectivesWarning bool `yaml:"suppressDuplicateDirectivesWarning" toml:"suppressDuplicateDirectivesWarning"`

	// Strict fails sequencing on breaking changes instead of logging them.
	Strict         bool `yaml:"strict" toml:"strict"`
	AllowDropStore bool `yaml:"allowDropStore" toml:"allowDropStore"`
	AllowDropIndex bool `yaml:"allowDropIndex" toml:"allowDropIndex"`

	// Lock is the lock file path.
	Lock   string `yaml:"lock" toml:"lock"`
	Output Output `yaml:"output" toml:"output"`
}

// Output configures Go code generation.
type Output struct {
	Path    string `yaml:"path" toml:"path" validate:"omitempty,endswith=.go"`
	Package string `yaml:"package" toml:"package"`
}

// Find returns the first project file present in dir, or an empty string
// when there is none.
func Find(dir string) (string, error) {
	for _, name := range Names {
		path := filepath.Join(dir, name)
		_, err := os.Stat(path)
		switch {
		case err == nil:
			return path, nil
		case !errors.Is(err, os.ErrNotExist):
			return "", err
		}
	}
	return "", nil
}

// Load reads and validates the project file at path. The format follows
// the file extension.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("idbschema: read config: %w", err)
	}
	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		err = decodeYAML(b, &f)
	case ".toml":
		err = decodeTOML(b, &f)
	default:
		return nil, fmt.Errorf("idbschema: unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("idbschema: parse %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func decodeYAML(b []byte, f *File) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeTOML(b []byte, f *File) error {
	md, err := toml.Decode(string(b), f)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the file values. Every failing field is reported as a
// gen.ConfigError.
func (f *File) Validate() error {
	err := validate.Struct(f)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, gen.NewConfigError(fe.Namespace(), fe.Value(), failure(fe)))
	}
	return errors.Join(errs...)
}

func failure(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "endswith":
		return "must end with " + fe.Param()
	case "required":
		return "cannot be empty"
	default:
		return "failed " + fe.Tag()
	}
}

// CompilerOptions returns the compiler options set by the file.
func (f *File) CompilerOptions() []gen.Option {
	var opts []gen.Option
	if len(f.EntityIDTypes) > 0 {
		opts = append(opts, gen.WithEntityIDTypes(f.EntityIDTypes...))
	}
	if len(f.Features) > 0 {
		opts = append(opts, gen.WithFeatureNames(f.Features...))
	}
	if f.Naming != "" {
		opts = append(opts, gen.WithNaming(gen.Naming(f.Naming)))
	}
	if f.SuppressDuplicateDirectivesWarning {
		opts = append(opts, gen.WithSuppressDuplicateDirectivesWarning(true))
	}
	return opts
}

// SequencerOptions returns the sequencer options set by the file.
func (f *File) SequencerOptions() []migrate.Option {
	var opts []migrate.Option
	if f.VersionStart != 0 {
		opts = append(opts, migrate.WithVersionStart(f.VersionStart))
	}
	if f.NilPolicy != "" {
		opts = append(opts, migrate.WithNilPolicy(migrate.NilPolicy(f.NilPolicy)))
	}
	if f.Strict {
		opts = append(opts, migrate.WithStrict(true))
	}
	var vopts []migrate.ValidateOption
	if f.AllowDropStore {
		vopts = append(vopts, migrate.AllowDropStore())
	}
	if f.AllowDropIndex {
		vopts = append(vopts, migrate.AllowDropIndex())
	}
	if len(vopts) > 0 {
		opts = append(opts, migrate.WithValidateOptions(vopts...))
	}
	return opts
}

// GenerateOptions returns the Go emitter options set by the file.
func (f *File) GenerateOptions() []golang.Option {
	var opts []golang.Option
	if f.Output.Package != "" {
		opts = append(opts, golang.WithPackage(f.Output.Package))
	}
	return opts
}
