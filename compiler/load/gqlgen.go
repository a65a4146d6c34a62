package load

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GQLGenConfig is the subset of a gqlgen.yml needed to locate the schema
// files of a gqlgen project. Unknown keys are ignored.
type GQLGenConfig struct {
	// SchemaFilename is the path(s) or glob(s) of the GraphQL schema file(s).
	SchemaFilename StringList `yaml:"schema,omitempty"`

	dir string
}

// StringList is a YAML type that can be either a string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler for StringList.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// LoadGQLGenConfig loads a gqlgen.yml configuration file. gqlgen's own
// default applies when the file lists no schema.
func LoadGQLGenConfig(path string) (*GQLGenConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gqlgen config: %w", err)
	}
	var cfg GQLGenConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse gqlgen config: %w", err)
	}
	if len(cfg.SchemaFilename) == 0 {
		cfg.SchemaFilename = StringList{"schema.graphql"}
	}
	cfg.dir = filepath.Dir(path)
	return &cfg, nil
}

// Patterns returns the schema globs resolved against the config directory.
func (c *GQLGenConfig) Patterns() []string {
	patterns := make([]string, len(c.SchemaFilename))
	for i, p := range c.SchemaFilename {
		if filepath.IsAbs(p) || c.dir == "" {
			patterns[i] = p
			continue
		}
		patterns[i] = filepath.Join(c.dir, p)
	}
	return patterns
}

// Load reads every schema file of the project into a single snapshot.
func (c *GQLGenConfig) Load(ctx context.Context) (*Schema, error) {
	sources, err := ReadSources(ctx, c.Patterns()...)
	if err != nil {
		return nil, err
	}
	return Parse(sources...)
}
