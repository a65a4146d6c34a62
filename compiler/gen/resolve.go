package gen

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/idbschema/compiler/load"
	"github.com/syssam/idbschema/schema/directive"
)

// Mode selects how entities are discovered.
type Mode int

const (
	_ Mode = iota
	// ModeMarker discovers entities by their @Entity marker.
	ModeMarker
	// ModeConvention discovers entities by their id field.
	ModeConvention
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeMarker:
		return "marker"
	case ModeConvention:
		return "convention"
	default:
		return "unknown"
	}
}

// DetectMode returns ModeMarker if any type, field, argument or enum value
// of s uses a recognized marker, and ModeConvention otherwise.
func DetectMode(s *load.Schema) Mode {
	for _, d := range s.Definitions {
		if hasMarker(d.Directives) {
			return ModeMarker
		}
		for _, f := range d.Fields {
			if hasMarker(f.Directives) {
				return ModeMarker
			}
			for _, a := range f.Arguments {
				if hasMarker(a.Directives) {
					return ModeMarker
				}
			}
		}
		for _, ev := range d.EnumValues {
			if hasMarker(ev.Directives) {
				return ModeMarker
			}
		}
	}
	return ModeConvention
}

func hasMarker(list ast.DirectiveList) bool {
	for _, d := range list {
		if directive.IsMarker(d.Name) {
			return true
		}
	}
	return false
}

// resolve discovers the entities of s and classifies their fields.
func resolve(c *Config, s *load.Schema) (*EntityMap, error) {
	warnRedefined(c, s)
	switch DetectMode(s) {
	case ModeMarker:
		return resolveMarker(s)
	default:
		return resolveConvention(c, s)
	}
}

func warnRedefined(c *Config, s *load.Schema) {
	if c.SuppressDuplicateDirectivesWarning {
		return
	}
	for _, d := range s.Directives {
		if directive.Redefined(d) {
			c.logger().Warn("schema redefines a marker directive differently from the built-in one; the built-in definition is used",
				"directive", d.Name,
			)
		}
	}
}
