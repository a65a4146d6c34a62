package load

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// DefaultSourceName names sources created from raw SDL strings.
const DefaultSourceName = "schema.graphql"

// ErrInvalidInput is returned for inputs that are not an SDL string, a parsed
// document or a built schema.
var ErrInvalidInput = errors.New("idbschema: the schema should be an SDL string, a parsed schema document or an *ast.Schema")

// Origin describes which input form a Schema was loaded from.
type Origin int

const (
	_ Origin = iota
	// OriginDocument is a parsed SDL document, including raw SDL strings.
	OriginDocument
	// OriginSchema is a built and validated *ast.Schema.
	OriginSchema
)

// String implements fmt.Stringer.
func (o Origin) String() string {
	switch o {
	case OriginDocument:
		return "document"
	case OriginSchema:
		return "schema"
	default:
		return "unknown"
	}
}

// Schema is the normalized form of every accepted input. It is rebuilt on
// every load and never shares definitions with its input.
type Schema struct {
	// Origin is the input form.
	Origin Origin
	// Definitions holds the user type definitions in discovery order, with
	// type extensions merged into their base definition.
	Definitions ast.DefinitionList
	// Directives holds the directive definitions declared by the user.
	Directives ast.DirectiveDefinitionList

	roots []string
}

// Objects returns the object type definitions in discovery order.
func (s *Schema) Objects() []*ast.Definition {
	var objs []*ast.Definition
	for _, d := range s.Definitions {
		if d.Kind == ast.Object {
			objs = append(objs, d)
		}
	}
	return objs
}

// Lookup returns the definition named name, or nil.
func (s *Schema) Lookup(name string) *ast.Definition {
	return s.Definitions.ForName(name)
}

// Roots returns the root operation type names.
func (s *Schema) Roots() []string {
	return slices.Clone(s.roots)
}

// IsRoot reports whether name is a root operation type.
func (s *Schema) IsRoot(name string) bool {
	return slices.Contains(s.roots, name)
}

// Load normalizes any accepted input form.
func Load(input any) (*Schema, error) {
	switch v := input.(type) {
	case string:
		return Parse(&ast.Source{Name: DefaultSourceName, Input: v})
	case []byte:
		return Parse(&ast.Source{Name: DefaultSourceName, Input: string(v)})
	case *ast.Source:
		if v != nil {
			return Parse(v)
		}
	case []*ast.Source:
		if len(v) > 0 && !slices.Contains(v, nil) {
			return Parse(v...)
		}
	case *ast.SchemaDocument:
		if v != nil {
			return FromDocument(v), nil
		}
	case *ast.Schema:
		if v != nil {
			return FromSchema(v), nil
		}
	case *Schema:
		if v != nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w (got %T)", ErrInvalidInput, input)
}

// IsNil reports whether input is nil or a typed nil of an accepted form.
func IsNil(input any) bool {
	switch v := input.(type) {
	case nil:
		return true
	case *ast.Source:
		return v == nil
	case *ast.SchemaDocument:
		return v == nil
	case *ast.Schema:
		return v == nil
	case *Schema:
		return v == nil
	}
	return false
}

// Parse parses one or more SDL sources into a single document.
func Parse(sources ...*ast.Source) (*Schema, error) {
	doc, err := parser.ParseSchemas(sources...)
	if err != nil {
		return nil, fmt.Errorf("idbschema: parse schema: %w", err)
	}
	return FromDocument(doc), nil
}

// FromDocument normalizes a parsed SDL document.
func FromDocument(doc *ast.SchemaDocument) *Schema {
	s := &Schema{Origin: OriginDocument}
	for _, d := range doc.Definitions {
		if d.BuiltIn {
			continue
		}
		s.Definitions = append(s.Definitions, cloneDefinition(d))
	}
	for _, ext := range doc.Extensions {
		base := s.Definitions.ForName(ext.Name)
		if base == nil {
			s.Definitions = append(s.Definitions, cloneDefinition(ext))
			continue
		}
		base.Fields = append(base.Fields, ext.Fields...)
		base.Directives = append(base.Directives, ext.Directives...)
		base.Interfaces = append(base.Interfaces, ext.Interfaces...)
		base.EnumValues = append(base.EnumValues, ext.EnumValues...)
		base.Types = append(base.Types, ext.Types...)
	}
	s.Directives = slices.Clone(doc.Directives)

	for _, list := range []ast.SchemaDefinitionList{doc.Schema, doc.SchemaExtension} {
		for _, sd := range list {
			for _, op := range sd.OperationTypes {
				if !slices.Contains(s.roots, op.Type) {
					s.roots = append(s.roots, op.Type)
				}
			}
		}
	}
	if len(s.roots) == 0 {
		s.roots = []string{"Query", "Mutation", "Subscription"}
	}
	return s
}

// FromSchema normalizes a built schema. Built-in types and introspection
// fields are dropped and the remaining types are ordered by their source
// position, which is the closest thing to discovery order a built schema
// keeps.
func FromSchema(schema *ast.Schema) *Schema {
	s := &Schema{Origin: OriginSchema}
	for _, d := range schema.Types {
		if d.BuiltIn || strings.HasPrefix(d.Name, "__") {
			continue
		}
		s.Definitions = append(s.Definitions, cloneDefinition(d))
	}
	slices.SortFunc(s.Definitions, func(a, b *ast.Definition) int {
		return comparePosition(a.Position, b.Position, a.Name, b.Name)
	})
	for _, d := range schema.Directives {
		if pos := d.Position; pos != nil && pos.Src != nil && pos.Src.BuiltIn {
			continue
		}
		s.Directives = append(s.Directives, d)
	}
	slices.SortFunc(s.Directives, func(a, b *ast.DirectiveDefinition) int {
		return cmp.Compare(a.Name, b.Name)
	})
	for _, root := range []*ast.Definition{schema.Query, schema.Mutation, schema.Subscription} {
		if root != nil {
			s.roots = append(s.roots, root.Name)
		}
	}
	return s
}

func comparePosition(a, b *ast.Position, an, bn string) int {
	switch {
	case a == nil && b == nil:
		return cmp.Compare(an, bn)
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if c := cmp.Compare(sourceName(a), sourceName(b)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Start, b.Start); c != 0 {
		return c
	}
	return cmp.Compare(an, bn)
}

func sourceName(p *ast.Position) string {
	if p.Src == nil {
		return ""
	}
	return p.Src.Name
}

// cloneDefinition copies the definition and its slices so that merging
// extensions or dropping fields never mutates the caller's input.
func cloneDefinition(d *ast.Definition) *ast.Definition {
	c := *d
	c.Fields = make(ast.FieldList, 0, len(d.Fields))
	for _, f := range d.Fields {
		if strings.HasPrefix(f.Name, "__") {
			continue
		}
		c.Fields = append(c.Fields, f)
	}
	c.Directives = slices.Clone(d.Directives)
	c.Interfaces = slices.Clone(d.Interfaces)
	c.EnumValues = slices.Clone(d.EnumValues)
	c.Types = slices.Clone(d.Types)
	return &c
}
