// Package directive holds the catalog of schema markers recognized by the
// compiler. The catalog is parsed once at init from SDL and is read-only.
package directive

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

// Recognized marker names.
const (
	Entity   = "Entity"
	Primary  = "Primary"
	Unique   = "Unique"
	Index    = "Index"
	Relation = "Relation"
)

// Argument names declared by the markers.
const (
	ArgAuto           = "auto"
	ArgForceInt       = "forceInt"
	ArgMulti          = "multi"
	ArgCompositeGroup = "compositeGroup"
	ArgUnique         = "unique"
)

// AutoNone is the value of the Primary auto argument meaning the key is
// supplied by the caller.
const AutoNone = "none"

// SourceName is the name of the source holding the catalog SDL.
const SourceName = "idbschema/directives.graphql"

// SDL declares every marker. Pass Source to gqlparser.LoadSchema alongside
// user sources when building an *ast.Schema that uses the markers.
const SDL = `directive @Entity on OBJECT
directive @Primary(auto: String = "", forceInt: Boolean = false) on FIELD_DEFINITION
directive @Unique(multi: Boolean = false, compositeGroup: String) on FIELD_DEFINITION
directive @Index(multi: Boolean = false, compositeGroup: String) on FIELD_DEFINITION
directive @Relation(unique: Boolean = false) on FIELD_DEFINITION
`

var (
	names   = []string{Entity, Primary, Unique, Index, Relation}
	catalog = mustParse()
)

func mustParse() map[string]*ast.DirectiveDefinition {
	doc, err := parser.ParseSchema(Source())
	if err != nil {
		panic(fmt.Sprintf("idbschema/directive: parse catalog: %v", err))
	}
	defs := make(map[string]*ast.DirectiveDefinition, len(doc.Directives))
	for _, d := range doc.Directives {
		defs[d.Name] = d
	}
	for _, n := range names {
		if defs[n] == nil {
			panic(fmt.Sprintf("idbschema/directive: catalog is missing @%s", n))
		}
	}
	return defs
}

// Source returns a fresh source for the catalog SDL.
func Source() *ast.Source {
	return &ast.Source{Name: SourceName, Input: SDL}
}

// Names returns the recognized marker names in catalog order.
func Names() []string {
	return slices.Clone(names)
}

// IsMarker reports whether name is a recognized marker.
func IsMarker(name string) bool {
	_, ok := catalog[name]
	return ok
}

// FieldMarkers returns the markers that can be attached to a field.
func FieldMarkers() []string {
	return []string{Primary, Unique, Index, Relation}
}

// Lookup returns a copy of the catalog definition for name.
func Lookup(name string) (*ast.DirectiveDefinition, bool) {
	d, ok := catalog[name]
	if !ok {
		return nil, false
	}
	return clone(d), true
}

// MustLookup is like Lookup but panics on unknown names.
func MustLookup(name string) *ast.DirectiveDefinition {
	d, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("idbschema/directive: unknown marker %q", name))
	}
	return d
}

func clone(d *ast.DirectiveDefinition) *ast.DirectiveDefinition {
	c := *d
	c.Arguments = make(ast.ArgumentDefinitionList, len(d.Arguments))
	for i, a := range d.Arguments {
		ac := *a
		c.Arguments[i] = &ac
	}
	c.Locations = slices.Clone(d.Locations)
	return &c
}

// Redefined reports whether def uses a recognized marker name but differs
// from the built-in definition. Definitions loaded from the catalog source
// itself are never reported.
func Redefined(def *ast.DirectiveDefinition) bool {
	if def == nil {
		return false
	}
	builtin, ok := catalog[def.Name]
	if !ok {
		return false
	}
	if def.Position != nil && def.Position.Src != nil && def.Position.Src.Name == SourceName {
		return false
	}
	return !bytes.Equal(render(def), render(builtin))
}

func render(def *ast.DirectiveDefinition) []byte {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(&ast.SchemaDocument{
		Directives: ast.DirectiveDefinitionList{def},
	})
	return buf.Bytes()
}
