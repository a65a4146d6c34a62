package gen

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/idbschema/compiler/load"
	"github.com/syssam/idbschema/schema/typeref"
)

// idField is the field that makes a type an entity in convention mode.
const idField = "id"

// resolveConvention selects every non-root object type with a non-null
// scalar id field and treats fields referencing another entity as
// relations.
func resolveConvention(c *Config, s *load.Schema) (*EntityMap, error) {
	var defs []*ast.Definition
	entities := &EntityMap{}
	for _, d := range s.Objects() {
		if s.IsRoot(d.Name) || !hasEntityID(c, d) {
			continue
		}
		if entities.Has(d.Name) {
			return nil, NewSchemaError(ErrInvalidSchema, d.Name, "", "type is defined more than once")
		}
		defs = append(defs, d)
		entities.Set(&EntityInfo{Name: d.Name})
	}
	for _, d := range defs {
		e := &EntityInfo{Name: d.Name}
		for _, f := range d.Fields {
			if f.Name == idField {
				e.Fields = append(e.Fields, &FieldInfo{Name: f.Name, Index: PrimaryKey})
				continue
			}
			t := typeref.FromAST(f.Type)
			if !entities.Has(typeref.NamedType(t).Name) {
				continue
			}
			role := IndexRole{IndexPlain}
			if typeref.IsList(t) {
				role = IndexRole{IndexMulti}
			}
			e.Fields = append(e.Fields, &FieldInfo{Name: f.Name + "Id", Index: role})
		}
		entities.Set(e)
	}
	return entities, nil
}

// hasEntityID reports whether d has an id field typed as a non-null
// allowed scalar.
func hasEntityID(c *Config, d *ast.Definition) bool {
	f := d.Fields.ForName(idField)
	if f == nil {
		return false
	}
	t := typeref.FromAST(f.Type)
	nn, ok := t.(typeref.NonNull)
	if !ok {
		return false
	}
	named, ok := nn.Of.(typeref.Named)
	return ok && c.isEntityIDType(named.Name)
}
