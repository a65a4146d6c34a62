package gen

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/idbschema/compiler/load"
	"github.com/syssam/idbschema/schema/directive"
	"github.com/syssam/idbschema/schema/typeref"
)

// resolveMarker discovers the types marked @Entity and classifies their
// fields by the field markers they carry.
func resolveMarker(s *load.Schema) (*EntityMap, error) {
	var defs []*ast.Definition
	entities := &EntityMap{}
	for _, d := range s.Objects() {
		if d.Directives.ForName(directive.Entity) == nil {
			continue
		}
		if entities.Has(d.Name) {
			return nil, NewSchemaError(ErrInvalidSchema, d.Name, "", "type is defined more than once")
		}
		defs = append(defs, d)
		entities.Set(&EntityInfo{Name: d.Name})
	}
	for _, d := range defs {
		e, err := markerEntity(d, entities)
		if err != nil {
			return nil, err
		}
		entities.Set(e)
	}
	return entities, nil
}

func markerEntity(d *ast.Definition, entities *EntityMap) (*EntityInfo, error) {
	if d.Position == nil {
		return nil, NewSchemaError(ErrMissingMetadata, d.Name, "", "type has no source position")
	}
	var primaries []string
	for _, f := range d.Fields {
		if f.Position == nil {
			return nil, NewSchemaError(ErrMissingMetadata, d.Name, f.Name, "field has no source position")
		}
		if f.Directives.ForName(directive.Primary) != nil {
			primaries = append(primaries, f.Name)
		}
	}
	switch len(primaries) {
	case 0:
		return nil, NewSchemaError(ErrMissingPrimaryKey, d.Name, "", "no field is marked @Primary")
	case 1:
	default:
		return nil, NewSchemaError(ErrDuplicatePrimaryKey, d.Name, "",
			fmt.Sprintf("fields %q and %q are both marked @Primary", primaries[0], primaries[1]))
	}

	e := &EntityInfo{Name: d.Name}
	for _, f := range d.Fields {
		fi, err := markerField(d.Name, f, entities)
		if err != nil {
			return nil, err
		}
		if fi != nil {
			e.Fields = append(e.Fields, fi)
		}
	}
	return e, nil
}

// markerField classifies one field. It returns nil for fields without a
// field marker.
func markerField(entity string, f *ast.FieldDefinition, entities *EntityMap) (*FieldInfo, error) {
	var usages []*ast.Directive
	for _, d := range f.Directives {
		if d.Name != directive.Entity && directive.IsMarker(d.Name) {
			usages = append(usages, d)
		}
	}
	switch len(usages) {
	case 0:
		return nil, nil
	case 1:
	default:
		names := make([]string, len(usages))
		for i, u := range usages {
			names[i] = "@" + u.Name
		}
		return nil, NewSchemaError(ErrAmbiguousIndex, entity, f.Name,
			"field carries "+strings.Join(names, ", "))
	}

	usage := usages[0]
	dv, err := ResolveDirective(usage, directive.MustLookup(usage.Name))
	if err != nil {
		return nil, &SchemaError{Kind: ErrInvalidSchema, Type: entity, Field: f.Name, Cause: err}
	}
	switch usage.Name {
	case directive.Primary:
		role := PrimaryKey
		if auto := dv.String(directive.ArgAuto); auto != "" && auto != directive.AutoNone {
			role = PrimaryRole(auto)
		}
		return &FieldInfo{Name: f.Name, Index: role}, nil
	case directive.Unique, directive.Index:
		base := IndexPlain
		if usage.Name == directive.Unique {
			base = IndexUnique
		}
		role := IndexRole{base}
		if dv.Bool(directive.ArgMulti) {
			role = append(role, IndexMulti)
		}
		return &FieldInfo{
			Name:           f.Name,
			Index:          role,
			CompositeGroup: dv.String(directive.ArgCompositeGroup),
		}, nil
	case directive.Relation:
		t := typeref.FromAST(f.Type)
		target := typeref.NamedType(t).Name
		if !entities.Has(target) {
			return nil, NewSchemaError(ErrInvalidRelation, entity, f.Name,
				fmt.Sprintf("type %s is not an entity", target))
		}
		role := IndexRole{IndexPlain}
		if typeref.IsList(t) {
			role = IndexRole{IndexMulti}
		}
		if dv.Bool(directive.ArgUnique) {
			role = append(role, IndexUnique)
		}
		return &FieldInfo{Name: f.Name + "Id", Index: role}, nil
	}
	return nil, nil
}
