package gen

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/idbschema/schema/typeref"
)

// ArgValue is the resolved value of one directive argument.
type ArgValue struct {
	// Type is the declared argument type.
	Type typeref.Ref
	// Value is the decoded literal, the declared default, or nil.
	Value any
}

// DirectiveValue is a marker usage with every declared argument resolved.
// It is built once per usage and not modified afterwards.
type DirectiveValue struct {
	Name string
	Args map[string]ArgValue
}

// Value returns the resolved value of the named argument.
func (d *DirectiveValue) Value(name string) (any, bool) {
	a, ok := d.Args[name]
	if !ok {
		return nil, false
	}
	return a.Value, true
}

// String returns the argument value if it is a string, or "".
func (d *DirectiveValue) String(name string) string {
	s, _ := d.Args[name].Value.(string)
	return s
}

// Bool returns the argument value if it is a boolean, or false.
func (d *DirectiveValue) Bool(name string) bool {
	b, _ := d.Args[name].Value.(bool)
	return b
}

// ResolveDirective resolves the arguments of usage against its definition.
// Supplied literals win over the declared default, a null or mistyped
// literal falls back to the default, and arguments without either resolve
// to nil. The result covers every declared argument.
func ResolveDirective(usage *ast.Directive, def *ast.DirectiveDefinition) (*DirectiveValue, error) {
	if usage.Name != def.Name {
		return nil, &DirectiveError{
			Kind:      ErrDirectiveMismatch,
			Directive: usage.Name,
			Message:   fmt.Sprintf("resolved against @%s", def.Name),
		}
	}
	dv := &DirectiveValue{
		Name: def.Name,
		Args: make(map[string]ArgValue, len(def.Arguments)),
	}
	for _, arg := range usage.Arguments {
		argDef := def.Arguments.ForName(arg.Name)
		if argDef == nil {
			return nil, &DirectiveError{
				Kind:      ErrUnknownArgument,
				Directive: def.Name,
				Argument:  arg.Name,
				Message:   "argument is not declared",
			}
		}
		v, ok := coerce(arg.Value, argDef.Type)
		if !ok {
			v = defaultValue(argDef)
		}
		dv.Args[argDef.Name] = ArgValue{Type: typeref.FromAST(argDef.Type), Value: v}
	}
	for _, argDef := range def.Arguments {
		if _, ok := dv.Args[argDef.Name]; ok {
			continue
		}
		dv.Args[argDef.Name] = ArgValue{Type: typeref.FromAST(argDef.Type), Value: defaultValue(argDef)}
	}
	return dv, nil
}

func defaultValue(def *ast.ArgumentDefinition) any {
	v, _ := coerce(def.DefaultValue, def.Type)
	return v
}

// coerce decodes an SDL literal for the given input type. It reports false
// for nulls, variables and literals of the wrong kind.
func coerce(v *ast.Value, t *ast.Type) (any, bool) {
	if v == nil || t == nil {
		return nil, false
	}
	switch v.Kind {
	case ast.NullValue, ast.Variable:
		return nil, false
	}
	if t.Elem != nil {
		if v.Kind != ast.ListValue {
			item, ok := coerce(v, t.Elem)
			if !ok {
				return nil, false
			}
			return []any{item}, true
		}
		items := make([]any, 0, len(v.Children))
		for _, c := range v.Children {
			item, ok := coerce(c.Value, t.Elem)
			if !ok {
				return nil, false
			}
			items = append(items, item)
		}
		return items, true
	}
	switch t.NamedType {
	case "Boolean":
		if v.Kind != ast.BooleanValue {
			return nil, false
		}
	case "String":
		if v.Kind != ast.StringValue && v.Kind != ast.BlockValue {
			return nil, false
		}
	case "ID":
		if v.Kind != ast.StringValue && v.Kind != ast.BlockValue && v.Kind != ast.IntValue {
			return nil, false
		}
		return v.Raw, true
	case "Int":
		if v.Kind != ast.IntValue {
			return nil, false
		}
	case "Float":
		if v.Kind != ast.IntValue && v.Kind != ast.FloatValue {
			return nil, false
		}
	}
	decoded, err := v.Value(nil)
	if err != nil {
		return nil, false
	}
	if i, ok := decoded.(int64); ok && t.NamedType == "Float" {
		return float64(i), true
	}
	return decoded, true
}
