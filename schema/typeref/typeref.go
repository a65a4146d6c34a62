// Package typeref models GraphQL type references as a closed union of
// named, list and non-null nodes.
package typeref

import "github.com/vektah/gqlparser/v2/ast"

// Ref is a (possibly wrapped) type reference. The only implementations
// are Named, List and NonNull.
type Ref interface {
	String() string
	ref()
}

type (
	// Named is the leaf of every type reference.
	Named struct {
		Name string
	}

	// List wraps a reference in a list.
	List struct {
		Of Ref
	}

	// NonNull marks the wrapped reference as required.
	NonNull struct {
		Of Ref
	}
)

func (Named) ref()   {}
func (List) ref()    {}
func (NonNull) ref() {}

// String returns the SDL form of the reference.
func (n Named) String() string { return n.Name }

// String returns the SDL form of the reference.
func (l List) String() string { return "[" + str(l.Of) + "]" }

// String returns the SDL form of the reference.
func (n NonNull) String() string { return str(n.Of) + "!" }

func str(r Ref) string {
	if r == nil {
		return ""
	}
	return r.String()
}

// FromAST converts a gqlparser type into a Ref. gqlparser keeps the
// non-null marker as a flag on each level; it becomes an explicit
// NonNull node wrapping that level.
func FromAST(t *ast.Type) Ref {
	if t == nil {
		return Named{}
	}
	var r Ref
	if t.Elem != nil {
		r = List{Of: FromAST(t.Elem)}
	} else {
		r = Named{Name: t.NamedType}
	}
	if t.NonNull {
		return NonNull{Of: r}
	}
	return r
}

// NamedType strips every list and non-null wrapper and returns the leaf.
func NamedType(r Ref) Named {
	switch r := r.(type) {
	case Named:
		return r
	case List:
		return NamedType(r.Of)
	case NonNull:
		return NamedType(r.Of)
	default:
		return Named{}
	}
}

// IsList reports whether any wrapper level of r is a list.
func IsList(r Ref) bool {
	switch r := r.(type) {
	case List:
		return true
	case NonNull:
		return IsList(r.Of)
	default:
		return false
	}
}

// IsNonNull reports whether the outermost level of r is non-null.
func IsNonNull(r Ref) bool {
	_, ok := r.(NonNull)
	return ok
}

// Unwrap removes a single outer non-null wrapper, if any.
func Unwrap(r Ref) Ref {
	if nn, ok := r.(NonNull); ok {
		return nn.Of
	}
	return r
}
