package gen

import "github.com/go-openapi/inflect"

// Naming derives the store name of an entity from its type name.
type Naming string

// Naming strategies.
const (
	// NamingNone uses the type name as is.
	NamingNone Naming = "none"
	// NamingPlural pluralizes the type name: User -> Users.
	NamingPlural Naming = "plural"
	// NamingSnake converts the type name to snake case: TodoItem -> todo_item.
	NamingSnake Naming = "snake"
	// NamingPluralSnake pluralizes and snake cases: TodoItem -> todo_items.
	NamingPluralSnake Naming = "plural_snake"
)

// Valid reports whether n is a known strategy. The empty value is NamingNone.
func (n Naming) Valid() bool {
	switch n {
	case "", NamingNone, NamingPlural, NamingSnake, NamingPluralSnake:
		return true
	}
	return false
}

// StoreName returns the store name for the entity type name.
func (n Naming) StoreName(entity string) string {
	switch n {
	case NamingPlural:
		return inflect.Pluralize(entity)
	case NamingSnake:
		return inflect.Underscore(entity)
	case NamingPluralSnake:
		return inflect.Pluralize(inflect.Underscore(entity))
	default:
		return entity
	}
}
