// Package gen compiles GraphQL schemas into per-entity index specs.
//
// # Pipeline
//
// The compiler follows this flow:
//
//	SDL string, *ast.SchemaDocument or *ast.Schema
//	        |
//	   load.Schema (normalized definitions and root types)
//	        |
//	   EntityMap (entities and classified fields)
//	        |
//	   StoreSpec (one index spec per entity, in discovery order)
//
// # Resolution modes
//
// The mode is chosen once per compile. When the schema uses any of the
// markers from package directive, only types marked @Entity become stores
// and fields are classified by their @Primary, @Unique, @Index or
// @Relation marker. Otherwise every non-root object type with a non-null
// id field of an allowed scalar type is an entity, and fields referencing
// another entity are stored as <field>Id relation keys.
//
// # Index specs
//
// The primary key comes first: the bare field name, ++name for an
// incrementing key or $$name for a generated unique key. Secondary indexes
// follow in field order, prefixed with & for unique and * for multi-entry
// indexes:
//
//	type User @Entity {
//	    id: ID! @Primary(auto: "uuid")
//	    email: String! @Unique
//	    tags: [String!]! @Index(multi: true)
//	}
//
// compiles to "$$id,&email,*tags".
//
// # Error Handling
//
// Failures are returned as *SchemaError, *DirectiveError or *ConfigError
// and match the package sentinels with errors.Is:
//
//	_, err := gen.Compile(sdl)
//	if errors.Is(err, gen.ErrMissingPrimaryKey) {
//	    // ...
//	}
package gen
