// Package load turns every supported schema input into a normalized Schema.
//
// Accepted inputs:
//
//   - an SDL string or byte slice, parsed with gqlparser without validation
//   - one or more *ast.Source values
//   - a parsed *ast.SchemaDocument
//   - a built *ast.Schema (for example from gqlparser.LoadSchema)
//
// Anything else fails with ErrInvalidInput. Type extensions found in a
// document are merged into their base definition, and the root operation
// types are taken from the schema definition or default to Query, Mutation
// and Subscription.
//
// The package also reads schema files from disk, either from glob patterns
// or from the schema list of a gqlgen.yml:
//
//	cfg, err := load.LoadGQLGenConfig("gqlgen.yml")
//	if err != nil {
//	    return err
//	}
//	s, err := cfg.Load(ctx)
package load
