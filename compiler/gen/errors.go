package gen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/idbschema/compiler/load"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidInput indicates a schema input of an unsupported form.
	ErrInvalidInput = load.ErrInvalidInput
	// ErrInvalidSchema indicates a schema definition error.
	ErrInvalidSchema = errors.New("idbschema: invalid schema")
	// ErrMissingMetadata indicates a type or field without source position.
	ErrMissingMetadata = errors.New("idbschema: missing structural metadata")
	// ErrMissingPrimaryKey indicates an entity without a primary key.
	ErrMissingPrimaryKey = errors.New("idbschema: entity has no primary key")
	// ErrDuplicatePrimaryKey indicates an entity with more than one primary key.
	ErrDuplicatePrimaryKey = errors.New("idbschema: duplicate primary key")
	// ErrAmbiguousIndex indicates a field carrying more than one field marker.
	ErrAmbiguousIndex = errors.New("idbschema: ambiguous index kind")
	// ErrInvalidRelation indicates a relation to a type that is not an entity.
	ErrInvalidRelation = errors.New("idbschema: invalid relation")
	// ErrUnsupportedPrimary indicates an unknown primary key strategy.
	ErrUnsupportedPrimary = errors.New("idbschema: unsupported primary key type")
	// ErrUnsupportedIndex indicates an unknown secondary index symbol.
	ErrUnsupportedIndex = errors.New("idbschema: unsupported index type")
	// ErrUnknownArgument indicates a marker argument that is not declared.
	ErrUnknownArgument = errors.New("idbschema: unknown directive argument")
	// ErrDirectiveMismatch indicates a usage resolved against another directive.
	ErrDirectiveMismatch = errors.New("idbschema: wrong directive definition")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("idbschema: missing configuration")
)

// SchemaError reports a schema that cannot be compiled. Kind holds the
// sentinel describing the failure, so errors.Is matches both Kind and
// ErrInvalidSchema.
type SchemaError struct {
	Kind    error
	Type    string // Entity type name
	Field   string // Field name (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString(ErrInvalidSchema.Error())
	}
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrInvalidSchema or the error kind.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema || (e.Kind != nil && target == e.Kind)
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(kind error, typeName, fieldName, message string) *SchemaError {
	return &SchemaError{
		Kind:    kind,
		Type:    typeName,
		Field:   fieldName,
		Message: message,
	}
}

// DirectiveError reports a marker usage that cannot be resolved.
type DirectiveError struct {
	Kind      error
	Directive string
	Argument  string
	Message   string
}

// Error implements the error interface.
func (e *DirectiveError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Directive != "" {
		b.WriteString(" @")
		b.WriteString(e.Directive)
	}
	if e.Argument != "" {
		fmt.Fprintf(&b, " (argument %q)", e.Argument)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the error kind or ErrInvalidSchema.
func (e *DirectiveError) Is(target error) bool {
	return target == e.Kind || target == ErrInvalidSchema
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("idbschema: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("idbschema: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsDirectiveError reports whether the error is a DirectiveError.
func IsDirectiveError(err error) bool {
	var dirErr *DirectiveError
	return errors.As(err, &dirErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}
