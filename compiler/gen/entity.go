package gen

import "strings"

// Role describes how a field is indexed. A nil Role means the field is not
// indexed. The concrete types are PrimaryRole and IndexRole.
type Role interface {
	role()
}

// PrimaryRole is the primary key strategy of a field.
type PrimaryRole string

// Primary key strategies.
const (
	// PrimaryKey is a key supplied by the caller.
	PrimaryKey PrimaryRole = "primary"
	// PrimaryAuto is an incrementing key generated by the engine.
	PrimaryAuto PrimaryRole = "auto"
	// PrimaryUUID is a unique key generated by the engine.
	PrimaryUUID PrimaryRole = "uuid"
)

func (PrimaryRole) role() {}

// IndexSymbol is one modifier of a secondary index.
type IndexSymbol string

// Secondary index modifiers.
const (
	IndexUnique IndexSymbol = "unique"
	IndexMulti  IndexSymbol = "multi"
	IndexPlain  IndexSymbol = "plain"
)

// IndexRole is a secondary index. Symbols are applied in order.
type IndexRole []IndexSymbol

func (IndexRole) role() {}

func (r IndexRole) String() string {
	s := make([]string, len(r))
	for i, sym := range r {
		s[i] = string(sym)
	}
	return "[" + strings.Join(s, ",") + "]"
}

// FieldInfo is a field of an entity as seen by the encoder.
type FieldInfo struct {
	// Name is the stored key path. Relation fields carry an Id suffix.
	Name string
	// Index is the field role, or nil when the field is not indexed.
	Index Role
	// CompositeGroup names the compound index the field takes part in.
	CompositeGroup string
}

// EntityInfo is one entity and its classified fields in declaration order.
type EntityInfo struct {
	Name   string
	Fields []*FieldInfo
}

// EntityMap is an ordered set of entities keyed by name. The zero value is
// ready to use.
type EntityMap struct {
	list  []*EntityInfo
	index map[string]int
}

// Set adds e, or replaces the entity with the same name in place.
func (m *EntityMap) Set(e *EntityInfo) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[e.Name]; ok {
		m.list[i] = e
		return
	}
	m.index[e.Name] = len(m.list)
	m.list = append(m.list, e)
}

// Get returns the entity named name.
func (m *EntityMap) Get(name string) (*EntityInfo, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.list[i], true
}

// Has reports whether name is an entity.
func (m *EntityMap) Has(name string) bool {
	_, ok := m.index[name]
	return ok
}

// Len returns the number of entities.
func (m *EntityMap) Len() int {
	return len(m.list)
}

// Entities returns the entities in discovery order.
func (m *EntityMap) Entities() []*EntityInfo {
	out := make([]*EntityInfo, len(m.list))
	copy(out, m.list)
	return out
}

// Names returns the entity names in discovery order.
func (m *EntityMap) Names() []string {
	out := make([]string, len(m.list))
	for i, e := range m.list {
		out[i] = e.Name
	}
	return out
}
