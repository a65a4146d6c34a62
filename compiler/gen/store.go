package gen

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store is the compiled index spec of one entity.
type Store struct {
	// Name is the store name, derived from Entity by the naming strategy.
	Name string `json:"name" yaml:"name" msgpack:"name"`
	// Entity is the GraphQL type name.
	Entity string `json:"entity" yaml:"entity" msgpack:"entity"`
	// Spec is the comma separated index spec.
	Spec string `json:"spec" yaml:"spec" msgpack:"spec"`
}

// StoreSpec holds the stores of one schema snapshot in discovery order.
// It encodes to JSON and YAML as a mapping from store name to spec.
type StoreSpec []Store

// Get returns the spec of the named store.
func (s StoreSpec) Get(name string) (string, bool) {
	for _, st := range s {
		if st.Name == name {
			return st.Spec, true
		}
	}
	return "", false
}

// Names returns the store names in order.
func (s StoreSpec) Names() []string {
	out := make([]string, len(s))
	for i, st := range s {
		out[i] = st.Name
	}
	return out
}

// Map returns the specs keyed by store name.
func (s StoreSpec) Map() map[string]string {
	m := make(map[string]string, len(s))
	for _, st := range s {
		m[st.Name] = st.Spec
	}
	return m
}

// String returns one name:spec pair per line, in order.
func (s StoreSpec) String() string {
	var b strings.Builder
	for i, st := range s {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(st.Name)
		b.WriteByte(':')
		b.WriteString(st.Spec)
	}
	return b.String()
}

// MarshalJSON encodes the stores as an object, keeping their order.
func (s StoreSpec) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, st := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(st.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(st.Spec)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the stores as a mapping, keeping their order.
func (s StoreSpec) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, st := range s {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: st.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: st.Spec},
		)
	}
	return node, nil
}
