package gen

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEncodeEntity(t *testing.T) {
	tests := []struct {
		name   string
		fields []*FieldInfo
		want   string
	}{
		{
			name:   "primary",
			fields: []*FieldInfo{{Name: "id", Index: PrimaryKey}},
			want:   "id",
		},
		{
			name:   "auto increment",
			fields: []*FieldInfo{{Name: "id", Index: PrimaryAuto}},
			want:   "++id",
		},
		{
			name:   "uuid",
			fields: []*FieldInfo{{Name: "id", Index: PrimaryUUID}},
			want:   "$$id",
		},
		{
			name: "primary comes first",
			fields: []*FieldInfo{
				{Name: "email", Index: IndexRole{IndexUnique}},
				{Name: "name", Index: IndexRole{IndexPlain}},
				{Name: "key", Index: PrimaryAuto},
			},
			want: "++key,&email,name",
		},
		{
			name: "unindexed fields are skipped",
			fields: []*FieldInfo{
				{Name: "id", Index: PrimaryKey},
				{Name: "bio"},
				{Name: "ownerId", Index: IndexRole{IndexPlain}},
			},
			want: "id,ownerId",
		},
		{
			name: "unique then multi",
			fields: []*FieldInfo{
				{Name: "id", Index: PrimaryKey},
				{Name: "tags", Index: IndexRole{IndexUnique, IndexMulti}},
			},
			want: "id,*&tags",
		},
		{
			name: "multi then unique",
			fields: []*FieldInfo{
				{Name: "id", Index: PrimaryKey},
				{Name: "tags", Index: IndexRole{IndexMulti, IndexUnique}},
			},
			want: "id,&*tags",
		},
		{
			name: "empty index role",
			fields: []*FieldInfo{
				{Name: "id", Index: PrimaryKey},
				{Name: "ownerId", Index: IndexRole{}},
			},
			want: "id,ownerId",
		},
		{
			name: "composite group is ignored",
			fields: []*FieldInfo{
				{Name: "id", Index: PrimaryKey},
				{Name: "first", Index: IndexRole{IndexPlain}, CompositeGroup: "name"},
				{Name: "last", Index: IndexRole{IndexPlain}, CompositeGroup: "name"},
			},
			want: "id,first,last",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeEntity(&EntityInfo{Name: "User", Fields: tt.fields})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeEntityErrors(t *testing.T) {
	tests := []struct {
		name     string
		fields   []*FieldInfo
		kind     error
		contains []string
	}{
		{
			name:   "no fields",
			fields: nil,
			kind:   ErrMissingPrimaryKey,
		},
		{
			name:   "no primary",
			fields: []*FieldInfo{{Name: "email", Index: IndexRole{IndexUnique}}},
			kind:   ErrMissingPrimaryKey,
		},
		{
			name: "two primaries",
			fields: []*FieldInfo{
				{Name: "id", Index: PrimaryKey},
				{Name: "key", Index: PrimaryAuto},
			},
			kind:     ErrDuplicatePrimaryKey,
			contains: []string{`"id"`, `"key"`},
		},
		{
			name:     "unsupported primary",
			fields:   []*FieldInfo{{Name: "id", Index: PrimaryRole("serial")}},
			kind:     ErrUnsupportedPrimary,
			contains: []string{"serial"},
		},
		{
			name: "unsupported index",
			fields: []*FieldInfo{
				{Name: "id", Index: PrimaryKey},
				{Name: "email", Index: IndexRole{"fulltext"}},
			},
			kind:     ErrUnsupportedIndex,
			contains: []string{"fulltext", "field email"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeEntity(&EntityInfo{Name: "User", Fields: tt.fields})
			require.Error(t, err)
			assert.Empty(t, got)
			assert.True(t, errors.Is(err, tt.kind), err.Error())
			assert.True(t, IsSchemaError(err))
			assert.Contains(t, err.Error(), "type User")
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestEncodeComposite(t *testing.T) {
	e := &EntityInfo{Name: "Person", Fields: []*FieldInfo{
		{Name: "id", Index: PrimaryAuto},
		{Name: "first", Index: IndexRole{IndexPlain}, CompositeGroup: "name"},
		{Name: "email", Index: IndexRole{IndexUnique}, CompositeGroup: "login"},
		{Name: "last", Index: IndexRole{IndexPlain}, CompositeGroup: "name"},
		{Name: "tenant", Index: IndexRole{IndexPlain}, CompositeGroup: "login"},
		{Name: "city", Index: IndexRole{IndexPlain}, CompositeGroup: "alone"},
	}}
	got, err := encodeEntity(e, true)
	require.NoError(t, err)
	assert.Equal(t, "++id,first,&email,last,tenant,city,[first+last],&[email+tenant]", got)
}

func TestCompilerEncode(t *testing.T) {
	entities := &EntityMap{}
	entities.Set(&EntityInfo{Name: "TodoItem", Fields: []*FieldInfo{{Name: "id", Index: PrimaryKey}}})
	entities.Set(&EntityInfo{Name: "User", Fields: []*FieldInfo{{Name: "id", Index: PrimaryAuto}}})

	t.Run("default naming", func(t *testing.T) {
		spec, err := MustNewCompiler().Encode(entities)
		require.NoError(t, err)
		assert.Equal(t, StoreSpec{
			{Name: "TodoItem", Entity: "TodoItem", Spec: "id"},
			{Name: "User", Entity: "User", Spec: "++id"},
		}, spec)
	})

	t.Run("plural snake naming", func(t *testing.T) {
		spec, err := MustNewCompiler(WithNaming(NamingPluralSnake)).Encode(entities)
		require.NoError(t, err)
		assert.Equal(t, []string{"todo_items", "users"}, spec.Names())
		assert.Equal(t, "TodoItem", spec[0].Entity)
	})

	t.Run("failure drops every store", func(t *testing.T) {
		bad := &EntityMap{}
		bad.Set(&EntityInfo{Name: "User", Fields: []*FieldInfo{{Name: "id", Index: PrimaryKey}}})
		bad.Set(&EntityInfo{Name: "Todo"})
		spec, err := MustNewCompiler().Encode(bad)
		require.Error(t, err)
		assert.Nil(t, spec)
	})
}

func TestStoreSpecEncoding(t *testing.T) {
	spec := StoreSpec{
		{Name: "Todo", Entity: "Todo", Spec: "id,ownerId"},
		{Name: "User", Entity: "User", Spec: "id"},
		{Name: "Audit", Entity: "Audit", Spec: "++id"},
	}

	t.Run("json keeps order", func(t *testing.T) {
		b, err := json.Marshal(spec)
		require.NoError(t, err)
		assert.Equal(t, `{"Todo":"id,ownerId","User":"id","Audit":"++id"}`, string(b))

		empty, err := json.Marshal(StoreSpec(nil))
		require.NoError(t, err)
		assert.Equal(t, `{}`, string(empty))
	})

	t.Run("yaml keeps order", func(t *testing.T) {
		b, err := yaml.Marshal(spec)
		require.NoError(t, err)
		assert.Equal(t, "Todo: id,ownerId\nUser: id\nAudit: ++id\n", string(b))
	})

	t.Run("lookups", func(t *testing.T) {
		s, ok := spec.Get("User")
		assert.True(t, ok)
		assert.Equal(t, "id", s)
		_, ok = spec.Get("Missing")
		assert.False(t, ok)
		assert.Equal(t, map[string]string{"Todo": "id,ownerId", "User": "id", "Audit": "++id"}, spec.Map())
		assert.Equal(t, "Todo:id,ownerId\nUser:id\nAudit:++id", spec.String())
	})
}

func TestEntityMap(t *testing.T) {
	var m EntityMap
	assert.Equal(t, 0, m.Len())
	_, ok := m.Get("User")
	assert.False(t, ok)

	m.Set(&EntityInfo{Name: "User"})
	m.Set(&EntityInfo{Name: "Todo"})
	m.Set(&EntityInfo{Name: "User", Fields: []*FieldInfo{{Name: "id", Index: PrimaryKey}}})

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"User", "Todo"}, m.Names())
	u, ok := m.Get("User")
	require.True(t, ok)
	assert.Len(t, u.Fields, 1)
	assert.True(t, m.Has("Todo"))
	assert.False(t, m.Has("Note"))
	assert.Equal(t, "[unique,multi]", IndexRole{IndexUnique, IndexMulti}.String())
}
