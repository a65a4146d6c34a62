package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/idbschema/compiler/gen"
)

func spec(kv ...string) gen.StoreSpec {
	var s gen.StoreSpec
	for i := 0; i < len(kv); i += 2 {
		s = append(s, gen.Store{Name: kv[i], Entity: kv[i], Spec: kv[i+1]})
	}
	return s
}

func TestValidateStep(t *testing.T) {
	tests := []struct {
		name     string
		current  gen.StoreSpec
		desired  gen.StoreSpec
		opts     []ValidateOption
		errors   []string
		warnings []string
		breaking bool
	}{
		{
			name:    "no changes",
			current: spec("User", "id,&email"),
			desired: spec("User", "id,&email"),
		},
		{
			name:    "new store and index",
			current: spec("User", "id"),
			desired: spec("User", "id,name", "Todo", "++id"),
		},
		{
			name:     "dropped store",
			current:  spec("User", "id", "Todo", "id"),
			desired:  spec("User", "id"),
			errors:   []string{"v0.2 Todo: store is no longer declared"},
			breaking: true,
		},
		{
			name:     "dropped store allowed",
			current:  spec("User", "id", "Todo", "id"),
			desired:  spec("User", "id"),
			opts:     []ValidateOption{AllowDropStore()},
			warnings: []string{"v0.2 Todo: store is no longer declared"},
			breaking: true,
		},
		{
			name:     "primary key strategy changed",
			current:  spec("User", "id"),
			desired:  spec("User", "$$id"),
			errors:   []string{"v0.2 User.id: primary key changing from id to $$id is not supported"},
			breaking: true,
		},
		{
			name:     "primary key renamed",
			current:  spec("User", "++id"),
			desired:  spec("User", "++key"),
			errors:   []string{"v0.2 User.key: primary key changing from ++id to ++key is not supported"},
			breaking: true,
		},
		{
			name:    "dropped index",
			current: spec("User", "id,name"),
			desired: spec("User", "id"),
			errors:  []string{"v0.2 User.name: index will be dropped"},
		},
		{
			name:     "dropped index allowed",
			current:  spec("User", "id,name"),
			desired:  spec("User", "id"),
			opts:     []ValidateOption{AllowDropIndex()},
			warnings: []string{"v0.2 User.name: index will be dropped"},
		},
		{
			name:     "new unique index",
			current:  spec("User", "id"),
			desired:  spec("User", "id,&email"),
			warnings: []string{"v0.2 User.email: adding a unique index may fail if duplicate values exist"},
		},
		{
			name:     "index made unique",
			current:  spec("User", "id,email"),
			desired:  spec("User", "id,&email"),
			warnings: []string{"v0.2 User.email: adding a unique index may fail if duplicate values exist"},
		},
		{
			name:     "index made multi entry",
			current:  spec("User", "id,tags"),
			desired:  spec("User", "id,*tags"),
			warnings: []string{"v0.2 User.tags: index changes between single and multi entry"},
		},
		{
			name:    "unique index kept",
			current: spec("User", "id,*&tags"),
			desired: spec("User", "id,*&tags,name"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ValidateStep(0.2, tt.current, tt.desired, tt.opts...)
			assert.Equal(t, tt.errors, messages(r.Errors))
			assert.Equal(t, tt.warnings, messages(r.Warnings))
			assert.Equal(t, len(tt.errors) > 0, r.HasErrors())
			assert.Equal(t, len(tt.warnings) > 0, r.HasWarnings())
			assert.Equal(t, tt.breaking, r.HasBreakingChanges())
		})
	}
}

func messages(list []*ValidationError) []string {
	var out []string
	for _, e := range list {
		out = append(out, e.Error())
	}
	return out
}

func TestValidatePlan(t *testing.T) {
	p := &Plan{Entries: []Entry{
		{Version: 0.1, Stores: spec("User", "id")},
		{Version: 0.2, Stores: spec("User", "id,&email")},
		{Version: 0.3, Stores: spec("User", "++id,&email")},
	}}
	r := ValidatePlan(p)
	require.Len(t, r.Warnings, 1)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, 0.2, r.Warnings[0].Version)
	assert.Equal(t, 0.3, r.Errors[0].Version)

	s := r.String()
	assert.Contains(t, s, "Errors:\n  - v0.3 User.id")
	assert.Contains(t, s, "[BREAKING]")
	assert.Contains(t, s, "Warnings:\n  - v0.2 User.email")

	assert.Equal(t, "No issues found", ValidatePlan(&Plan{}).String())
}

func TestParseSpec(t *testing.T) {
	pk, idx := parseSpec("$$id,&email,*&tags,&*alias,ownerId,[first+last]")
	assert.Equal(t, indexToken{name: "id", uuid: true}, pk)
	assert.Equal(t, []indexToken{
		{name: "email", unique: true},
		{name: "tags", unique: true, multi: true},
		{name: "alias", unique: true, multi: true},
		{name: "ownerId"},
		{name: "[first+last]"},
	}, idx)

	pk, idx = parseSpec("++id")
	assert.Equal(t, "++id", pk.String())
	assert.Empty(t, idx)
}
