package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userSDL = `type User { id: ID! }`
	todoSDL = `type Todo { id: Int! title: String! owner: User! }`
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// project lays out two snapshots: v1 with User, v2 with User and Todo.
func project(t *testing.T) (dir, v1, v2 string) {
	t.Helper()
	dir = t.TempDir()
	writeFile(t, filepath.Join(dir, "v1", "user.graphql"), userSDL)
	writeFile(t, filepath.Join(dir, "v2", "user.graphql"), userSDL)
	writeFile(t, filepath.Join(dir, "v2", "todo.graphql"), todoSDL)
	return dir, filepath.Join(dir, "v1", "*.graphql"), filepath.Join(dir, "v2", "*.graphql")
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = runWithArgs(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

type planJSON struct {
	Entries []struct {
		Version float64           `json:"version"`
		Slot    int               `json:"slot"`
		Stores  map[string]string `json:"stores"`
	} `json:"entries"`
}

func TestUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "a command is required"},
		{"unknown command", []string{"migrate"}, `unknown command "migrate"`},
		{"unknown flag", []string{"-x", "compile"}, "flag provided but not defined"},
		{"bad format", []string{"compile", "-format", "xml", "a.graphql"}, `unsupported format "xml"`},
		{"no snapshots", []string{"compile"}, "no snapshots given"},
		{"gen without output", []string{"gen", "a.graphql"}, "-o is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestCompile(t *testing.T) {
	_, v1, v2 := project(t)

	code, stdout, stderr := runCLI(t, "compile", v1, "-", v2)
	require.Equal(t, exitOK, code, stderr)

	var plan planJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &plan))
	require.Len(t, plan.Entries, 2)
	assert.Equal(t, 0.1, plan.Entries[0].Version)
	assert.Equal(t, map[string]string{"User": "id"}, plan.Entries[0].Stores)
	assert.Equal(t, 0.2, plan.Entries[1].Version)
	assert.Equal(t, map[string]string{"User": "id", "Todo": "id,ownerId"}, plan.Entries[1].Stores)
}

func TestCompileLatestYAML(t *testing.T) {
	_, v1, v2 := project(t)
	code, stdout, stderr := runCLI(t, "compile", "-format", "yaml", "-latest", v1, v2)
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "Todo: id,ownerId\nUser: id\n", sortLines(stdout))
}

func sortLines(s string) string {
	lines := bytes.Split(bytes.TrimSpace([]byte(s)), []byte("\n"))
	for i := 1; i < len(lines); i++ {
		for j := i; j > 0 && bytes.Compare(lines[j], lines[j-1]) < 0; j-- {
			lines[j], lines[j-1] = lines[j-1], lines[j]
		}
	}
	return string(bytes.Join(lines, []byte("\n"))) + "\n"
}

func TestCompileFailures(t *testing.T) {
	dir, v1, _ := project(t)

	code, _, stderr := runCLI(t, "compile", filepath.Join(dir, "missing.graphql"))
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "snapshot 0")

	bad := writeFile(t, filepath.Join(dir, "bad", "user.graphql"), `type User @Entity { id: ID! }`)
	code, _, stderr = runCLI(t, "compile", v1, bad)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "snapshot 1 (slot 2)")
}

func TestCompileConfig(t *testing.T) {
	dir, v1, v2 := project(t)
	writeFile(t, filepath.Join(dir, "v3", "gqlgen.yml"), "schema:\n  - schema/*.graphql\n")
	writeFile(t, filepath.Join(dir, "v3", "schema", "user.graphql"), userSDL)
	writeFile(t, filepath.Join(dir, "v3", "schema", "todo.graphql"), todoSDL)
	writeFile(t, filepath.Join(dir, "v3", "schema", "tag.graphql"), `type Tag { id: String! }`)

	cfgPath := writeFile(t, filepath.Join(dir, "idbschema.toml"), `
snapshots = [`+quote(v1)+`, "-", `+quote(v2)+`]
gqlgen = `+quote(filepath.Join(dir, "v3", "gqlgen.yml"))+`
versionStart = 10
nilPolicy = "reserve"
naming = "plural"
`)

	code, stdout, stderr := runCLI(t, "-config", cfgPath, "compile")
	require.Equal(t, exitOK, code, stderr)
	var plan planJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &plan))
	require.Len(t, plan.Entries, 3)
	assert.Equal(t, []int{10, 12, 13}, []int{plan.Entries[0].Slot, plan.Entries[1].Slot, plan.Entries[2].Slot})
	assert.Equal(t, map[string]string{"Users": "id", "Todos": "id,ownerId", "Tags": "id"}, plan.Entries[2].Stores)

	// Command line snapshots replace the configured ones.
	code, stdout, stderr = runCLI(t, "-config", cfgPath, "compile", v1)
	require.Equal(t, exitOK, code, stderr)
	plan = planJSON{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &plan))
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, map[string]string{"Users": "id"}, plan.Entries[0].Stores)

	bad := writeFile(t, filepath.Join(dir, "bad.yml"), "naming: camel\n")
	code, _, stderr = runCLI(t, "-config", bad, "compile", v1)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "must be one of")
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestGen(t *testing.T) {
	dir, v1, v2 := project(t)

	out := filepath.Join(dir, "schema", "schema.go")
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))
	code, _, stderr := runCLI(t, "gen", "-o", out, v1, v2)
	require.Equal(t, exitOK, code, stderr)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), "package schema")
	assert.Contains(t, string(b), "var Versions = []Version{")

	code, stdout, stderr := runCLI(t, "gen", "-o", "-", "-pkg", "dbschema", v1)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "package dbschema")

	code, _, stderr = runCLI(t, "gen", "-o", "-", "-pkg", "db-schema", v1)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "Package")
}

func TestLock(t *testing.T) {
	dir, v1, v2 := project(t)
	lock := filepath.Join(dir, "idbschema.lock")

	code, stdout, stderr := runCLI(t, "lock", "-lock", lock, v1, v2)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "locked 2 versions")

	code, stdout, stderr = runCLI(t, "lock", "-lock", lock, "-verify", v1, v2)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "is up to date")

	// Changing a released snapshot breaks the lock.
	writeFile(t, filepath.Join(dir, "v2", "tag.graphql"), `type Tag { id: String! }`)
	code, _, stderr = runCLI(t, "lock", "-lock", lock, "-verify", v1, v2)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "version 0.2 changed")

	code, _, stderr = runCLI(t, "lock", "-lock", filepath.Join(dir, "missing.lock"), "-verify", v1)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "read lock")
}

// cancelWriter cancels the watch after the first plan is printed.
type cancelWriter struct {
	bytes.Buffer
	cancel context.CancelFunc
}

func (w *cancelWriter) Write(p []byte) (int, error) {
	defer w.cancel()
	return w.Buffer.Write(p)
}

func TestWatchStopsWithContext(t *testing.T) {
	_, v1, v2 := project(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &cancelWriter{cancel: cancel}
	var errOut bytes.Buffer
	code := runWithArgs(ctx, []string{"watch", "-latest", v1, v2}, out, &errOut)
	require.Equal(t, exitOK, code, errOut.String())

	var stores map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &stores))
	assert.Equal(t, map[string]string{"User": "id", "Todo": "id,ownerId"}, stores)
}

func TestWatchHelpers(t *testing.T) {
	patterns := [][]string{
		{"schema/v1/*.graphql"},
		nil,
		{"./schema/v2/user.graphql", "schema/v2/todo.graphql"},
	}
	assert.Equal(t, []string{"schema/v1", "schema/v2"}, watchDirs(patterns))

	assert.True(t, matchAny(patterns, "schema/v1/user.graphql"))
	assert.True(t, matchAny(patterns, "schema/v2/user.graphql"))
	assert.False(t, matchAny(patterns, "schema/v2/tag.graphql"))
	assert.False(t, matchAny(patterns, "schema/v1/notes.txt"))
}
