package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleYAML = `
prefix: api
strict: true
basePort: 51000
setups:
  - endpoint: users/42
    method: GET
    headers:
      X-Single: one
      X-Multi: [a, b]
    body:
      id: "42"
  - endpoint: users
    method: POST
    required: true
    status: 201
    body: created
    match:
      headers:
        Authorization: Bearer *
      bodyContains: ada
      jsonPath:
        $.role: admin
        $.id:
          exists: true
`

func TestLoadFromFile_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mocks.yaml", sampleYAML)

	f, err := LoadFromFile(path)
	require.NoError(t, err)

	want := &File{
		Prefix:   "api",
		Strict:   true,
		BasePort: 51000,
		Setups: []SetupSpec{
			{
				Endpoint: "users/42",
				Method:   "GET",
				Headers: map[string]StringList{
					"X-Single": {"one"},
					"X-Multi":  {"a", "b"},
				},
				Body: map[string]any{"id": "42"},
			},
			{
				Endpoint: "users",
				Method:   "POST",
				Required: true,
				Status:   201,
				Body:     "created",
				Match: &MatchSpec{
					Headers:      map[string]string{"Authorization": "Bearer *"},
					BodyContains: "ada",
					JSONPath: map[string]any{
						"$.role": "admin",
						"$.id":   map[string]any{"exists": true},
					},
				},
			},
		},
	}
	if diff := cmp.Diff(want, f, cmpopts.IgnoreUnexported(File{})); diff != "" {
		t.Errorf("LoadFromFile() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{path}, f.Sources())
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mocks.json", `{
		"prefix": "v1",
		"setups": [
			{"endpoint": "health", "headers": {"X-A": "1", "X-B": ["2", "3"]}, "body": {"ok": true}}
		]
	}`)

	f, err := LoadFromFile(path)
	require.NoError(t, err)

	require.Len(t, f.Setups, 1)
	assert.Equal(t, "v1", f.Prefix)
	assert.Equal(t, StringList{"1"}, f.Setups[0].Headers["X-A"])
	assert.Equal(t, StringList{"2", "3"}, f.Setups[0].Headers["X-B"])
	assert.Equal(t, map[string]any{"ok": true}, f.Setups[0].Body)
}

func TestLoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "missing", path: filepath.Join(dir, "nope.yaml"), wantErr: ErrFileNotFound},
		{name: "empty", path: writeFile(t, dir, "empty.yaml", "  \n"), wantErr: ErrEmptyFile},
		{name: "bad json", path: writeFile(t, dir, "bad.json", `{"setups": [`), wantErr: ErrInvalidJSON},
		{name: "bad yaml", path: writeFile(t, dir, "bad.yaml", "setups: [\n  - endpoint: x\n  bad"), wantErr: ErrInvalidYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(tt.path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestLoadFromFile_Directory(t *testing.T) {
	_, err := LoadFromFile(t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("HTTPMOCK_TEST_PREFIX", "v2")

	assert.Equal(t, "prefix: v2", ExpandEnvVars("prefix: ${HTTPMOCK_TEST_PREFIX}"))
	assert.Equal(t, "port: 5000", ExpandEnvVars("port: ${HTTPMOCK_TEST_UNSET:-5000}"))
	assert.Equal(t, "x: ", ExpandEnvVars("x: ${HTTPMOCK_TEST_UNSET}"))
	assert.Equal(t, "$HOME stays", ExpandEnvVars("$HOME stays"))
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("HTTPMOCK_TEST_ENDPOINT", "orders")
	path := writeFile(t, t.TempDir(), "env.yaml", "setups:\n  - endpoint: ${HTTPMOCK_TEST_ENDPOINT}\n")

	f, err := LoadFromFile(path)
	require.NoError(t, err)

	require.Len(t, f.Setups, 1)
	assert.Equal(t, "orders", f.Setups[0].Endpoint)
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "setups: []")
	b := writeFile(t, dir, "nested/deep/b.yml", "setups: []")
	c := writeFile(t, dir, "nested/c.json", `{"setups": []}`)
	writeFile(t, dir, "nested/readme.txt", "ignored")

	t.Run("directory", func(t *testing.T) {
		got, err := ExpandPaths(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{a, c, b}, got)
	})

	t.Run("doublestar glob", func(t *testing.T) {
		got, err := ExpandPaths(filepath.Join(dir, "**", "*.y*ml"))
		require.NoError(t, err)
		assert.Equal(t, []string{a, b}, got)
	})

	t.Run("literal paths keep order and dedupe", func(t *testing.T) {
		got, err := ExpandPaths(c, a, c)
		require.NoError(t, err)
		assert.Equal(t, []string{c, a}, got)
	})

	t.Run("no matches", func(t *testing.T) {
		_, err := ExpandPaths(filepath.Join(dir, "*.toml"))
		assert.ErrorIs(t, err, ErrNoFiles)
	})
}

func TestLoad_Merges(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "01-base.yaml", "prefix: api\nsetups:\n  - endpoint: a\n")
	writeFile(t, dir, "02-more.yaml", "strict: true\nsetups:\n  - endpoint: b\n  - endpoint: c\n")

	f, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "api", f.Prefix)
	assert.True(t, f.Strict)
	endpoints := make([]string, len(f.Setups))
	for i, s := range f.Setups {
		endpoints[i] = s.Endpoint
	}
	assert.Equal(t, []string{"a", "b", "c"}, endpoints)
	assert.Len(t, f.Sources(), 2)
}

func TestLoad_ConflictingPrefix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "prefix: api\nsetups: []\n")
	writeFile(t, dir, "b.yaml", "prefix: other\nsetups: []\n")

	_, err := Load(dir)

	assert.ErrorIs(t, err, ErrConflict)
}
