package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"citools/internal/clierr"
	"citools/internal/extractor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fooTree = `{
  "key.substructure": [{
    "key.kind": "source.lang.swift.decl.class",
    "key.accessibility": "%s",
    "key.name": "Foo",
    "key.substructure": [{
      "key.kind": "source.lang.swift.decl.function.method.instance",
      "key.accessibility": "source.lang.swift.accessibility.public",
      "key.name": "bar",
      "key.parsed_declaration": "func bar()"
    }]
  }]
}`

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeTree(t *testing.T, accessibility string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api.json")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(fooTree, accessibility)), 0644))
	return path
}

func TestExtractPublicAPI_PublicClass(t *testing.T) {
	input := writeTree(t, "source.lang.swift.accessibility.public")
	output := filepath.Join(t.TempDir(), "public_api.json")

	code, stdout, stderr := execute(t, input, output)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Extracted public API. Output written to "+output+"\n", stdout)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"className": "Foo", "apiFunctions": [{"name": "bar", "declaration": "func bar()"}]}]`, string(data))
}

func TestExtractPublicAPI_NonPublicClass(t *testing.T) {
	input := writeTree(t, "source.lang.swift.accessibility.internal")
	output := filepath.Join(t.TempDir(), "public_api.json")

	code, _, stderr := execute(t, input, output)
	require.Equal(t, 0, code, stderr)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestExtractPublicAPI_Usage(t *testing.T) {
	for _, args := range [][]string{{}, {"only-one.json"}, {"a.json", "b.json", "c.json"}} {
		code, stdout, stderr := execute(t, args...)
		assert.Equal(t, 1, code)
		assert.Empty(t, stdout)
		assert.Equal(t, "Usage: extract-public-api <input_api.json> <output_public_api.json>\n", stderr)
	}
}

func TestExtractPublicAPI_MissingInput(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "public_api.json")

	code, stdout, stderr := execute(t, filepath.Join(dir, "missing.json"), output)
	assert.NotEqual(t, 0, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "failed to read file")
	assert.NoFileExists(t, output)
}

func TestExtractPublicAPI_MalformedInputWritesNothing(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "api.json")
	require.NoError(t, os.WriteFile(input, []byte(`[{"key.kind": "source.lang.swift.decl.class",`), 0644))
	output := filepath.Join(dir, "public_api.json")

	code, _, stderr := execute(t, input, output)
	assert.NotEqual(t, 0, code)
	assert.Contains(t, stderr, "not valid JSON")
	assert.NoFileExists(t, output)
}

func TestExtractPublicAPI_ReadsRepositoryFixture(t *testing.T) {
	input := filepath.Join("..", "..", "internal", "extractor", "testdata", "api.json")
	golden, err := os.ReadFile(filepath.Join("..", "..", "internal", "extractor", "testdata", "public_api.golden.json"))
	require.NoError(t, err)
	output := filepath.Join(t.TempDir(), "public_api.json")

	code, _, stderr := execute(t, "-v", input, output)
	require.Equal(t, 0, code, stderr)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, string(golden), string(data))
}

func TestExtractError_Classification(t *testing.T) {
	ext := extractor.New(extractor.DefaultRules(), nil)
	dir := t.TempDir()

	t.Run("unreadable input is an I/O error", func(t *testing.T) {
		_, err := ext.ExtractFile(filepath.Join(dir, "missing.json"))
		require.Error(t, err)
		classified := extractError(err)
		assert.True(t, clierr.IsIO(classified))
		assert.False(t, clierr.IsParse(classified))
	})

	t.Run("input that is a directory is an I/O error", func(t *testing.T) {
		_, err := ext.ExtractFile(dir)
		require.Error(t, err)
		assert.True(t, clierr.IsIO(extractError(err)))
	})

	t.Run("malformed input is a parse error", func(t *testing.T) {
		path := filepath.Join(dir, "api.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"key.kind": `), 0644))
		_, err := ext.ExtractFile(path)
		require.Error(t, err)
		classified := extractError(err)
		assert.True(t, clierr.IsParse(classified))
		assert.False(t, clierr.IsIO(classified))
	})
}
