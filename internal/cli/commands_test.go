package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStatements = `# sample
_:1 name "Alice" _:10 .
_:2 age 30 _:10 .

_:3 score 2.5 _:10 .
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func importSample(t *testing.T, db string) {
	t.Helper()
	out, _, err := execute(t, "--db", db, "import", "people", writeFile(t, "sample.txt", sampleStatements))
	require.NoError(t, err)
	assert.Equal(t, "imported 3 statements into people\n", out)
}

func TestImportExport(t *testing.T) {
	db := t.TempDir()
	importSample(t, db)

	out, _, err := execute(t, "--db", db, "export", "people")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "export", []byte(out))
}

func TestImportRejectsMalformedInput(t *testing.T) {
	db := t.TempDir()

	_, _, err := execute(t, "--db", db, "import", "people", writeFile(t, "bad.txt", "_:1 name Alice _:2 .\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	out, _, err := execute(t, "--db", db, "collections")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCollectionsAndCount(t *testing.T) {
	db := t.TempDir()
	importSample(t, db)

	out, _, err := execute(t, "--db", db, "collections")
	require.NoError(t, err)
	assert.Equal(t, "people\n", out)

	out, _, err = execute(t, "--db", db, "collections", "--prefix", "x")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, _, err = execute(t, "--db", db, "count", "people")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestMatch(t *testing.T) {
	db := t.TempDir()
	importSample(t, db)

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"subject", []string{"--subject", "_:1"}, `_:1 name "Alice" _:10 .` + "\n"},
		{"object", []string{"-o", "30"}, "_:2 age 30 _:10 .\n"},
		{"predicate and context", []string{"-p", "score", "--context", "_:10"}, "_:3 score 2.5 _:10 .\n"},
		{"long range", []string{"--range", "long", "--from", "30", "--to", "31"}, "_:2 age 30 _:10 .\n"},
		{"double range", []string{"--range", "double", "--from", "0", "--to", "2.5"}, ""},
		{"string range", []string{"--range", "string", "--from", "A", "--to", "B"}, `_:1 name "Alice" _:10 .` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--db", db, "match", "people"}, tt.args...)
			out, _, err := execute(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestMatchRejectsBadFlags(t *testing.T) {
	bad := [][]string{
		{"--subject", "alice"},
		{"--predicate", "has space"},
		{"--object", `"open`},
		{"--range", "bool", "--from", "a", "--to", "b"},
		{"--range", "long", "--from", "x", "--to", "1"},
		{"--object", "1", "--range", "long", "--from", "0", "--to", "1"},
	}

	for _, args := range bad {
		_, _, err := execute(t, append([]string{"--in-memory", "match", "people"}, args...)...)
		assert.Error(t, err, strings.Join(args, " "))
	}
}

func TestDemo(t *testing.T) {
	out, stderr, err := execute(t, "--in-memory", "--metrics", "demo")
	require.NoError(t, err)

	assert.Contains(t, out, "Total statements stored: 10")
	assert.Contains(t, out, `_:2 name "Alice" _:1 .`)
	assert.Contains(t, out, "_:2 knows _:3 _:1 .")
	assert.Contains(t, out, "_:2 age 30 _:1 .")
	assert.Contains(t, out, "_:4 age 28 _:1 .")
	assert.NotContains(t, out, "  _:3 age 25 _:1 .")
	assert.Contains(t, stderr, "ligature_statements_added_total 10")
}

func TestConfigFile(t *testing.T) {
	db := t.TempDir()
	cfg := writeFile(t, "ligature.yaml", "store:\n  path: "+db+"\nlog:\n  level: error\n")

	_, _, err := execute(t, "--config", cfg, "import", "people", writeFile(t, "sample.txt", sampleStatements))
	require.NoError(t, err)

	// Flags override the file
	out, _, err := execute(t, "--config", cfg, "--in-memory", "count", "people")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)

	out, _, err = execute(t, "--config", cfg, "count", "people")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}
