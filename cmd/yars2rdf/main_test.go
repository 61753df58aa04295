package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aleksaelezovic/yars2rdf/pkg/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("YARS_ENV", "production")
	t.Setenv("YARS_DB_PATH", filepath.Join(dir, "db"))
	t.Setenv("YARS_BASE_IRI", "http://ex.org/")
	return dir
}

func TestConvertCommand(t *testing.T) {
	dir := setupEnv(t)
	a := writeFile(t, dir, "a.yars", "(s{v:'<a>'})\n(o{v:'A'})\n(s)-[<http://ex.org/p>]->(o)\n")
	b := writeFile(t, dir, "b.yars", "(s{v:'<b>'})\n(o{v:'B'})\n(s)-[<http://ex.org/p>]->(o)\n")

	out, err := execute(t, "convert", "--log-level", "error", a, b)
	require.NoError(t, err)
	assert.Equal(t,
		"<http://ex.org/a> <http://ex.org/p> \"A\" .\n"+
			"<http://ex.org/b> <http://ex.org/p> \"B\" .\n", out)

	out, err = execute(t, "convert", "--base", "http://other.org/", b)
	require.NoError(t, err)
	assert.Equal(t, "<http://other.org/b> <http://ex.org/p> \"B\" .\n", out)
}

func TestConvertCommand_OutputFile(t *testing.T) {
	dir := setupEnv(t)
	a := writeFile(t, dir, "a.yars", "(s{v:'<a>'})\n(s)-[p]->(s)\n")
	target := filepath.Join(dir, "out.nt")

	out, err := execute(t, "convert", "-o", target, a)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "<http://ex.org/a> <http://ex.org/p> <http://ex.org/a> .\n", string(data))
}

func TestConvertCommand_ParseError(t *testing.T) {
	dir := setupEnv(t)
	bad := writeFile(t, dir, "bad.yars", "(s)-[p]->(o)\n")

	_, err := execute(t, "convert", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestLoadCountDump(t *testing.T) {
	dir := setupEnv(t)
	doc := writeFile(t, dir, "g.yars", "(s{v:'<a>'})\n(o{v:'x'})\n(s)-[<http://ex.org/p>]->(o)\n")

	out, err := execute(t, "load", doc)
	require.NoError(t, err)
	assert.Equal(t, "Loaded 1 triples\n", out)

	out, err = execute(t, "count")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = execute(t, "dump")
	require.NoError(t, err)
	assert.Equal(t, "<http://ex.org/a> <http://ex.org/p> \"x\" .\n", out)
}

func TestVersionCommand(t *testing.T) {
	setupEnv(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestInvalidLogLevel(t *testing.T) {
	setupEnv(t)
	_, err := execute(t, "version", "--log-level", "loud")
	assert.Error(t, err)
}

func TestOutputByExtension(t *testing.T) {
	dir := setupEnv(t)
	doc := writeFile(t, dir, "g.yars", "(s{v:'<a>'})\n(s)-[p]->(s)\n")

	_, err := execute(t, "convert", "-o", filepath.Join(dir, "out.yars"), doc)
	require.ErrorIs(t, err, rdf.ErrYARSWriteUnsupported)
	assert.NoFileExists(t, filepath.Join(dir, "out.yars"))

	_, err = execute(t, "load", doc)
	require.NoError(t, err)

	target := filepath.Join(dir, "dump.nt")
	out, err := execute(t, "dump", "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "<http://ex.org/a> <http://ex.org/p> <http://ex.org/a> .\n", string(data))

	_, err = execute(t, "dump", "-o", filepath.Join(dir, "dump.yars"))
	require.ErrorIs(t, err, rdf.ErrYARSWriteUnsupported)
}

func TestConvertCommand_RelativeBaseRejected(t *testing.T) {
	dir := setupEnv(t)
	doc := writeFile(t, dir, "g.yars", "(s{v:'<a>'})\n(s)-[p]->(s)\n")

	_, err := execute(t, "convert", "--base", "foo", doc)
	require.ErrorIs(t, err, rdf.ErrInvalidBaseIRI)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
