package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeList(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cities.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "weatherbot dev"))
}

func TestCitiesIndex(t *testing.T) {
	path := writeList(t, "Київ", "Одеса", "Кременчук", "", "Львів")

	out, err := execute(t, "cities", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "К\t2\nЛ\t1\nО\t1\ntotal\t4\n", out)
}

func TestCitiesForLetter(t *testing.T) {
	path := writeList(t, "Київ", "Одеса", "Кременчук")

	out, err := execute(t, "cities", "-f", path, "к")
	require.NoError(t, err)
	assert.Equal(t, "Київ\nКременчук\n", out)

	_, err = execute(t, "cities", "-f", path, "Я")
	require.Error(t, err)
}

func TestCitiesAll(t *testing.T) {
	path := writeList(t, "Одеса", "Київ", "", "Львів")

	out, err := execute(t, "cities", "--all", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "Київ\nЛьвів\nОдеса\n", out)

	_, err = execute(t, "cities", "-a", "-f", path, "К")
	require.Error(t, err)

	_, err = execute(t, "cities", "--all", "-f", writeList(t, ""))
	require.Error(t, err)
}

func TestCitiesEmptyList(t *testing.T) {
	_, err := execute(t, "cities", "--file", writeList(t, ""))
	require.Error(t, err)
}

func TestRunRequiresConfig(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
