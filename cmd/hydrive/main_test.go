package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const santafeManual = `{
  "file_name": "santafe.pdf",
  "sections": [
    {"section_number": "1", "title": "타이어 공기압 점검", "page_range": [12, 15],
     "content": "정기적으로 타이어 공기압을 점검하세요.", "keywords": ["타이어", "공기압"]},
    {"section_number": "2", "title": "엔진 오일 교체",
     "content": "엔진 오일은 10,000km마다 교체하십시오.", "keywords": ["엔진 오일"]}
  ]
}`

func testApp(out *bytes.Buffer) *cli.App {
	app := newApp()
	app.Writer = out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := testApp(&out).Run(append([]string{"hydrive"}, args...))
	return out.String(), err
}

func findFlag[T cli.Flag](cmd *cli.Command, name string) T {
	var zero T
	for _, flag := range cmd.Flags {
		if f, ok := flag.(T); ok && flag.Names()[0] == name {
			return f
		}
	}
	return zero
}

func TestCommandFlags(t *testing.T) {
	app := newApp()

	t.Run("db is required", func(t *testing.T) {
		_, err := run(t, "list")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("vehicle is required for search", func(t *testing.T) {
		_, err := run(t, "--db", t.TempDir(), "search", "타이어")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vehicle")
	})

	t.Run("embedding-host has default value", func(t *testing.T) {
		var host *cli.StringFlag
		for _, flag := range app.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "embedding-host" {
				host = f
			}
		}
		require.NotNil(t, host)
		assert.Equal(t, "http://localhost:11434/v1", host.Value)
		assert.Equal(t, []string{"HYDRIVE_EMBEDDING_HOST"}, host.EnvVars)
	})

	t.Run("build-cache defaults", func(t *testing.T) {
		cmd := app.Command("build-cache")
		require.NotNil(t, cmd)
		assert.Equal(t, 32, findFlag[*cli.IntFlag](cmd, "batch-size").Value)
		assert.Equal(t, 3, findFlag[*cli.IntFlag](cmd, "max-retries").Value)
	})

	t.Run("invalid build-cache settings", func(t *testing.T) {
		_, err := run(t, "--db", t.TempDir(), "build-cache", "--batch-size", "0")
		assert.ErrorContains(t, err, "batch-size")
		_, err = run(t, "--db", t.TempDir(), "build-cache", "--max-retries", "0")
		assert.ErrorContains(t, err, "max-retries")
	})

	t.Run("invalid log level", func(t *testing.T) {
		_, err := run(t, "--db", t.TempDir(), "--log-level", "loud", "list")
		assert.ErrorContains(t, err, "invalid log level")
	})
}

func TestImportListSearch(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "db")
	manual := filepath.Join(dir, "santafe.json")
	require.NoError(t, os.WriteFile(manual, []byte(santafeManual), 0o644))

	out, err := run(t, "--db", dbPath, "--log-level", "error", "import", manual)
	require.NoError(t, err)
	assert.Contains(t, out, "imported santafe (싼타페): 2 sections")

	out, err = run(t, "--db", dbPath, "--log-level", "error", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "santafe")
	assert.Contains(t, out, "none")

	out, err = run(t, "--db", dbPath, "--log-level", "error",
		"search", "--vehicle", "SANTAFE", "--mode", "lexical", "-n", "1", "타이어", "공기압", "확인", "방법")
	require.NoError(t, err)
	assert.Contains(t, out, "1. [")
	assert.Contains(t, out, "] 1 타이어 공기압 점검 (p. 12-15)")
	assert.Contains(t, out, "mode=lexical")
	assert.NotContains(t, out, "2. ")

	out, err = run(t, "--db", dbPath, "--log-level", "error",
		"search", "--vehicle", "SANTAFE", "qwerty", "asdfgh")
	require.NoError(t, err)
	assert.Contains(t, out, "no matching sections")

	_, err = run(t, "--db", dbPath, "--log-level", "error", "search", "--vehicle", "KONA", "타이어")
	assert.ErrorContains(t, err, "unknown vehicle")

	_, err = run(t, "--db", dbPath, "--log-level", "error", "search", "--vehicle", "SANTAFE", "--mode", "fuzzy", "타이어")
	assert.ErrorContains(t, err, "invalid search mode")
}

func TestImportRequiresFiles(t *testing.T) {
	_, err := run(t, "--db", t.TempDir(), "import")
	assert.ErrorContains(t, err, "at least one manual file")
}
