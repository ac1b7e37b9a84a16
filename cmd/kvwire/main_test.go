package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(t.Context(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestCat_Lines(t *testing.T) {
	out, _, err := runCLI(t, "pages=412\nname = Dune\n\nflag\n", "cat")
	require.NoError(t, err)
	assert.Equal(t, "flag=\nname=Dune\npages=412\n", out)
}

func TestCat_TypedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.kv")
	require.NoError(t, os.WriteFile(path, []byte("__tvid=1|0\nname=Dune\nmeta=Chilton|1965\n"), 0644))

	out, _, err := runCLI(t, "", "cat", path)
	require.NoError(t, err)
	assert.Equal(t, "__tvid=1|0\nmeta=Chilton|1965\nname=Dune\n", out)
}

func TestCat_YAML(t *testing.T) {
	out, _, err := runCLI(t, "__tvid=7|2\nb=2\na=1\n", "cat", "--format", "yaml")
	require.NoError(t, err)

	var view catView
	require.NoError(t, yaml.Unmarshal([]byte(out), &view))
	require.NotNil(t, view.Type)
	assert.Equal(t, int16(7), *view.Type)
	require.NotNil(t, view.MinCompat)
	assert.Equal(t, uint8(2), *view.MinCompat)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, view.Fields)
}

func TestCat_BufferBytesFlag(t *testing.T) {
	out, stderr, err := runCLI(t, "key=0123456789\n", "--buffer-bytes", "8", "--log-level", "debug", "cat")
	require.NoError(t, err)
	assert.Equal(t, "key=0123\n", out)
	assert.Contains(t, stderr, "line truncated")
}

func TestCat_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kvwire.toml")
	require.NoError(t, os.WriteFile(path, []byte("buffer_bytes = 5\n"), 0644))

	out, _, err := runCLI(t, "abcdefgh\n", "--config", path, "cat")
	require.NoError(t, err)
	assert.Equal(t, "abcde=\n", out)
}

func TestPipe(t *testing.T) {
	in := "__tvid=1|0\nname=Dune\nsecret=x\npages=412\nEND\nlate=1\n"

	out, _, err := runCLI(t, in, "pipe", "--drop", "secret", "--stop-at", "END")
	require.NoError(t, err)
	assert.Equal(t, "__tvid=1|0\nname=Dune\npages=412\n", out)

	out, _, err = runCLI(t, in, "pipe")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "missing command"},
		{"unknown command", []string{"frobnicate"}, "unknown command"},
		{"bad format", []string{"cat", "--format", "xml"}, "unknown format"},
		{"missing file", []string{"cat", "/nonexistent/stream.kv"}, "no such file"},
		{"extra pipe arg", []string{"pipe", "extra"}, "unexpected argument"},
		{"bad config", []string{"--config", "/nonexistent/kvwire.toml", "cat"}, "config load failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, "", tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
