package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/pawndex/internal/source"
)

func writeToml(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFind_WalksUp(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	want := writeToml(t, root, "")
	deep := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	got, ok, err := Find(deep)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestFind_NotFound(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	_, ok, err := Find(dir)
	require.NoError(t, err)
	// A pawndex.toml above the temp dir would make this flaky; none is expected.
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeToml(t, dir, `
base_api = "sourcemod/include"
include_dirs = ["include", "/opt/sm/include", ""]
exclude = ["*.bak.inc"]
max_file_size = 1024
parallelism = 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, filepath.Join(dir, "sourcemod", "include"), cfg.BaseAPI)
	assert.Equal(t, []string{filepath.Join(dir, "include"), filepath.Clean("/opt/sm/include")}, cfg.IncludeDirs)
	assert.Equal(t, []string{"*.bak.inc"}, cfg.Exclude)
	assert.EqualValues(t, 1024, cfg.MaxFileSize)
	assert.Equal(t, 3, cfg.Parallelism)
	assert.Equal(t, []string{
		filepath.Join(dir, "include"),
		filepath.Clean("/opt/sm/include"),
		filepath.Join(dir, "sourcemod", "include"),
	}, cfg.SearchDirs())
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()
	path := writeToml(t, t.TempDir(), `base_api = "/sm"`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.EqualValues(t, source.DefaultMaxSize, cfg.MaxFileSize)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Parallelism)
	assert.Empty(t, cfg.IncludeDirs)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"zero size", "max_file_size = 0", ErrInvalidMaxFileSize},
		{"negative parallelism", "parallelism = -1", ErrInvalidParallelism},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeToml(t, t.TempDir(), tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	t.Parallel()
	_, err := Load(writeToml(t, t.TempDir(), `base_apii = "/sm"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_apii")
}

func TestLoad_Malformed(t *testing.T) {
	t.Parallel()
	_, err := Load(writeToml(t, t.TempDir(), `base_api = `))
	require.Error(t, err)
}

func TestDiscover_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cfg.Path)
	assert.EqualValues(t, source.DefaultMaxSize, cfg.MaxFileSize)
}
