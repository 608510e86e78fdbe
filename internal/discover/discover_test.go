package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func rels(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		require.True(t, filepath.IsAbs(p), "path %q is not absolute", p)
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func TestFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "plugin.sp", "")
	writeFile(t, dir, "include/sourcemod.inc", "")
	writeFile(t, dir, "include/handles.INC", "")
	writeFile(t, dir, "readme.txt", "")
	writeFile(t, dir, ".hidden.inc", "")
	writeFile(t, dir, ".git/config.inc", "")
	writeFile(t, dir, "compiled/plugin.sp", "")

	paths, err := Files(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"include/handles.INC",
		"include/sourcemod.inc",
		"plugin.sp",
	}, rels(t, dir, paths))
}

func TestFiles_Gitignore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "generated/\n*.tmp.inc\n")
	writeFile(t, dir, "a.sp", "")
	writeFile(t, dir, "generated/b.inc", "")
	writeFile(t, dir, "lib/c.tmp.inc", "")
	writeFile(t, dir, "lib/d.inc", "")

	paths, err := Files(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.sp", "lib/d.inc"}, rels(t, dir, paths))
}

func TestFiles_Exclude(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "a.sp", "")
	writeFile(t, dir, "tests/b.sp", "")
	writeFile(t, dir, "old.bak.inc", "")

	paths, err := Files(dir, []string{"tests/", "*.bak.inc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.sp"}, rels(t, dir, paths))
}

func TestFiles_MissingRoot(t *testing.T) {
	t.Parallel()
	_, err := Files(filepath.Join(t.TempDir(), "missing"), nil)
	require.Error(t, err)
}

func TestFiles_RootIsFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "a.sp", "")
	_, err := Files(filepath.Join(dir, "a.sp"), nil)
	require.Error(t, err)
}

func TestIsSource(t *testing.T) {
	t.Parallel()
	assert.True(t, IsSource("x.sp"))
	assert.True(t, IsSource("/a/b/x.inc"))
	assert.False(t, IsSource("x.smx"))
	assert.False(t, IsSource("inc"))
}
