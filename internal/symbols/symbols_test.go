package symbols

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_LastWriteWins(t *testing.T) {
	t.Parallel()
	fc := NewFileCompletions("/src/a.sp")

	fc.Add("Foo", Declaration{Kind: Function, Name: "Foo", Signature: "void Foo()"})
	fc.Add("Foo", Declaration{Kind: Variable, Name: "Foo", Type: "int"})

	d, ok := fc.Lookup("Foo")
	require.True(t, ok)
	assert.Equal(t, Variable, d.Kind)
	assert.Equal(t, 1, fc.Len())
}

func TestKey_QualifiesMembers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Close", Declaration{Kind: Function, Name: "Close"}.Key())
	assert.Equal(t, "Handle.Close", Declaration{Kind: Method, Name: "Close", Owner: "Handle"}.Key())
	assert.Equal(t, "Handle.Count", Declaration{Kind: Property, Name: "Count", Owner: "Handle"}.Key())
}

func TestResolveImport_LocalIsRelativeToFile(t *testing.T) {
	t.Parallel()
	fc := NewFileCompletions(filepath.Join("/src", "plugin", "main.sp"))

	fc.ResolveImport("util/helpers", true)
	fc.ResolveImport("sourcemod", false)
	fc.ResolveImport("sourcemod", false)

	imps := fc.Imports()
	require.Len(t, imps, 2)
	assert.Equal(t, filepath.Join("/src", "plugin", "util", "helpers"), imps[0].Path)
	assert.True(t, imps[0].Local)
	assert.Equal(t, "sourcemod", imps[1].Path)
	assert.False(t, imps[1].Local)
}

func TestResolveImport_IgnoresEmpty(t *testing.T) {
	t.Parallel()
	fc := NewFileCompletions("/src/a.sp")
	fc.ResolveImport("  ", true)
	assert.Empty(t, fc.Imports())
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	local := Import{Name: "helpers", Path: filepath.Join("/src", "helpers"), Local: true}
	assert.Equal(t, []string{
		filepath.Join("/src", "helpers.inc"),
		filepath.Join("/src", "helpers.sp"),
		filepath.Join("/src", "helpers"),
		filepath.Join("/inc", "helpers.inc"),
		filepath.Join("/inc", "helpers.sp"),
		filepath.Join("/inc", "helpers"),
	}, local.Candidates("/inc"))

	system := Import{Name: "sdktools.inc", Path: "sdktools.inc"}
	assert.Equal(t, []string{
		filepath.Join("/base", "sdktools.inc"),
	}, system.Candidates("", "/base"))
}

func TestDeclarations_SortedByKey(t *testing.T) {
	t.Parallel()
	fc := NewFileCompletions("/src/a.sp")
	fc.Add("b", Declaration{Kind: Define, Name: "b"})
	fc.Add("Handle.Close", Declaration{Kind: Method, Name: "Close", Owner: "Handle"})
	fc.Add("a", Declaration{Kind: Define, Name: "a"})

	var keys []string
	for _, d := range fc.Declarations() {
		keys = append(keys, d.Key())
	}
	assert.Equal(t, []string{"Handle.Close", "a", "b"}, keys)
}

func TestMembersAndMethodmap(t *testing.T) {
	t.Parallel()
	fc := NewFileCompletions("/src/a.inc")
	fc.Add("Handle", Declaration{Kind: Class, Name: "Handle"})
	fc.Add("Handle.Close", Declaration{Kind: Method, Name: "Close", Owner: "Handle"})
	fc.Add("File.Close", Declaration{Kind: Method, Name: "Close", Owner: "File"})
	fc.Add("Close", Declaration{Kind: Function, Name: "Close"})

	mm, ok := fc.Methodmap("Handle")
	require.True(t, ok)
	assert.Equal(t, "Handle", mm.Name)

	_, ok = fc.Methodmap("Close")
	assert.False(t, ok)

	members := fc.Members("Handle")
	require.Len(t, members, 1)
	assert.Equal(t, "Handle", members[0].Owner)

	counts := fc.CountByKind()
	assert.Equal(t, 2, counts[Method])
	assert.Equal(t, 1, counts[Class])
	assert.Equal(t, 1, counts[Function])
}

func TestNilTable(t *testing.T) {
	t.Parallel()
	var fc *FileCompletions
	_, ok := fc.Lookup("x")
	assert.False(t, ok)
	assert.Nil(t, fc.Declarations())
	assert.Nil(t, fc.Imports())
	assert.Zero(t, fc.Len())
}
