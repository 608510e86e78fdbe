package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/pawndex/internal/store"
)

var cliBase = map[string]string{
	"sourcemod.inc": "#include <console>\n",
	"console.inc": `/**
 * Prints a message to the server console.
 *
 * @param format    Formatting rules.
 */
native void PrintToServer(const char[] format, any ...);
`,
}

var cliWorkspace = map[string]string{
	"pawndex.toml": "base_api = \"../sm\"\n",
	"plugin.sp": `#include <sourcemod>
#include "helpers.inc"

public void OnPluginStart()
{
	Dou
	PrintToServer("a, b",
}
`,
	"helpers.inc": `/**
 * Doubles a value.
 *
 * @param value     Input.
 * @return          Twice the input.
 */
stock int Double(int value)
{
	return value * 2;
}
`,
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

// setupWorkspace writes a workspace with its base API next to it and returns
// the workspace directory.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, filepath.Join(root, "sm"), cliBase)
	ws := filepath.Join(root, "ws")
	writeFiles(t, ws, cliWorkspace)
	return ws
}

// runCLI executes the root command in-process with fresh flag values and
// returns what it wrote to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	flagFormat, flagConfig, flagBaseAPI, flagColor = "json", "", "", "off"
	flagInclude, flagVerbose = nil, false
	flagLimit, flagKind, flagName, flagExportAs, flagSnapshot = 0, "", "", "", ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

// decodeResult unmarshals a JSON envelope, decoding Results into results.
func decodeResult(t *testing.T, out string, results any) CLIResult {
	t.Helper()
	var raw struct {
		CLIResult
		Results json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if results != nil {
		require.NoError(t, json.Unmarshal(raw.Results, results))
	}
	return raw.CLIResult
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))
	assert.ErrorContains(t, validateFormat("yaml"), `invalid format "yaml"`)
}

func TestParseIntArg(t *testing.T) {
	t.Parallel()
	n, err := parseIntArg("12", "line")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = parseIntArg("-1", "line")
	assert.ErrorContains(t, err, "must be non-negative")
	_, err = parseIntArg("x", "col")
	assert.ErrorContains(t, err, `invalid col "x"`)
}

func TestParsePosition(t *testing.T) {
	t.Parallel()
	pos, err := parsePosition("3", "7")
	require.NoError(t, err)
	assert.EqualValues(t, 3, pos.Line)
	assert.EqualValues(t, 7, pos.Character)

	_, err = parsePosition("99999999999", "0")
	assert.Error(t, err)
}

func TestExportFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		as, out, want string
	}{
		{"", "index.db", "sqlite"},
		{"", "index.SQLITE", "sqlite"},
		{"", "index.msgpack", "msgpack"},
		{"", "index", "msgpack"},
		{"sqlite", "index.msgpack", "sqlite"},
		{"msgpack", "index.db", "msgpack"},
	}
	for _, tt := range tests {
		got, err := exportFormat(tt.as, tt.out)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "as=%q out=%q", tt.as, tt.out)
	}
	_, err := exportFormat("csv", "x")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "unchanged", truncate("unchanged", 0))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "日本...", truncate("日本語のテキスト", 7))
}

func TestFirstLine(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "one", firstLine("one\ntwo"))
	assert.Equal(t, "only", firstLine("only"))
}

func TestResolveTargetDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	got, err := resolveTargetDir([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	file := filepath.Join(dir, "a.sp")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = resolveTargetDir([]string{file})
	assert.ErrorContains(t, err, "not a directory")

	_, err = resolveTargetDir([]string{filepath.Join(dir, "missing")})
	assert.ErrorContains(t, err, "directory not found")
}

func TestOutputResultText_Declarations(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	total := 3
	err := outputResultText(&buf, CLIResult{
		Command: "complete",
		Results: []CLIDeclaration{
			{Name: "Close", Kind: "function", Owner: "Handle", Signature: "bool Close()", Line: 4},
			{Name: "ArrayList", Kind: "methodmap", Parent: "Handle", Line: 1},
		},
		TotalCount: &total,
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Handle.Close")
	assert.Contains(t, out, "bool Close()")
	assert.Contains(t, out, "< Handle")
	assert.Contains(t, out, "Showing 2 of 3 results")
}

func TestOutputResultText_NilSignature(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	var sig *CLISignature
	require.NoError(t, outputResultText(&buf, CLIResult{Command: "signature", Results: sig}))
	assert.Contains(t, buf.String(), "No signature at cursor.")
}

func TestOutputResultText_Unsupported(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{Results: 42})
	assert.ErrorContains(t, err, "unsupported result type")
}

func TestCLI_Index(t *testing.T) {
	ws := setupWorkspace(t)
	out, err := runCLI(t, "index", ws)
	require.NoError(t, err)

	var summary CLIIndexSummary
	res := decodeResult(t, out, &summary)
	assert.Equal(t, "index", res.Command)
	assert.Equal(t, ws, summary.Root)
	assert.Equal(t, filepath.Join(ws, "pawndex.toml"), summary.ConfigFile)
	assert.Equal(t, filepath.Join(filepath.Dir(ws), "sm"), summary.BaseAPI)
	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 2, summary.BaseFiles)
	assert.Equal(t, 3, summary.Kinds["function"])
}

func TestCLI_IndexBaseAPIFlag(t *testing.T) {
	ws := setupWorkspace(t)
	require.NoError(t, os.Remove(filepath.Join(ws, "pawndex.toml")))
	sm := filepath.Join(filepath.Dir(ws), "sm")

	out, err := runCLI(t, "index", ws, "--base-api", sm)
	require.NoError(t, err)
	var summary CLIIndexSummary
	decodeResult(t, out, &summary)
	assert.Empty(t, summary.ConfigFile)
	assert.Equal(t, sm, summary.BaseAPI)
	assert.Equal(t, 2, summary.BaseFiles)
}

func TestCLI_IndexMissingDir(t *testing.T) {
	out, err := runCLI(t, "index", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	res := decodeResult(t, out, nil)
	assert.Equal(t, "index", res.Command)
	assert.Contains(t, res.Error, "directory not found")
	assert.True(t, errorHandled)
}

func TestCLI_Symbols(t *testing.T) {
	ws := setupWorkspace(t)
	out, err := runCLI(t, "symbols", filepath.Join(ws, "helpers.inc"))
	require.NoError(t, err)

	var decls []CLIDeclaration
	res := decodeResult(t, out, &decls)
	require.NotNil(t, res.TotalCount)
	assert.Equal(t, 1, *res.TotalCount)
	require.Len(t, decls, 1)
	assert.Equal(t, "Double", decls[0].Name)
	assert.Equal(t, "function", decls[0].Kind)
	assert.Equal(t, 6, decls[0].Line)
	assert.Equal(t, []CLIParameter{{Label: "value", Documentation: "Input."}}, decls[0].Parameters)
}

func TestCLI_SymbolsKindFilter(t *testing.T) {
	ws := setupWorkspace(t)
	out, err := runCLI(t, "symbols", filepath.Join(ws, "helpers.inc"), "--kind", "methodmap")
	require.NoError(t, err)
	var decls []CLIDeclaration
	decodeResult(t, out, &decls)
	assert.Empty(t, decls)
}

func TestCLI_Complete(t *testing.T) {
	ws := setupWorkspace(t)
	out, err := runCLI(t, "complete", filepath.Join(ws, "plugin.sp"), "5", "4")
	require.NoError(t, err)

	var decls []CLIDeclaration
	res := decodeResult(t, out, &decls)
	require.Len(t, decls, 1)
	assert.Equal(t, "Double", decls[0].Name)
	assert.Equal(t, filepath.Join(ws, "helpers.inc"), decls[0].File)
	assert.Equal(t, 1, *res.TotalCount)
}

func TestCLI_CompleteLimit(t *testing.T) {
	ws := setupWorkspace(t)
	// Column 1 has an empty prefix: every visible free declaration.
	out, err := runCLI(t, "complete", filepath.Join(ws, "plugin.sp"), "5", "1", "--limit", "2")
	require.NoError(t, err)

	var decls []CLIDeclaration
	res := decodeResult(t, out, &decls)
	assert.Len(t, decls, 2)
	assert.Equal(t, 3, *res.TotalCount)
}

func TestCLI_Signature(t *testing.T) {
	ws := setupWorkspace(t)
	out, err := runCLI(t, "signature", filepath.Join(ws, "plugin.sp"), "6", "22")
	require.NoError(t, err)

	var sig CLISignature
	decodeResult(t, out, &sig)
	assert.Equal(t, "void PrintToServer(const char[] format, any ...)", sig.Label)
	assert.Equal(t, 1, sig.ActiveParameter)
	assert.Equal(t, "Prints a message to the server console.", sig.Description)
	assert.Equal(t, filepath.Join(filepath.Dir(ws), "sm", "console.inc"), sig.File)
}

func TestCLI_SignatureByName(t *testing.T) {
	ws := setupWorkspace(t)
	out, err := runCLI(t, "signature", filepath.Join(ws, "plugin.sp"), "0", "0", "--name", "Double")
	require.NoError(t, err)

	var sig CLISignature
	decodeResult(t, out, &sig)
	assert.Equal(t, "int Double(int value)", sig.Label)
	assert.Equal(t, "Twice the input.", sig.Returns)
}

func TestCLI_SignatureNone(t *testing.T) {
	ws := setupWorkspace(t)
	out, err := runCLI(t, "signature", filepath.Join(ws, "plugin.sp"), "0", "0")
	require.NoError(t, err)
	assert.Contains(t, out, `"results": null`)
}

func TestCLI_Deps(t *testing.T) {
	ws := setupWorkspace(t)
	out, err := runCLI(t, "deps", filepath.Join(ws, "plugin.sp"))
	require.NoError(t, err)

	var imports []CLIImport
	decodeResult(t, out, &imports)
	require.Len(t, imports, 2)
	assert.Equal(t, "sourcemod", imports[0].Name)
	assert.False(t, imports[0].Local)
	assert.Equal(t, filepath.Join(filepath.Dir(ws), "sm", "sourcemod.inc"), imports[0].Resolved)
	assert.Equal(t, "helpers.inc", imports[1].Name)
	assert.True(t, imports[1].Local)
	assert.Equal(t, filepath.Join(ws, "helpers.inc"), imports[1].Resolved)
}

func TestCLI_Dependents(t *testing.T) {
	ws := setupWorkspace(t)
	out, err := runCLI(t, "dependents", filepath.Join(ws, "helpers.inc"))
	require.NoError(t, err)

	var paths []string
	decodeResult(t, out, &paths)
	assert.Equal(t, []string{filepath.Join(ws, "plugin.sp")}, paths)
}

func TestCLI_ExportMsgpack(t *testing.T) {
	ws := setupWorkspace(t)
	dest := filepath.Join(t.TempDir(), "index.msgpack")
	out, err := runCLI(t, "export", dest, ws)
	require.NoError(t, err)

	var x CLIExport
	decodeResult(t, out, &x)
	assert.Equal(t, "msgpack", x.Format)
	assert.Equal(t, 4, x.Files)

	snap, err := store.ReadFile(dest)
	require.NoError(t, err)
	assert.Len(t, snap.Files, 4)
}

func TestCLI_ExportSQLite(t *testing.T) {
	ws := setupWorkspace(t)
	dest := filepath.Join(t.TempDir(), "index.db")
	_, err := runCLI(t, "export", dest, ws)
	require.NoError(t, err)

	s, err := store.NewStore(dest)
	require.NoError(t, err)
	defer s.Close()
	snap, err := s.ReadSnapshot(t.Context())
	require.NoError(t, err)
	assert.Len(t, snap.Files, 4)
}

func TestCLI_SymbolsFromSnapshot(t *testing.T) {
	tests := []struct {
		name string
		dest string
	}{
		{"msgpack", "index.msgpack"},
		{"sqlite", "index.db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := setupWorkspace(t)
			dest := filepath.Join(t.TempDir(), tt.dest)
			_, err := runCLI(t, "export", dest, ws)
			require.NoError(t, err)

			out, err := runCLI(t, "symbols", filepath.Join(ws, "helpers.inc"), "--snapshot", dest)
			require.NoError(t, err)
			var decls []CLIDeclaration
			res := decodeResult(t, out, &decls)
			require.NotNil(t, res.TotalCount)
			assert.Equal(t, 1, *res.TotalCount)
			require.Len(t, decls, 1)
			assert.Equal(t, "Double", decls[0].Name)
			assert.Equal(t, "function", decls[0].Kind)
			assert.Equal(t, filepath.Join(ws, "helpers.inc"), decls[0].File)
			assert.Equal(t, 6, decls[0].Line)
			assert.Equal(t, []CLIParameter{{Label: "value", Documentation: "Input."}}, decls[0].Parameters)

			out, err = runCLI(t, "symbols", filepath.Join(ws, "helpers.inc"), "--snapshot", dest, "--kind", "define")
			require.NoError(t, err)
			decls = nil
			decodeResult(t, out, &decls)
			assert.Empty(t, decls)
		})
	}
}

func TestCLI_SymbolsFromSnapshotErrors(t *testing.T) {
	ws := setupWorkspace(t)
	dest := filepath.Join(t.TempDir(), "index.msgpack")
	_, err := runCLI(t, "export", dest, ws)
	require.NoError(t, err)

	tests := []struct {
		name     string
		file     string
		snapshot string
		want     string
	}{
		{"missing snapshot", filepath.Join(ws, "helpers.inc"), filepath.Join(t.TempDir(), "none.msgpack"), "snapshot not found"},
		{"file not exported", filepath.Join(ws, "other.inc"), dest, "is not in snapshot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, "symbols", tt.file, "--snapshot", tt.snapshot)
			require.Error(t, err)
			res := decodeResult(t, out, nil)
			assert.Equal(t, "symbols", res.Command)
			assert.Contains(t, res.Error, tt.want)
		})
	}
}

func TestCLI_TextFormat(t *testing.T) {
	ws := setupWorkspace(t)
	out, err := runCLI(t, "complete", filepath.Join(ws, "plugin.sp"), "5", "4", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "LINE")
	assert.Contains(t, out, "int Double(int value)")
	assert.Contains(t, out, "Doubles a value.")
}

func TestCLI_InvalidFormat(t *testing.T) {
	_, err := runCLI(t, "index", "--format", "yaml")
	assert.ErrorContains(t, err, "invalid format")
}
