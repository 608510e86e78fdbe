package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"github.com/jward/pawndex"
	"github.com/jward/pawndex/internal/source"
	"github.com/jward/pawndex/internal/store"
)

var (
	flagLimit    int
	flagKind     string
	flagName     string
	flagSnapshot string
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols <file>",
	Short: "List the declarations of one file",
	Long:  "Scans a single file and lists its declarations. With --snapshot the declarations are read from a file written by export instead. Lines are 0-based.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbols,
}

var completeCmd = &cobra.Command{
	Use:   "complete <file> <line> <col>",
	Short: "Completion candidates at a cursor",
	Long:  "Indexes the workspace holding file and lists the completion candidates for the cursor. Line and column are 0-based; the column counts UTF-16 code units.",
	Args:  cobra.ExactArgs(3),
	RunE:  runComplete,
}

var signatureCmd = &cobra.Command{
	Use:   "signature <file> <line> <col>",
	Short: "Signature help for the call at a cursor",
	Long:  "Indexes the workspace holding file and shows the signature of the call enclosing the cursor, or of --name. Line and column are 0-based; the column counts UTF-16 code units.",
	Args:  cobra.ExactArgs(3),
	RunE:  runSignature,
}

var depsCmd = &cobra.Command{
	Use:   "deps <file>",
	Short: "Includes of a file and where they resolve",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeps,
}

var dependentsCmd = &cobra.Command{
	Use:   "dependents <file>",
	Short: "Files whose includes resolve to a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDependents,
}

func init() {
	symbolsCmd.Flags().StringVar(&flagKind, "kind", "", "only list declarations of this kind")
	symbolsCmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "read declarations from an exported snapshot (.db or msgpack)")
	completeCmd.Flags().IntVar(&flagLimit, "limit", 0, "maximum number of candidates (0 for all)")
	signatureCmd.Flags().StringVar(&flagName, "name", "", "callee to describe instead of the enclosing call")
}

// --- Helpers ---

// resolveFilePath converts a file argument to an absolute path.
// If the path is already absolute, it's returned as-is.
// Otherwise, it's resolved relative to the current working directory.
func resolveFilePath(file string) (string, error) {
	if filepath.IsAbs(file) {
		return file, nil
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("resolving file path %q: %w", file, err)
	}
	return abs, nil
}

// parseIntArg parses a positional argument as an integer with a clear error.
func parseIntArg(value, name string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be non-negative", name, value)
	}
	return n, nil
}

// parsePosition reads the <line> <col> arguments.
func parsePosition(lineArg, colArg string) (pawndex.Position, error) {
	line, err := parseIntArg(lineArg, "line")
	if err != nil {
		return pawndex.Position{}, err
	}
	col, err := parseIntArg(colArg, "col")
	if err != nil {
		return pawndex.Position{}, err
	}
	l, err := safecast.Conv[uint32](line)
	if err != nil {
		return pawndex.Position{}, fmt.Errorf("invalid line %q: %w", lineArg, err)
	}
	c, err := safecast.Conv[uint32](col)
	if err != nil {
		return pawndex.Position{}, fmt.Errorf("invalid col %q: %w", colArg, err)
	}
	return pawndex.Position{Line: l, Character: c}, nil
}

// openDocument indexes the workspace holding file and opens file in it. It
// returns the engine with the decoded content of file.
func openDocument(ctx context.Context, file string) (*pawndex.Engine, *source.File, error) {
	path, err := resolveFilePath(file)
	if err != nil {
		return nil, nil, err
	}
	dir := filepath.Dir(path)
	cfg, err := loadConfig(dir)
	if err != nil {
		return nil, nil, err
	}
	e, err := newEngine(ctx, cfg, workspaceRoot(cfg, dir))
	if err != nil {
		return nil, nil, err
	}
	if err := e.Open(ctx, path); err != nil {
		return nil, nil, err
	}
	src, err := source.Read(path, cfg.MaxFileSize)
	if err != nil {
		return nil, nil, err
	}
	return e, src, nil
}

// queryContext builds the cursor for a document opened by openDocument.
func queryContext(src *source.File, lineArg, colArg string) (pawndex.QueryContext, error) {
	pos, err := parsePosition(lineArg, colArg)
	if err != nil {
		return pawndex.QueryContext{}, err
	}
	return pawndex.QueryContext{Document: src.Path, Position: pos, Text: src.Text}, nil
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(cmd *cobra.Command, result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(cmd.OutOrStdout(), result)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(cmd *cobra.Command, command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

func declarationToCLI(file string, d pawndex.Declaration) CLIDeclaration {
	return CLIDeclaration{
		Name:        d.Name,
		Kind:        string(d.Kind),
		Owner:       d.Owner,
		Parent:      d.Parent,
		Type:        d.Type,
		Signature:   d.Signature,
		Description: d.Description,
		File:        file,
		Line:        d.Line,
		Parameters:  paramsToCLI(d.Params),
	}
}

func storedDeclarationToCLI(file string, d store.Declaration) CLIDeclaration {
	out := CLIDeclaration{
		Name:        d.Name,
		Kind:        d.Kind,
		Owner:       d.Owner,
		Parent:      d.Parent,
		Type:        d.Type,
		Signature:   d.Signature,
		Description: d.Description,
		File:        file,
		Line:        d.Line,
	}
	for _, p := range d.Params {
		out.Parameters = append(out.Parameters, CLIParameter{Label: p.Label, Documentation: p.Documentation})
	}
	return out
}

func candidateToCLI(c pawndex.Candidate) CLIDeclaration {
	return CLIDeclaration{
		Name:        c.Name,
		Kind:        string(c.Kind),
		Owner:       c.Owner,
		Type:        c.Type,
		Signature:   c.Signature,
		Description: c.Description,
		File:        c.Location.File,
		Line:        c.Location.Line,
	}
}

func paramsToCLI(params []pawndex.Parameter) []CLIParameter {
	out := make([]CLIParameter, 0, len(params))
	for _, p := range params {
		out = append(out, CLIParameter{Label: p.Label, Documentation: p.Documentation})
	}
	return out
}

func signatureToCLI(s *pawndex.Signature) *CLISignature {
	if s == nil {
		return nil
	}
	return &CLISignature{
		Label:           s.Label,
		Kind:            string(s.Kind),
		Owner:           s.Owner,
		Description:     s.Description,
		Returns:         s.Returns,
		Error:           s.Error,
		Parameters:      paramsToCLI(s.Parameters),
		ActiveParameter: s.ActiveParameter,
		File:            s.Location.File,
		Line:            s.Location.Line,
	}
}

// --- Commands ---

func runSymbols(cmd *cobra.Command, args []string) error {
	path, err := resolveFilePath(args[0])
	if err != nil {
		return outputError(cmd, "symbols", err)
	}
	if flagSnapshot != "" {
		return runSymbolsFromSnapshot(cmd, path)
	}
	cfg, err := loadConfig(filepath.Dir(path))
	if err != nil {
		return outputError(cmd, "symbols", err)
	}
	e, err := newEngine(cmd.Context(), cfg, "")
	if err != nil {
		return outputError(cmd, "symbols", err)
	}
	fc, err := e.ParseFile(cmd.Context(), path)
	if err != nil {
		return outputError(cmd, "symbols", err)
	}

	results := []CLIDeclaration{}
	for _, d := range fc.Declarations() {
		if flagKind != "" && string(d.Kind) != flagKind {
			continue
		}
		results = append(results, declarationToCLI(fc.Path, d))
	}
	total := len(results)
	return outputResult(cmd, CLIResult{Command: "symbols", Results: results, TotalCount: &total})
}

func runSymbolsFromSnapshot(cmd *cobra.Command, path string) error {
	snap, err := readSnapshot(cmd.Context(), flagSnapshot)
	if err != nil {
		return outputError(cmd, "symbols", err)
	}
	for _, f := range snap.Files {
		if f.Path != path {
			continue
		}
		results := []CLIDeclaration{}
		for _, d := range f.Declarations {
			if flagKind != "" && d.Kind != flagKind {
				continue
			}
			results = append(results, storedDeclarationToCLI(f.Path, d))
		}
		total := len(results)
		return outputResult(cmd, CLIResult{Command: "symbols", Results: results, TotalCount: &total})
	}
	return outputError(cmd, "symbols", fmt.Errorf("%s is not in snapshot %s", path, flagSnapshot))
}

// readSnapshot loads a file written by export. The format follows the
// extension, as it does for export.
func readSnapshot(ctx context.Context, path string) (*store.Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("snapshot not found: %s", path)
	}
	if as, _ := exportFormat("", path); as == "msgpack" {
		snap, err := store.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
		}
		return snap, nil
	}
	s, err := store.NewStore(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.ReadSnapshot(ctx)
}

func runComplete(cmd *cobra.Command, args []string) error {
	if flagLimit < 0 {
		return outputError(cmd, "complete", fmt.Errorf("invalid limit %d: must be non-negative", flagLimit))
	}
	e, src, err := openDocument(cmd.Context(), args[0])
	if err != nil {
		return outputError(cmd, "complete", err)
	}
	q, err := queryContext(src, args[1], args[2])
	if err != nil {
		return outputError(cmd, "complete", err)
	}

	candidates := e.Completions(q)
	total := len(candidates)
	if flagLimit > 0 && len(candidates) > flagLimit {
		candidates = candidates[:flagLimit]
	}
	results := make([]CLIDeclaration, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, candidateToCLI(c))
	}
	return outputResult(cmd, CLIResult{Command: "complete", Results: results, TotalCount: &total})
}

func runSignature(cmd *cobra.Command, args []string) error {
	e, src, err := openDocument(cmd.Context(), args[0])
	if err != nil {
		return outputError(cmd, "signature", err)
	}
	q, err := queryContext(src, args[1], args[2])
	if err != nil {
		return outputError(cmd, "signature", err)
	}
	q.Name = flagName
	return outputResult(cmd, CLIResult{Command: "signature", Results: signatureToCLI(e.SignatureHelp(q))})
}

func runDeps(cmd *cobra.Command, args []string) error {
	e, src, err := openDocument(cmd.Context(), args[0])
	if err != nil {
		return outputError(cmd, "deps", err)
	}
	qb := e.Query()
	results := []CLIImport{}
	for _, imp := range qb.Dependencies(src.Path) {
		target, _ := qb.Resolve(imp)
		results = append(results, CLIImport{
			Name:     imp.Name,
			Path:     imp.Path,
			Local:    imp.Local,
			Resolved: target,
		})
	}
	total := len(results)
	return outputResult(cmd, CLIResult{Command: "deps", Results: results, TotalCount: &total})
}

func runDependents(cmd *cobra.Command, args []string) error {
	e, src, err := openDocument(cmd.Context(), args[0])
	if err != nil {
		return outputError(cmd, "dependents", err)
	}
	results := e.Query().Dependents(src.Path)
	if results == nil {
		results = []string{}
	}
	total := len(results)
	return outputResult(cmd, CLIResult{Command: "dependents", Results: results, TotalCount: &total})
}
