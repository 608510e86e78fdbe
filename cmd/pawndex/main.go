package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/jward/pawndex"
	"github.com/jward/pawndex/internal/config"
)

var (
	flagFormat  string
	flagConfig  string
	flagBaseAPI string
	flagInclude []string
	flagVerbose bool
	flagColor   string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "pawndex",
	Short:         "Completion and signature help for SourcePawn",
	Long:          "Pawndex scans SourcePawn sources and include files, and answers completion and signature-help queries over their declarations.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		errorHandled = false
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		return setupColor(flagColor)
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "settings file (default: pawndex.toml found upward from the target)")
	rootCmd.PersistentFlags().StringVar(&flagBaseAPI, "base-api", "", "base API include directory (overrides base_api)")
	rootCmd.PersistentFlags().StringSliceVar(&flagInclude, "include", nil, "extra system include directory (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto", "colorize text output (auto|on|off)")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(signatureCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(dependentsCmd)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func setupColor(mode string) error {
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid color mode %q: must be auto, on or off", mode)
	}
	return nil
}

// newLogger builds the stderr logger: warnings by default, everything with
// --verbose.
func newLogger() (*zap.Logger, error) {
	level := zap.WarnLevel
	if flagVerbose {
		level = zap.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	return cfg.Build()
}

// loadConfig reads the settings for startDir and applies flag overrides.
func loadConfig(startDir string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
	} else {
		cfg, err = config.Discover(startDir)
	}
	if err != nil {
		return nil, err
	}
	if flagBaseAPI != "" {
		abs, err := filepath.Abs(flagBaseAPI)
		if err != nil {
			return nil, fmt.Errorf("resolving --base-api: %w", err)
		}
		cfg.BaseAPI = abs
	}
	for _, dir := range flagInclude {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolving --include %q: %w", dir, err)
		}
		cfg.IncludeDirs = append(cfg.IncludeDirs, abs)
	}
	return cfg, nil
}

// workspaceRoot is the directory holding the settings file, or fallback when
// the defaults are in use.
func workspaceRoot(cfg *config.Config, fallback string) string {
	if cfg.Path != "" {
		return filepath.Dir(cfg.Path)
	}
	return fallback
}

// newEngine creates an engine configured by cfg. When root is not empty the
// base API and root are indexed before it is returned.
func newEngine(ctx context.Context, cfg *config.Config, root string) (*pawndex.Engine, error) {
	log, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	e := pawndex.New(
		pawndex.WithLogger(log),
		pawndex.WithIncludeDirs(cfg.IncludeDirs...),
		pawndex.WithExclude(cfg.Exclude...),
		pawndex.WithMaxFileSize(cfg.MaxFileSize),
		pawndex.WithParallelism(cfg.Parallelism),
	)
	if root == "" {
		return e, nil
	}
	if cfg.BaseAPI != "" {
		if err := e.SetBaseAPI(ctx, cfg.BaseAPI); err != nil {
			return nil, fmt.Errorf("indexing base API: %w", err)
		}
	}
	if err := e.IndexDirectory(ctx, root); err != nil {
		return nil, fmt.Errorf("indexing %s: %w", root, err)
	}
	return e, nil
}

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a workspace and report what was found",
	Long:  "Scans every .sp and .inc file under path (default: current directory) together with the base API, and prints a summary of the declarations found.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError(cmd, "index", err)
	}
	cfg, err := loadConfig(targetDir)
	if err != nil {
		return outputError(cmd, "index", err)
	}
	e, err := newEngine(cmd.Context(), cfg, targetDir)
	if err != nil {
		return outputError(cmd, "index", err)
	}

	summary := CLIIndexSummary{
		Root:        targetDir,
		BaseAPI:     e.BaseAPI(),
		SearchDirs:  cfg.SearchDirs(),
		Files:       len(e.Files()),
		BaseFiles:   len(e.BaseFiles()),
		Kinds:       map[string]int{},
		DurationMS:  time.Since(start).Milliseconds(),
		ConfigFile:  cfg.Path,
		ExcludeRule: cfg.Exclude,
	}
	for _, p := range append(e.Files(), e.BaseFiles()...) {
		for kind, n := range e.File(p).CountByKind() {
			summary.Kinds[string(kind)] += n
			summary.Declarations += n
		}
	}

	fmt.Fprintf(os.Stderr, "Indexed %s in %s\n", targetDir, time.Since(start).Round(time.Millisecond))
	return outputResult(cmd, CLIResult{Command: "index", Results: summary})
}

var flagExportAs string

var exportCmd = &cobra.Command{
	Use:   "export <output> [path]",
	Short: "Write a snapshot of the index to SQLite or msgpack",
	Long:  "Indexes path (default: current directory) and the base API, then writes every table to output. The format follows --as, or the output extension (.db, .sqlite and .sqlite3 select SQLite).",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportAs, "as", "", "snapshot format: sqlite|msgpack")
}

func runExport(cmd *cobra.Command, args []string) error {
	out, err := filepath.Abs(args[0])
	if err != nil {
		return outputError(cmd, "export", err)
	}
	as, err := exportFormat(flagExportAs, out)
	if err != nil {
		return outputError(cmd, "export", err)
	}
	targetDir, err := resolveTargetDir(args[1:])
	if err != nil {
		return outputError(cmd, "export", err)
	}
	cfg, err := loadConfig(targetDir)
	if err != nil {
		return outputError(cmd, "export", err)
	}
	e, err := newEngine(cmd.Context(), cfg, targetDir)
	if err != nil {
		return outputError(cmd, "export", err)
	}

	switch as {
	case "sqlite":
		err = e.ExportSQLite(cmd.Context(), out)
	default:
		err = e.ExportMsgpack(out)
	}
	if err != nil {
		return outputError(cmd, "export", err)
	}
	return outputResult(cmd, CLIResult{Command: "export", Results: CLIExport{
		Output: out,
		Format: as,
		Files:  len(e.Files()) + len(e.BaseFiles()),
	}})
}

// exportFormat picks the snapshot format from --as or the output extension.
func exportFormat(as, out string) (string, error) {
	switch as {
	case "sqlite", "msgpack":
		return as, nil
	case "":
	default:
		return "", fmt.Errorf("invalid export format %q: must be sqlite or msgpack", as)
	}
	switch strings.ToLower(filepath.Ext(out)) {
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite", nil
	}
	return "msgpack", nil
}

// resolveTargetDir returns the absolute path of the directory to index.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}
