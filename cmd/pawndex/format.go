package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var (
	labelColor  = color.New(color.FgYellow, color.Bold).SprintFunc()
	activeColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	pathColor   = color.New(color.FgBlue).SprintFunc()
	dimColor    = color.New(color.Faint).SprintFunc()
)

// kindColors are single-code attributes so colored cells keep the same
// escape length and tabwriter columns stay aligned.
var kindColors = map[string]*color.Color{
	"define":    color.New(color.FgMagenta),
	"function":  color.New(color.FgCyan),
	"method":    color.New(color.FgCyan),
	"methodmap": color.New(color.FgYellow),
	"property":  color.New(color.FgGreen),
	"variable":  color.New(color.FgBlue),
}

func colorKind(kind string) string {
	if c, ok := kindColors[kind]; ok {
		return c.Sprint(kind)
	}
	return kind
}

// descriptionWidth is the room left for the description column, or 0 when
// stdout is not a terminal and nothing is truncated.
var descriptionWidth = func() int {
	if !isTerminal(os.Stdout) {
		return 0
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 0
	}
	return max(w/3, 20)
}

// truncate shortens value to width display cells, marking the cut with "...".
// A width of 0 or less leaves value unchanged.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

// firstLine returns the first line of a multi-line description.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// formatDeclarationsText formats declarations as aligned columns.
func formatDeclarationsText(w io.Writer, decls []CLIDeclaration) {
	width := descriptionWidth()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tKIND\tNAME\tDETAIL\tDESCRIPTION")
	for _, d := range decls {
		name := d.Name
		if d.Owner != "" {
			name = d.Owner + "." + d.Name
		}
		detail := d.Signature
		if detail == "" {
			detail = d.Type
		}
		if d.Parent != "" {
			detail = "< " + d.Parent
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			d.Line, colorKind(d.Kind), name, detail, truncate(firstLine(d.Description), width))
	}
	tw.Flush()
}

// formatSignatureText formats signature help as readable text.
func formatSignatureText(w io.Writer, sig *CLISignature) {
	fmt.Fprintln(w, labelColor(sig.Label))
	fmt.Fprintf(w, "%s\n", pathColor(fmt.Sprintf("%s:%d", sig.File, sig.Line)))
	if sig.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sig.Description)
	}
	if len(sig.Parameters) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Parameters:")
		for i, p := range sig.Parameters {
			marker, label := "  ", p.Label
			if i == sig.ActiveParameter {
				marker, label = "> ", activeColor(p.Label)
			}
			if p.Documentation != "" {
				fmt.Fprintf(w, "%s%s  %s\n", marker, label, dimColor(p.Documentation))
			} else {
				fmt.Fprintf(w, "%s%s\n", marker, label)
			}
		}
	}
	if sig.Returns != "" {
		fmt.Fprintf(w, "\nReturns: %s\n", sig.Returns)
	}
	if sig.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", sig.Error)
	}
}

// formatImportsText formats include edges as aligned columns.
func formatImportsText(w io.Writer, imports []CLIImport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INCLUDE\tLOCAL\tRESOLVED")
	for _, imp := range imports {
		resolved := imp.Resolved
		if resolved == "" {
			resolved = dimColor("(unresolved)")
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\n", imp.Name, imp.Local, resolved)
	}
	tw.Flush()
}

// formatPathsText prints one path per line.
func formatPathsText(w io.Writer, paths []string) {
	for _, p := range paths {
		fmt.Fprintln(w, p)
	}
}

// formatIndexSummaryText formats CLIIndexSummary as readable text.
func formatIndexSummaryText(w io.Writer, s CLIIndexSummary) {
	fmt.Fprintln(w, "Index Summary")
	fmt.Fprintln(w, "=============")
	fmt.Fprintf(w, "Root: %s\n", s.Root)
	if s.ConfigFile != "" {
		fmt.Fprintf(w, "Config: %s\n", s.ConfigFile)
	}
	if s.BaseAPI != "" {
		fmt.Fprintf(w, "Base API: %s\n", s.BaseAPI)
	}
	fmt.Fprintf(w, "Files: %d (+%d base)\n", s.Files, s.BaseFiles)
	fmt.Fprintf(w, "Declarations: %d\n", s.Declarations)

	if len(s.Kinds) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Declaration Kinds:")
		kinds := make([]string, 0, len(s.Kinds))
		for kind := range s.Kinds {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(w, "  %s: %d\n", colorKind(kind), s.Kinds[kind])
		}
	}
}

// formatExportText reports a written snapshot.
func formatExportText(w io.Writer, x CLIExport) {
	fmt.Fprintf(w, "Wrote %d files to %s (%s)\n", x.Files, pathColor(x.Output), x.Format)
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIDeclaration:
		formatDeclarationsText(w, v)
	case *CLISignature:
		if v == nil {
			fmt.Fprintln(w, dimColor("No signature at cursor."))
			return nil
		}
		formatSignatureText(w, v)
	case []CLIImport:
		formatImportsText(w, v)
	case []string:
		formatPathsText(w, v)
	case CLIIndexSummary:
		formatIndexSummaryText(w, v)
	case CLIExport:
		formatExportText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	// Pagination footer.
	if result.TotalCount != nil {
		count := *result.TotalCount
		shown := resultLen(result.Results)
		if shown < count {
			fmt.Fprintf(w, "\nShowing %d of %d results\n", shown, count)
		}
	}
	return nil
}

// resultLen returns the length of a result slice, or 1 for a single value.
func resultLen(v any) int {
	switch r := v.(type) {
	case []CLIDeclaration:
		return len(r)
	case []CLIImport:
		return len(r)
	case []string:
		return len(r)
	case nil:
		return 0
	default:
		return 1
	}
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
