package scanner

import "regexp"

var (
	defineRe        = regexp.MustCompile(`^\s*#define\s+([A-Za-z0-9_]+)(.*)$`)
	includeSystemRe = regexp.MustCompile(`^\s*#(?:try)?include\s+<([^>]+)>`)
	includeLocalRe  = regexp.MustCompile(`^\s*#(?:try)?include\s+"([^"]+)"`)
	methodmapRe     = regexp.MustCompile(`^\s*methodmap\s+([A-Za-z_][A-Za-z0-9_]*)(?:\s+__nullable__)?(?:\s*<\s*([A-Za-z_][A-Za-z0-9_]*))?`)
	propertyRe      = regexp.MustCompile(`^\s*property\s+([A-Za-z_][A-Za-z0-9_]*(?:\s*\[\s*\])*)\s+([A-Za-z_][A-Za-z0-9_]*)`)

	// Function heads, matched against the text before the opening parenthesis
	// once leading modifiers are removed.
	oldStyleHeadRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*:\s*([A-Za-z_][A-Za-z0-9_]*)$`)
	newStyleHeadRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*(?:\s*\[\s*\])*)\s+([A-Za-z_][A-Za-z0-9_]*)$`)
	bareHeadRe     = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)$`)

	// Variable declarations, matched after modifiers are removed.
	oldStyleVarRe = regexp.MustCompile(`^(?:([A-Za-z_][A-Za-z0-9_]*)\s*:\s*)?([A-Za-z_][A-Za-z0-9_]*)\s*(?:$|[;=\[,])`)
	taggedVarRe   = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*:\s*([A-Za-z_][A-Za-z0-9_]*)\s*(?:$|[;=\[,])`)
	newStyleVarRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*(?:\s*\[\s*\])*)\s+([A-Za-z_][A-Za-z0-9_]*)\s*(?:$|[;=\[,])`)
)

// modifiers may precede a function or variable declaration.
var modifiers = map[string]bool{
	"public":  true,
	"native":  true,
	"stock":   true,
	"static":  true,
	"forward": true,
	"const":   true,
}

// keywords can never be a declared type or name.
var keywords = map[string]bool{
	"return":    true,
	"else":      true,
	"case":      true,
	"delete":    true,
	"enum":      true,
	"if":        true,
	"while":     true,
	"for":       true,
	"do":        true,
	"switch":    true,
	"break":     true,
	"continue":  true,
	"default":   true,
	"goto":      true,
	"sizeof":    true,
	"typedef":   true,
	"typeset":   true,
	"funcenum":  true,
	"functag":   true,
	"struct":    true,
	"using":     true,
	"methodmap": true,
	"property":  true,
	"new":       true,
	"decl":      true,
	"view_as":   true,
	"operator":  true,
	"this":      true,
	"true":      true,
	"false":     true,
	"null":      true,
	"public":    true,
	"native":    true,
	"stock":     true,
	"static":    true,
	"forward":   true,
	"const":     true,
}
