package main

// CLIResult is the top-level JSON envelope for every command.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIIndexSummary describes one indexing run.
type CLIIndexSummary struct {
	Root         string         `json:"root"`
	ConfigFile   string         `json:"config_file,omitempty"`
	BaseAPI      string         `json:"base_api,omitempty"`
	SearchDirs   []string       `json:"search_dirs,omitempty"`
	ExcludeRule  []string       `json:"exclude,omitempty"`
	Files        int            `json:"files"`
	BaseFiles    int            `json:"base_files"`
	Declarations int            `json:"declarations"`
	Kinds        map[string]int `json:"kinds"`
	DurationMS   int64          `json:"duration_ms"`
}

// CLIExport reports where a snapshot was written.
type CLIExport struct {
	Output string `json:"output"`
	Format string `json:"format"`
	Files  int    `json:"files"`
}

// CLIDeclaration is a JSON-friendly declaration.
type CLIDeclaration struct {
	Name        string         `json:"name"`
	Kind        string         `json:"kind"`
	Owner       string         `json:"owner,omitempty"`
	Parent      string         `json:"parent,omitempty"`
	Type        string         `json:"type,omitempty"`
	Signature   string         `json:"signature,omitempty"`
	Description string         `json:"description,omitempty"`
	File        string         `json:"file,omitempty"`
	Line        int            `json:"line"`
	Parameters  []CLIParameter `json:"parameters,omitempty"`
}

// CLIParameter is one documented parameter.
type CLIParameter struct {
	Label         string `json:"label"`
	Documentation string `json:"documentation,omitempty"`
}

// CLISignature is signature help for the call at a cursor.
type CLISignature struct {
	Label           string         `json:"label"`
	Kind            string         `json:"kind"`
	Owner           string         `json:"owner,omitempty"`
	Description     string         `json:"description,omitempty"`
	Returns         string         `json:"returns,omitempty"`
	Error           string         `json:"error,omitempty"`
	Parameters      []CLIParameter `json:"parameters"`
	ActiveParameter int            `json:"active_parameter"`
	File            string         `json:"file"`
	Line            int            `json:"line"`
}

// CLIImport is an #include edge of a file.
type CLIImport struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Local    bool   `json:"local"`
	Resolved string `json:"resolved,omitempty"`
}
