// Package config loads pawndex.toml project settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jward/pawndex/internal/source"
)

// FileName is the name of the settings file searched for by Find.
const FileName = "pawndex.toml"

var (
	ErrInvalidMaxFileSize = errors.New("max_file_size must be positive")
	ErrInvalidParallelism = errors.New("parallelism must be positive")
)

// Config holds the settings of one project. Paths are absolute once loaded.
type Config struct {
	// Path of the file the settings came from, empty for defaults.
	Path string `toml:"-"`

	BaseAPI     string   `toml:"base_api"`
	IncludeDirs []string `toml:"include_dirs"`
	Exclude     []string `toml:"exclude"`
	MaxFileSize int64    `toml:"max_file_size"`
	Parallelism int      `toml:"parallelism"`
}

// Default returns the settings used when no pawndex.toml exists.
func Default() *Config {
	return &Config{
		MaxFileSize: source.DefaultMaxSize,
		Parallelism: runtime.GOMAXPROCS(0),
	}
}

// Find walks up from startDir to locate pawndex.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes the settings file at path. Keys that are absent keep their
// defaults; relative directories are resolved against the file's directory.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: parse TOML: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	cfg.Path = abs
	dir := filepath.Dir(abs)

	if meta.IsDefined("max_file_size") && cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidMaxFileSize)
	}
	if meta.IsDefined("parallelism") && cfg.Parallelism <= 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidParallelism)
	}

	cfg.BaseAPI = resolve(dir, cfg.BaseAPI)
	dirs := cfg.IncludeDirs[:0]
	for _, d := range cfg.IncludeDirs {
		if d = resolve(dir, d); d != "" {
			dirs = append(dirs, d)
		}
	}
	cfg.IncludeDirs = dirs

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Discover loads the pawndex.toml found from startDir upward, or returns the
// defaults when there is none.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// SearchDirs lists the directories system includes are looked up in: the
// configured include directories followed by the base-API root.
func (c *Config) SearchDirs() []string {
	out := append([]string(nil), c.IncludeDirs...)
	if c.BaseAPI != "" {
		out = append(out, c.BaseAPI)
	}
	return out
}

func resolve(dir, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.FromSlash(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	return filepath.Clean(p)
}
