// Package discover finds SourcePawn source and include files under a root.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Extensions are the file extensions that are indexed.
var Extensions = map[string]bool{
	".sp":  true,
	".inc": true,
}

var skipDirs = map[string]bool{
	"node_modules": true,
	"__pycache__":  true,
	"compiled":     true,
}

// IsSource reports whether path has an indexed extension.
func IsSource(path string) bool {
	return Extensions[strings.ToLower(filepath.Ext(path))]
}

// Files walks root and returns the absolute paths of every source file,
// sorted. Hidden files and directories are skipped, as are paths matched by
// root's .gitignore or by any of the gitignore-style exclude patterns.
// Entries that cannot be read are skipped; only a missing or unreadable root
// is an error.
func Files(root string, exclude []string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", abs)
	}

	gi := loadGitignore(abs)
	var ex *ignore.GitIgnore
	if len(exclude) > 0 {
		ex = ignore.CompileIgnoreLines(exclude...)
	}

	var paths []string
	err = filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == abs {
				return err
			}
			return nil
		}
		if path == abs {
			return nil
		}

		name := d.Name()
		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if strings.HasPrefix(name, ".") || skipDirs[name] || ignored(gi, ex, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if !IsSource(name) || ignored(gi, ex, rel) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

func ignored(gi, ex *ignore.GitIgnore, rel string) bool {
	return (gi != nil && gi.MatchesPath(rel)) || (ex != nil && ex.MatchesPath(rel))
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
