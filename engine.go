package pawndex

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/jward/pawndex/internal/discover"
	"github.com/jward/pawndex/internal/scanner"
	"github.com/jward/pawndex/internal/source"
	"github.com/jward/pawndex/internal/symbols"
)

// ErrNoBaseAPI is returned by Refresh when no base-API root was configured.
var ErrNoBaseAPI = errors.New("pawndex: no base API root configured")

// Engine is the repository of parsed files. It owns one symbol table per
// file, keyed by absolute path, plus the tables of the base-API tree, and
// answers completion and signature queries over them.
//
// Tables are immutable once published. Every write builds a new index and
// swaps it in atomically, so a query sees either the index before a write or
// the one after it. Writers are serialized; the last write to complete wins.
type Engine struct {
	log         *zap.Logger
	includeDirs []string
	exclude     []string
	maxFileSize int64
	parallelism int

	mu  sync.Mutex // serializes writers
	idx atomic.Pointer[index]
}

// index is one published state of the repository.
type index struct {
	files    map[string]*symbols.FileCompletions
	base     map[string]*symbols.FileCompletions
	baseRoot string
}

// table returns the table for path, preferring workspace files over the
// base-API tree.
func (x *index) table(path string) *symbols.FileCompletions {
	if fc, ok := x.files[path]; ok {
		return fc
	}
	return x.base[path]
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for skipped files and indexing progress.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithIncludeDirs adds directories searched for system includes, ahead of
// the base-API root.
func WithIncludeDirs(dirs ...string) Option {
	return func(e *Engine) {
		for _, d := range dirs {
			if d == "" {
				continue
			}
			if abs, err := filepath.Abs(d); err == nil {
				d = abs
			}
			e.includeDirs = append(e.includeDirs, d)
		}
	}
}

// WithParallelism bounds the number of files parsed at once by bulk indexing.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// WithMaxFileSize sets the size above which files are skipped.
func WithMaxFileSize(n int64) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxFileSize = n
		}
	}
}

// WithExclude sets gitignore-style patterns skipped by directory indexing.
func WithExclude(patterns ...string) Option {
	return func(e *Engine) {
		e.exclude = append(e.exclude, patterns...)
	}
}

// New creates an empty Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:         zap.NewNop(),
		maxFileSize: source.DefaultMaxSize,
		parallelism: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.idx.Store(&index{
		files: map[string]*symbols.FileCompletions{},
		base:  map[string]*symbols.FileCompletions{},
	})
	return e
}

func (e *Engine) current() *index {
	return e.idx.Load()
}

// update publishes the index produced by fn from a copy of the current one.
func (e *Engine) update(fn func(next *index)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.current()
	next := &index{
		files:    make(map[string]*symbols.FileCompletions, len(cur.files)),
		base:     cur.base,
		baseRoot: cur.baseRoot,
	}
	for k, v := range cur.files {
		next.files[k] = v
	}
	fn(next)
	e.idx.Store(next)
}

// searchDirs lists where system includes are looked up.
func (e *Engine) searchDirs(x *index) []string {
	dirs := append([]string(nil), e.includeDirs...)
	if x.baseRoot != "" {
		dirs = append(dirs, x.baseRoot)
	}
	return dirs
}

func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

// ParseText scans text as the content of path and publishes the resulting
// table, replacing any earlier one. It is used for unsaved editor buffers.
func (e *Engine) ParseText(path, text string) (*symbols.FileCompletions, error) {
	abs, err := absPath(path)
	if err != nil {
		return nil, err
	}
	fc := symbols.NewFileCompletions(abs)
	scanner.ScanText(text, fc)
	e.update(func(next *index) {
		next.files[abs] = fc
	})
	return fc, nil
}

// ParseFile reads and scans path, publishing the resulting table. When the
// file cannot be read the previous table, if any, is left in place and the
// error is returned. Unchanged content keeps the published table.
func (e *Engine) ParseFile(ctx context.Context, path string) (*symbols.FileCompletions, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := absPath(path)
	if err != nil {
		return nil, err
	}
	fc, err := e.parse(abs)
	if err != nil {
		return nil, err
	}
	e.update(func(next *index) {
		if old, ok := next.files[abs]; ok && old.Hash == fc.Hash {
			fc = old
			return
		}
		next.files[abs] = fc
	})
	return fc, nil
}

// parse reads and scans one file without publishing it.
func (e *Engine) parse(path string) (*symbols.FileCompletions, error) {
	src, err := source.Read(path, e.maxFileSize)
	if err != nil {
		return nil, err
	}
	fc := symbols.NewFileCompletions(path)
	fc.Hash = src.Hash
	scanner.ScanText(src.Text, fc)
	return fc, nil
}

// Open parses path and then every file reachable from it through local
// includes that the repository does not know yet. Includes that cannot be
// read are logged and skipped.
func (e *Engine) Open(ctx context.Context, path string) error {
	fc, err := e.ParseFile(ctx, path)
	if err != nil {
		return err
	}

	seen := map[string]bool{fc.Path: true}
	queue := []*symbols.FileCompletions{fc}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		cur := queue[0]
		queue = queue[1:]
		for _, imp := range cur.Imports() {
			if !imp.Local {
				continue
			}
			x := e.current()
			if target, ok := e.resolve(x, imp); ok {
				if !seen[target] {
					seen[target] = true
					queue = append(queue, x.table(target))
				}
				continue
			}
			found := false
			for _, cand := range imp.Candidates() {
				if seen[cand] {
					found = true
					break
				}
				next, err := e.ParseFile(ctx, cand)
				if err != nil {
					continue
				}
				seen[cand] = true
				queue = append(queue, next)
				found = true
				break
			}
			if !found {
				e.log.Debug("unresolved include",
					zap.String("path", cur.Path),
					zap.String("include", imp.Name))
			}
		}
	}
	return nil
}

// resolve finds the table an import refers to. It returns the path of the
// first candidate the index knows and whether one was found.
func (e *Engine) resolve(x *index, imp symbols.Import) (string, bool) {
	for _, cand := range imp.Candidates(e.searchDirs(x)...) {
		if x.table(cand) != nil {
			return cand, true
		}
	}
	return "", false
}

// Invalidate drops the table of path. Unknown paths are ignored.
func (e *Engine) Invalidate(path string) {
	abs, err := absPath(path)
	if err != nil {
		return
	}
	e.update(func(next *index) {
		delete(next.files, abs)
	})
}

// File returns the published table of path, or nil.
func (e *Engine) File(path string) *symbols.FileCompletions {
	abs, err := absPath(path)
	if err != nil {
		return nil
	}
	return e.current().table(abs)
}

// Files lists the paths of the workspace tables, sorted.
func (e *Engine) Files() []string {
	return sortedKeys(e.current().files)
}

// BaseFiles lists the paths of the base-API tables, sorted.
func (e *Engine) BaseFiles() []string {
	return sortedKeys(e.current().base)
}

// BaseAPI returns the configured base-API root, or "".
func (e *Engine) BaseAPI() string {
	return e.current().baseRoot
}

func sortedKeys(m map[string]*symbols.FileCompletions) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IndexDirectory parses every source file under root into the workspace,
// replacing earlier tables for those paths. Unreadable files are logged and
// skipped.
func (e *Engine) IndexDirectory(ctx context.Context, root string) error {
	paths, err := discover.Files(root, e.exclude)
	if err != nil {
		return err
	}
	return e.IndexFiles(ctx, paths)
}

// IndexFiles parses paths into the workspace in parallel and publishes them
// together once every file has settled.
func (e *Engine) IndexFiles(ctx context.Context, paths []string) error {
	tables, err := e.parseAll(ctx, paths)
	if err != nil {
		return err
	}
	e.update(func(next *index) {
		for _, fc := range tables {
			next.files[fc.Path] = fc
		}
	})
	e.log.Debug("indexed files", zap.Int("files", len(tables)), zap.Int("requested", len(paths)))
	return nil
}

// SetBaseAPI makes root the base-API tree and bulk-indexes it, replacing the
// previous base tables in one swap.
func (e *Engine) SetBaseAPI(ctx context.Context, root string) error {
	abs, err := absPath(root)
	if err != nil {
		return err
	}
	paths, err := discover.Files(abs, e.exclude)
	if err != nil {
		return fmt.Errorf("index base API: %w", err)
	}
	tables, err := e.parseAll(ctx, paths)
	if err != nil {
		return err
	}
	base := make(map[string]*symbols.FileCompletions, len(tables))
	for _, fc := range tables {
		base[fc.Path] = fc
	}
	e.update(func(next *index) {
		next.base = base
		next.baseRoot = abs
	})
	e.log.Info("indexed base API", zap.String("root", abs), zap.Int("files", len(base)))
	return nil
}

// Refresh re-parses the base-API tree in full.
func (e *Engine) Refresh(ctx context.Context) error {
	root := e.BaseAPI()
	if root == "" {
		return ErrNoBaseAPI
	}
	return e.SetBaseAPI(ctx, root)
}
