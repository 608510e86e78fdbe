package pawndex

import (
	"context"
	"fmt"
	"time"

	"github.com/jward/pawndex/internal/store"
	"github.com/jward/pawndex/internal/symbols"
)

// Snapshot copies the current index, workspace and base-API tables alike,
// with each include edge resolved against it. Files are sorted by path.
func (e *Engine) Snapshot() *store.Snapshot {
	x := e.current()
	resolve := func(imp symbols.Import) string {
		target, _ := e.resolve(x, imp)
		return target
	}

	snap := &store.Snapshot{
		Schema:    store.SchemaVersion,
		BaseAPI:   x.baseRoot,
		CreatedAt: time.Now().UTC(),
	}
	for _, p := range sortedKeys(x.files) {
		snap.Files = append(snap.Files, store.FromTable(x.files[p], false, resolve))
	}
	for _, p := range sortedKeys(x.base) {
		if _, ok := x.files[p]; ok {
			continue
		}
		snap.Files = append(snap.Files, store.FromTable(x.base[p], true, resolve))
	}
	return snap
}

// ExportSQLite writes the current index into the SQLite database at dbPath,
// replacing any snapshot already there.
func (e *Engine) ExportSQLite(ctx context.Context, dbPath string) error {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.Migrate(); err != nil {
		return err
	}
	if err := s.WriteSnapshot(ctx, e.Snapshot()); err != nil {
		return fmt.Errorf("export %s: %w", dbPath, err)
	}
	return nil
}

// ExportMsgpack writes the current index to path as a msgpack stream.
func (e *Engine) ExportMsgpack(path string) error {
	if err := store.WriteFile(path, e.Snapshot()); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
