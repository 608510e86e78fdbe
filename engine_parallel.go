package pawndex

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jward/pawndex/internal/source"
	"github.com/jward/pawndex/internal/symbols"
)

// parseAll reads and scans paths with at most e.parallelism files in flight.
// Files that fail to read are logged and left out of the result; only
// cancellation of ctx fails the whole batch. The result keeps the order of
// paths.
func (e *Engine) parseAll(ctx context.Context, paths []string) ([]*symbols.FileCompletions, error) {
	results := make([]*symbols.FileCompletions, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.parallelism, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			abs, err := absPath(path)
			if err != nil {
				e.log.Warn("skip file", zap.String("path", path), zap.Error(err))
				return nil
			}
			fc, err := e.parse(abs)
			if err != nil {
				e.skipped(abs, err)
				return nil
			}
			results[i] = fc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := results[:0]
	for _, fc := range results {
		if fc != nil {
			out = append(out, fc)
		}
	}
	return out, nil
}

func (e *Engine) skipped(path string, err error) {
	switch {
	case errors.Is(err, source.ErrTooLarge):
		e.log.Info("skip oversized file", zap.String("path", path), zap.Error(err))
	case errors.Is(err, os.ErrNotExist):
		e.log.Debug("skip vanished file", zap.String("path", path))
	default:
		e.log.Warn("skip unreadable file", zap.String("path", path), zap.Error(err))
	}
}
