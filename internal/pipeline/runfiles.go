package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel file runs.
const DefaultConcurrency = 4

// FileResult pairs one input file with its run outcome. Err is set when
// that file's run failed; other files still complete.
type FileResult struct {
	Path   string
	Result *Result
	Err    error
}

// RunFiles analyzes several files concurrently, each as an independent
// run. The shared input supplies everything except Path and OutputDir;
// per-file artifacts land in a subdirectory named after the file. The
// returned slice is ordered like paths. The error is the first run
// failure, after all files finished.
func (p *Pipeline) RunFiles(ctx context.Context, paths []string, shared Input, concurrency int) ([]FileResult, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]FileResult, len(paths))
	var mu sync.Mutex

	// No WithContext: one bad file must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			in := shared
			in.Path = path
			in.Grid = nil
			if shared.OutputDir != "" {
				in.OutputDir = filepath.Join(shared.OutputDir, baseName(path))
			}

			res, err := p.Run(ctx, in)
			mu.Lock()
			results[i] = FileResult{Path: path, Result: res, Err: err}
			mu.Unlock()
			if err != nil {
				p.logger.Error("file run failed",
					slog.String("path", path),
					slog.String("error", err.Error()))
			}
			return err
		})
	}

	err := g.Wait()
	return results, err
}

// baseName strips the directory and extension from a path for use as an
// output subdirectory.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
