package hwptext

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of extracting one file of a batch.
type FileResult struct {
	Path   string  `json:"path"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
}

// ExtractFiles extracts paths in parallel, at most Config.Concurrency at a
// time. Results are returned in input order. A failing file does not stop
// the others; only cancellation of ctx does.
func (e *Extractor) ExtractFiles(ctx context.Context, paths []string, keywords []string) []FileResult {
	return e.ExtractFilesAs(ctx, paths, "", keywords)
}

// ExtractFilesAs is ExtractFiles with every file forced to hint.
func (e *Extractor) ExtractFilesAs(ctx context.Context, paths []string, hint Format, keywords []string) []FileResult {
	out := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i, path := range paths {
		out[i].Path = path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			res, err := e.ExtractFileAs(gctx, path, hint, keywords)
			out[i].Result = res
			out[i].Err = err
			if err != nil {
				e.logger.Warn("extraction failed", "path", path, "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
