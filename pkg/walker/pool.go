package walker

import (
	"context"
	"runtime"
	"sync"

	"github.com/gnana997/rendermap/pkg/analyzer"
	"github.com/gnana997/rendermap/pkg/util"
)

const (
	minWorkers = 4
	maxWorkers = 32
)

// fileResult is the outcome of analysing files[i].
type fileResult struct {
	usage     *analyzer.Usage
	component bool
	hit       bool
	err       error
}

// poolSize returns the worker count for n jobs: the override when set,
// otherwise twice the CPU count clamped to [minWorkers, maxWorkers]. It
// never exceeds n.
func poolSize(override, n int) int {
	size := override
	if size <= 0 {
		size = runtime.NumCPU() * 2
		if size < minWorkers {
			size = minWorkers
		}
		if size > maxWorkers {
			size = maxWorkers
		}
	}
	if size > n {
		size = n
	}
	return size
}

// analyzeAll analyses files on a pool of goroutines. Results are indexed
// like files. Per-file failures are reported in the result; the only error
// returned is ctx's.
func (w *Walker) analyzeAll(ctx context.Context, fc util.FileCache, files []SourceFile) ([]fileResult, error) {
	results := make([]fileResult, len(files))
	if len(files) == 0 {
		return results, ctx.Err()
	}

	numWorkers := poolSize(w.opts.Workers, len(files))
	jobs := make(chan int, numWorkers*2)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					continue
				}
				var r fileResult
				r.usage, r.component, r.hit, r.err = w.analyzeFile(fc, files[idx].Abs)
				results[idx] = r
			}
		}()
	}

	w.log.Debug("analysing files", "files", len(files), "workers", numWorkers)

submit:
	for i := range files {
		select {
		case <-ctx.Done():
			break submit
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
