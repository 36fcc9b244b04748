package walker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/rendermap/pkg/analyzer"
	"github.com/gnana997/rendermap/pkg/util"
)

const defaultCacheSize = 4096

// cachedAnalysis is the analysis of one file, valid while the file keeps
// the same size and modification time.
type cachedAnalysis struct {
	size      int64
	modTime   time.Time
	usage     *analyzer.Usage
	component bool
}

// Walker scans source trees. It keeps an LRU of per-file analyses so
// repeated walks over the same tree (watch mode, the MCP server) only
// re-read files that changed.
//
// A Walker is not safe for concurrent Walk calls.
type Walker struct {
	opts     Options
	log      *slog.Logger
	analyses *lru.Cache[string, cachedAnalysis]
	cacheCfg *util.FileCacheConfig
}

// NewWalker validates opts and creates a walker.
func NewWalker(opts Options, logger *slog.Logger) (*Walker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Include) == 0 {
		opts.Include = DefaultOptions().Include
	}
	if err := ValidatePatterns(opts); err != nil {
		return nil, err
	}

	analyses, err := lru.New[string, cachedAnalysis](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create analysis cache: %w", err)
	}

	cacheCfg := util.DefaultFileCacheConfig()
	cacheCfg.Logger = logger

	return &Walker{
		opts:     opts,
		log:      logger,
		analyses: analyses,
		cacheCfg: cacheCfg,
	}, nil
}

// Options returns the discovery options in use.
func (w *Walker) Options() Options {
	return w.opts
}

// Invalidate drops the cached analysis for a file.
func (w *Walker) Invalidate(absPath string) {
	w.analyses.Remove(absPath)
}

// Walk discovers and analyses every qualifying file under root.
//
// Files that cannot be read are recorded in Collection.Skipped and the walk
// continues. When two files share an identifier the one later in path order
// wins and the replacement is recorded in Collection.Collisions.
func (w *Walker) Walk(ctx context.Context, root string) (*Collection, error) {
	absRoot, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}

	coll := &Collection{
		Root:    absRoot,
		Records: make(map[string]*analyzer.ComponentRecord),
	}

	discoveryStart := time.Now()
	files, err := DiscoverFiles(absRoot, w.opts, w.log)
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}
	coll.Stats.FilesDiscovered = len(files)
	coll.Stats.DiscoveryTimeMs = time.Since(discoveryStart).Milliseconds()

	w.log.Debug("discovery complete", "root", absRoot, "files", len(files), "ms", coll.Stats.DiscoveryTimeMs)

	fc := util.NewFileCache(w.cacheCfg)
	defer fc.Close()

	analysisStart := time.Now()
	results, err := w.analyzeAll(ctx, fc, files)
	if err != nil {
		return nil, err
	}

	// Merge sequentially in path order so collisions resolve the same way
	// on every walk.
	for i, f := range files {
		r := results[i]
		if r.err != nil {
			coll.Skipped = append(coll.Skipped, FileError{Path: f.Rel, Err: r.err})
			coll.Stats.FilesSkipped++
			w.log.Warn("skipping unreadable file", "path", f.Rel, "error", r.err)
			continue
		}
		coll.Stats.FilesAnalyzed++
		if r.hit {
			coll.Stats.CacheHits++
		}
		if !r.component {
			continue
		}

		rec := analyzer.NewRecord(f.Rel, r.usage)
		if prev, exists := coll.Records[rec.Identifier]; exists {
			coll.Collisions = append(coll.Collisions, Collision{
				Identifier: rec.Identifier,
				Kept:       rec.Path,
				Shadowed:   prev.Path,
			})
			w.log.Warn("component identifier collision",
				"identifier", rec.Identifier,
				"kept", rec.Path,
				"shadowed", prev.Path)
		}
		coll.Records[rec.Identifier] = rec
	}
	coll.Stats.AnalysisTimeMs = time.Since(analysisStart).Milliseconds()
	coll.Stats.Components = len(coll.Records)

	w.log.Info("walk complete",
		"root", absRoot,
		"files", coll.Stats.FilesDiscovered,
		"components", coll.Stats.Components,
		"skipped", coll.Stats.FilesSkipped,
		"cache_hits", coll.Stats.CacheHits)

	return coll, nil
}

func (w *Walker) analyzeFile(fc util.FileCache, absPath string) (*analyzer.Usage, bool, bool, error) {
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, false, false, err
	}

	if cached, ok := w.analyses.Get(absPath); ok &&
		cached.size == info.Size() && cached.modTime.Equal(info.ModTime()) {
		return cached.usage, cached.component, true, nil
	}

	mf, err := fc.Get(absPath)
	if err != nil {
		return nil, false, false, err
	}
	usage, isComponent := analyzer.Analyze(mf.Data)
	if err := fc.Release(absPath); err != nil {
		w.log.Debug("release failed", "path", absPath, "error", err)
	}

	w.analyses.Add(absPath, cachedAnalysis{
		size:      info.Size(),
		modTime:   info.ModTime(),
		usage:     usage,
		component: isComponent,
	})
	return usage, isComponent, false, nil
}

func resolveRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}
	return absRoot, nil
}
