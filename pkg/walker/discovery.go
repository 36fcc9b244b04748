package walker

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// SourceFile is a discovered file.
type SourceFile struct {
	// Abs is the absolute path on disk.
	Abs string
	// Rel is slash-separated and relative to the root.
	Rel string
}

// ValidatePatterns checks the syntax of every include and exclude glob.
func ValidatePatterns(opts Options) error {
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range opts.Include {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}
	return nil
}

// DiscoverFiles walks absRoot applying the include/exclude globs from opts.
// The result is sorted by relative path so every walk visits files in the
// same order. Unreadable directories are logged and skipped.
func DiscoverFiles(absRoot string, opts Options, logger *slog.Logger) ([]SourceFile, error) {
	if err := ValidatePatterns(opts); err != nil {
		return nil, err
	}

	var files []SourceFile

	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("walk error", "path", path, "error", err)
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == "." {
			return nil
		}

		for _, pattern := range opts.Exclude {
			if matched, _ := doublestar.Match(pattern, relPath); matched {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			return nil
		}

		if !matchesAny(opts.Include, relPath) {
			return nil
		}

		files = append(files, SourceFile{Abs: path, Rel: relPath})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}

func matchesAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if m, _ := doublestar.Match(pattern, relPath); m {
			return true
		}
	}
	return false
}
