// FileCache reads component sources through memory-mapped files.
//
// **Lifecycle:**
//   - One cache per walk: files are mapped on first access
//   - Release unmaps a single file once it has been analysed
//   - Close unmaps whatever is still mapped
//
// **Safety Features:**
//   - Optional MaxFiles limit (prevents file descriptor exhaustion)
//   - Optional MaxMemoryMB limit (prevents runaway virtual memory usage)
//   - Graceful fallback to os.ReadFile if mmap fails
package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// ErrCacheLimit is returned by Get when loading another file would exceed
// the configured limits.
var ErrCacheLimit = errors.New("file cache limit reached")

// FileCache provides mmap-backed read access to source files.
//
// Thread-safe: methods may be called from multiple goroutines.
type FileCache interface {
	// Get returns the mapped file, loading it on first access.
	Get(filePath string) (*MappedFile, error)

	// Release unmaps one file. Releasing an unknown path is a no-op.
	Release(filePath string) error

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close unmaps all files and releases resources.
	Close() error
}

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles is the maximum number of files mapped at once. 0 = unlimited.
	MaxFiles int

	// MaxMemoryMB caps the mapped virtual memory. 0 = unlimited.
	MaxMemoryMB int

	// Logger for mmap fallbacks. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns limits suited to walking a front-end
// source tree one file at a time.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles:    1024,
		MaxMemoryMB: 512,
	}
}

// MappedFile represents a memory-mapped file.
type MappedFile struct {
	Path string

	// Data is the mapped region, or the bytes read by the fallback path.
	// Nil for empty files.
	Data []byte

	Size int64

	mapping mmap.MMap
	file    *os.File
}

func (mf *MappedFile) close() error {
	var err error
	if mf.mapping != nil {
		err = mf.mapping.Unmap()
		mf.mapping = nil
	}
	if mf.file != nil {
		if cerr := mf.file.Close(); err == nil {
			err = cerr
		}
		mf.file = nil
	}
	mf.Data = nil
	return err
}

// FileCacheStats tracks cache metrics.
type FileCacheStats struct {
	FilesLoaded   int64
	FilesMapped   int
	CacheHits     int64
	MmapFailures  int64
	TotalMappedMB float64
}

// NewFileCache creates a new FileCache with the given config.
//
// If config is nil, uses DefaultFileCacheConfig().
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &fileCache{
		config: config,
		logger: logger,
		files:  make(map[string]*MappedFile),
	}
}

type fileCache struct {
	config *FileCacheConfig
	logger *slog.Logger

	mu          sync.Mutex
	files       map[string]*MappedFile
	mappedBytes int64
	stats       FileCacheStats
}

func (fc *fileCache) Get(filePath string) (*MappedFile, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if mf, ok := fc.files[filePath]; ok {
		fc.stats.CacheHits++
		return mf, nil
	}

	if fc.config.MaxFiles > 0 && len(fc.files) >= fc.config.MaxFiles {
		return nil, fmt.Errorf("%w: %d files mapped (limit %d)", ErrCacheLimit, len(fc.files), fc.config.MaxFiles)
	}

	mf, err := fc.load(filePath)
	if err != nil {
		return nil, err
	}

	fc.files[filePath] = mf
	fc.mappedBytes += mf.Size
	fc.stats.FilesLoaded++
	return mf, nil
}

// load opens and maps a file. Must be called while holding mu.
func (fc *fileCache) load(filePath string) (*MappedFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", filePath, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat %q: %w", filePath, err)
	}
	if !stat.Mode().IsRegular() {
		file.Close()
		return nil, fmt.Errorf("%q is not a regular file", filePath)
	}

	if limit := int64(fc.config.MaxMemoryMB) << 20; limit > 0 && fc.mappedBytes+stat.Size() > limit {
		file.Close()
		return nil, fmt.Errorf("%w: mapping %q would exceed %d MB", ErrCacheLimit, filePath, fc.config.MaxMemoryMB)
	}

	// mmap rejects zero-length regions.
	if stat.Size() == 0 {
		file.Close()
		return &MappedFile{Path: filePath}, nil
	}

	mapping, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		fc.stats.MmapFailures++
		fc.logger.Warn("mmap failed, using fallback",
			"file", filePath,
			"size", stat.Size(),
			"error", err)
		file.Close()

		data, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("read %q: %w", filePath, readErr)
		}
		return &MappedFile{Path: filePath, Data: data, Size: int64(len(data))}, nil
	}

	return &MappedFile{
		Path:    filePath,
		Data:    mapping,
		Size:    stat.Size(),
		mapping: mapping,
		file:    file,
	}, nil
}

func (fc *fileCache) Release(filePath string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	mf, ok := fc.files[filePath]
	if !ok {
		return nil
	}
	delete(fc.files, filePath)
	fc.mappedBytes -= mf.Size
	return mf.close()
}

func (fc *fileCache) Stats() FileCacheStats {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	stats := fc.stats
	stats.FilesMapped = len(fc.files)
	stats.TotalMappedMB = float64(fc.mappedBytes) / (1024 * 1024)
	return stats
}

func (fc *fileCache) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for path, mf := range fc.files {
		if err := mf.close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", path, err))
		}
	}
	fc.files = make(map[string]*MappedFile)
	fc.mappedBytes = 0
	return errors.Join(errs...)
}
