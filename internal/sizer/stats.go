package sizer

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Summary holds aggregate statistics for a completed scan.
type Summary struct {
	// Root is the absolute directory that was scanned.
	Root string
	// FileCount is the total number of regular files found.
	FileCount int64
	// TotalBytes is the cumulative size of all files found.
	TotalBytes uint64
	// Skipped is the number of entries ignored because they were not regular files.
	Skipped int64
	// Elapsed is the total time taken for the scan.
	Elapsed time.Duration
}

// Options configures a scan.
type Options struct {
	// Path is the directory to scan.
	Path string
	// TopN is the capacity of the ranking.
	TopN int
	// Extensions are file suffixes to include (e.g. ".go"); a "!" prefix
	// excludes the suffix instead. Empty includes every file.
	Extensions []string
	// MinSize is the minimum file size in bytes (0 = no minimum).
	MinSize uint64
	// Excludes contains regex patterns matched against slash-separated paths.
	Excludes []string
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Logger receives debug output. Nil disables logging.
	Logger *zap.SugaredLogger
}

func (o Options) logger() *zap.SugaredLogger {
	if o.Logger == nil {
		return zap.NewNop().Sugar()
	}

	return o.Logger
}

// collector accumulates entries found during a walk. The walk itself is
// sequential, but the progress reporter reads the counters from its own
// goroutine, hence the mutex.
type collector struct {
	mu         sync.Mutex
	entries    []FileEntry
	fileCount  int64
	totalBytes uint64
	skipped    int64
}

// newCollector creates an empty collector.
func newCollector() *collector {
	return &collector{entries: make([]FileEntry, 0)}
}

// add records a regular file.
func (c *collector) add(path string, size uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fileCount++
	c.totalBytes += size
	c.entries = append(c.entries, FileEntry{Path: path, Size: size})
}

// skip counts an entry that was neither a regular file nor a directory.
func (c *collector) skip() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.skipped++
}

// counts returns the running file and byte counters.
func (c *collector) counts() (int64, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fileCount, c.totalBytes
}

// finalize ranks the collected entries and produces the scan summary.
func (c *collector) finalize(root string, topN int) (Ranked, *Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Select(c.entries, topN), &Summary{
		Root:       root,
		FileCount:  c.fileCount,
		TotalBytes: c.totalBytes,
		Skipped:    c.skipped,
	}
}
