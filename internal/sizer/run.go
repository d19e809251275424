package sizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charlievieth/fastwalk"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

var errNotDir = errors.New("not a directory")

// statEntry returns the file info of a walked entry.
var statEntry = func(_ string, d fs.DirEntry) (fs.FileInfo, error) { return d.Info() }

// shouldExcludeByPattern checks if path matches any exclusion regex.
func shouldExcludeByPattern(path string, patterns []*regexp.Regexp) *regexp.Regexp {
	if len(patterns) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)

	for _, re := range patterns {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}

// shouldIncludeByExtension checks if file should be included based on extension filters.
// Returns true if file should be included, false if excluded.
func shouldIncludeByExtension(path string, include, exclude map[string]struct{}) bool {
	// Check excludes first
	for ext := range exclude {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	// If no include filter, include all
	if len(include) == 0 {
		return true
	}

	for ext := range include {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	return false
}

// splitExtensions separates include suffixes from "!"-prefixed exclude suffixes.
func splitExtensions(extensions []string) (map[string]struct{}, map[string]struct{}) {
	include := make(map[string]struct{}, len(extensions))
	exclude := make(map[string]struct{}, len(extensions))

	for _, e := range extensions { //nolint:varnamelen // e is standard for element in range
		e = strings.Trim(strings.TrimSpace(e), "'\"") // Strip quotes first

		if rest, ok := strings.CutPrefix(e, "!"); ok {
			if rest != "" {
				exclude[rest] = struct{}{}
			}

			continue
		}

		if e != "" {
			include[e] = struct{}{}
		}
	}

	return include, exclude
}

// compileExcludes compiles the exclusion patterns in order.
func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	excludes := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		excludes = append(excludes, re)
	}

	return excludes, nil
}

// resolveRoot makes path absolute and checks that it is an accessible directory.
func resolveRoot(path string) (string, error) {
	if path == "" {
		path = "."
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", NewPathError("resolve", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", NewPathError("stat", abs, err)
	}

	if !info.IsDir() {
		return "", NewPathError("open", abs, errNotDir)
	}

	// Resolve a symlinked root so walked paths are already canonical.
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", NewPathError("resolve", abs, err)
	}

	return resolved, nil
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
//
//nolint:varnamelen // c is idiomatic for collector
func startProgressReporter(ctx context.Context, c *collector, hook func(int64, uint64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.counts())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// walk feeds every regular file under root into c.
//
// A single fastwalk worker keeps the traversal sequential; fastwalk queues
// pending directories itself, so tree depth does not grow the call stack.
// The first I/O error aborts the walk.
func walk(ctx context.Context, root string, opt Options, c *collector) error {
	log := opt.logger()

	excludes, err := compileExcludes(opt.Excludes)
	if err != nil {
		return err
	}

	extInclude, extExclude := splitExtensions(opt.Extensions)

	conf := &fastwalk.Config{
		Follow:     false, // Symlinks are skipped, never followed
		NumWorkers: 1,
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debugw("walk aborted", "path", path, "error", err)

			return NewPathError("read", path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if path != root {
			if re := shouldExcludeByPattern(path, excludes); re != nil {
				log.Debugw("excluded", "path", path, "pattern", re.String())

				if d.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}
		}

		if d.IsDir() {
			return nil
		}

		if !d.Type().IsRegular() {
			log.Debugw("skipping non-regular entry", "path", path, "type", d.Type().String())
			c.skip()

			return nil
		}

		if !shouldIncludeByExtension(path, extInclude, extExclude) {
			log.Debugw("excluded by extension filter", "path", path)

			return nil
		}

		info, err := statEntry(path, d)
		if err != nil {
			return NewPathError("stat", path, err)
		}

		size := uint64(info.Size()) //nolint:gosec // Size of a regular file is never negative
		if size < opt.MinSize {
			return nil
		}

		c.add(path, size)

		return nil
	})

	var pathErr *PathError
	if walkErr == nil || errors.As(walkErr, &pathErr) || ctx.Err() != nil {
		return walkErr
	}

	return NewPathError("walk", root, walkErr)
}

// Walk returns every regular file beneath opt.Path, in discovery order.
// Paths are absolute. Symlinks and other non-regular entries are skipped.
// Any error listing a directory or statting an entry aborts the walk and
// no entries are returned.
func Walk(ctx context.Context, opt Options) ([]FileEntry, error) {
	root, err := resolveRoot(opt.Path)
	if err != nil {
		return nil, err
	}

	c := newCollector()
	if err := walk(ctx, root, opt, c); err != nil {
		return nil, err
	}

	return c.entries, nil
}

// Scan walks opt.Path and returns the opt.TopN largest files, largest first.
//
// The walk can be cancelled via ctx. Progress updates are sent to
// progressHook if provided. On error no ranking is returned.
func Scan(ctx context.Context, opt Options, progressHook func(int64, uint64)) (Ranked, *Summary, error) {
	log := opt.logger()

	root, err := resolveRoot(opt.Path)
	if err != nil {
		return nil, nil, err
	}

	log.Debugw("scan started", "root", root, "top", opt.TopN, "min_size", opt.MinSize,
		"excludes", opt.Excludes, "extensions", opt.Extensions)

	c := newCollector()

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, c, progressHook, opt.ProgressInterval)

	start := time.Now()

	if err := walk(ctx, root, opt, c); err != nil {
		return nil, nil, err
	}

	ranked, summary := c.finalize(root, opt.TopN)
	summary.Elapsed = time.Since(start)

	log.Debugw("scan finished",
		"files", summary.FileCount,
		"bytes", summary.TotalBytes,
		"skipped", summary.Skipped,
		"ranked", len(ranked),
		"elapsed", summary.Elapsed,
	)

	return ranked, summary, nil
}
