package sizer

import (
	"cmp"
	"slices"
	"strings"
)

// FileEntry is a single regular file and its size in bytes.
type FileEntry struct {
	// Path is the file path. Entries produced by Walk are absolute.
	Path string
	// Size is the size in bytes.
	Size uint64
}

// Ranked is a sequence of entries ordered by descending size.
type Ranked []FileEntry

// TotalBytes returns the cumulative size of all ranked entries.
func (r Ranked) TotalBytes() uint64 {
	var total uint64
	for _, e := range r {
		total += e.Size
	}

	return total
}

// Select ranks entries by size, largest first, and keeps at most n of them.
// Entries of equal size are ordered by path so the result is deterministic.
// The input slice is not modified.
func Select(entries []FileEntry, n int) Ranked {
	if n <= 0 || len(entries) == 0 {
		return Ranked{}
	}

	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, compareEntries)

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	return Ranked(sorted)
}

// compareEntries orders by size descending, then path ascending.
func compareEntries(a, b FileEntry) int {
	if c := cmp.Compare(b.Size, a.Size); c != 0 {
		return c
	}

	return strings.Compare(a.Path, b.Path)
}
