// Package sizer finds the largest regular files beneath a directory tree.
//
// Walk traverses the tree sequentially with fastwalk and fails fast on the
// first I/O error. Select ranks the collected entries by descending size and
// trims them to the requested capacity. Scan combines both and reports
// running progress to an optional hook.
package sizer
