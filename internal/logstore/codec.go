package logstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/idelchi/sizer/internal/sizer"
)

// Separator divides the path and size fields of a record line.
const Separator = " - "

// ParseError reports a record line that could not be decoded.
type ParseError struct {
	// Line is the 1-based line number within the log.
	Line int
	// Text is the offending line.
	Text string
	// Err is the decoding failure; it matches sizer.ErrInvalidSize.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FormatLine encodes an entry as a single record line, without the newline.
func FormatLine(e sizer.FileEntry) string {
	return strconv.Quote(e.Path) + Separator + strconv.FormatUint(e.Size, 10)
}

// ParseLine decodes a single record line.
// The line is split on the last separator so paths may contain it.
func ParseLine(line string) (sizer.FileEntry, error) {
	idx := strings.LastIndex(line, Separator)
	if idx < 0 {
		return sizer.FileEntry{}, fmt.Errorf("%w: missing %q separator", sizer.ErrInvalidSize, Separator)
	}

	rawPath, rawSize := line[:idx], line[idx+len(Separator):]

	size, err := strconv.ParseUint(rawSize, 10, 64)
	if err != nil {
		return sizer.FileEntry{}, fmt.Errorf("%w: %w", sizer.ErrInvalidSize, err)
	}

	return sizer.FileEntry{Path: unquotePath(rawPath), Size: size}, nil
}

// unquotePath reverses strconv.Quote. Hand-edited lines that are not valid Go
// string literals have their quote characters stripped instead.
func unquotePath(raw string) string {
	if path, err := strconv.Unquote(raw); err == nil {
		return path
	}

	return strings.ReplaceAll(raw, `"`, "")
}

// Decode parses a whole record. Blank lines, including the one after the
// final newline, are ignored. The first bad line aborts decoding.
func Decode(data string) (sizer.Ranked, error) {
	list := sizer.Ranked{}

	for i, line := range strings.Split(data, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}

		entry, err := ParseLine(line)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Text: line, Err: err}
		}

		list = append(list, entry)
	}

	return list, nil
}

// Encode renders a ranked list as a record, one newline-terminated line per entry.
func Encode(list sizer.Ranked) string {
	var b strings.Builder

	for _, e := range list {
		b.WriteString(FormatLine(e))
		b.WriteByte('\n')
	}

	return b.String()
}
