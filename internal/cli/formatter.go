package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/idelchi/sizer/internal/sizer"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintRecord outputs the saved ranking verbatim.
func PrintRecord(record string, writer io.Writer) error {
	_, err := io.WriteString(writer, record)

	return err
}

// PrintSummary outputs scan statistics in human-readable table format.
func PrintSummary(stats *sizer.Summary, ranked sizer.Ranked, logPath string, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	pct := 0.0
	if stats.TotalBytes > 0 {
		pct = 100.0 * float64(ranked.TotalBytes()) / float64(stats.TotalBytes)
	}

	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Root:\t%s\n", stats.Root)
	fmt.Fprintf(w, "Total files:\t%s\n", humanize.Comma(stats.FileCount))
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n", humanize.IBytes(stats.TotalBytes), stats.TotalBytes)
	fmt.Fprintf(w, "Top %d:\t%s (%.1f%%)\n", len(ranked), humanize.IBytes(ranked.TotalBytes()), pct)
	fmt.Fprintf(w, "Log:\t%s\n", logPath)
	fmt.Fprintf(w, "\nElapsed:\t%v\n", stats.Elapsed)

	return w.Flush()
}

// PrintDeleted reports a removed file.
func PrintDeleted(index int, entry sizer.FileEntry, writer io.Writer) error {
	green := color.New(color.FgGreen)
	_, err := green.Fprintf(writer, "✓ removed #%d %q (%s)\n", index, entry.Path, humanize.IBytes(entry.Size))

	return err
}

// PrintSkipped reports a delete request outside the saved ranking.
func PrintSkipped(index, entries int, writer io.Writer) error {
	yellow := color.New(color.FgYellow)
	_, err := yellow.Fprintf(writer, "Warning: rank %d is outside the saved ranking (%d entries), nothing deleted\n",
		index, entries)

	return err
}
