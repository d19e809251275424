package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/idelchi/sizer/internal/config"
	"github.com/idelchi/sizer/internal/integration"
	"github.com/idelchi/sizer/internal/logstore"
	"github.com/idelchi/sizer/internal/sizer"
)

// newLogger returns a development logger writing to w, or a no-op logger.
func newLogger(debug bool, w io.Writer) *zap.SugaredLogger {
	if !debug {
		return zap.NewNop().Sugar()
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zap.DebugLevel,
	)

	return zap.New(core).Sugar()
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

// resolveSettings layers the config file, environment and flags into opts.Settings.
func resolveSettings(cmd *cobra.Command, opts *options) error {
	path := opts.ConfigPath
	if path == "" {
		// No user config directory simply means no config file.
		path, _ = config.DefaultConfigPath()
	}

	file := &config.FileConfig{}

	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return err
		}

		file = loaded
	}

	return opts.Merge(file, cmd.Flags(), os.Getenv)
}

func logic(cmd *cobra.Command, opts options) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if opts.Integration {
		rendered, err := integration.Render()
		if err != nil {
			return fmt.Errorf("rendering integration script: %w", err)
		}

		_, err = fmt.Fprintln(stdout, rendered)

		return err
	}

	if err := resolveSettings(cmd, &opts); err != nil {
		return err
	}

	if opts.NoColor {
		color.NoColor = true
	}

	log := newLogger(opts.Debug, stderr)
	defer func() { _ = log.Sync() }()

	log.Debugw("settings resolved",
		"file_number", opts.FileNumber,
		"dir", opts.Dir,
		"log", opts.Log,
		"min_size", opts.MinSize,
		"excludes", opts.Excludes,
		"extensions", opts.Extensions,
	)

	store := logstore.New(opts.Log, logstore.WithLogger(log))

	switch {
	case opts.List:
		return list(store, stdout)
	case cmd.Flags().Changed(flagIndexDelete):
		return remove(store, int(opts.IndexDelete), stdout)
	default:
		return scan(cmd, opts, store, log, stdout, stderr)
	}
}

// list prints the saved ranking exactly as stored.
func list(store *logstore.Store, stdout io.Writer) error {
	record, err := store.Render()
	if err != nil {
		return err
	}

	return PrintRecord(record, stdout)
}

// remove deletes the file at the given rank of the saved ranking.
func remove(store *logstore.Store, index int, stdout io.Writer) error {
	ranked, err := store.Load()
	if err != nil {
		return err
	}

	entry, deleted, err := store.Delete(ranked, index)
	if err != nil {
		return fmt.Errorf("deleting rank %d: %w", index, err)
	}

	if !deleted {
		return PrintSkipped(index, len(ranked), stdout)
	}

	return PrintDeleted(index, entry, stdout)
}

// scan ranks the tree, replaces the saved ranking and prints it.
func scan(
	cmd *cobra.Command,
	opts options,
	store *logstore.Store,
	log *zap.SugaredLogger,
	stdout, stderr io.Writer,
) error {
	root, err := opts.Root()
	if err != nil {
		return err
	}

	minSize, err := humanize.ParseBytes(opts.MinSize)
	if err != nil {
		return fmt.Errorf("invalid min-size: %w", err)
	}

	enableProgress := !opts.Debug && isTerminal(stderr)

	var progressHook func(files int64, bytes uint64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(files int64, bytes uint64) {
			msg := fmt.Sprintf("Scanning… %d files, %s", files, humanize.IBytes(bytes))
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	ranked, summary, err := sizer.Scan(cmd.Context(), sizer.Options{
		Path:       root,
		TopN:       int(opts.FileNumber),
		MinSize:    minSize,
		Excludes:   opts.Excludes,
		Extensions: opts.Extensions,
		Logger:     log,
	}, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	if err := store.Save(ranked); err != nil {
		return err
	}

	record, err := store.Render()
	if err != nil {
		return err
	}

	if err := PrintRecord(record, stdout); err != nil {
		return err
	}

	return PrintSummary(summary, ranked, store.Path(), stderr)
}
