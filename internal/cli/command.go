package cli

import (
	"context"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/sizer/internal/config"
)

const (
	flagList        = "list"
	flagIndexDelete = "index-delete"
	flagInit        = "init"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// options holds everything parsed from the command line.
type options struct {
	config.Settings

	// ConfigPath is the TOML config file; empty selects the default location.
	ConfigPath string
	// List renders the persisted ranking instead of scanning.
	List bool
	// IndexDelete is the 1-based rank to delete; only used when the flag is set.
	IndexDelete uint8
	// Debug enables debug logging.
	Debug bool
	// Integration outputs the shell integration script.
	Integration bool
}

// bindFlags registers all flags on fs.
func bindFlags(fs *pflag.FlagSet, opts *options) {
	fs.Uint8VarP(&opts.FileNumber, config.FlagFileNumber, "f", opts.FileNumber, "Number of largest files to keep")
	fs.StringVarP(&opts.Dir, config.FlagDir, "d", opts.Dir,
		"Directory to scan ('"+config.CurrentDir+"' = current directory)")
	fs.BoolVarP(&opts.List, flagList, "l", false, "Print the saved ranking instead of scanning")
	fs.Uint8VarP(&opts.IndexDelete, flagIndexDelete, "i", 0, "Delete the file at this rank (1-based) of the saved ranking")
	fs.StringVar(&opts.Log, config.FlagLog, opts.Log,
		"Ranking log file (default $"+config.EnvLog+" or the per-user state directory)")
	fs.StringVar(&opts.ConfigPath, "config", "", "Config file (default <user config dir>/sizer/config.toml)")
	fs.StringVar(&opts.MinSize, config.FlagMinSize, opts.MinSize, "Minimum file size (e.g., 1KB)")
	fs.StringSliceVarP(&opts.Excludes, config.FlagExclude, "e", opts.Excludes, "Regex patterns to exclude")
	fs.StringSliceVarP(
		&opts.Extensions,
		config.FlagExt,
		"x",
		opts.Extensions,
		"File suffixes to include (e.g., .go,.md). Use '!' prefix to exclude (e.g., !.log,!_test.go)",
	)
	fs.BoolVar(&opts.NoColor, config.FlagNoColor, opts.NoColor, "Disable colored output")
	fs.BoolVar(&opts.Debug, "debug", false, "Enable debug output")
	fs.BoolVar(&opts.Integration, flagInit, false, "Output init script for shell usage")

	fs.SortFlags = false
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	opts := options{Settings: config.Defaults()}

	cmd := &cobra.Command{
		Use:   "sizer [flags]",
		Short: "Find, list and delete the largest files in a directory tree",
		Long: heredoc.Doc(`
			sizer finds the largest files beneath a directory and saves the ranking to a log.

			Modes:
			  Default mode scans --dir, keeps the --file-number largest files and
			  overwrites the log with the new ranking.
			  --list prints the saved ranking without scanning.
			  --index-delete N removes the file at rank N of the saved ranking.
			  The log keeps the entry until the next scan.

			Each log line has the form:

			  "<absolute path>" - <size in bytes>

			Settings may also come from a TOML config file with the keys
			file_number, dir, log, min_size, exclude, ext and no_color.
		`),
		Example: heredoc.Doc(`
			sizer -f 20 -d ~/Downloads
			sizer --list
			sizer --index-delete 1
		`),
		Version:       c.version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic(cmd, opts)
		},
	}

	bindFlags(cmd.Flags(), &opts)
	cmd.MarkFlagsMutuallyExclusive(flagList, flagIndexDelete, flagInit)

	return cmd
}

// Execute runs the CLI with the process arguments. Cancelling ctx aborts a scan.
func (c CLI) Execute(ctx context.Context) error {
	return c.Command().ExecuteContext(ctx)
}
