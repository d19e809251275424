// Package config resolves sizer settings from defaults, an optional TOML
// file, the environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
)

// Flag names shared between the CLI and the config file merge.
const (
	FlagFileNumber = "file-number"
	FlagDir        = "dir"
	FlagLog        = "log"
	FlagMinSize    = "min-size"
	FlagExclude    = "exclude"
	FlagExt        = "ext"
	FlagNoColor    = "no-color"
)

const (
	// CurrentDir is the --dir value that selects the working directory.
	CurrentDir = "curr"
	// DefaultFileNumber is the default ranking capacity.
	DefaultFileNumber uint8 = 10
	// EnvLog overrides the log location unless --log is given.
	EnvLog = "SIZER_LOG"

	appName = "sizer"
)

// Settings are the effective values used by a run.
type Settings struct {
	// FileNumber is the ranking capacity.
	FileNumber uint8
	// Dir is the traversal root, or CurrentDir.
	Dir string
	// Log is the path of the ranking log. Empty selects DefaultLogPath.
	Log string
	// MinSize is a humanized minimum file size, such as "1MB".
	MinSize string
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// Extensions are file suffixes to include; a "!" prefix excludes.
	Extensions []string
	// NoColor disables colored status output.
	NoColor bool
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Settings {
	return Settings{
		FileNumber: DefaultFileNumber,
		Dir:        CurrentDir,
		MinSize:    "0B",
		Excludes:   []string{},
		Extensions: []string{},
	}
}

// FileConfig represents the raw config.toml file contents.
// All fields are pointers to distinguish "not set" from "set to zero/false".
type FileConfig struct {
	FileNumber *uint8   `toml:"file_number"`
	Dir        *string  `toml:"dir"`
	Log        *string  `toml:"log"`
	MinSize    *string  `toml:"min_size"`
	Exclude    []string `toml:"exclude"`
	Ext        []string `toml:"ext"`
	NoColor    *bool    `toml:"no_color"`
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}

	return filepath.Join(dir, appName, "config.toml"), nil
}

// DefaultLogPath returns the per-user ranking log location:
// $XDG_STATE_HOME/sizer/sizer.log, or ~/.local/state/sizer/sizer.log.
func DefaultLogPath() (string, error) {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, appName, appName+".log"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}

	return filepath.Join(home, ".local", "state", appName, appName+".log"), nil
}

// LoadFile reads a TOML config file. A missing file yields an empty config;
// unknown keys are an error.
func LoadFile(path string) (*FileConfig, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &FileConfig{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("opening config file %q: %w", path, err)
	}
	defer f.Close()

	var cfg FileConfig
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}

	return &cfg, nil
}

// Merge applies file values for every flag that was not set explicitly,
// then the EnvLog override, then fills in the default log location.
// Priority: flag > environment > config file > default.
func (s *Settings) Merge(file *FileConfig, flags *pflag.FlagSet, getenv func(string) string) error {
	changed := func(name string) bool {
		return flags != nil && flags.Changed(name)
	}

	if file != nil {
		if file.FileNumber != nil && !changed(FlagFileNumber) {
			s.FileNumber = *file.FileNumber
		}

		if file.Dir != nil && !changed(FlagDir) {
			s.Dir = *file.Dir
		}

		if file.Log != nil && !changed(FlagLog) {
			s.Log = *file.Log
		}

		if file.MinSize != nil && !changed(FlagMinSize) {
			s.MinSize = *file.MinSize
		}

		if file.Exclude != nil && !changed(FlagExclude) {
			s.Excludes = file.Exclude
		}

		if file.Ext != nil && !changed(FlagExt) {
			s.Extensions = file.Ext
		}

		if file.NoColor != nil && !changed(FlagNoColor) {
			s.NoColor = *file.NoColor
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}

	if env := getenv(EnvLog); env != "" && !changed(FlagLog) {
		s.Log = env
	}

	if s.Log == "" {
		path, err := DefaultLogPath()
		if err != nil {
			return err
		}

		s.Log = path
	}

	return nil
}

// Root returns the traversal root, mapping CurrentDir to the working directory.
func (s Settings) Root() (string, error) {
	if s.Dir == "" || s.Dir == CurrentDir {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}

		return wd, nil
	}

	return s.Dir, nil
}
