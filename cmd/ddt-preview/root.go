package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/CatConfLang/ddt/config"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	base       string
	verbose    bool
}

var rootCmd = &cobra.Command{
	Use:   "ddt-preview",
	Short: "Preview the test cases ddt generates from data files",
	Long: "ddt-preview expands JSON and YAML data files the way a ddt suite does\n" +
		"and prints the resulting test names, or checks that the files load.",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "ddt config file (YAML or JSON)")
	pf.StringVar(&rootFlags.base, "base", ".", "directory patterns and data paths are relative to")
	pf.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "log expansion details to stderr")

	rootCmd.AddCommand(namesCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig returns the defaults, or the --config file on top of them.
func loadConfig() (config.Config, error) {
	if rootFlags.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(rootFlags.configPath)
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if rootFlags.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// matchFiles expands doublestar patterns. Relative patterns match under
// base and yield paths relative to it. Results keep pattern order, each
// pattern's matches sorted, with repeats dropped. A pattern that matches
// nothing is an error.
func matchFiles(base string, patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		var matches []string
		var err error
		if filepath.IsAbs(pattern) {
			matches, err = doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		} else {
			matches, err = doublestar.Glob(os.DirFS(base), filepath.ToSlash(pattern), doublestar.WithFilesOnly())
			for i, m := range matches {
				matches[i] = filepath.FromSlash(m)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}
