package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/CatConfLang/ddt/loader"
	"github.com/CatConfLang/ddt/params"
	"github.com/CatConfLang/ddt/types"
)

var checkFlags struct {
	jobs     int
	encoding string
}

var checkCmd = &cobra.Command{
	Use:   "check <pattern>...",
	Short: "Load data files and report the ones that fail",
	Long: "Every matched file is loaded and decoded as a ddt data set. Files that\n" +
		"cannot be read or decoded are listed and the command exits non-zero.",
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	f := checkCmd.Flags()
	f.IntVarP(&checkFlags.jobs, "jobs", "j", runtime.NumCPU(), "files loaded in parallel")
	f.StringVar(&checkFlags.encoding, "encoding", "", "text encoding of the data files (overrides config)")
}

// ErrCheckFailed is returned when at least one data file fails to load.
var ErrCheckFailed = errors.New("data files failed to load")

type checkResult struct {
	path    string
	entries int
	failure *types.Failure
}

func runCheck(cmd *cobra.Command, patterns []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if checkFlags.encoding != "" {
		cfg.Encoding = checkFlags.encoding
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if checkFlags.jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", checkFlags.jobs)
	}

	files, err := matchFiles(rootFlags.base, patterns)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr())
	env := params.Env{
		BaseDir:   rootFlags.base,
		Format:    cfg.NameFormat,
		Loader:    loader.New(loader.WithLogger(logger)),
		NameField: cfg.NameField,
		Encoding:  cfg.Encoding,
		Logger:    logger,
	}

	results := make([]checkResult, len(files))
	var g errgroup.Group
	g.SetLimit(checkFlags.jobs)
	for i, file := range files {
		g.Go(func() error {
			results[i] = checkFile(env, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if r.failure != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %s\n", r.path, r.failure)
			continue
		}
		fmt.Fprintf(out, "ok   %s (%d entries)\n", r.path, r.entries)
	}
	fmt.Fprintf(out, "%d file(s) checked, %d failed\n", len(results), failed)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrCheckFailed, failed, len(results))
	}
	return nil
}

func checkFile(env params.Env, path string) checkResult {
	entries := params.File(path).Resolve(env).Collect()
	r := checkResult{path: path, entries: len(entries)}
	if len(entries) == 1 && entries[0].Failure != nil {
		r.failure = entries[0].Failure
		r.entries = 0
	}
	return r
}
