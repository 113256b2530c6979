package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"

	"github.com/CatConfLang/ddt"
	"github.com/CatConfLang/ddt/generator"
	"github.com/CatConfLang/ddt/naming"
)

var namesFlags struct {
	format   string
	unpack   int
	encoding string
	output   string
	name     string
	args     bool
}

var namesCmd = &cobra.Command{
	Use:   "names <pattern>...",
	Short: "Print the test names generated from data files",
	Long: "Each matched file is expanded as the single data set of a test named\n" +
		"after the file (or --name) and the generated test names are printed.",
	Args: cobra.MinimumNArgs(1),
	RunE: runNames,
}

func init() {
	f := namesCmd.Flags()
	f.StringVar(&namesFlags.format, "format", "", "name format: default or index_only (overrides config)")
	f.IntVar(&namesFlags.unpack, "unpack", 0, "unpack each data value this many levels")
	f.StringVar(&namesFlags.encoding, "encoding", "", "text encoding of the data files (overrides config)")
	f.StringVarP(&namesFlags.output, "output", "o", "plain", "output format: plain, table or json")
	f.StringVar(&namesFlags.name, "name", "", "test name to expand under (default: file name)")
	f.BoolVar(&namesFlags.args, "args", false, "also print the arguments bound to each case")
}

var quiet = func(testing.TB, ddt.Args) {}

func runNames(cmd *cobra.Command, patterns []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if namesFlags.format != "" {
		if cfg.NameFormat, err = naming.ParseFormat(namesFlags.format); err != nil {
			return err
		}
	}
	if namesFlags.encoding != "" {
		cfg.Encoding = namesFlags.encoding
	}
	if namesFlags.unpack < 0 {
		return fmt.Errorf("--unpack must be non-negative, got %d", namesFlags.unpack)
	}
	render, err := rendererFor(namesFlags.output)
	if err != nil {
		return err
	}

	files, err := matchFiles(rootFlags.base, patterns)
	if err != nil {
		return err
	}

	suite := ddt.New(ddt.WithConfig(cfg), ddt.WithBaseDir(rootFlags.base), ddt.WithLogger(newLogger(cmd.ErrOrStderr())))
	for _, file := range files {
		set := ddt.FileData(file)
		for range namesFlags.unpack {
			set = set.Unpack()
		}
		suite.Test(templateName(file), quiet, set)
	}

	col, err := suite.Build()
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), col.Cases())
}

func templateName(file string) string {
	if namesFlags.name != "" {
		return namesFlags.name
	}
	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return naming.Sanitize(stem)
}

type renderer func(w io.Writer, cases []generator.Case) error

func rendererFor(output string) (renderer, error) {
	switch output {
	case "plain":
		return renderPlain, nil
	case "table":
		return renderTable, nil
	case "json":
		return renderJSON, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want plain, table or json)", output)
}

func status(c generator.Case) string {
	if c.Failure != nil {
		return c.Failure.Kind.String()
	}
	return "ok"
}

var argsDump = litter.Options{
	Compact:           true,
	StripPackageNames: true,
	HidePrivateFields: true,
}

func dumpArgs(a ddt.Args) string {
	var parts []string
	if len(a.Positional) > 0 {
		parts = append(parts, argsDump.Sdump(a.Positional))
	}
	if len(a.Keyword) > 0 {
		parts = append(parts, argsDump.Sdump(a.Keyword))
	}
	return strings.Join(parts, " ")
}

func renderPlain(w io.Writer, cases []generator.Case) error {
	for _, c := range cases {
		if c.Failure != nil {
			fmt.Fprintf(w, "%s\t%s\n", c.Name, c.Failure.Reason)
			continue
		}
		fmt.Fprintln(w, c.Name)
		if namesFlags.args {
			fmt.Fprintf(w, "    %s\n", dumpArgs(c.Args))
		}
	}
	return nil
}

func renderTable(w io.Writer, cases []generator.Case) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	header := table.Row{"#", "Name", "Doc", "Status"}
	if namesFlags.args {
		header = append(header, "Args")
	}
	tw.AppendHeader(header)
	for i, c := range cases {
		row := table.Row{i, c.Name, c.Doc, status(c)}
		if namesFlags.args {
			row = append(row, dumpArgs(c.Args))
		}
		tw.AppendRow(row)
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, WidthMax: 60},
		{Number: 5, WidthMax: 60},
	})
	tw.Render()
	return nil
}

type caseRecord struct {
	Name       string         `json:"name"`
	Template   string         `json:"template"`
	Doc        string         `json:"doc,omitempty"`
	Status     string         `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Positional []any          `json:"positional,omitempty"`
	Keyword    map[string]any `json:"keyword,omitempty"`
}

func renderJSON(w io.Writer, cases []generator.Case) error {
	records := make([]caseRecord, len(cases))
	for i, c := range cases {
		r := caseRecord{Name: c.Name, Template: c.Template, Doc: c.Doc, Status: status(c)}
		if c.Failure != nil {
			r.Reason = c.Failure.Reason
		} else if namesFlags.args {
			r.Positional = c.Args.Positional
			r.Keyword = c.Args.Keyword
		}
		records[i] = r
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode cases: %w", err)
	}
	return nil
}
