// Package generator expands test templates into concrete cases: it takes
// the Cartesian product (or the union) of each template's parameter sets,
// binds every combination to the template and collects the results under
// their composed names.
package generator

import (
	"fmt"
	"log/slog"

	"github.com/CatConfLang/ddt/config"
	"github.com/CatConfLang/ddt/params"
)

// Generator materializes templates into a Collection
type Generator struct {
	Options GenerateOptions
}

// GenerateOptions controls case generation behavior
type GenerateOptions struct {
	Env            params.Env             // environment every set is resolved in
	UnpackAll      int                    // unpack depth added to every set of every template
	DuplicateNames config.DuplicatePolicy // overwrite (default) or error
	Combine        config.CombineMode     // product (default) or union
	Logger         *slog.Logger           // nil discards
}

// NewGenerator creates a new case generator
func NewGenerator(opts GenerateOptions) *Generator {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Env.Logger == nil {
		opts.Env.Logger = opts.Logger
	}
	if opts.DuplicateNames == "" {
		opts.DuplicateNames = config.DuplicateOverwrite
	}
	if opts.Combine == "" {
		opts.Combine = config.CombineProduct
	}
	return &Generator{Options: opts}
}

// GenerateAll materializes every template in order. Templates are never
// part of the result; a template without sets yields one case under its
// own name.
func (g *Generator) GenerateAll(templates []Template) (*Collection, error) {
	col := newCollection(g.Options.DuplicateNames)
	for _, tpl := range templates {
		if tpl.Func == nil {
			return nil, fmt.Errorf("template %q has no test function", tpl.Name)
		}
		for _, c := range g.GenerateTemplate(tpl) {
			if err := col.attach(c); err != nil {
				return nil, fmt.Errorf("failed to attach cases of %s: %w", tpl.Name, err)
			}
		}
	}
	return col, nil
}

// GenerateTemplate materializes one template against every combination of
// its sets. Under config.CombineUnion each set's entries become cases on
// their own instead.
func (g *Generator) GenerateTemplate(tpl Template) []Case {
	tpl.Format = g.Options.Env.Format
	resolved := make([]*params.Resolved, len(tpl.Sets))
	for i, set := range tpl.Sets {
		resolved[i] = set.Resolve(g.Options.Env)
	}

	var (
		cases    []Case
		failures int
	)
	expand := Expand
	if g.Options.Combine == config.CombineUnion {
		expand = Union
	}
	for combo := range expand(resolved, tpl.UnpackAll+g.Options.UnpackAll) {
		c := Materialize(tpl, combo)
		if c.Failure != nil {
			failures++
			g.Options.Logger.Debug("case bound to failed data source",
				slog.String("case", c.Name),
				slog.String("path", c.Failure.Path))
		}
		cases = append(cases, c)
	}

	g.Options.Logger.Debug("template expanded",
		slog.String("template", tpl.Name),
		slog.String("combine", string(g.Options.Combine)),
		slog.Int("sets", len(resolved)),
		slog.Int("cases", len(cases)),
		slog.Int("failures", failures))
	return cases
}
