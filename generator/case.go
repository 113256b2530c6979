package generator

import (
	"testing"

	"github.com/CatConfLang/ddt/naming"
	"github.com/CatConfLang/ddt/params"
	"github.com/CatConfLang/ddt/types"
)

// Func is a test template: a test body that takes its data as arguments.
type Func func(t testing.TB, a types.Args)

// Template is a test body registered with the parameter sets that feed it.
type Template struct {
	Name      string
	Doc       string // may hold {} placeholders filled from the arguments
	Func      Func
	Sets      []params.Set
	UnpackAll int
	Format    naming.Format // set by the Generator from its Env
}

// Describer lets a data value supply the documentation of the case it
// feeds.
type Describer interface {
	TestDoc() string
}

// Case is one materialized test: a template bound to one combination.
type Case struct {
	Name     string
	Doc      string
	Template string
	Args     types.Args
	Failure  *types.Failure

	fn Func
}

// Invoke runs the template with the bound arguments. A case built from a
// failed data source does not call the template and returns the failure.
func (c Case) Invoke(t testing.TB) error {
	if c.Failure != nil {
		return c.Failure
	}
	if c.fn != nil {
		c.fn(t, c.Args.Clone())
	}
	return nil
}

// Test is the case's body for testing.T.Run.
func (c Case) Test(t *testing.T) {
	t.Helper()
	if err := c.Invoke(t); err != nil {
		t.Fatal(err)
	}
}

// Materialize binds tpl to one combination.
func Materialize(tpl Template, combo types.Combination) Case {
	c := Case{
		Name:     naming.Identifier(naming.Join(tpl.Name, combo.Name, tpl.Format)),
		Doc:      tpl.Doc,
		Template: tpl.Name,
		Args:     combo.Args,
		Failure:  combo.Failure,
		fn:       tpl.Func,
	}
	if combo.Failed() {
		return c
	}
	if doc, ok := valueDoc(combo.Args); ok {
		c.Doc = doc
	} else if tpl.Doc != "" {
		c.Doc, _ = naming.FormatDoc(tpl.Doc, combo.Args.Positional, combo.Args.Keyword)
	}
	return c
}

func valueDoc(a types.Args) (string, bool) {
	for _, v := range a.Positional {
		if d, ok := v.(Describer); ok {
			if doc := d.TestDoc(); doc != "" {
				return doc, true
			}
		}
	}
	return "", false
}
