package generator

import (
	"fmt"
	"slices"
	"testing"

	"github.com/CatConfLang/ddt/config"
)

// DuplicateNameError reports two cases that composed the same name under
// the error policy.
type DuplicateNameError struct {
	Name     string
	Template string
	Previous string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate test name %q: generated by template %q and template %q", e.Name, e.Previous, e.Template)
}

// Collection is the ordered, immutable result of generating a suite.
type Collection struct {
	cases  []Case
	index  map[string]int
	policy config.DuplicatePolicy
}

func newCollection(policy config.DuplicatePolicy) *Collection {
	return &Collection{index: make(map[string]int), policy: policy}
}

// attach adds c. A case with a name already present replaces it in place
// unless the policy is config.DuplicateError.
func (col *Collection) attach(c Case) error {
	if i, ok := col.index[c.Name]; ok {
		if col.policy == config.DuplicateError {
			return &DuplicateNameError{Name: c.Name, Template: c.Template, Previous: col.cases[i].Template}
		}
		col.cases[i] = c
		return nil
	}
	col.index[c.Name] = len(col.cases)
	col.cases = append(col.cases, c)
	return nil
}

// Cases returns the cases in attachment order.
func (col *Collection) Cases() []Case {
	return slices.Clone(col.cases)
}

// Names returns the case names in attachment order.
func (col *Collection) Names() []string {
	names := make([]string, len(col.cases))
	for i, c := range col.cases {
		names[i] = c.Name
	}
	return names
}

// Lookup finds a case by name.
func (col *Collection) Lookup(name string) (Case, bool) {
	i, ok := col.index[name]
	if !ok {
		return Case{}, false
	}
	return col.cases[i], true
}

func (col *Collection) Len() int {
	return len(col.cases)
}

// Failures returns the cases bound to a data source that failed to load.
func (col *Collection) Failures() []Case {
	var out []Case
	for _, c := range col.cases {
		if c.Failure != nil {
			out = append(out, c)
		}
	}
	return out
}

// Run runs every case as a subtest of t.
func (col *Collection) Run(t *testing.T) {
	for _, c := range col.cases {
		t.Run(c.Name, c.Test)
	}
}
