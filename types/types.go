// Package types defines the values that flow through test expansion:
// bound call arguments, parameter entries, combinations and deferred
// data-source failures.
package types

import (
	"fmt"
	"maps"
	"slices"

	"github.com/CatConfLang/ddt/naming"
)

// Args are the arguments bound to one generated test.
type Args struct {
	Positional []any          `json:"positional"`
	Keyword    map[string]any `json:"keyword,omitempty"`
}

// NewArgs builds Args from positional values with no keyword arguments.
func NewArgs(positional ...any) Args {
	return Args{Positional: positional, Keyword: map[string]any{}}
}

// Len returns the number of positional arguments.
func (a Args) Len() int {
	return len(a.Positional)
}

// At returns positional argument i, or nil when out of range.
func (a Args) At(i int) any {
	if i < 0 || i >= len(a.Positional) {
		return nil
	}
	return a.Positional[i]
}

// String returns positional argument i as a string. Non-string values are
// formatted with fmt.
func (a Args) String(i int) string {
	switch v := a.At(i).(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Int returns positional argument i as an int. Non-integral values yield 0.
func (a Args) Int(i int) int {
	switch v := a.At(i).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
	}
	return 0
}

// Kw returns keyword argument name.
func (a Args) Kw(name string) (any, bool) {
	v, ok := a.Keyword[name]
	return v, ok
}

// Clone returns a copy whose slice and map can be modified independently.
func (a Args) Clone() Args {
	kw := maps.Clone(a.Keyword)
	if kw == nil {
		kw = map[string]any{}
	}
	return Args{Positional: slices.Clone(a.Positional), Keyword: kw}
}

// Entry is one element yielded by a parameter set. A non-nil Failure marks
// a placeholder standing in for a data source that could not be loaded.
type Entry struct {
	Name    string
	Args    Args
	Failure *Failure
}

// FailureEntry returns the placeholder entry for f, named after its kind.
func FailureEntry(f *Failure) Entry {
	return Entry{Name: f.Kind.String(), Failure: f}
}

// Combination is the merge of one entry from every set attached to a
// template.
type Combination struct {
	Name    string
	Args    Args
	Failure *Failure
}

// Identity is the starting element of the merge fold.
func Identity() Combination {
	return Combination{Args: Args{Positional: []any{}, Keyword: map[string]any{}}}
}

// Failed reports whether the combination carries a load failure.
func (c Combination) Failed() bool {
	return c.Failure != nil
}

// Merge folds entry e into c.
func (c Combination) Merge(e Entry) Combination {
	return c.Join(Combination(e))
}

// Join merges o into c: names concatenate, positional arguments append and
// o's keyword arguments override c's. A failure on either side absorbs the
// result; the first failure encountered wins.
func (c Combination) Join(o Combination) Combination {
	out := Combination{Name: naming.Compose("", c.Name, o.Name)}
	switch {
	case c.Failure != nil:
		out.Failure = c.Failure
	case o.Failure != nil:
		out.Failure = o.Failure
	default:
		pos := make([]any, 0, len(c.Args.Positional)+len(o.Args.Positional))
		pos = append(pos, c.Args.Positional...)
		pos = append(pos, o.Args.Positional...)
		kw := make(map[string]any, len(c.Args.Keyword)+len(o.Args.Keyword))
		maps.Copy(kw, c.Args.Keyword)
		maps.Copy(kw, o.Args.Keyword)
		out.Args = Args{Positional: pos, Keyword: kw}
	}
	return out
}
