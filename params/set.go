// Package params implements parameter sets: the inline and file-backed
// sources of entries that are attached to a test template.
package params

import (
	"iter"
	"log/slog"

	"github.com/CatConfLang/ddt/loader"
	"github.com/CatConfLang/ddt/naming"
	"github.com/CatConfLang/ddt/types"
)

// DefaultNameField is the mapping key that names a list element of a data
// file.
const DefaultNameField = "name"

// Env is what a set needs to know about the suite it is attached to.
type Env struct {
	BaseDir   string             // directory relative data paths resolve against
	Format    naming.Format      // name format for entry fragments
	Loader    *loader.FileLoader // nil uses loader.New()
	NameField string             // list element key supplying an entry name
	Encoding  string             // file encoding when a set names none; empty uses the loader's
	Logger    *slog.Logger
}

func (e Env) withDefaults() Env {
	if e.Loader == nil {
		e.Loader = loader.New()
	}
	if e.NameField == "" {
		e.NameField = DefaultNameField
	}
	if e.Logger == nil {
		e.Logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// Set is one source of parameter entries.
type Set interface {
	// Resolve binds the set to a suite. File-backed sets compute their
	// absolute path here but do not read it until iterated.
	Resolve(env Env) *Resolved
	// Unpack returns a copy of the set with its unpack depth raised by one.
	Unpack() Set
	// Depth is the number of unpack passes applied to each entry.
	Depth() int
}

// Resolved is a set bound to a suite. Every iteration produces the entries
// afresh; a file-backed set reloads its file each time.
type Resolved struct {
	Source string
	Depth  int
	load   func() []types.Entry
}

// NewResolved wraps a loading function as a resolved set.
func NewResolved(source string, depth int, load func() []types.Entry) *Resolved {
	return &Resolved{Source: source, Depth: depth, load: load}
}

// Entries yields the set's entries in order.
func (r *Resolved) Entries() iter.Seq[types.Entry] {
	return func(yield func(types.Entry) bool) {
		for _, e := range r.load() {
			if !yield(e) {
				return
			}
		}
	}
}

// Collect loads the set once and returns its entries.
func (r *Resolved) Collect() []types.Entry {
	return r.load()
}

// Len loads the set and returns the number of entries.
func (r *Resolved) Len() int {
	return len(r.load())
}
