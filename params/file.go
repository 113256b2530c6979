package params

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/CatConfLang/ddt/loader"
	"github.com/CatConfLang/ddt/naming"
	"github.com/CatConfLang/ddt/types"
)

// FileSet is a set whose entries come from a JSON or YAML data file.
type FileSet struct {
	path     string
	encoding string
	decoder  loader.Decoder
	depth    int
}

// FileOption configures a FileSet.
type FileOption func(*FileSet)

// WithEncoding sets the text encoding of the data file, e.g. "utf-8-sig".
func WithEncoding(name string) FileOption {
	return func(s *FileSet) {
		s.encoding = name
	}
}

// WithDecoder replaces extension-based decoder selection for this file.
func WithDecoder(d loader.Decoder) FileOption {
	return func(s *FileSet) {
		s.decoder = d
	}
}

// File builds a set from the data file at path, relative to the suite's
// base directory.
func File(path string, opts ...FileOption) *FileSet {
	s := &FileSet{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the path as given to File.
func (s *FileSet) Path() string {
	return s.path
}

func (s *FileSet) Depth() int {
	return s.depth
}

func (s *FileSet) Unpack() Set {
	c := *s
	c.depth++
	return &c
}

// Resolve binds the set to env. A file that cannot be loaded yields a
// single failure entry each time the set is iterated.
func (s *FileSet) Resolve(env Env) *Resolved {
	env = env.withDefaults()
	path := loader.Resolve(env.BaseDir, s.path)
	opts := loader.LoadOptions{Encoding: s.encoding, Decoder: s.decoder}
	if opts.Encoding == "" {
		opts.Encoding = env.Encoding
	}

	return NewResolved(path, s.depth, func() []types.Entry {
		v, failure := env.Loader.Load(path, opts)
		if failure != nil {
			env.Logger.Warn("data file failed to load",
				slog.String("path", path),
				slog.String("kind", failure.Kind.String()),
				slog.String("reason", failure.Reason))
			return []types.Entry{types.FailureEntry(failure)}
		}
		return dataEntries(v, env)
	})
}

// dataEntries turns a decoded document into entries. Lists keep their
// order; mappings are ordered by key; any other value is a single entry.
func dataEntries(v any, env Env) []types.Entry {
	switch data := v.(type) {
	case []any:
		width := naming.Width(len(data))
		entries := make([]types.Entry, len(data))
		for i, elem := range data {
			key := ""
			if m, ok := elem.(map[string]any); ok {
				if name, ok := m[env.NameField]; ok && name != nil {
					key = fmt.Sprint(name)
				}
			}
			entries[i] = types.Entry{
				Name: naming.Fragment(i, width, key, elem, env.Format),
				Args: types.NewArgs(elem),
			}
		}
		return entries

	case map[string]any:
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		width := naming.Width(len(keys))
		entries := make([]types.Entry, len(keys))
		for i, k := range keys {
			entries[i] = types.Entry{
				Name: naming.Fragment(i, width, k, nil, env.Format),
				Args: types.NewArgs(data[k]),
			}
		}
		return entries
	}

	return []types.Entry{{
		Name: naming.Fragment(0, 1, "", v, env.Format),
		Args: types.NewArgs(v),
	}}
}
