package params

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/CatConfLang/ddt/naming"
	"github.com/CatConfLang/ddt/types"
)

// KV is a keyed inline value. The key names the entry and the template
// receives Value.
type KV struct {
	Key   string
	Value any
}

// Labeled gives one positional value a display name of the caller's
// choosing. It keeps its position among the other positional values.
type Labeled struct {
	Name  string
	Value any
}

// Label wraps v with a display name.
func Label(name string, v any) Labeled {
	return Labeled{Name: name, Value: v}
}

type item struct {
	key   string // explicit name; empty renders value instead
	value any
	args  types.Args
}

// InlineSet is a set built from literal values.
type InlineSet struct {
	items []item
	width int
	depth int
}

// Inline builds a set from literal values. Plain values and Labeled values
// come first in argument order; KV values follow sorted by key.
func Inline(values ...any) *InlineSet {
	var positional, keyed []item
	for _, v := range values {
		switch t := v.(type) {
		case KV:
			keyed = append(keyed, item{key: t.Key, value: t.Value, args: types.NewArgs(t.Value)})
		case Labeled:
			positional = append(positional, item{key: t.Name, value: t.Value, args: types.NewArgs(t.Value)})
		default:
			positional = append(positional, item{value: v, args: types.NewArgs(v)})
		}
	}
	slices.SortStableFunc(keyed, func(a, b item) int {
		return cmp.Compare(a.key, b.key)
	})
	return &InlineSet{items: append(positional, keyed...)}
}

// Keyed builds a set with one entry per map key, in key order.
func Keyed(m map[string]any) *InlineSet {
	values := make([]any, 0, len(m))
	for k, v := range m {
		values = append(values, KV{Key: k, Value: v})
	}
	return Inline(values...)
}

// WithWidth returns a copy of the set whose ordinals are zero-padded to n
// digits instead of the width derived from its size.
func (s *InlineSet) WithWidth(n int) *InlineSet {
	c := *s
	c.width = n
	return &c
}

// Len returns the number of entries.
func (s *InlineSet) Len() int {
	return len(s.items)
}

func (s *InlineSet) Depth() int {
	return s.depth
}

func (s *InlineSet) Unpack() Set {
	c := *s
	c.depth++
	return &c
}

func (s *InlineSet) Resolve(env Env) *Resolved {
	env = env.withDefaults()
	width := s.width
	if width <= 0 {
		width = naming.Width(len(s.items))
	}
	source := fmt.Sprintf("inline[%d]", len(s.items))
	return NewResolved(source, s.depth, func() []types.Entry {
		entries := make([]types.Entry, len(s.items))
		for i, it := range s.items {
			entries[i] = types.Entry{
				Name: naming.Fragment(i, width, it.key, it.value, env.Format),
				Args: it.args.Clone(),
			}
		}
		return entries
	})
}
