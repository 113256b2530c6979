package types

import (
	"maps"
	"reflect"
)

// Unpack spreads structured positional arguments depth times. Each pass
// splices sequences into their members and moves string-keyed maps into
// the keyword arguments, later keys overwriting earlier ones. Strings,
// []byte and maps with other key types stay as single arguments.
func Unpack(a Args, depth int) Args {
	if depth <= 0 {
		return a
	}

	pos := a.Positional
	kw := maps.Clone(a.Keyword)
	if kw == nil {
		kw = map[string]any{}
	}
	for range depth {
		next := make([]any, 0, len(pos))
		for _, arg := range pos {
			if m, ok := AsKeywords(arg); ok {
				maps.Copy(kw, m)
				continue
			}
			if items, ok := AsSequence(arg); ok {
				next = append(next, items...)
				continue
			}
			next = append(next, arg)
		}
		pos = next
	}
	return Args{Positional: pos, Keyword: kw}
}

// AsSequence returns the members of a slice or array. Strings and []byte
// are not sequences.
func AsSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case nil, string, []byte:
		return nil, false
	case []any:
		return s, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// AsKeywords converts a map with string keys into keyword arguments.
func AsKeywords(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return m, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
