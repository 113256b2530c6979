// Package naming turns parameter values into stable, identifier-safe name
// fragments and composes those fragments into full test names.
package naming

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"unicode"
)

// Namer is implemented by values that choose their own display name.
// The name is used verbatim (after sanitizing) regardless of whether the
// value itself could be rendered.
type Namer interface {
	TestName() string
}

var namerType = reflect.TypeFor[Namer]()

// IsTrivial reports whether v is safe to turn into a name fragment: a
// scalar, or a slice, array or map built only from trivial values.
// Structs, pointers, funcs and channels are not trivial.
func IsTrivial(v any) bool {
	if v == nil {
		return true
	}
	return isTrivialValue(reflect.ValueOf(v))
}

func isTrivialValue(rv reflect.Value) bool {
	if !rv.IsValid() {
		return true
	}
	if rv.Type().Implements(namerType) && rv.Kind() != reflect.Interface {
		return true
	}

	switch rv.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	case reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return isTrivialValue(rv.Elem())
	case reflect.Slice, reflect.Array:
		if isBytes(rv) {
			return true
		}
		for i := 0; i < rv.Len(); i++ {
			if !isTrivialValue(rv.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if !isTrivialValue(iter.Key()) || !isTrivialValue(iter.Value()) {
				return false
			}
		}
		return true
	}
	return false
}

// Render converts v into a sanitized name fragment. The boolean result is
// false when v has no safe rendering; callers then fall back to the
// ordinal alone.
func Render(v any) (string, bool) {
	if n, ok := v.(Namer); ok {
		s := Sanitize(n.TestName())
		return s, s != ""
	}
	if !IsTrivial(v) {
		return "", false
	}
	s := Sanitize(stringify(reflect.ValueOf(v)))
	return s, s != ""
}

func stringify(rv reflect.Value) string {
	if !rv.IsValid() {
		return "nil"
	}
	if rv.Kind() != reflect.Interface && rv.Type().Implements(namerType) && rv.CanInterface() {
		return rv.Interface().(Namer).TestName()
	}

	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return stringify(rv.Elem())
	case reflect.Slice, reflect.Array:
		if isBytes(rv) {
			return string(rv.Bytes())
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = stringify(rv.Index(i))
		}
		return strings.Join(parts, " ")
	case reflect.Map:
		type pair struct{ key, value string }
		pairs := make([]pair, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			pairs = append(pairs, pair{stringify(iter.Key()), stringify(iter.Value())})
		}
		// Keys of different types can print alike (1 and "1"); ordering on
		// the whole pair keeps the result independent of map iteration.
		slices.SortFunc(pairs, func(a, b pair) int {
			return cmp.Or(strings.Compare(a.key, b.key), strings.Compare(a.value, b.value))
		})
		parts := make([]string, 0, 2*len(pairs))
		for _, p := range pairs {
			parts = append(parts, p.key, p.value)
		}
		return strings.Join(parts, " ")
	}
	return fmt.Sprint(rv.Interface())
}

func isBytes(rv reflect.Value) bool {
	return rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8
}

// Sanitize replaces every rune that is not a letter, digit or underscore
// with '_', collapses runs of '_' and trims them from both ends.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	underscore := false
	for _, r := range s {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			r = '_'
		}
		if r == '_' {
			if underscore {
				continue
			}
			underscore = true
		} else {
			underscore = false
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "_")
}

// Identifier makes a composed test name safe without touching the "__"
// separators between fragments: invalid runes become '_' and a leading
// digit gets a '_' prefix.
func Identifier(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 1)
	for i, r := range s {
		if i == 0 && unicode.IsDigit(r) {
			b.WriteByte('_')
		}
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			r = '_'
		}
		b.WriteRune(r)
	}
	return b.String()
}
