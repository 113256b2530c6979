package params

import (
	"errors"
	"fmt"
	"maps"

	"github.com/CatConfLang/ddt/types"
)

// ErrMisuse matches every *MisuseError.
var ErrMisuse = errors.New("named data misuse")

// MisuseError reports a named value that cannot be used. It is a defect in
// the test source, not in its data.
type MisuseError struct {
	Op     string
	Index  int
	Reason string
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("%s: value %d: %s", e.Op, e.Index, e.Reason)
}

func (e *MisuseError) Is(target error) bool {
	return target == ErrMisuse
}

type namedShape int

const (
	shapeUnknown namedShape = iota
	shapeSequence
	shapeMapping
)

// Named builds a set in which each value names itself. A sequence supplies
// its name as the first element and positional arguments after it; a
// mapping supplies its name under DefaultNameField and keyword arguments
// in its other keys. All values must have the same shape.
func Named(values ...any) (*InlineSet, error) {
	const op = "named data"

	items := make([]item, 0, len(values))
	shape := shapeUnknown
	for i, v := range values {
		var (
			it   item
			kind namedShape
		)
		if m, ok := types.AsKeywords(v); ok {
			name, ok := m[DefaultNameField]
			if !ok {
				return nil, &MisuseError{Op: op, Index: i, Reason: fmt.Sprintf("mapping has no %q key", DefaultNameField)}
			}
			kw := maps.Clone(m)
			delete(kw, DefaultNameField)
			it = item{key: fmt.Sprint(name), args: types.Args{Positional: []any{}, Keyword: kw}}
			kind = shapeMapping
		} else if seq, ok := types.AsSequence(v); ok {
			if len(seq) == 0 {
				return nil, &MisuseError{Op: op, Index: i, Reason: "empty sequence has no name"}
			}
			it = item{key: fmt.Sprint(seq[0]), args: types.NewArgs(seq[1:]...)}
			kind = shapeSequence
		} else {
			return nil, &MisuseError{Op: op, Index: i, Reason: fmt.Sprintf("expected a sequence or a mapping, got %T", v)}
		}

		if shape != shapeUnknown && kind != shape {
			return nil, &MisuseError{Op: op, Index: i, Reason: "all values must be of the same type"}
		}
		shape = kind
		items = append(items, it)
	}
	return &InlineSet{items: items}, nil
}
