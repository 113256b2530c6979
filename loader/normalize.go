package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrKeyCollision reports a mapping with two keys that print the same,
// such as YAML's 1 and "1".
var ErrKeyCollision = errors.New("mapping keys collide")

// Normalize converts decoder output into the shapes the rest of the
// library expects: integers as int where they fit, floats as float64,
// mappings as map[string]any and sequences as []any. A mapping whose keys
// would merge once converted to strings is rejected with ErrKeyCollision.
func Normalize(v any) (any, error) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i), nil
		}
		if f, err := t.Float64(); err == nil {
			return f, nil
		}
		return t.String(), nil
	case int64:
		if t >= math.MinInt && t <= math.MaxInt {
			return int(t), nil
		}
		return t, nil
	case uint64:
		if t <= math.MaxInt {
			return int(t), nil
		}
		return t, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			key := fmt.Sprint(k)
			if _, dup := out[key]; dup {
				return nil, fmt.Errorf("%w: key %q appears more than once", ErrKeyCollision, key)
			}
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	}
	return v, nil
}
