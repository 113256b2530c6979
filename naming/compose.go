package naming

import (
	"fmt"
	"strconv"
	"strings"
)

// Separator joins the fragments contributed by stacked parameter sets.
const Separator = "__"

// Format selects how a fragment is built from an entry.
type Format int

const (
	FormatDefault   Format = iota // ordinal plus key or rendered value
	FormatIndexOnly               // ordinal only
)

// String returns the textual form used in configuration files and flags.
func (f Format) String() string {
	switch f {
	case FormatDefault:
		return "default"
	case FormatIndexOnly:
		return "index_only"
	}
	return "Format(" + strconv.Itoa(int(f)) + ")"
}

// ParseFormat parses "default" or "index_only" (also "index-only").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return FormatDefault, nil
	case "index_only", "index-only", "indexonly":
		return FormatIndexOnly, nil
	}
	return FormatDefault, fmt.Errorf("unknown name format %q", s)
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Width returns the number of decimal digits needed for the ordinals of a
// set with n entries.
func Width(n int) int {
	if n < 1 {
		return 1
	}
	return len(strconv.Itoa(n))
}

// Ordinal zero-pads index to width digits.
func Ordinal(index, width int) string {
	return fmt.Sprintf("%0*d", width, index)
}

// Fragment builds the name contribution of one parameter entry. An empty
// key means the entry has no explicit name; the value is rendered instead.
// Values without a safe rendering contribute the ordinal only.
func Fragment(index, width int, key string, value any, f Format) string {
	ord := Ordinal(index, width)
	if f == FormatIndexOnly {
		return ord
	}
	if key != "" {
		if s := Sanitize(key); s != "" {
			return ord + "_" + s
		}
		return ord
	}
	if s, ok := Render(value); ok {
		return ord + "_" + s
	}
	return ord
}

// Compose joins base and fragments with Separator. Empty parts are skipped.
func Compose(base string, fragments ...string) string {
	parts := make([]string, 0, len(fragments)+1)
	if base != "" {
		parts = append(parts, base)
	}
	for _, f := range fragments {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, Separator)
}

// Join attaches the composed fragments of a case to its base name. Index-only
// names put a single "_" between the base and the first ordinal
// (test_3, test_0__1); the default format uses Separator throughout.
func Join(base, composed string, f Format) string {
	if f == FormatIndexOnly && base != "" && composed != "" {
		return base + "_" + composed
	}
	return Compose(base, composed)
}

// Name is the single-set shortcut: base plus one entry fragment.
func Name(base string, index, width int, key string, value any, f Format) string {
	return Identifier(Join(base, Fragment(index, width, key, value, f), f))
}
