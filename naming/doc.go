package naming

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatDoc substitutes {} / {0} / {name} placeholders in doc with the
// given arguments. "{{" and "}}" are literal braces. Conversion and format
// specs ("{0!r}", "{x:>4}") are accepted and ignored. Any placeholder that
// cannot be filled, or mixing automatic and manual numbering, returns doc
// unchanged with ok=false.
func FormatDoc(doc string, args []any, kwargs map[string]any) (string, bool) {
	var b strings.Builder
	b.Grow(len(doc))

	auto, manual := 0, false
	for i := 0; i < len(doc); i++ {
		c := doc[i]
		switch c {
		case '{':
			if i+1 < len(doc) && doc[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(doc[i+1:], '}')
			if end < 0 {
				return doc, false
			}
			field := doc[i+1 : i+1+end]
			if j := strings.IndexAny(field, "!:"); j >= 0 {
				field = field[:j]
			}

			var v any
			switch {
			case field == "":
				if manual || auto >= len(args) {
					return doc, false
				}
				v = args[auto]
				auto++
			case isIndex(field):
				n, _ := strconv.Atoi(field)
				if auto > 0 || n >= len(args) {
					return doc, false
				}
				manual = true
				v = args[n]
			default:
				kv, ok := kwargs[field]
				if !ok {
					return doc, false
				}
				v = kv
			}
			b.WriteString(fmt.Sprint(v))
			i += end + 1
		case '}':
			if i+1 < len(doc) && doc[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return doc, false
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), true
}

func isIndex(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
