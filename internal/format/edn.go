package format

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// WriteEDN writes an EDN rendition of v.
//
// Values go through encoding/json first so json tags decide field names; map
// keys become kebab-case keywords (createdAt -> :created-at).
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	e := ednEncoder{w: bw, pretty: pretty}
	e.value(x, 0)
	bw.WriteByte('\n')
	return bw.Flush()
}

type ednEncoder struct {
	w      *bufio.Writer
	pretty bool
}

func (e ednEncoder) value(v any, depth int) {
	switch t := v.(type) {
	case nil:
		e.w.WriteString("nil")
	case bool:
		e.w.WriteString(strconv.FormatBool(t))
	case string:
		e.w.WriteString(strconv.Quote(t))
	case float64:
		// JSON numbers decode as float64; print integral values without a fraction.
		if t == float64(int64(t)) {
			e.w.WriteString(strconv.FormatInt(int64(t), 10))
		} else {
			e.w.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
		}
	case []any:
		e.collection('[', ']', len(t), depth, func(i int) { e.value(t[i], depth+1) })
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.collection('{', '}', len(keys), depth, func(i int) {
			e.w.WriteByte(':')
			e.w.WriteString(ednKeyword(keys[i]))
			e.w.WriteByte(' ')
			e.value(t[keys[i]], depth+1)
		})
	default:
		e.w.WriteString(strconv.Quote(fmt.Sprint(v)))
	}
}

func (e ednEncoder) collection(opening, closing byte, n, depth int, item func(i int)) {
	e.w.WriteByte(opening)
	if n == 0 {
		e.w.WriteByte(closing)
		return
	}
	for i := 0; i < n; i++ {
		if e.pretty {
			e.w.WriteByte('\n')
			e.w.WriteString(strings.Repeat("  ", depth+1))
		} else if i > 0 {
			e.w.WriteByte(' ')
		}
		item(i)
	}
	if e.pretty {
		e.w.WriteByte('\n')
		e.w.WriteString(strings.Repeat("  ", depth))
	}
	e.w.WriteByte(closing)
}

func ednKeyword(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == ' ' || r == '_':
			b.WriteByte('-')
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
