// Package value holds the dynamic value helpers shared by the grid stages:
// null detection, display stringification, strict equality, and the natural
// and locale-aware orderings used by filtering and sorting.
package value

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// collate.Collator keeps an internal buffer and is not safe for concurrent use.
var collators = sync.Pool{
	New: func() any {
		return collate.New(language.Und)
	},
}

// IsNull reports whether v is nil or a typed nil (pointer, map, slice,
// interface, func or chan).
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// String renders v the way the grid displays and searches it. Null values
// render as the empty string.
func String(v any) string {
	v = deref(v)
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float32:
		return formatFloat(float64(t))
	case float64:
		return formatFloat(t)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	if math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Number converts any numeric kind (including json.Number) to float64.
func Number(v any) (float64, bool) {
	v = deref(v)
	if v == nil {
		return 0, false
	}
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// Time extracts a time.Time from v.
func Time(v any) (time.Time, bool) {
	v = deref(v)
	t, ok := v.(time.Time)
	return t, ok
}

// ParseTime parses the date and timestamp layouts accepted in filter values
// and text sources.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Equal implements strict equality: values of different kinds are never
// equal, except that all numeric kinds compare by numeric value.
func Equal(a, b any) bool {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, ok := Number(a); ok {
		y, ok := Number(b)
		return ok && x == y
	}
	if x, ok := a.(time.Time); ok {
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	if ra.Comparable() && rb.Comparable() {
		return ra.Equal(rb)
	}
	return reflect.DeepEqual(a, b)
}

// Order compares a and b by their natural ordering (numbers, dates, strings,
// booleans). The second result is false when the two values have no common
// ordering, including when either is null. A string operand is coerced to the
// other operand's kind when it parses as a number or a date.
func Order(a, b any) (int, bool) {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return 0, false
	}

	if x, ok := Number(a); ok {
		if y, ok := numberOrParse(b); ok {
			return cmp.Compare(x, y), true
		}
		return 0, false
	}
	if x, ok := a.(time.Time); ok {
		if y, ok := timeOrParse(b); ok {
			return x.Compare(y), true
		}
		return 0, false
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), true
		}
		if y, ok := Number(b); ok {
			if xf, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
				return cmp.Compare(xf, y), true
			}
			return 0, false
		}
		if y, ok := b.(time.Time); ok {
			if xt, ok := ParseTime(x); ok {
				return xt.Compare(y), true
			}
		}
		return 0, false
	case bool:
		if y, ok := b.(bool); ok {
			return cmp.Compare(boolRank(x), boolRank(y)), true
		}
	}
	return 0, false
}

// Compare is the default per-pair sort comparison for two non-null values:
// locale order for strings, numeric order for numbers, chronological order
// for dates, and locale order of the stringified values otherwise.
func Compare(a, b any) int {
	a, b = deref(a), deref(b)
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			return LocaleCompare(x, y)
		}
	}
	if x, ok := Number(a); ok {
		if y, ok := Number(b); ok {
			return cmp.Compare(x, y)
		}
	}
	if x, ok := a.(time.Time); ok {
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}
	return LocaleCompare(String(a), String(b))
}

// LocaleCompare orders two strings using the root Unicode collation.
func LocaleCompare(a, b string) int {
	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	return c.CompareString(a, b)
}

func numberOrParse(v any) (float64, bool) {
	if f, ok := Number(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}

func timeOrParse(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	if s, ok := v.(string); ok {
		return ParseTime(s)
	}
	return time.Time{}, false
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func deref(v any) any {
	for v != nil {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		v = rv.Elem().Interface()
	}
	return v
}
