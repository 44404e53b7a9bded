package column

import (
	"reflect"
	"strings"

	"github.com/fvbommel/sortorder"

	"github.com/kong/gridctl/internal/grid/value"
)

// Field returns an accessor reading name from a map with string keys or from
// a struct field (matched by Go name, then by json tag). Missing fields read
// as nil.
func Field[T any](name string) Accessor[T] {
	return func(row T) any {
		return lookupField(reflect.ValueOf(row), name)
	}
}

// FromFields declares one column per field name, in order, each reading the
// field through Field.
func FromFields[T any](names ...string) []Column[T] {
	cols := make([]Column[T], 0, len(names))
	for _, name := range names {
		cols = append(cols, Column[T]{
			Key:      name,
			Title:    name,
			Accessor: Field[T](name),
		})
	}
	return cols
}

// Natural orders the stringified values so that embedded digit runs compare
// numerically ("row2" before "row10").
func Natural[T any](a, b any, _, _ T) int {
	as, bs := value.String(a), value.String(b)
	switch {
	case sortorder.NaturalLess(as, bs):
		return -1
	case sortorder.NaturalLess(bs, as):
		return 1
	}
	return 0
}

func lookupField(v reflect.Value, name string) any {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() { //nolint:exhaustive
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil
		}
		mv := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if !mv.IsValid() {
			return nil
		}
		return mv.Interface()
	case reflect.Struct:
		if f := v.FieldByName(name); f.IsValid() && f.CanInterface() {
			return f.Interface()
		}
		t := v.Type()
		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if tag == name {
				return v.Field(i).Interface()
			}
		}
	}
	return nil
}
