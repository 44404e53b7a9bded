package gridspec

import (
	"bytes"
	"cmp"
	"fmt"
	"reflect"
	"strings"
	"text/template"

	sprig "github.com/Masterminds/sprig/v3"
	jmespath "github.com/jmespath/go-jmespath"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/kong/gridctl/internal/grid/column"
	"github.com/kong/gridctl/internal/grid/row"
	"github.com/kong/gridctl/internal/grid/value"
	"github.com/kong/gridctl/internal/source"
)

// Compiled is a spec ready for the grid engine.
type Compiled struct {
	ID       string
	Columns  []column.Column[source.Record]
	RowID    row.IDFunc[source.Record]
	Features row.FeatureFunc[source.Record]

	formats map[string]*template.Template
}

// Compile turns a validated spec into engine declarations.
func Compile(s *Spec) (*Compiled, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	c := &Compiled{
		ID:      s.ID,
		Columns: make([]column.Column[source.Record], 0, len(s.Columns)),
		formats: make(map[string]*template.Template),
	}

	for _, cs := range s.Columns {
		col, err := compileColumn(cs)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q: %w", ErrInvalidSpec, cs.Key, err)
		}
		c.Columns = append(c.Columns, col)

		if cs.Format != "" {
			tpl, err := template.New(cs.Key).Funcs(sprig.FuncMap()).Parse(cs.Format)
			if err != nil {
				return nil, fmt.Errorf("%w: column %q format: %w", ErrInvalidSpec, cs.Key, err)
			}
			c.formats[cs.Key] = tpl
		}
	}

	rowID, err := compileRowID(s.RowID)
	if err != nil {
		return nil, fmt.Errorf("%w: row-id: %w", ErrInvalidSpec, err)
	}
	c.RowID = rowID

	features, err := compileFeatures(s.Features)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	c.Features = features
	return c, nil
}

// Format renders a cell for display through the column's format template.
// Columns without a template, and template failures, use the plain string
// form of the value.
func (c *Compiled) Format(key string, v any) string {
	tpl, ok := c.formats[key]
	if !ok || value.IsNull(v) {
		return value.String(v)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, v); err != nil {
		return value.String(v)
	}
	return buf.String()
}

func compileColumn(cs ColumnSpec) (column.Column[source.Record], error) {
	filterType, err := column.ParseFilterType(cs.FilterType)
	if err != nil {
		return column.Column[source.Record]{}, err
	}
	col := column.Column[source.Record]{
		Key:        cs.Key,
		Title:      cs.Title,
		Sortable:   cs.Sortable,
		Filterable: cs.Filterable,
		Resizable:  cs.Resizable,
		FilterType: filterType,
		Width:      cs.Width,
		MinWidth:   cs.MinWidth,
		MaxWidth:   cs.MaxWidth,
	}

	switch {
	case cs.Path != "":
		prog, err := compileJQ(cs.Path)
		if err != nil {
			return col, err
		}
		col.Accessor = prog.first
	case cs.JMESPath != "":
		jp, err := jmespath.Compile(cs.JMESPath)
		if err != nil {
			return col, fmt.Errorf("jmespath %q: %w", cs.JMESPath, err)
		}
		col.Accessor = func(rec source.Record) any {
			v, err := jp.Search(map[string]any(rec))
			if err != nil {
				return nil
			}
			return v
		}
	default:
		col.Accessor = fieldAccessor(cmp.Or(cs.Field, cs.Key))
	}

	switch cs.Compare {
	case CompareNatural:
		col.Compare = column.Natural[source.Record]
	case CompareScript:
		fn, err := compileScript(cs.Script)
		if err != nil {
			return col, err
		}
		col.Compare = func(a, b any, _, _ source.Record) int { return fn(a, b) }
	}
	return col, nil
}

func fieldAccessor(name string) column.Accessor[source.Record] {
	return func(rec source.Record) any { return rec[name] }
}

func compileRowID(expr string) (row.IDFunc[source.Record], error) {
	if expr == "" {
		return nil, nil
	}
	read := fieldAccessor(expr)
	if strings.HasPrefix(expr, ".") {
		prog, err := compileJQ(expr)
		if err != nil {
			return nil, err
		}
		read = prog.first
	}
	return func(rec source.Record, index int) row.ID {
		v := read(rec)
		if value.IsNull(v) {
			return row.IndexID(index)
		}
		return row.IDOf(v)
	}, nil
}

type compiledRule struct {
	when *jqProgram
	rule FeatureRule
}

func compileFeatures(rules []FeatureRule) (row.FeatureFunc[source.Record], error) {
	if len(rules) == 0 {
		return nil, nil
	}
	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		prog, err := compileJQ(r.When)
		if err != nil {
			return nil, fmt.Errorf("feature rule %d: %w", i, err)
		}
		compiled = append(compiled, compiledRule{when: prog, rule: r})
	}

	return func(rec source.Record, _ int) *row.Features {
		var (
			f       row.Features
			matched bool
		)
		for _, c := range compiled {
			if !c.when.truthy(rec) {
				continue
			}
			matched = true
			f.Selectable = overlay(f.Selectable, c.rule.Selectable)
			f.Editable = overlay(f.Editable, c.rule.Editable)
			f.Sortable = overlay(f.Sortable, c.rule.Sortable)
			f.Filterable = overlay(f.Filterable, c.rule.Filterable)
			f.Searchable = overlay(f.Searchable, c.rule.Searchable)
		}
		if !matched {
			return nil
		}
		return &f
	}, nil
}

func overlay(cur, next *bool) *bool {
	if next != nil {
		return next
	}
	return cur
}

// scriptPrelude makes a few standard packages available to compare
// scripts. The blank references keep unused imports legal.
const scriptPrelude = `package compare

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	_ = math.Abs
	_ = strconv.Itoa
	_ = strings.Compare
	_ = time.Now
)

var Fn = %s
`

// compileScript interprets a Go function literal of the form
// func(a, b any) int.
func compileScript(script string) (func(a, b any) int, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("load script stdlib: %w", err)
	}
	if _, err := i.Eval(fmt.Sprintf(scriptPrelude, script)); err != nil {
		return nil, fmt.Errorf("compile compare script: %w", err)
	}
	v, err := i.Eval("compare.Fn")
	if err != nil {
		return nil, fmt.Errorf("compile compare script: %w", err)
	}
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("compare script must be a function, got %s", v.Kind())
	}
	fn, ok := v.Interface().(func(any, any) int)
	if !ok {
		return nil, fmt.Errorf("compare script must have type func(a, b any) int, got %s", v.Type())
	}
	return fn, nil
}
