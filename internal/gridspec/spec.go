// Package gridspec reads declarative grid definitions and compiles them
// into columns, row ids and row feature rules for the grid engine.
package gridspec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidSpec = errors.New("invalid grid spec")

// Spec is the file form of a grid definition.
type Spec struct {
	ID       string        `yaml:"id,omitempty" json:"id,omitempty"`
	RowID    string        `yaml:"row-id,omitempty" json:"row_id,omitempty"`
	Columns  []ColumnSpec  `yaml:"columns" json:"columns"`
	Features []FeatureRule `yaml:"features,omitempty" json:"features,omitempty"`
}

// ColumnSpec declares one column. At most one of Field, Path and JMESPath
// may be set; with none set the column reads the field named Key.
type ColumnSpec struct {
	Key        string `yaml:"key" json:"key"`
	Title      string `yaml:"title,omitempty" json:"title,omitempty"`
	Field      string `yaml:"field,omitempty" json:"field,omitempty"`
	Path       string `yaml:"path,omitempty" json:"path,omitempty"`
	JMESPath   string `yaml:"jmespath,omitempty" json:"jmespath,omitempty"`
	FilterType string `yaml:"filter-type,omitempty" json:"filter_type,omitempty"`
	Sortable   *bool  `yaml:"sortable,omitempty" json:"sortable,omitempty"`
	Filterable *bool  `yaml:"filterable,omitempty" json:"filterable,omitempty"`
	Resizable  *bool  `yaml:"resizable,omitempty" json:"resizable,omitempty"`
	Compare    string `yaml:"compare,omitempty" json:"compare,omitempty"`
	Script     string `yaml:"script,omitempty" json:"script,omitempty"`
	Format     string `yaml:"format,omitempty" json:"format,omitempty"`
	Width      int    `yaml:"width,omitempty" json:"width,omitempty"`
	MinWidth   int    `yaml:"min-width,omitempty" json:"min_width,omitempty"`
	MaxWidth   int    `yaml:"max-width,omitempty" json:"max_width,omitempty"`
}

// FeatureRule narrows row interactions for rows matching the jq predicate
// When. Later matching rules override earlier ones field by field.
type FeatureRule struct {
	When       string `yaml:"when" json:"when"`
	Selectable *bool  `yaml:"selectable,omitempty" json:"selectable,omitempty"`
	Editable   *bool  `yaml:"editable,omitempty" json:"editable,omitempty"`
	Sortable   *bool  `yaml:"sortable,omitempty" json:"sortable,omitempty"`
	Filterable *bool  `yaml:"filterable,omitempty" json:"filterable,omitempty"`
	Searchable *bool  `yaml:"searchable,omitempty" json:"searchable,omitempty"`
}

// Compare modes.
const (
	CompareDefault = "default"
	CompareNatural = "natural"
	CompareScript  = "script"
)

// Load reads and parses the spec file at path.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grid spec: %w", err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// Parse decodes a YAML spec. Unknown keys are rejected.
func Parse(data []byte) (*Spec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var spec Spec
	if err := dec.Decode(&spec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidSpec)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks the declarations that do not need compiling.
func (s *Spec) Validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("%w: no columns declared", ErrInvalidSpec)
	}
	seen := make(map[string]struct{}, len(s.Columns))
	for i, c := range s.Columns {
		if c.Key == "" {
			return fmt.Errorf("%w: column %d has no key", ErrInvalidSpec, i)
		}
		if _, dup := seen[c.Key]; dup {
			return fmt.Errorf("%w: duplicate column key %q", ErrInvalidSpec, c.Key)
		}
		seen[c.Key] = struct{}{}

		sources := 0
		for _, v := range []string{c.Field, c.Path, c.JMESPath} {
			if v != "" {
				sources++
			}
		}
		if sources > 1 {
			return fmt.Errorf("%w: column %q sets more than one of field, path and jmespath", ErrInvalidSpec, c.Key)
		}

		switch c.Compare {
		case "", CompareDefault, CompareNatural:
			if c.Script != "" {
				return fmt.Errorf("%w: column %q has a script but compare is not %q", ErrInvalidSpec, c.Key, CompareScript)
			}
		case CompareScript:
			if c.Script == "" {
				return fmt.Errorf("%w: column %q uses compare %q without a script", ErrInvalidSpec, c.Key, CompareScript)
			}
		default:
			return fmt.Errorf("%w: column %q has unknown compare %q", ErrInvalidSpec, c.Key, c.Compare)
		}

		if c.Width < 0 || c.MinWidth < 0 || c.MaxWidth < 0 {
			return fmt.Errorf("%w: column %q has a negative width", ErrInvalidSpec, c.Key)
		}
		if c.MaxWidth > 0 && c.MinWidth > c.MaxWidth {
			return fmt.Errorf("%w: column %q min-width exceeds max-width", ErrInvalidSpec, c.Key)
		}
	}
	for i, f := range s.Features {
		if f.When == "" {
			return fmt.Errorf("%w: feature rule %d has no when predicate", ErrInvalidSpec, i)
		}
	}
	return nil
}

// Keys lists the declared column keys in order.
func (s *Spec) Keys() []string {
	keys := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		keys[i] = c.Key
	}
	return keys
}
