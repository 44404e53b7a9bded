package column

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email_address,omitempty"`
	age   int
}

func TestNewSet(t *testing.T) {
	set, err := NewSet(
		Column[person]{Key: "name"},
		Column[person]{Key: "age", FilterType: FilterNumber},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"name", "age"}, set.Keys())

	name, ok := set.Lookup("name")
	require.True(t, ok)
	assert.Equal(t, FilterText, name.FilterType, "filter type defaults to text")

	_, ok = set.Lookup("missing")
	assert.False(t, ok)
}

func TestNewSetRejectsInvalidKeys(t *testing.T) {
	_, err := NewSet(Column[person]{Key: "a"}, Column[person]{Key: "a"})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	_, err = NewSet(Column[person]{Key: ""})
	if !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestNilSetIsEmpty(t *testing.T) {
	var set *Set[person]
	assert.Zero(t, set.Len())
	assert.Nil(t, set.Keys())
	_, ok := set.Lookup("name")
	assert.False(t, ok)
}

func TestColumnDefaults(t *testing.T) {
	no := false
	c := Column[person]{Key: "name", Sortable: &no}

	assert.False(t, c.IsSortable())
	assert.True(t, c.IsFilterable())
	assert.True(t, c.IsResizable())
	assert.Equal(t, "name", c.Header())
	assert.Nil(t, c.Value(person{}), "no accessor reads nil")
}

func TestField(t *testing.T) {
	p := person{ID: 7, Name: "Ann", Email: "ann@example.com", age: 30}

	assert.Equal(t, "Ann", Field[person]("Name")(p))
	assert.Equal(t, 7, Field[person]("id")(p), "json tag lookup")
	assert.Equal(t, "ann@example.com", Field[*person]("email_address")(&p))
	assert.Nil(t, Field[person]("age")(p), "unexported fields are not readable")
	assert.Nil(t, Field[*person]("name")(nil))

	rec := map[string]any{"name": "Bob"}
	assert.Equal(t, "Bob", Field[map[string]any]("name")(rec))
	assert.Nil(t, Field[map[string]any]("missing")(rec))
}

func TestFromFields(t *testing.T) {
	cols := FromFields[map[string]any]("id", "name")
	require.Len(t, cols, 2)
	assert.Equal(t, "id", cols[0].Key)
	assert.Equal(t, 3, cols[0].Value(map[string]any{"id": 3}))
}

func TestNatural(t *testing.T) {
	in := []string{"row10", "row2", "row1"}
	slices.SortFunc(in, func(a, b string) int { return Natural[person](a, b, person{}, person{}) })
	assert.Equal(t, []string{"row1", "row2", "row10"}, in)
	assert.Zero(t, Natural[person]("x", "x", person{}, person{}))
}

func TestParseFilterType(t *testing.T) {
	ft, err := ParseFilterType("")
	require.NoError(t, err)
	assert.Equal(t, FilterText, ft)

	ft, err = ParseFilterType("date")
	require.NoError(t, err)
	assert.Equal(t, FilterDate, ft)

	_, err = ParseFilterType("money")
	assert.Error(t, err)
}
