package value

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNull(t *testing.T) {
	var nilPtr *int
	var nilMap map[string]any
	var nilSlice []string

	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(nilPtr))
	assert.True(t, IsNull(nilMap))
	assert.True(t, IsNull(nilSlice))
	assert.False(t, IsNull(0))
	assert.False(t, IsNull(""))
	assert.False(t, IsNull(false))
}

func TestString(t *testing.T) {
	n := 42
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string", in: "Ann", want: "Ann"},
		{name: "int", in: 30, want: "30"},
		{name: "integral float", in: 30.0, want: "30"},
		{name: "fractional float", in: 2.5, want: "2.5"},
		{name: "bool", in: true, want: "true"},
		{name: "pointer", in: &n, want: "42"},
		{name: "time", in: ts, want: "2024-03-01T12:00:00Z"},
		{name: "json number", in: json.Number("7"), want: "7"},
		{name: "bytes", in: []byte("raw"), want: "raw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := String(tt.in); got != tt.want {
				t.Fatalf("String(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, Equal(30, 30))
	assert.True(t, Equal(30, 30.0), "numeric kinds compare by value")
	assert.True(t, Equal(int64(5), uint8(5)))
	assert.True(t, Equal("a", "a"))
	assert.True(t, Equal(nil, nil))
	assert.True(t, Equal(ts, ts.In(time.FixedZone("x", 3600))))
	assert.True(t, Equal([]int{1, 2}, []int{1, 2}))

	assert.False(t, Equal(30, "30"), "strict equality does not coerce")
	assert.False(t, Equal("a", "A"))
	assert.False(t, Equal(nil, 0))
	assert.False(t, Equal(true, 1))
}

func TestOrder(t *testing.T) {
	early := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		a, b   any
		want   int
		wantOK bool
	}{
		{name: "numbers", a: 1, b: 2.5, want: -1, wantOK: true},
		{name: "equal numbers", a: 3, b: 3.0, want: 0, wantOK: true},
		{name: "number vs numeric string", a: 10, b: "9", want: 1, wantOK: true},
		{name: "dates", a: late, b: early, want: 1, wantOK: true},
		{name: "date vs date string", a: early, b: "2023-06-01", want: -1, wantOK: true},
		{name: "strings", a: "abc", b: "abd", want: -1, wantOK: true},
		{name: "bools", a: false, b: true, want: -1, wantOK: true},
		{name: "null operand", a: nil, b: 1, wantOK: false},
		{name: "number vs word", a: 1, b: "one", wantOK: false},
		{name: "bool vs number", a: true, b: 1, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Order(tt.a, tt.b)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	assert.Negative(t, Compare("Ann", "Bob"))
	assert.Positive(t, Compare("bob", "Ann"), "locale order ignores case at the primary level")
	assert.Negative(t, Compare(9, 10))
	assert.Zero(t, Compare(3, 3.0))
	assert.Positive(t, Compare(time.Unix(10, 0), time.Unix(5, 0)))
	assert.Negative(t, Compare(true, "zzz"), "mixed kinds fall back to stringified locale order")
}

func TestParseTime(t *testing.T) {
	for _, in := range []string{"2024-03-01", "2024-03-01T10:00:00Z", "2024-03-01 10:00:00"} {
		_, ok := ParseTime(in)
		assert.True(t, ok, in)
	}
	_, ok := ParseTime("yesterday")
	assert.False(t, ok)
	_, ok = ParseTime("  ")
	assert.False(t, ok)
}
