package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUncontrolledStoresAndNotifies(t *testing.T) {
	v := New("initial")
	var seen []string
	v.OnChange(func(s string) { seen = append(seen, s) })

	before := v.Version()
	v.Set("next")

	assert.Equal(t, "next", v.Get())
	assert.Equal(t, []string{"next"}, seen)
	assert.False(t, v.Controlled())
	assert.Greater(t, v.Version(), before)
}

func TestControlledOnlyNotifies(t *testing.T) {
	v := New(1)
	var seen []int
	v.OnChange(func(n int) { seen = append(seen, n) })

	v.Control(10)
	before := v.Version()
	v.Set(11)

	assert.Equal(t, 10, v.Get(), "controlled value ignores Set")
	assert.Equal(t, []int{11}, seen)
	assert.Equal(t, before, v.Version())

	v.Control(11)
	assert.Equal(t, 11, v.Get())
}

func TestReleaseResumesInternalValue(t *testing.T) {
	v := New(1)
	v.Set(2)
	v.Control(99)
	v.Release()

	assert.Equal(t, 2, v.Get())
	assert.False(t, v.Controlled())
}
