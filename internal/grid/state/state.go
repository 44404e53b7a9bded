// Package state provides the per-concern controlled/uncontrolled container
// used by the grid for search, filters, sort, paging, selection, expansion
// and column visibility.
package state

// Value holds one state concern. An uncontrolled Value owns its state and
// Set stores into it. A controlled Value reports the caller's value and Set
// only notifies the change callback; the caller applies the change by
// calling Control again.
type Value[T any] struct {
	internal   T
	external   T
	controlled bool
	onChange   func(T)
	version    uint64
}

// New returns an uncontrolled Value seeded with initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{internal: initial}
}

// Get returns the effective value.
func (v *Value[T]) Get() T {
	if v.controlled {
		return v.external
	}
	return v.internal
}

// Set requests a change. The change callback always fires.
func (v *Value[T]) Set(next T) {
	if !v.controlled {
		v.internal = next
		v.version++
	}
	if v.onChange != nil {
		v.onChange(next)
	}
}

// Control hands ownership to the caller and sets the value it reports.
func (v *Value[T]) Control(current T) {
	v.controlled = true
	v.external = current
	v.version++
}

// Release returns ownership to the Value, which resumes from the last value
// it stored itself.
func (v *Value[T]) Release() {
	if !v.controlled {
		return
	}
	v.controlled = false
	v.version++
}

func (v *Value[T]) Controlled() bool {
	return v.controlled
}

// OnChange registers the change callback, replacing any previous one.
func (v *Value[T]) OnChange(fn func(T)) {
	v.onChange = fn
}

// Version increases whenever the effective value may have changed.
func (v *Value[T]) Version() uint64 {
	return v.version
}
