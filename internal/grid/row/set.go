package row

import "slices"

// Set is an insertion-ordered set of row ids. The zero value is empty and
// ready to use.
type Set struct {
	order   []ID
	members map[ID]struct{}
}

// NewSet builds a set from ids, dropping duplicates.
func NewSet(ids ...ID) *Set {
	s := &Set{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *Set) Has(id ID) bool {
	if s == nil {
		return false
	}
	_, ok := s.members[id]
	return ok
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Add inserts id and reports whether it was absent.
func (s *Set) Add(id ID) bool {
	if s.members == nil {
		s.members = make(map[ID]struct{})
	}
	if _, ok := s.members[id]; ok {
		return false
	}
	s.members[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Remove deletes the given ids and reports whether any was present.
func (s *Set) Remove(ids ...ID) bool {
	if s.Len() == 0 || len(ids) == 0 {
		return false
	}
	drop := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.members[id]; ok {
			drop[id] = struct{}{}
			delete(s.members, id)
		}
	}
	if len(drop) == 0 {
		return false
	}
	s.order = slices.DeleteFunc(s.order, func(id ID) bool {
		_, ok := drop[id]
		return ok
	})
	return true
}

// Clear empties the set.
func (s *Set) Clear() {
	s.order = nil
	s.members = nil
}

// IDs returns the members in insertion order.
func (s *Set) IDs() []ID {
	if s == nil {
		return []ID{}
	}
	out := make([]ID, len(s.order))
	copy(out, s.order)
	return out
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	if s == nil {
		return &Set{}
	}
	return NewSet(s.order...)
}

// Equal reports whether both sets have the same members, ignoring order.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, id := range other.IDs() {
		if !s.Has(id) {
			return false
		}
	}
	return true
}
