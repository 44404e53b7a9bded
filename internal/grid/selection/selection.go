// Package selection implements the row selection controller: toggle,
// toggle-all, shift-click ranges and selection persistence across pages and
// filters.
package selection

import (
	"github.com/kong/gridctl/internal/grid/row"
	"github.com/kong/gridctl/internal/grid/state"
)

// Modifiers carries the keyboard modifiers of a toggle gesture.
type Modifiers struct {
	Shift bool
}

// Controller owns the set of selected row ids. Visible ids are pushed in by
// the caller after every processing pass; all range and toggle-all
// operations work in that visible order.
type Controller struct {
	value *state.Value[[]row.ID]

	cache        *row.Set
	cacheVersion uint64
	cacheValid   bool

	visible      []row.ID
	visibleIndex map[row.ID]int
	disabled     map[row.ID]struct{}

	anchor    row.ID
	hasAnchor bool

	persist  bool
	initial  []row.ID
	onChange func([]row.ID)
}

// Option configures a Controller.
type Option func(*Controller)

// WithInitial seeds the uncontrolled selection.
func WithInitial(ids ...row.ID) Option {
	return func(c *Controller) {
		c.initial = ids
	}
}

// WithPersistence keeps selected ids that leave the visible set. It is on by
// default; when off, SetVisible drops ids that are no longer visible.
func WithPersistence(persist bool) Option {
	return func(c *Controller) {
		c.persist = persist
	}
}

// WithOnChange registers the selection change callback.
func WithOnChange(fn func([]row.ID)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// New returns an uncontrolled, empty, persisting controller.
func New(opts ...Option) *Controller {
	c := &Controller{persist: true}
	for _, opt := range opts {
		opt(c)
	}
	c.value = state.New(row.NewSet(c.initial...).IDs())
	c.value.OnChange(c.onChange)
	return c
}

// State exposes the underlying container for Control, Release and OnChange.
func (c *Controller) State() *state.Value[[]row.ID] {
	return c.value
}

// SetVisible replaces the visible id order. The range anchor is forgotten
// when it is no longer visible.
func (c *Controller) SetVisible(ids []row.ID) {
	c.visible = append(c.visible[:0], ids...)
	c.visibleIndex = make(map[row.ID]int, len(ids))
	for i, id := range ids {
		if _, dup := c.visibleIndex[id]; !dup {
			c.visibleIndex[id] = i
		}
	}
	if c.hasAnchor && !c.isVisible(c.anchor) {
		c.forgetAnchor()
	}
	if !c.persist {
		sel := c.current()
		var gone []row.ID
		for _, id := range sel.IDs() {
			if !c.isVisible(id) {
				gone = append(gone, id)
			}
		}
		if len(gone) > 0 {
			next := sel.Clone()
			next.Remove(gone...)
			c.commit(next)
		}
	}
}

// SetDisabled marks ids that cannot be selected by toggles, ranges or
// select-all. Existing selections are kept.
func (c *Controller) SetDisabled(ids []row.ID) {
	c.disabled = make(map[row.ID]struct{}, len(ids))
	for _, id := range ids {
		c.disabled[id] = struct{}{}
	}
}

// ToggleRow flips id. With Shift and a visible anchor it toggles the whole
// visible range between the anchor and id as one unit: the range is removed
// when fully selected and added otherwise. Shift ranges do not move the
// anchor.
func (c *Controller) ToggleRow(id row.ID, mods Modifiers) {
	if c.isDisabled(id) {
		return
	}
	if mods.Shift && c.hasAnchor && c.isVisible(id) {
		ids := c.rangeIDs(c.anchor, id)
		next := c.current().Clone()
		if c.allSelected(ids) {
			next.Remove(ids...)
		} else {
			for _, rid := range ids {
				next.Add(rid)
			}
		}
		c.commit(next)
		return
	}

	next := c.current().Clone()
	if !next.Remove(id) {
		next.Add(id)
	}
	c.anchor, c.hasAnchor = id, true
	c.commit(next)
}

// ToggleAll deselects the visible ids when all of them are selected and
// otherwise adds them to the selection. Ids outside the visible set are
// never touched.
func (c *Controller) ToggleAll() {
	ids := c.selectableVisible()
	if len(ids) == 0 {
		return
	}
	next := c.current().Clone()
	if c.allSelected(ids) {
		next.Remove(ids...)
	} else {
		for _, id := range ids {
			next.Add(id)
		}
	}
	c.commit(next)
}

// SelectRange adds the inclusive visible range between from and to. It
// never removes ids and is a no-op when either end is not visible.
func (c *Controller) SelectRange(from, to row.ID) {
	if !c.isVisible(from) || !c.isVisible(to) {
		return
	}
	next := c.current().Clone()
	for _, id := range c.rangeIDs(from, to) {
		next.Add(id)
	}
	c.commit(next)
}

// ClearSelection empties the selection and forgets the anchor.
func (c *Controller) ClearSelection() {
	c.forgetAnchor()
	c.commit(row.NewSet())
}

// SelectAll replaces the selection with universe, or with the visible ids
// when universe is nil. Disabled ids are skipped.
func (c *Controller) SelectAll(universe []row.ID) {
	if universe == nil {
		universe = c.visible
	}
	next := row.NewSet()
	for _, id := range universe {
		if !c.isDisabled(id) {
			next.Add(id)
		}
	}
	c.commit(next)
}

// IsSelected reports membership. Ids need not be visible.
func (c *Controller) IsSelected(id row.ID) bool {
	return c.current().Has(id)
}

// Selected returns the selected ids in selection order.
func (c *Controller) Selected() []row.ID {
	return c.current().IDs()
}

func (c *Controller) Len() int {
	return c.current().Len()
}

// IsAllSelected reports whether there is at least one selectable visible id
// and every one of them is selected.
func (c *Controller) IsAllSelected() bool {
	ids := c.selectableVisible()
	return len(ids) > 0 && c.allSelected(ids)
}

// IsIndeterminate reports whether some, but not all, selectable visible ids
// are selected.
func (c *Controller) IsIndeterminate() bool {
	ids := c.selectableVisible()
	sel := c.current()
	n := 0
	for _, id := range ids {
		if sel.Has(id) {
			n++
		}
	}
	return n > 0 && n < len(ids)
}

// Anchor returns the last toggled id used for shift ranges.
func (c *Controller) Anchor() (row.ID, bool) {
	return c.anchor, c.hasAnchor
}

func (c *Controller) current() *row.Set {
	if !c.cacheValid || c.cacheVersion != c.value.Version() {
		c.cache = row.NewSet(c.value.Get()...)
		c.cacheVersion = c.value.Version()
		c.cacheValid = true
	}
	return c.cache
}

func (c *Controller) commit(next *row.Set) {
	if next.Equal(c.current()) {
		return
	}
	c.value.Set(next.IDs())
}

func (c *Controller) forgetAnchor() {
	c.anchor, c.hasAnchor = "", false
}

func (c *Controller) isVisible(id row.ID) bool {
	_, ok := c.visibleIndex[id]
	return ok
}

func (c *Controller) isDisabled(id row.ID) bool {
	_, ok := c.disabled[id]
	return ok
}

// rangeIDs returns the selectable visible ids between a and b inclusive, in
// visible order regardless of which end comes first.
func (c *Controller) rangeIDs(a, b row.ID) []row.ID {
	i, j := c.visibleIndex[a], c.visibleIndex[b]
	if i > j {
		i, j = j, i
	}
	out := make([]row.ID, 0, j-i+1)
	for _, id := range c.visible[i : j+1] {
		if !c.isDisabled(id) {
			out = append(out, id)
		}
	}
	return out
}

func (c *Controller) selectableVisible() []row.ID {
	out := make([]row.ID, 0, len(c.visible))
	for _, id := range c.visible {
		if !c.isDisabled(id) {
			out = append(out, id)
		}
	}
	return out
}

func (c *Controller) allSelected(ids []row.ID) bool {
	sel := c.current()
	for _, id := range ids {
		if !sel.Has(id) {
			return false
		}
	}
	return true
}
