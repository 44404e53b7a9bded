// Package expansion tracks which rows have their detail content expanded.
package expansion

import (
	"fmt"

	"github.com/kong/gridctl/internal/grid/row"
	"github.com/kong/gridctl/internal/grid/state"
)

// Policy decides how many rows may be expanded at once.
type Policy string

const (
	Single   Policy = "single"
	Multiple Policy = "multiple"
)

// ParsePolicy validates a textual policy. The empty string maps to Multiple.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", Multiple:
		return Multiple, nil
	case Single:
		return Single, nil
	}
	return "", fmt.Errorf("unknown expansion policy %q", s)
}

// Controller owns the expanded row ids.
type Controller struct {
	policy Policy
	value  *state.Value[[]row.ID]

	initial  []row.ID
	onChange func([]row.ID)
}

// Option configures a Controller.
type Option func(*Controller)

func WithInitial(ids ...row.ID) Option {
	return func(c *Controller) {
		c.initial = ids
	}
}

func WithOnChange(fn func([]row.ID)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// New returns an uncontrolled controller. Under Single only the first
// initial id is kept.
func New(policy Policy, opts ...Option) *Controller {
	if policy != Single {
		policy = Multiple
	}
	c := &Controller{policy: policy}
	for _, opt := range opts {
		opt(c)
	}
	initial := row.NewSet(c.initial...).IDs()
	if policy == Single && len(initial) > 1 {
		initial = initial[:1]
	}
	c.value = state.New(initial)
	c.value.OnChange(c.onChange)
	return c
}

// State exposes the underlying container for Control and Release.
func (c *Controller) State() *state.Value[[]row.ID] {
	return c.value
}

func (c *Controller) Policy() Policy {
	return c.policy
}

// Toggle closes id when it is open. Otherwise it opens id, replacing every
// other open row under Single.
func (c *Controller) Toggle(id row.ID) {
	cur := row.NewSet(c.value.Get()...)
	switch {
	case cur.Has(id):
		cur.Remove(id)
	case c.policy == Single:
		cur = row.NewSet(id)
	default:
		cur.Add(id)
	}
	c.value.Set(cur.IDs())
}

// Collapse closes id if it is open.
func (c *Controller) Collapse(id row.ID) {
	if c.IsExpanded(id) {
		c.Toggle(id)
	}
}

// CollapseAll closes every row.
func (c *Controller) CollapseAll() {
	if len(c.value.Get()) == 0 {
		return
	}
	c.value.Set([]row.ID{})
}

func (c *Controller) IsExpanded(id row.ID) bool {
	for _, e := range c.value.Get() {
		if e == id {
			return true
		}
	}
	return false
}

// Expanded returns the open ids in the order they were opened.
func (c *Controller) Expanded() []row.ID {
	return row.NewSet(c.value.Get()...).IDs()
}

func (c *Controller) Len() int {
	return len(c.value.Get())
}
