package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kong/gridctl/internal/grid/row"
)

func visible(ids ...row.ID) []row.ID { return ids }

func TestToggleRow(t *testing.T) {
	c := New()
	c.SetVisible(visible("1", "2", "3"))

	c.ToggleRow("2", Modifiers{})
	assert.Equal(t, []row.ID{"2"}, c.Selected())
	anchor, ok := c.Anchor()
	require.True(t, ok)
	assert.Equal(t, row.ID("2"), anchor)

	c.ToggleRow("2", Modifiers{})
	assert.Empty(t, c.Selected())
}

func TestShiftClickTogglesRangeAsUnit(t *testing.T) {
	c := New()
	c.SetVisible(visible("1", "2", "3", "4", "5"))

	c.ToggleRow("2", Modifiers{})
	c.ToggleRow("4", Modifiers{Shift: true})
	assert.ElementsMatch(t, []row.ID{"2", "3", "4"}, c.Selected())

	c.ToggleRow("4", Modifiers{Shift: true})
	assert.Empty(t, c.Selected())
}

func TestShiftRangeIsSymmetric(t *testing.T) {
	forward := New()
	forward.SetVisible(visible("1", "2", "3", "4", "5"))
	forward.ToggleRow("2", Modifiers{})
	forward.ToggleRow("5", Modifiers{Shift: true})

	backward := New()
	backward.SetVisible(visible("1", "2", "3", "4", "5"))
	backward.ToggleRow("5", Modifiers{})
	backward.ToggleRow("2", Modifiers{Shift: true})

	assert.ElementsMatch(t, forward.Selected(), backward.Selected())
	assert.ElementsMatch(t, []row.ID{"2", "3", "4", "5"}, forward.Selected())
}

func TestShiftWithoutAnchorIsPlainToggle(t *testing.T) {
	c := New()
	c.SetVisible(visible("1", "2", "3"))
	c.ToggleRow("3", Modifiers{Shift: true})
	assert.Equal(t, []row.ID{"3"}, c.Selected())
}

func TestAnchorResetsWhenNotVisible(t *testing.T) {
	c := New()
	c.SetVisible(visible("1", "2", "3"))
	c.ToggleRow("1", Modifiers{})

	c.SetVisible(visible("4", "5", "6"))
	_, ok := c.Anchor()
	assert.False(t, ok)

	c.ToggleRow("6", Modifiers{Shift: true})
	assert.ElementsMatch(t, []row.ID{"1", "6"}, c.Selected(), "no range from an invisible anchor")
}

func TestToggleAll(t *testing.T) {
	c := New(WithInitial("9"))
	c.SetVisible(visible("1", "2", "3"))

	c.ToggleRow("1", Modifiers{})
	assert.True(t, c.IsIndeterminate())
	assert.False(t, c.IsAllSelected())

	c.ToggleAll()
	assert.ElementsMatch(t, []row.ID{"9", "1", "2", "3"}, c.Selected(), "toggle-all unions")
	assert.True(t, c.IsAllSelected())
	assert.False(t, c.IsIndeterminate())

	c.ToggleAll()
	assert.Equal(t, []row.ID{"9"}, c.Selected(), "toggle-all off keeps ids outside the view")
}

func TestSelectRangeOnlyAdds(t *testing.T) {
	c := New()
	c.SetVisible(visible("a", "b", "c", "d"))
	c.ToggleRow("b", Modifiers{})

	c.SelectRange("d", "b")
	assert.ElementsMatch(t, []row.ID{"b", "c", "d"}, c.Selected())

	c.SelectRange("b", "d")
	assert.ElementsMatch(t, []row.ID{"b", "c", "d"}, c.Selected())

	c.SelectRange("a", "zz")
	assert.Len(t, c.Selected(), 3, "invisible end is a no-op")
}

func TestClearAndSelectAll(t *testing.T) {
	c := New()
	c.SetVisible(visible("1", "2"))
	c.ToggleRow("1", Modifiers{})

	c.ClearSelection()
	assert.Empty(t, c.Selected())
	_, ok := c.Anchor()
	assert.False(t, ok)

	c.SelectAll(nil)
	assert.Equal(t, []row.ID{"1", "2"}, c.Selected())

	c.SelectAll([]row.ID{"7", "8"})
	assert.Equal(t, []row.ID{"7", "8"}, c.Selected(), "universe replaces the selection")
	assert.False(t, c.IsAllSelected())
	assert.False(t, c.IsIndeterminate(), "stale ids never affect the visible flags")
}

func TestSelectionPersistsAcrossFilters(t *testing.T) {
	c := New()
	c.SetVisible(visible("1", "2", "3"))
	c.ToggleRow("2", Modifiers{})

	c.SetVisible(visible("1", "3"))
	c.SetVisible(visible("1", "2", "3"))
	assert.True(t, c.IsSelected("2"))
}

func TestWithoutPersistenceDropsHiddenIDs(t *testing.T) {
	var changes [][]row.ID
	c := New(WithPersistence(false), WithOnChange(func(ids []row.ID) { changes = append(changes, ids) }))
	c.SetVisible(visible("1", "2", "3"))
	c.ToggleRow("2", Modifiers{})
	c.ToggleRow("3", Modifiers{})

	c.SetVisible(visible("1", "3"))
	assert.Equal(t, []row.ID{"3"}, c.Selected())
	assert.Equal(t, []row.ID{"3"}, changes[len(changes)-1])
}

func TestDisabledRowsAreNeverSelected(t *testing.T) {
	c := New()
	c.SetVisible(visible("1", "2", "3"))
	c.SetDisabled([]row.ID{"2"})

	c.ToggleRow("2", Modifiers{})
	assert.Empty(t, c.Selected())

	c.ToggleRow("1", Modifiers{})
	c.ToggleRow("3", Modifiers{Shift: true})
	assert.ElementsMatch(t, []row.ID{"1", "3"}, c.Selected())
	assert.True(t, c.IsAllSelected(), "disabled rows do not block the all-selected flag")

	c.ToggleAll()
	assert.Empty(t, c.Selected())
}

func TestControlledSelectionOnlyNotifies(t *testing.T) {
	var last []row.ID
	c := New(WithOnChange(func(ids []row.ID) { last = ids }))
	c.State().Control([]row.ID{"1"})
	c.SetVisible(visible("1", "2"))

	c.ToggleRow("2", Modifiers{})
	assert.Equal(t, []row.ID{"1"}, c.Selected(), "caller owns the value")
	assert.Equal(t, []row.ID{"1", "2"}, last)

	c.State().Control(last)
	assert.True(t, c.IsAllSelected())
}

func TestNoCallbackWithoutChange(t *testing.T) {
	calls := 0
	c := New(WithOnChange(func([]row.ID) { calls++ }))
	c.SetVisible(visible("1"))
	c.ClearSelection()
	c.SelectRange("1", "1")
	c.SelectRange("1", "1")
	assert.Equal(t, 1, calls)
}
