package virtual

// Window is the half-open range [Start, End) of rows to render.
type Window struct {
	Start int
	End   int
}

func (w Window) Len() int {
	return max(0, w.End-w.Start)
}

func (w Window) Contains(i int) bool {
	return i >= w.Start && i < w.End
}

// FixedWindow computes the rows intersecting the viewport for uniformly
// sized rows, widened by overscan rows on each side.
func FixedWindow(total, offset, viewport, itemSize, overscan int) Window {
	if total <= 0 || viewport <= 0 {
		return Window{}
	}
	itemSize = max(itemSize, 1)
	offset = max(offset, 0)
	overscan = max(overscan, 0)

	first := offset / itemSize
	count := (viewport + itemSize - 1) / itemSize
	if offset%itemSize != 0 {
		count++
	}
	start := min(max(0, first-overscan), total)
	end := min(total, first+count+overscan)
	return Window{Start: start, End: max(start, end)}
}

// VariableWindow computes the rows intersecting the viewport when each row
// has its own size.
func VariableWindow(sizes []int, offset, viewport, overscan int) Window {
	if len(sizes) == 0 || viewport <= 0 {
		return Window{}
	}
	offset = max(offset, 0)
	overscan = max(overscan, 0)

	first, pos := len(sizes), 0
	for i, s := range sizes {
		if pos+max(s, 1) > offset {
			first = i
			break
		}
		pos += max(s, 1)
	}
	last := first
	for last < len(sizes) && pos < offset+viewport {
		pos += max(sizes[last], 1)
		last++
	}
	return Window{
		Start: max(0, first-overscan),
		End:   min(len(sizes), last+overscan),
	}
}

// OffsetOf returns the position of row index given per-row sizes.
func OffsetOf(sizes []int, index int) int {
	pos := 0
	for i := 0; i < index && i < len(sizes); i++ {
		pos += max(sizes[i], 1)
	}
	return pos
}
