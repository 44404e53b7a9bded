package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name       string
		page, size int
		want       []int
	}{
		{name: "first page", page: 1, size: 3, want: []int{1, 2, 3}},
		{name: "middle page", page: 2, size: 3, want: []int{4, 5, 6}},
		{name: "short last page", page: 3, size: 3, want: []int{7}},
		{name: "past the end", page: 4, size: 3, want: []int{}},
		{name: "page zero", page: 0, size: 3, want: []int{}},
		{name: "zero size", page: 1, size: 0, want: []int{}},
		{name: "size larger than rows", page: 1, size: 50, want: rows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paginate(rows, tt.page, tt.size))
		})
	}
}

func TestPaginateWindowLength(t *testing.T) {
	for n := range 12 {
		rows := make([]int, n)
		for size := 1; size <= 5; size++ {
			for page := 1; page <= 6; page++ {
				want := min(size, max(0, n-(page-1)*size))
				if got := len(Paginate(rows, page, size)); got != want {
					t.Fatalf("len(Paginate(%d rows, page %d, size %d)) = %d, want %d", n, page, size, got, want)
				}
			}
		}
	}
}

func TestPaginateCannotClobberInput(t *testing.T) {
	rows := []int{1, 2, 3, 4}
	page := Paginate(rows, 1, 2)
	_ = append(page, 99)
	assert.Equal(t, []int{1, 2, 3, 4}, rows)
}

func TestPageCountAndClamp(t *testing.T) {
	assert.Equal(t, 1, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 2, PageCount(11, 10))
	assert.Equal(t, 1, PageCount(5, 0))

	assert.Equal(t, 3, ClampPage(9, 25, 10))
	assert.Equal(t, 1, ClampPage(0, 25, 10))
	assert.Equal(t, 2, ClampPage(2, 25, 10))
}

func TestBounds(t *testing.T) {
	first, last := Bounds(2, 10, 25)
	assert.Equal(t, []int{11, 20}, []int{first, last})

	first, last = Bounds(3, 10, 25)
	assert.Equal(t, []int{21, 25}, []int{first, last})

	first, last = Bounds(4, 10, 25)
	assert.Equal(t, []int{0, 0}, []int{first, last})
}
