package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeClampsRequestedPage(t *testing.T) {
	// 12 items at page size 10 is 2 pages; page 5 clamps to 2.
	s := Compute(12, 5, 10)
	assert.Equal(t, 2, s.TotalPages)
	assert.Equal(t, 2, s.CurrentPage)
	assert.Equal(t, 12, s.TotalItems)
}

func TestComputeEmptySetStillHasOnePage(t *testing.T) {
	s := Compute(0, 3, 10)
	assert.Equal(t, 1, s.TotalPages)
	assert.Equal(t, 1, s.CurrentPage)
	assert.Equal(t, 0, s.TotalItems)
}

func TestComputeCurrentPageAlwaysInRange(t *testing.T) {
	for _, items := range []int{0, 1, 9, 10, 11, 95, 1000} {
		for _, page := range []int{-3, 0, 1, 2, 7, 500} {
			s := Compute(items, page, 10)
			assert.GreaterOrEqual(t, s.CurrentPage, 1, "items=%d page=%d", items, page)
			assert.LessOrEqual(t, s.CurrentPage, s.TotalPages, "items=%d page=%d", items, page)
		}
	}
}

func TestComputeExactMultiple(t *testing.T) {
	s := Compute(30, 3, 10)
	assert.Equal(t, 3, s.TotalPages)
	assert.Equal(t, 3, s.CurrentPage)
}

func TestChangeRejectsOutOfRange(t *testing.T) {
	s := Compute(25, 1, 10) // 3 pages

	assert.Equal(t, s, s.Change(0), "below range is a no-op")
	assert.Equal(t, s, s.Change(4), "above range is a no-op")

	moved := s.Change(3)
	assert.Equal(t, 3, moved.CurrentPage)
	assert.Equal(t, s.TotalPages, moved.TotalPages)
}

func TestWindow(t *testing.T) {
	s := Compute(12, 2, 10)
	start, end := s.Window()
	assert.Equal(t, 10, start)
	assert.Equal(t, 12, end)

	s = Compute(0, 1, 10)
	start, end = s.Window()
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}
