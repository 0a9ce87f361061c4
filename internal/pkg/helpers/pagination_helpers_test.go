package helpers

import "testing"

func TestCalculateSliceIndices(t *testing.T) {
	cases := []struct {
		page, size, total int
		start, end        int
	}{
		{1, 10, 25, 0, 10},
		{3, 10, 25, 20, 25},
		{4, 10, 25, 25, 25},
		{0, 0, 5, 0, 5},
	}
	for _, c := range cases {
		start, end := CalculateSliceIndices(c.page, c.size, c.total)
		if start != c.start || end != c.end {
			t.Errorf("CalculateSliceIndices(%d, %d, %d) = %d, %d; want %d, %d",
				c.page, c.size, c.total, start, end, c.start, c.end)
		}
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(25, 9, 10)
	if info.TotalPages != 3 || info.CurrentPage != 3 {
		t.Fatalf("info = %+v", info)
	}
	if empty := NewPaginationInfo(0, 1, 10); empty.TotalPages != 1 {
		t.Fatalf("empty = %+v", empty)
	}
}
