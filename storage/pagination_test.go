package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageFor(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		total    int64
		page     int
		numPages int
		hasNext  bool
		hasPrev  bool
	}{
		{"first of several", "1", 25, 1, 3, true, false},
		{"middle page", "2", 25, 2, 3, true, true},
		{"last page", "3", 25, 3, 3, false, true},
		{"past the end clamps to last", "99", 25, 3, 3, false, true},
		{"zero clamps to last", "0", 25, 3, 3, false, true},
		{"negative clamps to last", "-4", 25, 3, 3, false, true},
		{"non-numeric falls back to first", "banana", 25, 1, 3, true, true},
		{"empty value falls back to first", "", 25, 1, 3, true, true},
		{"empty listing still has one page", "1", 0, 1, 1, false, false},
		{"exact multiple", "2", 20, 2, 2, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PageFor(tt.raw, tt.total, PostsPerPage)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.numPages, p.NumPages)
			assert.Equal(t, tt.total, p.Total)
			assert.Equal(t, tt.hasNext, p.HasNext)
			assert.Equal(t, tt.hasPrev, p.HasPrev)
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	assert.EqualValues(t, 0, PageFor("1", 25, 10).Offset())
	assert.EqualValues(t, 10, PageFor("2", 25, 10).Offset())
	assert.EqualValues(t, 20, PageFor("3", 25, 10).Offset())
}
