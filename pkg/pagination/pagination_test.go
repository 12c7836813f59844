package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	res := Paginate(items, Params{Page: 2, PerPage: 2})
	assert.Equal(t, []int{3, 4}, res.Items)
	assert.Equal(t, 3, res.Pagination.TotalPages)
	assert.True(t, res.Pagination.HasNext)
	assert.True(t, res.Pagination.HasPrev)

	last := Paginate(items, Params{Page: 3, PerPage: 2})
	assert.Equal(t, []int{5}, last.Items)
	assert.False(t, last.Pagination.HasNext)
}

func TestPaginatePastEnd(t *testing.T) {
	res := Paginate([]string{"a"}, Params{Page: 4, PerPage: 10})
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
	assert.Equal(t, int64(1), res.Pagination.Total)
	assert.Equal(t, 1, res.Pagination.TotalPages)
}

func TestParamsDefaultsAndClamps(t *testing.T) {
	res := Paginate([]int{1, 2}, Params{})
	assert.Equal(t, 1, res.Pagination.CurrentPage)
	assert.Equal(t, DefaultPerPage, res.Pagination.PerPage)

	res = Paginate([]int{1, 2}, Params{Page: -1, PerPage: 1000})
	assert.Equal(t, 1, res.Pagination.CurrentPage)
	assert.Equal(t, MaxPerPage, res.Pagination.PerPage)
}

func TestPaginateEmpty(t *testing.T) {
	res := Paginate([]int(nil), Params{})
	assert.Equal(t, 0, res.Pagination.TotalPages)
	assert.False(t, res.Pagination.HasNext)
	assert.False(t, res.Pagination.HasPrev)
}
