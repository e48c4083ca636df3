package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshot_FirstRecordWinsOnDuplicateID(t *testing.T) {
	s := NewSnapshot([]Product{
		{ID: 1, Name: "Original", Price: decimal.RequireFromString("14.99"), Stock: 5},
		{ID: 1, Name: "Duplicate", Price: decimal.RequireFromString("1.00"), Stock: 99},
		{ID: 2, Name: "Other", Stock: 1},
	})

	require.Equal(t, 2, s.Len())
	p, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Original", p.Name)
}

func TestNewSnapshot_DefaultCategory(t *testing.T) {
	s := NewSnapshot([]Product{
		{ID: 1, Name: "Untagged"},
		{ID: 2, Name: "Tagged", Category: "Accessories"},
	})

	p, _ := s.Get(1)
	assert.Equal(t, DefaultCategory, p.Category)
	p, _ = s.Get(2)
	assert.Equal(t, "Accessories", p.Category)
}

func TestSnapshot_CategoriesInFirstSeenOrder(t *testing.T) {
	s := NewSnapshot([]Product{
		{ID: 1, Category: "Merchandise"},
		{ID: 2, Category: "Accessories"},
		{ID: 3, Category: "Merchandise"},
	})

	assert.Equal(t, []string{"Merchandise", "Accessories"}, s.Categories())
}

func TestSnapshot_ListPreservesOrder(t *testing.T) {
	s := NewSnapshot([]Product{{ID: 3}, {ID: 1}, {ID: 2}})

	ids := make([]int64, 0, s.Len())
	for _, p := range s.List() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestAvailable(t *testing.T) {
	assert.True(t, Product{Stock: 1}.Available())
	assert.False(t, Product{Stock: 0}.Available())
}
