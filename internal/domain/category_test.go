package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePath(t *testing.T) {
	m := CategoryMap{
		"0": {Name: "Home"},
		"1": {Name: "Shoes", Parent: "0"},
		"2": {Name: "Boots", Parent: "1"},
	}

	tests := []struct {
		name string
		id   string
		want string
	}{
		{"leaf", "2", "Home > Shoes > Boots"},
		{"middle", "1", "Home > Shoes"},
		{"root", "0", "Home"},
		{"missing", "999", UnknownCategoryPath},
		{"empty id", "", UnknownCategoryPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.ResolvePath(tt.id))
		})
	}
}

func TestResolvePathDanglingParent(t *testing.T) {
	m := CategoryMap{
		"5": {Name: "Valves", Parent: "4"},
	}
	assert.Equal(t, "Valves", m.ResolvePath("5"))
}

func TestResolvePathCycle(t *testing.T) {
	m := CategoryMap{
		"a": {Name: "A", Parent: "b"},
		"b": {Name: "B", Parent: "a"},
	}
	assert.Equal(t, UnknownCategoryPath, m.ResolvePath("a"))

	selfLoop := CategoryMap{"x": {Name: "X", Parent: "x"}}
	assert.Equal(t, UnknownCategoryPath, selfLoop.ResolvePath("x"))
}

func TestMerge(t *testing.T) {
	m := NewCategoryMap()
	m.Merge(CategoryMap{"1": {Name: "Shoes", Parent: "0"}})

	t.Run("idempotent", func(t *testing.T) {
		merged := CategoryMap{}
		merged.Merge(m)
		merged.Merge(m)
		assert.Equal(t, m, merged)
	})

	t.Run("last writer wins", func(t *testing.T) {
		merged := CategoryMap{}
		merged.Merge(m)
		merged.Merge(CategoryMap{"1": {Name: "Footwear", Parent: "0"}})
		assert.Equal(t, "Footwear", merged["1"].Name)
		assert.Equal(t, "Home", merged["0"].Name)
	})
}

func TestProductField(t *testing.T) {
	p := &Product{ID: "7", Title: "Boot", Price: "12 USD", Adult: "no"}
	assert.Equal(t, "7", p.Field("id"))
	assert.Equal(t, "Boot", p.Field("title"))
	assert.Equal(t, "12 USD", p.Field("price"))
	assert.Equal(t, "no", p.Field("adult"))
	assert.Empty(t, p.Field("gtin"))
}
