package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_StringSet_AddHasRemove(t *testing.T) {
	assert := assert.New(t)

	s := NewStringSet()
	assert.True(s.Empty())

	s.Add("a")
	s.Add("b")
	assert.True(s.Has("a"))
	assert.False(s.Has("c"))
	assert.Equal(2, s.Len())

	s.Remove("a")
	assert.False(s.Has("a"))
	assert.Equal(1, s.Len())
}

func Test_StringSet_UnionIntersectionDifference(t *testing.T) {
	assert := assert.New(t)

	a := StringSetOf([]string{"x", "y", "z"})
	b := StringSetOf([]string{"y", "z", "w"})

	union := a.Union(b)
	assert.ElementsMatch([]string{"x", "y", "z", "w"}, union.Elements())

	inter := a.Intersection(b)
	assert.ElementsMatch([]string{"y", "z"}, inter.Elements())

	diff := a.Difference(b)
	assert.ElementsMatch([]string{"x"}, diff.Elements())
}

func Test_StringSet_DisjointWith(t *testing.T) {
	assert := assert.New(t)

	a := StringSetOf([]string{"x"})
	b := StringSetOf([]string{"y"})
	c := StringSetOf([]string{"x", "z"})

	assert.True(a.DisjointWith(b))
	assert.False(a.DisjointWith(c))
}

func Test_StringSet_Equal(t *testing.T) {
	assert := assert.New(t)

	a := StringSetOf([]string{"a", "b"})
	b := StringSetOf([]string{"b", "a"})
	c := StringSetOf([]string{"a", "b", "c"})

	assert.True(a.Equal(b))
	assert.False(a.Equal(c))
}

func Test_StringSet_Copy_IsIndependent(t *testing.T) {
	assert := assert.New(t)

	a := StringSetOf([]string{"a"})
	b := a.Copy()
	b.Add("b")

	assert.False(a.Has("b"))
	assert.True(b.Has("b"))
}

func Test_StringSet_Elements_NilSafe(t *testing.T) {
	assert := assert.New(t)

	var s StringSet
	assert.Nil(s.Elements())
}

func Test_KeySet_AddHasRemove(t *testing.T) {
	assert := assert.New(t)

	s := NewKeySet[int]()
	s.Add(1)
	s.Add(2)

	assert.True(s.Has(1))
	assert.False(s.Has(3))

	s.Remove(1)
	assert.False(s.Has(1))
}

func Test_SVSet_AddAndElements(t *testing.T) {
	assert := assert.New(t)

	s := NewSVSet[int]()
	s.Set("a", 1)
	s.Set("b", 2)

	assert.ElementsMatch([]string{"a", "b"}, s.Elements())
	assert.Equal(1, s.Get("a"))
}
