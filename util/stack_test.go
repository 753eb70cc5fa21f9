package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Stack_PushPopPeek(t *testing.T) {
	assert := assert.New(t)

	s := NewStack[int]()
	assert.True(s.Empty())

	s.Push(1)
	s.Push(2)
	s.Push(3)

	assert.Equal(3, s.Len())
	assert.Equal(3, s.Peek())

	assert.Equal(3, s.Pop())
	assert.Equal(2, s.Pop())
	assert.Equal(1, s.Len())
}

func Test_Stack_PeekAt(t *testing.T) {
	assert := assert.New(t)

	s := NewStack(1, 2, 3) // bottom to top
	assert.Equal(3, s.PeekAt(0))
	assert.Equal(2, s.PeekAt(1))
	assert.Equal(1, s.PeekAt(2))
}

func Test_Stack_Pop_PanicsWhenEmpty(t *testing.T) {
	s := NewStack[int]()
	assert.Panics(t, func() { s.Pop() })
}

func Test_Stack_Peek_PanicsWhenEmpty(t *testing.T) {
	s := NewStack[int]()
	assert.Panics(t, func() { s.Peek() })
}

func Test_Stack_PeekAt_PanicsOutOfRange(t *testing.T) {
	s := NewStack(1)
	assert.Panics(t, func() { s.PeekAt(5) })
}
