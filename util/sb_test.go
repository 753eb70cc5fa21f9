package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_UndoableStringBuilder_WriteAndString(t *testing.T) {
	assert := assert.New(t)

	usb := &UndoableStringBuilder{}
	usb.WriteString("hello")
	usb.WriteByte(' ')
	usb.WriteString("world")

	assert.Equal("hello world", usb.String())
	assert.Equal(11, usb.Len())
}

func Test_UndoableStringBuilder_Undo(t *testing.T) {
	assert := assert.New(t)

	usb := &UndoableStringBuilder{}
	usb.WriteString("abc")
	usb.WriteString("def")
	assert.Equal("abcdef", usb.String())

	usb.Undo()
	assert.Equal("abc", usb.String())
}

func Test_UndoableStringBuilder_Redo(t *testing.T) {
	assert := assert.New(t)

	usb := &UndoableStringBuilder{}
	usb.WriteString("abc")
	usb.WriteString("def")
	usb.Undo()
	assert.Equal("abc", usb.String())

	usb.Redo()
	assert.Equal("abcdef", usb.String())
}

func Test_UndoableStringBuilder_WriteAfterUndo_TruncatesRedoHistory(t *testing.T) {
	assert := assert.New(t)

	usb := &UndoableStringBuilder{}
	usb.WriteString("abc")
	usb.WriteString("def")
	usb.Undo()
	usb.WriteString("xyz")

	assert.Equal("abcxyz", usb.String())

	// redo history was discarded by the new write, so this is a no-op past
	// the current op count.
	usb.Redo()
	assert.Equal("abcxyz", usb.String())
}

func Test_UndoableStringBuilder_Reset_IsUndoable(t *testing.T) {
	assert := assert.New(t)

	usb := &UndoableStringBuilder{}
	usb.WriteString("abc")
	usb.Reset()
	assert.Equal("", usb.String())

	usb.Undo()
	assert.Equal("abc", usb.String())
}

func Test_UndoableStringBuilder_Undo_ClampsAtZero(t *testing.T) {
	assert := assert.New(t)

	usb := &UndoableStringBuilder{}
	usb.Undo()
	usb.Undo()
	assert.Equal("", usb.String())

	usb.WriteString("a")
	assert.Equal("a", usb.String())
}
