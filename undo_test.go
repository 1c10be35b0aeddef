package dekoi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUndoStack(t *testing.T) {
	var order []int
	var undo undoStack
	for i := 0; i < 3; i++ {
		undo.push(func() { order = append(order, i) })
	}
	undo.unwind()
	assert.Equal(t, []int{2, 1, 0}, order)

	undo.unwind()
	assert.Len(t, order, 3)

	undo.push(func() { order = append(order, 99) })
	undo.release()
	undo.unwind()
	assert.Len(t, order, 3)
}
