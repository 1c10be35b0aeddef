package dekoi

// undoStack collects the cleanup of each successful creation step so a
// failing constructor can unwind everything it built in reverse order.
type undoStack struct {
	steps []func()
}

func (u *undoStack) push(step func()) {
	u.steps = append(u.steps, step)
}

// unwind runs every pushed step, last first, and empties the stack.
func (u *undoStack) unwind() {
	for i := len(u.steps) - 1; i >= 0; i-- {
		u.steps[i]()
	}
	u.steps = nil
}

// release forgets the pushed steps once construction has succeeded.
func (u *undoStack) release() {
	u.steps = nil
}
