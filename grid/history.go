package grid

// Change is one committed cell edit.
type Change struct {
	RowKey string
	Field  string
	Before any
	After  any
}

// History is the local undo/redo stack of a grid. It records cell values
// only and never talks to the server.
type History struct {
	undo []Change
	redo []Change
}

// Push records a new edit and drops anything that could have been redone.
func (h *History) Push(c Change) {
	h.undo = append(h.undo, c)
	h.redo = nil
}

func (h *History) Undo() (Change, bool) {
	if len(h.undo) == 0 {
		return Change{}, false
	}
	c := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, c)
	return c, true
}

func (h *History) Redo() (Change, bool) {
	if len(h.redo) == 0 {
		return Change{}, false
	}
	c := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, c)
	return c, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
