package history

// BeginGroup starts collapsing subsequent Record calls into a single
// undo step with the given label. Groups do not nest; beginning a
// group while one is open ends the open group first.
func (h *History) BeginGroup(label string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.grouping {
		h.endGroupLocked()
	}
	h.grouping = true
	h.groupLabel = label
	h.groupBase = nil
}

// EndGroup closes the open group and records it as one entry.
// Ending a group that recorded nothing is a no-op.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.endGroupLocked()
}

func (h *History) endGroupLocked() {
	if !h.grouping {
		return
	}
	h.grouping = false
	if h.groupBase != nil {
		h.pushLocked(*h.groupBase)
		h.groupBase = nil
	}
}

// CancelGroup closes the open group and discards its snapshot.
// Note: edits made inside the group remain applied; they are just no
// longer separately undoable.
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.grouping = false
	h.groupBase = nil
}

// IsGrouping reports whether a group is open.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// GroupScope provides a convenient way to group edits using defer.
// Usage:
//
//	func doComplexEdit(h *History, buf *buffer.Buffer) {
//	    defer h.GroupScope("complex edit").End()
//	    // ... multiple edits ...
//	}
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group scope.
// Call End() or use with defer to properly close the group.
func (h *History) GroupScope(label string) *GroupScope {
	h.BeginGroup(label)
	return &GroupScope{
		history: h,
		active:  true,
	}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Cancel cancels the group scope, discarding its undo entry.
func (g *GroupScope) Cancel() {
	if g.active {
		g.history.CancelGroup()
		g.active = false
	}
}

// Transaction runs fn within a grouped undo context. If fn returns an
// error the group is cancelled, otherwise it is ended normally.
func (h *History) Transaction(label string, fn func() error) error {
	h.BeginGroup(label)

	err := fn()
	if err != nil {
		h.CancelGroup()
		return err
	}

	h.EndGroup()
	return nil
}

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	undoDepth int
}

// CreateCheckpoint creates a checkpoint at the current history position.
func (h *History) CreateCheckpoint() Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Checkpoint{undoDepth: len(h.undo)}
}

// AboveCheckpoint reports whether undo entries remain above the
// checkpoint. Callers drive the undo loop themselves since each step
// needs the current buffer state.
func (h *History) AboveCheckpoint(cp Checkpoint) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > cp.undoDepth
}
