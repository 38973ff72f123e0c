package buffer

import "github.com/dshills/twine/internal/engine/history"

// Undo restores the buffer to the state before the most recent edit.
// Staged typing is committed first so the whole run undoes as one
// step; an open group is closed. Returns false when there is nothing
// to undo.
func (b *Buffer) Undo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.flushLocked()
	if b.hist.IsGrouping() {
		b.hist.EndGroup()
	}
	return b.undoLocked()
}

func (b *Buffer) undoLocked() bool {
	cur := history.Snapshot{Rope: b.rope, Position: b.position}
	prev, err := b.hist.Undo(cur)
	if err != nil {
		return false
	}
	b.rope = prev.Rope
	b.position = prev.Position
	b.revision++
	return true
}

// Redo reapplies the most recently undone edit. Returns false when
// there is nothing to redo.
func (b *Buffer) Redo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.flushLocked()
	cur := history.Snapshot{Rope: b.rope, Position: b.position}
	next, err := b.hist.Redo(cur)
	if err != nil {
		return false
	}
	b.rope = next.Rope
	b.position = next.Position
	b.revision++
	return true
}

// CanUndo reports whether an undo step is available. Staged typing
// counts, since it commits as an undoable edit.
func (b *Buffer) CanUndo() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stage != nil && b.stage.Pending() > 0 {
		return true
	}
	return b.hist.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (b *Buffer) CanRedo() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.hist.CanRedo()
}

// UndoCount returns the number of undo entries.
func (b *Buffer) UndoCount() int {
	return b.hist.UndoCount()
}

// RedoCount returns the number of redo entries.
func (b *Buffer) RedoCount() int {
	return b.hist.RedoCount()
}

// UndoInfo returns labels and timestamps for the undo stack, most
// recent first.
func (b *Buffer) UndoInfo() []history.Info {
	return b.hist.UndoInfo()
}

// RedoInfo returns labels and timestamps for the redo stack, most
// recent first.
func (b *Buffer) RedoInfo() []history.Info {
	return b.hist.RedoInfo()
}

// PeekUndo returns info for the edit Undo would revert next.
func (b *Buffer) PeekUndo() (history.Info, bool) {
	return b.hist.PeekUndo()
}

// PeekRedo returns info for the edit Redo would reapply next.
func (b *Buffer) PeekRedo() (history.Info, bool) {
	return b.hist.PeekRedo()
}

// BeginGroup collapses subsequent edits into a single undo step until
// EndGroup. Staged typing is committed first so it stays outside the
// group.
func (b *Buffer) BeginGroup(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
	b.hist.BeginGroup(label)
}

// EndGroup closes the open group, committing staged typing into it
// first.
func (b *Buffer) EndGroup() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
	b.hist.EndGroup()
}

// CancelGroup closes the open group and discards its undo entry.
// Edits made inside the group remain applied.
func (b *Buffer) CancelGroup() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
	b.hist.CancelGroup()
}

// Transaction runs fn with edits grouped into a single undo step. If
// fn returns an error the group's undo entry is discarded.
func (b *Buffer) Transaction(label string, fn func() error) error {
	b.BeginGroup(label)
	err := fn()
	if err != nil {
		b.mu.Lock()
		b.flushLocked()
		b.hist.CancelGroup()
		b.mu.Unlock()
		return err
	}
	b.EndGroup()
	return nil
}

// Checkpoint marks the current history position so a later UndoTo can
// rewind everything after it. Staged typing is committed first.
func (b *Buffer) Checkpoint() history.Checkpoint {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
	return b.hist.CreateCheckpoint()
}

// UndoTo rewinds all edits made since the checkpoint and returns the
// number of steps undone.
func (b *Buffer) UndoTo(cp history.Checkpoint) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.flushLocked()
	n := 0
	for b.hist.AboveCheckpoint(cp) {
		if !b.undoLocked() {
			break
		}
		n++
	}
	return n
}

// ClearHistory discards all undo and redo entries. Staged typing is
// committed first and stays in the buffer.
func (b *Buffer) ClearHistory() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
	b.hist.Clear()
}
