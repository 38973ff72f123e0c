// Package history provides undo/redo functionality for buffer edits.
//
// The history system stores snapshots rather than inverse operations:
// because ropes are persistent, each entry holds a handle to a prior
// tree root plus the cursor position from that moment. Recording an
// entry never copies buffer content, and restoring one is a pointer
// swap. Edits diverging after an undo share their unchanged subtrees
// with the entries still on the stack.
//
// # History Stack
//
// The History type manages bounded undo and redo stacks:
//
//	hist := history.New(1000) // Max 1000 undo entries
//
//	// Before applying an edit, record the pre-edit state
//	hist.Record(history.Snapshot{Rope: r, Position: pos}, "insert")
//
//	// Undo/redo exchange the current state for a stacked one
//	prev, err := hist.Undo(current)
//	next, err := hist.Redo(current)
//
// Recording a new edit clears the redo stack. Once the undo stack is
// full, the oldest entries are dropped first.
//
// # Grouping
//
// Multiple edits can be collapsed into a single undo unit:
//
//	hist.BeginGroup("find and replace")
//	// ... multiple edits, each calling Record ...
//	hist.EndGroup()
//
// Only the snapshot from before the first grouped edit is kept, so one
// undo restores the state from before the whole group.
package history
