package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/twine/internal/engine/rope"
)

// DefaultLimit bounds the undo stack when no explicit limit is given.
const DefaultLimit = 1000

var (
	// ErrNothingToUndo is returned when the undo stack is empty.
	ErrNothingToUndo = errors.New("history: nothing to undo")
	// ErrNothingToRedo is returned when the redo stack is empty.
	ErrNothingToRedo = errors.New("history: nothing to redo")
)

// Snapshot is the restorable state captured before an edit: the rope
// root at that moment plus the cursor position that went with it.
// Ropes are persistent, so a snapshot is a handle, not a copy.
type Snapshot struct {
	Rope     rope.Rope
	Position rope.ByteOffset
}

// Info describes a recorded entry without exposing its snapshot.
type Info struct {
	Label     string
	Timestamp time.Time
}

type entry struct {
	snap  Snapshot
	label string
	when  time.Time
}

func (e entry) info() Info {
	return Info{Label: e.label, Timestamp: e.when}
}

// History holds bounded undo and redo stacks of buffer snapshots.
// All methods are safe for concurrent use.
type History struct {
	mu    sync.Mutex
	undo  []entry
	redo  []entry
	limit int

	grouping   bool
	groupLabel string
	groupBase  *entry
}

// New creates a history bounded to limit undo entries.
// A non-positive limit falls back to DefaultLimit.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Record pushes the pre-edit snapshot onto the undo stack and clears
// the redo stack. While a group is open only the first snapshot is
// retained, so the whole group later undoes as a single step.
func (h *History) Record(snap Snapshot, label string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e := entry{snap: snap, label: label, when: time.Now()}
	if h.grouping {
		if h.groupBase == nil {
			e.label = h.groupLabel
			h.groupBase = &e
		}
		return
	}
	h.pushLocked(e)
}

// pushLocked appends an undo entry, clears redo, and trims the oldest
// entries beyond the limit. Caller must hold mu.
func (h *History) pushLocked(e entry) {
	h.undo = append(h.undo, e)
	h.redo = nil
	for len(h.undo) > h.limit {
		h.undo = h.undo[1:]
	}
}

// Undo pops the most recent entry, pushes the current state onto the
// redo stack, and returns the snapshot to restore.
func (h *History) Undo(current Snapshot) (Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undo) == 0 {
		return Snapshot{}, ErrNothingToUndo
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, entry{snap: current, label: e.label, when: e.when})
	return e.snap, nil
}

// Redo pops the most recently undone entry, pushes the current state
// back onto the undo stack, and returns the snapshot to restore.
func (h *History) Redo(current Snapshot) (Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redo) == 0 {
		return Snapshot{}, ErrNothingToRedo
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, entry{snap: current, label: e.label, when: e.when})
	return e.snap, nil
}

// CanUndo reports whether an undo entry is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether a redo entry is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// UndoCount returns the number of undo entries.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo)
}

// RedoCount returns the number of redo entries.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo)
}

// PeekUndo returns info for the entry Undo would restore next.
func (h *History) PeekUndo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return Info{}, false
	}
	return h.undo[len(h.undo)-1].info(), true
}

// PeekRedo returns info for the entry Redo would restore next.
func (h *History) PeekRedo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return Info{}, false
	}
	return h.redo[len(h.redo)-1].info(), true
}

// UndoInfo returns info for all undo entries, most recent first.
func (h *History) UndoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()
	infos := make([]Info, 0, len(h.undo))
	for i := len(h.undo) - 1; i >= 0; i-- {
		infos = append(infos, h.undo[i].info())
	}
	return infos
}

// RedoInfo returns info for all redo entries, most recent first.
func (h *History) RedoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()
	infos := make([]Info, 0, len(h.redo))
	for i := len(h.redo) - 1; i >= 0; i-- {
		infos = append(infos, h.redo[i].info())
	}
	return infos
}

// Clear discards all undo and redo entries. Any open group is
// discarded as well.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = nil
	h.redo = nil
	h.grouping = false
	h.groupBase = nil
}

// Limit returns the maximum number of undo entries.
func (h *History) Limit() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.limit
}

// SetLimit changes the maximum number of undo entries, trimming the
// oldest entries immediately if the stack exceeds the new limit.
func (h *History) SetLimit(limit int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit <= 0 {
		limit = DefaultLimit
	}
	h.limit = limit
	for len(h.undo) > h.limit {
		h.undo = h.undo[1:]
	}
}
