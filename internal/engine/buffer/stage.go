package buffer

import (
	"github.com/dshills/twine/internal/engine/history"
	"github.com/dshills/twine/internal/engine/rope"
)

// Staged typing. Interactive input arrives one rune at a time, and
// rebuilding the tree per keystroke would allocate a node path and a
// tiny leaf for every character. StageInsert and StageDelete absorb a
// contiguous run into a flat buffer instead; the run lands in the
// rope as one edit and one undo step when it commits.

// StageInsert stages text at the given offset. Input contiguous with
// the open staged run is absorbed; anything else commits the run and
// opens a new one at the offset. Staged text is not visible to reads
// until committed, which happens on Flush, when the stage fills, or
// before any non-contiguous edit.
func (b *Buffer) StageInsert(offset ByteOffset, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.readOnly {
		return ErrReadOnly
	}
	text = b.normalizeLineEndings(text)
	if text == "" {
		return nil
	}

	if b.stage == nil || !b.stage.CanAbsorb(offset) {
		b.flushLocked()
		stage, err := rope.NewEditBuffer(b.rope, offset, b.stageCap)
		if err != nil {
			return err
		}
		b.stage = stage
		b.stageBase = history.Snapshot{Rope: b.rope, Position: b.position}
	}

	if err := b.stage.Append(text); err != nil {
		return err
	}
	b.position = b.stage.End()
	if b.stage.Full() {
		b.commitStageLocked()
	}
	return nil
}

// StageDelete deletes the byte range [start, end). A deletion at the
// tail of the staged run, which is what backspacing over just-typed
// input does, is absorbed without touching the tree. Anything else
// commits the run and performs a regular delete.
func (b *Buffer) StageDelete(start, end ByteOffset) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.readOnly {
		return ErrReadOnly
	}

	if b.stage != nil && b.stage.CanAbsorbDelete(start, end) {
		if err := b.stage.Truncate(start); err != nil {
			return err
		}
		b.position = b.stage.End()
		return nil
	}

	b.flushLocked()
	r, err := b.rope.Delete(start, end)
	if err != nil {
		return err
	}
	if end > start {
		b.applyLocked(r, start, "delete")
	}
	return nil
}

// Pending returns the number of staged bytes not yet committed.
func (b *Buffer) Pending() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stage == nil {
		return 0
	}
	return b.stage.Pending()
}

// Flush commits any staged typing into the rope and closes the stage.
// It is a no-op when nothing is staged.
func (b *Buffer) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
}

// DiscardStage drops staged typing without committing it. The cursor
// returns to the start of the discarded run.
func (b *Buffer) DiscardStage() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stage == nil {
		return
	}
	if b.stage.Pending() > 0 {
		b.stage.Discard()
		b.position = b.stage.End()
	}
	b.stage = nil
}

// commitStageLocked merges the staged run into the rope, records one
// history entry for the whole run, and re-arms the stage at the end
// of the committed text. Caller must hold mu.
func (b *Buffer) commitStageLocked() {
	if b.stage == nil || b.stage.Pending() == 0 {
		return
	}
	b.rope = b.stage.Commit()
	b.revision++
	b.hist.Record(b.stageBase, "typing")
	b.stageBase = history.Snapshot{Rope: b.rope, Position: b.position}
}

// flushLocked commits and closes the stage. Caller must hold mu.
func (b *Buffer) flushLocked() {
	b.commitStageLocked()
	b.stage = nil
}
