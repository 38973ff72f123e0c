package buffer

import (
	"fmt"

	"github.com/dshills/twine/internal/engine/rope"
)

// Edit represents a text edit operation.
// It specifies a range to replace and the new text.
type Edit struct {
	Range   Range  // The range to replace
	NewText string // The replacement text
}

// NewEdit creates a new Edit.
func NewEdit(r Range, newText string) Edit {
	return Edit{Range: r, NewText: newText}
}

// NewInsert creates an Edit that inserts text at a position.
func NewInsert(offset ByteOffset, text string) Edit {
	return Edit{
		Range:   Range{Start: offset, End: offset},
		NewText: text,
	}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(start, end ByteOffset) Edit {
	return Edit{
		Range:   Range{Start: start, End: end},
		NewText: "",
	}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%d, %q)", e.Range.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete%s", e.Range.String())
	}
	return fmt.Sprintf("Replace%s with %q", e.Range.String(), e.NewText)
}

// IsInsert returns true if this is a pure insertion (empty range).
func (e Edit) IsInsert() bool {
	return e.Range.IsEmpty() && e.NewText != ""
}

// IsDelete returns true if this is a pure deletion (empty replacement).
func (e Edit) IsDelete() bool {
	return !e.Range.IsEmpty() && e.NewText == ""
}

// IsReplace returns true if this replaces existing text with new text.
func (e Edit) IsReplace() bool {
	return !e.Range.IsEmpty() && e.NewText != ""
}

// IsNoOp returns true if this edit does nothing.
func (e Edit) IsNoOp() bool {
	return e.Range.IsEmpty() && e.NewText == ""
}

// Delta returns the change in buffer length caused by this edit.
func (e Edit) Delta() ByteOffset {
	return ByteOffset(len(e.NewText)) - e.Range.Len()
}

// EditResult contains information about an applied edit.
type EditResult struct {
	OldRange Range      // The original range that was modified
	NewRange Range      // The resulting range after the edit
	OldText  string     // The text that was replaced (if any)
	Delta    ByteOffset // Change in buffer length
}

// ApplyEdit applies a single edit as one committed operation and
// returns what was replaced. A failed edit leaves the buffer
// unchanged.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.readOnly {
		return EditResult{}, ErrReadOnly
	}
	b.flushLocked()

	oldText, err := b.rope.Slice(edit.Range.Start, edit.Range.End)
	if err != nil {
		return EditResult{}, err
	}
	text := b.normalizeLineEndings(edit.NewText)
	r, err := b.rope.Replace(edit.Range.Start, edit.Range.End, text)
	if err != nil {
		return EditResult{}, err
	}

	newEnd := edit.Range.Start + ByteOffset(len(text))
	if !edit.Range.IsEmpty() || len(text) > 0 {
		b.applyLocked(r, newEnd, "edit")
	}

	return EditResult{
		OldRange: edit.Range,
		NewRange: Range{Start: edit.Range.Start, End: newEnd},
		OldText:  oldText,
		Delta:    ByteOffset(len(text)) - edit.Range.Len(),
	}, nil
}

// ApplyEdits applies multiple edits atomically as a single undo step.
// Edits must be sorted in reverse order (highest offset first) and
// must not overlap, so applying one does not shift the offsets of the
// rest. A failed batch leaves the buffer unchanged.
func (b *Buffer) ApplyEdits(edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.readOnly {
		return ErrReadOnly
	}
	b.flushLocked()

	for i := 1; i < len(edits); i++ {
		if edits[i].Range.End > edits[i-1].Range.Start {
			return ErrEditsOverlap
		}
	}

	// Validate every range against the unedited rope before changing
	// anything.
	n := b.rope.Len()
	for _, e := range edits {
		if e.Range.Start < 0 || e.Range.Start > e.Range.End || e.Range.End > n {
			return rope.ErrOutOfRange
		}
	}

	r := b.rope
	var err error
	for _, e := range edits {
		r, err = r.Replace(e.Range.Start, e.Range.End, b.normalizeLineEndings(e.NewText))
		if err != nil {
			return err
		}
	}

	b.applyLocked(r, b.clampLocked(r, b.position), "apply edits")
	return nil
}
