package rope

// EditBuffer stages a run of contiguous insertions before committing
// them into a rope as one edit. Interactive typing arrives one rune
// at a time; going through the tree for each rune would allocate a
// path of nodes per keystroke and shatter leaves into tiny chunks.
// Staging absorbs such runs in a flat buffer and the commit merges
// them as properly sized chunks in a single split and merge.
//
// The staged text is not part of any rope until Commit: readers that
// were handed the base rope keep seeing the base text, and owners
// must commit before serving reads that should observe the run.
type EditBuffer struct {
	base    Rope
	at      ByteOffset
	pending []byte
	max     int
}

// DefaultEditBufferSize is the staging capacity used when the caller
// does not choose one. Matching the chunk cap means a full buffer
// commits as roughly one leaf.
const DefaultEditBufferSize = MaxChunkBytes

// NewEditBuffer opens a staging buffer over base at the given
// insertion offset, which must lie within the text and on a rune
// boundary. A capacity below one selects DefaultEditBufferSize.
func NewEditBuffer(base Rope, at ByteOffset, capacity int) (*EditBuffer, error) {
	if at < 0 || at > base.Len() {
		return nil, ErrOutOfRange
	}
	if err := base.checkBoundary(at); err != nil {
		return nil, err
	}
	if capacity < 1 {
		capacity = DefaultEditBufferSize
	}
	return &EditBuffer{
		base:    base,
		at:      at,
		pending: make([]byte, 0, capacity),
		max:     capacity,
	}, nil
}

// Base returns the rope the staged run will be committed into. It
// reflects none of the staged text.
func (b *EditBuffer) Base() Rope {
	return b.base
}

// At returns the offset in Base where the staged run begins.
func (b *EditBuffer) At() ByteOffset {
	return b.at
}

// End returns the offset at which the next contiguous insertion
// would land, in the coordinates of the text with the run applied.
func (b *EditBuffer) End() ByteOffset {
	return b.at + ByteOffset(len(b.pending))
}

// Pending returns the number of staged bytes.
func (b *EditBuffer) Pending() int {
	return len(b.pending)
}

// Full reports whether the staged run has reached capacity and
// should be committed.
func (b *EditBuffer) Full() bool {
	return len(b.pending) >= b.max
}

// CanAbsorb reports whether an insertion at offset continues the
// staged run. Only the position immediately after the staged text
// extends it; anything else requires a commit first.
func (b *EditBuffer) CanAbsorb(offset ByteOffset) bool {
	return offset == b.End() && !b.Full()
}

// CanAbsorbDelete reports whether deleting [start, end) only removes
// staged text, which a backspace over just-typed input does.
func (b *EditBuffer) CanAbsorbDelete(start, end ByteOffset) bool {
	return start >= b.at && start <= end && end == b.End()
}

// Append stages text at the end of the run. The text must be valid
// UTF-8; the buffer may exceed its capacity transiently so a paste
// larger than the remaining room still lands as one run.
func (b *EditBuffer) Append(text string) error {
	if ValidateUTF8(text) >= 0 {
		return ErrInvalidEncoding
	}
	b.pending = append(b.pending, text...)
	return nil
}

// Truncate discards the staged text from offset onward, absorbing a
// deletion at the tail of the run. The offset must lie inside the
// staged run on a rune boundary.
func (b *EditBuffer) Truncate(offset ByteOffset) error {
	if offset < b.at || offset > b.End() {
		return ErrOutOfRange
	}
	local := int(offset - b.at)
	if local < len(b.pending) && !isUTF8Start(b.pending[local]) {
		return ErrInvalidEncoding
	}
	b.pending = b.pending[:local]
	return nil
}

// Commit merges the staged run into the base and returns the result.
// It cannot fail: the position was validated when the buffer was
// opened and every staged byte was validated on entry. The buffer
// re-arms at the end of the committed run, so a continuing stream of
// contiguous insertions needs no new buffer.
func (b *EditBuffer) Commit() Rope {
	if len(b.pending) == 0 {
		return b.base
	}
	piece := string(b.pending)
	b.pending = b.pending[:0]
	left, right := splitAt(b.base.root, b.at)
	mid := buildBalanced(splitChunks(piece))
	b.base = Rope{root: merge(merge(left, mid), right)}
	b.at += ByteOffset(len(piece))
	return b.base
}

// Discard drops the staged run without touching the base.
func (b *EditBuffer) Discard() {
	b.pending = b.pending[:0]
}
