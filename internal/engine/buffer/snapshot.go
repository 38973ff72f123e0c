package buffer

import (
	"io"

	"github.com/dshills/twine/internal/engine/rope"
)

// Snapshot is a read-only view of a buffer at a specific revision.
// Taking one is O(1): it captures the committed rope root, which is
// immutable and shares structure with every later revision. A
// snapshot never changes, no matter how the buffer is edited
// afterwards, so it is safe for concurrent use.
type Snapshot struct {
	rope     rope.Rope
	revision uint64
}

// Rope returns the underlying rope for direct queries and iteration.
func (s Snapshot) Rope() rope.Rope {
	return s.rope
}

// Revision returns the revision the snapshot was taken at.
func (s Snapshot) Revision() uint64 {
	return s.revision
}

// Text returns the full snapshot content as a string.
func (s Snapshot) Text() string {
	return s.rope.String()
}

// Slice returns text in the byte range [start, end).
func (s Snapshot) Slice(start, end ByteOffset) (string, error) {
	return s.rope.Slice(start, end)
}

// Len returns the total byte length of the snapshot.
func (s Snapshot) Len() ByteOffset {
	return s.rope.Len()
}

// IsEmpty returns true if the snapshot is empty.
func (s Snapshot) IsEmpty() bool {
	return s.rope.IsEmpty()
}

// LineCount returns the number of lines.
func (s Snapshot) LineCount() int {
	return s.rope.LineCount()
}

// Line returns the text of a specific zero-based line, without its
// trailing newline.
func (s Snapshot) Line(line int) (string, error) {
	return s.rope.Line(line)
}

// Lines returns an iterator over all lines in the snapshot.
func (s Snapshot) Lines() *rope.LineIterator {
	return s.rope.Lines()
}

// Chunks returns an iterator over the snapshot's storage chunks.
func (s Snapshot) Chunks() *rope.ChunkIterator {
	return s.rope.Chunks()
}

// Runes returns an iterator over all runes in the snapshot.
func (s Snapshot) Runes() *rope.RuneIterator {
	return s.rope.Runes()
}

// Reader returns an io.Reader over the snapshot content.
func (s Snapshot) Reader() *rope.Reader {
	return s.rope.Reader()
}

// WriteTo writes the snapshot content to w.
func (s Snapshot) WriteTo(w io.Writer) (int64, error) {
	return s.rope.WriteTo(w)
}
