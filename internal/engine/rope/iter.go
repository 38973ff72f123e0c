package rope

import (
	"io"
	"unicode/utf8"
)

// ChunkIterator walks the rope's chunks in document order. The
// traversal keeps an explicit stack of pending subtrees, so advancing
// is amortized O(1) and the whole walk touches each node once.
type ChunkIterator struct {
	stack []*node
	chunk Chunk
	start ByteOffset // offset of the current chunk
	next  ByteOffset // offset of the chunk Next will yield
}

// Chunks returns an iterator over all chunks in the rope.
func (r Rope) Chunks() *ChunkIterator {
	it := &ChunkIterator{}
	if r.root != nil {
		it.stack = append(make([]*node, 0, r.root.height+2), r.root)
	}
	return it
}

// chunksFrom returns a chunk iterator whose first chunk contains
// offset; at offset == Len() it yields the final chunk. Descending
// directly to the target leaf keeps the seek O(log n). The caller
// has verified the offset.
func (r Rope) chunksFrom(offset ByteOffset) *ChunkIterator {
	it := &ChunkIterator{}
	if r.root == nil {
		return it
	}
	n := r.root
	for !n.isLeaf() {
		if offset < n.weight {
			it.stack = append(it.stack, n.right)
			n = n.left
		} else {
			offset -= n.weight
			it.next += n.weight
			n = n.right
		}
	}
	it.stack = append(it.stack, n)
	return it
}

// Next advances to the next chunk and reports whether one exists.
func (it *ChunkIterator) Next() bool {
	for len(it.stack) > 0 {
		n := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]
		if !n.isLeaf() {
			it.stack = append(it.stack, n.right, n.left)
			continue
		}
		it.chunk = n.chunk
		it.start = it.next
		it.next += ByteOffset(n.chunk.Len())
		return true
	}
	return false
}

// Chunk returns the current chunk.
func (it *ChunkIterator) Chunk() Chunk {
	return it.chunk
}

// Offset returns the byte offset at which the current chunk starts.
func (it *ChunkIterator) Offset() ByteOffset {
	return it.start
}

// LineIterator walks the rope line by line.
type LineIterator struct {
	rope    Rope
	line    int
	start   ByteOffset
	end     ByteOffset
	text    string
	started bool
}

// Lines returns an iterator over all lines in the rope. An empty
// rope yields a single empty line, matching LineCount.
func (r Rope) Lines() *LineIterator {
	return &LineIterator{rope: r}
}

// Next advances to the next line and reports whether one exists.
func (it *LineIterator) Next() bool {
	if it.started {
		it.line++
	} else {
		it.started = true
	}
	r := it.rope
	if it.line >= r.LineCount() {
		return false
	}
	it.start, it.end = 0, r.Len()
	if it.line > 0 {
		it.start = r.root.offsetAfterNewline(it.line)
	}
	if it.line < r.LineCount()-1 {
		it.end = r.root.offsetAfterNewline(it.line+1) - 1
	}
	it.text = r.sliceUnchecked(it.start, it.end)
	return true
}

// Text returns the current line without its trailing newline.
func (it *LineIterator) Text() string {
	return it.text
}

// Line returns the current zero-based line number.
func (it *LineIterator) Line() int {
	return it.line
}

// StartOffset returns the offset of the current line's first byte.
func (it *LineIterator) StartOffset() ByteOffset {
	return it.start
}

// EndOffset returns the offset just past the current line's content.
func (it *LineIterator) EndOffset() ByteOffset {
	return it.end
}

// RuneIterator walks runes in document order.
type RuneIterator struct {
	chunks  *ChunkIterator
	data    string
	idx     int
	base    ByteOffset // rope offset of data[0]
	skip    ByteOffset // starting offset of a seeked iteration
	current rune
	size    int
	offset  ByteOffset
}

// Runes returns an iterator over all runes in the rope.
func (r Rope) Runes() *RuneIterator {
	return &RuneIterator{chunks: r.Chunks()}
}

// RunesFrom returns a rune iterator starting at offset, which must
// lie within the text and on a rune boundary.
func (r Rope) RunesFrom(offset ByteOffset) (*RuneIterator, error) {
	if offset < 0 || offset > r.Len() {
		return nil, ErrOutOfRange
	}
	if err := r.checkBoundary(offset); err != nil {
		return nil, err
	}
	return &RuneIterator{chunks: r.chunksFrom(offset), skip: offset}, nil
}

// Next advances to the next rune and reports whether one exists.
func (it *RuneIterator) Next() bool {
	for it.idx >= len(it.data) {
		if !it.chunks.Next() {
			return false
		}
		it.data = it.chunks.Chunk().String()
		it.base = it.chunks.Offset()
		it.idx = 0
		if it.skip > it.base {
			it.idx = int(it.skip - it.base)
		}
	}
	it.current, it.size = utf8.DecodeRuneInString(it.data[it.idx:])
	it.offset = it.base + ByteOffset(it.idx)
	it.idx += it.size
	return true
}

// Rune returns the current rune.
func (it *RuneIterator) Rune() rune {
	return it.current
}

// Size returns the encoded byte size of the current rune.
func (it *RuneIterator) Size() int {
	return it.size
}

// Offset returns the byte offset of the current rune.
func (it *RuneIterator) Offset() ByteOffset {
	return it.offset
}

// ReverseRuneIterator walks runes backward from a starting offset,
// yielding the runes strictly before it.
type ReverseRuneIterator struct {
	rope    Rope
	offset  ByteOffset
	current rune
	size    int
}

// ReverseRunes returns an iterator over all runes in reverse order.
func (r Rope) ReverseRunes() *ReverseRuneIterator {
	return &ReverseRuneIterator{rope: r, offset: r.Len()}
}

// ReverseRunesFrom returns a reverse iterator whose first rune is the
// one ending at offset. The offset must lie within the text and on a
// rune boundary.
func (r Rope) ReverseRunesFrom(offset ByteOffset) (*ReverseRuneIterator, error) {
	if offset < 0 || offset > r.Len() {
		return nil, ErrOutOfRange
	}
	if err := r.checkBoundary(offset); err != nil {
		return nil, err
	}
	return &ReverseRuneIterator{rope: r, offset: offset}, nil
}

// Next moves to the preceding rune and reports whether one exists.
func (it *ReverseRuneIterator) Next() bool {
	if it.offset == 0 {
		return false
	}
	it.offset--
	for it.offset > 0 {
		b, _ := it.rope.ByteAt(it.offset)
		if isUTF8Start(b) {
			break
		}
		it.offset--
	}
	chunk, start := it.rope.root.chunkAt(it.offset)
	it.current, it.size = utf8.DecodeRuneInString(chunk.text[it.offset-start:])
	return true
}

// Rune returns the current rune.
func (it *ReverseRuneIterator) Rune() rune {
	return it.current
}

// Size returns the encoded byte size of the current rune.
func (it *ReverseRuneIterator) Size() int {
	return it.size
}

// Offset returns the byte offset of the current rune.
func (it *ReverseRuneIterator) Offset() ByteOffset {
	return it.offset
}

// Reader streams the rope's text chunk by chunk. It implements
// io.Reader without materializing the text.
type Reader struct {
	chunks *ChunkIterator
	rest   string
}

// Reader returns an io.Reader over the rope's full text.
func (r Rope) Reader() *Reader {
	return &Reader{chunks: r.Chunks()}
}

// Read copies up to len(p) bytes of rope text into p.
func (rd *Reader) Read(p []byte) (int, error) {
	for len(rd.rest) == 0 {
		if !rd.chunks.Next() {
			return 0, io.EOF
		}
		rd.rest = rd.chunks.Chunk().String()
	}
	n := copy(p, rd.rest)
	rd.rest = rd.rest[n:]
	return n, nil
}
