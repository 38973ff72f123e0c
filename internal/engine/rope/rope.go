package rope

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Rope is an immutable rope for efficient text storage. Operations
// return new Rope values and never modify the receiver, so any Rope
// handle is a stable snapshot that can be read concurrently without
// locks. Ropes produced by edits share structure with their parents;
// an edit copies only the nodes along one root-to-leaf path.
//
// The zero value is an empty rope ready to use.
type Rope struct {
	root *node
}

// New creates an empty rope.
func New() Rope {
	return Rope{}
}

// FromString creates a rope from a string, which must be valid UTF-8.
// Use FromBytes or FromReader for input that still needs validation.
func FromString(s string) Rope {
	if len(s) == 0 {
		return Rope{}
	}
	return Rope{root: buildBalanced(splitChunks(s))}
}

// FromBytes creates a rope from raw bytes, rejecting input that is
// not valid UTF-8.
func FromBytes(b []byte) (Rope, error) {
	if !utf8.Valid(b) {
		return Rope{}, ErrInvalidEncoding
	}
	return FromString(string(b)), nil
}

// FromReader creates a rope from the full contents of r, rejecting
// input that is not valid UTF-8.
func FromReader(r io.Reader) (Rope, error) {
	var b Builder
	if _, err := b.ReadFrom(r); err != nil {
		return Rope{}, err
	}
	return b.Build()
}

// Len returns the total byte length.
func (r Rope) Len() ByteOffset {
	if r.root == nil {
		return 0
	}
	return r.root.len()
}

// IsEmpty reports whether the rope contains no text.
func (r Rope) IsEmpty() bool {
	return r.root == nil
}

// NewlineCount returns the number of newline bytes in the text.
func (r Rope) NewlineCount() int {
	if r.root == nil {
		return 0
	}
	return r.root.summary.Newlines
}

// LineCount returns the number of lines, which is one more than the
// number of newlines. The empty rope has a single empty line.
func (r Rope) LineCount() int {
	return r.NewlineCount() + 1
}

// Summary returns the aggregated measurements for the entire rope.
func (r Rope) Summary() Summary {
	if r.root == nil {
		return Summary{}
	}
	return r.root.summary
}

// Height returns the height of the tree: zero for an empty rope or a
// single leaf. Useful for balance diagnostics.
func (r Rope) Height() int {
	if r.root == nil {
		return 0
	}
	return r.root.height
}

// ChunkCount returns the number of leaf chunks in the rope.
func (r Rope) ChunkCount() int {
	if r.root == nil {
		return 0
	}
	count := 0
	for it := r.Chunks(); it.Next(); {
		count++
	}
	return count
}

// String returns the full text as one contiguous string. Use
// sparingly on large ropes; it copies everything.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(r.Len()))
	for it := r.Chunks(); it.Next(); {
		sb.WriteString(it.Chunk().String())
	}
	return sb.String()
}

// Slice returns the text in the byte range [start, end). Both bounds
// must lie within the text and on rune boundaries.
func (r Rope) Slice(start, end ByteOffset) (string, error) {
	if start < 0 || end < start || end > r.Len() {
		return "", ErrOutOfRange
	}
	if err := r.checkBoundary(start); err != nil {
		return "", err
	}
	if err := r.checkBoundary(end); err != nil {
		return "", err
	}
	return r.sliceUnchecked(start, end), nil
}

// sliceUnchecked assembles the text in [start, end) from the chunks
// overlapping it. Callers have validated the bounds.
func (r Rope) sliceUnchecked(start, end ByteOffset) string {
	if start >= end {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(end - start))
	it := r.chunksFrom(start)
	for it.Next() && it.Offset() < end {
		c := it.Chunk().String()
		from := start - it.Offset()
		if from < 0 {
			from = 0
		}
		to := end - it.Offset()
		if to > ByteOffset(len(c)) {
			to = ByteOffset(len(c))
		}
		sb.WriteString(c[from:to])
	}
	return sb.String()
}

// ByteAt returns the byte at offset, or false when offset is outside
// the text.
func (r Rope) ByteAt(offset ByteOffset) (byte, bool) {
	if r.root == nil || offset < 0 || offset >= r.Len() {
		return 0, false
	}
	return r.root.byteAt(offset), true
}

// RuneAt decodes the rune starting at offset and returns it with its
// encoded size. At the end of the text it returns io.EOF; offsets
// inside a multi-byte rune return ErrInvalidEncoding.
func (r Rope) RuneAt(offset ByteOffset) (rune, int, error) {
	if offset < 0 || offset > r.Len() {
		return 0, 0, ErrOutOfRange
	}
	if offset == r.Len() {
		return 0, 0, io.EOF
	}
	chunk, start := r.root.chunkAt(offset)
	local := int(offset - start)
	if !isUTF8Start(chunk.text[local]) {
		return 0, 0, ErrInvalidEncoding
	}
	ch, size := utf8.DecodeRuneInString(chunk.text[local:])
	return ch, size, nil
}

// Split divides the rope at offset into the text before it and the
// text from it onward. Both halves share structure with the
// receiver. The offset must lie within the text and on a rune
// boundary; on error the receiver is returned unchanged as neither
// half.
func (r Rope) Split(offset ByteOffset) (Rope, Rope, error) {
	if offset < 0 || offset > r.Len() {
		return Rope{}, Rope{}, ErrOutOfRange
	}
	if err := r.checkBoundary(offset); err != nil {
		return Rope{}, Rope{}, err
	}
	switch offset {
	case 0:
		return Rope{}, r, nil
	case r.Len():
		return r, Rope{}, nil
	}
	left, right := r.root.split(offset)
	return Rope{root: left}, Rope{root: right}, nil
}

// Merge concatenates two ropes. It is total: any two ropes merge,
// and an empty side returns the other unchanged. Merge restores the
// height invariant when the joined tree has grown too tall, so
// interleaved splits and merges cannot degrade the tree for later
// readers.
func Merge(left, right Rope) Rope {
	return Rope{root: merge(left.root, right.root)}
}

// Concat returns the receiver with other appended. It is Merge in
// method form.
func (r Rope) Concat(other Rope) Rope {
	return Merge(r, other)
}

// Insert places text at the given byte offset and returns the new
// rope. The offset must lie within the text and on a rune boundary,
// and text must be valid UTF-8. Inserting the empty string at a
// valid offset returns the receiver unchanged.
func (r Rope) Insert(offset ByteOffset, text string) (Rope, error) {
	if offset < 0 || offset > r.Len() {
		return r, ErrOutOfRange
	}
	if !utf8.ValidString(text) {
		return r, ErrInvalidEncoding
	}
	if err := r.checkBoundary(offset); err != nil {
		return r, err
	}
	if len(text) == 0 {
		return r, nil
	}
	mid := FromString(text)
	switch offset {
	case 0:
		return Merge(mid, r), nil
	case r.Len():
		return Merge(r, mid), nil
	}
	left, right := r.root.split(offset)
	return Rope{root: merge(merge(left, mid.root), right)}, nil
}

// Delete removes the byte range [start, end) and returns the new
// rope. Both bounds must lie within the text and on rune boundaries.
// An empty range is a no-op.
func (r Rope) Delete(start, end ByteOffset) (Rope, error) {
	if start < 0 || end < start || end > r.Len() {
		return r, ErrOutOfRange
	}
	if err := r.checkBoundary(start); err != nil {
		return r, err
	}
	if err := r.checkBoundary(end); err != nil {
		return r, err
	}
	if start == end {
		return r, nil
	}
	if start == 0 && end == r.Len() {
		return Rope{}, nil
	}
	left, rest := splitAt(r.root, start)
	_, right := splitAt(rest, end-start)
	return Rope{root: merge(left, right)}, nil
}

// Replace substitutes text for the byte range [start, end). It is a
// delete and an insert performed as one edit.
func (r Rope) Replace(start, end ByteOffset, text string) (Rope, error) {
	if start < 0 || end < start || end > r.Len() {
		return r, ErrOutOfRange
	}
	if !utf8.ValidString(text) {
		return r, ErrInvalidEncoding
	}
	if err := r.checkBoundary(start); err != nil {
		return r, err
	}
	if err := r.checkBoundary(end); err != nil {
		return r, err
	}
	left, rest := splitAt(r.root, start)
	_, right := splitAt(rest, end-start)
	mid := FromString(text)
	return Rope{root: merge(merge(left, mid.root), right)}, nil
}

// splitAt is the validated-input form of Split working on raw nodes.
// It tolerates boundary offsets and a nil subtree.
func splitAt(n *node, offset ByteOffset) (*node, *node) {
	if n == nil {
		return nil, nil
	}
	switch offset {
	case 0:
		return nil, n
	case n.len():
		return n, nil
	}
	return n.split(offset)
}

// Equals reports whether two ropes hold the same text. The chunk
// layouts may differ; comparison streams both sides.
func (r Rope) Equals(other Rope) bool {
	if r.Len() != other.Len() {
		return false
	}
	a, b := r.Chunks(), other.Chunks()
	var sa, sb string
	for {
		if len(sa) == 0 {
			if !a.Next() {
				return true
			}
			sa = a.Chunk().String()
		}
		if len(sb) == 0 {
			if !b.Next() {
				return false
			}
			sb = b.Chunk().String()
		}
		n := len(sa)
		if len(sb) < n {
			n = len(sb)
		}
		if sa[:n] != sb[:n] {
			return false
		}
		sa, sb = sa[n:], sb[n:]
	}
}

// WriteTo streams the whole text to w chunk by chunk without
// assembling it in memory. It implements io.WriterTo.
func (r Rope) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for it := r.Chunks(); it.Next(); {
		n, err := io.WriteString(w, it.Chunk().String())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// checkBoundary returns ErrInvalidEncoding when offset lands between
// the bytes of a multi-byte rune. The ends of the text are always
// boundaries. Callers have verified 0 <= offset <= Len().
func (r Rope) checkBoundary(offset ByteOffset) error {
	if offset == 0 || offset == r.Len() {
		return nil
	}
	if !isUTF8Start(r.root.byteAt(offset)) {
		return ErrInvalidEncoding
	}
	return nil
}
