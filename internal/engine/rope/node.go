package rope

// node is one vertex of the binary tree behind a Rope. A node is
// either a leaf carrying a single chunk or an internal node with
// exactly two children. Nodes are immutable after construction;
// edits build new nodes along the touched path and share the rest.
type node struct {
	// weight is the byte length of the left subtree. Descents compare
	// an offset against weight to choose a side: offsets below weight
	// resolve in the left child, the rest continue right at
	// offset-weight.
	weight ByteOffset

	// summary covers the whole subtree rooted here.
	summary Summary

	left   *node
	right  *node
	height int

	// chunk is the leaf payload. Only meaningful when left == nil.
	chunk Chunk
}

// newLeaf wraps a chunk in a leaf node. Callers never create empty
// leaves; the empty rope is represented by a nil root.
func newLeaf(c Chunk) *node {
	return &node{summary: c.Summary(), chunk: c}
}

// newInternal joins two non-nil subtrees under a fresh parent and
// derives its weight, summary, and height from them.
func newInternal(left, right *node) *node {
	h := left.height
	if right.height > h {
		h = right.height
	}
	return &node{
		weight:  left.summary.Bytes,
		summary: left.summary.Add(right.summary),
		left:    left,
		right:   right,
		height:  h + 1,
	}
}

func (n *node) isLeaf() bool {
	return n.left == nil
}

func (n *node) len() ByteOffset {
	return n.summary.Bytes
}

// join concatenates two subtrees, tolerating nil on either side. It
// is the raw O(1) construction used while reassembling split halves;
// public merges go through merge, which also restores balance.
func join(a, b *node) *node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return newInternal(a, b)
}

// split divides the subtree at offset, which the caller has verified
// to be a rune boundary strictly inside the node. Only nodes on the
// descent path are rebuilt; every subtree hanging off that path is
// shared with the original tree.
func (n *node) split(offset ByteOffset) (*node, *node) {
	if n.isLeaf() {
		l, r := n.chunk.cut(int(offset))
		return newLeaf(l), newLeaf(r)
	}
	switch {
	case offset < n.weight:
		l, r := n.left.split(offset)
		return l, join(r, n.right)
	case offset == n.weight:
		return n.left, n.right
	default:
		l, r := n.right.split(offset - n.weight)
		return join(n.left, l), r
	}
}

// byteAt returns the byte at offset. The caller has verified
// 0 <= offset < n.len().
func (n *node) byteAt(offset ByteOffset) byte {
	for !n.isLeaf() {
		if offset < n.weight {
			n = n.left
		} else {
			offset -= n.weight
			n = n.right
		}
	}
	return n.chunk.text[offset]
}

// chunkAt returns the leaf chunk containing offset together with the
// rope offset at which that chunk starts. At offset == n.len() it
// returns the final chunk. The caller has verified the range.
func (n *node) chunkAt(offset ByteOffset) (Chunk, ByteOffset) {
	var start ByteOffset
	for !n.isLeaf() {
		if offset < n.weight {
			n = n.left
		} else {
			offset -= n.weight
			start += n.weight
			n = n.right
		}
	}
	return n.chunk, start
}

// newlinesBefore counts newlines in the first offset bytes of the
// subtree. The caller has verified 0 <= offset <= n.len().
func (n *node) newlinesBefore(offset ByteOffset) int {
	var count int
	for !n.isLeaf() {
		if offset < n.weight {
			n = n.left
			continue
		}
		count += n.left.summary.Newlines
		offset -= n.weight
		n = n.right
	}
	return count + ComputeSummary(n.chunk.text[:offset]).Newlines
}

// offsetAfterNewline returns the offset one past the nth newline in
// the subtree, counting from 1. The caller has verified that the
// subtree holds at least nth newlines.
func (n *node) offsetAfterNewline(nth int) ByteOffset {
	var base ByteOffset
	for !n.isLeaf() {
		if nth <= n.left.summary.Newlines {
			n = n.left
			continue
		}
		nth -= n.left.summary.Newlines
		base += n.weight
		n = n.right
	}
	return base + ByteOffset(findNthNewline(n.chunk.text, nth)) + 1
}
