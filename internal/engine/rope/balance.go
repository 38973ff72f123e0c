package rope

import "math/bits"

// balanceSlack is the constant c in the height bound c*log2(bytes).
// Two admits the worst interleaving of splits and naive joins while
// still collapsing degenerate chains long before they hurt.
const balanceSlack = 2

// maxHeightFor returns the tallest tree tolerated for a text of the
// given size. Trees that exceed it after a merge are rebuilt.
func maxHeightFor(bytes ByteOffset) int {
	if bytes < 2 {
		return 1
	}
	return balanceSlack * bits.Len(uint(bytes))
}

// merge concatenates two subtrees and restores the height invariant.
// The balance check runs once per merge, not per node: a single join
// can push the height at most one past the bound, and the rebuild
// pays for itself across the merges that grew the chain.
func merge(a, b *node) *node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.isLeaf() && b.isLeaf() {
		if c, ok := fuseChunks(a.chunk, b.chunk, smallChunkBytes); ok {
			return newLeaf(c)
		}
	}
	n := newInternal(a, b)
	if n.height > maxHeightFor(n.summary.Bytes) {
		n = rebuild(n)
	}
	return n
}

// fuseChunks combines two adjacent chunks into one when the result
// stays within limit bytes and keeps the leaf rule intact, meaning
// the left chunk must be newline-free. This is the one place chunk
// bytes are copied.
func fuseChunks(a, b Chunk, limit int) (Chunk, bool) {
	if a.IsEmpty() {
		return b, true
	}
	if b.IsEmpty() {
		return a, true
	}
	if a.summary.Newlines != 0 || a.Len()+b.Len() > limit {
		return Chunk{}, false
	}
	return newChunk(a.text + b.text), true
}

// rebuild flattens the subtree into its chunk sequence and stacks a
// balanced tree over it. Chunks are reused as-is apart from fusing
// undersized neighbours, so no text is copied in bulk.
func rebuild(n *node) *node {
	return buildBalanced(flatten(n))
}

// flatten collects the subtree's chunks in document order, fusing
// runs of small leaves left behind by pointwise edits.
func flatten(n *node) []Chunk {
	chunks := make([]Chunk, 0, 32)
	stack := make([]*node, 0, n.height+1)
	stack = append(stack, n)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !top.isLeaf() {
			stack = append(stack, top.right, top.left)
			continue
		}
		if last := len(chunks) - 1; last >= 0 {
			if c, ok := fuseChunks(chunks[last], top.chunk, MaxChunkBytes); ok {
				chunks[last] = c
				continue
			}
		}
		chunks = append(chunks, top.chunk)
	}
	return chunks
}

// buildBalanced stacks a minimum-height tree over the given chunks by
// pairing neighbours level by level.
func buildBalanced(chunks []Chunk) *node {
	if len(chunks) == 0 {
		return nil
	}
	nodes := make([]*node, len(chunks))
	for i, c := range chunks {
		nodes[i] = newLeaf(c)
	}
	for len(nodes) > 1 {
		parents := make([]*node, 0, (len(nodes)+1)/2)
		i := 0
		for ; i+1 < len(nodes); i += 2 {
			parents = append(parents, newInternal(nodes[i], nodes[i+1]))
		}
		if i < len(nodes) {
			parents = append(parents, nodes[i])
		}
		nodes = parents
	}
	return nodes[0]
}
