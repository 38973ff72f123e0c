package rope

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxChunkBytes caps the size of a chunk that contains no newline.
	// Runs of newline-free text longer than this are cut at UTF-8
	// boundaries so a chunk never splits a multi-byte rune.
	MaxChunkBytes = 256

	// smallChunkBytes is the threshold below which two adjacent leaf
	// chunks are fused during a merge rather than hung under a new
	// parent. Keeps single-character edits from shattering the tree
	// into one-byte leaves.
	smallChunkBytes = 32
)

// Chunk is the immutable unit of text held by a leaf. A chunk either
// contains no newline at all or ends with its only newline, so every
// line boundary in the rope coincides with a chunk boundary.
//
// The text field is a view into a larger string. Chunks cut from the
// same source share its backing array; cutting copies no bytes.
type Chunk struct {
	text    string
	summary Summary
}

func newChunk(view string) Chunk {
	return Chunk{text: view, summary: ComputeSummary(view)}
}

// String returns the chunk's text.
func (c Chunk) String() string {
	return c.text
}

// Len returns the byte length of the chunk.
func (c Chunk) Len() int {
	return len(c.text)
}

// Summary returns the chunk's precomputed measurements.
func (c Chunk) Summary() Summary {
	return c.summary
}

// IsEmpty reports whether the chunk holds no text.
func (c Chunk) IsEmpty() bool {
	return len(c.text) == 0
}

// cut divides the chunk at a byte offset without copying. The caller
// must have verified that offset is a rune boundary strictly inside
// the chunk.
func (c Chunk) cut(offset int) (Chunk, Chunk) {
	return newChunk(c.text[:offset]), newChunk(c.text[offset:])
}

// splitChunks partitions s into chunks that obey the leaf rule: a
// boundary after every newline, and newline-free runs no longer than
// MaxChunkBytes. Every produced chunk is a view into s.
func splitChunks(s string) []Chunk {
	if len(s) == 0 {
		return nil
	}
	chunks := make([]Chunk, 0, len(s)/MaxChunkBytes+4)
	for len(s) > 0 {
		nl := strings.IndexByte(s, '\n')
		var cut int
		switch {
		case nl >= 0 && nl < MaxChunkBytes:
			// Cut just past the newline so it ends its chunk.
			cut = nl + 1
		case nl < 0 && len(s) <= MaxChunkBytes:
			cut = len(s)
		default:
			// The next newline, if any, is too far away. Take a
			// maximal newline-free piece ending on a rune boundary.
			cut = splitBoundary(s, MaxChunkBytes)
		}
		chunks = append(chunks, newChunk(s[:cut]))
		s = s[cut:]
	}
	return chunks
}

// splitBoundary returns the largest k <= max such that s[:k] ends on
// a rune boundary. For valid UTF-8 this backs up at most three bytes.
func splitBoundary(s string, max int) int {
	if max >= len(s) {
		return len(s)
	}
	k := max
	for k > 0 && !isUTF8Start(s[k]) {
		k--
	}
	if k == 0 {
		// Malformed input; cut unaligned rather than loop forever.
		return max
	}
	return k
}

// isUTF8Start reports whether b can begin a UTF-8 encoded rune.
// Continuation bytes have the form 10xxxxxx.
func isUTF8Start(b byte) bool {
	return b&0xC0 != 0x80
}

// ValidateUTF8 returns the byte position of the first invalid UTF-8
// sequence in s, or -1 if s is entirely valid.
func ValidateUTF8(s string) int {
	for i := 0; i < len(s); {
		if s[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
