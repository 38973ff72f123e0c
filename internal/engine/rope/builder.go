package rope

import (
	"io"
	"unicode/utf8"
)

// Builder assembles a rope incrementally from writes of arbitrary
// size. Input is validated and chunked as it arrives, so building
// from a large reader never holds more than one flush buffer beyond
// the finished chunks. A write boundary may fall inside a multi-byte
// rune; the incomplete tail is carried into the next flush rather
// than split.
type Builder struct {
	chunks  []Chunk
	pending []byte
	total   int
	err     error
}

// flushThreshold is how much pending input accumulates before being
// converted into chunks.
const flushThreshold = 2 * MaxChunkBytes

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{chunks: make([]Chunk, 0, 64)}
}

// WriteString appends s to the builder.
func (b *Builder) WriteString(s string) {
	if len(s) == 0 || b.err != nil {
		return
	}
	b.total += len(s)
	b.pending = append(b.pending, s...)
	if len(b.pending) >= flushThreshold {
		b.flush()
	}
}

// Write appends p to the builder. It implements io.Writer; the
// returned error is sticky and also surfaces from Build.
func (b *Builder) Write(p []byte) (int, error) {
	b.WriteString(string(p))
	if b.err != nil {
		return 0, b.err
	}
	return len(p), nil
}

// ReadFrom drains r into the builder. It implements io.ReaderFrom.
func (b *Builder) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, 64*1024)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.WriteString(string(buf[:n]))
			total += int64(n)
			if b.err != nil {
				return total, b.err
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Len returns the total number of bytes written so far.
func (b *Builder) Len() int {
	return b.total
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.chunks = b.chunks[:0]
	b.pending = b.pending[:0]
	b.total = 0
	b.err = nil
}

// Build finishes the rope from everything written and resets the
// builder. It fails with ErrInvalidEncoding when the input was not
// valid UTF-8.
func (b *Builder) Build() (Rope, error) {
	if b.err == nil && len(b.pending) > 0 {
		// The final flush may not end inside a rune.
		piece := string(b.pending)
		b.pending = b.pending[:0]
		if ValidateUTF8(piece) >= 0 {
			b.err = ErrInvalidEncoding
		} else {
			b.chunks = append(b.chunks, splitChunks(piece)...)
		}
	}
	if b.err != nil {
		err := b.err
		b.Reset()
		return Rope{}, err
	}
	root := buildBalanced(b.chunks)
	b.Reset()
	return Rope{root: root}, nil
}

// flush converts the complete-rune prefix of pending into chunks,
// carrying any trailing partial rune forward.
func (b *Builder) flush() {
	k := completePrefix(b.pending)
	if k == 0 {
		return
	}
	piece := string(b.pending[:k])
	b.pending = append(b.pending[:0], b.pending[k:]...)
	if ValidateUTF8(piece) >= 0 {
		b.err = ErrInvalidEncoding
		return
	}
	b.chunks = append(b.chunks, splitChunks(piece)...)
}

// completePrefix returns the length of the longest prefix of p that
// does not end in the middle of a multi-byte rune.
func completePrefix(p []byte) int {
	end := len(p)
	for back := 1; back <= utf8.UTFMax && end-back >= 0; back++ {
		lead := p[end-back]
		if !isUTF8Start(lead) {
			continue
		}
		if runeLen(lead) > back {
			return end - back
		}
		return end
	}
	return end
}

// runeLen returns the encoded length implied by a UTF-8 lead byte.
// Invalid lead bytes report one so validation sees them immediately.
func runeLen(lead byte) int {
	switch {
	case lead < 0x80:
		return 1
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	}
	return 1
}
