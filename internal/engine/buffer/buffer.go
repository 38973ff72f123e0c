package buffer

import (
	"errors"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dshills/twine/internal/engine/history"
	"github.com/dshills/twine/internal/engine/rope"
)

// Errors returned by buffer operations. Position and encoding errors
// from the underlying rope pass through unchanged, so callers can
// match rope.ErrOutOfRange and rope.ErrInvalidEncoding with errors.Is.
var (
	ErrReadOnly     = errors.New("buffer: read-only")
	ErrEditsOverlap = errors.New("buffer: edits overlap or are not in reverse order")
)

// ByteOffset is a byte position in buffer content. It aliases the rope
// offset type, so rope results can be used without conversion.
type ByteOffset = rope.ByteOffset

// Point is a zero-based line/column position. It aliases the rope
// point type.
type Point = rope.Point

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingLF:
		return "\\n"
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingLF:
		return "\n"
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Buffer wraps a rope with editor state: a name, an optional file
// path, a cursor position, undo history, and a staging area that
// batches contiguous typing. It provides the primary interface for
// text manipulation. All methods are thread-safe.
//
// Reads always see committed content. Text staged through StageInsert
// and StageDelete becomes visible once committed, which happens on
// Flush, when the staging area fills, or before any non-contiguous
// edit.
type Buffer struct {
	mu         sync.RWMutex
	name       string
	path       string
	rope       rope.Rope
	revision   uint64
	savedAt    uint64
	position   ByteOffset
	lineEnding LineEnding
	endingSet  bool
	readOnly   bool

	stage     *rope.EditBuffer
	stageCap  int
	stageBase history.Snapshot

	hist      *history.History
	histLimit int
}

// New creates a new empty buffer.
func New(opts ...Option) *Buffer {
	b := &Buffer{
		rope:       rope.New(),
		lineEnding: LineEndingLF,
		stageCap:   rope.DefaultEditBufferSize,
	}

	for _, opt := range opts {
		opt(b)
	}

	b.hist = history.New(b.histLimit)
	return b
}

// NewFromString creates a buffer with initial content, which must be
// valid UTF-8. Content is stored as given; unless an explicit line
// ending option is set, the buffer adopts the style detected in the
// content for subsequently inserted text.
func NewFromString(s string, opts ...Option) *Buffer {
	b := New(opts...)
	if !b.endingSet {
		b.lineEnding = DetectLineEnding(s)
	}
	b.rope = rope.FromString(s)
	return b
}

// NewFromReader creates a buffer from an io.Reader, rejecting input
// that is not valid UTF-8.
func NewFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	root, err := rope.FromReader(r)
	if err != nil {
		return nil, err
	}
	return NewFromRope(root, opts...), nil
}

// NewFromRope creates a buffer that adopts an existing rope, such as
// one produced by the file loader. The rope is shared, never copied.
func NewFromRope(root rope.Rope, opts ...Option) *Buffer {
	b := New(opts...)
	if !b.endingSet {
		// Peek at the first chunks only; sampling the head is enough
		// to pick a style for inserted text.
		head, _ := root.Slice(0, min(root.Len(), 4096))
		b.lineEnding = DetectLineEnding(head)
	}
	b.rope = root
	return b
}

// normalizeLineEndings converts line endings in inserted text to the
// buffer's preferred style. Existing content is never rewritten.
func (b *Buffer) normalizeLineEndings(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	switch b.lineEnding {
	case LineEndingCRLF:
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
		s = strings.ReplaceAll(s, "\n", "\r\n")
	case LineEndingCR:
		s = strings.ReplaceAll(s, "\r\n", "\r")
		s = strings.ReplaceAll(s, "\n", "\r")
	default:
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
	}
	return s
}

// Read Operations

// Text returns the full buffer content as a string.
// For large buffers, prefer Slice or the snapshot iterators.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.String()
}

// Slice returns text in the byte range [start, end).
func (b *Buffer) Slice(start, end ByteOffset) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.Slice(start, end)
}

// Len returns the total byte length of committed content.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.Len()
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.IsEmpty()
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineCount()
}

// Line returns the text of a specific zero-based line, without its
// trailing newline.
func (b *Buffer) Line(line int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.Line(line)
}

// LineStart returns the byte offset of the start of a line.
func (b *Buffer) LineStart(line int) (ByteOffset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineStart(line)
}

// LineEnd returns the byte offset of the end of a line, before its
// newline.
func (b *Buffer) LineEnd(line int) (ByteOffset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineEnd(line)
}

// LineAt returns the zero-based line containing the given offset.
func (b *Buffer) LineAt(offset ByteOffset) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineAt(offset)
}

// ByteAt returns the byte at the given offset.
func (b *Buffer) ByteAt(offset ByteOffset) (byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.ByteAt(offset)
}

// RuneAt returns the rune starting at the given byte offset and its
// size in bytes. At the end of the buffer it returns io.EOF; an
// offset inside a rune returns rope.ErrInvalidEncoding.
func (b *Buffer) RuneAt(offset ByteOffset) (rune, int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.RuneAt(offset)
}

// Coordinate Conversion

// OffsetToPoint converts a byte offset to line/column.
func (b *Buffer) OffsetToPoint(offset ByteOffset) (Point, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.OffsetToPoint(offset)
}

// PointToOffset converts line/column to byte offset.
func (b *Buffer) PointToOffset(point Point) (ByteOffset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.PointToOffset(point)
}

// Write Operations

// Insert inserts text at the given offset as a committed edit,
// flushing any staged typing first. Text is normalized to the
// buffer's line ending style. Returns the end position of the
// inserted text and moves the cursor there.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.readOnly {
		return 0, ErrReadOnly
	}
	b.flushLocked()

	text = b.normalizeLineEndings(text)
	r, err := b.rope.Insert(offset, text)
	if err != nil {
		return 0, err
	}
	end := offset + ByteOffset(len(text))
	if len(text) > 0 {
		b.applyLocked(r, end, "insert")
	}
	return end, nil
}

// Delete removes text in the byte range [start, end), flushing any
// staged typing first. The cursor moves to start.
func (b *Buffer) Delete(start, end ByteOffset) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.readOnly {
		return ErrReadOnly
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

// Replace replaces text in the byte range [start, end) with new text
// as a single edit. Returns the end position of the replacement text
// and moves the cursor there.
func (b *Buffer) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.readOnly {
		return 0, ErrReadOnly
	}
	b.flushLocked()

	text = b.normalizeLineEndings(text)
	r, err := b.rope.Replace(start, end, text)
	if err != nil {
		return 0, err
	}
	newEnd := start + ByteOffset(len(text))
	if end > start || len(text) > 0 {
		b.applyLocked(r, newEnd, "replace")
	}
	return newEnd, nil
}

// applyLocked installs a new rope root, moves the cursor, bumps the
// revision, and records the pre-edit state. Caller must hold mu and
// have flushed the stage.
func (b *Buffer) applyLocked(r rope.Rope, pos ByteOffset, label string) {
	prev := history.Snapshot{Rope: b.rope, Position: b.position}
	b.rope = r
	b.position = pos
	b.revision++
	b.hist.Record(prev, label)
}

// ConvertLineEndings rewrites the whole buffer to the given line
// ending style and adopts it for future inserts. This is a single
// committed edit.
func (b *Buffer) ConvertLineEndings(le LineEnding) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.readOnly {
		return ErrReadOnly
	}
	b.flushLocked()

	b.lineEnding = le
	b.endingSet = true
	text := b.normalizeLineEndings(b.rope.String())
	r := rope.FromString(text)
	if r.Equals(b.rope) {
		return nil
	}
	b.applyLocked(r, b.clampLocked(r, b.position), "convert line endings")
	return nil
}

// Cursor

// Position returns the cursor byte offset. While typing is staged the
// cursor may sit past the committed length; it is valid again once
// the stage commits.
func (b *Buffer) Position() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.position
}

// SetPosition moves the cursor, flushing any staged typing first.
// The offset must lie within the text and on a rune boundary.
func (b *Buffer) SetPosition(offset ByteOffset) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.flushLocked()
	if offset < 0 || offset > b.rope.Len() {
		return rope.ErrOutOfRange
	}
	if offset < b.rope.Len() {
		if c, ok := b.rope.ByteAt(offset); ok && !utf8.RuneStart(c) {
			return rope.ErrInvalidEncoding
		}
	}
	b.position = offset
	return nil
}

// ClampPosition returns offset clamped into the valid range and moved
// back to the nearest rune start at or before it.
func (b *Buffer) ClampPosition(offset ByteOffset) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.clampLocked(b.rope, offset)
}

func (b *Buffer) clampLocked(r rope.Rope, offset ByteOffset) ByteOffset {
	n := r.Len()
	if offset < 0 {
		return 0
	}
	if offset > n {
		offset = n
	}
	for offset > 0 && offset < n {
		c, ok := r.ByteAt(offset)
		if !ok || utf8.RuneStart(c) {
			break
		}
		offset--
	}
	return offset
}

// Buffer State

// Name returns the buffer's display name.
func (b *Buffer) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name
}

// SetName sets the buffer's display name.
func (b *Buffer) SetName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.name = name
}

// Path returns the file path backing this buffer, or "" for a
// scratch buffer.
func (b *Buffer) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// SetPath sets the file path backing this buffer.
func (b *Buffer) SetPath(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.path = path
}

// Modified reports whether the buffer has changed since it was
// created or last marked saved. Staged typing counts as a change.
func (b *Buffer) Modified() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stage != nil && b.stage.Pending() > 0 {
		return true
	}
	return b.revision != b.savedAt
}

// MarkSaved records the current revision as the saved state.
func (b *Buffer) MarkSaved() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.savedAt = b.revision
}

// Revision returns the current revision. It increments on every
// committed edit, including undo and redo.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// ReadOnly reports whether mutations are rejected.
func (b *Buffer) ReadOnly() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.readOnly
}

// SetReadOnly toggles rejection of mutations.
func (b *Buffer) SetReadOnly(ro bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readOnly = ro
}

// LineEnding returns the buffer's line ending style for inserted
// text.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// SetLineEnding sets the style for subsequently inserted text without
// converting existing content. Use ConvertLineEndings to rewrite.
func (b *Buffer) SetLineEnding(le LineEnding) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lineEnding = le
	b.endingSet = true
}

// Rope returns the committed rope. Ropes are immutable, so the result
// is safe to use concurrently while the buffer keeps changing.
func (b *Buffer) Rope() rope.Rope {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope
}

// Snapshot returns a read-only view of the committed buffer state.
// Safe for concurrent access from other goroutines.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return Snapshot{
		rope:     b.rope, // ropes are immutable, safe to share
		revision: b.revision,
	}
}

// WriteTo writes the committed content to w, flushing staged typing
// first. It implements io.WriterTo.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	b.mu.Lock()
	b.flushLocked()
	r := b.rope
	b.mu.Unlock()

	return r.WriteTo(w)
}
