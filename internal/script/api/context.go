package api

// Context provides access to editor state for API modules. It is
// passed to modules during construction so they can reach the active
// buffer and the editor host without importing either.
type Context struct {
	// Buffer provides operations on the active buffer.
	Buffer BufferProvider

	// Editor provides editor-level operations: the output sink,
	// buffer management, and file access.
	Editor EditorProvider
}

// BufferProvider defines the buffer operations scripts can call. All
// offsets are byte offsets; lines are zero-based (modules convert to
// Lua's one-based convention at the boundary).
type BufferProvider interface {
	// Current returns the name of the active buffer.
	Current() string

	// Text returns the full buffer text.
	Text() string

	// TextRange returns text in the byte range [start, end).
	TextRange(start, end int) (string, error)

	// Line returns the text of a zero-based line, without its newline.
	Line(line int) (string, error)

	// LineCount returns the total number of lines.
	LineCount() int

	// Len returns the buffer length in bytes.
	Len() int

	// Position returns the cursor byte offset.
	Position() int

	// SetPosition moves the cursor to a byte offset.
	SetPosition(offset int) error

	// CharAt returns the character starting at the given byte offset.
	// At the end of the buffer it returns ok=false with no error.
	CharAt(offset int) (ch string, ok bool, err error)

	// Insert inserts text at the given byte offset and returns the end
	// offset of the inserted text.
	Insert(offset int, text string) (int, error)

	// Delete deletes text in the byte range [start, end).
	Delete(start, end int) error

	// Replace replaces the byte range [start, end) and returns the end
	// offset of the replacement text.
	Replace(start, end int, text string) (int, error)

	// Undo undoes the last change.
	Undo() bool

	// Redo redoes the last undone change.
	Redo() bool

	// Path returns the file path backing the buffer, or "".
	Path() string

	// Modified reports whether the buffer has unsaved changes.
	Modified() bool
}

// EditorProvider defines the editor-level operations scripts can
// call.
type EditorProvider interface {
	// Send writes user-visible text to the editor's output sink.
	// Scripts never write to stdout directly.
	Send(text string)

	// Buffers returns the names of all open buffers.
	Buffers() []string

	// Current returns the name of the active buffer.
	Current() string

	// Switch makes the named buffer active.
	Switch(name string) error

	// Open opens a file into a new buffer and makes it active,
	// returning the buffer name.
	Open(path string) (string, error)

	// Save writes the active buffer back to its file.
	Save() error

	// CanAccessFiles reports whether the script may open and save
	// files. Open and Save are rejected when this is false.
	CanAccessFiles() bool
}
