package buffer

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithName sets the buffer's display name.
func WithName(name string) Option {
	return func(b *Buffer) {
		b.name = name
	}
}

// WithPath sets the file path backing the buffer.
func WithPath(path string) Option {
	return func(b *Buffer) {
		b.path = path
	}
}

// WithLineEnding sets the buffer's line ending style for inserted
// text and disables detection from initial content.
func WithLineEnding(le LineEnding) Option {
	return func(b *Buffer) {
		b.lineEnding = le
		b.endingSet = true
	}
}

// WithLF configures the buffer to use Unix line endings (\n).
func WithLF() Option {
	return WithLineEnding(LineEndingLF)
}

// WithCRLF configures the buffer to use Windows line endings (\r\n).
func WithCRLF() Option {
	return WithLineEnding(LineEndingCRLF)
}

// WithCR configures the buffer to use old Mac line endings (\r).
func WithCR() Option {
	return WithLineEnding(LineEndingCR)
}

// WithHistoryLimit bounds the undo stack. A non-positive limit keeps
// the default.
func WithHistoryLimit(limit int) Option {
	return func(b *Buffer) {
		if limit > 0 {
			b.histLimit = limit
		}
	}
}

// WithBatchCapacity sets the staging capacity for contiguous typing.
// A non-positive capacity keeps the default.
func WithBatchCapacity(capacity int) Option {
	return func(b *Buffer) {
		if capacity > 0 {
			b.stageCap = capacity
		}
	}
}

// WithReadOnly makes the buffer reject mutations.
func WithReadOnly() Option {
	return func(b *Buffer) {
		b.readOnly = true
	}
}

// DetectLineEnding returns the most common line ending in the text.
// Returns LineEndingLF if no line endings are found.
func DetectLineEnding(text string) LineEnding {
	var lfCount, crlfCount, crCount int

	i := 0
	for i < len(text) {
		if i+1 < len(text) && text[i] == '\r' && text[i+1] == '\n' {
			crlfCount++
			i += 2
		} else if text[i] == '\r' {
			crCount++
			i++
		} else if text[i] == '\n' {
			lfCount++
			i++
		} else {
			i++
		}
	}

	if crlfCount >= lfCount && crlfCount >= crCount && crlfCount > 0 {
		return LineEndingCRLF
	}
	if crCount >= lfCount && crCount >= crlfCount && crCount > 0 {
		return LineEndingCR
	}
	return LineEndingLF
}
