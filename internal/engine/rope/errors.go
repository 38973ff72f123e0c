package rope

import "errors"

// Errors reported by rope operations. Operations that fail return the
// receiver's text unchanged; a rope is never left in a partial state.
var (
	// ErrOutOfRange reports an offset or line number outside the text.
	// Offsets are valid in [0, Len()]; lines in [0, LineCount()).
	ErrOutOfRange = errors.New("rope: position out of range")

	// ErrInvalidEncoding reports text that is not valid UTF-8, or an
	// offset that lands between the bytes of a multi-byte rune.
	ErrInvalidEncoding = errors.New("rope: invalid UTF-8 encoding")
)
