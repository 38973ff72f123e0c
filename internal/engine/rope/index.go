package rope

// Line and offset conversions. All of them are resolved from the
// newline counts stored in node summaries; the rope keeps no separate
// line table, so the index can never drift out of sync with edits.
// Lines are zero-based. Line n is the text between newline n-1 and
// newline n; the text after the final newline is the last line, which
// is empty when the text ends in a newline.

// LineAt returns the line number containing offset, defined as the
// number of newlines strictly before it. The offset one past the last
// byte is valid and reports the final line, so results are monotonic
// in the offset.
func (r Rope) LineAt(offset ByteOffset) (int, error) {
	if offset < 0 || offset > r.Len() {
		return 0, ErrOutOfRange
	}
	if r.root == nil {
		return 0, nil
	}
	return r.root.newlinesBefore(offset), nil
}

// LineStart returns the byte offset at which the given line begins:
// zero for line zero, otherwise the first byte after the line's
// preceding newline. Lines at or beyond LineCount are out of range.
func (r Rope) LineStart(line int) (ByteOffset, error) {
	if line < 0 || line >= r.LineCount() {
		return 0, ErrOutOfRange
	}
	if line == 0 {
		return 0, nil
	}
	return r.root.offsetAfterNewline(line), nil
}

// LineEnd returns the offset one past the last content byte of the
// given line, excluding its newline. For the final line this is the
// length of the text.
func (r Rope) LineEnd(line int) (ByteOffset, error) {
	if line < 0 || line >= r.LineCount() {
		return 0, ErrOutOfRange
	}
	if line == r.LineCount()-1 {
		return r.Len(), nil
	}
	start, err := r.LineStart(line + 1)
	if err != nil {
		return 0, err
	}
	return start - 1, nil
}

// Line returns the text of the given line without its trailing
// newline.
func (r Rope) Line(line int) (string, error) {
	start, err := r.LineStart(line)
	if err != nil {
		return "", err
	}
	end, err := r.LineEnd(line)
	if err != nil {
		return "", err
	}
	return r.Slice(start, end)
}

// OffsetToPoint converts a byte offset to a line number and byte
// column within that line.
func (r Rope) OffsetToPoint(offset ByteOffset) (Point, error) {
	line, err := r.LineAt(offset)
	if err != nil {
		return Point{}, err
	}
	start, err := r.LineStart(line)
	if err != nil {
		return Point{}, err
	}
	return Point{Line: line, Column: int(offset - start)}, nil
}

// PointToOffset converts a line and byte column back to an offset.
// The column may address any byte of the line including the position
// just past its content; columns beyond that are out of range rather
// than clamped.
func (r Rope) PointToOffset(p Point) (ByteOffset, error) {
	start, err := r.LineStart(p.Line)
	if err != nil {
		return 0, err
	}
	end, err := r.LineEnd(p.Line)
	if err != nil {
		return 0, err
	}
	if p.Column < 0 || start+ByteOffset(p.Column) > end {
		return 0, ErrOutOfRange
	}
	return start + ByteOffset(p.Column), nil
}
