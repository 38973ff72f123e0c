package rope

import (
	"errors"
	"strings"
	"testing"
	"testing/quick"
	"unicode/utf8"
)

func TestLineAt(t *testing.T) {
	r := FromString("line1\nline2\nline3")
	tests := []struct {
		offset ByteOffset
		want   int
	}{
		{0, 0},
		{4, 0},
		{5, 0}, // the newline byte still belongs to line 0
		{6, 1},
		{11, 1},
		{12, 2},
		{17, 2}, // one past the last byte reports the final line
	}
	for _, tt := range tests {
		got, err := r.LineAt(tt.offset)
		if err != nil {
			t.Fatalf("LineAt(%d) error = %v", tt.offset, err)
		}
		if got != tt.want {
			t.Errorf("LineAt(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}

	if _, err := r.LineAt(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("LineAt(-1) error = %v, want ErrOutOfRange", err)
	}
	if _, err := r.LineAt(18); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("LineAt(18) error = %v, want ErrOutOfRange", err)
	}
}

func TestLineStart(t *testing.T) {
	r := FromString("line1\nline2\nline3")
	tests := []struct {
		line int
		want ByteOffset
	}{
		{0, 0},
		{1, 6},
		{2, 12},
	}
	for _, tt := range tests {
		got, err := r.LineStart(tt.line)
		if err != nil {
			t.Fatalf("LineStart(%d) error = %v", tt.line, err)
		}
		if got != tt.want {
			t.Errorf("LineStart(%d) = %d, want %d", tt.line, got, tt.want)
		}
	}

	if _, err := r.LineStart(3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("LineStart(3) error = %v, want ErrOutOfRange", err)
	}
	if _, err := r.LineStart(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("LineStart(-1) error = %v, want ErrOutOfRange", err)
	}
}

func TestTrailingNewline(t *testing.T) {
	r := FromString("a\n")
	if got := r.LineCount(); got != 2 {
		t.Fatalf("LineCount() = %d, want 2", got)
	}
	start, err := r.LineStart(1)
	if err != nil || start != 2 {
		t.Errorf("LineStart(1) = %d, %v, want 2, nil", start, err)
	}
	end, err := r.LineEnd(1)
	if err != nil || end != 2 {
		t.Errorf("LineEnd(1) = %d, %v, want 2, nil", end, err)
	}
	line, err := r.Line(1)
	if err != nil || line != "" {
		t.Errorf("Line(1) = %q, %v, want empty line after trailing newline", line, err)
	}
	at, err := r.LineAt(2)
	if err != nil || at != 1 {
		t.Errorf("LineAt(2) = %d, %v, want 1, nil", at, err)
	}
}

func TestLine(t *testing.T) {
	text := "alpha\nbëta\n\ndelta"
	r := FromString(text)
	want := strings.Split(text, "\n")
	if got := r.LineCount(); got != len(want) {
		t.Fatalf("LineCount() = %d, want %d", got, len(want))
	}
	for i, w := range want {
		got, err := r.Line(i)
		if err != nil {
			t.Fatalf("Line(%d) error = %v", i, err)
		}
		if got != w {
			t.Errorf("Line(%d) = %q, want %q", i, got, w)
		}
	}
	if _, err := r.Line(len(want)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Line(%d) error = %v, want ErrOutOfRange", len(want), err)
	}
}

func TestLineEnd(t *testing.T) {
	r := FromString("ab\ncdef\ng")
	tests := []struct {
		line int
		want ByteOffset
	}{
		{0, 2},
		{1, 7},
		{2, 9},
	}
	for _, tt := range tests {
		got, err := r.LineEnd(tt.line)
		if err != nil {
			t.Fatalf("LineEnd(%d) error = %v", tt.line, err)
		}
		if got != tt.want {
			t.Errorf("LineEnd(%d) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestOffsetToPoint(t *testing.T) {
	r := FromString("ab\ncdef\ng")
	tests := []struct {
		offset ByteOffset
		want   Point
	}{
		{0, Point{0, 0}},
		{2, Point{0, 2}},
		{3, Point{1, 0}},
		{6, Point{1, 3}},
		{8, Point{2, 0}},
		{9, Point{2, 1}},
	}
	for _, tt := range tests {
		got, err := r.OffsetToPoint(tt.offset)
		if err != nil {
			t.Fatalf("OffsetToPoint(%d) error = %v", tt.offset, err)
		}
		if got != tt.want {
			t.Errorf("OffsetToPoint(%d) = %+v, want %+v", tt.offset, got, tt.want)
		}
	}
	if _, err := r.OffsetToPoint(10); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("OffsetToPoint(10) error = %v, want ErrOutOfRange", err)
	}
}

func TestPointToOffset(t *testing.T) {
	r := FromString("ab\ncdef\ng")
	tests := []struct {
		point Point
		want  ByteOffset
	}{
		{Point{0, 0}, 0},
		{Point{0, 2}, 2}, // position of the newline, end of line content
		{Point{1, 1}, 4},
		{Point{2, 1}, 9},
	}
	for _, tt := range tests {
		got, err := r.PointToOffset(tt.point)
		if err != nil {
			t.Fatalf("PointToOffset(%+v) error = %v", tt.point, err)
		}
		if got != tt.want {
			t.Errorf("PointToOffset(%+v) = %d, want %d", tt.point, got, tt.want)
		}
	}

	errTests := []struct {
		name  string
		point Point
	}{
		{"column past line end", Point{0, 3}},
		{"negative column", Point{1, -1}},
		{"line out of range", Point{3, 0}},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.PointToOffset(tt.point); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("PointToOffset(%+v) error = %v, want ErrOutOfRange", tt.point, err)
			}
		})
	}
}

// Line lookups must agree with a plain scan of the text regardless of
// how the tree is shaped.
func TestIndexAgainstScan(t *testing.T) {
	f := func(parts []string, seed int) bool {
		var sb strings.Builder
		r := New()
		for _, p := range parts {
			if !utf8.ValidString(p) {
				return true
			}
			sb.WriteString(p)
			r = Merge(r, FromString(p))
		}
		text := sb.String()

		offset := alignOffset(text, seed)
		line, err := r.LineAt(offset)
		if err != nil {
			return false
		}
		if line != strings.Count(text[:offset], "\n") {
			return false
		}
		start, err := r.LineStart(line)
		if err != nil {
			return false
		}
		if start > offset {
			return false
		}
		// LineAt is monotonic: the offset one byte earlier is on the
		// same or the previous line.
		if offset > 0 {
			prev, err := r.LineAt(offset - 1)
			if err != nil || prev > line {
				return false
			}
		}
		return true
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestPointRoundTripProperty(t *testing.T) {
	f := func(text string, seed int) bool {
		if !utf8.ValidString(text) {
			return true
		}
		r := FromString(text)
		offset := alignOffset(text, seed)
		p, err := r.OffsetToPoint(offset)
		if err != nil {
			return false
		}
		back, err := r.PointToOffset(p)
		if err != nil {
			return false
		}
		return back == offset
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
