package rope

import "strings"

// ByteOffset is a position in a rope measured in bytes from the start
// of the text. It is signed so that arithmetic underflow from bad
// caller input shows up as a negative value and fails range checks
// instead of wrapping around.
type ByteOffset int

// Point is a position expressed as a zero-based line number and a
// zero-based byte column within that line.
type Point struct {
	Line   int
	Column int
}

// Summary aggregates the measurable properties of a span of text.
// Summaries combine associatively, so the summary of an internal node
// is the sum of its children's summaries.
type Summary struct {
	Bytes    ByteOffset
	Newlines int
}

// Add combines two summaries of adjacent spans.
func (s Summary) Add(other Summary) Summary {
	return Summary{
		Bytes:    s.Bytes + other.Bytes,
		Newlines: s.Newlines + other.Newlines,
	}
}

// ComputeSummary measures a string.
func ComputeSummary(s string) Summary {
	return Summary{
		Bytes:    ByteOffset(len(s)),
		Newlines: strings.Count(s, "\n"),
	}
}

// findNthNewline returns the byte index of the nth newline in s,
// counting from 1. It returns -1 when s has fewer than n newlines.
func findNthNewline(s string, n int) int {
	if n <= 0 {
		return -1
	}
	base := 0
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			return -1
		}
		n--
		if n == 0 {
			return base + i
		}
		base += i + 1
		s = s[i+1:]
	}
}
