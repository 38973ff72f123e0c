package textio

// LineEnding represents the line ending style of a file.
type LineEnding string

const (
	// LineEndingLF is Unix-style line ending (\n).
	LineEndingLF LineEnding = "lf"

	// LineEndingCRLF is Windows-style line ending (\r\n).
	LineEndingCRLF LineEnding = "crlf"

	// LineEndingCR is old Mac-style line ending (\r).
	LineEndingCR LineEnding = "cr"

	// LineEndingMixed indicates several styles with significant presence.
	LineEndingMixed LineEnding = "mixed"
)

// Sequence returns the line ending characters. Mixed falls back to LF.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// DetectLineEnding detects the dominant line ending in content.
// Returns LineEndingMixed when multiple styles each make up a
// significant share, and LineEndingLF for content with no line
// endings at all.
func DetectLineEnding(content []byte) LineEnding {
	var lf, crlf, cr int

	for i := 0; i < len(content); i++ {
		if content[i] == '\r' {
			if i+1 < len(content) && content[i+1] == '\n' {
				crlf++
				i++ // Skip the \n
			} else {
				cr++
			}
		} else if content[i] == '\n' {
			lf++
		}
	}

	total := lf + crlf + cr
	if total == 0 {
		return LineEndingLF
	}

	// Styles below 10% of the total are treated as noise rather than
	// flipping the whole file to mixed.
	threshold := total / 10
	if threshold < 1 {
		threshold = 1
	}
	styles := 0
	if lf >= threshold {
		styles++
	}
	if crlf >= threshold {
		styles++
	}
	if cr >= threshold {
		styles++
	}
	if styles > 1 {
		return LineEndingMixed
	}

	if crlf >= lf && crlf >= cr {
		return LineEndingCRLF
	}
	if cr > lf {
		return LineEndingCR
	}
	return LineEndingLF
}
