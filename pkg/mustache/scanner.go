package mustache

import "regexp"

// Scanner is a cursor over an immutable template string. The parser uses it
// to find tags and the text between them.
type Scanner struct {
	str  string
	tail string
	pos  int
}

// NewScanner returns a scanner positioned at the start of s.
func NewScanner(s string) *Scanner {
	return &Scanner{
		str:  s,
		tail: s,
	}
}

// EOS reports whether the end of the string has been reached.
func (s *Scanner) EOS() bool {
	return s.tail == ""
}

// Pos returns the byte offset of the cursor in the original string.
func (s *Scanner) Pos() int {
	return s.pos
}

// Tail returns the unconsumed remainder of the string.
func (s *Scanner) Tail() string {
	return s.tail
}

// Scan tries to match re at the current position. On a match it advances past
// the matched text and returns it; otherwise it returns "" and does not move.
func (s *Scanner) Scan(re *regexp.Regexp) string {
	loc := re.FindStringIndex(s.tail)
	if loc == nil || loc[0] != 0 {
		return ""
	}

	match := s.tail[:loc[1]]
	s.tail = s.tail[loc[1]:]
	s.pos += len(match)
	return match
}

// ScanUntil consumes and returns all text up to the next match of re. If re
// never matches, the entire tail is consumed.
func (s *Scanner) ScanUntil(re *regexp.Regexp) string {
	var match string

	loc := re.FindStringIndex(s.tail)
	switch {
	case loc == nil:
		match = s.tail
		s.tail = ""
	case loc[0] == 0:
		match = ""
	default:
		match = s.tail[:loc[0]]
		s.tail = s.tail[loc[0]:]
	}

	s.pos += len(match)
	return match
}
