package ui

import (
	"fmt"
)

// Segment is a string that has some style applied to it.
type Segment struct {
	Style
	Text string
}

// String returns a string representation of the styled segment. It is the
// same as VTString.
func (s *Segment) String() string {
	return s.VTString()
}

// VTString renders the styled segment using VT-style escape sequences. Any
// existing SGR state will be cleared.
func (s *Segment) VTString() string {
	sgr := s.SGR()
	if sgr == "" {
		return "\033[m" + s.Text
	}
	return fmt.Sprintf("\033[;%sm%s\033[m", sgr, s.Text)
}
