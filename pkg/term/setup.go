package term

import (
	"os"
)

// Setup sets up the terminal so that it is suitable for the Reader and
// Writer to use. It returns a function that can be used to restore the
// original terminal config.
func Setup(in, out *os.File) (func() error, error) {
	return setup(in, out)
}

func setupVT(out *os.File) error {
	_, err := out.WriteString(
		"\033[?7l" + // Disable autowrap
			"\033[?2004h") // Enable bracketed paste
	return err
}

func restoreVT(out *os.File) error {
	_, err := out.WriteString(
		"\033[?7h" + // Enable autowrap
			"\033[?2004l") // Disable bracketed paste
	return err
}
