package term

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/tpresley/todomvc-cycle/pkg/sys"
)

// TTY is the type of the terminal dependency of the app. It allows functions
// that operate on a terminal to be tested with a fake implementation.
type TTY interface {
	// Setup sets up the terminal for the app.
	//
	// This method returns a restore function that undoes the setup, and any
	// error during setup. It only returns fatal errors that make the terminal
	// unsuitable for later operations; non-fatal errors may be reported by
	// showing a warning message, but not returned.
	//
	// This method should be called before any other method is called.
	Setup() (restore func(), err error)

	// ReadEvent reads a terminal event.
	ReadEvent() (Event, error)
	// CloseReader releases resources allocated for reading terminal events.
	CloseReader()

	// NotifySignals start relaying signals and returns a channel on which
	// signals are delivered.
	NotifySignals() <-chan os.Signal
	// StopSignals stops the relaying of signals. After this function returns,
	// the channel returned by NotifySignals will no longer deliver signals.
	StopSignals()

	// Size returns the height and width of the terminal.
	Size() (h, w int)

	// UpdateBuffer draws the given buffer to the terminal, using delta
	// rendering against the previously drawn buffer unless full is set.
	UpdateBuffer(buf *Buffer, full bool) error
}

type aTTY struct {
	in, out *os.File
	r       Reader
	w       *Writer
	sigCh   chan os.Signal
}

// NewTTY returns a new TTY from input and output terminal files.
func NewTTY(in, out *os.File) TTY {
	return &aTTY{in: in, out: out, w: NewWriter(out)}
}

// StdTTY is a TTY on os.Stdin and os.Stdout.
var StdTTY = NewTTY(os.Stdin, os.Stdout)

func (t *aTTY) Setup() (func(), error) {
	restore, err := Setup(t.in, t.out)
	return func() {
		err := restore()
		if err != nil {
			fmt.Fprintln(t.out, "failed to restore terminal properties:", err)
		}
	}, err
}

func (t *aTTY) ReadEvent() (Event, error) {
	if t.r == nil {
		t.r = NewReader(t.in)
	}
	return t.r.ReadEvent()
}

func (t *aTTY) CloseReader() {
	if t.r != nil {
		t.r.Close()
	}
	t.r = nil
}

func (t *aTTY) NotifySignals() <-chan os.Signal {
	t.sigCh = sys.NotifySignals()
	return t.sigCh
}

func (t *aTTY) StopSignals() {
	signal.Stop(t.sigCh)
	close(t.sigCh)
	t.sigCh = nil
}

func (t *aTTY) Size() (h, w int) {
	return sys.WinSize(t.out)
}

func (t *aTTY) UpdateBuffer(buf *Buffer, full bool) error {
	return t.w.UpdateBuffer(buf, full)
}
