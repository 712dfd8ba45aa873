package term

import (
	"strings"
	"testing"
)

func TestWriter(t *testing.T) {
	sb := &strings.Builder{}
	testOutput := func(want string) {
		t.Helper()
		if sb.String() != want {
			t.Errorf("got %q, want %q", sb.String(), want)
		}
		sb.Reset()
	}

	w := NewWriter(sb)
	w.UpdateBuffer(NewBufferBuilder(10).Write("line 1").SetDotHere().Buffer(), false)
	testOutput(hideCursor + "\rline 1\r\033[6C" + showCursor)

	// Redrawing an identical buffer only repositions the cursor.
	w.UpdateBuffer(NewBufferBuilder(10).Write("line 1").SetDotHere().Buffer(), false)
	testOutput(hideCursor + "\r\r\033[6C" + showCursor)

	// Changing the last cell only rewrites from the first differing cell.
	w.UpdateBuffer(NewBufferBuilder(10).Write("line 2").SetDotHere().Buffer(), false)
	testOutput(hideCursor + "\r\033[5C\033[K2\r\033[6C" + showCursor)
}
