package view

import (
	"unicode"
	"unicode/utf8"

	"github.com/tpresley/todomvc-cycle/pkg/logutil"
	"github.com/tpresley/todomvc-cycle/pkg/stream"
	"github.com/tpresley/todomvc-cycle/pkg/term"
	"github.com/tpresley/todomvc-cycle/pkg/ui"
)

var logger = logutil.GetLogger("[view] ")

// Driver renders view trees to a terminal and turns terminal events into
// element events. All methods must be called on the loop.
type Driver struct {
	lp  *stream.Loop
	tty term.TTY

	events    map[eventKey]*stream.Stream[any]
	unhandled *stream.Stream[ui.Key]

	root    Node
	hasRoot bool

	// Elements present in the last render, and the focusable ones among
	// them in render order.
	elems map[string]Kind
	order []string

	inputs map[string]*inputState

	// Full selector of the focused element. focusSeen records whether it
	// has been rendered since focus was last moved; an element that was
	// rendered focused and then disappears loses the focus, but one that
	// merely has not appeared yet keeps it.
	focus     string
	focusSeen bool

	// Whether a bracketed paste is in progress.
	pasting bool
}

type eventKey struct {
	sel, name string
}

// inputState is the transient state of an input element. It outlives the
// element's presence in the tree, so an input that is removed and rendered
// again keeps its text.
type inputState struct {
	text   string
	cursor int // byte offset into text
}

// NewDriver creates a driver rendering to tty on the given loop.
func NewDriver(lp *stream.Loop, tty term.TTY) *Driver {
	return &Driver{
		lp:        lp,
		tty:       tty,
		events:    make(map[eventKey]*stream.Stream[any]),
		unhandled: stream.New[ui.Key](lp),
		elems:     make(map[string]Kind),
		inputs:    make(map[string]*inputState),
	}
}

// Unhandled returns the stream of keys not consumed by any element.
func (d *Driver) Unhandled() *stream.Stream[ui.Key] {
	return d.unhandled
}

func (d *Driver) eventStream(sel, name string) *stream.Stream[any] {
	key := eventKey{sel, name}
	if out, ok := d.events[key]; ok {
		return out
	}
	out := stream.New[any](d.lp)
	d.events[key] = out
	return out
}

func (d *Driver) emit(sel, name string, data any) {
	if out, ok := d.events[eventKey{sel, name}]; ok {
		out.Emit(data)
	}
}

// Render replaces the current view tree and redraws the screen. The value
// must be a Node; anything else is logged and dropped.
func (d *Driver) Render(v any) {
	root, ok := v.(Node)
	if !ok {
		logger.Printf("dropping render of %T, want view.Node", v)
		return
	}
	d.root = root
	d.hasRoot = true
	d.render(false)
}

// Redraw renders the current tree again. With full set, the screen content
// is discarded and redrawn from scratch; this is used after a resize.
func (d *Driver) Redraw(full bool) {
	d.render(full)
}

// RunCommand executes an element command. The value must be a Command;
// anything else is logged and dropped.
func (d *Driver) RunCommand(v any) {
	cmd, ok := v.(Command)
	if !ok {
		logger.Printf("dropping command of %T, want view.Command", v)
		return
	}
	switch cmd.Name {
	case SetValue:
		st := d.input(cmd.Sel)
		st.text = cmd.Value
		st.cursor = len(cmd.Value)
		d.render(false)
	case Focus:
		d.focus = cmd.Sel
		d.focusSeen = false
		d.render(false)
	default:
		logger.Printf("dropping unknown command %q on %q", cmd.Name, cmd.Sel)
	}
}

func (d *Driver) input(sel string) *inputState {
	st, ok := d.inputs[sel]
	if !ok {
		st = &inputState{}
		d.inputs[sel] = st
	}
	return st
}

// HandleEvent reacts to one terminal event. Key events feed the focused
// element and focus movement; mouse events are ignored.
func (d *Driver) HandleEvent(event term.Event) {
	switch e := event.(type) {
	case term.KeyEvent:
		d.handleKey(ui.Key(e))
	case term.PasteSetting:
		d.pasting = bool(e)
	}
}

func (d *Driver) handleKey(k ui.Key) {
	if d.pasting {
		d.pasteKey(k)
		return
	}
	switch kind, ok := d.elems[d.focus]; {
	case ok && kind == Input:
		if d.inputKey(k) {
			return
		}
	case ok:
		if k == ui.K(ui.Enter) || k == ui.K(' ') {
			d.emit(d.focus, "activate", nil)
			return
		}
	}
	switch k {
	case ui.K(ui.Tab), ui.K(ui.Down):
		d.moveFocus(1)
		return
	case ui.K(ui.Tab, ui.Shift), ui.K(ui.Up):
		d.moveFocus(-1)
		return
	}
	d.unhandled.Emit(k)
}

// pasteKey handles one key of a bracketed paste. Pasted graphic runes insert
// into the focused input; everything else is dropped, so that pasted text
// cannot submit, move the focus or trigger key bindings.
func (d *Driver) pasteKey(k ui.Key) {
	if kind, ok := d.elems[d.focus]; !ok || kind != Input {
		return
	}
	if k.Mod == 0 && k.Rune > 0 && unicode.IsGraphic(k.Rune) {
		d.insert(d.input(d.focus), k.Rune)
	}
}

// inputKey feeds one key to the focused input element and reports whether
// the key was consumed.
func (d *Driver) inputKey(k ui.Key) bool {
	st := d.input(d.focus)
	switch k {
	case ui.K(ui.Enter):
		d.emit(d.focus, "submit", st.text)
		return true
	case ui.K('[', ui.Ctrl): // escape
		d.emit(d.focus, "cancel", nil)
		return true
	case ui.K(ui.Backspace):
		if st.cursor > 0 {
			_, w := utf8.DecodeLastRuneInString(st.text[:st.cursor])
			st.text = st.text[:st.cursor-w] + st.text[st.cursor:]
			st.cursor -= w
			d.emit(d.focus, "input", st.text)
			d.render(false)
		}
		return true
	case ui.K(ui.Left):
		if st.cursor > 0 {
			_, w := utf8.DecodeLastRuneInString(st.text[:st.cursor])
			st.cursor -= w
			d.render(false)
		}
		return true
	case ui.K(ui.Right):
		if st.cursor < len(st.text) {
			_, w := utf8.DecodeRuneInString(st.text[st.cursor:])
			st.cursor += w
			d.render(false)
		}
		return true
	case ui.K(ui.Home):
		st.cursor = 0
		d.render(false)
		return true
	case ui.K(ui.End):
		st.cursor = len(st.text)
		d.render(false)
		return true
	}
	if k.Mod == 0 && k.Rune > 0 && unicode.IsGraphic(k.Rune) {
		d.insert(st, k.Rune)
		return true
	}
	return false
}

func (d *Driver) insert(st *inputState, r rune) {
	st.text = st.text[:st.cursor] + string(r) + st.text[st.cursor:]
	st.cursor += utf8.RuneLen(r)
	d.emit(d.focus, "input", st.text)
	d.render(false)
}

func (d *Driver) moveFocus(delta int) {
	if len(d.order) == 0 {
		return
	}
	at := -1
	for i, sel := range d.order {
		if sel == d.focus {
			at = i
			break
		}
	}
	var next string
	if at == -1 {
		next = d.order[0]
	} else {
		next = d.order[(at+delta+len(d.order))%len(d.order)]
	}
	if next != d.focus {
		d.focus = next
		d.focusSeen = false
		d.render(false)
	}
}
