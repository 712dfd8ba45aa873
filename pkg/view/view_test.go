package view_test

import (
	"reflect"
	"testing"

	"github.com/tpresley/todomvc-cycle/pkg/stream"
	"github.com/tpresley/todomvc-cycle/pkg/term"
	"github.com/tpresley/todomvc-cycle/pkg/term/termtest"
	"github.com/tpresley/todomvc-cycle/pkg/ui"
	"github.com/tpresley/todomvc-cycle/pkg/view"
)

func setup(t *testing.T) (*view.Driver, termtest.TTYCtrl) {
	tty, ttyCtrl := termtest.NewFakeTTY()
	return view.NewDriver(stream.NewLoop(), tty), ttyCtrl
}

func bb() *term.BufferBuilder {
	return term.NewBufferBuilder(termtest.FakeTTYWidth)
}

func feed(d *view.Driver, s string) {
	for _, r := range s {
		d.HandleEvent(term.K(r))
	}
}

func TestRender_DrawsBoxChildrenOnePerLine(t *testing.T) {
	d, ttyCtrl := setup(t)
	d.Render(view.Node{Kind: view.Box, Children: []view.Node{
		{Kind: view.Text, Text: "todos", Style: ui.Bold},
		{Kind: view.Line, Children: []view.Node{
			{Kind: view.Text, Text: "1 "},
			{Kind: view.Text, Text: "item left"},
		}},
	}})
	ttyCtrl.TestBuffer(t,
		bb().Write("todos", ui.Bold).Newline().Write("1 item left").Buffer())
}

func TestRender_FocusesFirstFocusable(t *testing.T) {
	d, ttyCtrl := setup(t)
	d.Render(view.Node{Kind: view.Box, Children: []view.Node{
		{Kind: view.Text, Text: "todos"},
		{Sel: "new-todo", Kind: view.Input, Text: "What needs to be done?"},
	}})
	// The empty focused input shows its placeholder, with the cursor at the
	// start.
	ttyCtrl.TestBuffer(t,
		bb().Write("todos").Newline().
			SetDotHere().Write("What needs to be done?", ui.Dim).Buffer())
}

func TestInput_TypingEmitsInputAndSubmit(t *testing.T) {
	d, ttyCtrl := setup(t)
	h := d.Source().Select("new-todo")
	var edits []any
	h.Events("input").Subscribe(func(v any) { edits = append(edits, v) })
	var submits []any
	h.Events("submit").Subscribe(func(v any) { submits = append(submits, v) })

	d.Render(view.Node{Sel: "new-todo", Kind: view.Input, Text: "What needs to be done?"})
	feed(d, "ab")
	d.HandleEvent(term.K(ui.Backspace))
	feed(d, "b")
	d.HandleEvent(term.K(ui.Enter))

	wantEdits := []any{"a", "ab", "a", "ab"}
	if !reflect.DeepEqual(edits, wantEdits) {
		t.Errorf("got input events %v, want %v", edits, wantEdits)
	}
	wantSubmits := []any{"ab"}
	if !reflect.DeepEqual(submits, wantSubmits) {
		t.Errorf("got submit events %v, want %v", submits, wantSubmits)
	}
	ttyCtrl.TestBuffer(t, bb().Write("ab").SetDotHere().Buffer())
}

func TestInput_CursorMovement(t *testing.T) {
	d, ttyCtrl := setup(t)
	d.Render(view.Node{Sel: "in", Kind: view.Input})

	feed(d, "ac")
	d.HandleEvent(term.K(ui.Left))
	feed(d, "b")
	ttyCtrl.TestBuffer(t, bb().Write("ab").SetDotHere().Write("c").Buffer())

	d.HandleEvent(term.K(ui.Home))
	ttyCtrl.TestBuffer(t, bb().SetDotHere().Write("abc").Buffer())

	d.HandleEvent(term.K(ui.End))
	ttyCtrl.TestBuffer(t, bb().Write("abc").SetDotHere().Buffer())
}

func TestInput_EscapeEmitsCancel(t *testing.T) {
	d, _ := setup(t)
	cancels := 0
	d.Source().Select("edit").Events("cancel").Subscribe(func(any) { cancels++ })

	d.Render(view.Node{Sel: "edit", Kind: view.Input})
	feed(d, "half-typed")
	d.HandleEvent(term.K('[', ui.Ctrl))

	if cancels != 1 {
		t.Errorf("got %d cancel events, want 1", cancels)
	}
}

func TestRunCommand_SetValueFiresNoInputEvent(t *testing.T) {
	d, ttyCtrl := setup(t)
	var edits []any
	d.Source().Select("in").Events("input").Subscribe(func(v any) { edits = append(edits, v) })

	d.Render(view.Node{Sel: "in", Kind: view.Input, Text: "placeholder"})
	feed(d, "x")
	d.RunCommand(view.Command{Name: view.SetValue, Sel: "in", Value: ""})

	want := []any{"x"}
	if !reflect.DeepEqual(edits, want) {
		t.Errorf("got input events %v, want %v", edits, want)
	}
	ttyCtrl.TestBuffer(t,
		bb().SetDotHere().Write("placeholder", ui.Dim).Buffer())
}

func TestRunCommand_FocusRoutesKeysToElement(t *testing.T) {
	d, _ := setup(t)
	activated := 0
	d.Source().Select("clear").Events("activate").Subscribe(func(any) { activated++ })
	var unhandled []ui.Key
	d.Unhandled().Subscribe(func(k ui.Key) { unhandled = append(unhandled, k) })

	d.Render(view.Node{Kind: view.Box, Children: []view.Node{
		{Sel: "new-todo", Kind: view.Input},
		{Sel: "clear", Kind: view.Button, Text: "Clear completed"},
	}})
	d.HandleEvent(term.K(' ')) // typed into the focused input
	d.RunCommand(view.Command{Name: view.Focus, Sel: "clear"})
	d.HandleEvent(term.K(' ')) // activates the button
	d.HandleEvent(term.K('2')) // consumed by nothing

	if activated != 1 {
		t.Errorf("got %d activate events, want 1", activated)
	}
	if want := []ui.Key{ui.K('2')}; !reflect.DeepEqual(unhandled, want) {
		t.Errorf("got unhandled keys %v, want %v", unhandled, want)
	}
}

func TestPaste_InsertsIntoInputWithoutSubmitting(t *testing.T) {
	d, ttyCtrl := setup(t)
	submits := 0
	d.Source().Select("new-todo").Events("submit").Subscribe(func(any) { submits++ })
	var unhandled []ui.Key
	d.Unhandled().Subscribe(func(k ui.Key) { unhandled = append(unhandled, k) })

	d.Render(view.Node{Sel: "new-todo", Kind: view.Input})
	d.HandleEvent(term.PasteSetting(true))
	feed(d, "a")
	d.HandleEvent(term.K(ui.Enter)) // pasted newline must not submit
	feed(d, "b")
	d.HandleEvent(term.PasteSetting(false))

	ttyCtrl.TestBuffer(t, bb().Write("ab").SetDotHere().Buffer())
	if submits != 0 {
		t.Errorf("got %d submit events during paste, want 0", submits)
	}
	if len(unhandled) != 0 {
		t.Errorf("got unhandled keys %v, want none", unhandled)
	}

	d.HandleEvent(term.K(ui.Enter))
	if submits != 1 {
		t.Errorf("got %d submit events after paste, want 1", submits)
	}
}

func TestPaste_OutsideInputDropsKeys(t *testing.T) {
	d, _ := setup(t)
	var unhandled []ui.Key
	d.Unhandled().Subscribe(func(k ui.Key) { unhandled = append(unhandled, k) })

	d.Render(view.Node{Sel: "clear", Kind: view.Button, Text: "Clear completed"})
	d.HandleEvent(term.PasteSetting(true))
	feed(d, "q2")
	d.HandleEvent(term.PasteSetting(false))

	if len(unhandled) != 0 {
		t.Errorf("got unhandled keys %v, want none", unhandled)
	}
}

func TestTab_MovesFocusInRenderOrder(t *testing.T) {
	d, ttyCtrl := setup(t)
	d.Render(view.Node{Kind: view.Box, Children: []view.Node{
		{Sel: "toggle-all", Kind: view.Check, Checked: true, Text: "Mark all as complete"},
		{Sel: "clear", Kind: view.Button, Text: "Clear completed"},
	}})

	first := func() *term.Buffer {
		return bb().Write("[x] Mark all as complete", ui.Inverse).Newline().
			Write("Clear completed").Buffer()
	}
	second := func() *term.Buffer {
		return bb().Write("[x] Mark all as complete").Newline().
			Write("Clear completed", ui.Inverse).Buffer()
	}

	ttyCtrl.TestBuffer(t, first())
	d.HandleEvent(term.K(ui.Tab))
	ttyCtrl.TestBuffer(t, second())
	d.HandleEvent(term.K(ui.Down))
	ttyCtrl.TestBuffer(t, first())
	d.HandleEvent(term.K(ui.Up))
	ttyCtrl.TestBuffer(t, second())
}

func TestFocus_AppliesWhenElementAppears(t *testing.T) {
	d, ttyCtrl := setup(t)
	d.Render(view.Node{Sel: "a", Kind: view.Input})
	d.RunCommand(view.Command{Name: view.Focus, Sel: "edit"})

	d.Render(view.Node{Kind: view.Box, Children: []view.Node{
		{Sel: "a", Kind: view.Input},
		{Sel: "edit", Kind: view.Input},
	}})
	feed(d, "hi")
	ttyCtrl.TestBuffer(t, bb().Newline().Write("hi").SetDotHere().Buffer())

	// When the focused element disappears, focus falls back to the first
	// focusable element.
	d.Render(view.Node{Sel: "a", Kind: view.Input})
	feed(d, "z")
	ttyCtrl.TestBuffer(t, bb().Write("z").SetDotHere().Buffer())
}

func TestScope_PrefixesSelectors(t *testing.T) {
	d, _ := setup(t)
	scoped, ok := d.Source().Scope("4").(*view.Source)
	if !ok {
		t.Fatalf("Scope returned %T, want *view.Source", d.Source().Scope("4"))
	}
	if got, want := scoped.Selector("toggle"), "4/toggle"; got != want {
		t.Errorf("got selector %q, want %q", got, want)
	}

	activated := 0
	scoped.Select("toggle").Events("activate").Subscribe(func(any) { activated++ })
	d.Render(view.Node{Sel: "4/toggle", Kind: view.Check, Text: "Buy milk"})
	d.HandleEvent(term.K(ui.Enter))
	if activated != 1 {
		t.Errorf("got %d activate events, want 1", activated)
	}
}

func TestRedraw_UsesNewSize(t *testing.T) {
	d, ttyCtrl := setup(t)
	d.Render(view.Node{Kind: view.Text, Text: "0123456789abc"})
	ttyCtrl.TestBuffer(t,
		term.NewBufferBuilder(50).Write("0123456789abc").Buffer())

	ttyCtrl.SetSize(20, 10)
	d.Redraw(true)
	ttyCtrl.TestBuffer(t,
		term.NewBufferBuilder(10).Write("0123456789abc").Buffer())
}
