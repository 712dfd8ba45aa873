package todomvc

import (
	"reflect"
	"testing"

	"github.com/tpresley/todomvc-cycle/pkg/comp"
	"github.com/tpresley/todomvc-cycle/pkg/must"
	"github.com/tpresley/todomvc-cycle/pkg/route"
	"github.com/tpresley/todomvc-cycle/pkg/run"
	"github.com/tpresley/todomvc-cycle/pkg/storage"
	"github.com/tpresley/todomvc-cycle/pkg/store"
	"github.com/tpresley/todomvc-cycle/pkg/store/storedefs"
	"github.com/tpresley/todomvc-cycle/pkg/stream"
	"github.com/tpresley/todomvc-cycle/pkg/term"
	"github.com/tpresley/todomvc-cycle/pkg/term/termtest"
	"github.com/tpresley/todomvc-cycle/pkg/ui"
	"github.com/tpresley/todomvc-cycle/pkg/view"
)

// fixture wires the app to its drivers the way pkg/run does, but pumps the
// loop synchronously and records the emitted element commands.
type fixture struct {
	t       *testing.T
	lp      *stream.Loop
	vd      *view.Driver
	ttyCtrl termtest.TTYCtrl
	st      storedefs.Store
	states  *comp.StateStore
	effects []view.Command
}

func setupApp(t *testing.T, seed []Todo) *fixture {
	t.Helper()
	st := store.MustTempStore(t)
	if seed != nil {
		must.OK(st.Set(todosKey, string(EncodeTodos(seed))))
	}
	lp := stream.NewLoop()
	tty, ttyCtrl := termtest.NewFakeTTY()
	vd := view.NewDriver(lp, tty)
	sd := storage.NewDriver(lp, st)
	rd := route.NewDriver(lp, "")
	states := comp.NewStateStore(lp, nil)

	sinks, err := App()(comp.Sources{
		run.ViewSource:    vd.Source(),
		run.StorageSource: sd,
		run.RouteSource:   rd.Stream(),
		comp.StateSink:    states.Source(),
	})
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{t: t, lp: lp, vd: vd, ttyCtrl: ttyCtrl, st: st, states: states}
	states.Watch(sinks[comp.StateSink])
	sinks[comp.ViewSink].Subscribe(vd.Render)
	sinks[run.StorageSource].Subscribe(sd.Persist)
	sinks[run.RouteSource].Subscribe(rd.Register)
	sinks[run.EffectsSink].Subscribe(func(v any) {
		if c, ok := v.(view.Command); ok {
			f.effects = append(f.effects, c)
		}
		lp.Defer(func() { vd.RunCommand(v) })
	})
	vd.Unhandled().Subscribe(func(k ui.Key) { rd.HandleKey(k) })
	lp.Stabilize()
	return f
}

func (f *fixture) appState() AppState {
	s, _ := f.states.Current().(AppState)
	return s
}

func (f *fixture) press(events ...term.Event) {
	f.t.Helper()
	for _, ev := range events {
		f.vd.HandleEvent(ev)
		f.lp.Stabilize()
	}
}

func (f *fixture) typeString(s string) {
	for _, r := range s {
		f.press(term.K(r))
	}
}

func (f *fixture) focus(sel string) {
	f.vd.RunCommand(view.Command{Name: view.Focus, Sel: sel})
	f.lp.Stabilize()
}

// takeEffects returns the commands emitted since the last call.
func (f *fixture) takeEffects() []view.Command {
	out := f.effects
	f.effects = nil
	return out
}

func (f *fixture) wantTodos(want []Todo) {
	f.t.Helper()
	if got := f.appState().Todos; !reflect.DeepEqual(got, want) {
		f.t.Errorf("got todos %v, want %v", got, want)
	}
}

func bb() *term.BufferBuilder {
	return term.NewBufferBuilder(termtest.FakeTTYWidth)
}

func TestInitialScreen_EmptyStore(t *testing.T) {
	f := setupApp(t, nil)
	f.ttyCtrl.TestBuffer(t, bb().
		Write("todos", ui.Bold).Newline().
		SetDotHere().Write("What needs to be done?", ui.Dim).Newline().
		Write("[ ] Mark all as complete").Newline().
		Newline().
		Write("0 items left  ").Write("1:All", ui.Underlined).
		Write("  2:Active  3:Completed").Buffer())
}

func TestInitialScreen_SeededStore(t *testing.T) {
	f := setupApp(t, []Todo{
		{ID: 1, Title: "a", Completed: true},
		{ID: 2, Title: "b"},
	})
	f.ttyCtrl.TestBuffer(t, bb().
		Write("todos", ui.Bold).Newline().
		SetDotHere().Write("What needs to be done?", ui.Dim).Newline().
		Write("[ ] Mark all as complete").Newline().
		Write("[x] ").Write("a", ui.Dim).Write("  ").Write("✕", ui.FgRed).Newline().
		Write("[ ] b  ").Write("✕", ui.FgRed).Newline().
		Write("1 item left  ").Write("1:All", ui.Underlined).
		Write("  2:Active  3:Completed  ").Write("Clear completed").Buffer())
}

func TestAddTodo_FirstIDIsOneAndFormClearsOnce(t *testing.T) {
	f := setupApp(t, nil)
	f.typeString("Buy milk")
	f.takeEffects()
	f.press(term.K(ui.Enter))

	f.wantTodos([]Todo{{ID: 1, Title: "Buy milk"}})
	want := []view.Command{{Name: view.SetValue, Sel: "form/new", Value: ""}}
	if got := f.takeEffects(); !reflect.DeepEqual(got, want) {
		t.Errorf("got effects %v, want %v", got, want)
	}
}

func TestAddTodo_NextIDFollowsLargest(t *testing.T) {
	f := setupApp(t, []Todo{{ID: 4, Title: "old"}})
	f.typeString("new")
	f.press(term.K(ui.Enter))
	f.wantTodos([]Todo{{ID: 4, Title: "old"}, {ID: 5, Title: "new"}})
}

func TestAddTodo_WhitespaceOnlyAborts(t *testing.T) {
	f := setupApp(t, nil)
	f.typeString("   ")
	f.takeEffects()
	f.press(term.K(ui.Enter))

	f.wantTodos(nil)
	if got := f.takeEffects(); len(got) != 0 {
		t.Errorf("got effects %v, want none", got)
	}
}

func TestToggleAll_CompletesAllThenReopensAll(t *testing.T) {
	f := setupApp(t, []Todo{
		{ID: 1, Title: "a"},
		{ID: 2, Title: "b", Completed: true},
		{ID: 3, Title: "c"},
	})
	f.focus("toggle-all")
	f.press(term.K(' '))
	f.wantTodos([]Todo{
		{ID: 1, Title: "a", Completed: true},
		{ID: 2, Title: "b", Completed: true},
		{ID: 3, Title: "c", Completed: true},
	})
	f.press(term.K(' '))
	f.wantTodos([]Todo{
		{ID: 1, Title: "a"},
		{ID: 2, Title: "b"},
		{ID: 3, Title: "c"},
	})
}

func TestToggleTodo_FlipsOneEntry(t *testing.T) {
	f := setupApp(t, []Todo{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}})
	f.focus("2/toggle")
	f.press(term.K(' '))
	f.wantTodos([]Todo{{ID: 1, Title: "a"}, {ID: 2, Title: "b", Completed: true}})
}

func TestClearCompleted_PreservesOrderOfTheRest(t *testing.T) {
	f := setupApp(t, []Todo{
		{ID: 1, Title: "a", Completed: true},
		{ID: 2, Title: "b"},
		{ID: 3, Title: "c", Completed: true},
		{ID: 4, Title: "d"},
	})
	f.focus("footer/clear")
	f.press(term.K(ui.Enter))
	f.wantTodos([]Todo{{ID: 2, Title: "b"}, {ID: 4, Title: "d"}})
}

func TestDeleteTodo_RemovesTheEntry(t *testing.T) {
	f := setupApp(t, []Todo{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}, {ID: 3, Title: "c"}})
	f.focus("2/destroy")
	f.press(term.K(ui.Enter))
	f.wantTodos([]Todo{{ID: 1, Title: "a"}, {ID: 3, Title: "c"}})
}

func TestEdit_CommitsTrimmedTitle(t *testing.T) {
	f := setupApp(t, []Todo{{ID: 1, Title: "Buy milk"}})
	f.takeEffects()
	f.focus("1/label")
	f.press(term.K(ui.Enter))

	// Starting an edit seeds the edit input with the title and focuses it.
	want := []view.Command{
		{Name: view.SetValue, Sel: "1/edit", Value: "Buy milk"},
		{Name: view.Focus, Sel: "1/edit"},
	}
	if got := f.takeEffects(); !reflect.DeepEqual(got, want) {
		t.Errorf("got effects %v, want %v", got, want)
	}
	if s := f.appState(); !s.Todos[0].Editing || s.Todos[0].CachedTitle != "Buy milk" {
		t.Errorf("after starting the edit, got %v", s.Todos[0])
	}

	f.typeString(" now ")
	f.press(term.K(ui.Enter))
	f.wantTodos([]Todo{{ID: 1, Title: "Buy milk now"}})
}

func TestEdit_CancelRestoresTheOldTitle(t *testing.T) {
	f := setupApp(t, []Todo{{ID: 1, Title: "Buy milk"}})
	f.focus("1/label")
	f.press(term.K(ui.Enter))
	f.typeString(" not")
	f.press(term.K('[', ui.Ctrl))
	f.wantTodos([]Todo{{ID: 1, Title: "Buy milk"}})
}

func TestEdit_EmptySubmitAbortsAndKeepsEditing(t *testing.T) {
	f := setupApp(t, []Todo{{ID: 1, Title: "Buy milk"}})
	f.focus("1/label")
	f.press(term.K(ui.Enter))
	for range "Buy milk" {
		f.press(term.K(ui.Backspace))
	}
	f.press(term.K(ui.Enter))

	s := f.appState()
	if !s.Todos[0].Editing || s.Todos[0].Title != "Buy milk" {
		t.Errorf("after the empty submit, got %v", s.Todos[0])
	}
}

func TestFilter_DigitKeysSwitchRoutes(t *testing.T) {
	f := setupApp(t, []Todo{{ID: 1, Title: "a", Completed: true}, {ID: 2, Title: "b"}})
	f.focus("toggle-all")
	f.press(term.K('2'))
	if got := f.appState().Filter; got != FilterActive {
		t.Errorf("got filter %q, want %q", got, FilterActive)
	}
	f.press(term.K('3'))
	if got := f.appState().Filter; got != FilterCompleted {
		t.Errorf("got filter %q, want %q", got, FilterCompleted)
	}
	f.press(term.K('1'))
	if got := f.appState().Filter; got != FilterAll {
		t.Errorf("got filter %q, want %q", got, FilterAll)
	}
}

func TestFilter_HidesFilteredItemsOnScreen(t *testing.T) {
	f := setupApp(t, []Todo{{ID: 1, Title: "done", Completed: true}, {ID: 2, Title: "open"}})
	f.focus("toggle-all")
	f.press(term.K('2'))
	f.ttyCtrl.TestBuffer(t, bb().
		Write("todos", ui.Bold).Newline().
		Write("What needs to be done?", ui.Dim).Newline().
		Write("[ ] Mark all as complete", ui.Inverse).Newline().
		Write("[ ] open  ").Write("✕", ui.FgRed).Newline().
		Write("1 item left  1:All  ").Write("2:Active", ui.Underlined).
		Write("  3:Completed  ").Write("Clear completed").Buffer())
}

func TestPersist_SeededStoreSurvivesLoad(t *testing.T) {
	seed := []Todo{{ID: 1, Title: "keep"}}
	f := setupApp(t, seed)
	got, err := f.st.Get(todosKey)
	if err != nil {
		t.Fatal(err)
	}
	if want := string(EncodeTodos(seed)); got != want {
		t.Errorf("got stored %q, want %q", got, want)
	}
	f.wantTodos(seed)
}

func TestPersist_FollowsStateChanges(t *testing.T) {
	f := setupApp(t, []Todo{{ID: 1, Title: "a"}})
	f.focus("1/toggle")
	f.press(term.K(' '))

	got, err := f.st.Get(todosKey)
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"id":1,"title":"a","completed":true}]`
	if got != want {
		t.Errorf("got stored %q, want %q", got, want)
	}
}

func TestPersist_TransientEditStateIsNotStored(t *testing.T) {
	f := setupApp(t, []Todo{{ID: 1, Title: "a"}})
	f.focus("1/label")
	f.press(term.K(ui.Enter))

	if s := f.appState(); !s.Todos[0].Editing {
		t.Fatalf("entry not editing: %v", s.Todos[0])
	}
	got, err := f.st.Get(todosKey)
	if err != nil {
		t.Fatal(err)
	}
	if want := `[{"id":1,"title":"a","completed":false}]`; got != want {
		t.Errorf("got stored %q, want %q", got, want)
	}
}
