package todomvc

import (
	"strings"

	"github.com/tpresley/todomvc-cycle/pkg/comp"
	"github.com/tpresley/todomvc-cycle/pkg/run"
	"github.com/tpresley/todomvc-cycle/pkg/stream"
	"github.com/tpresley/todomvc-cycle/pkg/ui"
	"github.com/tpresley/todomvc-cycle/pkg/view"
)

// TodoItem returns the component of one todo entry. The list instantiates
// it once per live todo, with the entry as its state and its elements
// scoped under the entry's ID.
func TodoItem() comp.Factory {
	return func(src comp.Sources) (comp.Sinks, error) {
		v, err := viewSource(src)
		if err != nil {
			return nil, err
		}
		removedSrc, _ := src[comp.RemovedSource].(*stream.Stream[any])
		return comp.Build(comp.Spec{
			Name: "todo-item",
			Intents: func(comp.Sources) map[string]*stream.Stream[any] {
				m := map[string]*stream.Stream[any]{
					actionToggle:     v.Select("toggle").Events("activate"),
					actionDelete:     v.Select("destroy").Events("activate"),
					actionStartEdit:  v.Select("label").Events("activate"),
					actionDoneEdit:   v.Select("edit").Events("submit"),
					actionCancelEdit: v.Select("edit").Events("cancel"),
				}
				if removedSrc != nil {
					m[actionRemoved] = removedSrc
				}
				return m
			},
			On: map[string]map[string]comp.Handler{
				comp.StateSink: {
					actionToggle:     comp.Reduce(reduceToggle),
					actionDelete:     comp.Reduce(reduceDelete),
					actionStartEdit:  comp.Reduce(reduceStartEdit),
					actionCancelEdit: comp.Reduce(reduceCancelEdit),
					actionDoneEdit:   comp.Reduce(reduceDoneEdit),
				},
				run.EffectsSink: {
					actionPrepEdit: comp.Command(func(data any, _ comp.Next) (any, bool) {
						title, _ := data.(string)
						return view.Command{Name: view.SetValue, Sel: v.Selector("edit"), Value: title}, true
					}),
					actionFocusEdit: comp.Const(view.Command{Name: view.Focus, Sel: v.Selector("edit")}),
					actionRemoved: comp.Command(func(any, comp.Next) (any, bool) {
						logger.Println("removed todo item", strings.TrimSuffix(v.Selector(""), "/"))
						return nil, false
					}),
				},
			},
			View: itemView(v),
		}, src)
	}
}

func reduceToggle(t Todo, _ any, _ comp.Next) (Todo, bool) {
	t.Completed = !t.Completed
	return t, true
}

func reduceDelete(t Todo, _ any, _ comp.Next) (Todo, bool) {
	t.Deleted = true
	return t, true
}

// reduceStartEdit switches the entry into editing and caches the title for
// cancelling. The follow-ups seed the edit input with the title and move
// focus onto it once it is on screen.
func reduceStartEdit(t Todo, _ any, next comp.Next) (Todo, bool) {
	t.Editing = true
	t.CachedTitle = t.Title
	next(actionPrepEdit, t.Title)
	next(actionFocusEdit, nil)
	return t, true
}

func reduceCancelEdit(t Todo, _ any, _ comp.Next) (Todo, bool) {
	if !t.Editing {
		return t, false
	}
	t.Title = t.CachedTitle
	t.Editing = false
	t.CachedTitle = ""
	return t, true
}

// reduceDoneEdit commits the edited title. A title that trims to nothing
// aborts and the entry stays in editing.
func reduceDoneEdit(t Todo, data any, _ comp.Next) (Todo, bool) {
	if !t.Editing {
		return t, false
	}
	title, _ := data.(string)
	title = strings.TrimSpace(title)
	if title == "" {
		return t, false
	}
	t.Title = title
	t.Editing = false
	t.CachedTitle = ""
	return t, true
}

func itemView(v *view.Source) func(comp.ViewInput) any {
	return func(in comp.ViewInput) any {
		t, _ := in.State.(Todo)
		if t.Hidden || t.Deleted {
			return nil
		}
		if t.Editing {
			return view.Node{Sel: v.Selector("edit"), Kind: view.Input}
		}
		var labelStyle ui.Styling
		if t.Completed {
			labelStyle = ui.Dim
		}
		return view.Node{Kind: view.Line, Children: []view.Node{
			{Sel: v.Selector("toggle"), Kind: view.Check, Checked: t.Completed},
			{Sel: v.Selector("label"), Kind: view.Button, Text: t.Title, Style: labelStyle},
			{Kind: view.Text, Text: "  "},
			{Sel: v.Selector("destroy"), Kind: view.Button, Text: "✕", Style: ui.FgRed},
		}}
	}
}
