package todomvc

import (
	"fmt"

	"github.com/tpresley/todomvc-cycle/pkg/comp"
	"github.com/tpresley/todomvc-cycle/pkg/stream"
	"github.com/tpresley/todomvc-cycle/pkg/ui"
	"github.com/tpresley/todomvc-cycle/pkg/view"
)

// Footer returns the footer line, scoped under "footer".
func Footer() comp.Factory {
	return comp.Isolate(footer, "footer", comp.Identity)
}

func footer(src comp.Sources) (comp.Sinks, error) {
	v, err := viewSource(src)
	if err != nil {
		return nil, err
	}
	return comp.Build(comp.Spec{
		Name: "footer",
		Intents: func(comp.Sources) map[string]*stream.Stream[any] {
			return map[string]*stream.Stream[any]{
				actionClearCompleted: v.Select("clear").Events("activate"),
			}
		},
		On: map[string]map[string]comp.Handler{
			comp.StateSink: {
				actionClearCompleted: comp.Reduce(reduceClearCompleted),
			},
		},
		View: footerView(v),
	}, src)
}

// reduceClearCompleted drops the completed todos, keeping the rest in
// order.
func reduceClearCompleted(s AppState, _ any, _ comp.Next) (AppState, bool) {
	todos := make([]Todo, 0, len(s.Todos))
	for _, t := range s.Todos {
		if !t.Completed {
			todos = append(todos, t)
		}
	}
	s.Todos = todos
	return s, true
}

func footerView(v *view.Source) func(comp.ViewInput) any {
	return func(in comp.ViewInput) any {
		s, _ := in.State.(AppState)
		left, completed := 0, 0
		for _, t := range s.Todos {
			if t.Completed {
				completed++
			} else {
				left++
			}
		}
		unit := "items"
		if left == 1 {
			unit = "item"
		}
		children := []view.Node{
			{Kind: view.Text, Text: fmt.Sprintf("%d %s left", left, unit)},
		}
		for _, f := range []struct{ filter, label string }{
			{FilterAll, "1:All"},
			{FilterActive, "2:Active"},
			{FilterCompleted, "3:Completed"},
		} {
			n := view.Node{Kind: view.Text, Text: f.label}
			if s.Filter == f.filter {
				n.Style = ui.Underlined
			}
			children = append(children, view.Node{Kind: view.Text, Text: "  "}, n)
		}
		if completed > 0 {
			children = append(children,
				view.Node{Kind: view.Text, Text: "  "},
				view.Node{Sel: v.Selector("clear"), Kind: view.Button, Text: "Clear completed"})
		}
		return view.Node{Kind: view.Line, Children: children}
	}
}
