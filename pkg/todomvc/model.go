// Package todomvc implements the todo application: its state model, the
// component tree that manipulates it, and the program that runs the tree on
// a terminal.
package todomvc

import "github.com/tpresley/todomvc-cycle/pkg/logutil"

var logger = logutil.GetLogger("[todomvc] ")

// Todo is one todo entry. ID, Title and Completed are the durable fields;
// the rest is working state of the UI and never persists.
type Todo struct {
	ID        int
	Title     string
	Completed bool

	// Hidden marks the entry as filtered out of the current view.
	Hidden bool
	// Editing marks the entry as having its title edited.
	Editing bool
	// CachedTitle holds the title from before the edit, for cancelling.
	CachedTitle string
	// Deleted marks the entry for removal; the list lens drops marked
	// entries when folding item state back into the app state.
	Deleted bool
}

// AppState is the root state.
type AppState struct {
	Todos []Todo
	// Filter is one of FilterAll, FilterActive and FilterCompleted.
	Filter string
	// Loaded is set once the stored todos have been read. Nothing persists
	// before that, so a slow read cannot overwrite the store with an empty
	// list.
	Loaded bool
}

// Filter values.
const (
	FilterAll       = ""
	FilterActive    = "active"
	FilterCompleted = "completed"
)

// Routes, in digit key order.
var routes = []string{"/", "/active", "/completed"}

// filterOf maps a route name to a filter value.
func filterOf(route string) string {
	switch route {
	case "/active":
		return FilterActive
	case "/completed":
		return FilterCompleted
	}
	return FilterAll
}

// hiddenUnder reports whether t is filtered out under filter.
func hiddenUnder(filter string, t Todo) bool {
	switch filter {
	case FilterActive:
		return t.Completed
	case FilterCompleted:
		return !t.Completed
	}
	return false
}
