// Package view implements the rendering driver: it turns view trees from the
// component engine into terminal buffers, owns transient element state (input
// text, cursor, focus), translates terminal events into element events, and
// executes element commands.
package view

import "github.com/tpresley/todomvc-cycle/pkg/ui"

// Kind enumerates the node kinds of a view tree.
type Kind int

const (
	// Box lays its children out vertically, one per line.
	Box Kind = iota
	// Line lays its children out horizontally.
	Line
	// Text is a styled text span.
	Text
	// Input is an editable text field. Its text lives in the driver, not in
	// the tree; Text is the placeholder shown while it is empty.
	Input
	// Check is a toggleable checkbox with a caption.
	Check
	// Button is an activatable label.
	Button
)

// Node is one node of a view tree. The zero value is an empty Box.
//
// A node with a non-empty Sel is an element: it can be selected by
// selector, receive events, and be addressed by commands. Input, Check and
// Button elements are focusable.
type Node struct {
	Sel      string
	Kind     Kind
	Style    ui.Styling
	Text     string
	Checked  bool
	Children []Node
}

// Command is an instruction to the driver concerning one element.
type Command struct {
	// Name is the operation: SetValue or Focus.
	Name string
	// Sel is the full selector of the element operated on.
	Sel string
	// Value is the new text, for SetValue.
	Value string
}

// Command names.
const (
	// SetValue rewrites the text of an input element, placing its cursor at
	// the end. It fires no input event.
	SetValue = "SET_VALUE"
	// Focus moves focus to the element. The element does not need to be
	// rendered yet; focus applies as soon as it is.
	Focus = "FOCUS"
)
