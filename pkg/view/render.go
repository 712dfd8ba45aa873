package view

import (
	"github.com/tpresley/todomvc-cycle/pkg/term"
	"github.com/tpresley/todomvc-cycle/pkg/ui"
)

func focusable(k Kind) bool {
	return k == Input || k == Check || k == Button
}

func (d *Driver) render(full bool) {
	if !d.hasRoot {
		return
	}
	d.elems = make(map[string]Kind)
	d.order = d.order[:0]
	d.collect(d.root)
	d.refocus()

	_, width := d.tty.Size()
	bb := term.NewBufferBuilder(width)
	d.draw(bb, d.root)
	err := d.tty.UpdateBuffer(bb.Buffer(), full)
	if err != nil {
		logger.Println("update screen:", err)
	}
}

// collect records which elements the tree contains, and the focusable ones
// in render order.
func (d *Driver) collect(n Node) {
	if n.Sel != "" {
		d.elems[n.Sel] = n.Kind
		if focusable(n.Kind) {
			d.order = append(d.order, n.Sel)
		}
	}
	for _, c := range n.Children {
		d.collect(c)
	}
}

// refocus reconciles the focus with the current tree: a focused element that
// was rendered and has since disappeared gives up the focus to the first
// focusable element, while one that has not appeared yet keeps it.
func (d *Driver) refocus() {
	if d.focus != "" {
		if _, ok := d.elems[d.focus]; ok {
			d.focusSeen = true
			return
		}
		if !d.focusSeen {
			return
		}
	}
	if len(d.order) > 0 {
		d.focus = d.order[0]
		d.focusSeen = true
	} else {
		d.focus = ""
		d.focusSeen = false
	}
}

func (d *Driver) draw(bb *term.BufferBuilder, n Node) {
	switch n.Kind {
	case Box:
		for i, c := range n.Children {
			if i > 0 {
				bb.Newline()
			}
			d.draw(bb, c)
		}
	case Line:
		for _, c := range n.Children {
			d.draw(bb, c)
		}
	case Text:
		bb.WriteStyled(ui.T(n.Text, n.Style))
	case Input:
		d.drawInput(bb, n)
	case Check:
		box := "[ ] "
		if n.Checked {
			box = "[x] "
		}
		bb.WriteStyled(ui.T(box+n.Text, n.Style, d.focusStyle(n)))
	case Button:
		bb.WriteStyled(ui.T(n.Text, n.Style, d.focusStyle(n)))
	}
}

// drawInput draws an input element: its text when it has any, its
// placeholder otherwise. A focused input puts the terminal cursor at its
// editing position.
func (d *Driver) drawInput(bb *term.BufferBuilder, n Node) {
	st := d.input(n.Sel)
	focused := n.Sel == d.focus
	if st.text == "" {
		if focused {
			bb.SetDotHere()
		}
		bb.WriteStyled(ui.T(n.Text, n.Style, ui.Dim))
		return
	}
	if !focused {
		bb.WriteStyled(ui.T(st.text, n.Style))
		return
	}
	bb.WriteStyled(ui.T(st.text[:st.cursor], n.Style))
	bb.SetDotHere()
	bb.WriteStyled(ui.T(st.text[st.cursor:], n.Style))
}

// focusStyle returns the extra styling of a focusable element, marking the
// focused one in inverse video.
func (d *Driver) focusStyle(n Node) ui.Styling {
	if n.Sel != "" && n.Sel == d.focus {
		return ui.Inverse
	}
	return nil
}
