package ui

import (
	"testing"
)

var kTests = []struct {
	k1 Key
	k2 Key
}{
	{K('a'), Key{'a', 0}},
	{K('a', Alt), Key{'a', Alt}},
	{K('a', Alt, Ctrl), Key{'a', Alt | Ctrl}},
}

func TestK(t *testing.T) {
	for _, test := range kTests {
		if test.k1 != test.k2 {
			t.Errorf("%v != %v", test.k1, test.k2)
		}
	}
}

var keyStringTests = []struct {
	key  Key
	want string
}{
	{K('a'), "a"},
	{K('a', Alt), "Alt-a"},
	{K('a', Ctrl, Alt, Shift), "Ctrl-Alt-Shift-a"},
	{K('\t'), "Tab"},
	{K(F1), "F1"},
	{K(PageDown, Shift), "Shift-PageDown"},
	{K(-1), "(bad function key -1)"},
	{K(-2000), "(bad function key -2000)"},
}

func TestKeyString(t *testing.T) {
	for _, test := range keyStringTests {
		if s := test.key.String(); s != test.want {
			t.Errorf("%v.String() -> %q, want %q", test.key, s, test.want)
		}
	}
}

