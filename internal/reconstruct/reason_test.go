package reconstruct

import (
	"testing"

	"github.com/blacktop/machomodel/pkg/cpptypes"
)

func TestVtableEntryIsOverride(t *testing.T) {
	tests := []struct {
		name string
		a, b cpptypes.VTableEntry
		want bool
	}{
		{"both dtors", cpptypes.VTableEntry{IsDtor: true}, cpptypes.VTableEntry{IsDtor: true}, true},
		{"same base name different class", cpptypes.VTableEntry{Name: "Widget::draw(int)"}, cpptypes.VTableEntry{Name: "Base::draw(int)"}, true},
		{"different names", cpptypes.VTableEntry{Name: "Widget::draw(int)"}, cpptypes.VTableEntry{Name: "Widget::paint(int)"}, false},
		{"one unnamed", cpptypes.VTableEntry{Name: ""}, cpptypes.VTableEntry{Name: "Widget::draw(int)"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vtableEntryIsOverride(tt.a, tt.b); got != tt.want {
				t.Errorf("vtableEntryIsOverride() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlignPrimaryVtablesMarksOverrides(t *testing.T) {
	base := []cpptypes.VTableEntry{
		{Name: "Base::draw(int)"},
		{Name: "Base::resize(int)"},
	}
	derived := []cpptypes.VTableEntry{
		{Name: "Widget::draw(int)"},
		{Name: "Widget::resize(int)"},
	}
	alignPrimaryVtables(derived, base)
	for i, e := range derived {
		if !e.IsOverride {
			t.Errorf("entry %d (%s) expected to be marked as override", i, e.Name)
		}
	}
}

func TestAdvanceToMatch(t *testing.T) {
	seq := []cpptypes.VTableEntry{
		{Name: "Widget::a()"},
		{Name: "Widget::b()"},
		{Name: "Widget::c()"},
	}
	cursor := 0
	ok := advanceToMatch(seq, &cursor, cpptypes.VTableEntry{Name: "Base::c()"})
	if !ok || cursor != 2 {
		t.Fatalf("advanceToMatch() = (%v, cursor=%d), want (true, 2)", ok, cursor)
	}
}
