package cpptypes

import "testing"

func TestGetParameterTypes(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"void", nil},
		{"()", nil},
		{"(void)", nil},
		{"int", []string{"int"}},
		{"int, char const*", []string{"int", "char const"}},
		{"std::vector<int, std::allocator<int> >, int", []string{"std::vector<int, std::allocator<int> >", "int"}},
		{"(int, unsigned long, Foo<A, B>*, signed char&)", []string{"int", "unsigned long", "Foo<A, B>", "signed char"}},
	}
	for _, tt := range tests {
		got := GetParameterTypes(tt.in)
		if len(got) != len(tt.want) {
			t.Fatalf("GetParameterTypes(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("GetParameterTypes(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestClassGetBaseClassScansBackToFront(t *testing.T) {
	c := Class{
		AllBaseClasses: []BaseClass{
			{ClassIndex: 1, BaseOffset: 8},
			{ClassIndex: 2, BaseOffset: 8},
			{ClassIndex: 3, BaseOffset: 16},
		},
	}
	base := c.GetBaseClass(8)
	if base == nil || base.ClassIndex != 2 {
		t.Fatalf("GetBaseClass(8) = %+v, want ClassIndex 2 (most recently flattened)", base)
	}
	if c.GetBaseClass(100) != nil {
		t.Error("expected nil for an offset with no base class")
	}
}

func TestVTableEntryIsFirstDeclaration(t *testing.T) {
	entry := VTableEntry{Name: "Widget::draw"}
	if !entry.IsFirstDeclaration() {
		t.Error("expected a plain entry to be a first declaration")
	}
	entry.IsOverride = true
	if entry.IsFirstDeclaration() {
		t.Error("an override is not a first declaration")
	}
}

func TestCreateHeaderFileSet(t *testing.T) {
	headers := []HeaderFile{{Name: "widget.h"}, {Name: "base.h"}}
	fn := Function{
		Variants: []FunctionVariant{
			{
				Instructions: []FunctionInstruction{
					{HeaderFileIndex: 0},
					{HeaderFileIndex: 1},
					{HeaderFileIndex: InvalidIndex},
				},
			},
			{
				Instructions: []FunctionInstruction{
					{HeaderFileIndex: 0},
				},
			},
		},
	}
	set := CreateHeaderFileSet(headers, fn)
	if len(set) != 2 {
		t.Fatalf("expected 2 unique headers, got %d: %v", len(set), set)
	}
	if _, ok := set["widget.h"]; !ok {
		t.Error("expected widget.h in set")
	}
	if _, ok := set["base.h"]; !ok {
		t.Error("expected base.h in set")
	}
}

func TestNewModelInitializesMaps(t *testing.T) {
	m := NewModel()
	if m.NameToClassIndex == nil || m.AddressToFunctionIndex == nil || m.MangledToFunctionIndex == nil {
		t.Fatal("NewModel must initialize every lookup map")
	}
	m.NameToClassIndex["Widget"] = 0
	if len(m.NameToClassIndex) != 1 {
		t.Fatal("expected map to be usable")
	}
}
