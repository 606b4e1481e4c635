package reconstruct

import "testing"

func TestSplitLastTopLevelScope(t *testing.T) {
	tests := []struct {
		in      string
		wantCtx string
		wantLeaf string
	}{
		{"Widget", "", "Widget"},
		{"a::b::c", "a::b", "c"},
		{"std::vector<a::b, c::d>::iterator", "std::vector<a::b, c::d>", "iterator"},
		{"ns::Outer<Inner::Type>", "ns", "Outer<Inner::Type>"},
	}
	for _, tt := range tests {
		ctx, leaf := splitLastTopLevelScope(tt.in)
		if ctx != tt.wantCtx || leaf != tt.wantLeaf {
			t.Errorf("splitLastTopLevelScope(%q) = (%q, %q), want (%q, %q)", tt.in, ctx, leaf, tt.wantCtx, tt.wantLeaf)
		}
	}
}

func TestFunctionNameWithoutClassName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Widget::draw()", "draw()"},
		{"Widget::draw(int, int)", "draw(int, int)"},
		{"ns::Widget::compare(ns::Widget const&)", "compare(ns::Widget const&)"},
		{"draw()", "draw()"},
	}
	for _, tt := range tests {
		got := functionNameWithoutClassName(tt.in)
		if got != tt.want {
			t.Errorf("functionNameWithoutClassName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMakeFunctionNameWithNewClassName(t *testing.T) {
	got := makeFunctionNameWithNewClassName("Gadget", "Widget::draw(int)")
	want := "Gadget::draw(int)"
	if got != want {
		t.Errorf("makeFunctionNameWithNewClassName() = %q, want %q", got, want)
	}
}
