package utils

import (
	"reflect"
	"testing"
)

func TestUnique(t *testing.T) {
	got := Unique([]string{"a", "b", "a", "", "c", "b"})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unique() = %v, want %v", got, want)
	}
}

func TestRemoveStrFromSlice(t *testing.T) {
	got := RemoveStrFromSlice([]string{"a", "b", "c"}, "b")
	want := []string{"a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RemoveStrFromSlice() = %v, want %v", got, want)
	}
}

func TestStrSliceContains(t *testing.T) {
	if !StrSliceContains([]string{"Widget"}, "class Widget::draw") {
		t.Error("expected substring match")
	}
	if StrSliceContains([]string{"Gadget"}, "class Widget::draw") {
		t.Error("did not expect a match")
	}
}

func TestStrSliceHas(t *testing.T) {
	if !StrSliceHas([]string{"Widget", "Gadget"}, "widget") {
		t.Error("expected case-insensitive exact match")
	}
	if StrSliceHas([]string{"Widget"}, "Widget::draw") {
		t.Error("did not expect a substring to match")
	}
}

func TestConvertStrToInt(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"0x1000", 0x1000},
		{"1000", 1000},
		{"ff", 0xff},
	}
	for _, tt := range tests {
		got, err := ConvertStrToInt(tt.in)
		if err != nil {
			t.Fatalf("ConvertStrToInt(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ConvertStrToInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestIsASCII(t *testing.T) {
	if !IsASCII("Widget::draw(int)") {
		t.Error("expected plain identifier to be ASCII")
	}
	if IsASCII("Widget\x00garbage") {
		t.Error("did not expect a NUL byte to count as printable ASCII")
	}
}
