package itanium

import "testing"

func TestDemangleOrdinaryFunctions(t *testing.T) {
	tests := []struct {
		mangled string
		want    string
	}{
		{"_Z3fooi", "foo(int)"},
		{"_Z3barv", "bar()"},
		{"_ZN9Namespace5ClassD1Ev", "Namespace::Class::~Class()"},
		{"_ZN5ClassC1Ev", "Class::Class()"},
		{"_ZN5Class6methodEPKc", "Class::method(char const*)"},
	}
	for _, tt := range tests {
		got, err := Demangle(tt.mangled)
		if err != nil {
			t.Fatalf("Demangle(%q): unexpected error: %v", tt.mangled, err)
		}
		if got != tt.want {
			t.Errorf("Demangle(%q) = %q, want %q", tt.mangled, got, tt.want)
		}
	}
}

func TestDemangleTypeinfoAndVtableNames(t *testing.T) {
	tests := []struct {
		mangled string
		want    string
	}{
		{"_ZTI5Class", "Class"},
		{"_ZTV5Class", "Class"},
		{"_ZTIN9Namespace5ClassE", "Namespace::Class"},
	}
	for _, tt := range tests {
		got, err := DemangleTypeinfoName(tt.mangled)
		if err == nil {
			if got != tt.want {
				t.Errorf("DemangleTypeinfoName(%q) = %q, want %q", tt.mangled, got, tt.want)
			}
			continue
		}
		got2, err2 := DemangleVtableName(tt.mangled)
		if err2 != nil {
			t.Fatalf("neither DemangleTypeinfoName nor DemangleVtableName accepted %q: %v / %v", tt.mangled, err, err2)
		}
		if got2 != tt.want {
			t.Errorf("DemangleVtableName(%q) = %q, want %q", tt.mangled, got2, tt.want)
		}
	}
}

func TestDemangleNonVirtualThunk(t *testing.T) {
	got, err := DemangleNonVirtualThunkName("_ZThn8_N5Class6methodEv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Class::method()"
	if got != want {
		t.Errorf("DemangleNonVirtualThunkName = %q, want %q", got, want)
	}
}

func TestPartialDemanglerMemberFunction(t *testing.T) {
	d, err := NewPartialDemangler("_ZN9Namespace5ClassC2Ev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.IsCtorOrDtor() {
		t.Errorf("expected IsCtorOrDtor() true for a C2 constructor symbol")
	}
	if got := d.FunctionBaseName(); got != "Class" {
		t.Errorf("FunctionBaseName() = %q, want %q", got, "Class")
	}
	if got := d.FunctionDeclContextName(); got != "Namespace::Class" {
		t.Errorf("FunctionDeclContextName() = %q, want %q", got, "Namespace::Class")
	}
	if got := d.FunctionName(); got != "Namespace::Class::Class" {
		t.Errorf("FunctionName() = %q, want %q", got, "Namespace::Class::Class")
	}
}

func TestPartialDemanglerParameters(t *testing.T) {
	d, err := NewPartialDemangler("_ZN5Class3addEii")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.FunctionParameters(); got != "int, int" {
		t.Errorf("FunctionParameters() = %q, want %q", got, "int, int")
	}
	if d.IsCtorOrDtor() {
		t.Errorf("expected IsCtorOrDtor() false for an ordinary method")
	}
}

func TestLooksMangled(t *testing.T) {
	if !LooksMangled("_ZN5Class3addEii") {
		t.Errorf("expected _Z-prefixed name to look mangled")
	}
	if LooksMangled("_GLOBAL__I__ZN5ClassC2Ev") {
		t.Errorf("did not expect a static-init thunk label to look mangled")
	}
}
