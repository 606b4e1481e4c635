package reconstruct

import (
	"testing"

	"github.com/blacktop/machomodel/pkg/cpptypes"
	"github.com/blacktop/machomodel/pkg/machofacade"
)

func TestVtableSlotContinues(t *testing.T) {
	bin := newFakeBinary(0, nil,
		machofacade.Section{Name: "__text", Start: 0x1000, Size: 0x100},
		machofacade.Section{Name: "__data", Start: 0x2000, Size: 0x100},
	)
	r := newTestReconstructorWithBin(bin)

	tests := []struct {
		name string
		word uint32
		want bool
	}{
		{"zero word ends the vtable", 0, false},
		{"cxa_pure_virtual tag is always a live slot", uint32(tagCxaPureVirtual), true},
		{"address in __text continues", 0x1010, true},
		{"address in __data ends the vtable", 0x2010, false},
		{"address in no section ends the vtable", 0x9999, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.vtableSlotContinues(tt.word); got != tt.want {
				t.Errorf("vtableSlotContinues(0x%x) = %v, want %v", tt.word, got, tt.want)
			}
		})
	}
}

func TestBuildVTableFromWordsResolvesEachSlotKind(t *testing.T) {
	r := newTestReconstructor()

	r.model.Functions = append(r.model.Functions, cpptypes.Function{
		FunctionName:     "Widget::draw()",
		FunctionBaseName: "draw",
	})
	r.model.AddressToFunctionIndex[0x2000] = 0

	r.model.Thunks = append(r.model.Thunks, cpptypes.NonVirtualThunk{
		Name:   "Widget::~Widget()",
		IsDtor: true,
	})
	r.model.AddressToThunkIndex[0x3000] = 0

	words := []uint32{
		uint32(tagCxaPureVirtual), // pure virtual slot
		0x2000,                    // resolves to a function
		0x3000,                    // resolves to a thunk
	}

	vt := r.buildVTableFromWords(words, -8)

	if vt.Offset != 8 {
		t.Errorf("Offset = %d, want 8 (negated offsetToTop)", vt.Offset)
	}
	if len(vt.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(vt.Entries))
	}

	if !vt.Entries[0].IsPureVirtual {
		t.Error("entry 0 should be marked pure virtual")
	}

	if vt.Entries[1].FunctionIndex != 0 || vt.Entries[1].Name != "Widget::draw()" {
		t.Errorf("entry 1 = %+v, want resolved to function 0", vt.Entries[1])
	}

	if vt.Entries[2].ThunkIndex != 0 || !vt.Entries[2].IsDtor {
		t.Errorf("entry 2 = %+v, want resolved to dtor thunk 0", vt.Entries[2])
	}
}

// newVtableBlobFixture lays out one sub-vtable's words: offsetToTop(0),
// typeinfo marker, a pure-virtual slot, a slot resolving to a real
// function, and a terminating word controlled by the caller. It returns a
// reconstructor with a fakeBinary backing a __ZTV symbol at 0x5000.
func newVtableBlobFixture(terminator uint32) (*reconstructor, machofacade.Symbol) {
	const vtableAddr = 0x5000
	const primaryTypeInfo = 0x7000
	const fnAddr = 0x1010

	words := []uint32{
		0,                         // offsetToTop
		primaryTypeInfo,           // typeinfo marker word
		uint32(tagCxaPureVirtual), // entry 0: pure virtual
		fnAddr,                    // entry 1: resolves to a function
		terminator,                // end-of-vtable marker
		0xdeadbeef, 0xdeadbeef, 0xdeadbeef, // never reached
	}
	data := make([]byte, len(words)*4)
	for i, w := range words {
		data[i*4] = byte(w)
		data[i*4+1] = byte(w >> 8)
		data[i*4+2] = byte(w >> 16)
		data[i*4+3] = byte(w >> 24)
	}

	bin := newFakeBinary(vtableAddr, data,
		machofacade.Section{Name: "__const", Start: vtableAddr, Size: 0x100},
		machofacade.Section{Name: "__text", Start: 0x1000, Size: 0x100},
	)
	r := newTestReconstructorWithBin(bin)
	// bound the read to exactly this fixture's words via a symbol placed
	// right after it, matching how vtableBlobEnd finds the next symbol.
	r.symbols = []machofacade.Symbol{{Value: vtableAddr + uint64(len(words)*4) - 12}}

	r.model.Functions = append(r.model.Functions, cpptypes.Function{FunctionName: "Widget::draw()"})
	r.model.AddressToFunctionIndex[fnAddr] = 0

	return r, machofacade.Symbol{Name: "__ZTV6Widget", Value: vtableAddr}
}

func TestParseVtableTerminatesAtZeroWord(t *testing.T) {
	r, sym := newVtableBlobFixture(0)
	if err := r.parseVtable(sym); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	classIdx := r.model.NameToClassIndex["Widget"]
	vts := r.model.Classes[classIdx].VTables
	if len(vts) != 1 || len(vts[0].Entries) != 2 {
		t.Fatalf("expected 1 vtable with 2 entries, got %+v", vts)
	}
}

func TestParseVtableTerminatesAtNonTextAddress(t *testing.T) {
	r, sym := newVtableBlobFixture(0x9999) // resolves to no known section
	if err := r.parseVtable(sym); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	classIdx := r.model.NameToClassIndex["Widget"]
	vts := r.model.Classes[classIdx].VTables
	if len(vts) != 1 || len(vts[0].Entries) != 2 {
		t.Fatalf("expected 1 vtable with 2 entries, got %+v", vts)
	}
}

func TestParseThunkDetectsDtor(t *testing.T) {
	r := newTestReconstructor()
	err := r.parseThunk(machofacade.Symbol{Name: "__ZThn8_N6WidgetD1Ev", Value: 0x4000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.model.Thunks) != 1 {
		t.Fatalf("expected one thunk, got %d", len(r.model.Thunks))
	}
	th := r.model.Thunks[0]
	if !th.IsDtor {
		t.Errorf("expected thunk %q to be detected as a destructor", th.Name)
	}
	if idx, ok := r.model.AddressToThunkIndex[0x4000]; !ok || idx != 0 {
		t.Errorf("expected AddressToThunkIndex[0x4000] = 0, got %d, %v", idx, ok)
	}
}
