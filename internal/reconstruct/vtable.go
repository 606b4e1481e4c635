package reconstruct

import (
	"fmt"
	"strings"

	"github.com/blacktop/machomodel/internal/itanium"
	"github.com/blacktop/machomodel/pkg/cpptypes"
	"github.com/blacktop/machomodel/pkg/machofacade"
)

// parseVtable decodes a __ZTV symbol into one or more cpptypes.VTable
// entries on the class it belongs to. A class with secondary vtables (for
// non-primary, non-leftmost base subobjects) lays every sub-vtable out
// contiguously in the same blob, each with its own
// {offsetToTop int32, typeinfo uint32} header followed by its function
// pointer slots — there is no length field anywhere in the symbol table, so
// a secondary sub-vtable's start is detected by its header's typeinfo word
// repeating the primary vtable's typeinfo pointer value.
//
// Grounded on MachOReader.cpp's Parse_PEXT_vtable.
func (r *reconstructor) parseVtable(sym machofacade.Symbol) error {
	mangled := strings.TrimPrefix(sym.Name, "_")
	className, err := itanium.DemangleVtableName(mangled)
	if err != nil {
		return fmt.Errorf("demangle vtable name: %w", err)
	}
	classIdx := r.findOrCreateClassByName(className)

	end, err := r.vtableBlobEnd(sym.Value)
	if err != nil {
		return fmt.Errorf("locate end of vtable blob: %w", err)
	}
	n := int((end - sym.Value) / 4)
	if n < 2 {
		return fmt.Errorf("vtable %s: blob too small (%d words)", className, n)
	}

	raw, err := r.bin.ContentAt(sym.Value, n*4)
	if err != nil {
		return fmt.Errorf("read vtable content: %w", err)
	}
	bo := r.bin.ByteOrder()
	words := make([]uint32, n)
	for i := range words {
		words[i] = bo.Uint32(raw[i*4 : i*4+4])
	}

	primaryTypeInfo := words[1]

	var vtables []cpptypes.VTable
	i := 0
	done := false
	for i+1 < len(words) && !done {
		offsetToTop := int32(words[i])
		j := i + 2
		var entries []uint32
		for j < len(words) {
			if words[j] == primaryTypeInfo {
				// words[j] is the next sub-vtable's typeinfo word, so
				// words[j-1] is its offsetToTop, not one of this table's
				// function pointer slots.
				if len(entries) > 0 {
					entries = entries[:len(entries)-1]
				}
				j--
				break
			}
			if !r.vtableSlotContinues(words[j]) {
				done = true
				break
			}
			entries = append(entries, words[j])
			j++
		}
		vtables = append(vtables, r.buildVTableFromWords(entries, offsetToTop))
		if done || j >= len(words) {
			break
		}
		i = j
	}

	r.model.Classes[classIdx].VTables = vtables
	return nil
}

// vtableSlotContinues reports whether word is a live vtable slot, per
// spec's end-of-vtable rule: a zero function pointer ends the table
// outright, the cxa_pure_virtual synthetic tag is always a live slot, and
// any other address must resolve to a section named __text or
// __textcoal_nt — anything else (data, an unmapped address, a different
// section) means decoding has run past the end of the vtable.
func (r *reconstructor) vtableSlotContinues(word uint32) bool {
	if word == 0 {
		return false
	}
	if syntheticTag(word) == tagCxaPureVirtual {
		return true
	}
	sec, err := r.bin.SectionAt(uint64(word))
	if err != nil {
		return false
	}
	return sec.Name == "__text" || sec.Name == "__textcoal_nt"
}

// vtableBlobEnd bounds a vtable's raw word stream at the address of the
// next-lowest symbol in the same section, or the section's own end if no
// later symbol exists.
func (r *reconstructor) vtableBlobEnd(addr uint64) (uint64, error) {
	sec, err := r.bin.SectionAt(addr)
	if err != nil {
		return 0, err
	}
	end := sec.Start + sec.Size
	for _, sym := range r.symbols {
		if sym.Value > addr && sym.Value < end {
			end = sym.Value
		}
	}
	return end, nil
}

// buildVTableFromWords turns a sub-vtable's raw function-pointer slots into
// VTableEntry records, resolving each slot against the thunk table, the
// function table, or the cxa_pure_virtual synthetic tag.
func (r *reconstructor) buildVTableFromWords(words []uint32, offsetToTop int32) cpptypes.VTable {
	vt := cpptypes.VTable{Offset: uint16(uint32(-offsetToTop))}
	for _, addr := range words {
		entry := cpptypes.VTableEntry{
			FunctionIndex:     cpptypes.InvalidIndex,
			ThunkIndex:        cpptypes.InvalidIndex,
			AllBaseClassIndex: cpptypes.InvalidIndex,
		}
		switch {
		case syntheticTag(addr) == tagCxaPureVirtual:
			entry.IsPureVirtual = true
		default:
			if thunkIdx, ok := r.model.AddressToThunkIndex[uint64(addr)]; ok {
				th := r.model.Thunks[thunkIdx]
				entry.ThunkIndex = thunkIdx
				entry.Name = th.Name
				entry.IsDtor = th.IsDtor
			} else if fnIdx, ok := r.model.AddressToFunctionIndex[uint64(addr)]; ok {
				fn := r.model.Functions[fnIdx]
				entry.FunctionIndex = fnIdx
				entry.Name = fn.FunctionName
				entry.IsDtor = fn.IsCtorOrDtor && strings.HasPrefix(fn.FunctionBaseName, "~")
			}
		}
		vt.Entries = append(vt.Entries, entry)
	}
	return vt
}

// parseThunk records a __ZThn<offset>_<mangled> symbol as a
// NonVirtualThunk. The offset itself isn't retained on the thunk record —
// it becomes implicit once the thunk's slot is matched against a base
// class's BaseOffset during vtable reasoning (reason.go).
func (r *reconstructor) parseThunk(sym machofacade.Symbol) error {
	mangled := strings.TrimPrefix(sym.Name, "_")
	name, err := itanium.DemangleNonVirtualThunkName(mangled)
	if err != nil {
		return fmt.Errorf("demangle non-virtual thunk name: %w", err)
	}
	th := cpptypes.NonVirtualThunk{
		Name:    name,
		Address: sym.Value,
		IsDtor:  strings.Contains(name, "::~") || strings.HasPrefix(name, "~"),
	}
	r.model.Thunks = append(r.model.Thunks, th)
	r.model.AddressToThunkIndex[sym.Value] = cpptypes.Index(len(r.model.Thunks) - 1)
	return nil
}
