// Package machofacade is component A of the reconstruction pipeline: the
// narrow binary-reading surface every later pass (STABS walker, RTTI
// decoder, vtable decoder, relocation patcher) is built against, so none of
// them need to know about load commands, segments, or fat-binary slice
// selection.
//
// Built on an adapted copy of the teacher's own pkg/macho (itself adapted
// from the standard library's debug/macho), rather than a second, heavier
// Mach-O type system — see DESIGN.md.
package machofacade

import (
	"encoding/binary"
	"fmt"

	"github.com/blacktop/machomodel/pkg/macho"
	"github.com/blacktop/machomodel/pkg/modelerr"
)

// Symbol is the subset of an Nlist32 entry the reconstruction passes need:
// a demangled-or-not name, its STABS/N_TYPE byte, its section, and value.
type Symbol struct {
	Name    string
	Type    uint8
	Sect    uint8
	Desc    uint16
	Value   uint64
}

// Section is a named, addressed region of the binary.
type Section struct {
	Name  string
	Start uint64
	Size  uint64
}

// Relocation is one external relocation table entry: the file offset it
// patches and the symbol table index it refers to.
type Relocation struct {
	Address   uint64
	SymbolNum uint32
}

// Binary is the read/patch surface every reconstruction pass uses. It is
// deliberately small: everything about segments, load commands, and
// fat-binary slice selection is resolved once, at Open time.
type Binary struct {
	file *macho.File
}

// Open reads path and selects the 32-bit i386-or-ppc slice (i386 preferred
// when both are present in a fat binary), per spec.md's supported CPU set.
func Open(path string) (*Binary, error) {
	f, err := macho.Open(path)
	if err != nil {
		return nil, modelerr.NewIoError(path, err)
	}
	return &Binary{file: f}, nil
}

// Close releases the underlying file handle.
func (b *Binary) Close() error {
	return b.file.Close()
}

// ByteOrder is the byte order of the selected CPU slice (little-endian for
// i386, big-endian for ppc), needed by the RTTI and vtable decoders to read
// packed integer fields out of raw section bytes.
func (b *Binary) ByteOrder() binary.ByteOrder {
	return b.file.ByteOrder
}

// Symbols returns every symbol table entry, in file order.
func (b *Binary) Symbols() []Symbol {
	syms := make([]Symbol, len(b.file.Symbols))
	for i, s := range b.file.Symbols {
		syms[i] = Symbol{Name: s.Name, Type: s.Type, Sect: s.Sect, Desc: s.Desc, Value: uint64(s.Value)}
	}
	return syms
}

// ContentAt returns n bytes of content starting at virtual address vaddr,
// including any earlier PatchAt overlays.
func (b *Binary) ContentAt(vaddr uint64, n int) ([]byte, error) {
	off, err := b.vaddrToOffset(vaddr)
	if err != nil {
		return nil, err
	}
	data, err := b.file.ContentAt(off, n)
	if err != nil {
		return nil, modelerr.NewMalformedBinary(fmt.Sprintf("content at 0x%x", vaddr), err)
	}
	return data, nil
}

// SectionAt returns the section containing vaddr, or a MalformedBinary
// error if no section covers it.
func (b *Binary) SectionAt(vaddr uint64) (*Section, error) {
	s := b.file.SectionForAddr(uint32(vaddr))
	if s == nil {
		return nil, modelerr.NewMalformedBinary(fmt.Sprintf("section at 0x%x", vaddr), nil)
	}
	return &Section{Name: s.Name, Start: uint64(s.Addr), Size: uint64(s.Size)}, nil
}

// ExternalRelocations returns the external relocation table entries used by
// the relocation patcher (component B) to locate the five well-known RTTI
// vtable symbols.
func (b *Binary) ExternalRelocations() ([]Relocation, error) {
	relocs, err := b.file.ExternalRelocations()
	if err != nil {
		return nil, modelerr.NewMalformedBinary("external relocation table", err)
	}
	if relocs == nil {
		return nil, nil
	}
	out := make([]Relocation, len(relocs))
	for i, r := range relocs {
		out[i] = Relocation{Address: uint64(r.Addr), SymbolNum: r.SymbolNum}
	}
	return out, nil
}

// PatchAt overlays 4 bytes at vaddr with v, in memory only.
func (b *Binary) PatchAt(vaddr uint64, v uint32) error {
	off, err := b.vaddrToOffset(vaddr)
	if err != nil {
		return err
	}
	return b.file.PatchAt(off, v)
}

// OffsetToVaddr translates a file offset into the virtual address of the
// section that contains it.
func (b *Binary) OffsetToVaddr(off uint64) (uint64, error) {
	s := b.file.SectionForOffset(uint32(off))
	if s == nil {
		return 0, modelerr.NewMalformedBinary(fmt.Sprintf("no section for file offset 0x%x", off), nil)
	}
	return uint64(s.Addr) + (off - uint64(s.Offset)), nil
}

func (b *Binary) vaddrToOffset(vaddr uint64) (uint32, error) {
	s := b.file.SectionForAddr(uint32(vaddr))
	if s == nil {
		return 0, modelerr.NewMalformedBinary(fmt.Sprintf("no section for vaddr 0x%x", vaddr), nil)
	}
	return s.Offset + (uint32(vaddr) - s.Addr), nil
}
