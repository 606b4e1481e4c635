package reconstruct

import (
	"encoding/binary"
	"fmt"

	"github.com/blacktop/machomodel/pkg/machofacade"
)

// fakeBinary is a binaryReader test double backed by a flat in-memory
// buffer and a fixed section table, standing in for a real
// *machofacade.Binary so the RTTI and vtable passes can be driven without a
// fixture Mach-O file on disk.
type fakeBinary struct {
	order    binary.ByteOrder
	base     uint64
	data     []byte
	sections []machofacade.Section
}

func newFakeBinary(base uint64, data []byte, sections ...machofacade.Section) *fakeBinary {
	return &fakeBinary{order: binary.LittleEndian, base: base, data: data, sections: sections}
}

func (f *fakeBinary) ByteOrder() binary.ByteOrder   { return f.order }
func (f *fakeBinary) Symbols() []machofacade.Symbol { return nil }

func (f *fakeBinary) ContentAt(vaddr uint64, n int) ([]byte, error) {
	if vaddr < f.base {
		return nil, fmt.Errorf("fakeBinary: vaddr 0x%x below base 0x%x", vaddr, f.base)
	}
	off := int(vaddr - f.base)
	if off+n > len(f.data) {
		return nil, fmt.Errorf("fakeBinary: read of %d bytes at 0x%x out of range", n, vaddr)
	}
	return f.data[off : off+n], nil
}

func (f *fakeBinary) SectionAt(vaddr uint64) (*machofacade.Section, error) {
	for i := range f.sections {
		s := f.sections[i]
		if vaddr >= s.Start && vaddr < s.Start+s.Size {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("fakeBinary: no section covers 0x%x", vaddr)
}

func (f *fakeBinary) ExternalRelocations() ([]machofacade.Relocation, error) { return nil, nil }

func (f *fakeBinary) PatchAt(vaddr uint64, v uint32) error {
	off := int(vaddr - f.base)
	if off < 0 || off+4 > len(f.data) {
		return fmt.Errorf("fakeBinary: patch at 0x%x out of range", vaddr)
	}
	f.order.PutUint32(f.data[off:off+4], v)
	return nil
}

func (f *fakeBinary) OffsetToVaddr(off uint64) (uint64, error) {
	return f.base + off, nil
}
