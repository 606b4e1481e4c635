package machofacade

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/blacktop/machomodel/pkg/macho"
	"github.com/blacktop/machomodel/pkg/modelerr"
)

func newTestBinary() *Binary {
	f := &macho.File{
		ByteOrder: binary.LittleEndian,
		Sections: []*macho.Section{
			{
				Section32: macho.Section32{Addr: 0x1000, Size: 0x100, Offset: 0x400},
				Name:      "__text",
			},
			{
				Section32: macho.Section32{Addr: 0x2000, Size: 0x40, Offset: 0x500},
				Name:      "__data",
			},
		},
		Symbols: []macho.Symbol{
			{Name: "_main", Type: 0x0f, Sect: 1, Desc: 0, Value: 0x1000},
		},
	}
	return &Binary{file: f}
}

func TestByteOrder(t *testing.T) {
	b := newTestBinary()
	if b.ByteOrder() != binary.LittleEndian {
		t.Error("expected the underlying file's byte order")
	}
}

func TestSymbols(t *testing.T) {
	b := newTestBinary()
	syms := b.Symbols()
	if len(syms) != 1 || syms[0].Name != "_main" || syms[0].Value != 0x1000 {
		t.Fatalf("Symbols() = %+v, want one _main symbol at 0x1000", syms)
	}
}

func TestSectionAtFound(t *testing.T) {
	b := newTestBinary()
	s, err := b.SectionAt(0x2010)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "__data" || s.Start != 0x2000 || s.Size != 0x40 {
		t.Errorf("SectionAt(0x2010) = %+v, want __data", s)
	}
}

func TestSectionAtNotFound(t *testing.T) {
	b := newTestBinary()
	_, err := b.SectionAt(0xdead)
	if !errors.Is(err, modelerr.ErrMalformedBinary) {
		t.Errorf("expected a MalformedBinary error, got %v", err)
	}
}

func TestOffsetToVaddr(t *testing.T) {
	b := newTestBinary()
	vaddr, err := b.OffsetToVaddr(0x410)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vaddr != 0x1010 {
		t.Errorf("OffsetToVaddr(0x410) = 0x%x, want 0x1010", vaddr)
	}
}

func TestOffsetToVaddrNoSection(t *testing.T) {
	b := newTestBinary()
	_, err := b.OffsetToVaddr(0xffff)
	if !errors.Is(err, modelerr.ErrMalformedBinary) {
		t.Errorf("expected a MalformedBinary error, got %v", err)
	}
}

func TestVaddrToOffset(t *testing.T) {
	b := newTestBinary()
	off, err := b.vaddrToOffset(0x1050)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if off != 0x450 {
		t.Errorf("vaddrToOffset(0x1050) = 0x%x, want 0x450", off)
	}
}

func TestPatchAtUnmappedVaddr(t *testing.T) {
	b := newTestBinary()
	if err := b.PatchAt(0xdead, 0x3fff0000); !errors.Is(err, modelerr.ErrMalformedBinary) {
		t.Errorf("expected a MalformedBinary error for an unmapped vaddr, got %v", err)
	}
}

func TestExternalRelocationsNoDysymtab(t *testing.T) {
	b := newTestBinary()
	relocs, err := b.ExternalRelocations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if relocs != nil {
		t.Errorf("expected no relocations when Dysymtab is nil, got %v", relocs)
	}
}
