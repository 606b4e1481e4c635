// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// File reading, adapted from the layout of the standard library's
// debug/macho.File to the 32-bit-only, symbol-table-and-relocation-centric
// needs of this reader: it never resolves segments into mapped memory the
// way a loader would, it only ever needs random access to file-offset bytes
// and the symbol/relocation tables.

package macho

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// A Section is a Section32 plus the section name and segment name decoded
// from their fixed-size byte arrays, and a reader over its raw bytes.
type Section struct {
	Section32
	Name       string
	SegName    string
	sr         *io.SectionReader
}

// Data reads and returns the contents of the Mach-O section.
func (s *Section) Data() ([]byte, error) {
	data := make([]byte, s.sr.Size())
	n, err := s.sr.ReadAt(data, 0)
	if n == int(s.sr.Size()) {
		err = nil
	}
	return data[:n], err
}

// Open returns a new ReadSeeker reading the section body.
func (s *Section) Open() io.ReadSeeker {
	return io.NewSectionReader(s.sr, 0, 1<<63-1)
}

// A Segment is a Segment32 plus its section names resolved.
type Segment struct {
	Segment32
	Name string
}

// A Symbol is the decoded, named form of an Nlist32 entry.
type Symbol struct {
	Name  string
	Type  uint8
	Sect  uint8
	Desc  uint16
	Value uint32
}

// A Relocation is one external relocation table entry: an address, a symbol
// table index, and the raw packed word so callers needing pcrel/length/type
// can decode further.
type Relocation struct {
	Addr      uint32
	SymbolNum uint32
	Pcrel     bool
	Length    uint8
	Extern    bool
	Type      uint8
}

// A File is an open 32-bit Mach-O file.
type File struct {
	FileHeader
	ByteOrder binary.ByteOrder

	Segments []*Segment
	Sections []*Section

	Symtab   *SymtabCmd
	Dysymtab *DysymtabCmd
	Symbols  []Symbol

	closer io.Closer
	sr     *io.SectionReader
	raw    io.ReaderAt // the whole underlying file, kept only for Close bookkeeping.
	base   int64       // offset of this thin slice within raw (0 unless raw is a fat binary).

	patches map[uint32][4]byte // in-memory overlay applied by PatchAt, honored by ContentAt.
}

// Open opens the named 32-bit Mach-O file (or a fat file containing a
// 32-bit slice) using the default CPU-type preference (i386 over ppc).
func Open(name string) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	ff, err := NewFile(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	ff.closer = f
	return ff, nil
}

// OpenCPU opens the named file selecting the given CPU-type slice out of a
// fat binary, or requires the thin binary to already match cpu.
func OpenCPU(name string, cpu Cpu) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	ff, err := NewFileCPU(f, cpu)
	if err != nil {
		f.Close()
		return nil, err
	}
	ff.closer = f
	return ff, nil
}

// Close closes the underlying file, if Open (rather than NewFile) opened it.
func (f *File) Close() error {
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

var preferredCPUOrder = []Cpu{Cpu386, CpuPpc}

// NewFile reads a Mach-O file, thin or fat, from r, preferring an i386
// slice over a ppc slice when both are present in a fat binary.
func NewFile(r io.ReaderAt) (*File, error) {
	return newFile(r, 0, false)
}

// NewFileCPU behaves like NewFile but requires the given CPU type.
func NewFileCPU(r io.ReaderAt, cpu Cpu) (*File, error) {
	return newFile(r, cpu, true)
}

func newFile(r io.ReaderAt, wantCPU Cpu, requireCPU bool) (*File, error) {
	var ident [4]byte
	if _, err := r.ReadAt(ident[:], 0); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	magic := binary.BigEndian.Uint32(ident[:])

	switch magic {
	case MagicFat:
		return newFatFile(r, wantCPU, requireCPU)
	case Magic32:
		return newThinFile(r, r, 0)
	case Magic64:
		return nil, fmt.Errorf("64-bit Mach-O: %w", errUnsupported64)
	default:
		if binary.LittleEndian.Uint32(ident[:]) == Magic32 {
			return newThinFile(r, r, 0)
		}
		return nil, fmt.Errorf("not a Mach-O file (bad magic 0x%x)", magic)
	}
}

var errUnsupported64 = fmt.Errorf("64-bit binaries are not supported by this reader")

// fatArch mirrors the on-disk fat_arch entry: cpu type/subtype and the
// offset/size of the thin Mach-O slice within the fat file.
type fatArch struct {
	CPU    uint32
	SubCPU uint32
	Offset uint32
	Size   uint32
	Align  uint32
}

func newFatFile(r io.ReaderAt, wantCPU Cpu, requireCPU bool) (*File, error) {
	var hdr [8]byte
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return nil, fmt.Errorf("reading fat header: %w", err)
	}
	nfatArch := binary.BigEndian.Uint32(hdr[4:8])

	archs := make([]fatArch, nfatArch)
	buf := make([]byte, 20*nfatArch)
	if _, err := r.ReadAt(buf, 8); err != nil {
		return nil, fmt.Errorf("reading fat_arch table: %w", err)
	}
	for i := range archs {
		b := buf[i*20 : i*20+20]
		archs[i] = fatArch{
			CPU:    binary.BigEndian.Uint32(b[0:4]),
			SubCPU: binary.BigEndian.Uint32(b[4:8]),
			Offset: binary.BigEndian.Uint32(b[8:12]),
			Size:   binary.BigEndian.Uint32(b[12:16]),
			Align:  binary.BigEndian.Uint32(b[16:20]),
		}
	}

	order := preferredCPUOrder
	if requireCPU {
		order = []Cpu{wantCPU}
	}
	for _, want := range order {
		for _, a := range archs {
			if Cpu(a.CPU) == want {
				return newThinFile(r, r, int64(a.Offset))
			}
		}
	}
	return nil, fmt.Errorf("no matching CPU slice in fat binary: %w", errUnsupported64)
}

func newThinFile(topRaw, r io.ReaderAt, base int64) (*File, error) {
	sr := io.NewSectionReader(r, base, 1<<63-1-base)

	var hdr [28]byte
	if _, err := sr.ReadAt(hdr[:], 0); err != nil {
		return nil, fmt.Errorf("reading file header: %w", err)
	}

	var bo binary.ByteOrder
	switch binary.BigEndian.Uint32(hdr[0:4]) {
	case Magic32:
		bo = binary.BigEndian
	default:
		bo = binary.LittleEndian
		if bo.Uint32(hdr[0:4]) != Magic32 {
			return nil, fmt.Errorf("not a 32-bit Mach-O file")
		}
	}

	f := &File{ByteOrder: bo, sr: sr, raw: topRaw, base: base}
	f.Magic = bo.Uint32(hdr[0:4])
	f.Cpu = Cpu(bo.Uint32(hdr[4:8]))
	f.SubCpu = bo.Uint32(hdr[8:12])
	f.Type = Type(bo.Uint32(hdr[12:16]))
	f.Ncmd = bo.Uint32(hdr[16:20])
	f.Cmdsz = bo.Uint32(hdr[20:24])
	f.Flags = headerFlags(bo.Uint32(hdr[24:28]))

	if f.Cpu != Cpu386 && f.Cpu != CpuPpc {
		return nil, fmt.Errorf("cpu %s: %w", f.Cpu, errUnsupported64)
	}

	cmddat := make([]byte, f.Cmdsz)
	if _, err := sr.ReadAt(cmddat, fileHeaderSize32); err != nil {
		return nil, fmt.Errorf("reading load commands: %w", err)
	}

	b := bytes.NewReader(cmddat)
	for i := uint32(0); i < f.Ncmd; i++ {
		if b.Len() < 8 {
			return nil, fmt.Errorf("truncated load command %d", i)
		}
		cmdStart := int64(len(cmddat)) - int64(b.Len())
		var cmd, siz uint32
		binary.Read(b, bo, &cmd)
		binary.Read(b, bo, &siz)
		if siz < 8 || cmdStart+int64(siz) > int64(len(cmddat)) {
			return nil, fmt.Errorf("invalid command size for command %d", i)
		}
		cmdBytes := cmddat[cmdStart : cmdStart+int64(siz)]
		cr := bytes.NewReader(cmdBytes)

		switch LoadCmd(cmd) {
		case LoadCmdSegment:
			var seg32 struct {
				Cmd, Len                                     uint32
				Name                                         [16]byte
				Addr, Memsz, Offset, Filesz                  uint32
				Maxprot, Prot, Nsect, Flag                   uint32
			}
			if err := binary.Read(cr, bo, &seg32); err != nil {
				return nil, fmt.Errorf("reading segment command %d: %w", i, err)
			}
			seg := &Segment{
				Segment32: Segment32{
					Cmd: LoadCmdSegment, Len: seg32.Len, Name: seg32.Name,
					Addr: seg32.Addr, Memsz: seg32.Memsz, Offset: seg32.Offset,
					Filesz: seg32.Filesz, Maxprot: seg32.Maxprot, Prot: seg32.Prot,
					Nsect: seg32.Nsect, Flag: seg32.Flag,
				},
				Name: cstring(seg32.Name[:]),
			}
			f.Segments = append(f.Segments, seg)

			for s := uint32(0); s < seg32.Nsect; s++ {
				var raw32 struct {
					Name, Seg                     [16]byte
					Addr, Size                     uint32
					Offset, Align, Reloff, Nreloc  uint32
					Flags                          uint32
					Reserve1, Reserve2             uint32
				}
				if err := binary.Read(cr, bo, &raw32); err != nil {
					return nil, fmt.Errorf("reading section %d of segment %d: %w", s, i, err)
				}
				sh := &Section{
					Section32: Section32{
						Name: raw32.Name, Seg: raw32.Seg, Addr: raw32.Addr, Size: raw32.Size,
						Offset: raw32.Offset, Align: raw32.Align, Reloff: raw32.Reloff,
						Nreloc: raw32.Nreloc, Flags: SectionFlag(raw32.Flags),
						Reserve1: raw32.Reserve1, Reserve2: raw32.Reserve2,
					},
					Name:    cstring(raw32.Name[:]),
					SegName: cstring(raw32.Seg[:]),
				}
				sh.sr = io.NewSectionReader(sr, int64(sh.Offset), int64(sh.Size))
				f.Sections = append(f.Sections, sh)
			}

		case LoadCmdSymtab:
			var st SymtabCmd
			if err := binary.Read(cr, bo, &st); err != nil {
				return nil, fmt.Errorf("reading symtab command: %w", err)
			}
			f.Symtab = &st

			symdat := make([]byte, st.Nsyms*12)
			if _, err := sr.ReadAt(symdat, int64(st.Symoff)); err != nil {
				return nil, fmt.Errorf("reading symbol table: %w", err)
			}
			strdat := make([]byte, st.Strsize)
			if _, err := sr.ReadAt(strdat, int64(st.Stroff)); err != nil {
				return nil, fmt.Errorf("reading string table: %w", err)
			}
			symr := bytes.NewReader(symdat)
			f.Symbols = make([]Symbol, st.Nsyms)
			for j := uint32(0); j < st.Nsyms; j++ {
				var n Nlist32
				if err := binary.Read(symr, bo, &n); err != nil {
					return nil, fmt.Errorf("reading symbol %d: %w", j, err)
				}
				f.Symbols[j] = Symbol{
					Name:  cstringAt(strdat, n.Name),
					Type:  n.Type,
					Sect:  n.Sect,
					Desc:  n.Desc,
					Value: n.Value,
				}
			}

		case LoadCmdDysymtab:
			var dt DysymtabCmd
			if err := binary.Read(cr, bo, &dt); err != nil {
				return nil, fmt.Errorf("reading dysymtab command: %w", err)
			}
			f.Dysymtab = &dt
		}
	}

	return f, nil
}

// ExternalRelocations decodes the external relocation table pointed to by
// the LC_DYSYMTAB command (relocation_info: r_address int32; packed word of
// r_symbolnum:24, r_pcrel:1, r_length:2, r_extern:1, r_type:4).
func (f *File) ExternalRelocations() ([]Relocation, error) {
	if f.Dysymtab == nil || f.Dysymtab.Nextrel == 0 {
		return nil, nil
	}
	buf := make([]byte, f.Dysymtab.Nextrel*8)
	if _, err := f.sr.ReadAt(buf, int64(f.Dysymtab.Extreloff)); err != nil {
		return nil, fmt.Errorf("reading external relocation table: %w", err)
	}
	relocs := make([]Relocation, f.Dysymtab.Nextrel)
	for i := range relocs {
		b := buf[i*8 : i*8+8]
		addr := f.ByteOrder.Uint32(b[0:4])
		packed := f.ByteOrder.Uint32(b[4:8])
		relocs[i] = Relocation{
			Addr:      addr,
			SymbolNum: packed & 0xffffff,
			Pcrel:     (packed>>24)&0x1 != 0,
			Length:    uint8((packed >> 25) & 0x3),
			Extern:    (packed>>27)&0x1 != 0,
			Type:      uint8((packed >> 28) & 0xf),
		}
	}
	return relocs, nil
}

// ContentAt returns n bytes of content starting at file offset off, with
// any PatchAt overlays for offsets within [off, off+n) applied on top of
// the underlying file bytes.
func (f *File) ContentAt(off uint32, n int) ([]byte, error) {
	buf := make([]byte, n)
	nRead, err := f.sr.ReadAt(buf, int64(off))
	if err != nil && nRead != n {
		return nil, fmt.Errorf("reading %d bytes at offset 0x%x: %w", n, off, err)
	}
	for patchOff, word := range f.patches {
		if patchOff < off || patchOff+4 > off+uint32(n) {
			continue
		}
		copy(buf[patchOff-off:], word[:])
	}
	return buf, nil
}

// PatchAt overlays 4 bytes at (thin-slice-relative) file offset off with v,
// in memory only; the underlying file is never modified. Subsequent
// ContentAt reads that touch this offset observe the patched value. This
// mirrors the original reader's in-memory relocation patch: the synthetic
// typeinfo/vtable/pure-virtual tag values exist only for the duration of
// one reconstruction run.
func (f *File) PatchAt(off uint32, v uint32) error {
	if f.patches == nil {
		f.patches = make(map[uint32][4]byte)
	}
	var buf [4]byte
	f.ByteOrder.PutUint32(buf[:], v)
	f.patches[off] = buf
	return nil
}

// SectionForOffset returns the section containing the given file offset, if
// any.
func (f *File) SectionForOffset(off uint32) *Section {
	for _, s := range f.Sections {
		if off >= s.Offset && off < s.Offset+s.Size {
			return s
		}
	}
	return nil
}

// SectionForAddr returns the section containing the given virtual address,
// if any.
func (f *File) SectionForAddr(addr uint32) *Section {
	for _, s := range f.Sections {
		if addr >= s.Addr && addr < s.Addr+s.Size {
			return s
		}
	}
	return nil
}

func cstring(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i == -1 {
		return string(b)
	}
	return string(b[:i])
}

func cstringAt(b []byte, off uint32) string {
	if int(off) >= len(b) {
		return ""
	}
	end := bytes.IndexByte(b[off:], 0)
	if end == -1 {
		return string(b[off:])
	}
	return string(b[off : int(off)+end])
}
