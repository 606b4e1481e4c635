package macho

// STABS symbol-type constants (mach-o/stab.h), used by the STABS walker to
// classify each Nlist32.Type byte. N_STAB is a mask: any entry with a bit
// set there is a debug symbol rather than an ordinary N_TYPE/N_EXT/N_PEXT
// symbol table entry.
const (
	N_STAB uint8 = 0xe0

	N_GSYM  uint8 = 0x20 // global variable
	N_FNAME uint8 = 0x22 // function name (for BSD Fortran)
	N_FUN   uint8 = 0x24 // function name or text segment variable
	N_STSYM uint8 = 0x26 // static variable, data segment
	N_LCSYM uint8 = 0x28 // static variable, bss segment
	N_BNSYM uint8 = 0x2e // begin nested symbol
	N_OPT   uint8 = 0x3c // emitted with gcc2_compiled and in gcc source
	N_RSYM  uint8 = 0x40 // register variable
	N_SLINE uint8 = 0x44 // source line
	N_ENSYM uint8 = 0x4e // end nested symbol
	N_SSYM  uint8 = 0x60 // structure/union element
	N_SO    uint8 = 0x64 // source file name
	N_OSO   uint8 = 0x66 // object file name
	N_LSYM  uint8 = 0x80 // local symbol
	N_BINCL uint8 = 0x82 // include file beginning
	N_SOL   uint8 = 0x84 // #included file name
	N_LBRAC uint8 = 0xc0 // left bracket, begin lexical block
	N_EXCL  uint8 = 0xc2 // deleted include file
	N_RBRAC uint8 = 0xe0 // right bracket, end lexical block
)

// N_TYPE, N_EXT and N_PEXT apply to ordinary (non-STAB) symbol table
// entries: N_TYPE masks out the type bits, N_EXT marks external linkage,
// N_PEXT marks a private-external ("hidden") symbol.
const (
	N_TYPE uint8 = 0x1e
	N_EXT  uint8 = 0x01
	N_PEXT uint8 = 0x10
)

// IsStab reports whether typ is a STABS debug symbol type.
func IsStab(typ uint8) bool { return typ&N_STAB != 0 }
