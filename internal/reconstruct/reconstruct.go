// Package reconstruct rebuilds a cpptypes.Model from a 32-bit Mach-O binary:
// relocation patching, STABS walking, RTTI decoding, vtable decoding, class
// inference, and vtable override reasoning, run as one fixed pipeline over a
// machofacade.Binary.
//
// Grounded on original_source/src/MachOReader.cpp's Load/Parse/
// GenerateClassesFromFunctions/BuildBaseClassLinks/ProcessVtables sequence.
// Logging idiom (apex/log structured fields, fmt.Errorf %w wrapping) follows
// the teacher's own top-level orchestration style, since the file that
// showed it (internal/syms/syms.go) had no domain content worth keeping —
// see DESIGN.md.
package reconstruct

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/apex/log"

	"github.com/blacktop/machomodel/pkg/cpptypes"
	"github.com/blacktop/machomodel/pkg/macho"
	"github.com/blacktop/machomodel/pkg/machofacade"
)

// binaryReader is the subset of *machofacade.Binary every pass in this
// package reads through. Kept as an interface, rather than naming
// *machofacade.Binary directly, so the vtable- and RTTI-decoding passes can
// be exercised against an in-memory test double instead of a real Mach-O
// file.
type binaryReader interface {
	ByteOrder() binary.ByteOrder
	Symbols() []machofacade.Symbol
	ContentAt(vaddr uint64, n int) ([]byte, error)
	SectionAt(vaddr uint64) (*machofacade.Section, error)
	ExternalRelocations() ([]machofacade.Relocation, error)
	PatchAt(vaddr uint64, v uint32) error
	OffsetToVaddr(off uint64) (uint64, error)
}

// reconstructor is the shared mutable state every pass in this package
// operates on. It plays the role of the original MachOReader's private
// members, held as a plain struct instead of hidden behind reader methods.
type reconstructor struct {
	bin     binaryReader
	model   *cpptypes.Model
	symbols []machofacade.Symbol

	// STABS N_SO three-state machine: none seen -> directory component seen
	// -> filename component seen -> (empty name) back to none.
	soPhase    soPhase
	pendingDir string

	curSourceFile cpptypes.Index
	curHeaderFile cpptypes.Index

	openFunction cpptypes.Index
	openVariant  int

	// typeinfoNameByAddr resolves a __class_type_info-family struct's
	// address to the demangled type name of the __ZTI symbol that defines
	// it, so a __vmi_class_type_info's base_info array (which only holds
	// pointers to other typeinfo structs, not names) can name its bases
	// without re-reading and re-classifying the pointed-to struct.
	typeinfoNameByAddr map[uint64]string
}

type soPhase int

const (
	soPhaseNone soPhase = iota
	soPhaseDir
	soPhaseFile
)

// Reconstruct opens path, selects its 32-bit i386-or-ppc slice, and runs the
// full reconstruction pipeline over it.
func Reconstruct(path string) (*cpptypes.Model, error) {
	log.WithField("path", path).Debug("opening binary")
	bin, err := machofacade.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reconstruct %s: %w", path, err)
	}
	defer bin.Close()

	r := newReconstructor(bin)
	if err := r.run(); err != nil {
		return nil, fmt.Errorf("reconstruct %s: %w", path, err)
	}
	return r.model, nil
}

func newReconstructor(bin binaryReader) *reconstructor {
	return &reconstructor{
		bin:                bin,
		model:              cpptypes.NewModel(),
		symbols:            bin.Symbols(),
		curSourceFile:      cpptypes.InvalidIndex,
		curHeaderFile:      cpptypes.InvalidIndex,
		openFunction:       cpptypes.InvalidIndex,
		typeinfoNameByAddr: make(map[uint64]string),
	}
}

func (r *reconstructor) run() error {
	log.WithField("symbols", len(r.symbols)).Debug("patching synthetic RTTI relocations")
	if err := r.patchSyntheticRelocations(); err != nil {
		return err
	}

	log.Debug("first pass: STABS symbols")
	if err := r.parseFirstPass(); err != nil {
		return err
	}

	log.Debug("second pass: RTTI, vtable and thunk symbols")
	if err := r.parseSecondPass(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"functions": len(r.model.Functions),
		"classes":   len(r.model.Classes),
	}).Debug("inferring classes from functions")
	r.generateClassesFromFunctions()

	log.Debug("building base class links")
	r.buildBaseClassLinks()
	if err := r.verifyBaseClassLinks(); err != nil {
		log.WithError(err).Warn("base class link verification found inconsistencies")
	}

	log.WithField("classes", len(r.model.Classes)).Debug("processing vtables")
	r.processVtables()

	return nil
}

func (r *reconstructor) parseFirstPass() error {
	for _, sym := range r.symbols {
		if !macho.IsStab(sym.Type) {
			continue
		}
		var err error
		switch sym.Type {
		case macho.N_SO:
			r.parseSO(sym)
		case macho.N_SOL:
			r.parseSOL(sym)
		case macho.N_FUN:
			err = r.parseFUN(sym)
		case macho.N_GSYM:
			r.parseGSYM(sym)
		case macho.N_STSYM:
			r.parseSTSYM(sym)
		case macho.N_LCSYM:
			r.parseLCSYM(sym)
		default:
			// N_OPT, N_OSO, N_BNSYM/N_ENSYM, N_LBRAC/N_RBRAC, N_SLINE and
			// friends carry no information this model needs.
		}
		if err != nil {
			return fmt.Errorf("STABS symbol %q: %w", sym.Name, err)
		}
	}
	return nil
}

func (r *reconstructor) parseSecondPass() error {
	r.buildTypeinfoIndex()
	for _, sym := range r.symbols {
		if macho.IsStab(sym.Type) {
			continue
		}
		if sym.Type&macho.N_TYPE != uint8(macho.N_SECT) || sym.Type&macho.N_PEXT == 0 {
			continue
		}
		name := sym.Name
		switch {
		case strings.HasPrefix(name, "__ZTI"):
			if err := r.parseTypeinfo(sym); err != nil {
				log.WithError(err).WithField("symbol", name).Warn("skipping malformed typeinfo symbol")
			}
		case strings.HasPrefix(name, "__ZTV"):
			if err := r.parseVtable(sym); err != nil {
				log.WithError(err).WithField("symbol", name).Warn("skipping malformed vtable symbol")
			}
		case strings.HasPrefix(name, "__ZThn"), strings.HasPrefix(name, "__ZTh"):
			if err := r.parseThunk(sym); err != nil {
				log.WithError(err).WithField("symbol", name).Warn("skipping malformed thunk symbol")
			}
		}
	}
	return nil
}
