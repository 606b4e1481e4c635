package reconstruct

import (
	"github.com/blacktop/machomodel/pkg/cpptypes"
	"github.com/blacktop/machomodel/pkg/machofacade"
)

// parseSO handles an N_SO symbol. A translation unit's debug info opens
// with two consecutive N_SO entries — a directory path, then a bare
// filename — and closes with a third N_SO carrying an empty name, whose
// value is the end address of the unit's code. This mirrors GCC's classic
// STABS emission, not a single "begin" record with all the information at
// once.
func (r *reconstructor) parseSO(sym machofacade.Symbol) {
	if sym.Name == "" {
		if r.curSourceFile != cpptypes.InvalidIndex {
			r.model.SourceFiles[r.curSourceFile].AddressEnd = sym.Value
		}
		r.curSourceFile = cpptypes.InvalidIndex
		r.curHeaderFile = cpptypes.InvalidIndex
		r.soPhase = soPhaseNone
		return
	}

	switch r.soPhase {
	case soPhaseNone, soPhaseFile:
		r.pendingDir = sym.Name
		r.soPhase = soPhaseDir
	case soPhaseDir:
		full := r.pendingDir + sym.Name
		idx := r.findOrCreateSourceFileByName(full)
		r.model.SourceFiles[idx].AddressBegin = sym.Value
		r.curSourceFile = idx
		r.soPhase = soPhaseFile
	}
}

// parseSOL handles an N_SOL symbol: a #include boundary marking every
// subsequent instruction, until the next N_SOL or the enclosing function's
// end, as belonging to the named header instead of the current source
// file.
func (r *reconstructor) parseSOL(sym machofacade.Symbol) {
	r.curHeaderFile = r.findOrCreateHeaderFileByName(sym.Name)
	r.recordInstruction(sym.Value)
}

// recordInstruction attaches a FunctionInstruction to the currently open
// function variant, if any, attributing it to the current header/source
// file pair. Without N_SLINE tracking (out of scope for the class/vtable
// model this reconstructor builds) the address recorded is the header
// switch point itself, or the variant's start address when addr is zero.
func (r *reconstructor) recordInstruction(addr uint64) {
	if r.openFunction == cpptypes.InvalidIndex {
		return
	}
	fn := &r.model.Functions[r.openFunction]
	if r.openVariant >= len(fn.Variants) {
		return
	}
	variant := &fn.Variants[r.openVariant]
	if addr == 0 {
		addr = variant.Address
	}
	variant.Instructions = append(variant.Instructions, cpptypes.FunctionInstruction{
		Address:         addr,
		HeaderFileIndex: r.curHeaderFile,
		SourceFileIndex: r.curSourceFile,
	})
}
