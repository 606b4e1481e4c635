package reconstruct

import (
	"fmt"

	"github.com/apex/log"
)

// syntheticTag is a fabricated pointer value patched over an external
// relocation's target, standing in for the address of a libstdc++ symbol
// this reconstructor never loads. Later passes (rtti.go, vtable.go)
// recognize a vtable-pointer or typeinfo-pointer slot's role by comparing
// its patched value against these tags, mirroring the original reader's
// LIEF::MachO::Binary::patch_address calls.
type syntheticTag uint32

const (
	tagEnumTypeInfo     syntheticTag = 0x3fff0000
	tagClassTypeInfo    syntheticTag = 0x3fff0001
	tagSIClassTypeInfo  syntheticTag = 0x3fff0002
	tagVMIClassTypeInfo syntheticTag = 0x3fff0003
	tagCxaPureVirtual   syntheticTag = 0x3fff0004
)

// syntheticSymbolTags maps the five well-known ABI/RTTI symbol names the
// relocation patcher looks for to the tag value patched over their target.
var syntheticSymbolTags = map[string]syntheticTag{
	"__ZTVN10__cxxabiv116__enum_type_infoE":      tagEnumTypeInfo,
	"__ZTVN10__cxxabiv117__class_type_infoE":     tagClassTypeInfo,
	"__ZTVN10__cxxabiv120__si_class_type_infoE":  tagSIClassTypeInfo,
	"__ZTVN10__cxxabiv121__vmi_class_type_infoE": tagVMIClassTypeInfo,
	"___cxa_pure_virtual":                        tagCxaPureVirtual,
}

// patchSyntheticRelocations walks the external relocation table and, for
// every relocation referring to one of the five symbols above, overlays the
// relocation's target address with that symbol's synthetic tag. The RTTI
// and vtable decoders never resolve these relocations to a real address
// (the referenced symbols live in libstdc++, not in the binary being
// reconstructed) — they only need to tell which of the five roles a given
// vtable-pointer or typeinfo-pointer slot plays.
func (r *reconstructor) patchSyntheticRelocations() error {
	relocs, err := r.bin.ExternalRelocations()
	if err != nil {
		return fmt.Errorf("read external relocations: %w", err)
	}
	patched := 0
	for _, rel := range relocs {
		if int(rel.SymbolNum) >= len(r.symbols) {
			continue
		}
		sym := r.symbols[rel.SymbolNum]
		tag, ok := syntheticSymbolTags[sym.Name]
		if !ok {
			continue
		}
		vaddr, err := r.bin.OffsetToVaddr(rel.Address)
		if err != nil {
			continue
		}
		if err := r.bin.PatchAt(vaddr, uint32(tag)); err != nil {
			return fmt.Errorf("patch relocation for %s at 0x%x: %w", sym.Name, vaddr, err)
		}
		patched++
	}
	log.WithField("patched", patched).Debug("patched synthetic RTTI relocations")
	return nil
}
