package reconstruct

import (
	"fmt"
	"strings"

	"github.com/apex/log"

	"github.com/blacktop/machomodel/internal/itanium"
	"github.com/blacktop/machomodel/internal/utils"
	"github.com/blacktop/machomodel/pkg/cpptypes"
	"github.com/blacktop/machomodel/pkg/machofacade"
	"github.com/blacktop/machomodel/pkg/modelerr"
)

// Itanium ABI __base_class_type_info bitfield layout, from
// original_source/src/rtti.h: bit 0 marks virtual inheritance, bit 1 marks
// public access, and the offset itself occupies the remaining bits shifted
// left by 8.
const (
	baseVirtualMask = 0x1
	basePublicMask  = 0x2
	baseOffsetShift = 8
)

// buildTypeinfoIndex maps every __ZTI symbol's address to its demangled
// type name, so decoding a __vmi_class_type_info's base_info array can name
// a base class from the pointer alone, without re-reading and
// re-classifying the struct it points to.
func (r *reconstructor) buildTypeinfoIndex() {
	for _, sym := range r.symbols {
		if !strings.HasPrefix(sym.Name, "__ZTI") {
			continue
		}
		mangled := strings.TrimPrefix(sym.Name, "_")
		name, err := itanium.DemangleTypeinfoName(mangled)
		if err != nil || !utils.IsASCII(name) {
			continue
		}
		r.typeinfoNameByAddr[sym.Value] = name
	}
}

// parseTypeinfo decodes a __ZTI symbol: __class_type_info (no bases),
// __si_class_type_info (exactly one, offset-0, non-virtual, public base) or
// __vmi_class_type_info (a base_info[] array of arbitrary base classes),
// distinguished by the synthetic tag patchSyntheticRelocations wrote over
// the struct's vtable-pointer word.
//
// Grounded on MachOReader.cpp's Parse_PEXT_typeinfo and
// original_source/src/rtti.h's struct layouts.
func (r *reconstructor) parseTypeinfo(sym machofacade.Symbol) error {
	mangled := strings.TrimPrefix(sym.Name, "_")
	className, err := itanium.DemangleTypeinfoName(mangled)
	if err != nil {
		return fmt.Errorf("demangle typeinfo name: %w", err)
	}

	head, err := r.bin.ContentAt(sym.Value, 4)
	if err != nil {
		return fmt.Errorf("read typeinfo vtable word: %w", err)
	}
	bo := r.bin.ByteOrder()
	vtableWord := syntheticTag(bo.Uint32(head))

	switch vtableWord {
	case tagEnumTypeInfo:
		r.findOrCreateEnumByName(className)
		return nil

	case tagClassTypeInfo:
		r.recordClassTypeInfo(className, nil)
		return nil

	case tagSIClassTypeInfo:
		basePtr, err := r.readUint32(sym.Value + 8)
		if err != nil {
			return fmt.Errorf("read si_class_type_info base pointer: %w", err)
		}
		baseName, ok := r.typeinfoNameByAddr[uint64(basePtr)]
		if !ok {
			return fmt.Errorf("unresolved base typeinfo at 0x%x", basePtr)
		}
		r.recordClassTypeInfo(className, []cpptypes.BaseClass{{
			ClassIndex: r.findOrCreateClassByName(baseName),
			BaseOffset: 0,
			Visibility: cpptypes.VisibilityUnknown,
		}})
		return nil

	case tagVMIClassTypeInfo:
		return r.parseVMIClassTypeInfo(sym.Value, className)

	default:
		log.WithField("symbol", sym.Name).Debug("typeinfo vtable word did not match a patched RTTI tag; skipping")
		return nil
	}
}

func (r *reconstructor) parseVMIClassTypeInfo(addr uint64, className string) error {
	bo := r.bin.ByteOrder()
	flags, err := r.readUint32(addr + 8)
	if err != nil {
		return fmt.Errorf("read vmi_class_type_info flags: %w", err)
	}
	if flags != 0 {
		return modelerr.NewUnsupportedBinary(fmt.Sprintf("vmi_class_type_info %q has non-zero flags 0x%x (diamond/non-diamond-repeat inheritance)", className, flags))
	}

	baseCount, err := r.readUint32(addr + 12)
	if err != nil {
		return fmt.Errorf("read vmi_class_type_info base count: %w", err)
	}
	if baseCount > 4096 {
		return fmt.Errorf("implausible vmi_class_type_info base count %d", baseCount)
	}

	bases := make([]cpptypes.BaseClass, 0, baseCount)
	for i := uint32(0); i < baseCount; i++ {
		entry, err := r.bin.ContentAt(addr+16+uint64(i)*8, 8)
		if err != nil {
			return fmt.Errorf("read base_info[%d]: %w", i, err)
		}
		basePtr := bo.Uint32(entry[0:4])
		offsetFlags := bo.Uint32(entry[4:8])

		baseName, ok := r.typeinfoNameByAddr[uint64(basePtr)]
		if !ok {
			log.WithFields(log.Fields{"class": className, "base_index": i}).
				Warn("unresolved base typeinfo pointer; skipping base")
			continue
		}

		visibility := cpptypes.VisibilityPrivateOrProtected
		if offsetFlags&basePublicMask != 0 {
			visibility = cpptypes.VisibilityPublic
		}
		bases = append(bases, cpptypes.BaseClass{
			ClassIndex: r.findOrCreateClassByName(baseName),
			BaseOffset: uint16(int32(offsetFlags) >> baseOffsetShift),
			Visibility: visibility,
			IsVirtual:  offsetFlags&baseVirtualMask != 0,
		})
	}
	// A base spans up to the next base's offset. The first size recorded
	// for a class is kept; a later, different one is logged.
	for i := 0; i+1 < len(bases); i++ {
		if bases[i+1].BaseOffset <= bases[i].BaseOffset {
			continue
		}
		size := bases[i+1].BaseOffset - bases[i].BaseOffset
		if base := &r.model.Classes[bases[i].ClassIndex]; base.Size == 0 {
			base.Size = size
		} else if base.Size != size {
			log.WithError(modelerr.NewInconsistentModel(className, fmt.Sprintf("base %s size %d, recorded %d", base.Name, size, base.Size))).
				Warn("keeping first recorded base class size")
		}
	}
	r.recordClassTypeInfo(className, bases)
	return nil
}

func (r *reconstructor) recordClassTypeInfo(className string, bases []cpptypes.BaseClass) {
	idx := r.findOrCreateClassByName(className)
	if len(bases) > 0 {
		r.model.Classes[idx].DirectBaseClasses = bases
	}
}

func (r *reconstructor) readUint32(addr uint64) (uint32, error) {
	data, err := r.bin.ContentAt(addr, 4)
	if err != nil {
		return 0, err
	}
	return r.bin.ByteOrder().Uint32(data), nil
}
