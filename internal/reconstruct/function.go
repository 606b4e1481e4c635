package reconstruct

import (
	"strings"

	"github.com/blacktop/machomodel/internal/itanium"
	"github.com/blacktop/machomodel/pkg/cpptypes"
	"github.com/blacktop/machomodel/pkg/machofacade"
)

// parseFUN handles an N_FUN symbol. GCC emits a function's begin record as
// "<mangled-name>:F" (external linkage) or "<mangled-name>:f" (internal,
// static-to-its-TU) with value set to the start address, and closes it with
// a bare empty-name N_FUN whose value is the function's size.
//
// Grounded on MachOReader.cpp's Parse_FUN.
func (r *reconstructor) parseFUN(sym machofacade.Symbol) error {
	if sym.Name == "" {
		r.closeOpenFunction(sym.Value)
		return nil
	}

	isLocal := strings.HasSuffix(sym.Name, ":f")
	isGlobal := strings.HasSuffix(sym.Name, ":F")
	if !isLocal && !isGlobal {
		return nil
	}
	mangled := strings.TrimSuffix(strings.TrimSuffix(sym.Name, ":f"), ":F")
	if strings.HasPrefix(mangled, "_GLOBAL__") {
		// A static-initializer thunk, not a source-level function.
		return nil
	}

	baseName := mangled
	declContext := ""
	qualifiedName := mangled
	params := ""
	retType := ""
	isCtorDtor := false

	if itanium.LooksMangled(mangled) {
		pd, err := itanium.NewPartialDemangler(mangled)
		if err == nil {
			baseName = pd.FunctionBaseName()
			declContext = pd.FunctionDeclContextName()
			qualifiedName = pd.FunctionName()
			params = pd.FunctionParameters()
			retType = pd.FunctionReturnType()
			isCtorDtor = pd.IsCtorOrDtor()
		}
	}

	funcIdx := r.findOrCreateFunction(qualifiedName, baseName, declContext, params, retType, isCtorDtor)
	fn := &r.model.Functions[funcIdx]
	fn.IsLocalFunction = fn.IsLocalFunction || isLocal

	fn.Variants = append(fn.Variants, cpptypes.FunctionVariant{
		MangledName: mangled,
		Address:     sym.Value,
		Section:     sym.Sect,
	})
	variantIdx := len(fn.Variants) - 1

	r.model.AddressToFunctionIndex[sym.Value] = funcIdx
	r.model.MangledToFunctionIndex[mangled] = append(r.model.MangledToFunctionIndex[mangled], funcIdx)

	r.openFunction = funcIdx
	r.openVariant = variantIdx
	return nil
}

func (r *reconstructor) closeOpenFunction(size uint64) {
	if r.openFunction == cpptypes.InvalidIndex {
		return
	}
	fn := &r.model.Functions[r.openFunction]
	if r.openVariant < len(fn.Variants) {
		fn.Variants[r.openVariant].Size = uint32(size)
	}
	r.openFunction = cpptypes.InvalidIndex
	r.openVariant = 0
}

// findOrCreateFunction resolves the function record with the same qualified
// name and parameter list in the current source file, creating one if this
// is the first STABS record for it there. Overloads (same name, different
// parameters) become distinct Function records; repeated emission of the
// same declaration within one translation unit becomes repeated Variants on
// the one record, while the same declaration emitted by another translation
// unit (e.g. an inline member function) gets a Function record of its own.
//
// Grounded on MachOReader.cpp's function-record lookup against
// m_nameToFunctionIndex, a multimap keyed by qualified name.
func (r *reconstructor) findOrCreateFunction(qualifiedName, baseName, declContext, params, retType string, isCtorDtor bool) cpptypes.Index {
	for _, idx := range r.model.NameToFunctionIndex[qualifiedName] {
		if r.model.Functions[idx].FunctionParameters == params && r.model.Functions[idx].SourceFileIndex == r.curSourceFile {
			return idx
		}
	}

	fn := cpptypes.Function{
		Name:                    qualifiedName,
		FunctionBaseName:        baseName,
		FunctionDeclContextName: declContext,
		FunctionName:            qualifiedName,
		FunctionParameters:      params,
		FunctionReturnType:      retType,
		FunctionParameterTypes:  cpptypes.GetParameterTypes(params),
		IsCtorOrDtor:            isCtorDtor,
		HeaderFileIndex:         cpptypes.InvalidIndex,
		SourceFileIndex:         r.curSourceFile,
		ParentNamespaceIndex:    cpptypes.InvalidIndex,
		ParentClassIndex:        cpptypes.InvalidIndex,
	}
	r.model.Functions = append(r.model.Functions, fn)
	idx := cpptypes.Index(len(r.model.Functions) - 1)
	r.model.NameToFunctionIndex[qualifiedName] = append(r.model.NameToFunctionIndex[qualifiedName], idx)

	if r.curSourceFile != cpptypes.InvalidIndex {
		sf := &r.model.SourceFiles[r.curSourceFile]
		sf.FunctionIndices = append(sf.FunctionIndices, idx)
	}
	return idx
}

// parseGSYM, parseSTSYM and parseLCSYM record N_GSYM/N_STSYM/N_LCSYM
// variables. The original reader left these as unpopulated stubs;
// SPEC_FULL.md's variable-recording feature fills them in.
func (r *reconstructor) parseGSYM(sym machofacade.Symbol) {
	r.recordVariable(sym, cpptypes.VariableGlobal)
}

func (r *reconstructor) parseSTSYM(sym machofacade.Symbol) {
	r.recordVariable(sym, cpptypes.VariableStatic)
}

func (r *reconstructor) parseLCSYM(sym machofacade.Symbol) {
	r.recordVariable(sym, cpptypes.VariableLocal)
}

func (r *reconstructor) recordVariable(sym machofacade.Symbol, kind cpptypes.VariableKind) {
	if _, ok := r.model.AddressToVariableIndex[sym.Value]; ok {
		return
	}
	name := sym.Name
	if idx := strings.IndexByte(name, ':'); idx >= 0 {
		name = name[:idx]
	}

	v := cpptypes.Variable{
		Name:                 name,
		Address:              sym.Value,
		Description:          sym.Desc,
		Section:              sym.Sect,
		Kind:                 kind,
		ParentNamespaceIndex: cpptypes.InvalidIndex,
		ParentClassIndex:     cpptypes.InvalidIndex,
		ParentFunctionIndex:  r.openFunction,
	}

	if context, leaf := splitLastTopLevelScope(name); context != "" {
		v.Name = leaf
		if classIdx, ok := r.model.NameToClassIndex[context]; ok {
			v.ParentClassIndex = classIdx
			r.model.Classes[classIdx].VariableIndices = append(r.model.Classes[classIdx].VariableIndices, cpptypes.Index(len(r.model.Variables)))
		} else {
			nsIdx := r.findOrCreateNamespaceByName(context)
			v.ParentNamespaceIndex = nsIdx
			r.model.Namespaces[nsIdx].VariableIndices = append(r.model.Namespaces[nsIdx].VariableIndices, cpptypes.Index(len(r.model.Variables)))
		}
	}

	r.model.Variables = append(r.model.Variables, v)
	vi := cpptypes.Index(len(r.model.Variables) - 1)
	r.model.AddressToVariableIndex[sym.Value] = vi

	if r.curSourceFile != cpptypes.InvalidIndex {
		sf := &r.model.SourceFiles[r.curSourceFile]
		sf.VariableIndices = append(sf.VariableIndices, vi)
	}
}
