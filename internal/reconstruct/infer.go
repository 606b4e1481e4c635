package reconstruct

import (
	"fmt"
	"strings"

	"github.com/blacktop/machomodel/pkg/cpptypes"
	"github.com/blacktop/machomodel/pkg/modelerr"
)

// generateClassesFromFunctions attaches every recorded function to its
// enclosing class or namespace. RTTI only tells us about classes that
// appear in a typeinfo/vtable symbol; a class with no virtual functions and
// no RTTI (or a plain C-style struct) is only visible through the
// FunctionDeclContextName of its member functions, so this pass has to
// decide, per unrecognized decl-context name, whether it names a class or a
// namespace.
//
// Grounded on MachOReader.cpp's GenerateClassesFromFunctions.
func (r *reconstructor) generateClassesFromFunctions() {
	for i := 0; i < len(r.model.Functions); i++ {
		ctx := r.model.Functions[i].FunctionDeclContextName
		fnIdx := cpptypes.Index(i)
		if ctx == "" {
			continue
		}
		if r.isKnownClass(ctx) {
			r.attachFunctionToClass(fnIdx, r.model.NameToClassIndex[ctx])
			continue
		}
		if r.isKnownNamespace(ctx) {
			r.attachFunctionToNamespace(fnIdx, r.model.NameToNamespaceIndex[ctx])
			continue
		}
		if r.isExpectedClass(ctx) {
			r.attachFunctionToClass(fnIdx, r.findOrCreateClassByName(ctx))
		} else {
			r.attachFunctionToNamespace(fnIdx, r.findOrCreateNamespaceByName(ctx))
		}
	}
}

func (r *reconstructor) attachFunctionToClass(fnIdx, classIdx cpptypes.Index) {
	r.model.Functions[fnIdx].ParentClassIndex = classIdx
	r.model.Classes[classIdx].FunctionIndices = append(r.model.Classes[classIdx].FunctionIndices, fnIdx)
}

func (r *reconstructor) attachFunctionToNamespace(fnIdx, nsIdx cpptypes.Index) {
	r.model.Functions[fnIdx].ParentNamespaceIndex = nsIdx
	r.model.Namespaces[nsIdx].FunctionIndices = append(r.model.Namespaces[nsIdx].FunctionIndices, fnIdx)
}

// isExpectedClass decides whether an unrecognized decl-context name is
// plausibly a class rather than a namespace: template instantiations
// always are, as is any name that owns a constructor/destructor, is ever
// used as a function parameter type, or simply follows the "FooClass" /
// "FooStruct" naming convention.
//
// Grounded on MachOReader.cpp's IsExpectedClass.
func (r *reconstructor) isExpectedClass(name string) bool {
	if strings.Contains(name, "<") {
		return true
	}
	if r.hasCtorOrDtor(name) {
		return true
	}
	if r.isFunctionArgument(name) {
		return true
	}
	return strings.HasSuffix(name, "Class") || strings.HasSuffix(name, "Struct")
}

// hasCtorOrDtor reports whether any recorded function is a constructor or
// destructor declared in name's scope.
func (r *reconstructor) hasCtorOrDtor(name string) bool {
	for i := range r.model.Functions {
		f := &r.model.Functions[i]
		if f.IsCtorOrDtor && f.FunctionDeclContextName == name {
			return true
		}
	}
	return false
}

// isFunctionArgument reports whether name (once stripped of pointer,
// reference and cv qualifiers) is ever used as a parameter type by any
// recorded function — a plain struct passed by value or by pointer never
// shows up in RTTI but is a class all the same.
func (r *reconstructor) isFunctionArgument(name string) bool {
	for i := range r.model.Functions {
		for _, t := range r.model.Functions[i].FunctionParameterTypes {
			if stripTypeDecorations(t) == name {
				return true
			}
		}
	}
	return false
}

func stripTypeDecorations(t string) string {
	t = strings.TrimSpace(t)
	for {
		switch {
		case strings.HasSuffix(t, "*"), strings.HasSuffix(t, "&"):
			t = strings.TrimSpace(t[:len(t)-1])
		case strings.HasSuffix(t, " const"):
			t = strings.TrimSpace(strings.TrimSuffix(t, " const"))
		case strings.HasSuffix(t, " volatile"):
			t = strings.TrimSpace(strings.TrimSuffix(t, " volatile"))
		default:
			return t
		}
	}
}

// maxBaseClassRecursionDepth guards buildBaseClassLinksRecursive against a
// cyclic base-class graph, which a well-formed binary never produces but a
// truncated or corrupted one might.
const maxBaseClassRecursionDepth = 64

// buildBaseClassLinks flattens every class's DirectBaseClasses into
// AllBaseClasses, recursing depth-first and adjusting offsets as it goes.
//
// Grounded on MachOReader.cpp's BuildBaseClassLinks/BuildBaseClassLinksRecursive.
func (r *reconstructor) buildBaseClassLinks() {
	for i := range r.model.Classes {
		r.model.Classes[i].AllBaseClasses = nil
	}
	for i := range r.model.Classes {
		r.buildBaseClassLinksRecursive(cpptypes.Index(i), cpptypes.Index(i), 0, 0)
	}
}

// buildBaseClassLinksRecursive walks classIdx's DirectBaseClasses,
// recursing into each base's own bases before appending the base itself —
// a post-order traversal, so every base lands in targetIdx's AllBaseClasses
// after all of its own ancestors and a direct base comes after everything it
// inherits from; cpptypes.Class.GetBaseClass's back-to-front scan therefore
// meets the nearest base at a given offset first.
func (r *reconstructor) buildBaseClassLinksRecursive(classIdx, targetIdx cpptypes.Index, baseOffset uint16, depth int) {
	if depth > maxBaseClassRecursionDepth {
		return
	}
	for _, dbc := range r.model.Classes[classIdx].DirectBaseClasses {
		adjusted := baseOffset + dbc.BaseOffset
		r.buildBaseClassLinksRecursive(dbc.ClassIndex, targetIdx, adjusted, depth+1)
		r.model.Classes[targetIdx].AllBaseClasses = append(r.model.Classes[targetIdx].AllBaseClasses, cpptypes.BaseClass{
			ClassIndex: dbc.ClassIndex,
			BaseOffset: adjusted,
			Visibility: dbc.Visibility,
			IsVirtual:  dbc.IsVirtual,
		})
	}
}

// verifyBaseClassLinks checks that every secondary vtable's offset matches
// a flattened base class, reporting (but not failing on) any that don't —
// a mismatch means either a malformed binary or a gap in this
// reconstructor's own base-class flattening, and either way the caller
// keeps the rest of the model.
//
// Grounded on MachOReader.cpp's VerifyBaseClassLinks.
func (r *reconstructor) verifyBaseClassLinks() error {
	var mismatches []string
	for i := range r.model.Classes {
		c := &r.model.Classes[i]
		for vi := 1; vi < len(c.VTables); vi++ {
			if c.GetBaseClass(c.VTables[vi].Offset) == nil {
				mismatches = append(mismatches, fmt.Sprintf("%s: secondary vtable at offset %d has no matching base class", c.Name, c.VTables[vi].Offset))
			}
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return modelerr.NewInconsistentModel("base class links", strings.Join(mismatches, "; "))
}
