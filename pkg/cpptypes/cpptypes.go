// Package cpptypes is the reconstructed C++ program model: namespaces,
// classes, functions, variables, enums and their vtables, held as flat
// slices addressed by Index rather than as a pointer graph.
//
// Grounded field-for-field on original_source/src/CppTypes.h.
package cpptypes

// Index addresses an entity within its owning slice (Namespaces, Classes,
// Functions, ...). InvalidIndex marks "no parent"/"no match".
type Index uint32

// InvalidIndex is the zero-value sentinel for "not present", mirroring the
// original's index_t(~0).
const InvalidIndex Index = 0xFFFFFFFF

// Namespace is a C++ namespace. The Model holds these in the flat
// Namespaces slice; every cross-reference here is an Index into some slice
// on the owning Model.
type Namespace struct {
	Name                 string // Fully qualified: a::b::c.
	NamespaceName        string // Last component only: a::b::c becomes c.
	ParentNamespaceIndex Index  // Namespace is contained in another namespace.
	ChildNamespaceIndices []Index
	ClassIndices         []Index // Direct classes in this namespace.
	FunctionIndices      []Index // Direct functions in this namespace.
	VariableIndices      []Index // Direct variables in this namespace.
	EnumIndices          []Index // Direct enums in this namespace.
}

// Enum is a recorded enum declaration. Values are not tracked yet.
type Enum struct {
	Name                 string
	ParentNamespaceIndex Index // Enum is contained in namespace.
	ParentClassIndex     Index // Enum is contained in class.
	ParentFunctionIndex  Index // Enum is contained in function.
}

// VariableKind distinguishes the STABS symbol a Variable was recorded from.
type VariableKind uint8

const (
	VariableGlobal VariableKind = iota // N_GSYM
	VariableStatic                     // N_STSYM
	VariableLocal                      // N_LCSYM
)

func (k VariableKind) String() string {
	switch k {
	case VariableGlobal:
		return "global"
	case VariableStatic:
		return "static"
	case VariableLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Variable is a static or global data variable recorded from N_GSYM,
// N_STSYM or N_LCSYM.
type Variable struct {
	Name        string
	Address     uint64
	Description uint16
	Section     uint8
	Kind        VariableKind

	ParentNamespaceIndex Index // Variable is contained in namespace.
	ParentClassIndex     Index // Variable is contained in class.
	ParentFunctionIndex  Index // Variable is contained in function.
}

// BaseClassVisibility records what an __base_class_type_info's offset_flags
// bitfield could determine about a base class's access specifier. A single
// base class (__si_class_type_info) carries no visibility information at
// all, hence Unknown.
type BaseClassVisibility uint8

const (
	VisibilityUnknown BaseClassVisibility = iota
	VisibilityPrivateOrProtected
	VisibilityPublic
)

// VTableEntry is one virtual function slot in a VTable.
type VTableEntry struct {
	Name           string
	FunctionIndex  Index // Index into Model.Functions.
	ThunkIndex     Index // Index into Model.Thunks.
	AllBaseClassIndex Index // Most bottom base class this entry overrides; index into Class.AllBaseClasses.

	IsDtor        bool // Virtual function is a destructor.
	IsPureVirtual bool // Virtual function is pure (= 0).
	IsOverride    bool // Overrides a virtual function of a base class.
	IsImplicit    bool // Implicitly inherits a virtual function of a base class.
}

// IsFirstDeclaration reports whether this entry is the first declaration of
// its virtual function slot, i.e. neither an override nor an implicit
// inheritance of a base class's slot.
func (e VTableEntry) IsFirstDeclaration() bool {
	return !e.IsOverride && !e.IsImplicit
}

// VTable is one vtable (primary or secondary) belonging to a Class.
type VTable struct {
	Entries []VTableEntry
	Offset  uint16 // Offset in bytes, corresponding to BaseClass.BaseOffset.
}

// Size returns the number of decoded entries in the vtable.
func (v VTable) Size() uint16 {
	return uint16(len(v.Entries))
}

// BaseClass is one entry in a Class's direct or flattened base-class list.
type BaseClass struct {
	ClassIndex Index
	BaseOffset uint16 // Base offset in bytes.
	Visibility BaseClassVisibility
	IsVirtual  bool // Virtual inheritance.
}

// Class is a C++ class or struct.
type Class struct {
	Name      string // Fully qualified: a::b::c.
	ClassName string // Last component only: a::b::c becomes c.
	Size      uint16

	// Primary vtable at index 0; secondary vtables (with thunks to base
	// classes) at indices >= 1.
	VTables []VTable

	ParentNamespaceIndex Index // Class is contained in namespace.
	ParentClassIndex     Index // Class is contained in another class.

	DirectBaseClasses []BaseClass // Direct base classes, first to last.
	// AllBaseClasses holds every base class in the hierarchy, ordered from
	// leaves to roots, with adjusted offsets.
	AllBaseClasses []BaseClass

	ChildClassIndices []Index // Classes nested inside this class.
	FunctionIndices   []Index // Functions declared in this class.
	VariableIndices   []Index // Variables (statics) declared in this class.
	EnumIndices       []Index // Enums declared in this class.
}

// GetBaseClass returns a pointer to the AllBaseClasses entry at baseOffset,
// scanning back-to-front so that, for classes with a repeated non-virtual
// base at the same offset across two separate hierarchy branches, the most
// recently flattened (and hence most-derived-relative) entry wins. Returns
// nil if no entry has that offset.
func (c *Class) GetBaseClass(baseOffset uint16) *BaseClass {
	for i := len(c.AllBaseClasses) - 1; i >= 0; i-- {
		if c.AllBaseClasses[i].BaseOffset == baseOffset {
			return &c.AllBaseClasses[i]
		}
	}
	return nil
}

// NonVirtualThunk is a `__ZThn<offset>_<mangled>` symbol: a thunk that
// adjusts `this` by a fixed offset before tail-calling the real override.
type NonVirtualThunk struct {
	Name    string
	Address uint64
	IsDtor  bool
}

// FunctionInstruction records that some instruction of a FunctionVariant was
// attributed to a particular header/source file by the enclosing N_SOL.
type FunctionInstruction struct {
	Address        uint64
	HeaderFileIndex Index
	SourceFileIndex Index
}

// FunctionVariant is one compiled instantiation of a Function: within one
// translation unit the same declaration can be emitted more than once (e.g.
// destructor aliases) and each occurrence becomes a variant. The same
// declaration emitted by another translation unit gets its own Function.
type FunctionVariant struct {
	MangledName string
	Address     uint64
	Size        uint32
	SourceLine  uint16
	Section     uint8

	Instructions []FunctionInstruction
}

// Function is a C++ function or member function, coalesced across all of
// its FunctionVariants.
type Function struct {
	Name string

	FunctionBaseName       string // Base name, no trailing template arguments.
	FunctionDeclContextName string // "a::b::c" becomes "a::b".
	FunctionName           string // The entire name.
	FunctionParameters     string
	FunctionReturnType     string
	FunctionParameterTypes []string

	IsCtorOrDtor    bool
	IsLocalFunction bool // :f suffix — local non-global function, static in its TU.
	IsConst         bool

	HeaderFileIndex      Index
	SourceFileIndex      Index
	ParentNamespaceIndex Index // Function is contained in namespace.
	ParentClassIndex     Index // Function is contained in class.

	ClassIndices    []Index // Classes declared inside this function body. Usually empty.
	VariableIndices []Index // Variables declared inside this function.
	EnumIndices     []Index // Enums declared inside this function. Usually empty.

	Variants []FunctionVariant
}

// GetMangledName returns the mangled name of the variant at variantIndex.
func (f *Function) GetMangledName(variantIndex int) string {
	return f.Variants[variantIndex].MangledName
}

// GetVirtualAddressBegin returns the start address of the variant at
// variantIndex.
func (f *Function) GetVirtualAddressBegin(variantIndex int) uint64 {
	return f.Variants[variantIndex].Address
}

// GetVirtualAddressEnd returns the end address (start + size) of the
// variant at variantIndex.
func (f *Function) GetVirtualAddressEnd(variantIndex int) uint64 {
	v := f.Variants[variantIndex]
	return v.Address + uint64(v.Size)
}

// GetSourceLine returns the source line of the variant at variantIndex.
func (f *Function) GetSourceLine(variantIndex int) uint16 {
	return f.Variants[variantIndex].SourceLine
}

// IsClassMemberFunction reports whether this function belongs to a class.
func (f *Function) IsClassMemberFunction() bool {
	return f.ParentClassIndex != InvalidIndex
}

// HeaderFile is a .h file referenced by one or more FunctionInstructions.
type HeaderFile struct {
	Name string
}

// SourceFile is a .cpp translation unit, spanning the address range
// contributed by its N_SO begin/end pair.
type SourceFile struct {
	Name          string
	AddressBegin  uint64
	AddressEnd    uint64
	HeaderFileIndices []Index
	FunctionIndices   []Index
	VariableIndices   []Index
	EnumIndices       []Index
}
