package cpptypes

import "strings"

// Model is the full reconstructed program: the flat entity slices plus the
// lookup maps used while building them. It plays the role the original
// MachOReader's private members play, but as a plain value the reconstruct
// package can build up field by field instead of hiding behind methods on a
// single monolithic reader type.
type Model struct {
	Namespaces      []Namespace
	Enums           []Enum
	Variables       []Variable
	Classes         []Class
	Thunks          []NonVirtualThunk
	Functions       []Function
	HeaderFiles     []HeaderFile
	SourceFiles     []SourceFile

	NameToNamespaceIndex map[string]Index
	NameToEnumIndex      map[string]Index
	AddressToVariableIndex map[uint64]Index
	NameToClassIndex     map[string]Index
	AddressToThunkIndex  map[uint64]Index
	NameToFunctionIndex  map[string][]Index // multimap: one name may resolve to several overloads/variants.
	MangledToFunctionIndex map[string][]Index
	AddressToFunctionIndex map[uint64]Index
	NameToHeaderFileIndex  map[string]Index
	NameToSourceFileIndex  map[string]Index
}

// NewModel returns an empty Model with every lookup map initialized.
func NewModel() *Model {
	return &Model{
		NameToNamespaceIndex:   make(map[string]Index),
		NameToEnumIndex:        make(map[string]Index),
		AddressToVariableIndex: make(map[uint64]Index),
		NameToClassIndex:       make(map[string]Index),
		AddressToThunkIndex:    make(map[uint64]Index),
		NameToFunctionIndex:    make(map[string][]Index),
		MangledToFunctionIndex: make(map[string][]Index),
		AddressToFunctionIndex: make(map[uint64]Index),
		NameToHeaderFileIndex:  make(map[string]Index),
		NameToSourceFileIndex:  make(map[string]Index),
	}
}

// GetParameterTypes splits a function's parameter-type list into individual
// type strings. functionParameters may be given with or without its
// surrounding parentheses ("(int, char*)" or "int, char*"); either way, `(`
// is simply skipped and `)` ends the current type exactly like `*` and `&`
// do.
//
// Scans character by character, tracking template-bracket depth (`<>`) and
// skipping any separator while depth > 0. At depth 0, a comma splits to the
// next type, and `*`, `&` or `)` end the current type (so pointer/reference
// decoration is dropped rather than kept on the type string). An empty
// string, "void", "()" or "(void)" all yield a nil slice.
func GetParameterTypes(functionParameters string) []string {
	functionParameters = strings.TrimSpace(functionParameters)
	if functionParameters == "" || functionParameters == "void" || functionParameters == "()" || functionParameters == "(void)" {
		return nil
	}

	var types []string
	var cur strings.Builder
	depth := 0
	ended := false

	flush := func() {
		if t := strings.TrimSpace(cur.String()); t != "" {
			types = append(types, t)
		}
		cur.Reset()
		ended = false
	}

	for _, c := range functionParameters {
		switch {
		case c == '<':
			depth++
			cur.WriteRune(c)
		case c == '>':
			depth--
			cur.WriteRune(c)
		case depth > 0:
			cur.WriteRune(c)
		case c == ',':
			flush()
		case c == '(':
			// the parameter list's own wrapping paren, if present.
		case c == '*' || c == '&' || c == ')':
			ended = true
		default:
			if !ended {
				cur.WriteRune(c)
			}
		}
	}
	flush()
	return types
}

// CreateHeaderFileSet returns the de-duplicated set of header file names
// referenced by function's instructions, across every variant.
func CreateHeaderFileSet(headerFiles []HeaderFile, function Function) map[string]struct{} {
	set := make(map[string]struct{})
	for _, variant := range function.Variants {
		for _, instr := range variant.Instructions {
			if instr.HeaderFileIndex == InvalidIndex {
				continue
			}
			if int(instr.HeaderFileIndex) >= len(headerFiles) {
				continue
			}
			set[headerFiles[instr.HeaderFileIndex].Name] = struct{}{}
		}
	}
	return set
}
