package itanium

import (
	"fmt"
	"strings"
)

// Demangle renders the full demangled spelling of an ordinary "_Z"-mangled
// name: return type omitted (per the ABI, ordinary functions don't encode
// it), qualified name, parameter list.
func Demangle(mangled string) (string, error) {
	enc, err := parseEncoding(mangled)
	if err != nil {
		return "", err
	}
	return renderEncoding(enc), nil
}

func renderEncoding(enc *Encoding) string {
	var b strings.Builder
	if enc.ReturnType != nil {
		b.WriteString(enc.ReturnType.String())
		b.WriteByte(' ')
	}
	b.WriteString(enc.Name.String())
	if enc.Params != nil || hasParamList(enc) {
		b.WriteByte('(')
		parts := make([]string, len(enc.Params))
		for i, t := range enc.Params {
			parts[i] = t.String()
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteByte(')')
	}
	return b.String()
}

func hasParamList(enc *Encoding) bool {
	return enc.Params != nil
}

// DemangleTypeinfoName demangles a "_ZTI..." typeinfo symbol and returns the
// bare type name it describes (no "typeinfo for " prefix — reconstruct
// components want the class/enum name directly, not the human sentence the
// original C++ code built by string-slicing that sentence).
func DemangleTypeinfoName(mangled string) (string, error) {
	rest, err := stripSpecialPrefix(mangled, "TI")
	if err != nil {
		return "", err
	}
	return demangleBareType(rest)
}

// DemangleVtableName demangles a "_ZTV..." vtable symbol and returns the
// bare type name whose vtable it is.
func DemangleVtableName(mangled string) (string, error) {
	rest, err := stripSpecialPrefix(mangled, "TV")
	if err != nil {
		return "", err
	}
	return demangleBareType(rest)
}

// DemangleNonVirtualThunkName demangles a "_ZThn<offset>_<encoding>" thunk
// symbol and returns the demangled name of the underlying function (the
// equivalent of the original C++ code erasing "non-virtual thunk to ").
func DemangleNonVirtualThunkName(mangled string) (string, error) {
	if !strings.HasPrefix(mangled, "_ZThn") && !strings.HasPrefix(mangled, "_ZTh") {
		return "", fmt.Errorf("itanium: %q is not a non-virtual thunk symbol", mangled)
	}
	rest := strings.TrimPrefix(mangled, "_ZThn")
	rest = strings.TrimPrefix(rest, "_ZTh")
	idx := strings.IndexByte(rest, '_')
	if idx < 0 {
		return "", fmt.Errorf("itanium: malformed thunk symbol %q", mangled)
	}
	rest = rest[idx+1:]
	return Demangle("_Z" + rest)
}

func stripSpecialPrefix(mangled, code string) (string, error) {
	prefix := "_Z" + code
	if !strings.HasPrefix(mangled, prefix) {
		return "", fmt.Errorf("itanium: %q does not start with %q", mangled, prefix)
	}
	return mangled[len(prefix):], nil
}

// DemangleTypeName demangles a bare Itanium <name> production with no "_Z"
// wrapper and no "TI"/"TV" special-name code — the form __type_info::name()
// returns at runtime, and the form this reconstructor reads directly out of
// a typeinfo struct's name pointer.
func DemangleTypeName(raw string) (string, error) {
	return demangleBareType(raw)
}

func demangleBareType(rest string) (string, error) {
	p := newParser(rest)
	t, err := p.parseType()
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

// PartialDemangler exposes the same slices of a mangled function name that
// the STABS/RTTI/vtable reconstruction passes need, without building the
// full "return-type name(params)" string every time.
type PartialDemangler struct {
	enc *Encoding
}

// NewPartialDemangler parses mangled once; every accessor below is then a
// cheap read of the already-built tree.
func NewPartialDemangler(mangled string) (*PartialDemangler, error) {
	enc, err := parseEncoding(mangled)
	if err != nil {
		return nil, err
	}
	return &PartialDemangler{enc: enc}, nil
}

// IsCtorOrDtor reports whether the mangled symbol names a constructor or
// destructor.
func (d *PartialDemangler) IsCtorOrDtor() bool { return d.enc.IsCtorOrDtor }

// FunctionBaseName is the innermost unqualified name, without any template
// arguments (e.g. "insert" for "std::vector<int>::insert<int>").
func (d *PartialDemangler) FunctionBaseName() string {
	return leafName(d.enc.Name)
}

// FunctionDeclContextName is the qualified name of the enclosing scope, "" for
// a name with no enclosing namespace or class.
func (d *PartialDemangler) FunctionDeclContextName() string {
	return declContext(d.enc.Name)
}

// FunctionName is the full qualified name, including template arguments on
// the terminal component if the symbol names a template instantiation.
func (d *PartialDemangler) FunctionName() string {
	return d.enc.Name.String()
}

// FunctionParameters is the comma-and-space-joined parameter type list, ""
// for a nullary function or a data symbol.
func (d *PartialDemangler) FunctionParameters() string {
	if len(d.enc.Params) == 0 {
		return ""
	}
	parts := make([]string, len(d.enc.Params))
	for i, t := range d.enc.Params {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// FunctionReturnType is only non-empty for template-function instantiations,
// which is the one case the Itanium ABI mangles a return type at all.
func (d *PartialDemangler) FunctionReturnType() string {
	if d.enc.ReturnType == nil {
		return ""
	}
	return d.enc.ReturnType.String()
}

// IsData reports whether the mangled symbol has no parameter list at all
// (a global or static variable rather than a function).
func (d *PartialDemangler) IsData() bool {
	return !hasParamList(d.enc)
}

// LooksMangled reports whether s has the "_Z" Itanium prefix. Used to
// distinguish mangled C++ symbols from plain C ones (e.g. "_GLOBAL__" or the
// reconstructor's own synthetic labels) before attempting a demangle.
func LooksMangled(s string) bool {
	return strings.HasPrefix(s, "_Z") && len(s) > 2
}
