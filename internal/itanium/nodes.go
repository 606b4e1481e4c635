// Package itanium is a hand-written demangler for the Itanium C++ ABI
// mangling scheme ("_Z"-prefixed names) used by every GCC/Clang C++
// toolchain, including the early-2000s Mac OS X GCC that produced the
// binaries this reconstruction pipeline targets.
//
// No ecosystem Itanium demangler exists anywhere in the retrieval pack this
// repo was grounded on; the node/parser architecture here is styled after
// _examples/skdltmxn-pdb-go/internal/demangle (which demangles the
// unrelated MSVC "?"-prefixed grammar) rather than any C++-grammar source,
// since the grammar itself has no counterpart in the pack.
package itanium

import "strings"

// NodeKind tags what a Node represents. Rather than one Go type per
// production (the grammar has dozens), a single tagged Node keeps the
// parser's output tractable; String() renders each kind.
type NodeKind int

const (
	KindIdentifier NodeKind = iota // a plain source-name identifier
	KindQualified                  // ::-joined Children
	KindTemplate                   // Children[0] is the base name, rest are template arguments
	KindCtor                       // constructor: renders as the enclosing class name
	KindDtor                       // destructor: renders as "~" + enclosing class name
	KindOperator                   // operator-name, Text already resolved (e.g. "operator+")
	KindBuiltin                    // builtin type, Text is its spelling
	KindPointer                    // Children[0]*
	KindReference                  // Children[0]&
	KindRvalueRef                  // Children[0]&&
	KindConst                      // Children[0] const
	KindVolatile                   // Children[0] volatile
	KindArray                      // Children[0][] (dimension in Text, may be empty)
	KindFunctionType                // opaque function-type parameter (rendered as Text)
	KindTemplateParam               // unresolved template parameter placeholder
)

// Node is one element of a demangled name's syntax tree.
type Node struct {
	Kind     NodeKind
	Text     string
	Children []*Node
}

func ident(s string) *Node { return &Node{Kind: KindIdentifier, Text: s} }

func (n *Node) String() string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindIdentifier, KindOperator, KindBuiltin, KindFunctionType, KindTemplateParam:
		return n.Text
	case KindQualified:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = c.String()
		}
		return strings.Join(parts, "::")
	case KindTemplate:
		base := n.Children[0].String()
		args := make([]string, len(n.Children)-1)
		for i, c := range n.Children[1:] {
			args[i] = c.String()
		}
		return base + "<" + strings.Join(args, ", ") + ">"
	case KindCtor:
		return n.Text
	case KindDtor:
		return "~" + n.Text
	case KindPointer:
		return n.Children[0].String() + "*"
	case KindReference:
		return n.Children[0].String() + "&"
	case KindRvalueRef:
		return n.Children[0].String() + "&&"
	case KindConst:
		return n.Children[0].String() + " const"
	case KindVolatile:
		return n.Children[0].String() + " volatile"
	case KindArray:
		if n.Text != "" {
			return n.Children[0].String() + "[" + n.Text + "]"
		}
		return n.Children[0].String() + "[]"
	default:
		return n.Text
	}
}

// leafName returns the unqualified identifier this node ultimately renders
// as: for KindQualified it is the last component, for KindTemplate it
// recurses into the base, a ctor renders as its class name and a dtor as
// "~" followed by its class name.
func leafName(n *Node) string {
	switch n.Kind {
	case KindQualified:
		if len(n.Children) == 0 {
			return ""
		}
		return leafName(n.Children[len(n.Children)-1])
	case KindTemplate:
		return leafName(n.Children[0])
	case KindCtor:
		return n.Text
	case KindDtor:
		return "~" + n.Text
	default:
		return n.String()
	}
}

// declContext returns the qualified name of everything but the last
// component of a KindQualified node ("" if there is only one component).
func declContext(n *Node) string {
	if n.Kind != KindQualified || len(n.Children) <= 1 {
		return ""
	}
	parts := make([]string, len(n.Children)-1)
	for i, c := range n.Children[:len(n.Children)-1] {
		parts[i] = c.String()
	}
	return strings.Join(parts, "::")
}
