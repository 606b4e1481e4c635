package itanium

import (
	"fmt"
	"strconv"
	"strings"
)

// Encoding is the parsed result of a single "_Z"-mangled symbol.
type Encoding struct {
	Name         *Node   // qualified name, possibly ending in a KindTemplate leaf
	Params       []*Node // nil for a data-name (no parameter list at all)
	ReturnType   *Node   // only set for template-function instantiations
	IsCtorOrDtor bool
}

type parser struct {
	s    string
	pos  int
	subs []*Node
}

func newParser(s string) *parser { return &parser{s: s} }

func (p *parser) errf(format string, args ...interface{}) error {
	return fmt.Errorf("itanium: %s (at byte %d of %q)", fmt.Sprintf(format, args...), p.pos, p.s)
}

func (p *parser) eof() bool { return p.pos >= len(p.s) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) take() byte {
	c := p.s[p.pos]
	p.pos++
	return c
}

func (p *parser) consume(prefix string) bool {
	if strings.HasPrefix(p.s[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

// parseEncoding parses "_Z"<encoding> in full: <name> optionally followed by
// a <bare-function-type>, and returns nil, error if the whole string wasn't
// consumed.
func parseEncoding(mangled string) (*Encoding, error) {
	if !strings.HasPrefix(mangled, "_Z") {
		return nil, fmt.Errorf("itanium: %q is not an Itanium-mangled name", mangled)
	}
	p := newParser(mangled[2:])

	name, isCtorDtor, err := p.parseName()
	if err != nil {
		return nil, err
	}
	enc := &Encoding{Name: name, IsCtorOrDtor: isCtorDtor}

	if p.eof() {
		// data-name: no parameter list at all.
		return enc, nil
	}

	isTemplateFn := name.Kind == KindTemplate
	var types []*Node
	for !p.eof() {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	if len(types) == 0 {
		return enc, nil
	}
	if isTemplateFn && len(types) > 1 {
		enc.ReturnType = types[0]
		enc.Params = types[1:]
	} else {
		enc.Params = types
	}
	// A single "void" parameter means an empty parameter list.
	if len(enc.Params) == 1 && enc.Params[0].Kind == KindBuiltin && enc.Params[0].Text == "void" {
		enc.Params = []*Node{}
	}
	return enc, nil
}

// parseName parses <name> and reports whether the terminal component was a
// constructor or destructor.
func (p *parser) parseName() (*Node, bool, error) {
	switch p.peek() {
	case 'N':
		return p.parseNestedName()
	default:
		n, err := p.parseUnscopedOrTemplateName()
		if err != nil {
			return nil, false, err
		}
		return n, n.Kind == KindCtor || n.Kind == KindDtor, nil
	}
}

func (p *parser) parseUnscopedOrTemplateName() (*Node, error) {
	base, err := p.parseUnscopedName()
	if err != nil {
		return nil, err
	}
	p.addSubstitution(base)
	if p.peek() == 'I' {
		return p.parseTemplateArgs(base)
	}
	return base, nil
}

func (p *parser) parseUnscopedName() (*Node, error) {
	if p.consume("St") {
		n, err := p.parseUnqualifiedName()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindQualified, Children: []*Node{ident("std"), n}}, nil
	}
	if p.peek() == 'S' {
		return p.parseSubstitution()
	}
	return p.parseUnqualifiedName()
}

// parseNestedName parses N [CV] [ref] <prefix> <unqualified-name> E,
// producing a flat KindQualified node of every component.
func (p *parser) parseNestedName() (*Node, bool, error) {
	p.take() // 'N'
	for strings.ContainsRune("rVK", rune(p.peek())) {
		p.take()
	}
	if p.peek() == 'R' || p.peek() == 'O' {
		p.take()
	}

	var comps []*Node
	lastIsCtorDtor := false
	for {
		if p.peek() == 'E' {
			p.take()
			break
		}
		var comp *Node
		var err error
		switch {
		case p.peek() == 'S':
			comp, err = p.parseSubstitution()
		default:
			comp, err = p.parseUnqualifiedName()
		}
		if err != nil {
			return nil, false, err
		}
		lastIsCtorDtor = comp.Kind == KindCtor || comp.Kind == KindDtor
		if lastIsCtorDtor && len(comps) > 0 {
			comp.Text = leafName(comps[len(comps)-1])
		}
		comps = append(comps, comp)

		running := &Node{Kind: KindQualified, Children: append([]*Node{}, comps...)}
		p.addSubstitution(running)

		if p.peek() == 'I' {
			tmpl, err := p.parseTemplateArgs(comp)
			if err != nil {
				return nil, false, err
			}
			comps[len(comps)-1] = tmpl
			running = &Node{Kind: KindQualified, Children: append([]*Node{}, comps...)}
			p.addSubstitution(running)
		}
	}
	if len(comps) == 0 {
		return nil, false, p.errf("empty nested-name")
	}
	return &Node{Kind: KindQualified, Children: comps}, lastIsCtorDtor, nil
}

func (p *parser) parseUnqualifiedName() (*Node, error) {
	switch {
	case p.peek() == 'C' && p.pos+1 < len(p.s) && strings.ContainsRune("123", rune(p.s[p.pos+1])):
		p.pos += 2
		return &Node{Kind: KindCtor}, nil
	case p.peek() == 'D' && p.pos+1 < len(p.s) && strings.ContainsRune("012", rune(p.s[p.pos+1])):
		p.pos += 2
		return &Node{Kind: KindDtor}, nil
	case isOperatorCode(p.s[p.pos:]):
		return p.parseOperatorName()
	case p.peek() >= '0' && p.peek() <= '9':
		return p.parseSourceName()
	default:
		return nil, p.errf("unrecognized unqualified-name at %q", p.s[p.pos:])
	}
}

func (p *parser) parseSourceName() (*Node, error) {
	start := p.pos
	for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
		p.take()
	}
	n, err := strconv.Atoi(p.s[start:p.pos])
	if err != nil {
		return nil, p.errf("bad source-name length: %v", err)
	}
	if p.pos+n > len(p.s) {
		return nil, p.errf("source-name length %d overruns input", n)
	}
	name := p.s[p.pos : p.pos+n]
	p.pos += n
	return ident(name), nil
}

func (p *parser) parseTemplateArgs(base *Node) (*Node, error) {
	p.take() // 'I'
	tmpl := &Node{Kind: KindTemplate, Children: []*Node{base}}
	for p.peek() != 'E' {
		if p.eof() {
			return nil, p.errf("unterminated template-args")
		}
		arg, err := p.parseTemplateArg()
		if err != nil {
			return nil, err
		}
		tmpl.Children = append(tmpl.Children, arg)
	}
	p.take() // 'E'
	p.addSubstitution(tmpl)
	return tmpl, nil
}

func (p *parser) parseTemplateArg() (*Node, error) {
	switch p.peek() {
	case 'L':
		return p.parseExprPrimary()
	case 'X':
		return p.parseExpression()
	default:
		return p.parseType()
	}
}

// parseExprPrimary handles the common integral-literal case L<type><value>E.
func (p *parser) parseExprPrimary() (*Node, error) {
	p.take() // 'L'
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	start := p.pos
	for !p.eof() && p.peek() != 'E' {
		p.take()
	}
	lit := p.s[start:p.pos]
	if !p.eof() {
		p.take() // 'E'
	}
	return ident(t.String() + "(" + lit + ")"), nil
}

// parseExpression is a coarse fallback: consume up to the matching 'E' and
// return the raw text. Full expression-template support is out of scope for
// the debug-symbol names this reconstructor actually encounters.
func (p *parser) parseExpression() (*Node, error) {
	start := p.pos
	depth := 0
	for !p.eof() {
		switch p.peek() {
		case 'I':
			depth++
		case 'E':
			if depth == 0 {
				text := p.s[start:p.pos]
				p.take()
				return ident(text), nil
			}
			depth--
		}
		p.take()
	}
	return nil, p.errf("unterminated expression")
}

var operatorNames = map[string]string{
	"nw": "operator new", "na": "operator new[]",
	"dl": "operator delete", "da": "operator delete[]",
	"ps": "operator+", "ng": "operator-",
	"ad": "operator&", "de": "operator*",
	"co": "operator~",
	"pl": "operator+", "mi": "operator-",
	"ml": "operator*", "dv": "operator/",
	"rm": "operator%", "an": "operator&",
	"or": "operator|", "eo": "operator^",
	"aS": "operator=", "pL": "operator+=",
	"mI": "operator-=", "mL": "operator*=",
	"dV": "operator/=", "rM": "operator%=",
	"aN": "operator&=", "oR": "operator|=",
	"eO": "operator^=", "ls": "operator<<",
	"rs": "operator>>", "lS": "operator<<=",
	"rS": "operator>>=", "eq": "operator==",
	"ne": "operator!=", "lt": "operator<",
	"gt": "operator>", "le": "operator<=",
	"ge": "operator>=", "nt": "operator!",
	"aa": "operator&&", "oo": "operator||",
	"pp": "operator++", "mm": "operator--",
	"cm": "operator,", "pm": "operator->*",
	"pt": "operator->", "cl": "operator()",
	"ix": "operator[]", "cv": "operator cast",
}

func isOperatorCode(s string) bool {
	if len(s) < 2 {
		return false
	}
	_, ok := operatorNames[s[:2]]
	return ok
}

func (p *parser) parseOperatorName() (*Node, error) {
	code := p.s[p.pos : p.pos+2]
	p.pos += 2
	name, ok := operatorNames[code]
	if !ok {
		return nil, p.errf("unknown operator code %q", code)
	}
	if code == "cv" {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindOperator, Text: "operator " + t.String()}, nil
	}
	return &Node{Kind: KindOperator, Text: name}, nil
}

var builtinTypes = map[byte]string{
	'v': "void", 'w': "wchar_t", 'b': "bool",
	'c': "char", 'a': "signed char", 'h': "unsigned char",
	's': "short", 't': "unsigned short",
	'i': "int", 'j': "unsigned int",
	'l': "long", 'm': "unsigned long",
	'x': "long long", 'y': "unsigned long long",
	'n': "__int128", 'o': "unsigned __int128",
	'f': "float", 'd': "double", 'e': "long double",
	'z': "...",
}

func (p *parser) parseType() (*Node, error) {
	if p.eof() {
		return nil, p.errf("unexpected end of input parsing type")
	}
	switch c := p.peek(); c {
	case 'P':
		p.take()
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		n := &Node{Kind: KindPointer, Children: []*Node{inner}}
		p.addSubstitution(n)
		return n, nil
	case 'R':
		p.take()
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		n := &Node{Kind: KindReference, Children: []*Node{inner}}
		p.addSubstitution(n)
		return n, nil
	case 'O':
		p.take()
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		n := &Node{Kind: KindRvalueRef, Children: []*Node{inner}}
		p.addSubstitution(n)
		return n, nil
	case 'K':
		p.take()
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		n := &Node{Kind: KindConst, Children: []*Node{inner}}
		p.addSubstitution(n)
		return n, nil
	case 'V':
		p.take()
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		n := &Node{Kind: KindVolatile, Children: []*Node{inner}}
		p.addSubstitution(n)
		return n, nil
	case 'A':
		p.take()
		start := p.pos
		for !p.eof() && p.peek() != '_' {
			p.take()
		}
		dim := p.s[start:p.pos]
		if !p.eof() {
			p.take() // '_'
		}
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		n := &Node{Kind: KindArray, Text: dim, Children: []*Node{inner}}
		p.addSubstitution(n)
		return n, nil
	case 'F':
		return p.parseFunctionType()
	case 'S':
		return p.parseSubstitution()
	case 'N':
		n, _, err := p.parseNestedName()
		if err != nil {
			return nil, err
		}
		p.addSubstitution(n)
		return n, nil
	case 'T':
		return p.parseTemplateParam()
	default:
		if spelling, ok := builtinTypes[c]; ok {
			p.take()
			return &Node{Kind: KindBuiltin, Text: spelling}, nil
		}
		return p.parseUnscopedOrTemplateName()
	}
}

func (p *parser) parseFunctionType() (*Node, error) {
	start := p.pos
	p.take() // 'F'
	depth := 0
	for !p.eof() {
		switch p.peek() {
		case 'F':
			depth++
		case 'E':
			if depth == 0 {
				p.take()
				n := &Node{Kind: KindFunctionType, Text: p.s[start:p.pos]}
				p.addSubstitution(n)
				return n, nil
			}
			depth--
		}
		p.take()
	}
	return nil, p.errf("unterminated function-type")
}

func (p *parser) parseTemplateParam() (*Node, error) {
	start := p.pos
	p.take() // 'T'
	for !p.eof() && p.peek() != '_' {
		p.take()
	}
	if !p.eof() {
		p.take()
	}
	return &Node{Kind: KindTemplateParam, Text: p.s[start:p.pos]}, nil
}

var standardSubs = map[string]*Node{
	"St": ident("std"),
	"Sa": &Node{Kind: KindQualified, Children: []*Node{ident("std"), ident("allocator")}},
	"Sb": &Node{Kind: KindQualified, Children: []*Node{ident("std"), ident("basic_string")}},
	"Ss": &Node{Kind: KindQualified, Children: []*Node{ident("std"), ident("string")}},
	"Si": &Node{Kind: KindQualified, Children: []*Node{ident("std"), ident("istream")}},
	"So": &Node{Kind: KindQualified, Children: []*Node{ident("std"), ident("ostream")}},
	"Sd": &Node{Kind: KindQualified, Children: []*Node{ident("std"), ident("iostream")}},
}

func (p *parser) parseSubstitution() (*Node, error) {
	for code := range standardSubs {
		if p.consume(code) {
			return standardSubs[code], nil
		}
	}
	p.take() // 'S'
	if p.consume("_") {
		return p.lookupSubstitution(0)
	}
	start := p.pos
	for !p.eof() && p.peek() != '_' {
		p.take()
	}
	seq := p.s[start:p.pos]
	if !p.eof() {
		p.take() // '_'
	}
	idx, err := strconv.ParseInt(seq, 36, 32)
	if err != nil {
		return nil, p.errf("bad substitution sequence-id %q: %v", seq, err)
	}
	return p.lookupSubstitution(int(idx) + 1)
}

func (p *parser) lookupSubstitution(idx int) (*Node, error) {
	if idx < 0 || idx >= len(p.subs) {
		return nil, p.errf("substitution index %d out of range (have %d)", idx, len(p.subs))
	}
	return p.subs[idx], nil
}

func (p *parser) addSubstitution(n *Node) {
	p.subs = append(p.subs, n)
}
