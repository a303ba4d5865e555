package shape

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser for the datashape grammar:
//
//	statement      := lhs '=' rhs | rhs
//	lhs            := NAME (whitespace NAME)*
//	rhs            := rhs ',' rhs | record | ctor | NAME | NUMBER
//	record         := '{' record_items? '}'
//	record_items   := record_item (',' record_item)*
//	record_item    := NAME ':' '(' rhs ')' | NAME ':' NAME | NAME ':' NUMBER
//	ctor           := NAME '(' args ')'
//
// A bare NAME resolves via the type registry if known, else becomes a
// fresh TypeVar. A bare NUMBER becomes a Fixed dimension; numbers in
// constructor argument position are plain Integers. Comma-joined terms
// are concatenated left-to-right via Product. 'lhs = rhs' binds the
// result into the registry under the (possibly multi-word) lhs name.

// SyntaxError reports malformed shape text.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokName
	tokNumber
	tokComma
	tokColon
	tokEquals
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
)

type token struct {
	kind tokKind
	text string
	off  int
}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		case c == ':':
			toks = append(toks, token{tokColon, ":", i})
			i++
		case c == '=':
			toks = append(toks, token{tokEquals, "=", i})
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == '{':
			toks = append(toks, token{tokLBrace, "{", i})
			i++
		case c == '}':
			toks = append(toks, token{tokRBrace, "}", i})
			i++
		case c == '?':
			toks = append(toks, token{tokName, "?", i})
			i++
		case c >= '0' && c <= '9':
			j := i
			for j < len(src) && src[j] >= '0' && src[j] <= '9' {
				j++
			}
			toks = append(toks, token{tokNumber, src[i:j], i})
			i = j
		case isNameStart(c):
			j := i
			for j < len(src) && isNameChar(src[j]) {
				j++
			}
			toks = append(toks, token{tokName, src[i:j], i})
			i = j
		default:
			return nil, SyntaxError{Offset: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, token{tokEOF, "", len(src)})
	return toks, nil
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *parser) at(k tokKind) bool {
	return p.toks[p.pos].kind == k
}

func (p *parser) expect(k tokKind, what string) (token, error) {
	t := p.next()
	if t.kind != k {
		return token{}, SyntaxError{Offset: t.off, Msg: fmt.Sprintf("expected %s, got %q", what, t.text)}
	}
	return t, nil
}

func (p *parser) fail(msg string) error {
	return SyntaxError{Offset: p.peek().off, Msg: msg}
}

// Parse parses a shape statement. A statement of the form 'lhs = rhs'
// additionally binds the resulting term into the registry.
func Parse(text string) (Term, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}

	// Look for the assignment form: a run of NAMEs followed by '='.
	var lhs []string
	scan := 0
	for toks[scan].kind == tokName {
		lhs = append(lhs, toks[scan].text)
		scan++
	}
	if len(lhs) > 0 && toks[scan].kind == tokEquals {
		p.pos = scan + 1
		rhs, err := p.parseRHS()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokEOF, "end of input"); err != nil {
			return nil, err
		}
		if err := Register(strings.Join(lhs, " "), rhs); err != nil {
			return nil, err
		}
		return rhs, nil
	}

	rhs, err := p.parseRHS()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokEOF, "end of input"); err != nil {
		return nil, err
	}
	return rhs, nil
}

// MustParse parses a shape, panicking on malformed input.
func MustParse(text string) Term {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

func (p *parser) parseRHS() (Term, error) {
	first, err := p.parseItem()
	if err != nil {
		return nil, err
	}
	items := []Term{first}
	for p.at(tokComma) {
		p.next()
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return NewDataShape(items...), nil
}

func (p *parser) parseItem() (Term, error) {
	switch t := p.peek(); t.kind {
	case tokNumber:
		p.next()
		n, _ := strconv.Atoi(t.text)
		return Fixed{Val: n}, nil

	case tokLBrace:
		return p.parseBraces()

	case tokLParen:
		p.next()
		inner, err := p.parseRHS()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return inner, nil

	case tokName:
		p.next()
		if p.at(tokLParen) {
			return p.parseCtor(t)
		}
		return resolveName(t.text), nil
	}
	return nil, p.fail("expected a shape term")
}

func resolveName(name string) Term {
	if t, err := Lookup(name); err == nil {
		return t
	}
	return TypeVar{Symbol: name}
}

func (p *parser) parseBraces() (Term, error) {
	open := p.next() // '{'
	if p.at(tokRBrace) {
		p.next()
		return NullRecord, nil
	}

	// NAME ':' starts a record; anything else is an enumeration.
	if p.at(tokName) && p.toks[p.pos+1].kind == tokColon {
		return p.parseRecordItems()
	}

	var elems []Term
	for {
		elem, err := p.parseCtorArg()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if !p.at(tokComma) {
			break
		}
		p.next()
		if p.at(tokRBrace) {
			break // tolerate a trailing comma
		}
	}
	if _, err := p.expect(tokRBrace, "}"); err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, SyntaxError{Offset: open.off, Msg: "empty enumeration"}
	}
	return NewEnum(elems...), nil
}

func (p *parser) parseRecordItems() (Term, error) {
	var fields []Field
	for {
		name, err := p.expect(tokName, "field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokColon, ":"); err != nil {
			return nil, err
		}
		value, err := p.parseRecordValue()
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name.text, Type: value})
		if !p.at(tokComma) {
			break
		}
		p.next()
		if p.at(tokRBrace) {
			break // tolerate a trailing comma
		}
	}
	if _, err := p.expect(tokRBrace, "}"); err != nil {
		return nil, err
	}
	rec, err := NewRecord(fields...)
	if err != nil {
		return nil, SyntaxError{Offset: p.peek().off, Msg: err.Error()}
	}
	return rec, nil
}

func (p *parser) parseRecordValue() (Term, error) {
	switch t := p.peek(); t.kind {
	case tokLParen:
		p.next()
		inner, err := p.parseRHS()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	case tokNumber:
		p.next()
		n, _ := strconv.Atoi(t.text)
		return Fixed{Val: n}, nil
	case tokName:
		p.next()
		if p.at(tokLParen) {
			return p.parseCtor(t)
		}
		return resolveName(t.text), nil
	case tokLBrace:
		return p.parseBraces()
	}
	return nil, p.fail("expected a field value")
}

// parseCtor parses the constructor form NAME '(' args ')'.
func (p *parser) parseCtor(head token) (Term, error) {
	p.next() // '('
	args, err := p.parseCtorArgs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}

	badArity := func(want string) error {
		return SyntaxError{Offset: head.off, Msg: fmt.Sprintf("%s expects %s arguments, got %d", head.text, want, len(args))}
	}

	switch head.text {
	case "Var", "Range":
		return p.buildRange(head, args)

	case "Either":
		if len(args) != 2 {
			return nil, badArity("2")
		}
		return Either{A: args[0], B: args[1]}, nil

	case "Enum":
		if len(args) == 0 {
			return nil, badArity("1 or more")
		}
		return NewEnum(args...), nil

	case "Union":
		if len(args) == 0 {
			return nil, badArity("1 or more")
		}
		return NewUnion(args...), nil

	case "Ptr":
		switch len(args) {
		case 1:
			return Ptr{Pointee: args[0], Space: Local}, nil
		case 2:
			space, ok := args[1].(addrSpaceArg)
			if !ok {
				return nil, SyntaxError{Offset: head.off, Msg: "Ptr address space must be local or remote(NAME)"}
			}
			return Ptr{Pointee: args[0], Space: space.space}, nil
		default:
			return nil, badArity("1 or 2")
		}
	}
	return nil, SyntaxError{Offset: head.off, Msg: fmt.Sprintf("unknown constructor %q", head.text)}
}

// addrSpaceArg is a parser-internal argument produced by the
// local/remote(NAME) forms inside Ptr.
type addrSpaceArg struct {
	space AddrSpace
}

func (addrSpaceArg) String() string  { return "addrspace" }
func (addrSpaceArg) Equal(Term) bool { return false }

func (p *parser) parseCtorArgs() ([]Term, error) {
	if p.at(tokRParen) {
		return nil, nil
	}
	var args []Term
	for {
		arg, err := p.parseCtorArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.at(tokComma) {
			return args, nil
		}
		p.next()
	}
}

func (p *parser) parseCtorArg() (Term, error) {
	switch t := p.peek(); t.kind {
	case tokNumber:
		p.next()
		n, _ := strconv.Atoi(t.text)
		return Integer{Val: n}, nil
	case tokName:
		switch t.text {
		case "inf", "None":
			p.next()
			return TypeVar{Symbol: t.text}, nil
		case "local":
			p.next()
			return addrSpaceArg{space: Local}, nil
		case "remote":
			p.next()
			if _, err := p.expect(tokLParen, "("); err != nil {
				return nil, err
			}
			key, err := p.expect(tokName, "location key")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRParen, ")"); err != nil {
				return nil, err
			}
			return addrSpaceArg{space: RemoteSpace(key.text)}, nil
		}
		return p.parseItem()
	}
	return p.parseItem()
}

func (p *parser) buildRange(head token, args []Term) (Term, error) {
	bound := func(t Term) (val int, unbounded bool, err error) {
		switch t := t.(type) {
		case Integer:
			return t.Val, false, nil
		case TypeVar:
			if t.Symbol == "inf" || t.Symbol == "None" {
				return 0, true, nil
			}
		}
		return 0, false, SyntaxError{Offset: head.off, Msg: fmt.Sprintf("%s bounds must be integers or inf", head.text)}
	}

	switch len(args) {
	case 1:
		upper, unbounded, err := bound(args[0])
		if err != nil {
			return nil, err
		}
		if unbounded {
			return NewStreamRange(0), nil
		}
		r, err := NewRange(0, upper)
		if err != nil {
			return nil, SyntaxError{Offset: head.off, Msg: err.Error()}
		}
		return r, nil
	case 2:
		lower, lowerInf, err := bound(args[0])
		if err != nil {
			return nil, err
		}
		if lowerInf {
			return nil, SyntaxError{Offset: head.off, Msg: "lower bound may not be inf"}
		}
		upper, unbounded, err := bound(args[1])
		if err != nil {
			return nil, err
		}
		if unbounded {
			return NewStreamRange(lower), nil
		}
		r, err := NewRange(lower, upper)
		if err != nil {
			return nil, SyntaxError{Offset: head.off, Msg: err.Error()}
		}
		return r, nil
	}
	return nil, SyntaxError{Offset: head.off, Msg: fmt.Sprintf("%s expects 1 or 2 arguments, got %d", head.text, len(args))}
}
