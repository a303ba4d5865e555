package aterm

import (
	"fmt"
	"strconv"
	"strings"
)

// The pattern language over terms:
//
//	pattern  := body (';' metaspec)?
//	body     := HEAD | HEAD '(' args ')' | '<' KIND '>' | var | INT | STRING
//	args     := body (',' body)*
//	metaspec := '*' | NAME (',' NAME)*
//
// HEAD is a capitalized constructor name matched literally. A
// lowercase token is a pattern variable binding the sub-term it
// matches; the same variable occurring twice must bind equal terms.
// Typed wildcards <term>, <int>, <real>, <str>, <appl> and <list>
// match anonymously by kind. A metaspec of '*' (or no metaspec at
// all) ignores the subject's annotations; a name list requires each
// named annotation to be present on the subject.

// PatternError reports a malformed pattern string.
type PatternError struct {
	Pattern string
	Msg     string
}

func (e PatternError) Error() string {
	return fmt.Sprintf("bad pattern %q: %s", e.Pattern, e.Msg)
}

// Captures maps pattern variables to the sub-terms they bound.
type Captures map[string]Term

// Pattern is a compiled pattern.
type Pattern struct {
	src  string
	body patNode
	meta []string // required annotation keys, nil when ignored
}

// String returns the source text the pattern was compiled from.
func (p *Pattern) String() string { return p.src }

type patNode interface {
	match(t Term, caps Captures) bool
}

type patLiteral struct{ term Term } // Int, Str, Symbol matched exactly

type patVar struct{ name string }

type patWild struct{ kind string } // term, int, real, str, appl, list

type patAppl struct {
	spine string
	args  []patNode
}

func (p patLiteral) match(t Term, caps Captures) bool {
	return p.term.Equal(Strip(t))
}

func (p patVar) match(t Term, caps Captures) bool {
	if prev, ok := caps[p.name]; ok {
		return prev.Equal(t)
	}
	caps[p.name] = t
	return true
}

func (p patWild) match(t Term, caps Captures) bool {
	switch p.kind {
	case "term":
		return true
	case "int":
		_, ok := Strip(t).(Int)
		return ok
	case "real":
		_, ok := Strip(t).(Real)
		return ok
	case "str":
		_, ok := Strip(t).(Str)
		return ok
	case "appl":
		_, ok := Strip(t).(Appl)
		return ok
	case "list":
		_, ok := Strip(t).(List)
		return ok
	}
	return false
}

func (p patAppl) match(t Term, caps Captures) bool {
	appl, ok := Strip(t).(Appl)
	if !ok || appl.Spine.Name != p.spine || len(appl.Args) != len(p.args) {
		return false
	}
	for i, arg := range p.args {
		if !arg.match(appl.Args[i], caps) {
			return false
		}
	}
	return true
}

// ParsePattern compiles a pattern string.
func ParsePattern(src string) (*Pattern, error) {
	body := src
	var meta []string
	if i := strings.IndexByte(src, ';'); i >= 0 {
		body = src[:i]
		spec := strings.ReplaceAll(src[i+1:], " ", "")
		if spec != "*" {
			meta = strings.Split(spec, ",")
			for _, m := range meta {
				if m == "" {
					return nil, PatternError{Pattern: src, Msg: "empty annotation key"}
				}
			}
		}
	}

	pp := &patParser{src: strings.ReplaceAll(body, " ", "")}
	node, err := pp.parse()
	if err != nil {
		return nil, PatternError{Pattern: src, Msg: err.Error()}
	}
	if pp.pos != len(pp.src) {
		return nil, PatternError{Pattern: src, Msg: fmt.Sprintf("trailing input at %d", pp.pos)}
	}
	return &Pattern{src: src, body: node, meta: meta}, nil
}

// MustParsePattern compiles a pattern, panicking on malformed input.
func MustParsePattern(src string) *Pattern {
	p, err := ParsePattern(src)
	if err != nil {
		panic(err)
	}
	return p
}

// Match matches the pattern against a term, returning the variable
// captures on success.
func (p *Pattern) Match(t Term) (Captures, bool) {
	for _, key := range p.meta {
		a, ok := t.(Annotated)
		if !ok || !a.Has(key) {
			return nil, false
		}
	}
	caps := Captures{}
	if !p.body.match(t, caps) {
		return nil, false
	}
	return caps, true
}

// Head returns the pattern's outermost constructor name and arity, or
// ok=false when the pattern is not a constructor application.
func (p *Pattern) Head() (spine string, arity int, ok bool) {
	appl, ok := p.body.(patAppl)
	if !ok {
		return "", 0, false
	}
	return appl.spine, len(appl.args), true
}

type patParser struct {
	src string
	pos int
}

func (p *patParser) parse() (patNode, error) {
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("unexpected end of pattern")
	}
	c := p.src[p.pos]

	switch {
	case c == '<':
		end := strings.IndexByte(p.src[p.pos:], '>')
		if end < 0 {
			return nil, fmt.Errorf("unterminated wildcard at %d", p.pos)
		}
		kind := p.src[p.pos+1 : p.pos+end]
		switch kind {
		case "term", "int", "real", "str", "appl", "list":
		default:
			return nil, fmt.Errorf("unknown wildcard <%s>", kind)
		}
		p.pos += end + 1
		return patWild{kind: kind}, nil

	case c == '"':
		end := strings.IndexByte(p.src[p.pos+1:], '"')
		if end < 0 {
			return nil, fmt.Errorf("unterminated string at %d", p.pos)
		}
		val := p.src[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
		return patLiteral{term: Str{Val: val}}, nil

	case c >= '0' && c <= '9' || c == '-':
		j := p.pos + 1
		for j < len(p.src) && p.src[j] >= '0' && p.src[j] <= '9' {
			j++
		}
		n, err := strconv.ParseInt(p.src[p.pos:j], 10, 64)
		if err != nil {
			return nil, err
		}
		p.pos = j
		return patLiteral{term: Int{Val: n}}, nil

	case isIdent(c):
		j := p.pos
		for j < len(p.src) && isIdent(p.src[j]) {
			j++
		}
		name := p.src[p.pos:j]
		p.pos = j

		if p.pos < len(p.src) && p.src[p.pos] == '(' {
			p.pos++
			var args []patNode
			if p.pos < len(p.src) && p.src[p.pos] != ')' {
				for {
					arg, err := p.parse()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if p.pos < len(p.src) && p.src[p.pos] == ',' {
						p.pos++
						continue
					}
					break
				}
			}
			if p.pos >= len(p.src) || p.src[p.pos] != ')' {
				return nil, fmt.Errorf("expected ) at %d", p.pos)
			}
			p.pos++
			return patAppl{spine: name, args: args}, nil
		}

		if name[0] >= 'a' && name[0] <= 'z' {
			return patVar{name: name}, nil
		}
		return patLiteral{term: Symbol{Name: name}}, nil
	}
	return nil, fmt.Errorf("unexpected character %q at %d", c, p.pos)
}

func isIdent(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
