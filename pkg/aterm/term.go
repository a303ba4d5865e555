// Package aterm implements an annotated-term representation for
// lowered expression graphs, plus a pattern language and cost-ranked
// dispatch table for resolving terms to implementations.
//
// The term grammar is a strict subset of ATerm, so terms remain
// parseable by standard rewriters:
//
//	t  : bt                -- basic term
//	   | bt {ty,m1,...}    -- annotated term
//
//	bt : C                 -- constant
//	   | C(t1,...,tn)      -- n-ary constructor
//	   | [t1,...,tn]       -- list
//	   | "ccc"             -- quoted string
//	   | int               -- integer
//	   | real              -- floating point number
package aterm

import (
	"strconv"
	"strings"
)

// Term is one node of an ATerm tree.
type Term interface {
	String() string
	Equal(Term) bool
}

// Symbol is a bare constructor constant.
type Symbol struct {
	Name string
}

func (s Symbol) String() string { return s.Name }

func (s Symbol) Equal(other Term) bool {
	o, ok := other.(Symbol)
	return ok && s.Name == o.Name
}

// Int is an integer leaf.
type Int struct {
	Val int64
}

func (i Int) String() string { return strconv.FormatInt(i.Val, 10) }

func (i Int) Equal(other Term) bool {
	o, ok := other.(Int)
	return ok && i.Val == o.Val
}

// Real is a floating point leaf.
type Real struct {
	Val float64
}

func (r Real) String() string { return strconv.FormatFloat(r.Val, 'g', -1, 64) }

func (r Real) Equal(other Term) bool {
	o, ok := other.(Real)
	return ok && r.Val == o.Val
}

// Str is a quoted string leaf.
type Str struct {
	Val string
}

func (s Str) String() string { return strconv.Quote(s.Val) }

func (s Str) Equal(other Term) bool {
	o, ok := other.(Str)
	return ok && s.Val == o.Val
}

// List is an ordered sequence of terms.
type List struct {
	Elems []Term
}

func (l List) String() string { return "[" + joinTerms(l.Elems) + "]" }

func (l List) Equal(other Term) bool {
	o, ok := other.(List)
	return ok && termsEqual(l.Elems, o.Elems)
}

// Appl is an n-ary constructor application.
type Appl struct {
	Spine Symbol
	Args  []Term
}

// NewAppl applies the named constructor to args.
func NewAppl(spine string, args ...Term) Appl {
	return Appl{Spine: Symbol{Name: spine}, Args: args}
}

func (a Appl) String() string {
	return a.Spine.Name + "(" + joinTerms(a.Args) + ")"
}

func (a Appl) Equal(other Term) bool {
	o, ok := other.(Appl)
	return ok && a.Spine == o.Spine && termsEqual(a.Args, o.Args)
}

// Annotated attaches a type annotation and metadata markers to an
// underlying term. The type annotation is a single opaque string, by
// convention dshape("...") for lowered graph nodes; metadata markers
// are bare flags such as manifest or contig.
type Annotated struct {
	Term Term
	Type string
	Meta []string
}

// Annotate wraps t with a type annotation and metadata markers.
func Annotate(t Term, ty string, meta ...string) Annotated {
	return Annotated{Term: t, Type: ty, Meta: meta}
}

// Has reports whether the annotation set carries the given key. The
// key "type" is present whenever a type annotation is.
func (a Annotated) Has(key string) bool {
	if key == "type" {
		return a.Type != ""
	}
	for _, m := range a.Meta {
		if m == key {
			return true
		}
	}
	return false
}

func (a Annotated) String() string {
	annots := make([]string, 0, len(a.Meta)+1)
	if a.Type != "" {
		annots = append(annots, a.Type)
	}
	annots = append(annots, a.Meta...)
	return a.Term.String() + "{" + strings.Join(annots, ",") + "}"
}

func (a Annotated) Equal(other Term) bool {
	o, ok := other.(Annotated)
	if !ok || a.Type != o.Type || len(a.Meta) != len(o.Meta) {
		return false
	}
	for i := range a.Meta {
		if a.Meta[i] != o.Meta[i] {
			return false
		}
	}
	return a.Term.Equal(o.Term)
}

// Strip removes annotations, returning the underlying basic term.
func Strip(t Term) Term {
	if a, ok := t.(Annotated); ok {
		return a.Term
	}
	return t
}

func joinTerms(terms []Term) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}

func termsEqual(a, b []Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
