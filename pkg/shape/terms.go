package shape

import (
	"fmt"
	"strconv"
	"strings"
)

// Term is a node in the shape algebra. Terms are immutable once
// constructed and compare structurally via Equal, never by identity.
type Term interface {
	fmt.Stringer

	// Equal reports structural equality with another term.
	Equal(Term) bool
}

// Freer is implemented by terms that may contain free type variables.
type Freer interface {
	// Free returns the set of free variable symbols in the term.
	Free() map[string]bool
}

// FreeVars collects the free variable symbols of any term.
func FreeVars(t Term) map[string]bool {
	if f, ok := t.(Freer); ok {
		return f.Free()
	}
	return nil
}

//------------------------------------------------------------------------
// Singleton terms
//------------------------------------------------------------------------

type nullTerm struct{}
type dynamicTerm struct{}
type topTerm struct{}

// NA types a polymorphic missing value.
var NA Term = nullTerm{}

// Dynamic is the "don't know" type. It allows an explicit upcast and
// downcast from any type, which is normally not allowed in static type
// systems. Written as ? in the grammar.
var Dynamic Term = dynamicTerm{}

// Top is the universal type. The system is very much not a hierarchy,
// but "top" is the entrenched term so we use it.
var Top Term = topTerm{}

func (nullTerm) String() string { return "NA" }
func (nullTerm) Equal(other Term) bool {
	_, ok := other.(nullTerm)
	return ok
}

func (dynamicTerm) String() string { return "?" }
func (dynamicTerm) Equal(other Term) bool {
	_, ok := other.(dynamicTerm)
	return ok
}

func (topTerm) String() string { return "top" }
func (topTerm) Equal(other Term) bool {
	_, ok := other.(topTerm)
	return ok
}

//------------------------------------------------------------------------
// Measures
//------------------------------------------------------------------------

// MeasureKind classifies the element kind of a CType.
type MeasureKind int

const (
	KindBool MeasureKind = iota
	KindChar
	KindUint
	KindInt
	KindFloat
	KindComplex
	KindString
	KindVoid
	KindObject
	KindDatetime
	KindTimedelta
)

// CType is a named, sized scalar kind mapping uniquely to a native
// machine type. Identity is by canonical name; the registry guarantees
// at most one term per name, so CTypes are shared pointers.
type CType struct {
	kind  MeasureKind
	width int
	name  string
}

func newCType(kind MeasureKind, width int, name string) *CType {
	return &CType{kind: kind, width: width, name: name}
}

// Name returns the canonical registry name, e.g. "int32".
func (t *CType) Name() string { return t.name }

// Kind returns the element kind.
func (t *CType) Kind() MeasureKind { return t.kind }

// Width returns the size of the type in bits. For complex types this is
// the total width, twice the component width.
func (t *CType) Width() int { return t.width }

func (t *CType) String() string { return t.name }

func (t *CType) Equal(other Term) bool {
	o, ok := other.(*CType)
	return ok && t.name == o.name
}

// IsMeasure reports whether a term may terminate a datashape. A Record
// is itself a valid measure.
func IsMeasure(t Term) bool {
	switch t.(type) {
	case *CType, *Record:
		return true
	}
	return false
}

//------------------------------------------------------------------------
// Dimensions
//------------------------------------------------------------------------

// Fixed is an exact dimension extent.
type Fixed struct {
	Val int
}

func (f Fixed) String() string { return strconv.Itoa(f.Val) }

func (f Fixed) Equal(other Term) bool {
	o, ok := other.(Fixed)
	return ok && f.Val == o.Val
}

// Integer is a plain integer at constructor level: a Range bound or an
// Enum member, as opposed to a Fixed toplevel dimension.
type Integer struct {
	Val int
}

func (i Integer) String() string { return strconv.Itoa(i.Val) }

func (i Integer) Equal(other Term) bool {
	o, ok := other.(Integer)
	return ok && i.Val == o.Val
}

// TypeVar is a free variable in the dimension specifier.
type TypeVar struct {
	Symbol string
}

func (v TypeVar) String() string { return v.Symbol }

func (v TypeVar) Equal(other Term) bool {
	o, ok := other.(TypeVar)
	return ok && v.Symbol == o.Symbol
}

func (v TypeVar) Free() map[string]bool {
	return map[string]bool{v.Symbol: true}
}

// Range is a bound or unbound interval [lower, upper) of possible Fixed
// dimensions. The special case [0, inf) is aliased to the type Stream.
type Range struct {
	lower     int
	upper     int
	unbounded bool
}

// NewRange constructs a bounded interval. lower must be below upper.
func NewRange(lower, upper int) (Range, error) {
	if lower >= upper {
		return Range{}, fmt.Errorf("range: must have lower < upper, got [%d, %d)", lower, upper)
	}
	return Range{lower: lower, upper: upper}, nil
}

// NewStreamRange constructs an interval with no upper bound.
func NewStreamRange(lower int) Range {
	return Range{lower: lower, unbounded: true}
}

// Lower returns the inclusive lower bound.
func (r Range) Lower() int { return r.lower }

// Upper returns the exclusive upper bound. ok is false when the range
// is unbounded above.
func (r Range) Upper() (upper int, ok bool) {
	if r.unbounded {
		return 0, false
	}
	return r.upper, true
}

func (r Range) String() string {
	if r.unbounded {
		return fmt.Sprintf("Var(%d, inf)", r.lower)
	}
	return fmt.Sprintf("Var(%d, %d)", r.lower, r.upper)
}

func (r Range) Equal(other Term) bool {
	o, ok := other.(Range)
	return ok && r == o
}

// Stream is the unbounded dimension [0, inf).
var Stream = NewStreamRange(0)

//------------------------------------------------------------------------
// Aggregates
//------------------------------------------------------------------------

// Either is a tagged union with exactly two slots.
type Either struct {
	A Term
	B Term
}

func (e Either) String() string {
	return fmt.Sprintf("Either(%s, %s)", e.A, e.B)
}

func (e Either) Equal(other Term) bool {
	o, ok := other.(Either)
	return ok && e.A.Equal(o.A) && e.B.Equal(o.B)
}

func (e Either) Free() map[string]bool {
	return union(FreeVars(e.A), FreeVars(e.B))
}

// Coproduct is the dual of Product: it constructs sum types A + B.
func Coproduct(a, b Term) Either { return Either{A: a, B: b} }

// Left projects the first slot of a sum.
func Left(e Either) Term { return e.A }

// Right projects the second slot of a sum.
func Right(e Either) Term { return e.B }

// Enum is a finite enumeration of admissible dimension values, in
// order.
type Enum struct {
	Elems []Term
}

func NewEnum(elems ...Term) Enum { return Enum{Elems: elems} }

func (e Enum) String() string {
	return "{" + joinTerms(e.Elems, ", ") + "}"
}

func (e Enum) Equal(other Term) bool {
	o, ok := other.(Enum)
	return ok && termsEqual(e.Elems, o.Elems)
}

func (e Enum) Free() map[string]bool { return unionAll(e.Elems) }

// Union is a tagged set of admissible alternative shapes that may
// occupy the same position.
type Union struct {
	Elems []Term
}

func NewUnion(elems ...Term) Union { return Union{Elems: elems} }

func (u Union) String() string {
	return "Union(" + joinTerms(u.Elems, ", ") + ")"
}

func (u Union) Equal(other Term) bool {
	o, ok := other.(Union)
	return ok && termsEqual(u.Elems, o.Elems)
}

func (u Union) Free() map[string]bool { return unionAll(u.Elems) }

//------------------------------------------------------------------------
// Records
//------------------------------------------------------------------------

// Field is a single named slot of a Record.
type Field struct {
	Name string
	Type Term
}

// Record is a composite structure mapping unique field names to terms.
// Field order is preserved as written for printing and iteration, but
// equality compares the name->term mapping only.
type Record struct {
	fields []Field
	index  map[string]Term
}

// NewRecord constructs a record, rejecting duplicate field names.
func NewRecord(fields ...Field) (*Record, error) {
	index := make(map[string]Term, len(fields))
	for _, f := range fields {
		if _, dup := index[f.Name]; dup {
			return nil, fmt.Errorf("record: duplicate field %q", f.Name)
		}
		index[f.Name] = f.Type
	}
	return &Record{fields: fields, index: index}, nil
}

// NullRecord is the record with no fields. {} equals {} structurally,
// so a single shared value is a convenience, not a requirement.
var NullRecord = &Record{index: map[string]Term{}}

// Fields returns the fields in insertion order.
func (r *Record) Fields() []Field { return r.fields }

// Names returns the field names in insertion order.
func (r *Record) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the term bound to a field name.
func (r *Record) Lookup(name string) (Term, bool) {
	t, ok := r.index[name]
	return t, ok
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.fields) }

func (r *Record) String() string {
	parts := make([]string, len(r.fields))
	for i, f := range r.fields {
		// Composite field values print parenthesized, matching the
		// grammar's NAME ':' '(' rhs ')' form so the text reparses.
		if ds, ok := f.Type.(*DataShape); ok && ds.Len() > 1 {
			parts[i] = fmt.Sprintf("%s: (%s)", f.Name, f.Type)
			continue
		}
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (r *Record) Equal(other Term) bool {
	o, ok := other.(*Record)
	if !ok || len(r.fields) != len(o.fields) {
		return false
	}
	for name, t := range r.index {
		ot, ok := o.index[name]
		if !ok || !t.Equal(ot) {
			return false
		}
	}
	return true
}

func (r *Record) Free() map[string]bool {
	free := map[string]bool{}
	for _, f := range r.fields {
		free = union(free, FreeVars(f.Type))
	}
	return free
}

//------------------------------------------------------------------------
// Pointers
//------------------------------------------------------------------------

// AddrSpace tags a pointer with the memory it refers into. The zero
// value is local memory; remote spaces carry a location key.
type AddrSpace struct {
	remote bool
	key    string
}

// Local is the default address space.
var Local = AddrSpace{}

// RemoteSpace names an address space on another host or array server.
func RemoteSpace(key string) AddrSpace {
	return AddrSpace{remote: true, key: key}
}

// Remote reports whether the space is remote, and its location key.
func (s AddrSpace) Remote() (key string, ok bool) {
	return s.key, s.remote
}

// Ptr is a pointer to a term in some address space.
type Ptr struct {
	Pointee Term
	Space   AddrSpace
}

func (p Ptr) String() string {
	if key, remote := p.Space.Remote(); remote {
		return fmt.Sprintf("Ptr(%s, remote(%s))", p.Pointee, key)
	}
	return fmt.Sprintf("Ptr(%s)", p.Pointee)
}

func (p Ptr) Equal(other Term) bool {
	o, ok := other.(Ptr)
	return ok && p.Space == o.Space && p.Pointee.Equal(o.Pointee)
}

func (p Ptr) Free() map[string]bool { return FreeVars(p.Pointee) }

//------------------------------------------------------------------------
// DataShape
//------------------------------------------------------------------------

// DataShape is an ordered sequence of dimension terms followed by a
// measure: the "shape, shape, ..., measure" convention. A DataShape
// with zero operands is the empty shape.
type DataShape struct {
	operands []Term
}

// NewDataShape builds a datashape from operands, flattening any nested
// composites so that (A,B)*(C,D) == (A,B,C,D).
func NewDataShape(operands ...Term) *DataShape {
	return &DataShape{operands: flatten(operands)}
}

func flatten(ts []Term) []Term {
	out := make([]Term, 0, len(ts))
	for _, t := range ts {
		if ds, ok := t.(*DataShape); ok {
			out = append(out, flatten(ds.operands)...)
		} else {
			out = append(out, t)
		}
	}
	return out
}

// Operands returns the flattened operand sequence.
func (ds *DataShape) Operands() []Term { return ds.operands }

// Len returns the number of operands.
func (ds *DataShape) Len() int { return len(ds.operands) }

// At returns the i'th operand.
func (ds *DataShape) At(i int) Term { return ds.operands[i] }

// Composite reports whether the shape has more than one operand.
func (ds *DataShape) Composite() bool { return len(ds.operands) > 1 }

// Measure returns the final operand when it is a valid measure.
func (ds *DataShape) Measure() (Term, bool) {
	if len(ds.operands) == 0 {
		return nil, false
	}
	last := ds.operands[len(ds.operands)-1]
	return last, IsMeasure(last)
}

func (ds *DataShape) String() string {
	return joinTerms(ds.operands, ", ")
}

func (ds *DataShape) Equal(other Term) bool {
	o, ok := other.(*DataShape)
	return ok && termsEqual(ds.operands, o.operands)
}

func (ds *DataShape) Free() map[string]bool { return unionAll(ds.operands) }

// Product concatenates two shapes into a composite datashape. It is
// associative and flattens nested composites; associativity holds
// structurally, not by identity.
func Product(a, b Term) *DataShape {
	return NewDataShape(expand(a, b)...)
}

func expand(ts ...Term) []Term {
	out := make([]Term, 0, len(ts))
	for _, t := range ts {
		if ds, ok := t.(*DataShape); ok {
			out = append(out, ds.operands...)
		} else {
			out = append(out, t)
		}
	}
	return out
}

// Fst returns the head operand of a composite shape.
func Fst(ds *DataShape) Term { return ds.operands[0] }

// Snd returns the tail of a composite shape.
func Snd(ds *DataShape) *DataShape {
	return &DataShape{operands: ds.operands[1:]}
}

//------------------------------------------------------------------------
// Helpers
//------------------------------------------------------------------------

func joinTerms(ts []Term, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
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

func union(a, b map[string]bool) map[string]bool {
	if len(a) == 0 {
		return b
	}
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func unionAll(ts []Term) map[string]bool {
	free := map[string]bool{}
	for _, t := range ts {
		free = union(free, FreeVars(t))
	}
	return free
}
