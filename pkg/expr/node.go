// Package expr implements the deferred expression graph: typed literal
// and table value nodes, operator nodes built from a static catalog,
// and application wrappers carrying the resolved operator types.
package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/strata-dev/strata/pkg/shape"
)

// Kind stratifies graph nodes for the pipeline's topological passes.
type Kind int

const (
	OP Kind = iota
	APP
	VAL
)

func (k Kind) String() string {
	switch k {
	case OP:
		return "op"
	case APP:
		return "app"
	case VAL:
		return "val"
	}
	return "unknown"
}

// Node is one vertex of the expression graph. Nodes are immutable
// after construction and may be shared between graphs.
type Node interface {
	Kind() Kind
	Name() string
	Children() []Node
	Shape() shape.Term
	Class() Eclass
}

// UnknownExpressionError reports an operand with no type judgement.
type UnknownExpressionError struct {
	Value any
}

func (e UnknownExpressionError) Error() string {
	return fmt.Sprintf("unknown object in expression: %v", e.Value)
}

// Typeof is the value deconstructor, mapping graph nodes to type
// algebra terms.
func Typeof(n Node) (shape.Term, error) {
	switch n := n.(type) {
	case *App:
		return n.Cod, nil
	case *IntNode:
		return shape.Int64, nil
	case *FloatNode:
		return shape.Float64, nil
	case *StringNode:
		return shape.String, nil
	case *IndexNode:
		return shape.Object, nil
	case *Table:
		return n.Shape(), nil
	case *OpNode:
		return n.Shape(), nil
	}
	return nil, UnknownExpressionError{Value: n}
}

// system is the type system judgements are made in: the structural
// unifier, the top type, and Typeof over graph nodes.
var system = shape.TypeSystem{
	Unify: shape.Unify,
	Top:   shape.Top,
	TypeOf: func(operand any) (shape.Term, error) {
		n, ok := operand.(Node)
		if !ok {
			return nil, UnknownExpressionError{Value: operand}
		}
		return Typeof(n)
	},
}

//------------------------------------------------------------------------
// Values
//------------------------------------------------------------------------

// IntNode is an integer literal leaf.
type IntNode struct {
	Val int64
}

func (n *IntNode) Kind() Kind        { return VAL }
func (n *IntNode) Name() string      { return strconv.FormatInt(n.Val, 10) }
func (n *IntNode) Children() []Node  { return nil }
func (n *IntNode) Shape() shape.Term { return shape.Int64 }
func (n *IntNode) Class() Eclass     { return Manifest }

// FloatNode is a floating point literal leaf.
type FloatNode struct {
	Val float64
}

func (n *FloatNode) Kind() Kind        { return VAL }
func (n *FloatNode) Name() string      { return strconv.FormatFloat(n.Val, 'g', -1, 64) }
func (n *FloatNode) Children() []Node  { return nil }
func (n *FloatNode) Shape() shape.Term { return shape.Float64 }
func (n *FloatNode) Class() Eclass     { return Manifest }

// StringNode is a string literal leaf.
type StringNode struct {
	Val string
}

func (n *StringNode) Kind() Kind        { return VAL }
func (n *StringNode) Name() string      { return n.Val }
func (n *StringNode) Children() []Node  { return nil }
func (n *StringNode) Shape() shape.Term { return shape.String }
func (n *StringNode) Class() Eclass     { return Manifest }

// IndexNode is a literal index tuple, the second operand of a slicing
// operation.
type IndexNode struct {
	Idx []int
}

func (n *IndexNode) Kind() Kind { return VAL }

func (n *IndexNode) Name() string {
	parts := make([]string, len(n.Idx))
	for i, v := range n.Idx {
		parts[i] = strconv.Itoa(v)
	}
	return "Index(" + strings.Join(parts, ", ") + ")"
}

func (n *IndexNode) Children() []Node  { return nil }
func (n *IndexNode) Shape() shape.Term { return shape.Object }
func (n *IndexNode) Class() Eclass     { return Manifest }

//------------------------------------------------------------------------
// Tables
//------------------------------------------------------------------------

// Table is an n-dimensional value node. A table constructed from data
// is Manifest; a table declared by shape alone is Delayed and acquires
// data only at evaluation.
type Table struct {
	name  string
	shape shape.Term
	data  []Node
	class Eclass
}

// NewTable ingests raw data into a manifest table. A nil datashape
// infers one from the ingested elements, falling back to Dynamic.
func NewTable(data []any, ds shape.Term, cfg IngestConfig) (*Table, error) {
	elems, err := Ingest(data, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "table construction")
	}
	if ds == nil {
		ds = inferTableShape(elems)
	}
	return &Table{shape: ds, data: elems, class: Manifest}, nil
}

// DeclareTable builds a delayed table from a name and shape alone.
func DeclareTable(name string, ds shape.Term) *Table {
	return &Table{name: name, shape: ds, class: Delayed}
}

// anonTable wraps an ingested nested collection.
func anonTable(elems []Node) *Table {
	return &Table{shape: inferTableShape(elems), data: elems, class: Manifest}
}

func inferTableShape(children []Node) shape.Term {
	if len(children) == 0 {
		return shape.Dynamic
	}
	measures := make([]*shape.CType, 0, len(children))
	for _, c := range children {
		t, err := Typeof(c)
		if err != nil || !simple(c) {
			return shape.Dynamic
		}
		m, ok := shape.SimpleType(t)
		if !ok {
			return shape.Dynamic
		}
		measures = append(measures, m)
	}
	m, err := shape.Promote(measures...)
	if err != nil {
		return shape.Dynamic
	}
	return shape.NewDataShape(shape.Fixed{Val: len(children)}, m)
}

func (t *Table) Kind() Kind { return VAL }

func (t *Table) Name() string {
	if t.name != "" {
		return t.name
	}
	return "Table"
}

// Children is empty: a table is a graph leaf. Its ingested elements
// are backing data, not graph dependencies.
func (t *Table) Children() []Node { return nil }

// Data returns the ingested element nodes of a manifest table.
func (t *Table) Data() []Node { return t.data }

func (t *Table) Shape() shape.Term { return t.shape }
func (t *Table) Class() Eclass     { return t.class }

// Index builds a slicing node selecting a single element.
func (t *Table) Index(idx ...int) Node {
	return sliceNode(t, &IndexNode{Idx: idx})
}

// Slice builds a slicing node over a start/stop/step window.
func (t *Table) Slice(start, stop, step int) Node {
	return sliceNode(t, &IndexNode{Idx: []int{start, stop, step}})
}

func sliceNode(t *Table, ndx *IndexNode) Node {
	return newOpNode(getitemOp, []Node{t, ndx})
}

//------------------------------------------------------------------------
// Operators
//------------------------------------------------------------------------

// OpNode is a typed operator over a set of operand nodes.
type OpNode struct {
	Def      *OpDef
	Operands []Node

	shape shape.Term
	class Eclass
}

func newOpNode(def *OpDef, operands []Node) *OpNode {
	op := &OpNode{Def: def, Operands: operands}

	// If every operand is a simple numeric literal and the operator is
	// arithmetic the result shape is already decidable. Otherwise it
	// stays Dynamic until the pipeline resolves it.
	op.shape = shape.Dynamic
	if def.Arithmetic && allSimple(operands) {
		measures := make([]*shape.CType, len(operands))
		for i, o := range operands {
			t, _ := Typeof(o)
			measures[i], _ = shape.SimpleType(t)
		}
		if m, err := shape.Promote(measures...); err == nil {
			op.shape = m
		}
	}

	op.class = Delayed
	for _, o := range operands {
		op.class = InferEclass(op.class, o.Class())
	}
	return op
}

func (n *OpNode) Kind() Kind        { return OP }
func (n *OpNode) Name() string      { return n.Def.Name }
func (n *OpNode) Children() []Node  { return n.Operands }
func (n *OpNode) Shape() shape.Term { return n.shape }
func (n *OpNode) Class() Eclass     { return n.class }

// Opaque reports whether nothing is known about the operator's types:
// values go in, values come out, and nothing can be checked.
func (n *OpNode) Opaque() bool { return n.Def.Signature == "" }

func allSimple(operands []Node) bool {
	for _, o := range operands {
		if !simple(o) {
			return false
		}
	}
	return true
}

func simple(n Node) bool {
	switch n.(type) {
	case *IntNode, *FloatNode:
		return true
	}
	return false
}

//------------------------------------------------------------------------
// Application
//------------------------------------------------------------------------

// App is the application of an operator producing a concrete value:
// 2 + 3 builds App(Op(add, 2, 3)). The wrapper carries the resolved
// domain and codomain of this particular application.
type App struct {
	Operator *OpNode
	Dom      []shape.Term
	Cod      shape.Term
	Opaque   bool
}

func newApp(op *OpNode) *App {
	sat, err := Check(op)
	if err != nil {
		// Construction never blocks on a failed judgement: the
		// application is opaque and the conflict surfaces at
		// evaluation.
		return &App{Operator: op, Cod: shape.Top, Opaque: true}
	}
	return &App{Operator: op, Dom: sat.Dom, Cod: sat.Cod, Opaque: sat.Opaque}
}

// Check judges an operator node against its catalog signature.
func Check(op *OpNode) (shape.Satisfies, error) {
	if op.Opaque() {
		return shape.Satisfies{Cod: shape.Top, Opaque: true}, nil
	}
	operands := make([]any, len(op.Operands))
	for i, o := range op.Operands {
		operands[i] = o
	}
	return shape.CheckSignature(op.Def.Signature, operands, op.Def.Dom, system, op.Def.Commutative)
}

func (a *App) Kind() Kind        { return APP }
func (a *App) Name() string      { return "App" }
func (a *App) Children() []Node  { return []Node{a.Operator} }
func (a *App) Shape() shape.Term { return a.Operator.Shape() }
func (a *App) Class() Eclass     { return a.Operator.Class() }

//------------------------------------------------------------------------
// Construction
//------------------------------------------------------------------------

// GenerateNode ingests raw arguments, looks the operator up in the
// catalog, and builds the operator node. Unary and binary operators
// come back wrapped in an App carrying their resolved types; variadic
// operators come back bare.
func GenerateNode(name string, arity int, args []any, cfg IngestConfig) (Node, error) {
	operands, err := Ingest(args, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "operator %s", name)
	}

	def := LookupOp(name)
	if arity >= 0 && len(operands) != arity {
		return nil, errors.Errorf("operator %s expects %d operands, got %d", name, arity, len(operands))
	}

	op := newOpNode(def, operands)
	if arity == 1 || arity == 2 {
		return newApp(op), nil
	}
	return op, nil
}
