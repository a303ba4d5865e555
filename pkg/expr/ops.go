package expr

import (
	"github.com/strata-dev/strata/pkg/shape"
)

// Identity names an operator's identity element, when it has one.
type Identity int

const (
	NoIdentity Identity = iota
	Zero
	One
)

// OpDef is one entry of the static operator catalog: arity, the type
// signature checked at application time, per-operand domain
// constraints, and the algebraic properties rewrites may rely on.
type OpDef struct {
	Name      string
	Arity     int
	Signature string
	Dom       []shape.Domain

	Identity     Identity
	Commutative  bool
	Associative  bool
	Idempotent   bool
	Nilpotent    bool
	Sideffectful bool

	// Arithmetic operators over simple literals have an eagerly
	// decidable result shape via promotion.
	Arithmetic bool
}

var numeric = shape.Domain{
	shape.Int8, shape.Int16, shape.Int32, shape.Int64,
	shape.Uint8, shape.Uint16, shape.Uint32, shape.Uint64,
	shape.Float16, shape.Float32, shape.Float64, shape.Float128,
	shape.Complex64, shape.Complex128, shape.Complex256,
}

var binaryUniversal = []shape.Domain{shape.Universal, shape.Universal}

var catalog = map[string]*OpDef{
	"add": {
		Name: "add", Arity: 2, Signature: "a -> a -> a", Dom: binaryUniversal,
		Identity: Zero, Commutative: true, Associative: true, Arithmetic: true,
	},
	"sub": {
		Name: "sub", Arity: 2, Signature: "a -> a -> a", Dom: binaryUniversal,
		Identity: Zero, Arithmetic: true,
	},
	"mul": {
		Name: "mul", Arity: 2, Signature: "a -> a -> a", Dom: binaryUniversal,
		Identity: One, Commutative: true, Associative: true, Arithmetic: true,
	},
	"div": {
		Name: "div", Arity: 2, Signature: "a -> a -> a", Dom: binaryUniversal,
		Identity: One, Arithmetic: true,
	},
	"mod": {
		Name: "mod", Arity: 2, Signature: "a -> a -> a", Dom: binaryUniversal,
		Arithmetic: true,
	},
	"pow": {
		Name: "pow", Arity: 2, Signature: "a -> a -> a", Dom: binaryUniversal,
		Identity: One, Arithmetic: true,
	},
	"neg": {
		Name: "neg", Arity: 1, Signature: "a -> a", Dom: []shape.Domain{numeric},
		Nilpotent: true, Arithmetic: true,
	},
	"abs": {
		Name: "abs", Arity: 1, Signature: "a -> a", Dom: []shape.Domain{numeric},
		Idempotent: true, Arithmetic: true,
	},
	"transpose": {
		Name: "transpose", Arity: 1, Signature: "a -> a", Dom: []shape.Domain{shape.Universal},
		Nilpotent: true,
	},
	"eq": {Name: "eq", Arity: 2, Signature: "a -> a -> bool", Dom: binaryUniversal, Commutative: true},
	"ne": {Name: "ne", Arity: 2, Signature: "a -> a -> bool", Dom: binaryUniversal, Commutative: true},
	"lt": {Name: "lt", Arity: 2, Signature: "a -> a -> bool", Dom: binaryUniversal},
	"gt": {Name: "gt", Arity: 2, Signature: "a -> a -> bool", Dom: binaryUniversal},
	"le": {Name: "le", Arity: 2, Signature: "a -> a -> bool", Dom: binaryUniversal},
	"ge": {Name: "ge", Arity: 2, Signature: "a -> a -> bool", Dom: binaryUniversal},
}

// getitemOp has no signature: slicing is opaque until evaluation.
var getitemOp = &OpDef{Name: "getitem", Arity: 2}

// LookupOp resolves an operator name against the catalog. Unknown
// names come back as opaque variadic operators rather than failing:
// nothing can be checked about them, but the graph still builds.
func LookupOp(name string) *OpDef {
	if def, ok := catalog[name]; ok {
		return def
	}
	return &OpDef{Name: name, Arity: -1}
}

//------------------------------------------------------------------------
// Operator surface
//------------------------------------------------------------------------

// The language surface forwards every operator through GenerateNode
// rather than generating per-operator methods.

func binary(name string, a, b any) (Node, error) {
	return GenerateNode(name, 2, []any{a, b}, DefaultIngestConfig())
}

func unary(name string, a any) (Node, error) {
	return GenerateNode(name, 1, []any{a}, DefaultIngestConfig())
}

func Add(a, b any) (Node, error) { return binary("add", a, b) }
func Sub(a, b any) (Node, error) { return binary("sub", a, b) }
func Mul(a, b any) (Node, error) { return binary("mul", a, b) }
func Div(a, b any) (Node, error) { return binary("div", a, b) }
func Mod(a, b any) (Node, error) { return binary("mod", a, b) }
func Pow(a, b any) (Node, error) { return binary("pow", a, b) }

func Eq(a, b any) (Node, error) { return binary("eq", a, b) }
func Ne(a, b any) (Node, error) { return binary("ne", a, b) }
func Lt(a, b any) (Node, error) { return binary("lt", a, b) }
func Gt(a, b any) (Node, error) { return binary("gt", a, b) }
func Le(a, b any) (Node, error) { return binary("le", a, b) }
func Ge(a, b any) (Node, error) { return binary("ge", a, b) }

func Neg(a any) (Node, error)       { return unary("neg", a) }
func Abs(a any) (Node, error)       { return unary("abs", a) }
func Transpose(a any) (Node, error) { return unary("transpose", a) }
