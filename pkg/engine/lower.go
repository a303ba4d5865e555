package engine

import (
	"fmt"
	"log/slog"

	"github.com/iancoleman/strcase"

	"github.com/strata-dev/strata/pkg/aterm"
	"github.com/strata-dev/strata/pkg/expr"
	"github.com/strata-dev/strata/pkg/shape"
)

// DeferredDatashapeError reports a value node whose datashape is still
// Dynamic where the plan structurally requires a concrete one.
type DeferredDatashapeError struct {
	Node expr.Node
}

func (e DeferredDatashapeError) Error() string {
	return fmt.Sprintf("datashape of %s deferred until evaluation", e.Node.Name())
}

func dshapeAnnotation(t shape.Term) string {
	return fmt.Sprintf("dshape(%q)", t.String())
}

// lower rewrites the graph into pattern-matchable terms: each value
// node becomes a numbered Array leaf annotated with its datashape and
// evaluation class, each operator node an application of its
// capitalized name over its lowered operands. The operand table maps
// lowered leaves back to their graph nodes for result wiring.
func (p *Pipeline) lower(ctx Context, graph expr.Node) (Context, expr.Node, error) {
	ctx = ctx.clone()
	ctx.Operands = map[string]expr.Node{}

	lowered := map[expr.Node]aterm.Term{}
	for i, val := range ctx.Vals {
		if val.Shape().Equal(shape.Dynamic) {
			return Context{}, nil, DeferredDatashapeError{Node: val}
		}
		term := aterm.Annotate(
			aterm.NewAppl("Array", aterm.Int{Val: int64(i)}),
			dshapeAnnotation(val.Shape()),
			val.Class().String(),
		)
		lowered[val] = term
		ctx.Operands[term.String()] = val
	}

	var lowerNode func(n expr.Node) (aterm.Term, error)
	lowerNode = func(n expr.Node) (aterm.Term, error) {
		if t, ok := lowered[n]; ok {
			return t, nil
		}
		switch n := n.(type) {
		case *expr.App:
			t, err := lowerOp(n.Operator, n.Cod, lowerNode)
			if err != nil {
				return nil, err
			}
			lowered[n] = t
			lowered[n.Operator] = t
			return t, nil
		case *expr.OpNode:
			t, err := lowerOp(n, nil, lowerNode)
			if err != nil {
				return nil, err
			}
			lowered[n] = t
			return t, nil
		}
		return nil, expr.UnknownExpressionError{Value: n}
	}

	output, err := lowerNode(graph)
	if err != nil {
		return Context{}, nil, err
	}
	ctx.Output = output

	ctx.OpTerms = make([]aterm.Term, len(ctx.Ops))
	for i, op := range ctx.Ops {
		t, ok := lowered[op]
		if !ok {
			// An op outside the root's reach has no lowering.
			return Context{}, nil, expr.UnknownExpressionError{Value: op}
		}
		ctx.OpTerms[i] = t
	}

	slog.Debug("pipeline lower", "output", output.String(), "operands", len(ctx.Operands))
	return ctx, graph, nil
}

// lowerOp lowers one operator node. The shape annotation prefers the
// eagerly decided operator shape, then the application codomain; an
// opaque operator annotates top, mirroring the dynamic-to-top
// judgement of the type system.
func lowerOp(op *expr.OpNode, cod shape.Term, lowerNode func(expr.Node) (aterm.Term, error)) (aterm.Term, error) {
	args := make([]aterm.Term, len(op.Operands))
	for i, child := range op.Operands {
		t, err := lowerNode(child)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}

	s := op.Shape()
	if s.Equal(shape.Dynamic) {
		s = shape.Top
		if cod != nil {
			s = cod
		}
	}

	head := strcase.ToCamel(op.Name())
	return aterm.Annotate(
		aterm.NewAppl(head, args...),
		dshapeAnnotation(s),
		op.Class().String(),
	), nil
}
