package engine

import (
	"log/slog"

	"github.com/kr/pretty"

	"github.com/strata-dev/strata/pkg/aterm"
	"github.com/strata-dev/strata/pkg/expr"
)

// Instruction pairs one lowered operator term with the implementation
// and cost dispatch resolved for it.
type Instruction struct {
	Term aterm.Term
	Impl any
	Cost float64
}

// Plan is the execution plan handed to an evaluator: the resolved
// instructions in dependency order, the operand table wiring lowered
// leaves back to graph nodes, and the rewritten root term.
type Plan struct {
	Instructions []Instruction
	Operands     map[string]expr.Node
	Output       aterm.Term
}

// Dump renders the plan for inspection.
func (p *Plan) Dump() string {
	return pretty.Sprint(p)
}

// plan resolves every operator term against the dispatch table, in
// dependency order, producing the linear instruction sequence.
func (p *Pipeline) plan(ctx Context, graph expr.Node) (Context, expr.Node, error) {
	ctx = ctx.clone()

	instrs := make([]Instruction, 0, len(ctx.Ops))
	for _, term := range ctx.OpTerms {
		res, err := p.table.Dispatch(term)
		if err != nil {
			return Context{}, nil, err
		}
		slog.Debug("pipeline plan",
			"term", term.String(),
			"pattern", res.Pattern,
			"cost", res.Cost)
		instrs = append(instrs, Instruction{Term: term, Impl: res.Impl, Cost: res.Cost})
	}

	ctx.Plan = &Plan{
		Instructions: instrs,
		Operands:     ctx.Operands,
		Output:       ctx.Output,
	}
	return ctx, graph, nil
}
