package engine

import (
	"log/slog"

	"github.com/strata-dev/strata/pkg/aterm"
	"github.com/strata-dev/strata/pkg/expr"
)

// Context threads intermediate results between pipeline passes. Each
// pass works on its own copy: a pass never mutates its predecessor's
// view, so any stage's output can be inspected independently.
type Context struct {
	Vals     []expr.Node
	Ops      []expr.Node
	OpTerms  []aterm.Term
	Hints    map[string]string
	Operands map[string]expr.Node
	Output   aterm.Term
	Plan     *Plan
}

func (c Context) clone() Context {
	out := c
	out.Vals = append([]expr.Node(nil), c.Vals...)
	out.Ops = append([]expr.Node(nil), c.Ops...)
	out.OpTerms = append([]aterm.Term(nil), c.OpTerms...)
	if c.Hints != nil {
		out.Hints = make(map[string]string, len(c.Hints))
		for k, v := range c.Hints {
			out.Hints[k] = v
		}
	}
	if c.Operands != nil {
		out.Operands = make(map[string]expr.Node, len(c.Operands))
		for k, v := range c.Operands {
			out.Operands[k] = v
		}
	}
	return out
}

// Pass is one pipeline stage, threading a context and graph through.
type Pass func(Context, expr.Node) (Context, expr.Node, error)

// Pipeline is the fixed sequence of passes compiling a graph into an
// execution plan.
type Pipeline struct {
	table  *aterm.Table
	passes []Pass
}

// New builds a pipeline resolving operators against the given dispatch
// table; nil uses the process-wide default table.
func New(table *aterm.Table) *Pipeline {
	if table == nil {
		table = aterm.Default
	}
	p := &Pipeline{table: table}
	p.passes = []Pass{p.flow, p.environment, p.lower, p.plan}
	return p
}

// Run threads the graph through every pass and returns the final plan.
func (p *Pipeline) Run(graph expr.Node) (*Plan, error) {
	ctx := Context{}
	var err error
	for _, pass := range p.passes {
		ctx, graph, err = pass(ctx, graph)
		if err != nil {
			return nil, err
		}
	}
	return ctx.Plan, nil
}

// flow stratifies the graph into value and operator sequences.
func (p *Pipeline) flow(ctx Context, graph expr.Node) (Context, expr.Node, error) {
	ctx = ctx.clone()
	ctx.Vals = Topovals(graph)
	ctx.Ops = Topops(graph)
	slog.Debug("pipeline flow", "vals", len(ctx.Vals), "ops", len(ctx.Ops))
	return ctx, graph, nil
}

// environment installs the hints map backend-specific passes annotate.
func (p *Pipeline) environment(ctx Context, graph expr.Node) (Context, expr.Node, error) {
	ctx = ctx.clone()
	ctx.Hints = map[string]string{}
	return ctx, graph, nil
}
