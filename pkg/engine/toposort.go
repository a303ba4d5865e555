// Package engine compiles an expression graph into an execution plan:
// a topological sort stratifies the graph into value and operator
// sequences, lowering rewrites it into pattern-matchable terms, and
// dispatch resolves each operator term to an implementation.
package engine

import (
	"github.com/strata-dev/strata/pkg/expr"
)

// collect gathers every node reachable from root, breadth-first,
// deduplicated by identity.
func collect(root expr.Node) []expr.Node {
	var order []expr.Node
	seen := map[expr.Node]bool{}
	queue := []expr.Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true
		order = append(order, n)
		queue = append(queue, n.Children()...)
	}
	return order
}

// Toposort orders the graph rooted at root so dependencies precede
// dependents, then filters by pred.
//
// See: Kahn, Arthur B. (1962), "Topological sorting of large networks"
func Toposort(pred func(expr.Node) bool, root expr.Node) []expr.Node {
	graph := collect(root)

	count := map[expr.Node]int{}
	for _, n := range graph {
		for _, child := range n.Children() {
			count[child]++
		}
	}

	// Ready stack seeded with the zero in-degree nodes. Stack
	// discipline (most recently enqueued first) is the tie-break, and
	// must stay stable for reproducible plans.
	var stack []expr.Node
	for _, n := range graph {
		if count[n] == 0 {
			stack = append(stack, n)
		}
	}

	var result []expr.Node
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		result = append(result, n)

		for _, child := range n.Children() {
			count[child]--
			if count[child] == 0 {
				stack = append(stack, child)
			}
		}
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	var out []expr.Node
	for _, n := range result {
		if pred(n) {
			out = append(out, n)
		}
	}
	return out
}

// Topovals returns the graph's value nodes in dependency order.
func Topovals(root expr.Node) []expr.Node {
	return Toposort(func(n expr.Node) bool { return n.Kind() == expr.VAL }, root)
}

// Topops returns the graph's operator nodes in dependency order.
func Topops(root expr.Node) []expr.Node {
	return Toposort(func(n expr.Node) bool { return n.Kind() == expr.OP }, root)
}
