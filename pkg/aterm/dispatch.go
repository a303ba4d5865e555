package aterm

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
)

// CostFn prices one candidate implementation for a matched term. The
// captures are the pattern variables bound during the match.
type CostFn func(term Term, caps Captures) float64

// InfiniteCost marks a generic fallback: it is selected only when no
// cheaper specialized implementation matches.
var InfiniteCost = math.Inf(1)

// ConstCost builds a cost function that ignores the term.
func ConstCost(c float64) CostFn {
	return func(Term, Captures) float64 { return c }
}

// NoDispatchError reports a term matched by no installed pattern.
type NoDispatchError struct {
	Term Term
}

func (e NoDispatchError) Error() string {
	return fmt.Sprintf("no implementation matches %s", e.Term)
}

// Resolution is the outcome of a dispatch: the winning implementation,
// its evaluated cost, and the captures from its pattern match.
type Resolution struct {
	Impl     any
	Cost     float64
	Captures Captures
	Pattern  string
}

type binding struct {
	pattern *Pattern
	impl    any
	cost    CostFn
}

// Table is a dispatch table mapping term patterns to candidate
// implementations. Multiple bindings may share a pattern; cost decides
// between them at dispatch time.
type Table struct {
	mu       sync.RWMutex
	bindings []binding
}

// NewTable returns an empty dispatch table.
func NewTable() *Table {
	return &Table{}
}

// Install registers an implementation under a pattern. Duplicate
// pattern strings are permitted: specialized implementations layer
// over fallbacks installed at InfiniteCost.
func (t *Table) Install(pattern string, impl any, cost CostFn) error {
	p, err := ParsePattern(pattern)
	if err != nil {
		return err
	}
	if cost == nil {
		cost = ConstCost(InfiniteCost)
	}
	t.mu.Lock()
	t.bindings = append(t.bindings, binding{pattern: p, impl: impl, cost: cost})
	t.mu.Unlock()
	return nil
}

// Dispatch resolves a term to the cheapest matching implementation.
// Ties break by installation order.
func (t *Table) Dispatch(term Term) (Resolution, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var best Resolution
	found := false
	for _, b := range t.bindings {
		caps, ok := b.pattern.Match(term)
		if !ok {
			continue
		}
		cost := b.cost(term, caps)
		slog.Debug("dispatch candidate",
			"term", term.String(),
			"pattern", b.pattern.String(),
			"cost", cost)
		if !found || cost < best.Cost {
			best = Resolution{Impl: b.impl, Cost: cost, Captures: caps, Pattern: b.pattern.String()}
			found = true
		}
	}
	if !found {
		return Resolution{}, NoDispatchError{Term: term}
	}
	return best, nil
}

// Default is the process-wide dispatch table evaluator backends
// install into.
var Default = NewTable()

// Install registers an implementation in the default table.
func Install(pattern string, impl any, cost CostFn) error {
	return Default.Install(pattern, impl, cost)
}

// Dispatch resolves a term against the default table.
func Dispatch(term Term) (Resolution, error) {
	return Default.Dispatch(term)
}
