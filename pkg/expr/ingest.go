package expr

import (
	"fmt"
	"reflect"

	"github.com/strata-dev/strata/pkg/shape"
)

// IngestConfig bounds the conversion of raw operand collections into
// graph nodes. There are no package-level knobs: callers thread a
// config explicitly, usually DefaultIngestConfig.
type IngestConfig struct {
	MaxRecursion int
	MaxArguments int
	Sample       int
}

// DefaultIngestConfig returns the standard ingestion bounds.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		MaxRecursion: 25,
		MaxArguments: 1000,
		Sample:       100,
	}
}

// RecursionLimitError reports argument nesting past the configured
// depth.
type RecursionLimitError struct {
	Depth int
}

func (e RecursionLimitError) Error() string {
	return fmt.Sprintf("maximum recursion depth %d reached while ingesting arguments", e.Depth)
}

// TooManyArgumentsError reports a collection too large to build an
// expression graph from.
type TooManyArgumentsError struct {
	Count int
	Limit int
}

func (e TooManyArgumentsError) Error() string {
	return fmt.Sprintf("too many arguments to build expression graph: %d (limit %d)", e.Count, e.Limit)
}

// Ingest converts a possibly heterogeneous, possibly nested collection
// of raw operands into graph nodes. Scalars become typed literals,
// nodes pass through, and nested slices become anonymous tables.
func Ingest(args []any, cfg IngestConfig) ([]Node, error) {
	return ingest(args, 0, cfg)
}

func ingest(args []any, depth int, cfg IngestConfig) ([]Node, error) {
	if depth > cfg.MaxRecursion {
		return nil, RecursionLimitError{Depth: depth}
	}
	if len(args) == 0 {
		return nil, nil
	}
	if len(args) >= cfg.MaxArguments {
		return nil, TooManyArgumentsError{Count: len(args), Limit: cfg.MaxArguments}
	}

	// If a sample off the head of the collection is type homogeneous
	// the rest very likely is too, and converts in one pass without
	// per-element dispatch.
	sample := args
	if cfg.Sample > 0 && len(sample) > cfg.Sample {
		sample = sample[:cfg.Sample]
	}

	// The sample only suggests homogeneity: an element past the sampled
	// head may still differ, so every assertion is checked and the first
	// mismatch abandons the fast pass for per-element dispatch.
	if homogeneous(sample) {
		if out, ok := ingestUniform(args); ok {
			return out, nil
		}
	}

	out := make([]Node, 0, len(args))
	for _, a := range args {
		n, err := ingestValue(a, depth, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// ingestUniform converts a collection whose sampled head was one
// scalar kind in a single pass. It reports false when the head kind
// has no fast path or a later element breaks the run.
func ingestUniform(args []any) ([]Node, bool) {
	switch args[0].(type) {
	case int:
		out := make([]Node, len(args))
		for i, a := range args {
			v, ok := a.(int)
			if !ok {
				return nil, false
			}
			out[i] = &IntNode{Val: int64(v)}
		}
		return out, true
	case int64:
		out := make([]Node, len(args))
		for i, a := range args {
			v, ok := a.(int64)
			if !ok {
				return nil, false
			}
			out[i] = &IntNode{Val: v}
		}
		return out, true
	case float64:
		out := make([]Node, len(args))
		for i, a := range args {
			v, ok := a.(float64)
			if !ok {
				return nil, false
			}
			out[i] = &FloatNode{Val: v}
		}
		return out, true
	case string:
		out := make([]Node, len(args))
		for i, a := range args {
			v, ok := a.(string)
			if !ok {
				return nil, false
			}
			out[i] = &StringNode{Val: v}
		}
		return out, true
	}
	return nil, false
}

func ingestValue(a any, depth int, cfg IngestConfig) (Node, error) {
	switch v := a.(type) {
	case Node:
		return v, nil
	case int:
		return &IntNode{Val: int64(v)}, nil
	case int64:
		return &IntNode{Val: v}, nil
	case float64:
		return &FloatNode{Val: v}, nil
	case string:
		return &StringNode{Val: v}, nil
	case []any:
		children, err := ingest(v, depth+1, cfg)
		if err != nil {
			return nil, err
		}
		return anonTable(children), nil
	}
	return nil, shape.UnknownTypeError{Name: fmt.Sprintf("%T", a)}
}

// homogeneous reports whether every sampled element shares one
// concrete type. Comparing reflect types is cheap relative to a full
// per-element dispatch over a large collection.
func homogeneous(sample []any) bool {
	if len(sample) == 0 {
		return false
	}
	head := reflect.TypeOf(sample[0])
	for _, a := range sample[1:] {
		if reflect.TypeOf(a) != head {
			return false
		}
	}
	return true
}
