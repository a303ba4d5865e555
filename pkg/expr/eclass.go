package expr

// Eclass is a node's evaluation class. Manifest nodes carry concrete
// backing data; Delayed nodes are pure graph with no data yet. The
// class decides whether an operation forces immediate evaluation or
// extends the deferred graph.
type Eclass int

const (
	Delayed Eclass = iota
	Manifest
)

func (e Eclass) String() string {
	if e == Manifest {
		return "manifest"
	}
	return "delayed"
}

// InferEclass is the closure rule for binary construction: the result
// is Manifest when either operand is.
func InferEclass(a, b Eclass) Eclass {
	if a == Manifest || b == Manifest {
		return Manifest
	}
	return Delayed
}
