package shape

import "fmt"

// IncommensurableError reports two terms with no defined join.
type IncommensurableError struct {
	Left  Term
	Right Term
}

func (e IncommensurableError) Error() string {
	return fmt.Sprintf("cannot unify %s with %s: no defined join", e.Left, e.Right)
}

// The promotion lattice is the join of an explicit embedding: every
// numeric measure maps to a (rank, width) point, joins are taken
// componentwise, and the result is rounded up to the nearest concrete
// width for its rank. Rounding up is a closure operation, which is what
// makes the join associative as well as commutative and idempotent.
//
// Ranks are bool < char < unsigned < signed < float < complex, and
// complex widths are measured per component, so float64 joined with
// complex64 widens to complex128 rather than losing precision.
//
// Non-numeric measures (string, void, object, datetime64, timedelta64)
// join only with themselves.

type latticePoint struct {
	rank  int
	width int
}

func embed(t *CType) (latticePoint, bool) {
	switch t.Kind() {
	case KindBool:
		return latticePoint{0, 8}, true
	case KindChar:
		return latticePoint{1, 8}, true
	case KindUint:
		return latticePoint{2, t.Width()}, true
	case KindInt:
		return latticePoint{3, t.Width()}, true
	case KindFloat:
		return latticePoint{4, t.Width()}, true
	case KindComplex:
		return latticePoint{5, t.Width() / 2}, true
	}
	return latticePoint{}, false
}

// widthMenu lists the concrete widths available at each rank; rounding
// a joined width up to the menu keeps the result a real machine type.
var widthMenu = [][]int{
	{8},               // bool
	{8},               // char
	{8, 16, 32, 64},   // uint
	{8, 16, 32, 64},   // int
	{16, 32, 64, 128}, // float
	{32, 64, 128},     // complex, per component
}

func concretize(p latticePoint) *CType {
	menu := widthMenu[p.rank]
	width := menu[len(menu)-1]
	for _, w := range menu {
		if w >= p.width {
			width = w
			break
		}
	}
	switch p.rank {
	case 0:
		return Bool
	case 1:
		return Char
	case 2:
		return lookupWidth(KindUint, width)
	case 3:
		return lookupWidth(KindInt, width)
	case 4:
		return lookupWidth(KindFloat, width)
	default:
		return lookupWidth(KindComplex, width*2)
	}
}

func lookupWidth(kind MeasureKind, width int) *CType {
	for _, t := range Builtins {
		if t.Kind() == kind && t.Width() == width {
			return t
		}
	}
	// The menus only name widths that exist.
	panic(fmt.Sprintf("promote: no builtin for kind %d width %d", kind, width))
}

func joinMeasure(a, b *CType) (*CType, error) {
	if a.Equal(b) {
		return a, nil
	}
	pa, okA := embed(a)
	pb, okB := embed(b)
	if !okA || !okB {
		// string, void, object, datetime64 and timedelta64 join only
		// with themselves.
		return nil, IncommensurableError{Left: a, Right: b}
	}
	joined := latticePoint{rank: max(pa.rank, pb.rank), width: max(pa.width, pb.width)}
	return concretize(joined), nil
}

// Promote returns the measure produced by folding the promotion join
// over the given measures. The join is total over the numeric builtins,
// associative, commutative and idempotent; pairs outside the lattice
// fail with IncommensurableError.
func Promote(measures ...*CType) (*CType, error) {
	if len(measures) == 0 {
		return nil, fmt.Errorf("promote: no operands")
	}
	out := measures[0]
	for _, m := range measures[1:] {
		joined, err := joinMeasure(out, m)
		if err != nil {
			return nil, err
		}
		out = joined
	}
	return out, nil
}

// SimpleType erases a term to the measure relevant for promotion:
// Fixed and Integer dimensions erase to int64, and measures pass
// through. Terms with no simple erasure report false.
func SimpleType(t Term) (*CType, bool) {
	switch t := t.(type) {
	case *CType:
		return t, true
	case Fixed, Integer:
		return Int64, true
	case *DataShape:
		if m, ok := t.Measure(); ok {
			if ct, ok := m.(*CType); ok {
				return ct, true
			}
		}
	}
	return nil, false
}
