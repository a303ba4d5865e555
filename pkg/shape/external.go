package shape

import (
	"fmt"
	"time"
)

// Interchange with an external dims+measure representation, the
// (shape, dtype) pair of a numeric-array library:
//
//	5, 5, int32  <->  ([5, 5], int32)
//
// Only the representable subset converts: every dimension Fixed, no
// free variables, and a plain measure terminal.

// NotRepresentableError reports a datashape that does not convert to
// the external dims+measure form.
type NotRepresentableError struct {
	Shape  Term
	Reason string
}

func (e NotRepresentableError) Error() string {
	return fmt.Sprintf("shape %s is not representable: %s", e.Shape, e.Reason)
}

// ToExternal downcasts a datashape to a dims+measure pair.
func ToExternal(ds *DataShape) ([]int, *CType, error) {
	if ds.Len() == 0 {
		return nil, nil, NotRepresentableError{Shape: ds, Reason: "empty shape"}
	}
	dims := make([]int, 0, ds.Len()-1)
	for _, dim := range ds.Operands()[:ds.Len()-1] {
		fixed, ok := dim.(Fixed)
		if !ok {
			return nil, nil, NotRepresentableError{Shape: ds, Reason: fmt.Sprintf("dimension %s is not fixed", dim)}
		}
		dims = append(dims, fixed.Val)
	}
	measure, ok := ds.At(ds.Len() - 1).(*CType)
	if !ok {
		return nil, nil, NotRepresentableError{Shape: ds, Reason: fmt.Sprintf("terminal %s is not a measure", ds.At(ds.Len()-1))}
	}
	return dims, measure, nil
}

// FromExternal upcasts a dims+measure pair into a datashape. It is the
// total inverse of ToExternal on the representable subset.
func FromExternal(dims []int, measure *CType) *DataShape {
	operands := make([]Term, 0, len(dims)+1)
	for _, d := range dims {
		operands = append(operands, Fixed{Val: d})
	}
	operands = append(operands, measure)
	return NewDataShape(operands...)
}

// FromScalar returns the measure for a native scalar value.
func FromScalar(v any) (*CType, error) {
	switch v.(type) {
	case bool:
		return Bool, nil
	case int, int64:
		return Int64, nil
	case int8:
		return Int8, nil
	case int16:
		return Int16, nil
	case int32:
		return Int32, nil
	case uint, uint64:
		return Uint64, nil
	case uint8:
		return Uint8, nil
	case uint16:
		return Uint16, nil
	case uint32:
		return Uint32, nil
	case float32:
		return Float32, nil
	case float64:
		return Float64, nil
	case complex64:
		return Complex64, nil
	case complex128:
		return Complex128, nil
	case string:
		return String, nil
	case time.Duration:
		return Timedelta64, nil
	case time.Time:
		return Datetime64, nil
	}
	return nil, UnknownTypeError{Name: fmt.Sprintf("%T", v)}
}
