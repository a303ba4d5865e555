package shape

import (
	"fmt"
	"sync"
)

// The registry is the process-wide namespace mapping names to terms.
// Registration is append-only and write-once-per-key: once a name is
// bound, concurrent readers need no coordination, and rebinding is an
// error.

// UnknownTypeError reports a registry lookup miss.
type UnknownTypeError struct {
	Name string
}

func (e UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type: %s", e.Name)
}

// DuplicateTypeError reports an attempt to rebind a registered name.
type DuplicateTypeError struct {
	Name string
}

func (e DuplicateTypeError) Error() string {
	return fmt.Sprintf("type already registered: %s", e.Name)
}

var registry = struct {
	sync.RWMutex
	terms map[string]Term
}{terms: make(map[string]Term)}

// Register binds a name to a term. Rebinding an existing name fails
// with DuplicateTypeError.
func Register(name string, t Term) error {
	registry.Lock()
	defer registry.Unlock()
	if _, dup := registry.terms[name]; dup {
		return DuplicateTypeError{Name: name}
	}
	registry.terms[name] = t
	return nil
}

// Lookup resolves a registered name, failing with UnknownTypeError
// when absent.
func Lookup(name string) (Term, error) {
	registry.RLock()
	defer registry.RUnlock()
	t, ok := registry.terms[name]
	if !ok {
		return nil, UnknownTypeError{Name: name}
	}
	return t, nil
}

// Registered reports whether a name is bound.
func Registered(name string) bool {
	registry.RLock()
	defer registry.RUnlock()
	_, ok := registry.terms[name]
	return ok
}

func mustRegister(name string, t Term) {
	if err := Register(name, t); err != nil {
		panic(err)
	}
}

//------------------------------------------------------------------------
// Machine types
//------------------------------------------------------------------------

// At the type level these are all singletons; constructors take no
// arguments.
var (
	Bool = newCType(KindBool, 8, "bool")
	Char = newCType(KindChar, 8, "char")

	Int8  = newCType(KindInt, 8, "int8")
	Int16 = newCType(KindInt, 16, "int16")
	Int32 = newCType(KindInt, 32, "int32")
	Int64 = newCType(KindInt, 64, "int64")

	Uint8  = newCType(KindUint, 8, "uint8")
	Uint16 = newCType(KindUint, 16, "uint16")
	Uint32 = newCType(KindUint, 32, "uint32")
	Uint64 = newCType(KindUint, 64, "uint64")

	Float16  = newCType(KindFloat, 16, "float16")
	Float32  = newCType(KindFloat, 32, "float32")
	Float64  = newCType(KindFloat, 64, "float64")
	Float128 = newCType(KindFloat, 128, "float128")

	Complex64  = newCType(KindComplex, 64, "complex64")
	Complex128 = newCType(KindComplex, 128, "complex128")
	Complex256 = newCType(KindComplex, 256, "complex256")

	String = newCType(KindString, 0, "string")
	Void   = newCType(KindVoid, 0, "void")
	Object = newCType(KindObject, 0, "object")

	Timedelta64 = newCType(KindTimedelta, 64, "timedelta64")
	Datetime64  = newCType(KindDatetime, 64, "datetime64")
)

// Builtins lists every built-in measure.
var Builtins = []*CType{
	Bool, Char,
	Int8, Int16, Int32, Int64,
	Uint8, Uint16, Uint32, Uint64,
	Float16, Float32, Float64, Float128,
	Complex64, Complex128, Complex256,
	String, Void, Object,
	Timedelta64, Datetime64,
}

func init() {
	for _, t := range Builtins {
		mustRegister(t.Name(), t)
	}
	mustRegister("NA", NA)
	mustRegister("Stream", Stream)
	mustRegister("?", Dynamic)
	mustRegister("top", Top)
}
