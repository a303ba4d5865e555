package shape

import (
	"github.com/pkg/errors"
)

// Env records the variables bound so far during one type-check pass.
// The same environment must be shared across every variable occurrence
// in the pass so that a name occurring twice resolves to one value;
// environments are local to a single call chain and never shared
// across concurrent checks.
type Env map[string]Term

// Clone copies the environment.
func (env Env) Clone() Env {
	out := make(Env, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}

// Unify resolves two terms to a single most-general term, binding free
// variables into env, or fails with IncommensurableError.
//
// Dynamic is absorbing on the "don't know" side: unifying Dynamic with
// any term succeeds and returns the other term.
func Unify(t1, t2 Term, env Env) (Term, error) {
	if t1.Equal(Dynamic) {
		return t2, nil
	}
	if t2.Equal(Dynamic) {
		return t1, nil
	}

	if v, ok := t1.(TypeVar); ok {
		return unifyVar(v, t2, env)
	}
	if v, ok := t2.(TypeVar); ok {
		return unifyVar(v, t1, env)
	}

	if t1.Equal(t2) {
		return t1, nil
	}

	switch a := t1.(type) {
	case *Record:
		if b, ok := t2.(*Record); ok {
			return unifyRecord(a, b, env)
		}

	case Enum:
		if b, ok := t2.(Enum); ok {
			elems, err := unifyAll(a.Elems, b.Elems, env)
			if err != nil {
				return nil, errors.Wrap(err, "enum")
			}
			if elems == nil {
				return nil, IncommensurableError{Left: t1, Right: t2}
			}
			return NewEnum(elems...), nil
		}

	case Union:
		if b, ok := t2.(Union); ok {
			elems, err := unifyAll(a.Elems, b.Elems, env)
			if err != nil {
				return nil, errors.Wrap(err, "union")
			}
			if elems == nil {
				return nil, IncommensurableError{Left: t1, Right: t2}
			}
			return NewUnion(elems...), nil
		}

	case Either:
		if b, ok := t2.(Either); ok {
			left, err := Unify(a.A, b.A, env)
			if err != nil {
				return nil, err
			}
			right, err := Unify(a.B, b.B, env)
			if err != nil {
				return nil, err
			}
			return Either{A: left, B: right}, nil
		}

	case *DataShape:
		if b, ok := t2.(*DataShape); ok {
			operands, err := unifyAll(a.operands, b.operands, env)
			if err != nil {
				return nil, err
			}
			if operands == nil {
				return nil, IncommensurableError{Left: t1, Right: t2}
			}
			return NewDataShape(operands...), nil
		}
	}

	return nil, IncommensurableError{Left: t1, Right: t2}
}

func unifyVar(v TypeVar, t Term, env Env) (Term, error) {
	// A variable unifies with itself; the occurs check below must not
	// see this case.
	if other, ok := t.(TypeVar); ok && other.Symbol == v.Symbol {
		if bound, ok := env[v.Symbol]; ok {
			return bound, nil
		}
		return v, nil
	}
	if bound, ok := env[v.Symbol]; ok {
		resolved, err := Unify(bound, t, env)
		if err != nil {
			return nil, err
		}
		env[v.Symbol] = resolved
		return resolved, nil
	}
	if FreeVars(t)[v.Symbol] {
		return nil, IncommensurableError{Left: v, Right: t}
	}
	env[v.Symbol] = t
	return t, nil
}

func unifyRecord(a, b *Record, env Env) (Term, error) {
	if a.Len() != b.Len() {
		return nil, IncommensurableError{Left: a, Right: b}
	}
	fields := make([]Field, 0, a.Len())
	for _, f := range a.Fields() {
		other, ok := b.Lookup(f.Name)
		if !ok {
			return nil, IncommensurableError{Left: a, Right: b}
		}
		t, err := Unify(f.Type, other, env)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", f.Name)
		}
		fields = append(fields, Field{Name: f.Name, Type: t})
	}
	rec, err := NewRecord(fields...)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// unifyAll unifies positionwise; a nil result with nil error signals an
// arity mismatch for the caller to report against the full terms.
func unifyAll(a, b []Term, env Env) ([]Term, error) {
	if len(a) != len(b) {
		return nil, nil
	}
	out := make([]Term, len(a))
	for i := range a {
		t, err := Unify(a[i], b[i], env)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
