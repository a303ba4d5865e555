package shape

import (
	"fmt"
	"strings"
)

// Signature-based operator domain checking.
//
// A signature of the form "a -> b -> a -> c" lists one domain variable
// per operand followed by a codomain variable. A name occurring more
// than once among the tokens is rigid: all its occurrences must unify
// to one consistent type across operands. A name occurring exactly
// once is free: its operand need only satisfy the admissible kind set
// declared for that position.

// InvalidSignatureError reports a signature whose token count does not
// match the operands supplied.
type InvalidSignatureError struct {
	Signature string
}

func (e InvalidSignatureError) Error() string {
	return fmt.Sprintf("invalid signature %q", e.Signature)
}

// TypeCheckError reports an operand violating a signature's domain
// constraint. Operand names one offending type; the commutative path
// carries every operand type instead, since no single position is to
// blame when all permutations fail.
type TypeCheckError struct {
	Signature string
	Operand   Term
	Operands  []Term
}

func (e TypeCheckError) Error() string {
	if e.Operand != nil {
		return fmt.Sprintf("signature %q does not permit type %s", e.Signature, e.Operand)
	}
	names := make([]string, len(e.Operands))
	for i, t := range e.Operands {
		names[i] = t.String()
	}
	return fmt.Sprintf("no permutation of (%s) satisfies signature %q", strings.Join(names, ", "), e.Signature)
}

// Domain is the admissible kind set for one operand position. A domain
// containing Top is universal.
type Domain []Term

// Contains reports membership by structural equality, with Top
// admitting everything.
func (d Domain) Contains(t Term) bool {
	for _, m := range d {
		if m.Equal(Top) || m.Equal(t) {
			return true
		}
	}
	return false
}

// Universal admits any operand type.
var Universal = Domain{Top}

// TypeSystem packages the three judgement functions a checker needs: a
// unifier, a top type, and a value deconstructor mapping operands to
// types.
type TypeSystem struct {
	Unify  func(t1, t2 Term, env Env) (Term, error)
	Top    Term
	TypeOf func(operand any) (Term, error)
}

// Satisfies is the result of a successful check: the environment that
// satisfied the signature, the resolved domain and codomain types, and
// whether the operation is opaque (codomain knowable only at
// evaluation time).
type Satisfies struct {
	Env    Env
	Dom    []Term
	Cod    Term
	Opaque bool
}

// CheckSignature type-checks operands against a signature under the
// given domain constraints. The commutative variant retries the check
// over every permutation of operand/constraint pairs, succeeding on
// the first that checks.
func CheckSignature(signature string, operands []any, constraints []Domain, system TypeSystem, commutative bool) (Satisfies, error) {
	if commutative {
		type pair struct {
			operand    any
			constraint Domain
		}
		pairs := make([]pair, len(operands))
		for i := range operands {
			pairs[i] = pair{operands[i], constraints[i]}
		}
		var result Satisfies
		var found bool
		permute(len(pairs), func(order []int) bool {
			ops := make([]any, len(order))
			domc := make([]Domain, len(order))
			for i, j := range order {
				ops[i] = pairs[j].operand
				domc[i] = pairs[j].constraint
			}
			res, err := CheckSignature(signature, ops, domc, system, false)
			if err == nil {
				result, found = res, true
				return false
			}
			return true
		})
		if !found {
			types := make([]Term, 0, len(operands))
			for _, op := range operands {
				if t, err := system.TypeOf(op); err == nil {
					types = append(types, t)
				}
			}
			return Satisfies{}, TypeCheckError{Signature: signature, Operands: types}
		}
		return result, nil
	}

	tokens := strings.Split(signature, "->")
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	if len(tokens) < 2 {
		return Satisfies{}, InvalidSignatureError{Signature: signature}
	}
	dom := tokens[:len(tokens)-1]
	cod := tokens[len(tokens)-1]
	if len(dom) != len(operands) || len(dom) != len(constraints) {
		return Satisfies{}, InvalidSignatureError{Signature: signature}
	}

	count := map[string]int{}
	for _, tok := range tokens {
		count[tok]++
	}

	env := Env{}
	domt := make([]Term, len(dom))

	for i, tok := range dom {
		ty, err := system.TypeOf(operands[i])
		if err != nil {
			return Satisfies{}, err
		}

		rigid := count[tok] > 1
		if !rigid {
			// Free: the kind constraint is the only obligation.
			if !constraints[i].Contains(ty) {
				return Satisfies{}, TypeCheckError{Signature: signature, Operand: ty}
			}
			domt[i] = ty
			continue
		}

		bound, ok := env[tok]
		if !ok {
			if !constraints[i].Contains(ty) {
				return Satisfies{}, TypeCheckError{Signature: signature, Operand: ty}
			}
			env[tok] = ty
			domt[i] = ty
			continue
		}

		resolved, err := system.Unify(bound, ty, env)
		if err != nil {
			return Satisfies{}, TypeCheckError{Signature: signature, Operand: ty}
		}
		env[tok] = resolved
		domt[i] = resolved
	}

	// Rigid positions sharing a token all resolve to the final binding.
	for i, tok := range dom {
		if bound, ok := env[tok]; ok {
			domt[i] = bound
		}
	}

	if codt, ok := env[cod]; ok {
		return Satisfies{Env: env, Dom: domt, Cod: codt}, nil
	}
	// A codomain naming a registered type resolves concretely, as in
	// "a -> a -> bool".
	if codt, err := Lookup(cod); err == nil {
		return Satisfies{Env: env, Dom: domt, Cod: codt}, nil
	}
	// The codomain is still free after unifying the domain. Normally
	// impossible in Haskell land, but we allow it here by returning
	// top: the operation is opaque.
	return Satisfies{Env: env, Dom: domt, Cod: system.Top, Opaque: true}, nil
}

// permute visits every permutation of [0, n) until fn returns false.
func permute(n int, fn func(order []int) bool) {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	var heap func(k int) bool
	heap = func(k int) bool {
		if k == 1 {
			return fn(order)
		}
		for i := 0; i < k; i++ {
			if !heap(k - 1) {
				return false
			}
			if k%2 == 0 {
				order[i], order[k-1] = order[k-1], order[i]
			} else {
				order[0], order[k-1] = order[k-1], order[0]
			}
		}
		return true
	}
	if n > 0 {
		heap(n)
	}
}
