package aterm

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"
)

func TestDispatchCostOrdering(t *testing.T) {
	table := NewTable()
	assert.NilError(t, table.Install("Add(<term>,<term>)", "generic", ConstCost(5)))
	assert.NilError(t, table.Install("Add(<term>,<term>)", "specialized", ConstCost(0)))

	res, err := table.Dispatch(NewAppl("Add", Int{Val: 1}, Int{Val: 2}))
	assert.NilError(t, err)
	assert.Equal(t, res.Impl, "specialized")
	assert.Equal(t, res.Cost, 0.0)
}

func TestDispatchTieBreaksByRegistration(t *testing.T) {
	table := NewTable()
	assert.NilError(t, table.Install("Mul(<term>,<term>)", "first", ConstCost(1)))
	assert.NilError(t, table.Install("Mul(<term>,<term>)", "second", ConstCost(1)))

	res, err := table.Dispatch(NewAppl("Mul", Int{Val: 1}, Int{Val: 2}))
	assert.NilError(t, err)
	assert.Equal(t, res.Impl, "first")
}

func TestDispatchInfiniteFallback(t *testing.T) {
	table := NewTable()
	assert.NilError(t, table.Install("Add(<term>,<term>)", "fallback", nil))

	res, err := table.Dispatch(NewAppl("Add", Int{Val: 1}, Int{Val: 2}))
	assert.NilError(t, err)
	assert.Equal(t, res.Impl, "fallback")
	assert.Equal(t, res.Cost, InfiniteCost)

	// A finite-cost specialization displaces it.
	assert.NilError(t, table.Install("Add(<int>,<int>)", "scalar", ConstCost(10)))
	res, err = table.Dispatch(NewAppl("Add", Int{Val: 1}, Int{Val: 2}))
	assert.NilError(t, err)
	assert.Equal(t, res.Impl, "scalar")
}

func TestDispatchTermSensitiveCost(t *testing.T) {
	table := NewTable()
	cost := func(term Term, caps Captures) float64 {
		if _, ok := Strip(caps["x"]).(Int); ok {
			return 0
		}
		return 100
	}
	assert.NilError(t, table.Install("Neg(x)", "intNeg", cost))
	assert.NilError(t, table.Install("Neg(x)", "anyNeg", ConstCost(50)))

	res, err := table.Dispatch(NewAppl("Neg", Int{Val: 7}))
	assert.NilError(t, err)
	assert.Equal(t, res.Impl, "intNeg")
	assert.Assert(t, res.Captures["x"].Equal(Int{Val: 7}))

	res, err = table.Dispatch(NewAppl("Neg", Symbol{Name: "Array"}))
	assert.NilError(t, err)
	assert.Equal(t, res.Impl, "anyNeg")
}

func TestDispatchNoMatch(t *testing.T) {
	table := NewTable()
	assert.NilError(t, table.Install("Add(<term>,<term>)", "add", ConstCost(0)))

	_, err := table.Dispatch(NewAppl("Sub", Int{Val: 1}, Int{Val: 2}))
	var nd NoDispatchError
	assert.Assert(t, errors.As(err, &nd))
	assert.Assert(t, nd.Term.Equal(NewAppl("Sub", Int{Val: 1}, Int{Val: 2})))
}

func TestDispatchBadPattern(t *testing.T) {
	table := NewTable()
	err := table.Install("Add(", "broken", ConstCost(0))
	assert.Assert(t, err != nil)
}

func TestDispatchAnnotatedSubject(t *testing.T) {
	table := NewTable()
	assert.NilError(t, table.Install("Array;manifest", "local", ConstCost(0)))
	assert.NilError(t, table.Install("Array", "generic", ConstCost(10)))

	res, err := table.Dispatch(Annotate(Symbol{Name: "Array"}, `dshape("3, int32")`, "manifest"))
	assert.NilError(t, err)
	assert.Equal(t, res.Impl, "local")

	res, err = table.Dispatch(Symbol{Name: "Array"})
	assert.NilError(t, err)
	assert.Equal(t, res.Impl, "generic")
}
