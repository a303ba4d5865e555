package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBuiltins(t *testing.T) {
	for _, b := range Builtins {
		got, err := Parse(b.String())
		require.NoError(t, err, b.String())
		assert.True(t, got.Equal(b), b.String())
	}
}

func TestParseProduct(t *testing.T) {
	got, err := Parse("800, 600, int32")
	require.NoError(t, err)

	ds, ok := got.(*DataShape)
	require.True(t, ok)
	require.Equal(t, 3, ds.Len())
	assert.True(t, ds.At(0).Equal(Fixed{Val: 800}))
	assert.True(t, ds.At(1).Equal(Fixed{Val: 600}))
	assert.True(t, ds.At(2).Equal(Int32))
	assert.Equal(t, "800, 600, int32", ds.String())
}

func TestParseSingleTerm(t *testing.T) {
	got, err := Parse("float64")
	require.NoError(t, err)
	// A one-item statement is the bare term, not a product of one.
	assert.True(t, got.Equal(Float64))
}

func TestParseFreeVariable(t *testing.T) {
	got, err := Parse("n, m, int32")
	require.NoError(t, err)

	ds := got.(*DataShape)
	assert.True(t, ds.At(0).Equal(TypeVar{Symbol: "n"}))
	assert.True(t, ds.At(1).Equal(TypeVar{Symbol: "m"}))
}

func TestParseRecord(t *testing.T) {
	got, err := Parse("{x: int32, y: float64, label: string}")
	require.NoError(t, err)

	rec, ok := got.(*Record)
	require.True(t, ok)
	ty, ok := rec.Lookup("label")
	require.True(t, ok)
	assert.True(t, ty.Equal(String))
	assert.Equal(t, "{x: int32, y: float64, label: string}", rec.String())
}

func TestParseRecordNestedShape(t *testing.T) {
	got, err := Parse("{samples: (100, float64), name: string}")
	require.NoError(t, err)

	rec := got.(*Record)
	ty, ok := rec.Lookup("samples")
	require.True(t, ok)
	ds, ok := ty.(*DataShape)
	require.True(t, ok)
	assert.True(t, ds.At(0).Equal(Fixed{Val: 100}))
	assert.True(t, ds.At(1).Equal(Float64))

	// The printed form keeps the parentheses around the composite
	// field, so the text reparses to the same record.
	assert.Equal(t, "{samples: (100, float64), name: string}", got.String())
	again, err := Parse(got.String())
	require.NoError(t, err)
	assert.True(t, again.Equal(got))
}

func TestParseEmptyRecord(t *testing.T) {
	got, err := Parse("{}")
	require.NoError(t, err)
	assert.True(t, got.Equal(NullRecord))
}

func TestParseEnumLiteral(t *testing.T) {
	got, err := Parse("{1, 2, 3}")
	require.NoError(t, err)

	en, ok := got.(Enum)
	require.True(t, ok)
	require.Len(t, en.Elems, 3)
	assert.True(t, en.Elems[0].Equal(Integer{Val: 1}))
	assert.Equal(t, "{1, 2, 3}", en.String())
}

func TestParseConstructors(t *testing.T) {
	t.Run("Var with upper bound", func(t *testing.T) {
		got, err := Parse("Var(10), int32")
		require.NoError(t, err)
		ds := got.(*DataShape)
		r, ok := ds.At(0).(Range)
		require.True(t, ok)
		assert.Equal(t, 0, r.Lower())
		hi, bounded := r.Upper()
		assert.True(t, bounded)
		assert.Equal(t, 10, hi)
	})

	t.Run("Var with inf is a stream", func(t *testing.T) {
		got, err := Parse("Var(0, inf), float64")
		require.NoError(t, err)
		ds := got.(*DataShape)
		r := ds.At(0).(Range)
		assert.True(t, r.Equal(Stream))
		assert.Equal(t, "Var(0, inf)", r.String())
	})

	t.Run("Range is an alias for Var", func(t *testing.T) {
		a := MustParse("Range(1, 5)")
		b := MustParse("Var(1, 5)")
		assert.True(t, a.Equal(b))
	})

	t.Run("Either", func(t *testing.T) {
		got, err := Parse("Either(int32, float64)")
		require.NoError(t, err)
		e := got.(Either)
		assert.True(t, e.A.Equal(Int32))
		assert.True(t, e.B.Equal(Float64))
	})

	t.Run("Union", func(t *testing.T) {
		got, err := Parse("Union(int8, int16, int32)")
		require.NoError(t, err)
		u := got.(Union)
		require.Len(t, u.Elems, 3)
		assert.Equal(t, "Union(int8, int16, int32)", u.String())
	})

	t.Run("Ptr local", func(t *testing.T) {
		got, err := Parse("Ptr(int32)")
		require.NoError(t, err)
		p := got.(Ptr)
		assert.True(t, p.Pointee.Equal(Int32))
		_, remote := p.Space.Remote()
		assert.False(t, remote)
	})

	t.Run("Ptr remote", func(t *testing.T) {
		got, err := Parse("Ptr(int32, remote(cluster1))")
		require.NoError(t, err)
		p := got.(Ptr)
		key, remote := p.Space.Remote()
		assert.True(t, remote)
		assert.Equal(t, "cluster1", key)
		assert.Equal(t, "Ptr(int32, remote(cluster1))", p.String())
	})
}

func TestParseAssignment(t *testing.T) {
	_, err := Parse("ParseTestPoint2 = {x: int32, y: int32}")
	require.NoError(t, err)

	bound, err := Lookup("ParseTestPoint2")
	require.NoError(t, err)
	rec := bound.(*Record)
	_, ok := rec.Lookup("x")
	assert.True(t, ok)

	// Multi-word names join with a single space.
	_, err = Parse("Parse  Test  Matrix = n, m, float64")
	require.NoError(t, err)
	_, err = Lookup("Parse Test Matrix")
	assert.NoError(t, err)

	// Redefinition is rejected.
	_, err = Parse("ParseTestPoint2 = int32")
	var dup DuplicateTypeError
	assert.ErrorAs(t, err, &dup)
}

func TestParseDynamic(t *testing.T) {
	got, err := Parse("?")
	require.NoError(t, err)
	assert.True(t, got.Equal(Dynamic))

	got, err = Parse("3, ?")
	require.NoError(t, err)
	ds := got.(*DataShape)
	assert.True(t, ds.At(1).Equal(Dynamic))
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"3,",
		"{x int32}",
		"Var()",
		"Var(inf, 3)",
		"Either(int32)",
		"Frob(1, 2)",
		"1 2",
		"{*}",
		"Ptr(int32, bogus)",
	}
	for _, src := range cases {
		_, err := Parse(src)
		var syn SyntaxError
		assert.ErrorAs(t, err, &syn, "input %q", src)
	}
}
