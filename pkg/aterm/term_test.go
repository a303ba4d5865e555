package aterm

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestTermStrings(t *testing.T) {
	cases := []struct {
		term Term
		want string
	}{
		{Symbol{Name: "Array"}, "Array"},
		{Int{Val: 42}, "42"},
		{Real{Val: 1.5}, "1.5"},
		{Str{Val: "hello"}, `"hello"`},
		{List{Elems: []Term{Int{Val: 1}, Int{Val: 2}}}, "[1,2]"},
		{NewAppl("Add", Int{Val: 1}, Int{Val: 2}), "Add(1,2)"},
		{
			Annotate(NewAppl("Add", Int{Val: 1}, Int{Val: 2}), `dshape("int64")`, "contig"),
			`Add(1,2){dshape("int64"),contig}`,
		},
		{Annotate(Symbol{Name: "Array"}, "", "manifest"), "Array{manifest}"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.term.String(), tc.want)
	}
}

func TestTermEquality(t *testing.T) {
	a := NewAppl("Add", Int{Val: 1}, Int{Val: 2})
	b := NewAppl("Add", Int{Val: 1}, Int{Val: 2})
	c := NewAppl("Add", Int{Val: 2}, Int{Val: 1})

	assert.Assert(t, a.Equal(b))
	assert.Assert(t, !a.Equal(c))
	assert.Assert(t, !a.Equal(Symbol{Name: "Add"}))

	// Annotations participate in equality.
	assert.Assert(t, !Annotate(a, "ty").Equal(a))
	assert.Assert(t, Annotate(a, "ty", "m").Equal(Annotate(b, "ty", "m")))
	assert.Assert(t, !Annotate(a, "ty", "m").Equal(Annotate(b, "ty")))
}

func TestAnnotatedHas(t *testing.T) {
	term := Annotate(Symbol{Name: "Array"}, `dshape("3, int32")`, "contig", "manifest")
	assert.Assert(t, term.Has("contig"))
	assert.Assert(t, term.Has("manifest"))
	assert.Assert(t, term.Has("type"))
	assert.Assert(t, !term.Has("fortran"))

	bare := Annotate(Symbol{Name: "Array"}, "")
	assert.Assert(t, !bare.Has("type"))
}

func TestStrip(t *testing.T) {
	inner := NewAppl("Mul", Int{Val: 3}, Int{Val: 4})
	assert.Assert(t, Strip(Annotate(inner, "ty")).Equal(inner))
	assert.Assert(t, Strip(inner).Equal(inner))
}
