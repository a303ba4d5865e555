package shape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToExternal(t *testing.T) {
	ds := MustParse("5, 5, int32").(*DataShape)

	dims, measure, err := ToExternal(ds)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 5}, dims)
	assert.True(t, measure.Equal(Int32))
}

func TestToExternalScalar(t *testing.T) {
	ds := NewDataShape(Float64)
	dims, measure, err := ToExternal(ds)
	require.NoError(t, err)
	assert.Empty(t, dims)
	assert.True(t, measure.Equal(Float64))
}

func TestToExternalRejectsVariables(t *testing.T) {
	for _, src := range []string{
		"n, m, int32",
		"Var(0, inf), float64",
		"3, {x: int32}",
	} {
		ds := MustParse(src).(*DataShape)
		_, _, err := ToExternal(ds)
		var nr NotRepresentableError
		assert.ErrorAs(t, err, &nr, "shape %q", src)
	}
}

func TestFromExternalRoundTrip(t *testing.T) {
	ds := FromExternal([]int{800, 600}, Int32)
	assert.Equal(t, "800, 600, int32", ds.String())

	dims, measure, err := ToExternal(ds)
	require.NoError(t, err)
	assert.Equal(t, []int{800, 600}, dims)
	assert.True(t, measure.Equal(Int32))
}

func TestFromScalar(t *testing.T) {
	cases := []struct {
		value any
		want  *CType
	}{
		{true, Bool},
		{int(3), Int64},
		{int64(3), Int64},
		{int8(3), Int8},
		{uint16(3), Uint16},
		{float32(1.5), Float32},
		{3.14, Float64},
		{complex(1, 2), Complex128},
		{"hello", String},
		{5 * time.Second, Timedelta64},
		{time.Now(), Datetime64},
	}
	for _, tc := range cases {
		got, err := FromScalar(tc.value)
		require.NoError(t, err)
		assert.True(t, got.Equal(tc.want), "%#v", tc.value)
	}

	_, err := FromScalar(struct{}{})
	var unknown UnknownTypeError
	assert.ErrorAs(t, err, &unknown)
}
