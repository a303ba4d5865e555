package shape

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shapes.toml")
	src := `
[types]
defstest_point  = "{x: int32, y: int32}"
defstest_points = "Var(0, inf), defstest_point"

[ingest]
max_recursion = 10
sample        = 50
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	defs, err := LoadDefs(path)
	require.NoError(t, err)
	assert.Equal(t, 10, defs.Ingest.MaxRecursion)
	assert.Equal(t, 0, defs.Ingest.MaxArguments)
	assert.Equal(t, 50, defs.Ingest.Sample)

	point, err := Lookup("defstest_point")
	require.NoError(t, err)
	_, ok := point.(*Record)
	assert.True(t, ok)

	// Later definitions see earlier ones.
	points, err := Lookup("defstest_points")
	require.NoError(t, err)
	ds := points.(*DataShape)
	assert.True(t, ds.At(0).Equal(Stream))
	assert.True(t, ds.At(1).Equal(point))
}

func TestLoadDefsBadShape(t *testing.T) {
	_, err := loadDefs(`
[types]
defstest_broken = "Frob(1, 2)"
`)
	require.Error(t, err)
	var syn SyntaxError
	assert.ErrorAs(t, err, &syn)
}

func TestLoadDefsDuplicate(t *testing.T) {
	_, err := loadDefs(`
[types]
int32 = "int64"
`)
	var dup DuplicateTypeError
	assert.ErrorAs(t, err, &dup)
}

func TestLoadDefsMissingFile(t *testing.T) {
	_, err := LoadDefs(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
