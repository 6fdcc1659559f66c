package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "age,sex,bmi,bp,s1,s2,s3,s4,s5,s6,target\n"

func TestLoadEmbedded(t *testing.T) {
	ds, err := LoadEmbedded()
	require.NoError(t, err)

	rows, cols := ds.X.Dims()
	assert.Equal(t, 442, rows)
	assert.Equal(t, len(FeatureNames), cols)
	assert.Len(t, ds.Y, 442)
	assert.Equal(t, FeatureNames, ds.FeatureNames)

	lo, hi, err := ds.TargetRange()
	require.NoError(t, err)
	assert.Less(t, lo, hi)
}

func TestLoadRejectsWrongHeader(t *testing.T) {
	_, err := Load(strings.NewReader("age,sex,target\n1,2,3\n"))
	assert.ErrorIs(t, err, ErrSchema)

	_, err = Load(strings.NewReader("sex,age,bmi,bp,s1,s2,s3,s4,s5,s6,target\n"))
	assert.ErrorIs(t, err, ErrSchema)

	_, err = Load(strings.NewReader("age,sex,bmi,bp,s1,s2,s3,s4,s5,s6,y\n"))
	assert.ErrorIs(t, err, ErrSchema)
}

func TestLoadRejectsEmpty(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Load(strings.NewReader(header + "0,0,0,0,0,0,0,0,0,0,1\n"))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLoadReportsBadNumber(t *testing.T) {
	body := header +
		"0,0,0,0,0,0,0,0,0,0,1\n" +
		"0,0,abc,0,0,0,0,0,0,0,2\n"
	_, err := Load(strings.NewReader(body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), `"bmi"`)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.csv")
	body := header +
		"1,0,2,0,0,0,0,0,0,0,10\n" +
		"3,0,4,0,0,0,0,0,0,0,20\n" +
		"5,0,6,0,0,0,0,0,0,0,30\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 4.0, ds.X.At(1, 2))

	st, err := ds.ComputeStats()
	require.NoError(t, err)
	assert.Equal(t, FeatureStats{Name: "age", Min: 1, Max: 5, Mean: 3}, st[0])
	assert.Equal(t, FeatureStats{Name: "bmi", Min: 2, Max: 6, Mean: 4}, st[2])

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	ds, err := LoadEmbedded()
	require.NoError(t, err)

	train, test, err := ds.Split(0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, 89, test.Len())
	assert.Equal(t, 353, train.Len())

	again, _, err := ds.Split(0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, train.Y, again.Y)

	other, _, err := ds.Split(0.2, 7)
	require.NoError(t, err)
	assert.NotEqual(t, train.Y, other.Y)
}

func TestSplitRejectsBadSizes(t *testing.T) {
	ds, err := LoadEmbedded()
	require.NoError(t, err)

	for _, size := range []float64{0, 1, -0.5, 1.5} {
		_, _, err := ds.Split(size, 42)
		assert.Error(t, err, "size %v", size)
	}
}
