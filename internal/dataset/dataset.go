// Package dataset loads the fixed diabetes table the risk model is trained on.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// FeatureNames is the column order every feature vector uses.
var FeatureNames = []string{"age", "sex", "bmi", "bp", "s1", "s2", "s3", "s4", "s5", "s6"}

const targetColumn = "target"

var (
	ErrSchema = errors.New("dataset: unexpected columns")
	ErrEmpty  = errors.New("dataset: not enough rows")
)

// The bundled table is a synthetic stand-in with the schema and scaling of
// the Efron et al. diabetes table. LoadFile accepts the public original.
//
//go:embed data/diabetes_synthetic.csv
var embedded []byte

// EmbeddedIsSynthetic reports that LoadEmbedded does not return the original
// diabetes measurements.
const EmbeddedIsSynthetic = true

// Dataset is a dense feature matrix with one numeric target per row.
type Dataset struct {
	FeatureNames []string
	X            *mat.Dense
	Y            []float64
}

// FeatureStats summarizes one column over the whole table.
type FeatureStats struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// LoadEmbedded parses the table compiled into the binary.
func LoadEmbedded() (*Dataset, error) {
	return Load(bytes.NewReader(embedded))
}

// LoadFile parses either a CSV with the same header as the embedded table or
// the raw whitespace-separated table (AGE SEX BMI ... S6 Y), which is scaled
// on load.
func LoadFile(path string) (*Dataset, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}

	if isRawHeader(firstLine(body)) {
		return LoadRaw(bytes.NewReader(body))
	}
	return Load(bytes.NewReader(body))
}

// Load reads a CSV whose header is the ten feature names followed by "target".
func Load(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	width := len(FeatureNames)
	var (
		values []float64
		target []float64
	)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		for col, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", line, header[col], err)
			}
			if col < width {
				values = append(values, v)
			} else {
				target = append(target, v)
			}
		}
	}

	if len(target) < 2 {
		return nil, ErrEmpty
	}

	names := make([]string, width)
	copy(names, FeatureNames)

	return &Dataset{
		FeatureNames: names,
		X:            mat.NewDense(len(target), width, values),
		Y:            target,
	}, nil
}

func checkHeader(header []string) error {
	if len(header) != len(FeatureNames)+1 {
		return fmt.Errorf("%w: got %d columns, want %d", ErrSchema, len(header), len(FeatureNames)+1)
	}
	for i, name := range FeatureNames {
		if strings.TrimSpace(header[i]) != name {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrSchema, i, header[i], name)
		}
	}
	if last := strings.TrimSpace(header[len(FeatureNames)]); last != targetColumn {
		return fmt.Errorf("%w: last column is %q, want %q", ErrSchema, last, targetColumn)
	}
	return nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Y)
}

// Split shuffles row indices with a seeded generator and carves off
// ceil(n*testSize) rows for the test partition.
func (d *Dataset) Split(testSize float64, seed uint64) (train, test *Dataset, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size %v outside (0,1)", testSize)
	}

	n := d.Len()
	nTest := int(math.Ceil(float64(n) * testSize))
	if nTest >= n {
		return nil, nil, fmt.Errorf("test size %v leaves no training rows out of %d", testSize, n)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	perm := rng.Perm(n)

	test = d.subset(perm[:nTest])
	train = d.subset(perm[nTest:])
	return train, test, nil
}

func (d *Dataset) subset(rows []int) *Dataset {
	_, cols := d.X.Dims()
	x := mat.NewDense(len(rows), cols, nil)
	y := make([]float64, len(rows))
	for i, r := range rows {
		x.SetRow(i, d.X.RawRowView(r))
		y[i] = d.Y[r]
	}
	return &Dataset{FeatureNames: d.FeatureNames, X: x, Y: y}
}

// ComputeStats returns min, max and mean for every feature column.
func (d *Dataset) ComputeStats() ([]FeatureStats, error) {
	out := make([]FeatureStats, len(d.FeatureNames))
	for j, name := range d.FeatureNames {
		col := mat.Col(nil, j, d.X)

		lo, err := stats.Min(col)
		if err != nil {
			return nil, fmt.Errorf("min of %s: %w", name, err)
		}
		hi, err := stats.Max(col)
		if err != nil {
			return nil, fmt.Errorf("max of %s: %w", name, err)
		}
		mean, err := stats.Mean(col)
		if err != nil {
			return nil, fmt.Errorf("mean of %s: %w", name, err)
		}

		out[j] = FeatureStats{Name: name, Min: lo, Max: hi, Mean: mean}
	}
	return out, nil
}

// TargetRange returns the observed minimum and maximum of Y.
func (d *Dataset) TargetRange() (lo, hi float64, err error) {
	if lo, err = stats.Min(d.Y); err != nil {
		return 0, 0, fmt.Errorf("target min: %w", err)
	}
	if hi, err = stats.Max(d.Y); err != nil {
		return 0, 0, fmt.Errorf("target max: %w", err)
	}
	return lo, hi, nil
}
