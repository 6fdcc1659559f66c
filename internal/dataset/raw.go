package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

const rawTargetColumn = "Y"

// LoadRaw reads the unscaled diabetes table as published by Efron et al.:
// a header "AGE SEX BMI BP S1 S2 S3 S4 S5 S6 Y" followed by whitespace
// separated rows. Every feature column is mean-centred and divided by
// std*sqrt(n) (population std), so each column has unit sum of squares. The
// target is kept as is.
func LoadRaw(r io.Reader) (*Dataset, error) {
	scanner := bufio.NewScanner(r)

	var header []string
	for scanner.Scan() {
		if header = strings.Fields(scanner.Text()); len(header) > 0 {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 {
		return nil, ErrEmpty
	}
	if !isRawHeader(strings.Join(header, " ")) {
		return nil, fmt.Errorf("%w: raw header %q", ErrSchema, strings.Join(header, " "))
	}

	width := len(FeatureNames)
	cols := make([][]float64, width)
	var target []float64
	for line := 2; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != width+1 {
			return nil, fmt.Errorf("%w: row %d has %d fields, want %d", ErrSchema, line, len(fields), width+1)
		}
		for col, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", line, header[col], err)
			}
			if col < width {
				cols[col] = append(cols[col], v)
			} else {
				target = append(target, v)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(target) < 2 {
		return nil, ErrEmpty
	}

	n := len(target)
	x := mat.NewDense(n, width, nil)
	for j, col := range cols {
		scaled, err := scaleColumn(col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", FeatureNames[j], err)
		}
		x.SetCol(j, scaled)
	}

	names := make([]string, width)
	copy(names, FeatureNames)
	return &Dataset{FeatureNames: names, X: x, Y: target}, nil
}

func scaleColumn(col []float64) ([]float64, error) {
	mean, err := stats.Mean(col)
	if err != nil {
		return nil, err
	}
	sd, err := stats.StandardDeviationPopulation(col)
	if err != nil {
		return nil, err
	}
	if sd == 0 {
		return nil, fmt.Errorf("%w: constant column", ErrSchema)
	}

	denom := sd * math.Sqrt(float64(len(col)))
	out := make([]float64, len(col))
	for i, v := range col {
		out[i] = (v - mean) / denom
	}
	return out, nil
}

func isRawHeader(line string) bool {
	fields := strings.Fields(line)
	if len(fields) != len(FeatureNames)+1 {
		return false
	}
	for i, name := range FeatureNames {
		if !strings.EqualFold(fields[i], name) {
			return false
		}
	}
	return strings.EqualFold(fields[len(FeatureNames)], rawTargetColumn)
}

func firstLine(body []byte) string {
	line, _, _ := bytes.Cut(bytes.TrimLeft(body, " \t\r\n"), []byte("\n"))
	return string(line)
}
