package risk

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinIndex = 0
	MaxIndex = 100
)

var ErrOutOfRange = errors.New("slider index out of range")

// ValidationError lists every slider outside [MinIndex, MaxIndex].
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrOutOfRange, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrOutOfRange
}

// Validate checks the controllable sliders present in in. Unknown keys are
// ignored, matching the permissive scoring path.
func Validate(in SliderInput) error {
	var fields []string
	for _, c := range controllable {
		v, ok := in[c.Name]
		if !ok {
			continue
		}
		if v < MinIndex || v > MaxIndex {
			fields = append(fields, fmt.Sprintf("%s=%d", c.Name, v))
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
