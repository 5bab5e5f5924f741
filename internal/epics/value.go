package epics

import (
	"fmt"
	"strconv"
)

// Value wraps a single reading from a PV.
//
// The transport delivers readings as whatever native type the channel
// carries (float64, int, string, or an int slice for waveform records);
// Value provides checked conversions on top.
type Value struct {
	raw any
}

// NewValue wraps a raw reading.
func NewValue(raw any) Value {
	return Value{raw: raw}
}

// Raw returns the underlying reading.
func (v Value) Raw() any {
	return v.raw
}

// Float64 converts the reading to a float64.
func (v Value) Float64() (float64, error) {
	switch x := v.raw.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrBadValue, x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: cannot convert %T to float64", ErrBadValue, v.raw)
	}
}

// Int converts the reading to an int.
func (v Value) Int() (int, error) {
	switch x := v.raw.(type) {
	case int:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case float64:
		return int(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrBadValue, x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: cannot convert %T to int", ErrBadValue, v.raw)
	}
}

// String renders the reading as a string.
func (v Value) String() string {
	switch x := v.raw.(type) {
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Ints converts a waveform reading to an int slice.
// Scalar readings convert to a one-element slice.
func (v Value) Ints() ([]int, error) {
	switch x := v.raw.(type) {
	case []int:
		return x, nil
	case []int32:
		out := make([]int, len(x))
		for i, n := range x {
			out[i] = int(n)
		}
		return out, nil
	case []float64:
		out := make([]int, len(x))
		for i, f := range x {
			out[i] = int(f)
		}
		return out, nil
	default:
		n, err := v.Int()
		if err != nil {
			return nil, fmt.Errorf("%w: cannot convert %T to []int", ErrBadValue, v.raw)
		}
		return []int{n}, nil
	}
}
