package spectral

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrIncompleteVector marks a distance request between vectors that share no
// axes. Callers treat it as "distance unknown", never as zero.
var ErrIncompleteVector = errors.New("spectral: vectors share no axes")

// ErrMissingAxis marks an axis lookup on a vector that lacks the axis.
var ErrMissingAxis = errors.New("spectral: axis missing from vector")

// Vector is a sparse position in the coordinate space: axis name to a value
// in [0, 1]. Axes absent from the map are unknown, not zero.
type Vector map[string]float64

// Clamp01 forces x into [0, 1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Clamped returns a copy of v with every value forced into [0, 1].
func (v Vector) Clamped() Vector {
	out := make(Vector, len(v))
	for axis, val := range v {
		out[axis] = Clamp01(val)
	}
	return out
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for axis, val := range v {
		out[axis] = val
	}
	return out
}

// SharedAxes returns the axes present on both vectors, sorted.
func SharedAxes(a, b Vector) []string {
	var shared []string
	for axis := range a {
		if _, ok := b[axis]; ok {
			shared = append(shared, axis)
		}
	}
	sort.Strings(shared)
	return shared
}

// Distance is the Euclidean distance between a and b over the axes present
// on both. Axes known to only one side contribute nothing. When the vectors
// share no axes the distance is undefined and ErrIncompleteVector is
// returned.
func Distance(a, b Vector) (float64, error) {
	shared := SharedAxes(a, b)
	if len(shared) == 0 {
		return 0, ErrIncompleteVector
	}
	var sum float64
	for _, axis := range shared {
		d := a[axis] - b[axis]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// AxisDifference is |a[axis] - b[axis]|. Both sides must carry the axis.
func AxisDifference(a, b Vector, axis string) (float64, error) {
	av, aok := a[axis]
	bv, bok := b[axis]
	switch {
	case !aok && !bok:
		return 0, fmt.Errorf("%w: %q absent from both sides", ErrMissingAxis, axis)
	case !aok:
		return 0, fmt.Errorf("%w: %q absent from first side", ErrMissingAxis, axis)
	case !bok:
		return 0, fmt.Errorf("%w: %q absent from second side", ErrMissingAxis, axis)
	}
	return math.Abs(av - bv), nil
}
