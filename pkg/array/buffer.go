package array

import (
	"math"

	"github.com/matzehuels/scenesync/pkg/errors"
)

// Number is the set of element types a [Typed] buffer can hold.
type Number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~float32 | ~float64
}

// Buffer is a flat, typed numeric buffer.
type Buffer interface {
	Kind() Kind
	Len() int
	At(i int) float64
}

// Typed is a [Buffer] backed by a slice of T.
type Typed[T Number] struct {
	kind Kind
	data []T
}

// Kind returns the element kind.
func (b *Typed[T]) Kind() Kind { return b.kind }

// Len returns the number of elements.
func (b *Typed[T]) Len() int { return len(b.data) }

// At returns element i widened to float64.
func (b *Typed[T]) At(i int) float64 { return float64(b.data[i]) }

// Values returns the backing slice. Callers must not retain it across a
// SetData on the owning array.
func (b *Typed[T]) Values() []T { return b.data }

func fill[T Number](kind Kind, values []float64, conv func(float64) T) *Typed[T] {
	data := make([]T, len(values))
	for i, v := range values {
		data[i] = conv(v)
	}
	return &Typed[T]{kind: kind, data: data}
}

// wrap converts with modular wrap-around, the way typed-array stores behave.
func wrap(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Trunc(math.Mod(v, 1<<32)))
}

func clamp8(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.RoundToEven(v))
}

// Build constructs a buffer of the given kind from values.
// An unknown kind is a CONFIGURATION error.
func Build(kind Kind, values []float64) (Buffer, error) {
	switch kind {
	case Int8:
		return fill(kind, values, func(v float64) int8 { return int8(wrap(v)) }), nil
	case Uint8:
		return fill(kind, values, func(v float64) uint8 { return uint8(wrap(v)) }), nil
	case Uint8Clamped:
		return fill(kind, values, clamp8), nil
	case Int16:
		return fill(kind, values, func(v float64) int16 { return int16(wrap(v)) }), nil
	case Uint16:
		return fill(kind, values, func(v float64) uint16 { return uint16(wrap(v)) }), nil
	case Int32:
		return fill(kind, values, func(v float64) int32 { return int32(wrap(v)) }), nil
	case Uint32:
		return fill(kind, values, func(v float64) uint32 { return uint32(wrap(v)) }), nil
	case Float32:
		return fill(kind, values, func(v float64) float32 { return float32(v) }), nil
	case Float64:
		return fill(kind, values, func(v float64) float64 { return v }), nil
	}
	return nil, errors.Configuration("type", "unknown array kind %q", kind)
}

// SameValues reports whether a and b are the same slice: same length and same
// backing storage. Two empty slices are considered the same.
func SameValues(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
