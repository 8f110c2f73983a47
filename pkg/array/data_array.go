package array

import (
	"math"

	"github.com/matzehuels/scenesync/pkg/errors"
)

// DataArray is a named buffer split into tuples of Components values.
// The zero value is not usable; call [New].
type DataArray struct {
	name       string
	buf        Buffer
	components int
	deleted    bool
}

// New returns an empty placeholder array of [DefaultKind] with one component.
func New(name string) *DataArray {
	return &DataArray{
		name:       name,
		buf:        &Typed[float32]{kind: DefaultKind},
		components: 1,
	}
}

// Name returns the registered name.
func (a *DataArray) Name() string { return a.name }

// SetName renames the array. Registries keyed by name see the new name on
// their next lookup.
func (a *DataArray) SetName(name string) { a.name = name }

// Kind returns the element kind of the current buffer.
func (a *DataArray) Kind() Kind { return a.buf.Kind() }

// Components returns the tuple width.
func (a *DataArray) Components() int { return a.components }

// Len returns the number of values.
func (a *DataArray) Len() int { return a.buf.Len() }

// Tuples returns the number of tuples.
func (a *DataArray) Tuples() int { return a.buf.Len() / a.components }

// Data returns the current buffer.
func (a *DataArray) Data() Buffer { return a.buf }

// Deleted reports whether the array has been released.
func (a *DataArray) Deleted() bool { return a.deleted }

// SetData replaces the backing buffer. The buffer length must be a multiple of
// components; otherwise the array is left unchanged and a CONFIGURATION error
// is returned.
func (a *DataArray) SetData(buf Buffer, components int) error {
	if a.deleted {
		return errors.New(errors.ErrCodeInternal, "array %q used after release", a.name)
	}
	if buf == nil {
		return errors.Configuration("values", "nil buffer")
	}
	if err := errors.ValidateComponents(buf.Len(), components); err != nil {
		return err
	}
	a.buf = buf
	a.components = components
	return nil
}

// Range returns the scalar range of the array. Single-component arrays report
// the range of their values; multi-component arrays report the range of the
// tuple magnitudes. ok is false for an empty array.
func (a *DataArray) Range() (lo, hi float64, ok bool) {
	if a.components == 1 {
		return a.ComponentRange(0)
	}
	return a.ComponentRange(-1)
}

// ComponentRange returns the range of one component, or of the tuple
// magnitude when c is negative.
func (a *DataArray) ComponentRange(c int) (lo, hi float64, ok bool) {
	if c >= a.components {
		return 0, 0, false
	}
	n := a.Tuples()
	lo, hi = math.Inf(1), math.Inf(-1)
	for t := 0; t < n; t++ {
		var v float64
		if c >= 0 {
			v = a.buf.At(t*a.components + c)
		} else {
			var sum float64
			for j := 0; j < a.components; j++ {
				x := a.buf.At(t*a.components + j)
				sum += x * x
			}
			v = math.Sqrt(sum)
		}
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}

// Delete releases the buffer. The array must not be used afterwards.
func (a *DataArray) Delete() {
	a.deleted = true
	a.buf = &Typed[float32]{kind: a.buf.Kind()}
}
