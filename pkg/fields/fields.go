// Package fields holds the named arrays attached to a dataset's points.
//
// A [Data] is an ordered list of [array.DataArray] plus four attribute slots
// (scalars, vectors, normals, tcoords). A name maps to at most one array:
// registering a second array under a taken name replaces the first, it never
// merges. Arrays are held by pointer, so a rename or a rebuilt buffer on the
// array is visible to every reader without re-registration.
package fields

import (
	"slices"

	"github.com/matzehuels/scenesync/pkg/array"
	"github.com/matzehuels/scenesync/pkg/errors"
)

// Method selects how an array is registered on a [Data].
type Method string

// Registration methods.
const (
	Append     Method = "append"
	AddArray   Method = "addArray"
	SetScalars Method = "setScalars"
	SetVectors Method = "setVectors"
	SetNormals Method = "setNormals"
	SetTCoords Method = "setTCoords"
)

// DefaultMethod is used when a binding does not name one.
const DefaultMethod = Append

// ParseMethod validates a registration method name. The empty string yields
// [DefaultMethod]; "scalars" is accepted as shorthand for setScalars.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "":
		return DefaultMethod, nil
	case Append, AddArray, SetScalars, SetVectors, SetNormals, SetTCoords:
		return Method(s), nil
	case "scalars":
		return SetScalars, nil
	}
	return "", errors.Configuration("registration", "unknown registration method %q", s)
}

// Attribute names a designated slot.
type Attribute int

// Attribute slots.
const (
	Scalars Attribute = iota
	Vectors
	Normals
	TCoords
	numAttributes
)

// String returns the slot name.
func (a Attribute) String() string {
	switch a {
	case Scalars:
		return "scalars"
	case Vectors:
		return "vectors"
	case Normals:
		return "normals"
	case TCoords:
		return "tcoords"
	}
	return "unknown"
}

func (m Method) attribute() (Attribute, bool) {
	switch m {
	case SetScalars:
		return Scalars, true
	case SetVectors:
		return Vectors, true
	case SetNormals:
		return Normals, true
	case SetTCoords:
		return TCoords, true
	}
	return 0, false
}

// Data is a set of named arrays with attribute slots.
// The zero value is empty and ready to use.
type Data struct {
	arrays []*array.DataArray
	slots  [numAttributes]*array.DataArray
}

// Register adds a using method. Registering an array that is already present
// is a no-op apart from updating the slot.
func (d *Data) Register(method Method, a *array.DataArray) error {
	if a == nil {
		return errors.Configuration("array", "cannot register nil array")
	}
	switch method {
	case Append, AddArray:
		d.add(a)
		return nil
	}
	attr, ok := method.attribute()
	if !ok {
		return errors.Configuration("registration", "unknown registration method %q", method)
	}
	d.add(a)
	d.slots[attr] = a
	return nil
}

// add inserts a, replacing any other array registered under the same name.
func (d *Data) add(a *array.DataArray) {
	for i, cur := range d.arrays {
		if cur == a {
			return
		}
		if cur.Name() == a.Name() {
			d.clearSlots(cur)
			d.arrays[i] = a
			return
		}
	}
	d.arrays = append(d.arrays, a)
}

// Remove unregisters a by identity. It reports whether a was present.
func (d *Data) Remove(a *array.DataArray) bool {
	i := slices.Index(d.arrays, a)
	if i < 0 {
		return false
	}
	d.arrays = slices.Delete(d.arrays, i, i+1)
	d.clearSlots(a)
	return true
}

func (d *Data) clearSlots(a *array.DataArray) {
	for i, s := range d.slots {
		if s == a {
			d.slots[i] = nil
		}
	}
}

// Array returns the array registered under name.
func (d *Data) Array(name string) (*array.DataArray, bool) {
	for _, a := range d.arrays {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// Arrays returns the registered arrays in registration order.
func (d *Data) Arrays() []*array.DataArray {
	return slices.Clone(d.arrays)
}

// Len returns the number of registered arrays.
func (d *Data) Len() int { return len(d.arrays) }

// Attribute returns the array in slot attr, or nil.
func (d *Data) Attribute(attr Attribute) *array.DataArray {
	if attr < 0 || attr >= numAttributes {
		return nil
	}
	return d.slots[attr]
}

// Scalars returns the active scalars. When no array was designated, the first
// registered array is used, matching how image mappers pick their input.
func (d *Data) Scalars() *array.DataArray {
	if s := d.slots[Scalars]; s != nil {
		return s
	}
	if len(d.arrays) > 0 {
		return d.arrays[0]
	}
	return nil
}
