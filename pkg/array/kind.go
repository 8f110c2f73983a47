// Package array constructs typed numeric buffers and the named data arrays
// that scene nodes register on a dataset's point data.
//
// A [Kind] names the element type of a buffer. Kinds are accepted in two
// spellings, the typed-array class name ("Float32Array") and the short element
// name ("float32"); both normalize to the same Kind:
//
//	k, _ := array.ParseKind("float32")   // array.Float32
//	buf, err := array.Build(k, []float64{0, 1, 2, 3})
//
// A [DataArray] couples a buffer with a name and a component count. Its
// identity is stable across [DataArray.SetData] calls so that registries can
// hold it by pointer while the buffer underneath is rebuilt.
package array

import (
	"strings"

	"github.com/matzehuels/scenesync/pkg/errors"
)

// Kind is a numeric element type.
type Kind string

// Supported element kinds, named after their typed-array classes.
const (
	Int8         Kind = "Int8Array"
	Uint8        Kind = "Uint8Array"
	Uint8Clamped Kind = "Uint8ClampedArray"
	Int16        Kind = "Int16Array"
	Uint16       Kind = "Uint16Array"
	Int32        Kind = "Int32Array"
	Uint32       Kind = "Uint32Array"
	Float32      Kind = "Float32Array"
	Float64      Kind = "Float64Array"
)

// DefaultKind is used when a binding does not name one.
const DefaultKind = Float32

var kinds = map[string]Kind{
	"int8":         Int8,
	"uint8":        Uint8,
	"uint8clamped": Uint8Clamped,
	"int16":        Int16,
	"uint16":       Uint16,
	"int32":        Int32,
	"uint32":       Uint32,
	"float32":      Float32,
	"float64":      Float64,
}

// ParseKind normalizes a kind name. The empty string yields [DefaultKind].
// Unknown names are a CONFIGURATION error.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return DefaultKind, nil
	}
	key := strings.ToLower(strings.TrimSuffix(s, "Array"))
	if k, ok := kinds[key]; ok {
		return k, nil
	}
	return "", errors.Configuration("type", "unknown array kind %q", s)
}

// MustParseKind is like ParseKind but panics on unknown names.
// Intended for constants in tests and examples.
func MustParseKind(s string) Kind {
	k, err := ParseKind(s)
	if err != nil {
		panic(err)
	}
	return k
}

// Short returns the element name ("float32") for the kind.
func (k Kind) Short() string {
	for short, kind := range kinds {
		if kind == k {
			return short
		}
	}
	return string(k)
}

// ByteSize returns the size of one element in bytes.
func (k Kind) ByteSize() int {
	switch k {
	case Int8, Uint8, Uint8Clamped:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Float64:
		return 8
	}
	return 0
}
