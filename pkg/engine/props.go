package engine

import (
	"maps"
	"reflect"
)

// Props is a free-form property bag.
type Props map[string]any

// SameProps reports whether a and b are the same bag: both nil, or the same
// map value. Two distinct maps with equal contents are not the same.
func SameProps(a, b Props) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}

// Diff returns the entries of next whose value differs from prev. Keys that
// are only in prev are not reported: removing a key leaves the target's value
// as it was.
func Diff(prev, next Props) Props {
	var out Props
	for k, v := range next {
		if old, ok := prev[k]; ok && reflect.DeepEqual(old, v) {
			continue
		}
		if out == nil {
			out = make(Props, len(next))
		}
		out[k] = v
	}
	return out
}

// Without returns a copy of p with keys removed. It returns p itself when
// none of the keys is present.
func (p Props) Without(keys ...string) Props {
	hit := false
	for _, k := range keys {
		if _, ok := p[k]; ok {
			hit = true
			break
		}
	}
	if !hit {
		return p
	}
	out := maps.Clone(p)
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Settable is a pipeline object configured through property bags.
type Settable interface {
	// Set applies every entry of p atomically. changed reports whether any
	// stored value differs afterwards.
	Set(p Props) (changed bool, err error)

	// Get returns the current value of key.
	Get(key string) (any, bool)
}
