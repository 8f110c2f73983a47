package headless

import (
	"reflect"
	"slices"
	"strings"

	"github.com/matzehuels/scenesync/pkg/engine"
	"github.com/matzehuels/scenesync/pkg/errors"
)

type valueKind int

const (
	kindNumber valueKind = iota
	kindBool
	kindVec3
	kindString
)

func (k valueKind) String() string {
	switch k {
	case kindNumber:
		return "number"
	case kindBool:
		return "bool"
	case kindVec3:
		return "3-vector"
	case kindString:
		return "string"
	}
	return "unknown"
}

func isNumber(v reflect.Value) bool {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (k valueKind) accepts(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch k {
	case kindNumber:
		return isNumber(rv)
	case kindBool:
		return rv.Kind() == reflect.Bool
	case kindString:
		return rv.Kind() == reflect.String
	case kindVec3:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return false
		}
		if rv.Len() != 3 {
			return false
		}
		for i := 0; i < 3; i++ {
			if !isNumber(rv.Index(i)) {
				return false
			}
		}
		return true
	}
	return false
}

type schema map[string]valueKind

var (
	actorSchema = schema{
		"visibility":  kindBool,
		"position":    kindVec3,
		"scale":       kindVec3,
		"orientation": kindVec3,
		"origin":      kindVec3,
		"pickable":    kindBool,
		"dragable":    kindBool,
	}
	slicePropertySchema = schema{
		"colorWindow":               kindNumber,
		"colorLevel":                kindNumber,
		"opacity":                   kindNumber,
		"ambient":                   kindNumber,
		"diffuse":                   kindNumber,
		"interpolationType":         kindNumber,
		"independentComponents":     kindBool,
		"useLookupTableScalarRange": kindBool,
	}
	volumePropertySchema = schema{
		"shade":                     kindBool,
		"ambient":                   kindNumber,
		"diffuse":                   kindNumber,
		"specular":                  kindNumber,
		"specularPower":             kindNumber,
		"interpolationType":         kindNumber,
		"independentComponents":     kindBool,
		"useGradientOpacity":        kindBool,
		"scalarOpacityUnitDistance": kindNumber,
	}
	imageMapperSchema = schema{
		"slicingMode":       kindNumber,
		"sliceAtFocalPoint": kindBool,
	}
	imageArrayMapperSchema = schema{
		"sliceAtFocalPoint": kindBool,
	}
	volumeMapperSchema = schema{
		"sampleDistance":            kindNumber,
		"imageSampleDistance":       kindNumber,
		"maximumSamplesPerRay":      kindNumber,
		"autoAdjustSampleDistances": kindBool,
		"blendMode":                 kindNumber,
	}
	cameraSchema = schema{
		"position":           kindVec3,
		"focalPoint":         kindVec3,
		"viewUp":             kindVec3,
		"viewAngle":          kindNumber,
		"parallelProjection": kindBool,
		"parallelScale":      kindNumber,
	}
)

// bag is a validated property store shared by all settable objects.
type bag struct {
	eng    *Engine
	id     string
	schema schema
	values engine.Props
}

func newBag(e *Engine, id string, s schema) *bag {
	return &bag{eng: e, id: id, schema: s, values: engine.Props{}}
}

// ID returns the object's identifier in the call log.
func (b *bag) ID() string { return b.id }

// Set implements engine.Settable.
func (b *bag) Set(p engine.Props) (bool, error) {
	if len(p) == 0 {
		return false, nil
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		kind, ok := b.schema[k]
		if !ok {
			return false, errors.Configuration(k, "unknown property on %s", b.id)
		}
		if !kind.accepts(p[k]) {
			return false, errors.Configuration(k, "expects %s, got %T", kind, p[k])
		}
	}

	b.eng.record(b.id, "Set", strings.Join(keys, ","))
	changed := false
	for _, k := range keys {
		if old, ok := b.values[k]; ok && reflect.DeepEqual(old, p[k]) {
			continue
		}
		b.values[k] = p[k]
		changed = true
	}
	return changed, nil
}

// Get implements engine.Settable.
func (b *bag) Get(key string) (any, bool) {
	v, ok := b.values[key]
	return v, ok
}
