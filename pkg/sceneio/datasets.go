package sceneio

import (
	"reflect"

	"github.com/matzehuels/scenesync/pkg/array"
	"github.com/matzehuels/scenesync/pkg/errors"
	"github.com/matzehuels/scenesync/pkg/fields"
	"github.com/matzehuels/scenesync/pkg/scene"
)

// Keys of the generated dataset branch below RegisterDataSet.
const (
	imageKey  = "image"
	valuesKey = "values"
)

func (d DatasetSpec) withDefaults() DatasetSpec {
	if d.Range == ([2]float64{}) {
		d.Range = [2]float64{0, 1}
	}
	if d.Components == 0 {
		d.Components = 1
	}
	if d.Array == "" {
		d.Array = "scalars"
	}
	return d
}

func (d DatasetSpec) validate() error {
	if err := errors.ValidateName("id", d.ID); err != nil {
		return err
	}
	for _, n := range d.Dimensions {
		if n < 1 {
			return errors.New(errors.ErrCodeInvalidInput, "dimensions must be positive, got %v", d.Dimensions)
		}
	}
	if d.Components < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "components must be positive, got %d", d.Components)
	}
	if _, err := array.ParseKind(d.Kind); err != nil {
		return err
	}
	return errors.ValidateName("array", d.Array)
}

// datasetNode builds RegisterDataSet(id) > ImageData > DataArray holding a
// linear ramp from Range[0] to Range[1].
func datasetNode(d DatasetSpec) (*node, error) {
	d = d.withDefaults()
	if err := d.validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "dataset %q", d.ID)
	}

	values := ramp(d.Range[0], d.Range[1], d.Dimensions[0]*d.Dimensions[1]*d.Dimensions[2]*d.Components)
	arr := fixed(scene.KindDataArray, valuesKey, scene.DataArrayProps{
		Name:         d.Array,
		Kind:         d.Kind,
		Values:       values,
		Components:   d.Components,
		Registration: string(fields.SetScalars),
	})
	img := fixed(scene.KindImageData, imageKey, scene.ImageDataProps{
		Dimensions: d.Dimensions,
		Spacing:    d.Spacing,
		Origin:     d.Origin,
	}, arr)
	return fixed(scene.KindRegisterDataSet, d.ID, scene.RegisterDataSetProps{ID: d.ID}, img), nil
}

func fixed[P any](kind, key string, props P, children ...*node) *node {
	n := &node{kind: kind, key: key, props: reflect.ValueOf(&props).Elem(), children: children}
	n.snapshot()
	return n
}

// ramp returns n values evenly spaced from lo to hi.
func ramp(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi
	return out
}
