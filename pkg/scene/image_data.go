package scene

import (
	"github.com/matzehuels/scenesync/pkg/array"
	"github.com/matzehuels/scenesync/pkg/engine"
	"github.com/matzehuels/scenesync/pkg/errors"
	"github.com/matzehuels/scenesync/pkg/host"
	"github.com/matzehuels/scenesync/pkg/pipeline"
	"github.com/matzehuels/scenesync/pkg/scope"
)

// ImageDataProps configures an [ImageData].
type ImageDataProps struct {
	Dimensions [3]int
	// Spacing defaults to (1, 1, 1).
	Spacing [3]float64
	Origin  [3]float64
}

func (p ImageDataProps) withDefaults() ImageDataProps {
	if p.Spacing == ([3]float64{}) {
		p.Spacing = [3]float64{1, 1, 1}
	}
	return p
}

func (p ImageDataProps) validate() error {
	for _, d := range p.Dimensions {
		if d < 0 {
			return errors.Configuration("dimensions", "negative dimension in %v", p.Dimensions)
		}
	}
	return nil
}

// arrayStamp identifies the contents of one registered array.
type arrayStamp struct {
	arr        *array.DataArray
	name       string
	buf        array.Buffer
	components int
}

// ImageData owns an image grid. Its DataArray children register on the
// image's point data; once they are mounted or updated the image is fed
// into the enclosing Downstream target and the enclosing representation is
// told about it.
type ImageData struct {
	in     *host.Instance
	scope  *scope.Scope
	image  *pipeline.Object[engine.ImageData, ImageDataProps]
	fed    engine.DataSet
	stamps []arrayStamp
}

func newImageData(in *host.Instance) host.Component {
	return &ImageData{
		in: in,
		image: pipeline.New(pipeline.Config[engine.ImageData, ImageDataProps]{
			Build: func(p ImageDataProps) (engine.ImageData, error) {
				img := in.Env.Engine.NewImageData()
				img.SetDimensions(p.Dimensions)
				img.SetSpacing(p.Spacing)
				img.SetOrigin(p.Origin)
				return img, nil
			},
			Patch: func(img engine.ImageData, prev, next ImageDataProps) (bool, error) {
				if next.Dimensions != prev.Dimensions {
					img.SetDimensions(next.Dimensions)
				}
				if next.Spacing != prev.Spacing {
					img.SetSpacing(next.Spacing)
				}
				if next.Origin != prev.Origin {
					img.SetOrigin(next.Origin)
				}
				return true, nil
			},
			Destroy: func(img engine.ImageData) { img.Delete() },
		}),
	}
}

// Mount implements host.Component. Children see the image's point data as
// the Fields channel.
func (d *ImageData) Mount(s *scope.Scope, props any) *scope.Scope {
	d.scope = s
	p, err := host.PropsAs[ImageDataProps](props)
	if err != nil {
		d.in.Report(err)
	}
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		d.in.Report(err)
		p.Dimensions = [3]int{}
	}
	if err := d.image.Create(p); err != nil {
		d.in.Report(err)
		return s
	}
	return s.With(scope.Fields, d.image.Handle().PointData())
}

// Update implements host.Component.
func (d *ImageData) Update(props any) bool {
	p, err := host.PropsAs[ImageDataProps](props)
	if err != nil {
		d.in.Report(err)
		return false
	}
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		d.in.Report(err)
		return false
	}
	changed, err := d.image.Apply(p)
	if err != nil {
		d.in.Report(err)
		return false
	}
	if changed {
		// Geometry changed: announce the image again after the children ran.
		d.stamps = nil
	}
	return changed
}

// ChildrenUpdated implements host.ChildrenAware. It feeds the image
// downstream and signals the representation when the arrays changed since
// the last time.
func (d *ImageData) ChildrenUpdated() {
	if !d.image.Built() {
		return
	}
	img := d.image.Handle()
	if target, ok := scope.Lookup[Downstream](d.scope, scope.Downstream); ok {
		if d.fed != img {
			target.SetInputData(img)
			d.fed = img
		}
	} else {
		d.in.Report(errors.MissingContext(scope.Downstream.String()))
		return
	}

	stamps := stampArrays(img)
	if equalStamps(stamps, d.stamps) {
		return
	}
	d.stamps = stamps
	if rep, ok := scope.Lookup[DataReceiver](d.scope, scope.Representation); ok {
		signalData(rep, img)
	}
}

func stampArrays(img engine.DataSet) []arrayStamp {
	arrays := img.PointData().Arrays()
	out := make([]arrayStamp, len(arrays))
	for i, a := range arrays {
		out[i] = arrayStamp{arr: a, name: a.Name(), buf: a.Data(), components: a.Components()}
	}
	return out
}

func equalStamps(a, b []arrayStamp) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Unmount implements host.Component.
func (d *ImageData) Unmount() {
	if target, ok := scope.Lookup[Downstream](d.scope, scope.Downstream); ok {
		unlink(target, d.fed)
	}
	d.fed = nil
	d.image.Destroy()
}

// Image returns the owned image.
func (d *ImageData) Image() engine.ImageData { return d.image.Handle() }
