package engine

import (
	"github.com/matzehuels/scenesync/pkg/colormap"
	"github.com/matzehuels/scenesync/pkg/fields"
)

// =============================================================================
// Kinds
// =============================================================================

// ActorKind selects the renderable created by [Factory.NewActor].
type ActorKind string

// Actor kinds.
const (
	ActorImageSlice ActorKind = "ImageSlice"
	ActorVolume     ActorKind = "Volume"
)

// MapperKind selects the mapper created by [Factory.NewMapper].
type MapperKind string

// Mapper kinds.
const (
	MapperImage      MapperKind = "ImageMapper"
	MapperImageArray MapperKind = "ImageArrayMapper"
	MapperVolume     MapperKind = "VolumeMapper"
)

// Axis names a slicing axis. I, J and K are index axes; X, Y and Z are world
// coordinate axes.
type Axis int

// Slicing axes.
const (
	AxisI Axis = iota
	AxisJ
	AxisK
	AxisX
	AxisY
	AxisZ
)

// String returns the single-letter axis name.
func (a Axis) String() string {
	if a < AxisI || a > AxisZ {
		return "?"
	}
	return string("ijkxyz"[a])
}

// Index reports whether a is an index axis.
func (a Axis) Index() bool { return a <= AxisK }

// =============================================================================
// Factory
// =============================================================================

// Factory creates pipeline objects.
type Factory interface {
	NewRenderer() Renderer
	NewActor(kind ActorKind) Actor
	// NewMapper returns an UNSUPPORTED_CAPABILITY error for kinds the engine
	// cannot build.
	NewMapper(kind MapperKind) (Mapper, error)
	NewColorTransferFunction() ColorTransferFunction
	NewPiecewiseFunction() PiecewiseFunction
	NewImageData() ImageData
}

// =============================================================================
// Pipeline objects
// =============================================================================

// Renderer draws a set of actors into one view.
type Renderer interface {
	AddActor(a Actor)
	RemoveActor(a Actor)
	Actors() []Actor
	ResetCamera()
	Render()
	Camera() Settable
	SetBackground(r, g, b float64)
	Background() [3]float64
	Delete()
}

// Actor is a renderable placed in a renderer.
type Actor interface {
	Settable
	Kind() ActorKind
	Visibility() bool
	// SetVisibility reports whether the visibility changed.
	SetVisibility(v bool) bool
	Property() Property
	SetMapper(m Mapper)
	Mapper() Mapper
	Delete()
}

// Property holds an actor's appearance.
type Property interface {
	Settable
	SetRGBTransferFunction(f ColorTransferFunction)
	RGBTransferFunction() ColorTransferFunction
	SetScalarOpacity(f PiecewiseFunction)
	ScalarOpacity() PiecewiseFunction
	SetInterpolationLinear()
}

// Mapper turns a dataset into renderable primitives.
type Mapper interface {
	Settable
	Kind() MapperKind
	SetInputData(d DataSet)
	InputData() DataSet
	// Update re-executes the mapper against its current input.
	Update()
	Delete()
}

// ImageOutput is implemented by mappers that expose the image they last
// produced.
type ImageOutput interface {
	CurrentImage() DataSet
}

// MultiAxisSlicer is implemented by mappers that slice along any index or
// world axis. SetSliceIndex reports whether the slice moved.
type MultiAxisSlicer interface {
	SetSliceIndex(axis Axis, v float64) bool
}

// SingleAxisSlicer is implemented by mappers that only slice along K.
type SingleAxisSlicer interface {
	SetSlice(k int) bool
}

// ColorTransferFunction maps scalars to colors.
type ColorTransferFunction interface {
	// ApplyPreset replaces the color points. The mapping range is kept.
	ApplyPreset(p *colormap.Preset)
	Preset() *colormap.Preset
	SetMappingRange(lo, hi float64)
	MappingRange() (lo, hi float64)
	// UpdateRange recomputes internal tables after a range change.
	UpdateRange()
	Delete()
}

// Node is one control point of a [PiecewiseFunction].
type Node struct {
	X         float64
	Y         float64
	Midpoint  float64
	Sharpness float64
}

// PiecewiseFunction maps scalars to opacity.
type PiecewiseFunction interface {
	SetNodes(nodes []Node)
	Nodes() []Node
	Delete()
}

// DataSet is pipeline input with per-point fields.
type DataSet interface {
	PointData() *fields.Data
	// IsEmpty reports whether the dataset carries no point scalars.
	IsEmpty() bool
}

// ImageData is a regular grid dataset.
type ImageData interface {
	DataSet
	SetDimensions(d [3]int)
	Dimensions() [3]int
	SetSpacing(s [3]float64)
	Spacing() [3]float64
	SetOrigin(o [3]float64)
	Origin() [3]float64
	Delete()
}
