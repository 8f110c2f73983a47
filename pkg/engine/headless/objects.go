package headless

import (
	"slices"

	"github.com/matzehuels/scenesync/pkg/colormap"
	"github.com/matzehuels/scenesync/pkg/engine"
	"github.com/matzehuels/scenesync/pkg/fields"
)

// Compile-time interface checks.
var (
	_ engine.Renderer              = (*Renderer)(nil)
	_ engine.Actor                 = (*Actor)(nil)
	_ engine.Property              = (*Property)(nil)
	_ engine.Mapper                = (*Mapper)(nil)
	_ engine.Mapper                = (*ImageMapper)(nil)
	_ engine.ImageOutput           = (*ImageMapper)(nil)
	_ engine.MultiAxisSlicer       = (*ImageMapper)(nil)
	_ engine.ImageOutput           = (*ImageArrayMapper)(nil)
	_ engine.SingleAxisSlicer      = (*ImageArrayMapper)(nil)
	_ engine.ColorTransferFunction = (*ColorTransferFunction)(nil)
	_ engine.PiecewiseFunction     = (*PiecewiseFunction)(nil)
	_ engine.ImageData             = (*ImageData)(nil)
)

// =============================================================================
// Renderer
// =============================================================================

// Renderer counts redraws and camera resets.
type Renderer struct {
	eng        *Engine
	id         string
	actors     []engine.Actor
	camera     *bag
	background [3]float64
	renders    int
	resets     int
}

// ID returns the renderer's identifier in the call log.
func (r *Renderer) ID() string { return r.id }

func (r *Renderer) AddActor(a engine.Actor) {
	if slices.Contains(r.actors, a) {
		return
	}
	r.eng.record(r.id, "AddActor", objectID(a))
	r.actors = append(r.actors, a)
}

func (r *Renderer) RemoveActor(a engine.Actor) {
	i := slices.Index(r.actors, a)
	if i < 0 {
		return
	}
	r.eng.record(r.id, "RemoveActor", objectID(a))
	r.actors = slices.Delete(r.actors, i, i+1)
}

func (r *Renderer) Actors() []engine.Actor { return slices.Clone(r.actors) }

func (r *Renderer) ResetCamera() {
	r.eng.record(r.id, "ResetCamera")
	r.resets++
}

func (r *Renderer) Render() {
	r.eng.record(r.id, "Render")
	r.renders++
}

func (r *Renderer) Camera() engine.Settable { return r.camera }

func (r *Renderer) SetBackground(red, green, blue float64) {
	r.eng.record(r.id, "SetBackground", red, green, blue)
	r.background = [3]float64{red, green, blue}
}

func (r *Renderer) Background() [3]float64 { return r.background }

func (r *Renderer) Delete() { r.eng.release(r.id) }

// RenderCount returns the number of Render calls.
func (r *Renderer) RenderCount() int { return r.renders }

// ResetCount returns the number of ResetCamera calls.
func (r *Renderer) ResetCount() int { return r.resets }

// =============================================================================
// Actor and Property
// =============================================================================

// Actor is a recorded renderable.
type Actor struct {
	*bag
	kind       engine.ActorKind
	visibility bool
	property   *Property
	mapper     engine.Mapper
}

func (a *Actor) Kind() engine.ActorKind { return a.kind }

// Set implements engine.Settable. A "visibility" entry also updates
// Visibility.
func (a *Actor) Set(p engine.Props) (bool, error) {
	changed, err := a.bag.Set(p)
	if err != nil {
		return false, err
	}
	if v, ok := p["visibility"].(bool); ok && v != a.visibility {
		a.visibility = v
		changed = true
	}
	return changed, nil
}

func (a *Actor) Visibility() bool { return a.visibility }

func (a *Actor) SetVisibility(v bool) bool {
	a.eng.record(a.id, "SetVisibility", v)
	if a.visibility == v {
		return false
	}
	a.visibility = v
	return true
}

func (a *Actor) Property() engine.Property { return a.property }

func (a *Actor) SetMapper(m engine.Mapper) {
	a.eng.record(a.id, "SetMapper", objectID(m))
	a.mapper = m
}

func (a *Actor) Mapper() engine.Mapper { return a.mapper }

func (a *Actor) Delete() { a.eng.release(a.id) }

// Property is a recorded actor appearance.
type Property struct {
	*bag
	rgb           engine.ColorTransferFunction
	opacity       engine.PiecewiseFunction
	interpolation string
}

func (p *Property) SetRGBTransferFunction(f engine.ColorTransferFunction) {
	p.eng.record(p.id, "SetRGBTransferFunction", objectID(f))
	p.rgb = f
}

func (p *Property) RGBTransferFunction() engine.ColorTransferFunction { return p.rgb }

func (p *Property) SetScalarOpacity(f engine.PiecewiseFunction) {
	p.eng.record(p.id, "SetScalarOpacity", objectID(f))
	p.opacity = f
}

func (p *Property) ScalarOpacity() engine.PiecewiseFunction { return p.opacity }

func (p *Property) SetInterpolationLinear() {
	p.eng.record(p.id, "SetInterpolationLinear")
	p.interpolation = "linear"
}

// Interpolation returns "linear" once SetInterpolationLinear was called.
func (p *Property) Interpolation() string { return p.interpolation }

// =============================================================================
// Mappers
// =============================================================================

// Mapper is a recorded mapper without slicing or image output. Volume
// mappers are plain Mappers.
type Mapper struct {
	*bag
	kind    engine.MapperKind
	input   engine.DataSet
	current engine.DataSet
	updates int
}

func newMapper(e *Engine, id string, kind engine.MapperKind, s schema) *Mapper {
	return &Mapper{bag: newBag(e, id, s), kind: kind}
}

func (m *Mapper) Kind() engine.MapperKind { return m.kind }

func (m *Mapper) SetInputData(d engine.DataSet) {
	m.eng.record(m.id, "SetInputData", objectID(d))
	m.input = d
}

func (m *Mapper) InputData() engine.DataSet { return m.input }

// Update makes the current input the mapper's output.
func (m *Mapper) Update() {
	m.eng.record(m.id, "Update")
	m.current = m.input
	m.updates++
}

// UpdateCount returns the number of Update calls.
func (m *Mapper) UpdateCount() int { return m.updates }

func (m *Mapper) Delete() { m.eng.release(m.id) }

// ImageMapper slices along any axis.
type ImageMapper struct {
	*Mapper
	slices map[engine.Axis]float64
}

func (m *ImageMapper) CurrentImage() engine.DataSet { return m.current }

func (m *ImageMapper) SetSliceIndex(axis engine.Axis, v float64) bool {
	m.eng.record(m.id, "SetSliceIndex", axis, v)
	if m.slices == nil {
		m.slices = make(map[engine.Axis]float64)
	}
	if cur, ok := m.slices[axis]; ok && cur == v {
		return false
	}
	m.slices[axis] = v
	return true
}

// Slice returns the last slice set on axis.
func (m *ImageMapper) Slice(axis engine.Axis) (float64, bool) {
	v, ok := m.slices[axis]
	return v, ok
}

// ImageArrayMapper slices along K only.
type ImageArrayMapper struct {
	*Mapper
	k    int
	hasK bool
}

func (m *ImageArrayMapper) CurrentImage() engine.DataSet { return m.current }

func (m *ImageArrayMapper) SetSlice(k int) bool {
	m.eng.record(m.id, "SetSlice", k)
	if m.hasK && m.k == k {
		return false
	}
	m.k, m.hasK = k, true
	return true
}

// Slice returns the last K slice.
func (m *ImageArrayMapper) Slice() (int, bool) { return m.k, m.hasK }

// =============================================================================
// Transfer functions
// =============================================================================

// ColorTransferFunction is a recorded lookup table.
type ColorTransferFunction struct {
	eng     *Engine
	id      string
	preset  *colormap.Preset
	lo, hi  float64
	updates int
}

func (f *ColorTransferFunction) ID() string { return f.id }

func (f *ColorTransferFunction) ApplyPreset(p *colormap.Preset) {
	name := "<nil>"
	if p != nil {
		name = p.Name
	}
	f.eng.record(f.id, "ApplyPreset", name)
	f.preset = p
}

func (f *ColorTransferFunction) Preset() *colormap.Preset { return f.preset }

func (f *ColorTransferFunction) SetMappingRange(lo, hi float64) {
	f.eng.record(f.id, "SetMappingRange", lo, hi)
	f.lo, f.hi = lo, hi
}

func (f *ColorTransferFunction) MappingRange() (float64, float64) { return f.lo, f.hi }

func (f *ColorTransferFunction) UpdateRange() {
	f.eng.record(f.id, "UpdateRange")
	f.updates++
}

func (f *ColorTransferFunction) Delete() { f.eng.release(f.id) }

// PiecewiseFunction is a recorded opacity function.
type PiecewiseFunction struct {
	eng   *Engine
	id    string
	nodes []engine.Node
}

func (f *PiecewiseFunction) ID() string { return f.id }

func (f *PiecewiseFunction) SetNodes(nodes []engine.Node) {
	f.eng.record(f.id, "SetNodes", len(nodes))
	f.nodes = slices.Clone(nodes)
}

func (f *PiecewiseFunction) Nodes() []engine.Node { return slices.Clone(f.nodes) }

func (f *PiecewiseFunction) Delete() { f.eng.release(f.id) }

// =============================================================================
// ImageData
// =============================================================================

// ImageData is an in-memory regular grid.
type ImageData struct {
	eng     *Engine
	id      string
	points  fields.Data
	dims    [3]int
	spacing [3]float64
	origin  [3]float64
}

func (d *ImageData) ID() string { return d.id }

func (d *ImageData) PointData() *fields.Data { return &d.points }

func (d *ImageData) IsEmpty() bool {
	s := d.points.Scalars()
	return s == nil || s.Len() == 0
}

func (d *ImageData) SetDimensions(dims [3]int) {
	d.eng.record(d.id, "SetDimensions", dims)
	d.dims = dims
}

func (d *ImageData) Dimensions() [3]int { return d.dims }

func (d *ImageData) SetSpacing(s [3]float64) {
	d.eng.record(d.id, "SetSpacing", s)
	d.spacing = s
}

func (d *ImageData) Spacing() [3]float64 { return d.spacing }

func (d *ImageData) SetOrigin(o [3]float64) {
	d.eng.record(d.id, "SetOrigin", o)
	d.origin = o
}

func (d *ImageData) Origin() [3]float64 { return d.origin }

func (d *ImageData) Delete() { d.eng.release(d.id) }

// objectID returns the call-log identifier of v, or "<nil>".
func objectID(v any) string {
	if v == nil {
		return "<nil>"
	}
	if o, ok := v.(interface{ ID() string }); ok {
		return o.ID()
	}
	return "<external>"
}
