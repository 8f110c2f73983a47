package scene

import (
	"github.com/matzehuels/scenesync/pkg/colormap"
	"github.com/matzehuels/scenesync/pkg/engine"
	"github.com/matzehuels/scenesync/pkg/errors"
	"github.com/matzehuels/scenesync/pkg/host"
	"github.com/matzehuels/scenesync/pkg/pipeline"
	"github.com/matzehuels/scenesync/pkg/scope"
)

// RepresentationProps configures a slice or volume [Representation].
// Zero values and nil pointers mean "not supplied".
type RepresentationProps struct {
	// Actor is merged onto the actor. A "visibility" entry is recorded as the
	// requested visibility and never applied directly.
	Actor engine.Props
	// Property is merged onto the actor's property. A "visibility" entry is
	// treated like the actor's when the actor bag has none.
	Property engine.Props
	// Mapper is merged onto the mapper.
	Mapper engine.Props

	// MapperKind selects the mapper to build. Changing it rebuilds the mapper.
	MapperKind engine.MapperKind
	// MapperInstance is a caller-owned mapper used instead of building one.
	// It is unlinked on unmount, never deleted.
	MapperInstance engine.Mapper

	// ColorMapPreset names the lookup table preset. Defaults to "Grayscale".
	ColorMapPreset string
	// ColorDataRange defaults to AutoRange().
	ColorDataRange ColorRange

	ISlice, JSlice, KSlice *int
	XSlice, YSlice, ZSlice *float64
}

func (p RepresentationProps) withDefaults() RepresentationProps {
	if p.ColorMapPreset == "" {
		p.ColorMapPreset = colormap.DefaultPreset
	}
	if !p.ColorDataRange.IsSet() {
		p.ColorDataRange = AutoRange()
	}
	return p
}

// requestedVisibility returns the visibility asked for in the actor bag,
// falling back to the property bag.
func (p *RepresentationProps) requestedVisibility() (bool, bool) {
	if v, ok := p.Actor["visibility"].(bool); ok {
		return v, true
	}
	v, ok := p.Property["visibility"].(bool)
	return v, ok
}

// slice returns the requested index for axis, if supplied.
func (p *RepresentationProps) slice(axis engine.Axis) (float64, bool) {
	var ip *int
	var fp *float64
	switch axis {
	case engine.AxisI:
		ip = p.ISlice
	case engine.AxisJ:
		ip = p.JSlice
	case engine.AxisK:
		ip = p.KSlice
	case engine.AxisX:
		fp = p.XSlice
	case engine.AxisY:
		fp = p.YSlice
	case engine.AxisZ:
		fp = p.ZSlice
	}
	switch {
	case ip != nil:
		return float64(*ip), true
	case fp != nil:
		return *fp, true
	}
	return 0, false
}

// variant holds what differs between slice and volume representations.
type variant struct {
	actor         engine.ActorKind
	mapper        engine.MapperKind
	attachOpacity bool
}

var (
	sliceVariant  = variant{actor: engine.ActorImageSlice, mapper: engine.MapperImage}
	volumeVariant = variant{actor: engine.ActorVolume, mapper: engine.MapperVolume, attachOpacity: true}
)

type mapperConfig struct {
	kind     engine.MapperKind
	instance engine.Mapper
}

type mapperHandle struct {
	engine.Mapper
	owned bool
}

// Representation renders one dataset into the enclosing view.
//
// Its actor stays hidden until data arrives: at all times the actor is
// visible exactly when visibility was requested and data is available.
// Once data has arrived the representation never returns to the no-data
// state, even if later input is empty.
type Representation struct {
	in      *host.Instance
	variant variant
	scope   *scope.Scope

	view    *View
	actor   engine.Actor
	mapper  *pipeline.Object[mapperHandle, mapperConfig]
	lut     engine.ColorTransferFunction
	opacity engine.PiecewiseFunction
	input   engine.DataSet

	validData  bool
	requested  bool // last requested visibility
	visApplied bool // whether a requested visibility was ever applied

	// Last successfully applied values.
	actorBag    engine.Props
	propertyBag engine.Props
	mapperBag   engine.Props
	preset      string
	colorRange  ColorRange

	props    RepresentationProps
	applied  bool // first update done
	updating bool
}

func newSliceRepresentation(in *host.Instance) host.Component {
	return newRepresentation(in, sliceVariant)
}

func newVolumeRepresentation(in *host.Instance) host.Component {
	return newRepresentation(in, volumeVariant)
}

func newRepresentation(in *host.Instance, v variant) *Representation {
	r := &Representation{in: in, variant: v, requested: true}
	r.mapper = pipeline.New(pipeline.Config[mapperHandle, mapperConfig]{
		Build: func(c mapperConfig) (mapperHandle, error) {
			if c.instance != nil {
				return mapperHandle{Mapper: c.instance}, nil
			}
			m, err := in.Env.Engine.NewMapper(c.kind)
			if err != nil {
				return mapperHandle{}, err
			}
			return mapperHandle{Mapper: m, owned: true}, nil
		},
		Destroy: func(h mapperHandle) {
			if h.owned {
				h.Delete()
			}
		},
		Equal: func(a, b mapperConfig) bool { return a == b },
	})
	return r
}

func (r *Representation) mapperConfigFor(p RepresentationProps) mapperConfig {
	kind := p.MapperKind
	if kind == "" {
		kind = r.variant.mapper
	}
	return mapperConfig{kind: kind, instance: p.MapperInstance}
}

// Mount implements host.Component. It builds the pipeline fragment with the
// actor hidden, attaches it to the enclosing view and runs the first update.
func (r *Representation) Mount(s *scope.Scope, props any) *scope.Scope {
	r.scope = s
	p, err := host.PropsAs[RepresentationProps](props)
	if err != nil {
		r.in.Report(err)
	}
	p = p.withDefaults()

	eng := r.in.Env.Engine
	r.lut = eng.NewColorTransferFunction()
	r.opacity = eng.NewPiecewiseFunction()
	r.preset = p.ColorMapPreset
	if preset, ok := colormap.Resolve(p.ColorMapPreset); ok {
		r.lut.ApplyPreset(preset)
	} else {
		r.in.Report(errors.Configuration("colorMapPreset", "unknown preset %q", p.ColorMapPreset))
		preset, _ = colormap.Resolve(colormap.DefaultPreset)
		r.lut.ApplyPreset(preset)
	}

	r.actor = eng.NewActor(r.variant.actor)
	r.actor.SetVisibility(false)
	if err := r.mapper.Create(r.mapperConfigFor(p)); err != nil {
		r.in.Report(err)
	} else {
		r.actor.SetMapper(r.mapper.Handle().Mapper)
	}

	prop := r.actor.Property()
	prop.SetRGBTransferFunction(r.lut)
	if r.variant.attachOpacity {
		prop.SetScalarOpacity(r.opacity)
	}
	prop.SetInterpolationLinear()

	r.attachView()
	r.apply(p)

	return s.With(scope.Representation, DataReceiver(r)).With(scope.Downstream, Downstream(r))
}

// attachView adds the actor to the enclosing view's renderer once the view
// is reachable.
func (r *Representation) attachView() {
	if r.view != nil {
		return
	}
	v, ok := scope.Lookup[*View](r.scope, scope.View)
	if !ok {
		r.in.Report(errors.MissingContext(scope.View.String()))
		return
	}
	r.view = v
	v.Renderer().AddActor(r.actor)
}

// Update implements host.Component.
func (r *Representation) Update(props any) bool {
	p, err := host.PropsAs[RepresentationProps](props)
	if err != nil {
		r.in.Report(err)
		return false
	}
	return r.apply(p.withDefaults())
}

// apply runs the ordered diff steps against the last applied props.
func (r *Representation) apply(next RepresentationProps) bool {
	if r.updating {
		r.in.Report(errors.New(errors.ErrCodeInternal, "re-entrant update rejected"))
		return false
	}
	r.updating = true
	defer func() { r.updating = false }()

	first := !r.applied
	prev := r.props
	changed := false

	r.attachView()

	// Actor bag, without visibility.
	changed = r.mergeBag(r.actor, &r.actorBag, next.Actor, "visibility") || changed

	// Property bag, without visibility.
	changed = r.mergeBag(r.actor.Property(), &r.propertyBag, next.Property, "visibility") || changed

	// Mapper kind or instance, then mapper bag.
	changed = r.applyMapper(next) || changed
	if r.mapper.Built() {
		changed = r.mergeBag(r.mapper.Handle().Mapper, &r.mapperBag, next.Mapper) || changed
	}

	// Preset.
	if next.ColorMapPreset != r.preset {
		if preset, ok := colormap.Resolve(next.ColorMapPreset); ok {
			r.lut.ApplyPreset(preset)
			r.preset = next.ColorMapPreset
			changed = true
		} else {
			r.in.Report(errors.Configuration("colorMapPreset", "unknown preset %q", next.ColorMapPreset))
		}
	}

	// Color range, compared by value.
	if first || next.ColorDataRange != r.colorRange {
		changed = r.applyColorRange(next.ColorDataRange, first) || changed
	}

	// Slices, once data is available.
	if r.validData {
		var prevProps *RepresentationProps
		if !first {
			prevProps = &prev
		}
		changed = r.applySlices(&next, prevProps) || changed
	}

	// Visibility gate.
	if v, ok := next.requestedVisibility(); ok && (!r.visApplied || v != r.requested) {
		r.requested = v
		r.visApplied = true
		changed = r.actor.SetVisibility(r.requested && r.validData) || changed
	}

	r.props = next
	r.applied = true

	if changed {
		// Without data the range waits for DataAvailable.
		if r.colorRange.IsAuto() && r.validData {
			r.recomputeRange()
		}
		r.requestRender()
	}
	r.in.Logger().Debug("update", "changed", changed, "validData", r.validData)
	return changed
}

// mergeBag applies bag to target unless it is the very bag applied last.
// Only keys that differ from the last bag are sent, minus the stripped ones.
// On failure *last is kept so the next update retries.
func (r *Representation) mergeBag(target engine.Settable, last *engine.Props, bag engine.Props, strip ...string) bool {
	if bag == nil || engine.SameProps(bag, *last) {
		return false
	}
	changed, err := pipeline.ApplyProps(target, last.Without(strip...), bag.Without(strip...))
	if err != nil {
		r.in.Report(err)
		return false
	}
	*last = bag
	return changed
}

func (r *Representation) applyMapper(next RepresentationProps) bool {
	rebuilt, err := r.mapper.Apply(r.mapperConfigFor(next))
	if err != nil {
		r.in.Report(err)
		return false
	}
	if !rebuilt {
		return false
	}
	m := r.mapper.Handle().Mapper
	r.actor.SetMapper(m)
	if r.input != nil {
		m.SetInputData(r.input)
	}
	// A fresh mapper needs its whole bag and every slice again.
	r.mapperBag = nil
	if r.validData {
		r.applySlices(&next, nil)
	}
	return true
}

func (r *Representation) applyColorRange(c ColorRange, first bool) bool {
	if c.IsAuto() {
		r.colorRange = c
		if first {
			r.setRange(0, 1)
		}
		// Later switches to auto are served by the recompute that follows
		// every changed update.
		return true
	}
	lo, hi := c.Bounds()
	if err := errors.ValidateRange(lo, hi); err != nil {
		r.in.Report(err)
		if first {
			// Nothing valid was applied yet: start out auto.
			return r.applyColorRange(AutoRange(), true)
		}
		return false
	}
	r.colorRange = c
	r.setRange(lo, hi)
	return true
}

func (r *Representation) setRange(lo, hi float64) {
	r.lut.SetMappingRange(lo, hi)
	r.lut.UpdateRange()
	r.opacity.SetNodes(rampNodes(lo, hi))
}

var allAxes = []engine.Axis{engine.AxisI, engine.AxisJ, engine.AxisK, engine.AxisX, engine.AxisY, engine.AxisZ}

// applySlices forwards slice indices that differ from prev (all supplied ones
// when prev is nil) to the mapper, as far as it can slice.
func (r *Representation) applySlices(next, prev *RepresentationProps) bool {
	if !r.mapper.Built() {
		return false
	}
	m := r.mapper.Handle().Mapper
	changed := false
	for _, axis := range allAxes {
		v, ok := next.slice(axis)
		if !ok {
			continue
		}
		if prev != nil {
			if pv, pok := prev.slice(axis); pok && pv == v {
				continue
			}
		}
		switch s := m.(type) {
		case engine.MultiAxisSlicer:
			changed = s.SetSliceIndex(axis, v) || changed
		case engine.SingleAxisSlicer:
			if axis == engine.AxisK {
				changed = s.SetSlice(int(v)) || changed
			}
		default:
			r.in.Logger().Debug("slice ignored", "axis", axis,
				"err", errors.New(errors.ErrCodeUnsupported, "mapper %s cannot slice", m.Kind()))
		}
	}
	return changed
}

// recomputeRange re-executes the mapper and maps colors and opacity onto the
// scalar range of its output. Missing output skips the recolor.
func (r *Representation) recomputeRange() {
	if !r.mapper.Built() {
		return
	}
	m := r.mapper.Handle().Mapper
	m.Update()
	if m.InputData() == nil {
		r.in.Report(errors.New(errors.ErrCodeDataUnavailable, "mapper has no input"))
		return
	}
	var img engine.DataSet
	if out, ok := m.(engine.ImageOutput); ok {
		img = out.CurrentImage()
	} else {
		img = m.InputData()
	}
	if img == nil {
		r.in.Report(errors.New(errors.ErrCodeDataUnavailable, "mapper produced no output"))
		return
	}
	scalars := img.PointData().Scalars()
	if scalars == nil {
		r.in.Report(errors.New(errors.ErrCodeDataUnavailable, "output has no point scalars"))
		return
	}
	lo, hi, ok := scalars.Range()
	if !ok {
		r.in.Report(errors.New(errors.ErrCodeDataUnavailable, "point scalars %q are empty", scalars.Name()))
		return
	}
	r.setRange(lo, hi)
}

func (r *Representation) requestRender() {
	if r.view != nil {
		r.view.RequestRender()
	}
}

// Unmount implements host.Component. The actor leaves the renderer before
// actor, mapper and transfer functions are released.
func (r *Representation) Unmount() {
	if r.view != nil && r.view.Renderer() != nil {
		r.view.Renderer().RemoveActor(r.actor)
	}
	r.view = nil
	r.actor.Delete()
	if r.mapper.Built() && !r.mapper.Handle().owned {
		r.mapper.Handle().SetInputData(nil)
	}
	r.mapper.Destroy()
	r.lut.Delete()
	r.opacity.Delete()
}

// =============================================================================
// Data signals
// =============================================================================

// SetInputData implements Downstream by feeding the mapper.
func (r *Representation) SetInputData(d engine.DataSet) {
	r.input = d
	if r.mapper.Built() {
		r.mapper.Handle().SetInputData(d)
	}
}

// InputData implements Downstream.
func (r *Representation) InputData() engine.DataSet { return r.input }

// HasData implements DataReceiver.
func (r *Representation) HasData() bool { return r.validData }

// DataAvailable moves the representation to the has-data state: the
// requested visibility is restored, pending slices are applied, the camera
// is reset if the view asks for it, and the color range is refreshed. It is
// a no-op once data is available.
func (r *Representation) DataAvailable() {
	if r.validData {
		return
	}
	r.validData = true
	r.actor.SetVisibility(r.requested)
	r.applySlices(&r.props, nil)
	if r.view != nil && r.view.AutoResetCamera() {
		r.view.ResetCamera()
	}
	r.DataChanged()
}

// DataChanged refreshes an automatic color range from the current data and
// requests a redraw.
func (r *Representation) DataChanged() {
	if r.colorRange.IsAuto() {
		r.recomputeRange()
	}
	r.requestRender()
}

// =============================================================================
// Inspection
// =============================================================================

// RepresentationState is a read-only view of a representation.
type RepresentationState struct {
	ValidData           bool
	RequestedVisibility bool
	Visible             bool
	Preset              string
	ColorRange          ColorRange
	MappingRange        [2]float64
	OpacityNodes        []engine.Node
	ActorKind           engine.ActorKind
	MapperKind          engine.MapperKind
	HasInput            bool
}

// State returns the current state.
func (r *Representation) State() RepresentationState {
	lo, hi := r.lut.MappingRange()
	st := RepresentationState{
		ValidData:           r.validData,
		RequestedVisibility: r.requested,
		Visible:             r.actor.Visibility(),
		Preset:              r.preset,
		ColorRange:          r.colorRange,
		MappingRange:        [2]float64{lo, hi},
		OpacityNodes:        r.opacity.Nodes(),
		ActorKind:           r.actor.Kind(),
		HasInput:            r.input != nil,
	}
	if r.mapper.Built() {
		st.MapperKind = r.mapper.Handle().Kind()
	}
	return st
}

// Actor returns the owned actor.
func (r *Representation) Actor() engine.Actor { return r.actor }

// Mapper returns the current mapper.
func (r *Representation) Mapper() engine.Mapper { return r.mapper.Handle().Mapper }

// LookupTable returns the color transfer function.
func (r *Representation) LookupTable() engine.ColorTransferFunction { return r.lut }

// OpacityFunction returns the opacity transfer function.
func (r *Representation) OpacityFunction() engine.PiecewiseFunction { return r.opacity }
