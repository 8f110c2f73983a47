package scene

import (
	"path"
	"slices"
	"time"

	"github.com/matzehuels/scenesync/pkg/engine"
	"github.com/matzehuels/scenesync/pkg/errors"
	"github.com/matzehuels/scenesync/pkg/host"
	"github.com/matzehuels/scenesync/pkg/observability"
	"github.com/matzehuels/scenesync/pkg/pipeline"
	"github.com/matzehuels/scenesync/pkg/scope"
)

// ViewProps configures a [View].
type ViewProps struct {
	// ID names the view in the enclosing view registry. Defaults to the
	// element key.
	ID string

	// Background is an RGB triple in [0, 1]. Nil leaves the renderer's.
	Background []float64

	// Camera is merged onto the renderer's camera.
	Camera engine.Props

	// AutoResetCamera resets the camera when a representation first receives
	// data. Defaults to true.
	AutoResetCamera *bool

	// Immediate renders on every request instead of coalescing requests
	// until the next flush.
	Immediate bool
}

func (p ViewProps) withDefaults() ViewProps {
	if p.AutoResetCamera == nil {
		p.AutoResetCamera = Bool(true)
	}
	return p
}

type viewConfig struct {
	background [3]float64
	hasBG      bool
}

// View owns a renderer and establishes the View channel.
type View struct {
	in       *host.Instance
	id       string
	props    ViewProps
	renderer *pipeline.Object[engine.Renderer, viewConfig]
	camera   engine.Props
	views    *ViewRegistry
}

func newView(in *host.Instance) host.Component {
	v := &View{in: in}
	v.renderer = pipeline.New(pipeline.Config[engine.Renderer, viewConfig]{
		Build: func(c viewConfig) (engine.Renderer, error) {
			r := in.Env.Engine.NewRenderer()
			if c.hasBG {
				r.SetBackground(c.background[0], c.background[1], c.background[2])
			}
			return r, nil
		},
		Patch: func(r engine.Renderer, _, next viewConfig) (bool, error) {
			if !next.hasBG {
				return false, nil
			}
			r.SetBackground(next.background[0], next.background[1], next.background[2])
			return true, nil
		},
		Destroy: func(r engine.Renderer) { r.Delete() },
	})
	return v
}

func backgroundConfig(bg []float64) (viewConfig, error) {
	if bg == nil {
		return viewConfig{}, nil
	}
	if len(bg) != 3 {
		return viewConfig{}, errors.Configuration("background", "expected 3 components, got %d", len(bg))
	}
	return viewConfig{background: [3]float64{bg[0], bg[1], bg[2]}, hasBG: true}, nil
}

// Mount implements host.Component.
func (v *View) Mount(s *scope.Scope, props any) *scope.Scope {
	p, err := host.PropsAs[ViewProps](props)
	if err != nil {
		v.in.Report(err)
	}
	p = p.withDefaults()

	v.id = p.ID
	if v.id == "" {
		v.id = path.Base(v.in.Path)
	}
	cfg, err := backgroundConfig(p.Background)
	if err != nil {
		v.in.Report(err)
	}
	// Building a renderer cannot fail.
	_ = v.renderer.Create(cfg)
	v.applyCamera(p.Camera)
	v.props = p

	if reg, ok := scope.Lookup[*ViewRegistry](s, scope.Views); ok {
		v.views = reg
		reg.register(v.id, v)
	}
	return s.With(scope.View, v)
}

// Update implements host.Component.
func (v *View) Update(props any) bool {
	p, err := host.PropsAs[ViewProps](props)
	if err != nil {
		v.in.Report(err)
		return false
	}
	p = p.withDefaults()

	changed := false
	cfg, err := backgroundConfig(p.Background)
	if err != nil {
		v.in.Report(err)
	} else if c, err := v.renderer.Apply(cfg); err != nil {
		v.in.Report(err)
	} else {
		changed = c
	}
	changed = v.applyCamera(p.Camera) || changed

	if p.ID != "" && p.ID != v.id && v.views != nil {
		v.views.unregister(v.id, v)
		v.id = p.ID
		v.views.register(v.id, v)
	}
	v.props = p
	if changed {
		v.RequestRender()
	}
	return changed
}

func (v *View) applyCamera(bag engine.Props) bool {
	changed, err := pipeline.ApplyProps(v.renderer.Handle().Camera(), v.camera, bag)
	if err != nil {
		v.in.Report(err)
		return false
	}
	if bag != nil {
		v.camera = bag
	}
	return changed
}

// Unmount implements host.Component.
func (v *View) Unmount() {
	if v.views != nil {
		v.views.unregister(v.id, v)
	}
	v.renderer.Destroy()
}

// ID returns the view's registry name.
func (v *View) ID() string { return v.id }

// Renderer returns the owned renderer, or nil after unmount.
func (v *View) Renderer() engine.Renderer { return v.renderer.Handle() }

// AutoResetCamera reports whether data arrival resets the camera.
func (v *View) AutoResetCamera() bool { return *v.props.AutoResetCamera }

// ResetCamera fits the camera to the visible actors.
func (v *View) ResetCamera() {
	if !v.renderer.Built() {
		return
	}
	v.renderer.Handle().ResetCamera()
	observability.Render().OnResetCamera(v.id)
}

// RequestRender asks for a redraw. Requests are coalesced until the host
// flushes, unless the view is Immediate.
func (v *View) RequestRender() {
	if v.props.Immediate {
		v.Render()
		return
	}
	if v.in.Env.Defer(v, v.Render) {
		observability.Render().OnCoalesced(v.id)
	}
}

// Render redraws now. It does nothing once the view is unmounted.
func (v *View) Render() {
	if !v.renderer.Built() {
		return
	}
	start := time.Now()
	v.renderer.Handle().Render()
	observability.Render().OnRender(v.id, time.Since(start))
}

// =============================================================================
// MultiViewRoot
// =============================================================================

// ViewRegistry maps view IDs to mounted views.
type ViewRegistry struct {
	views map[string]*View
}

func (r *ViewRegistry) register(id string, v *View) {
	if r.views == nil {
		r.views = make(map[string]*View)
	}
	r.views[id] = v
}

func (r *ViewRegistry) unregister(id string, v *View) {
	if r.views[id] == v {
		delete(r.views, id)
	}
}

// Lookup returns the view registered under id.
func (r *ViewRegistry) Lookup(id string) (*View, bool) {
	v, ok := r.views[id]
	return v, ok
}

// IDs returns the registered view IDs in sorted order.
func (r *ViewRegistry) IDs() []string {
	ids := make([]string, 0, len(r.views))
	for id := range r.views {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// RenderAll requests a redraw of every registered view.
func (r *ViewRegistry) RenderAll() {
	for _, id := range r.IDs() {
		r.views[id].RequestRender()
	}
}

// MultiViewRoot establishes a [ViewRegistry] for the views below it.
type MultiViewRoot struct {
	views *ViewRegistry
}

func newMultiViewRoot(*host.Instance) host.Component {
	return &MultiViewRoot{views: &ViewRegistry{}}
}

// Mount implements host.Component.
func (m *MultiViewRoot) Mount(s *scope.Scope, _ any) *scope.Scope {
	return s.With(scope.Views, m.views)
}

// Update implements host.Component.
func (m *MultiViewRoot) Update(any) bool { return false }

// Unmount implements host.Component.
func (m *MultiViewRoot) Unmount() {}

// Views returns the registry.
func (m *MultiViewRoot) Views() *ViewRegistry { return m.views }
