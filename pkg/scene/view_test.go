package scene

import (
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/scenesync/pkg/engine"
	"github.com/matzehuels/scenesync/pkg/engine/headless"
	"github.com/matzehuels/scenesync/pkg/errors"
	"github.com/matzehuels/scenesync/pkg/host"
	"github.com/matzehuels/scenesync/pkg/observability"
)

type renderRecorder struct {
	observability.NoopRenderHooks
	renders, coalesced int
}

func (r *renderRecorder) OnRender(string, time.Duration) { r.renders++ }
func (r *renderRecorder) OnCoalesced(string)             { r.coalesced++ }

func renderer(t *testing.T, tree *host.Tree, path string) *headless.Renderer {
	t.Helper()
	return find[*View](t, tree, path).Renderer().(*headless.Renderer)
}

func TestViewCoalescesRedraws(t *testing.T) {
	rec := &renderRecorder{}
	observability.SetRenderHooks(rec)
	t.Cleanup(observability.Reset)

	h := newHarness(t)
	h.render(sliceScene(RepresentationProps{}, imageOf(ctValues)))
	r := renderer(t, h.tree, "")
	if r.RenderCount() != 0 {
		t.Errorf("RenderCount() before flush = %d, want 0", r.RenderCount())
	}
	if rec.coalesced == 0 {
		t.Error("mount made a single redraw request, want several")
	}

	h.tree.Flush()
	if r.RenderCount() != 1 {
		t.Errorf("RenderCount() = %d, want 1", r.RenderCount())
	}

	for _, k := range []int{1, 2, 3} {
		h.render(sliceScene(RepresentationProps{KSlice: Int(k)}, imageOf(ctValues)))
	}
	h.tree.Flush()
	if r.RenderCount() != 2 {
		t.Errorf("RenderCount() after three updates = %d, want 2", r.RenderCount())
	}
	if rec.renders != 2 {
		t.Errorf("OnRender calls = %d, want 2", rec.renders)
	}
}

func TestViewImmediate(t *testing.T) {
	h := newHarness(t)
	h.render(host.E(KindView, ViewProps{Immediate: true},
		host.E(KindSliceRepresentation, RepresentationProps{}, imageOf(ctValues)).WithKey("ct")))
	r := renderer(t, h.tree, "")
	if r.RenderCount() == 0 {
		t.Error("immediate view did not render")
	}
	if n := h.tree.Flush(); n != 0 {
		t.Errorf("Flush() ran %d, want 0", n)
	}
}

func TestViewBackgroundAndCamera(t *testing.T) {
	rec := recordErrors(t)
	h := newHarness(t)
	camera := engine.Props{"viewAngle": 30.0}
	h.render(host.E(KindView, ViewProps{Background: []float64{0.1, 0.2, 0.3}, Camera: camera}))
	r := renderer(t, h.tree, "")

	if r.Background() != [3]float64{0.1, 0.2, 0.3} {
		t.Errorf("Background() = %v", r.Background())
	}
	if v, _ := r.Camera().Get("viewAngle"); v != 30.0 {
		t.Errorf("viewAngle = %v, want 30", v)
	}

	h.eng.ResetCalls()
	h.render(host.E(KindView, ViewProps{Background: []float64{0.1, 0.2, 0.3}, Camera: camera}))
	if calls := h.eng.Calls(); len(calls) != 0 {
		t.Errorf("identical view update made calls: %v", calls)
	}

	h.render(host.E(KindView, ViewProps{Background: []float64{1, 1}, Camera: camera}))
	if !rec.has(errors.ErrCodeConfiguration) {
		t.Errorf("reported codes = %v, want CONFIGURATION", rec.codes)
	}
	if r.Background() != [3]float64{0.1, 0.2, 0.3} {
		t.Errorf("Background() after invalid = %v", r.Background())
	}

	h.render(host.E(KindView, ViewProps{Camera: engine.Props{"viewAngle": 45.0}}))
	h.tree.Flush()
	if v, _ := r.Camera().Get("viewAngle"); v != 45.0 {
		t.Errorf("viewAngle = %v, want 45", v)
	}
	if r.RenderCount() == 0 {
		t.Error("camera change did not redraw")
	}
}

func TestMultiViewRegistry(t *testing.T) {
	h := newHarness(t)
	root := func(ids ...string) host.Element {
		var views []host.Element
		for _, id := range ids {
			views = append(views, host.E(KindView, ViewProps{}).WithKey(id))
		}
		return host.E(KindMultiViewRoot, nil, views...)
	}
	h.render(root("coronal", "axial", "sagittal"))
	views := find[*MultiViewRoot](t, h.tree, "").Views()

	if got, want := views.IDs(), []string{"axial", "coronal", "sagittal"}; !slices.Equal(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
	axial, ok := views.Lookup("axial")
	if !ok || axial != find[*View](t, h.tree, "axial") {
		t.Error(`Lookup("axial") is not the mounted view`)
	}

	views.RenderAll()
	h.tree.Flush()
	for _, id := range views.IDs() {
		if n := renderer(t, h.tree, id).RenderCount(); n != 1 {
			t.Errorf("%s RenderCount() = %d, want 1", id, n)
		}
	}

	h.render(root("axial"))
	if got := views.IDs(); !slices.Equal(got, []string{"axial"}) {
		t.Errorf("IDs() after removal = %v, want [axial]", got)
	}
}

func TestViewExplicitID(t *testing.T) {
	h := newHarness(t)
	h.render(host.E(KindMultiViewRoot, nil, host.E(KindView, ViewProps{ID: "main"}).WithKey("v")))
	views := find[*MultiViewRoot](t, h.tree, "").Views()
	if got := views.IDs(); !slices.Equal(got, []string{"main"}) {
		t.Errorf("IDs() = %v, want [main]", got)
	}

	h.render(host.E(KindMultiViewRoot, nil, host.E(KindView, ViewProps{ID: "other"}).WithKey("v")))
	if got := views.IDs(); !slices.Equal(got, []string{"other"}) {
		t.Errorf("IDs() after rename = %v, want [other]", got)
	}
}

func TestViewRenderAfterUnmount(t *testing.T) {
	h := newHarness(t)
	h.render(sliceScene(RepresentationProps{}, imageOf(ctValues)))
	v := find[*View](t, h.tree, "")

	h.tree.Unmount()
	v.Render()
	if n := h.tree.Flush(); n != 1 {
		t.Errorf("Flush() ran %d, want 1", n)
	}
	if live := h.eng.Live(); len(live) != 0 {
		t.Errorf("Live() after unmount = %v, want none", live)
	}
}
