package scene

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/scenesync/pkg/engine"
	"github.com/matzehuels/scenesync/pkg/engine/headless"
	"github.com/matzehuels/scenesync/pkg/errors"
	"github.com/matzehuels/scenesync/pkg/host"
)

func TestRepresentationIdempotentUpdate(t *testing.T) {
	h := newHarness(t)
	props := RepresentationProps{
		Actor:    engine.Props{"visibility": true, "pickable": false},
		Property: engine.Props{"opacity": 0.5},
		Mapper:   engine.Props{"sliceAtFocalPoint": true},
		KSlice:   Int(0),
	}
	root := sliceScene(props, imageOf(ctValues))
	h.render(root)
	h.tree.Flush()

	h.eng.ResetCalls()
	h.render(root)
	if calls := h.eng.Calls(); len(calls) != 0 {
		t.Errorf("second render made %d pipeline calls: %v", len(calls), calls)
	}
	if n := h.tree.Flush(); n != 0 {
		t.Errorf("second render deferred %d redraws, want 0", n)
	}

	rep := find[*Representation](t, h.tree, "ct")
	if rep.Update(props) {
		t.Error("Update(same props) = true, want false")
	}
	if calls := h.eng.Calls(); len(calls) != 0 {
		t.Errorf("Update(same props) made pipeline calls: %v", calls)
	}
}

func TestRepresentationBagDiff(t *testing.T) {
	h := newHarness(t)
	h.render(sliceScene(RepresentationProps{Property: engine.Props{"opacity": 0.5, "ambient": 0.1}}))
	rep := find[*Representation](t, h.tree, "ct")

	h.eng.ResetCalls()
	h.render(sliceScene(RepresentationProps{Property: engine.Props{"opacity": 0.8, "ambient": 0.1}}))

	sets := h.eng.CallsTo("Set")
	if len(sets) != 1 || sets[0].Args != "opacity" {
		t.Errorf("Set calls = %v, want one call with opacity", sets)
	}
	if v, _ := rep.Actor().Property().Get("opacity"); v != 0.8 {
		t.Errorf("opacity = %v, want 0.8", v)
	}
}

func TestRepresentationInvalidBagKeepsState(t *testing.T) {
	rec := recordErrors(t)
	h := newHarness(t)
	h.render(sliceScene(RepresentationProps{Property: engine.Props{"opacity": 0.5}}))
	rep := find[*Representation](t, h.tree, "ct")

	h.eng.ResetCalls()
	h.render(sliceScene(RepresentationProps{Property: engine.Props{"opacity": 0.9, "bogus": 1}}))
	if n := len(h.eng.CallsTo("Set")); n != 0 {
		t.Errorf("invalid bag made %d Set calls, want 0", n)
	}
	if !rec.has(errors.ErrCodeConfiguration) {
		t.Errorf("reported codes = %v, want CONFIGURATION", rec.codes)
	}
	if v, _ := rep.Actor().Property().Get("opacity"); v != 0.5 {
		t.Errorf("opacity = %v, want 0.5", v)
	}

	// The corrected bag is sent in full against the last good one.
	h.render(sliceScene(RepresentationProps{Property: engine.Props{"opacity": 0.9}}))
	if v, _ := rep.Actor().Property().Get("opacity"); v != 0.9 {
		t.Errorf("opacity after retry = %v, want 0.9", v)
	}
}

func TestRepresentationVisibilityGate(t *testing.T) {
	for _, requested := range []bool{true, false} {
		t.Run(fmt.Sprint(requested), func(t *testing.T) {
			h := newHarness(t)
			props := RepresentationProps{Actor: engine.Props{"visibility": requested}}

			h.render(sliceScene(props))
			rep := find[*Representation](t, h.tree, "ct")
			if rep.Actor().Visibility() {
				t.Error("actor visible before data")
			}

			h.render(sliceScene(props, imageOf(ctValues)))
			st := rep.State()
			if !st.ValidData {
				t.Fatal("ValidData = false after data arrived")
			}
			if st.Visible != requested {
				t.Errorf("Visible = %v, want %v", st.Visible, requested)
			}

			flipped := RepresentationProps{Actor: engine.Props{"visibility": !requested}}
			h.render(sliceScene(flipped, imageOf(ctValues)))
			if got := rep.Actor().Visibility(); got != !requested {
				t.Errorf("Visible after toggle = %v, want %v", got, !requested)
			}
		})
	}
}

func TestRepresentationVisibilityRequestedBeforeData(t *testing.T) {
	h := newHarness(t)
	h.render(sliceScene(RepresentationProps{Actor: engine.Props{"visibility": true}}))
	rep := find[*Representation](t, h.tree, "ct")

	// A later request before data still cannot show the actor.
	h.render(sliceScene(RepresentationProps{Actor: engine.Props{"visibility": false}}))
	h.render(sliceScene(RepresentationProps{Actor: engine.Props{"visibility": true}}))
	if rep.Actor().Visibility() {
		t.Error("actor visible before data")
	}
	if !rep.State().RequestedVisibility {
		t.Error("RequestedVisibility = false, want true")
	}
}

func TestRepresentationDataStaysValid(t *testing.T) {
	h := newHarness(t)
	h.render(sliceScene(RepresentationProps{}, imageOf(ctValues)))
	rep := find[*Representation](t, h.tree, "ct")

	// Emptying the data neither hides the actor nor resets the range.
	h.render(sliceScene(RepresentationProps{}, imageOf([]float64{})))
	st := rep.State()
	if !st.ValidData || !st.Visible {
		t.Errorf("ValidData, Visible = %v, %v, want true, true", st.ValidData, st.Visible)
	}
	if st.MappingRange != [2]float64{0, 2000} {
		t.Errorf("MappingRange = %v, want [0 2000]", st.MappingRange)
	}
}

func TestRepresentationDataAvailableScenario(t *testing.T) {
	h := newHarness(t)
	props := RepresentationProps{
		ColorDataRange: AutoRange(),
		Property:       engine.Props{"visibility": true},
	}
	h.render(sliceScene(props))
	rep := find[*Representation](t, h.tree, "ct")

	if issues := h.tree.Env().TakeIssues(); len(issues) != 0 {
		t.Errorf("issues before data = %v, want none", issues)
	}
	st := rep.State()
	if st.Visible {
		t.Error("Visible = true before data")
	}
	if st.MappingRange != [2]float64{0, 1} {
		t.Errorf("MappingRange before data = %v, want [0 1]", st.MappingRange)
	}

	h.render(sliceScene(props, imageOf(ctValues)))
	if issues := h.tree.Env().TakeIssues(); len(issues) != 0 {
		t.Errorf("issues after data = %v, want none", issues)
	}
	st = rep.State()
	if !st.Visible {
		t.Error("Visible = false after data")
	}
	if st.MappingRange != [2]float64{0, 2000} {
		t.Errorf("MappingRange = %v, want [0 2000]", st.MappingRange)
	}
	want := []engine.Node{{X: 0, Y: 0, Midpoint: 0.5}, {X: 2000, Y: 1, Midpoint: 0.5}}
	if !reflect.DeepEqual(st.OpacityNodes, want) {
		t.Errorf("OpacityNodes = %v, want %v", st.OpacityNodes, want)
	}
}

func TestRepresentationAutoRangeFollowsData(t *testing.T) {
	h := newHarness(t)
	h.render(sliceScene(RepresentationProps{}, imageOf(ctValues)))
	rep := find[*Representation](t, h.tree, "ct")

	h.render(sliceScene(RepresentationProps{}, imageOf([]float64{-100, 50, 300})))
	if got := rep.State().MappingRange; got != [2]float64{-100, 300} {
		t.Errorf("MappingRange = %v, want [-100 300]", got)
	}
}

func TestRepresentationExplicitRange(t *testing.T) {
	tests := []struct {
		lo, hi float64
	}{
		{10, 20},
		{-5.5, 3.25},
		{0, 0},
		{1e-6, 1e6},
		{100, 10},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%g_%g", tt.lo, tt.hi), func(t *testing.T) {
			h := newHarness(t)
			h.render(sliceScene(RepresentationProps{ColorDataRange: Range(tt.lo, tt.hi)}, imageOf(ctValues)))
			rep := find[*Representation](t, h.tree, "ct")
			lo, hi := rep.LookupTable().MappingRange()
			if lo != tt.lo || hi != tt.hi {
				t.Errorf("MappingRange() = %v, %v, want %v, %v", lo, hi, tt.lo, tt.hi)
			}
			nodes := rep.OpacityFunction().Nodes()
			if len(nodes) != 2 || nodes[0].X != tt.lo || nodes[1].X != tt.hi {
				t.Errorf("Nodes() = %v, want ramp over [%v, %v]", nodes, tt.lo, tt.hi)
			}
		})
	}
}

func TestRepresentationRangeSwitching(t *testing.T) {
	rec := recordErrors(t)
	h := newHarness(t)
	h.render(sliceScene(RepresentationProps{ColorDataRange: Range(10, 20)}, imageOf(ctValues)))
	rep := find[*Representation](t, h.tree, "ct")

	// Non-finite ranges are rejected and the previous range stays.
	h.render(sliceScene(RepresentationProps{ColorDataRange: Range(math.NaN(), 20)}, imageOf(ctValues)))
	if got := rep.State().MappingRange; got != [2]float64{10, 20} {
		t.Errorf("MappingRange after invalid range = %v, want [10 20]", got)
	}

	h.render(sliceScene(RepresentationProps{ColorDataRange: Range(20, 10)}, imageOf(ctValues)))
	if got := rep.State().MappingRange; got != [2]float64{20, 10} {
		t.Errorf("MappingRange after inverted range = %v, want [20 10]", got)
	}
	if !rec.has(errors.ErrCodeConfiguration) {
		t.Errorf("reported codes = %v, want CONFIGURATION", rec.codes)
	}

	h.render(sliceScene(RepresentationProps{ColorDataRange: AutoRange()}, imageOf(ctValues)))
	if got := rep.State().MappingRange; got != [2]float64{0, 2000} {
		t.Errorf("MappingRange after auto = %v, want [0 2000]", got)
	}
}

func TestRepresentationInvalidFirstRangeFallsBackToAuto(t *testing.T) {
	rec := recordErrors(t)
	h := newHarness(t)
	h.render(sliceScene(RepresentationProps{ColorDataRange: Range(0, math.Inf(1))}, imageOf(ctValues)))
	rep := find[*Representation](t, h.tree, "ct")

	if !rec.has(errors.ErrCodeConfiguration) {
		t.Errorf("reported codes = %v, want CONFIGURATION", rec.codes)
	}
	st := rep.State()
	if !st.ColorRange.IsAuto() {
		t.Errorf("ColorRange = %v, want auto", st.ColorRange)
	}
	if st.MappingRange != [2]float64{0, 2000} {
		t.Errorf("MappingRange = %v, want [0 2000]", st.MappingRange)
	}
}

func TestRepresentationPreset(t *testing.T) {
	rec := recordErrors(t)
	h := newHarness(t)
	h.render(sliceScene(RepresentationProps{}))
	rep := find[*Representation](t, h.tree, "ct")
	if got := rep.LookupTable().Preset().Name; got != "Grayscale" {
		t.Errorf("default preset = %q, want Grayscale", got)
	}

	h.render(sliceScene(RepresentationProps{ColorMapPreset: "jet"}))
	if got := rep.LookupTable().Preset().Name; got != "jet" {
		t.Errorf("preset = %q, want jet", got)
	}

	h.render(sliceScene(RepresentationProps{ColorMapPreset: "no such preset"}))
	if got := rep.State().Preset; got != "jet" {
		t.Errorf("preset after unknown = %q, want jet", got)
	}
	if !rec.has(errors.ErrCodeConfiguration) {
		t.Errorf("reported codes = %v, want CONFIGURATION", rec.codes)
	}
}

func TestRepresentationSlicesWaitForData(t *testing.T) {
	h := newHarness(t)
	props := RepresentationProps{KSlice: Int(4), XSlice: Float(1.5)}
	h.render(sliceScene(props))
	rep := find[*Representation](t, h.tree, "ct")
	m := rep.Mapper().(*headless.ImageMapper)

	if _, ok := m.Slice(engine.AxisK); ok {
		t.Error("slice applied before data")
	}

	h.render(sliceScene(props, imageOf(ctValues)))
	if k, _ := m.Slice(engine.AxisK); k != 4 {
		t.Errorf("k slice = %v, want 4", k)
	}
	if x, _ := m.Slice(engine.AxisX); x != 1.5 {
		t.Errorf("x slice = %v, want 1.5", x)
	}

	h.eng.ResetCalls()
	h.render(sliceScene(RepresentationProps{KSlice: Int(5), XSlice: Float(1.5)}, imageOf(ctValues)))
	calls := h.eng.CallsTo("SetSliceIndex")
	if len(calls) != 1 || calls[0].Args != "k, 5" {
		t.Errorf("SetSliceIndex calls = %v, want only k, 5", calls)
	}
}

func TestRepresentationSliceCapabilities(t *testing.T) {
	tests := []struct {
		name  string
		kind  engine.MapperKind
		check func(t *testing.T, m engine.Mapper)
	}{
		{"multi axis", engine.MapperImage, func(t *testing.T, m engine.Mapper) {
			im := m.(*headless.ImageMapper)
			if i, _ := im.Slice(engine.AxisI); i != 2 {
				t.Errorf("i slice = %v, want 2", i)
			}
			if k, _ := im.Slice(engine.AxisK); k != 3 {
				t.Errorf("k slice = %v, want 3", k)
			}
		}},
		{"k only", engine.MapperImageArray, func(t *testing.T, m engine.Mapper) {
			am := m.(*headless.ImageArrayMapper)
			if k, ok := am.Slice(); !ok || k != 3 {
				t.Errorf("Slice() = %v, %v, want 3, true", k, ok)
			}
		}},
		{"no slicing", engine.MapperVolume, func(t *testing.T, m engine.Mapper) {
			if _, ok := m.(engine.MultiAxisSlicer); ok {
				t.Error("volume mapper slices")
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.render(sliceScene(RepresentationProps{MapperKind: tt.kind, ISlice: Int(2), KSlice: Int(3)}, imageOf(ctValues)))
			rep := find[*Representation](t, h.tree, "ct")
			if got := rep.Mapper().Kind(); got != tt.kind {
				t.Fatalf("mapper kind = %v, want %v", got, tt.kind)
			}
			tt.check(t, rep.Mapper())
		})
	}
}

func TestRepresentationMapperRebuild(t *testing.T) {
	h := newHarness(t)
	h.render(sliceScene(RepresentationProps{KSlice: Int(3)}, imageOf(ctValues)))
	rep := find[*Representation](t, h.tree, "ct")
	old := rep.Mapper()
	input := rep.InputData()

	h.render(sliceScene(RepresentationProps{MapperKind: engine.MapperImageArray, KSlice: Int(3)}, imageOf(ctValues)))
	m := rep.Mapper()
	if m == old {
		t.Fatal("mapper not rebuilt")
	}
	if slices.Contains(h.eng.Live(), "imageMapper-1") {
		t.Error("old mapper still live")
	}
	if rep.Actor().Mapper() != m {
		t.Error("actor not bound to the new mapper")
	}
	if m.InputData() != input {
		t.Error("new mapper lost the input")
	}
	if k, ok := m.(*headless.ImageArrayMapper).Slice(); !ok || k != 3 {
		t.Errorf("Slice() = %v, %v, want 3, true", k, ok)
	}
}

func TestRepresentationMapperInstance(t *testing.T) {
	h := newHarness(t)
	own, err := h.eng.NewMapper(engine.MapperImage)
	if err != nil {
		t.Fatal(err)
	}
	h.render(sliceScene(RepresentationProps{MapperInstance: own}, imageOf(ctValues)))
	rep := find[*Representation](t, h.tree, "ct")
	if rep.Mapper() != own {
		t.Fatal("caller mapper not used")
	}
	if own.InputData() == nil {
		t.Error("caller mapper not fed")
	}

	h.tree.Unmount()
	if !slices.Contains(h.eng.Live(), "imageMapper-1") {
		t.Error("caller mapper was deleted")
	}
	if own.InputData() != nil {
		t.Error("caller mapper still linked to the input")
	}
}

func TestVolumeRepresentation(t *testing.T) {
	h := newHarness(t)
	root := host.E(KindView, ViewProps{},
		host.E(KindVolumeRepresentation, RepresentationProps{
			Mapper:   engine.Props{"sampleDistance": 0.7},
			Property: engine.Props{"shade": true},
		}, imageOf(ctValues)).WithKey("vol"),
	)
	h.render(root)
	rep := find[*Representation](t, h.tree, "vol")

	st := rep.State()
	if st.ActorKind != engine.ActorVolume || st.MapperKind != engine.MapperVolume {
		t.Errorf("kinds = %v, %v, want Volume, VolumeMapper", st.ActorKind, st.MapperKind)
	}
	prop := rep.Actor().Property()
	if prop.ScalarOpacity() != rep.OpacityFunction() {
		t.Error("opacity function not attached")
	}
	if prop.RGBTransferFunction() != rep.LookupTable() {
		t.Error("lookup table not attached")
	}
	// Volume mappers expose no image, the range comes from their input.
	if st.MappingRange != [2]float64{0, 2000} {
		t.Errorf("MappingRange = %v, want [0 2000]", st.MappingRange)
	}
}

func TestSliceRepresentationWiring(t *testing.T) {
	h := newHarness(t)
	h.render(sliceScene(RepresentationProps{}))
	rep := find[*Representation](t, h.tree, "ct")
	prop := rep.Actor().Property().(*headless.Property)

	if prop.ScalarOpacity() != nil {
		t.Error("slice property has an opacity function")
	}
	if prop.Interpolation() != "linear" {
		t.Errorf("Interpolation() = %q, want linear", prop.Interpolation())
	}
	view := find[*View](t, h.tree, "")
	if !slices.Contains(view.Renderer().Actors(), rep.Actor()) {
		t.Error("actor not added to the view renderer")
	}
}

func TestRepresentationMissingView(t *testing.T) {
	rec := recordErrors(t)
	h := newHarness(t)
	h.render(host.E(KindSliceRepresentation, RepresentationProps{}, imageOf(ctValues)))
	rep := find[*Representation](t, h.tree, "")

	if !rec.has(errors.ErrCodeMissingContext) {
		t.Errorf("reported codes = %v, want MISSING_CONTEXT", rec.codes)
	}
	if !rep.State().ValidData {
		t.Error("data not received without a view")
	}
	if n := len(h.eng.CallsTo("AddActor")); n != 0 {
		t.Errorf("AddActor called %d times without a view", n)
	}
}

func TestRepresentationUnmountOrder(t *testing.T) {
	h := newHarness(t)
	h.render(sliceScene(RepresentationProps{}, imageOf(ctValues)))
	h.eng.ResetCalls()

	h.render(host.E(KindView, ViewProps{}).WithKey("axial"))

	var order []string
	for _, c := range h.eng.Calls() {
		switch {
		case c.Method == "RemoveActor":
			order = append(order, "detach")
		case c.Method == "Delete" && c.Object == "actor-1":
			order = append(order, "actor")
		case c.Method == "Delete" && c.Object == "imageMapper-1":
			order = append(order, "mapper")
		}
	}
	want := []string{"detach", "actor", "mapper"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("unmount order = %v, want %v", order, want)
	}
	if live := h.eng.Live(); !reflect.DeepEqual(live, []string{"renderer-1"}) {
		t.Errorf("Live() = %v, want [renderer-1]", live)
	}
}

func TestRepresentationResetsCameraOnFirstData(t *testing.T) {
	tests := []struct {
		name  string
		auto  *bool
		reset int
	}{
		{"default", nil, 1},
		{"disabled", Bool(false), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			root := func(values []float64) host.Element {
				return host.E(KindView, ViewProps{AutoResetCamera: tt.auto},
					host.E(KindSliceRepresentation, RepresentationProps{}, imageOf(values)).WithKey("ct"))
			}
			h.render(root(ctValues))
			h.render(root([]float64{1, 2, 3}))

			r := find[*View](t, h.tree, "").Renderer().(*headless.Renderer)
			if r.ResetCount() != tt.reset {
				t.Errorf("ResetCount() = %d, want %d", r.ResetCount(), tt.reset)
			}
		})
	}
}
