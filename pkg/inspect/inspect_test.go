package inspect

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/scenesync/pkg/engine"
	"github.com/matzehuels/scenesync/pkg/engine/headless"
	"github.com/matzehuels/scenesync/pkg/host"
	"github.com/matzehuels/scenesync/pkg/scene"
)

// sharedTree mounts two views sharing "ctData", with the coronal view's
// representation hidden.
func sharedTree(t *testing.T) *host.Tree {
	t.Helper()
	view := func(id string, visible bool) host.Element {
		return host.E(scene.KindView, scene.ViewProps{},
			host.E(scene.KindSliceRepresentation, scene.RepresentationProps{Actor: engine.Props{"visibility": visible}},
				host.E(scene.KindUseDataSet, scene.UseDataSetProps{ID: "ctData"}),
			).WithKey("ct"),
		).WithKey(id)
	}
	root := host.E(scene.KindShareDataSetRoot, nil,
		host.E(scene.KindRegisterDataSet, scene.RegisterDataSetProps{ID: "ctData"},
			host.E(scene.KindImageData, scene.ImageDataProps{Dimensions: [3]int{4, 1, 1}},
				host.E(scene.KindDataArray, scene.DataArrayProps{Name: "ct", Values: []float64{0, 500, 1000, 2000}}),
			).WithKey("img"),
		).WithKey("reg"),
		host.E(scene.KindMultiViewRoot, nil, view("axial", true), view("coronal", false)).WithKey("views"),
	)
	tree := host.NewTree(host.NewEnv(headless.New(), nil), scene.NewRegistry())
	if err := tree.Render(root); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return tree
}

func TestTake(t *testing.T) {
	snap := Take(sharedTree(t))

	var paths []string
	for _, n := range snap.Nodes {
		paths = append(paths, n.Path)
	}
	want := []string{
		"", "reg", "reg/img", "reg/img/DataArray[0]",
		"views", "views/axial", "views/axial/ct", "views/axial/ct/UseDataSet[0]",
		"views/coronal", "views/coronal/ct", "views/coronal/ct/UseDataSet[0]",
	}
	if !slices.Equal(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	root, _ := snap.Node("")
	if !slices.Equal(root.Established, []string{"datasets"}) {
		t.Errorf("root Established = %v, want [datasets]", root.Established)
	}

	img, ok := snap.Node("reg/img")
	if !ok || img.Image == nil {
		t.Fatal("image node not described")
	}
	if img.Image.Dimensions != [3]int{4, 1, 1} || len(img.Image.Arrays) != 1 {
		t.Errorf("image = %+v", img.Image)
	}
	if r := img.Image.Arrays[0].Range; r == nil || *r != [2]float64{0, 2000} {
		t.Errorf("array range = %v, want [0 2000]", r)
	}

	reps := snap.Representations()
	if len(reps) != 2 {
		t.Fatalf("Representations() = %d, want 2", len(reps))
	}
	if !reps[0].Representation.Visible || reps[1].Representation.Visible {
		t.Errorf("visibility = %v, %v, want true, false", reps[0].Representation.Visible, reps[1].Representation.Visible)
	}
	if reps[1].Representation.MappingRange != [2]float64{0, 2000} {
		t.Errorf("MappingRange = %v, want [0 2000]", reps[1].Representation.MappingRange)
	}

	use, _ := snap.Node("views/axial/ct/UseDataSet[0]")
	if use.DataSet != "ctData" {
		t.Errorf("DataSet = %q, want ctData", use.DataSet)
	}

	if v, ok := snap.View("coronal"); !ok || v.Path != "views/coronal" || v.Actors != 1 {
		t.Errorf(`View("coronal") = %+v, %v`, v, ok)
	}
}

func TestNodeParent(t *testing.T) {
	tests := []struct {
		node   Node
		want   string
		wantOK bool
	}{
		{Node{Path: "", Depth: 0}, "", false},
		{Node{Path: "views", Depth: 1}, "", true},
		{Node{Path: "views/axial/ct", Depth: 3}, "views/axial", true},
		{Node{Path: "reg/ImageData[0]", Depth: 2}, "reg", true},
	}
	for _, tt := range tests {
		got, ok := tt.node.Parent()
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Parent(%q) = %q, %v, want %q, %v", tt.node.Path, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestChildren(t *testing.T) {
	snap := Take(sharedTree(t))
	var keys []string
	for _, n := range snap.Children("views") {
		keys = append(keys, n.Key)
	}
	if !slices.Equal(keys, []string{"axial", "coronal"}) {
		t.Errorf("Children(views) = %v, want [axial coronal]", keys)
	}
}

func TestSnapshotJSON(t *testing.T) {
	data, err := json.Marshal(Take(sharedTree(t)))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{`"kind":"SliceRepresentation"`, `"colorRange":"auto"`, `"dataset":"ctData"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON missing %s", want)
		}
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(Take(sharedTree(t)), Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.Contains(dot, `label="View\naxial"`) {
		t.Error("ToDOT() output missing axial view label")
	}
	if !strings.Contains(dot, "n0 -> n1;") {
		t.Error("ToDOT() output missing root edge")
	}
	if n := strings.Count(dot, "style=dashed"); n != 2 {
		t.Errorf("dataset edges = %d, want 2", n)
	}
	if !strings.Contains(dot, "palegreen") || !strings.Contains(dot, "lightgrey") {
		t.Error("ToDOT() output missing visibility fills")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(Take(sharedTree(t)), Options{Detailed: true})
	for _, want := range []string{"provides: datasets", "dataset: ctData", "range: 0..2000", "dims: 4 x 1 x 1"} {
		if !strings.Contains(dot, want) {
			t.Errorf("detailed output missing %q", want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	if !strings.Contains(got, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", got)
	}
	if string(normalizeViewBox([]byte("<svg/>"))) != "<svg/>" {
		t.Error("normalizeViewBox() changed an svg without viewBox")
	}
}
