package inspect

import (
	"path"
	"slices"
	"strings"

	"github.com/matzehuels/scenesync/pkg/array"
	"github.com/matzehuels/scenesync/pkg/host"
	"github.com/matzehuels/scenesync/pkg/scene"
)

// Snapshot is a point-in-time description of a mounted tree.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Views []View `json:"views,omitempty"`
}

// Node describes one mounted node.
type Node struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Key         string   `json:"key,omitempty"`
	Path        string   `json:"path"`
	Depth       int      `json:"depth"`
	Established []string `json:"established,omitempty"`

	// DataSet is the shared dataset ID of RegisterDataSet and UseDataSet
	// nodes.
	DataSet string `json:"dataset,omitempty"`

	Representation *Representation `json:"representation,omitempty"`
	Image          *Image          `json:"image,omitempty"`
	Array          *Array          `json:"array,omitempty"`
}

// Parent returns the path of the node's parent. The root has no parent.
func (n Node) Parent() (string, bool) {
	switch {
	case n.Depth == 0:
		return "", false
	case n.Depth == 1:
		return "", true
	}
	return path.Dir(n.Path), true
}

// Representation is the state of a slice or volume representation.
type Representation struct {
	ValidData    bool       `json:"validData"`
	Requested    bool       `json:"requestedVisibility"`
	Visible      bool       `json:"visible"`
	Preset       string     `json:"preset"`
	ColorRange   string     `json:"colorRange"`
	MappingRange [2]float64 `json:"mappingRange"`
	Actor        string     `json:"actor"`
	Mapper       string     `json:"mapper,omitempty"`
	HasInput     bool       `json:"hasInput"`
}

// Image is the geometry and point data of an ImageData node.
type Image struct {
	Dimensions [3]int     `json:"dimensions"`
	Spacing    [3]float64 `json:"spacing"`
	Origin     [3]float64 `json:"origin"`
	Arrays     []Array    `json:"arrays,omitempty"`
}

// Array describes a registered data array.
type Array struct {
	Name       string      `json:"name"`
	Kind       string      `json:"kind"`
	Components int         `json:"components"`
	Tuples     int         `json:"tuples"`
	Range      *[2]float64 `json:"range,omitempty"`
}

// View describes a mounted view.
type View struct {
	ID         string     `json:"id"`
	Path       string     `json:"path"`
	Actors     int        `json:"actors"`
	Background [3]float64 `json:"background"`
}

// Take captures the mounted state of t.
func Take(t *host.Tree) Snapshot {
	var s Snapshot
	t.Walk(func(info host.NodeInfo) bool {
		n := Node{
			ID:    info.ID,
			Kind:  info.Kind,
			Key:   info.Key,
			Path:  info.Path,
			Depth: info.Depth,
		}
		for _, ch := range info.Established {
			n.Established = append(n.Established, ch.String())
		}
		describe(&n, &s, info.Component)
		s.Nodes = append(s.Nodes, n)
		return true
	})
	slices.SortStableFunc(s.Views, func(a, b View) int { return strings.Compare(a.ID, b.ID) })
	return s
}

func describe(n *Node, s *Snapshot, c host.Component) {
	switch c := c.(type) {
	case *scene.Representation:
		st := c.State()
		n.Representation = &Representation{
			ValidData:    st.ValidData,
			Requested:    st.RequestedVisibility,
			Visible:      st.Visible,
			Preset:       st.Preset,
			ColorRange:   st.ColorRange.String(),
			MappingRange: st.MappingRange,
			Actor:        string(st.ActorKind),
			Mapper:       string(st.MapperKind),
			HasInput:     st.HasInput,
		}
	case *scene.ImageData:
		img := c.Image()
		im := &Image{
			Dimensions: img.Dimensions(),
			Spacing:    img.Spacing(),
			Origin:     img.Origin(),
		}
		for _, a := range img.PointData().Arrays() {
			im.Arrays = append(im.Arrays, describeArray(a))
		}
		n.Image = im
	case *scene.DataArray:
		a := describeArray(c.Array())
		n.Array = &a
	case *scene.RegisterDataSet:
		n.DataSet = c.DataSetID()
	case *scene.UseDataSet:
		n.DataSet = c.DataSetID()
	case *scene.View:
		r := c.Renderer()
		s.Views = append(s.Views, View{
			ID:         c.ID(),
			Path:       n.Path,
			Actors:     len(r.Actors()),
			Background: r.Background(),
		})
	}
}

func describeArray(a *array.DataArray) Array {
	out := Array{
		Name:       a.Name(),
		Kind:       string(a.Kind()),
		Components: a.Components(),
		Tuples:     a.Tuples(),
	}
	if lo, hi, ok := a.Range(); ok {
		out.Range = &[2]float64{lo, hi}
	}
	return out
}

// Node returns the node mounted at p.
func (s Snapshot) Node(p string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.Path == p {
			return n, true
		}
	}
	return Node{}, false
}

// View returns the view registered under id.
func (s Snapshot) View(id string) (View, bool) {
	for _, v := range s.Views {
		if v.ID == id {
			return v, true
		}
	}
	return View{}, false
}

// Representations returns the representation nodes in tree order.
func (s Snapshot) Representations() []Node {
	var out []Node
	for _, n := range s.Nodes {
		if n.Representation != nil {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the nodes directly below p.
func (s Snapshot) Children(p string) []Node {
	var out []Node
	for _, n := range s.Nodes {
		if parent, ok := n.Parent(); ok && parent == p {
			out = append(out, n)
		}
	}
	return out
}
