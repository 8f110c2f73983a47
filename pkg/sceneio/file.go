// Package sceneio reads scene files: a TOML description of a scene tree,
// the synthetic datasets it shares, and a sequence of frames that change
// props over time.
//
//	[[datasets]]
//	id = "ctData"
//	dimensions = [16, 16, 8]
//	range = [0.0, 2000.0]
//
//	[root]
//	kind = "ShareDataSetRoot"
//	  [[root.children]]
//	  kind = "View"
//	  key = "axial"
//	    [[root.children.children]]
//	    kind = "SliceRepresentation"
//	    key = "ct"
//	    props = { kSlice = 4 }
//	      [[root.children.children.children]]
//	      kind = "UseDataSet"
//	      props = { id = "ctData" }
//
//	[[frames]]
//	target = "axial/ct"
//	props = { kSlice = 5 }
//
// Each dataset becomes a RegisterDataSet > ImageData > DataArray branch
// holding a linear ramp over range, inserted before the root's own children.
// Prop names match the scene props fields case-insensitively. A frame
// replaces the named props of the node at target, a path of keys (or
// Kind[i] for unkeyed nodes) exactly as the mounted tree names it.
package sceneio

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/scenesync/pkg/cache"
	"github.com/matzehuels/scenesync/pkg/errors"
)

// File is the decoded form of a scene file.
type File struct {
	Datasets []DatasetSpec `toml:"datasets"`
	Root     NodeSpec      `toml:"root"`
	Frames   []FrameSpec   `toml:"frames"`
}

// NodeSpec describes one element.
type NodeSpec struct {
	Kind     string                    `toml:"kind"`
	Key      string                    `toml:"key"`
	Props    map[string]toml.Primitive `toml:"props"`
	Children []NodeSpec                `toml:"children"`
}

// FrameSpec replaces props of one node.
type FrameSpec struct {
	Name   string                    `toml:"name"`
	Target string                    `toml:"target"`
	Props  map[string]toml.Primitive `toml:"props"`
}

// DatasetSpec describes a synthetic image dataset.
type DatasetSpec struct {
	ID         string     `toml:"id"`
	Dimensions [3]int     `toml:"dimensions"`
	Spacing    [3]float64 `toml:"spacing"`
	Origin     [3]float64 `toml:"origin"`
	// Kind is the element kind of the scalars. Defaults to float32.
	Kind string `toml:"kind"`
	// Range is the ramp's first and last value. Defaults to [0, 1].
	Range [2]float64 `toml:"range"`
	// Components defaults to 1.
	Components int `toml:"components"`
	// Array names the scalars. Defaults to "scalars".
	Array string `toml:"array"`
}

// Load reads and parses the scene file at path.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read scene %s", path)
	}
	return Parse(data)
}

// Parse decodes a scene file. Every prop and frame is checked here, so a
// parsed scene replays without decode errors.
func Parse(data []byte) (*Scene, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode scene")
	}
	s, err := build(f, &md)
	if err != nil {
		return nil, err
	}
	// Props were decoded by build, so anything left is a typo.
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown scene field %q", undecoded[0].String())
	}
	s.Hash = cache.Hash(data)
	return s, nil
}
