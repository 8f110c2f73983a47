// Package scene implements the node kinds of a visualization scene.
//
// Each kind is a [host.Component] that owns one fragment of the rendering
// pipeline and wires it to its neighbours through [scope] channels:
//
//   - [View] owns a renderer and establishes the View channel.
//   - [MultiViewRoot] establishes a registry of views.
//   - [Representation] (SliceRepresentation, VolumeRepresentation) owns an
//     actor, a mapper and its color and opacity transfer functions. It gates
//     actor visibility on data arrival and derives the color range from the
//     data when asked to.
//   - [DataArray] builds a named typed array and registers it on the
//     enclosing point data.
//   - [ImageData] owns an image whose point data its DataArray children fill.
//   - [Dataset] feeds an existing dataset into the enclosing representation.
//   - [ShareDataSetRoot], [RegisterDataSet] and [UseDataSet] share datasets
//     by name across views.
//
// A typical two-view scene sharing one CT volume:
//
//	root := host.E(scene.KindShareDataSetRoot, nil,
//	    host.E(scene.KindRegisterDataSet, scene.RegisterDataSetProps{ID: "ctData"},
//	        host.E(scene.KindDataset, scene.DatasetProps{Data: ct})),
//	    host.E(scene.KindView, scene.ViewProps{},
//	        host.E(scene.KindSliceRepresentation, scene.RepresentationProps{KSlice: scene.Int(4)},
//	            host.E(scene.KindUseDataSet, scene.UseDataSetProps{ID: "ctData"}))).WithKey("axial"),
//	)
package scene

import (
	"github.com/matzehuels/scenesync/pkg/engine"
	"github.com/matzehuels/scenesync/pkg/host"
)

// Element kinds.
const (
	KindView                 = "View"
	KindMultiViewRoot        = "MultiViewRoot"
	KindSliceRepresentation  = "SliceRepresentation"
	KindVolumeRepresentation = "VolumeRepresentation"
	KindDataArray            = "DataArray"
	KindImageData            = "ImageData"
	KindDataset              = "Dataset"
	KindShareDataSetRoot     = "ShareDataSetRoot"
	KindRegisterDataSet      = "RegisterDataSet"
	KindUseDataSet           = "UseDataSet"
)

// Register adds every scene kind to r.
func Register(r *host.Registry) {
	r.Register(KindView, newView)
	r.Register(KindMultiViewRoot, newMultiViewRoot)
	r.Register(KindSliceRepresentation, newSliceRepresentation)
	r.Register(KindVolumeRepresentation, newVolumeRepresentation)
	r.Register(KindDataArray, newDataArray)
	r.Register(KindImageData, newImageData)
	r.Register(KindDataset, newDataset)
	r.Register(KindShareDataSetRoot, newShareDataSetRoot)
	r.Register(KindRegisterDataSet, newRegisterDataSet)
	r.Register(KindUseDataSet, newUseDataSet)
}

// NewRegistry returns a host registry with every scene kind registered.
func NewRegistry() *host.Registry {
	r := host.NewRegistry()
	Register(r)
	return r
}

// Downstream receives a dataset produced by a descendant node.
type Downstream interface {
	SetInputData(d engine.DataSet)
	InputData() engine.DataSet
}

// DataReceiver is told when data reaches a representation. DataAvailable
// marks the first arrival of non-empty data; DataChanged reports later
// changes.
type DataReceiver interface {
	HasData() bool
	DataAvailable()
	DataChanged()
}

// signalData notifies rep that d arrived through its downstream target. Empty
// data is not announced.
func signalData(rep DataReceiver, d engine.DataSet) {
	if rep == nil || d == nil || d.IsEmpty() {
		return
	}
	if rep.HasData() {
		rep.DataChanged()
		return
	}
	rep.DataAvailable()
}

// unlink clears target's input if it still is d.
func unlink(target Downstream, d engine.DataSet) {
	if target != nil && d != nil && target.InputData() == d {
		target.SetInputData(nil)
	}
}

// Int returns a pointer to v, for optional integer props.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for optional float props.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v, for optional boolean props.
func Bool(v bool) *bool { return &v }
