// Package engine declares the retained-mode rendering pipeline that scene
// nodes drive.
//
// The pipeline itself (renderers, actors, mappers, transfer functions, image
// data) is an external collaborator. This package only names the narrow
// surface the reconciliation core relies on, so any engine can be plugged in
// behind a [Factory]. The headless subpackage provides an in-memory recording
// implementation used by tests and the CLI.
//
// # Property bags
//
// Most pipeline objects accept free-form configuration through [Settable]:
//
//	changed, err := actor.Set(engine.Props{"position": [3]float64{0, 0, 1}})
//
// Set is atomic. Every key is validated before any is applied, and an invalid
// key or value yields a CONFIGURATION error naming the field with nothing
// changed.
//
// # Capabilities
//
// Some operations are only offered by some objects. Callers discover them by
// interface assertion rather than by kind:
//
//	if s, ok := mapper.(engine.MultiAxisSlicer); ok {
//	    s.SetSliceIndex(engine.AxisK, 4)
//	}
package engine
