// Package headless is an in-memory [engine.Factory] that records every
// mutating call it receives.
//
// It draws nothing. Renderers count their redraws, mappers "execute" by
// exposing their input as their current image, and transfer functions keep
// their range and nodes. Tests assert on the call log to check that the
// reconciliation core touched the pipeline exactly as much as it should:
//
//	eng := headless.New()
//	// ... mount a scene against eng ...
//	eng.ResetCalls()
//	// ... re-apply identical props ...
//	if n := len(eng.Calls()); n != 0 {
//	    t.Errorf("identical update made %d pipeline calls", n)
//	}
//
// An Engine is not safe for concurrent use.
package headless

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/scenesync/pkg/engine"
	"github.com/matzehuels/scenesync/pkg/errors"
)

// Call is one recorded mutating call.
type Call struct {
	Object string // e.g. "actor-2"
	Method string // e.g. "SetVisibility"
	Args   string // formatted arguments
}

// String formats the call as "object.Method(args)".
func (c Call) String() string {
	return fmt.Sprintf("%s.%s(%s)", c.Object, c.Method, c.Args)
}

// Engine implements [engine.Factory].
type Engine struct {
	calls []Call
	seq   map[string]int
	live  map[string]bool
}

// New returns an empty engine.
func New() *Engine {
	return &Engine{
		seq:  make(map[string]int),
		live: make(map[string]bool),
	}
}

var _ engine.Factory = (*Engine)(nil)

func (e *Engine) record(obj, method string, args ...any) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	e.calls = append(e.calls, Call{Object: obj, Method: method, Args: strings.Join(parts, ", ")})
}

func (e *Engine) newID(kind string) string {
	e.seq[kind]++
	id := fmt.Sprintf("%s-%d", kind, e.seq[kind])
	e.live[id] = true
	return id
}

func (e *Engine) release(id string) {
	delete(e.live, id)
	e.record(id, "Delete")
}

// Calls returns a copy of the call log.
func (e *Engine) Calls() []Call {
	return slices.Clone(e.calls)
}

// CallsTo returns the logged calls of method, in order.
func (e *Engine) CallsTo(method string) []Call {
	var out []Call
	for _, c := range e.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (e *Engine) ResetCalls() {
	e.calls = nil
}

// Live returns the IDs of objects created and not yet deleted, sorted.
func (e *Engine) Live() []string {
	ids := make([]string, 0, len(e.live))
	for id := range e.live {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// =============================================================================
// Factory
// =============================================================================

// NewRenderer implements engine.Factory.
func (e *Engine) NewRenderer() engine.Renderer {
	id := e.newID("renderer")
	e.record(id, "New")
	return &Renderer{
		eng:    e,
		id:     id,
		camera: newBag(e, id+"/camera", cameraSchema),
	}
}

// NewActor implements engine.Factory.
func (e *Engine) NewActor(kind engine.ActorKind) engine.Actor {
	id := e.newID("actor")
	e.record(id, "New", kind)
	schema := slicePropertySchema
	if kind == engine.ActorVolume {
		schema = volumePropertySchema
	}
	return &Actor{
		bag:        newBag(e, id, actorSchema),
		kind:       kind,
		visibility: true,
		property:   &Property{bag: newBag(e, id+"/property", schema)},
	}
}

// NewMapper implements engine.Factory.
func (e *Engine) NewMapper(kind engine.MapperKind) (engine.Mapper, error) {
	switch kind {
	case engine.MapperImage:
		id := e.newID("imageMapper")
		e.record(id, "New", kind)
		return &ImageMapper{Mapper: newMapper(e, id, kind, imageMapperSchema)}, nil
	case engine.MapperImageArray:
		id := e.newID("imageArrayMapper")
		e.record(id, "New", kind)
		return &ImageArrayMapper{Mapper: newMapper(e, id, kind, imageArrayMapperSchema)}, nil
	case engine.MapperVolume:
		id := e.newID("volumeMapper")
		e.record(id, "New", kind)
		return newMapper(e, id, kind, volumeMapperSchema), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "headless engine has no mapper %q", kind)
}

// NewColorTransferFunction implements engine.Factory.
func (e *Engine) NewColorTransferFunction() engine.ColorTransferFunction {
	id := e.newID("lut")
	e.record(id, "New")
	return &ColorTransferFunction{eng: e, id: id, hi: 1}
}

// NewPiecewiseFunction implements engine.Factory.
func (e *Engine) NewPiecewiseFunction() engine.PiecewiseFunction {
	id := e.newID("opacity")
	e.record(id, "New")
	return &PiecewiseFunction{eng: e, id: id}
}

// NewImageData implements engine.Factory.
func (e *Engine) NewImageData() engine.ImageData {
	id := e.newID("image")
	e.record(id, "New")
	return &ImageData{eng: e, id: id, spacing: [3]float64{1, 1, 1}}
}
