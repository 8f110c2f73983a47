// Package pipeline provides the primitive every scene node uses to own a
// piece of the rendering pipeline.
//
// An [Object] pairs a handle (a mapper, a renderer, a buffer) with the
// configuration it was last built or patched from. Applying a configuration
// does the least work that reaches it:
//
//   - nothing, when the configuration is unchanged
//   - an in-place patch, when only patchable fields differ
//   - a rebuild, when coupled fields differ (a new handle is built and the
//     old one destroyed)
//
// A failing build or patch leaves the previous handle and configuration in
// place, so an Object is never half-applied:
//
//	obj := pipeline.New(pipeline.Config[engine.Mapper, mapperConfig]{
//	    Build:        buildMapper,
//	    Patch:        patchMapper,
//	    NeedsRebuild: func(prev, next mapperConfig) bool { return prev.Kind != next.Kind },
//	    Destroy:      func(m engine.Mapper) { m.Delete() },
//	})
//	changed, err := obj.Apply(cfg)
package pipeline

import (
	"reflect"

	"github.com/matzehuels/scenesync/pkg/engine"
	"github.com/matzehuels/scenesync/pkg/errors"
)

// Config describes how an [Object] builds, patches and releases its handle.
// Only Build is required.
type Config[R, C any] struct {
	// Build constructs a handle for cfg.
	Build func(cfg C) (R, error)

	// Patch updates h in place from prev to next. It must apply all of next
	// or nothing. A nil Patch treats every change as a rebuild.
	Patch func(h R, prev, next C) (changed bool, err error)

	// NeedsRebuild reports whether moving from prev to next changes a field
	// coupled to construction. Nil means never.
	NeedsRebuild func(prev, next C) bool

	// Destroy releases a handle the Object owns. Nil means nothing to release.
	Destroy func(h R)

	// Equal reports whether two configurations are the same. Nil means
	// reflect.DeepEqual.
	Equal func(a, b C) bool
}

// Object is a handle plus the configuration it reflects.
type Object[R, C any] struct {
	cfg     Config[R, C]
	handle  R
	current C
	built   bool
}

// New returns an Object that has not been created yet.
func New[R, C any](cfg Config[R, C]) *Object[R, C] {
	if cfg.Equal == nil {
		cfg.Equal = func(a, b C) bool { return reflect.DeepEqual(a, b) }
	}
	return &Object[R, C]{cfg: cfg}
}

// Create builds the handle for cfg. Creating an Object twice destroys the
// first handle once the second is built.
func (o *Object[R, C]) Create(cfg C) error {
	if o.cfg.Build == nil {
		return errors.New(errors.ErrCodeInternal, "pipeline object has no builder")
	}
	h, err := o.cfg.Build(cfg)
	if err != nil {
		return err
	}
	if o.built {
		o.destroy(o.handle)
	}
	o.handle, o.current, o.built = h, cfg, true
	return nil
}

// Apply moves the Object to cfg and reports whether anything visible changed.
// An unbuilt Object is created.
func (o *Object[R, C]) Apply(cfg C) (bool, error) {
	if !o.built {
		if err := o.Create(cfg); err != nil {
			return false, err
		}
		return true, nil
	}
	if o.cfg.Equal(o.current, cfg) {
		return false, nil
	}
	if o.cfg.Patch == nil || (o.cfg.NeedsRebuild != nil && o.cfg.NeedsRebuild(o.current, cfg)) {
		if err := o.Create(cfg); err != nil {
			return false, err
		}
		return true, nil
	}
	changed, err := o.cfg.Patch(o.handle, o.current, cfg)
	if err != nil {
		return false, err
	}
	o.current = cfg
	return changed, nil
}

// Destroy releases the handle. The Object can be created again afterwards.
func (o *Object[R, C]) Destroy() {
	if !o.built {
		return
	}
	o.destroy(o.handle)
	var zeroR R
	var zeroC C
	o.handle, o.current, o.built = zeroR, zeroC, false
}

func (o *Object[R, C]) destroy(h R) {
	if o.cfg.Destroy != nil {
		o.cfg.Destroy(h)
	}
}

// Handle returns the current handle, or the zero R before Create.
func (o *Object[R, C]) Handle() R { return o.handle }

// Current returns the configuration the handle reflects.
func (o *Object[R, C]) Current() C { return o.current }

// Built reports whether a handle exists.
func (o *Object[R, C]) Built() bool { return o.built }

// ApplyProps forwards the key-level difference between prev and next to
// target in a single Set call. A nil next, or next being the very same bag as
// prev, is a no-op that makes no call at all.
func ApplyProps(target engine.Settable, prev, next engine.Props) (bool, error) {
	if next == nil || engine.SameProps(prev, next) {
		return false, nil
	}
	diff := engine.Diff(prev, next)
	if len(diff) == 0 {
		return false, nil
	}
	return target.Set(diff)
}
