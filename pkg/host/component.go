package host

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/scenesync/pkg/errors"
	"github.com/matzehuels/scenesync/pkg/observability"
	"github.com/matzehuels/scenesync/pkg/scope"
)

// Component is the live counterpart of an [Element].
//
// Mount receives the scope established by the node's ancestors and returns
// the scope its children see: either the same scope, or a child scope that
// establishes more channels. Update receives the element's new props and
// reports whether anything visible changed. Unmount releases what Mount
// created. None of them fail: problems are reported through
// [Instance.Report] and leave the node as it was.
type Component interface {
	Mount(s *scope.Scope, props any) *scope.Scope
	Update(props any) bool
	Unmount()
}

// ChildrenAware is implemented by components that act on their subtree
// after it was mounted or updated.
type ChildrenAware interface {
	ChildrenUpdated()
}

// Factory creates the component for one mounted element.
type Factory func(in *Instance) Component

// Instance identifies a mounted element to its component.
type Instance struct {
	Env  *Env
	ID   string
	Kind string
	Path string
}

// Logger returns the environment logger annotated with the node's kind and
// path.
func (in *Instance) Logger() *log.Logger {
	return in.Env.Logger.With("kind", in.Kind, "path", in.Path)
}

// Report logs a non-fatal core error and emits it to the reconcile hooks.
// Configuration problems are warnings; missing context and unavailable data
// are expected while a tree is still being wired and are logged at debug.
func (in *Instance) Report(err error) {
	if err == nil {
		return
	}
	l := in.Logger()
	switch errors.GetCode(err) {
	case errors.ErrCodeMissingContext, errors.ErrCodeDataUnavailable:
		l.Debug("update skipped", "err", err)
	default:
		l.Warn("update skipped", "err", err)
	}
	in.Env.record(in, err)
	observability.Reconcile().OnError(in.Kind, in.ID, err)
}

// PropsAs converts an element's props to T. Nil props, and a nil *T, yield
// the zero T. Anything else that is neither T nor *T is a CONFIGURATION
// error.
func PropsAs[T any](p any) (T, error) {
	var zero T
	switch v := p.(type) {
	case nil:
		return zero, nil
	case T:
		return v, nil
	case *T:
		if v == nil {
			return zero, nil
		}
		return *v, nil
	}
	return zero, errors.Configuration("props", "expected %T, got %T", zero, p)
}
