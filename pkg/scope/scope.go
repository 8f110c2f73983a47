// Package scope carries pipeline wiring down a mounted node tree.
//
// A [Scope] is an immutable chain of (channel, value) links. A node that
// establishes a channel derives a child scope for its subtree; the parent's
// scope is never modified, so siblings and ancestors are unaffected:
//
//	child := parent.With(scope.View, myView)
//	v, ok := scope.Lookup[*scene.View](child, scope.View)
//
// Lookup returns the value from the nearest establishing ancestor. A channel
// nobody established reads as (zero, false); callers decide whether that is a
// MISSING_CONTEXT error.
package scope

// Channel names one kind of pipeline wiring.
type Channel int

// Channels.
const (
	// View is the enclosing view's renderer.
	View Channel = iota
	// Representation is the enclosing representation, notified when data
	// arrives or changes.
	Representation
	// Downstream receives a dataset produced by a descendant.
	Downstream
	// Fields is the point data of the enclosing dataset.
	Fields
	// DataSets is the shared dataset registry.
	DataSets
	// Views is the multi-view registry.
	Views
)

// String returns the channel name.
func (c Channel) String() string {
	switch c {
	case View:
		return "view"
	case Representation:
		return "representation"
	case Downstream:
		return "downstream"
	case Fields:
		return "fields"
	case DataSets:
		return "datasets"
	case Views:
		return "views"
	}
	return "unknown"
}

// Scope is one link of the chain. The nil *Scope is the empty scope.
type Scope struct {
	parent  *Scope
	channel Channel
	value   any
}

// Root returns the empty scope.
func Root() *Scope { return nil }

// With returns a child scope establishing ch as v.
func (s *Scope) With(ch Channel, v any) *Scope {
	return &Scope{parent: s, channel: ch, value: v}
}

// Parent returns the enclosing scope.
func (s *Scope) Parent() *Scope {
	if s == nil {
		return nil
	}
	return s.parent
}

// Channel returns the channel this link establishes.
func (s *Scope) Channel() Channel { return s.channel }

// Value returns the nearest value established for ch.
func (s *Scope) Value(ch Channel) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.channel == ch {
			return cur.value, true
		}
	}
	return nil, false
}

// Channels returns the channels visible from s, nearest first, without
// duplicates.
func (s *Scope) Channels() []Channel {
	var out []Channel
	seen := make(map[Channel]bool)
	for cur := s; cur != nil; cur = cur.parent {
		if !seen[cur.channel] {
			seen[cur.channel] = true
			out = append(out, cur.channel)
		}
	}
	return out
}

// Lookup returns the nearest value established for ch as a T. A value of the
// wrong type reads as missing.
func Lookup[T any](s *Scope, ch Channel) (T, bool) {
	var zero T
	v, ok := s.Value(ch)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
