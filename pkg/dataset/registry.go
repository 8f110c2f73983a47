// Package dataset shares named datasets between representations.
//
// A [Registry] maps an ID to at most one dataset. Registering under a taken ID
// replaces the previous dataset and notifies every subscriber of that ID, so
// all representations bound to "ctData" follow a reload without being
// remounted.
package dataset

import (
	"maps"
	"slices"

	"github.com/matzehuels/scenesync/pkg/engine"
	"github.com/matzehuels/scenesync/pkg/errors"
)

// Listener receives the dataset registered under a subscribed ID.
type Listener func(engine.DataSet)

type subscription struct {
	fn Listener
}

// Registry is a name to dataset map with change subscriptions.
// It is not safe for concurrent use.
type Registry struct {
	entries map[string]engine.DataSet
	subs    map[string][]*subscription
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]engine.DataSet),
		subs:    make(map[string][]*subscription),
	}
}

// Register stores d under id, replacing any previous dataset, and notifies
// the subscribers of id in subscription order. Re-registering the dataset
// already stored still notifies, since its contents may have changed.
func (r *Registry) Register(id string, d engine.DataSet) error {
	if err := errors.ValidateName("id", id); err != nil {
		return err
	}
	if d == nil {
		return errors.Configuration("id", "cannot register nil dataset under %q", id)
	}
	r.entries[id] = d
	for _, s := range slices.Clone(r.subs[id]) {
		s.fn(d)
	}
	return nil
}

// Unregister removes id if it still maps to d. A registration that has since
// been replaced by another dataset is left alone. Subscribers are not
// notified; they keep the last dataset they received.
func (r *Registry) Unregister(id string, d engine.DataSet) bool {
	cur, ok := r.entries[id]
	if !ok || cur != d {
		return false
	}
	delete(r.entries, id)
	return true
}

// Lookup returns the dataset registered under id.
func (r *Registry) Lookup(id string) (engine.DataSet, bool) {
	d, ok := r.entries[id]
	return d, ok
}

// IDs returns the registered IDs in sorted order.
func (r *Registry) IDs() []string {
	return slices.Sorted(maps.Keys(r.entries))
}

// Subscribe calls fn with the dataset registered under id now, if any, and
// on every later registration. The returned function cancels the
// subscription; calling it more than once is harmless.
func (r *Registry) Subscribe(id string, fn Listener) (cancel func()) {
	s := &subscription{fn: fn}
	r.subs[id] = append(r.subs[id], s)
	if d, ok := r.entries[id]; ok {
		fn(d)
	}
	return func() {
		list := r.subs[id]
		if i := slices.Index(list, s); i >= 0 {
			r.subs[id] = slices.Delete(list, i, i+1)
		}
		if len(r.subs[id]) == 0 {
			delete(r.subs, id)
		}
	}
}

// Subscribers returns the number of live subscriptions for id.
func (r *Registry) Subscribers(id string) int {
	return len(r.subs[id])
}
