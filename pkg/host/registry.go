package host

import (
	"maps"
	"slices"

	"github.com/matzehuels/scenesync/pkg/errors"
)

// Registry maps element kinds to component factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind string, f Factory) {
	r.factories[kind] = f
}

// Lookup returns the factory for kind.
func (r *Registry) Lookup(kind string) (Factory, bool) {
	f, ok := r.factories[kind]
	return f, ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// Validate checks that every element in the tree rooted at el has a
// registered kind and that no two siblings share a kind and key.
func (r *Registry) Validate(el Element) error {
	return r.validate(el, el.segment(0))
}

func (r *Registry) validate(el Element, path string) error {
	if _, ok := r.factories[el.Kind]; !ok {
		return errors.New(errors.ErrCodeConfiguration, "unknown element kind %q at %s", el.Kind, path)
	}
	seen := make(map[string]bool, len(el.Children))
	for i, c := range el.Children {
		if c.Key != "" {
			id := c.identity(i)
			if seen[id] {
				return errors.New(errors.ErrCodeConfiguration, "duplicate key %q among children of %s", c.Key, path)
			}
			seen[id] = true
		}
		if err := r.validate(c, path+"/"+c.segment(i)); err != nil {
			return err
		}
	}
	return nil
}
