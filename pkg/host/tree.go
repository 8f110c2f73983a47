package host

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/scenesync/pkg/errors"
	"github.com/matzehuels/scenesync/pkg/observability"
	"github.com/matzehuels/scenesync/pkg/scope"
)

// Tree is a mounted element tree. It is driven from a single goroutine.
type Tree struct {
	env       *Env
	reg       *Registry
	root      *node
	rendering bool
}

type node struct {
	in       *Instance
	el       Element
	comp     Component
	parent   *scope.Scope // scope received from ancestors
	scope    *scope.Scope // scope handed to children
	children []*node
}

// NewTree returns an empty tree.
func NewTree(env *Env, reg *Registry) *Tree {
	return &Tree{env: env, reg: reg}
}

// Env returns the tree's environment.
func (t *Tree) Env() *Env { return t.env }

// Render reconciles the tree with root. The first call mounts; later calls
// update matching nodes in place, mount new ones and unmount vanished ones.
// A root of a different kind or key replaces the whole tree.
//
// Render validates the description before touching anything and rejects
// calls made while a render is in progress.
func (t *Tree) Render(root Element) error {
	if t.rendering {
		t.env.Logger.Warn("re-entrant render rejected", "kind", root.Kind)
		return errors.New(errors.ErrCodeInternal, "re-entrant render rejected")
	}
	if err := t.reg.Validate(root); err != nil {
		return err
	}
	t.rendering = true
	defer func() { t.rendering = false }()

	switch {
	case t.root == nil:
		t.root = t.mount(root, scope.Root(), "")
	case t.root.el.identity(0) != root.identity(0):
		t.unmount(t.root)
		t.root = t.mount(root, scope.Root(), "")
	default:
		t.update(t.root, root)
	}
	return nil
}

// Unmount tears the whole tree down, children before parents.
func (t *Tree) Unmount() {
	if t.root == nil {
		return
	}
	t.unmount(t.root)
	t.root = nil
}

// Mounted reports whether the tree has a root.
func (t *Tree) Mounted() bool { return t.root != nil }

// Flush runs the work components deferred, such as coalesced redraws, and
// returns how many deferred functions ran.
func (t *Tree) Flush() int {
	return t.env.idle.drain()
}

func (t *Tree) mount(el Element, parent *scope.Scope, path string) *node {
	f, _ := t.reg.Lookup(el.Kind)
	in := &Instance{Env: t.env, ID: uuid.NewString(), Kind: el.Kind, Path: path}
	n := &node{in: in, el: el, comp: f(in), parent: parent}

	n.scope = n.comp.Mount(parent, el.Props)
	t.env.Logger.Debug("mounted", "kind", el.Kind, "path", path)
	observability.Reconcile().OnMount(el.Kind, in.ID)

	for i, c := range el.Children {
		n.children = append(n.children, t.mount(c, n.scope, joinPath(path, c.segment(i))))
	}
	if ca, ok := n.comp.(ChildrenAware); ok {
		ca.ChildrenUpdated()
	}
	return n
}

func (t *Tree) update(n *node, el Element) {
	start := time.Now()
	changed := n.comp.Update(el.Props)
	n.el = el
	observability.Reconcile().OnUpdate(el.Kind, n.in.ID, changed, time.Since(start))

	old := make(map[string]*node, len(n.children))
	for i, c := range n.children {
		old[c.el.identity(i)] = c
	}
	matched := make(map[*node]bool, len(el.Children))
	for i, c := range el.Children {
		if prev, ok := old[c.identity(i)]; ok {
			matched[prev] = true
		}
	}

	// Removals first, in reverse order.
	for i := len(n.children) - 1; i >= 0; i-- {
		if c := n.children[i]; !matched[c] {
			t.unmount(c)
		}
	}

	next := make([]*node, 0, len(el.Children))
	for i, c := range el.Children {
		if prev, ok := old[c.identity(i)]; ok {
			t.update(prev, c)
			next = append(next, prev)
			continue
		}
		next = append(next, t.mount(c, n.scope, joinPath(n.in.Path, c.segment(i))))
	}
	n.children = next

	if ca, ok := n.comp.(ChildrenAware); ok {
		ca.ChildrenUpdated()
	}
}

func (t *Tree) unmount(n *node) {
	for i := len(n.children) - 1; i >= 0; i-- {
		t.unmount(n.children[i])
	}
	n.children = nil
	n.comp.Unmount()
	t.env.Logger.Debug("unmounted", "kind", n.in.Kind, "path", n.in.Path)
	observability.Reconcile().OnUnmount(n.in.Kind, n.in.ID)
}

// =============================================================================
// Inspection
// =============================================================================

// NodeInfo describes one mounted node.
type NodeInfo struct {
	ID          string
	Kind        string
	Key         string
	Path        string
	Depth       int
	Component   Component
	Established []scope.Channel // channels this node establishes for its subtree
}

// Walk visits mounted nodes depth-first, parents before children. Returning
// false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(NodeInfo) bool) {
	if t.root != nil {
		walk(t.root, 0, fn)
	}
}

func walk(n *node, depth int, fn func(NodeInfo) bool) {
	info := NodeInfo{
		ID:          n.in.ID,
		Kind:        n.in.Kind,
		Key:         n.el.Key,
		Path:        n.in.Path,
		Depth:       depth,
		Component:   n.comp,
		Established: established(n.scope, n.parent),
	}
	if !fn(info) {
		return
	}
	for _, c := range n.children {
		walk(c, depth+1, fn)
	}
}

// established returns the channels linked between child and its ancestor
// parent, outermost first.
func established(child, parent *scope.Scope) []scope.Channel {
	var out []scope.Channel
	for cur := child; cur != nil && cur != parent; cur = cur.Parent() {
		out = append(out, cur.Channel())
	}
	slices.Reverse(out)
	return out
}

// joinPath appends seg to a node path. The root's path is empty, so paths
// read "axial/ct" rather than naming the root.
func joinPath(parent, seg string) string {
	if parent == "" {
		return seg
	}
	return parent + "/" + seg
}

// Find returns the component mounted at path. The root's path is "".
func (t *Tree) Find(path string) (Component, bool) {
	var found Component
	t.Walk(func(n NodeInfo) bool {
		if n.Path == path {
			found = n.Component
			return false
		}
		return found == nil
	})
	return found, found != nil
}
