// Package host mounts a declarative element tree and keeps it reconciled.
//
// The host is deliberately small. It matches children by kind and key (or by
// position among unkeyed siblings), mounts parents before children, unmounts
// children in reverse order before their parent, and hands each node the
// [scope.Scope] its ancestors established. Everything else, including what a
// node does with its props, lives in the node's [Component].
//
//	reg := host.NewRegistry()
//	scene.Register(reg)
//	tree := host.NewTree(host.NewEnv(headless.New(), logger), reg)
//	if err := tree.Render(root); err != nil { ... }
//	tree.Flush() // run coalesced redraws
package host

import (
	"strconv"
)

// Element is one node of a declarative description.
type Element struct {
	Kind     string
	Key      string
	Props    any
	Children []Element
}

// E builds an unkeyed element.
func E(kind string, props any, children ...Element) Element {
	return Element{Kind: kind, Props: props, Children: children}
}

// WithKey returns a copy of e with key set.
func (e Element) WithKey(key string) Element {
	e.Key = key
	return e
}

// identity returns the matching key of e at position i among its siblings.
func (e Element) identity(i int) string {
	if e.Key != "" {
		return e.Kind + "\x00" + e.Key
	}
	return e.Kind + "\x00#" + strconv.Itoa(i)
}

// segment returns the path segment naming e at position i.
func (e Element) segment(i int) string {
	if e.Key != "" {
		return e.Key
	}
	return e.Kind + "[" + strconv.Itoa(i) + "]"
}
