package cache

import "strconv"

// Keyer builds cache keys. Every key embeds the hash of the scene file it
// was computed from.
type Keyer interface {
	// SnapshotKey names the snapshot taken after replaying frame frames.
	SnapshotKey(sceneHash string, frame int) string

	// GraphKey names a rendered graph of the scene.
	GraphKey(sceneHash string, opts GraphKeyOpts) string
}

// GraphKeyOpts are the export options a rendered graph depends on.
type GraphKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
	Frame    int    `json:"frame,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SnapshotKey returns "snapshot:<scene hash>:<frame>".
func (DefaultKeyer) SnapshotKey(sceneHash string, frame int) string {
	return "snapshot:" + sceneHash + ":" + strconv.Itoa(frame)
}

// GraphKey hashes the options into the key.
func (DefaultKeyer) GraphKey(sceneHash string, opts GraphKeyOpts) string {
	return hashKey("graph", sceneHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix, giving each scene collection its
// own namespace in a shared backend such as Redis:
//
//	keyer := cache.NewScopedKeyer(nil, "scenesync:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SnapshotKey generates a prefixed snapshot key.
func (k *ScopedKeyer) SnapshotKey(sceneHash string, frame int) string {
	return k.prefix + k.inner.SnapshotKey(sceneHash, frame)
}

// GraphKey generates a prefixed graph key.
func (k *ScopedKeyer) GraphKey(sceneHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(sceneHash, opts)
}
