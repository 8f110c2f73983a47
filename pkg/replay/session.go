package replay

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scenesync/pkg/engine/headless"
	"github.com/matzehuels/scenesync/pkg/host"
	"github.com/matzehuels/scenesync/pkg/inspect"
	"github.com/matzehuels/scenesync/pkg/scene"
	"github.com/matzehuels/scenesync/pkg/sceneio"
)

// Session is a scene mounted on a headless engine. It is driven from one
// goroutine; callers sharing a session across goroutines must serialize
// access.
type Session struct {
	scene  *sceneio.Scene
	tree   *host.Tree
	engine *headless.Engine
	logger *log.Logger
}

// FrameResult is the state after mounting (Frame nil) or after one frame.
type FrameResult struct {
	Frame    *sceneio.Frame   `json:"frame,omitempty"`
	Snapshot inspect.Snapshot `json:"snapshot"`
	// Redraws is how many coalesced redraws the flush ran.
	Redraws  int           `json:"redraws"`
	Issues   []host.Issue  `json:"issues,omitempty"`
	Duration time.Duration `json:"duration"`
}

// NewSession mounts s and flushes the first redraws.
func NewSession(s *sceneio.Scene, logger *log.Logger) (*Session, FrameResult, error) {
	eng := headless.New()
	sess := &Session{
		scene:  s,
		engine: eng,
		tree:   host.NewTree(host.NewEnv(eng, logger), scene.NewRegistry()),
		logger: logger,
	}
	res, err := sess.render(nil)
	if err != nil {
		return nil, FrameResult{}, err
	}
	return sess, res, nil
}

// render reconciles the tree with the scene's current description.
func (s *Session) render(f *sceneio.Frame) (FrameResult, error) {
	start := time.Now()
	if err := s.tree.Render(s.scene.Element()); err != nil {
		return FrameResult{}, err
	}
	res := FrameResult{
		Frame:    f,
		Redraws:  s.tree.Flush(),
		Issues:   s.tree.Env().TakeIssues(),
		Snapshot: inspect.Take(s.tree),
	}
	res.Duration = time.Since(start)
	return res, nil
}

// Step applies the next frame and re-renders. It returns false once every
// frame has been applied.
func (s *Session) Step() (FrameResult, bool, error) {
	f, ok, err := s.scene.Step()
	if err != nil || !ok {
		return FrameResult{}, false, err
	}
	res, err := s.render(&f)
	if err != nil {
		return FrameResult{}, false, err
	}
	if s.logger != nil {
		s.logger.Debug("frame applied", "index", f.Index, "target", f.Target, "redraws", res.Redraws, "issues", len(res.Issues))
	}
	return res, true, nil
}

// Apply replaces props of one node (see [sceneio.Scene.Apply]) and
// re-renders.
func (s *Session) Apply(target, props string) (FrameResult, error) {
	if err := s.scene.Apply(target, props); err != nil {
		return FrameResult{}, err
	}
	return s.render(nil)
}

// Reset returns the scene to its parsed props and mounts it again, so the
// result matches a fresh session.
func (s *Session) Reset() (FrameResult, error) {
	s.tree.Unmount()
	s.tree.Flush()
	s.tree.Env().TakeIssues()
	s.scene.Reset()
	return s.render(nil)
}

// Snapshot captures the current state.
func (s *Session) Snapshot() inspect.Snapshot { return inspect.Take(s.tree) }

// Scene returns the replayed scene.
func (s *Session) Scene() *sceneio.Scene { return s.scene }

// Engine returns the headless engine the scene is mounted on.
func (s *Session) Engine() *headless.Engine { return s.engine }

// Close unmounts the tree and runs the redraws still pending.
func (s *Session) Close() {
	s.tree.Unmount()
	s.tree.Flush()
}
