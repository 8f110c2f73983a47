package replay

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/scenesync/pkg/cache"
	"github.com/matzehuels/scenesync/pkg/errors"
	"github.com/matzehuels/scenesync/pkg/inspect"
	"github.com/matzehuels/scenesync/pkg/sceneio"
)

var twoViews = filepath.Join("testdata", "two_views.toml")

func loadScene(t *testing.T) *sceneio.Scene {
	t.Helper()
	s, err := sceneio.Load(twoViews)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return s
}

func rep(t *testing.T, s inspect.Snapshot, path string) *inspect.Representation {
	t.Helper()
	n, ok := s.Node(path)
	if !ok || n.Representation == nil {
		t.Fatalf("no representation at %q", path)
	}
	return n.Representation
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantErr    bool
		wantFrames int
	}{
		{"path", Options{Path: twoViews}, false, 4},
		{"bounded", Options{Path: twoViews, Frames: 2}, false, 2},
		{"beyond last", Options{Path: twoViews, Frames: 9}, false, 4},
		{"no scene", Options{}, true, 0},
		{"missing file", Options{Path: "testdata/nope.toml"}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if opts.Frames != tt.wantFrames {
				t.Errorf("Frames = %d, want %d", opts.Frames, tt.wantFrames)
			}
			if opts.Logger == nil || opts.Scene == nil {
				t.Error("defaults not applied")
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				t.Errorf("second call error = %v", err)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range ValidFormats {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) error = %v", f, err)
		}
	}
	if err := ValidateFormat("jpeg"); err == nil {
		t.Error("ValidateFormat(jpeg) error = nil")
	}
}

func TestSession(t *testing.T) {
	sess, mounted, err := NewSession(loadScene(t), nil)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer sess.Close()

	if mounted.Frame != nil {
		t.Errorf("mounted Frame = %+v, want nil", mounted.Frame)
	}
	if mounted.Redraws != 2 {
		t.Errorf("mounted Redraws = %d, want 2", mounted.Redraws)
	}
	if len(mounted.Issues) != 0 {
		t.Errorf("mounted Issues = %v", mounted.Issues)
	}
	if r := rep(t, mounted.Snapshot, "views/axial/ct"); !r.Visible || r.MappingRange != [2]float64{0, 2000} {
		t.Errorf("axial = %+v", r)
	}
	live := len(sess.Engine().Live())

	fr, ok, err := sess.Step()
	if err != nil || !ok {
		t.Fatalf("Step() = %v, %v", ok, err)
	}
	if fr.Frame.Name != "next slice" {
		t.Errorf("Frame.Name = %q", fr.Frame.Name)
	}
	if fr.Redraws != 1 {
		t.Errorf("Redraws = %d, want 1", fr.Redraws)
	}

	fr, _, _ = sess.Step()
	if r := rep(t, fr.Snapshot, "views/axial/ct"); r.ColorRange != "[200, 1200]" || r.MappingRange != [2]float64{200, 1200} {
		t.Errorf("after window = %+v", r)
	}

	fr, _, _ = sess.Step()
	if r := rep(t, fr.Snapshot, "views/coronal/ct"); r.Visible || r.Requested {
		t.Errorf("coronal after hide = %+v", r)
	}

	_, _, _ = sess.Step()
	if _, ok, err := sess.Step(); ok || err != nil {
		t.Errorf("Step() past the end = %v, %v", ok, err)
	}

	fr, err = sess.Reset()
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if r := rep(t, fr.Snapshot, "views/coronal/ct"); !r.Visible || !r.Requested {
		t.Errorf("coronal after Reset = %+v", r)
	}
	for _, path := range []string{"views/axial/ct", "views/coronal/ct"} {
		if got, want := rep(t, fr.Snapshot, path), rep(t, mounted.Snapshot, path); !reflect.DeepEqual(got, want) {
			t.Errorf("%s after Reset = %+v, want %+v", path, got, want)
		}
	}
	if fr.Redraws != mounted.Redraws || len(fr.Issues) != 0 {
		t.Errorf("Reset() Redraws, Issues = %d, %v, want %d, none", fr.Redraws, fr.Issues, mounted.Redraws)
	}
	if n := len(sess.Engine().Live()); n != live {
		t.Errorf("Live() after Reset = %d objects, want %d", n, live)
	}
	if sess.Scene().Applied() != 0 {
		t.Errorf("Applied() after Reset = %d", sess.Scene().Applied())
	}
}

func TestSessionApplyRecordsIssues(t *testing.T) {
	sess, _, err := NewSession(loadScene(t), nil)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer sess.Close()

	fr, err := sess.Apply("views/axial", "background = [1.0, 1.0]")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(fr.Issues) != 1 {
		t.Fatalf("Issues = %v, want 1", fr.Issues)
	}
	if is := fr.Issues[0]; is.Path != "views/axial" || is.Code != errors.ErrCodeConfiguration {
		t.Errorf("issue = %+v", is)
	}
	if v, _ := fr.Snapshot.View("axial"); v.Background != [3]float64{0.1, 0.1, 0.1} {
		t.Errorf("Background = %v after invalid update", v.Background)
	}

	if _, err := sess.Apply("views/axial", "zoom = 2"); errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("Apply(unknown prop) error = %v", err)
	}
}

func TestSessionClose(t *testing.T) {
	sess, _, err := NewSession(loadScene(t), nil)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	sess.Close()
	if live := sess.Engine().Live(); len(live) != 0 {
		t.Errorf("Live() after Close = %v", live)
	}
}

func TestRunnerExecute(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()

	res, err := r.Execute(ctx, Options{Path: twoViews})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.CacheInfo.SnapshotHit {
		t.Error("first Execute() hit the cache")
	}
	if len(res.Frames) != 5 || res.Stats.Frames != 4 {
		t.Errorf("frames = %d (stats %d), want 5 (4)", len(res.Frames), res.Stats.Frames)
	}
	if res.Stats.Issues != 0 {
		t.Errorf("Stats.Issues = %d, want 0", res.Stats.Issues)
	}
	if r := rep(t, res.Final().Snapshot, "views/axial/ct"); r.ColorRange != "auto" || r.MappingRange != [2]float64{0, 2000} {
		t.Errorf("final axial = %+v", r)
	}

	again, err := r.Execute(ctx, Options{Path: twoViews})
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !again.CacheInfo.SnapshotHit {
		t.Error("second Execute() missed the cache")
	}
	if again.SceneHash != res.SceneHash || len(again.Frames) != len(res.Frames) {
		t.Error("cached result differs")
	}
	if again.Final().Frame.Name != "back to auto" {
		t.Errorf("cached final frame = %+v", again.Final().Frame)
	}

	fresh, err := r.Execute(ctx, Options{Path: twoViews, Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if fresh.CacheInfo.SnapshotHit {
		t.Error("Refresh read the cache")
	}
}

func TestRunnerExecuteBounded(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Scene: loadScene(t), Frames: 1})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(res.Frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(res.Frames))
	}
	if r := rep(t, res.Final().Snapshot, "views/axial/ct"); r.ColorRange != "auto" {
		t.Errorf("ColorRange = %s after one frame", r.ColorRange)
	}
}

func TestRunnerExecuteResetsScene(t *testing.T) {
	s := loadScene(t)
	for !s.Done() {
		_, _, _ = s.Step()
	}
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Scene: s})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if r := rep(t, res.Frames[0].Snapshot, "views/coronal/ct"); !r.Visible {
		t.Error("replay did not start from the parsed scene")
	}
}

func TestRunnerExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(ctx, Options{Path: twoViews}); err != context.Canceled {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestRunnerGraph(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()

	out, res, err := r.Graph(ctx, Options{Path: twoViews}, GraphOptions{Format: FormatDOT, Detailed: true})
	if err != nil {
		t.Fatalf("Graph() error = %v", err)
	}
	dot := string(out)
	if !strings.HasPrefix(dot, "digraph G {") {
		t.Errorf("output is not DOT:\n%s", dot)
	}
	if !strings.Contains(dot, "dataset: ctData") {
		t.Error("detailed graph has no dataset line")
	}
	if res.CacheInfo.GraphHit {
		t.Error("first Graph() hit the cache")
	}

	again, res, err := r.Graph(ctx, Options{Path: twoViews}, GraphOptions{Format: FormatDOT, Detailed: true})
	if err != nil {
		t.Fatalf("second Graph() error = %v", err)
	}
	if !res.CacheInfo.GraphHit || string(again) != dot {
		t.Error("second Graph() did not return the cached graph")
	}

	if _, _, err := r.Graph(ctx, Options{Path: twoViews}, GraphOptions{Format: "gif"}); err == nil {
		t.Error("Graph(gif) error = nil")
	}
}
