package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scenesync/pkg/cache"
	"github.com/matzehuels/scenesync/pkg/inspect"
)

// Runner replays scenes with caching. It holds no replay state, so one
// Runner can serve concurrent calls with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching and a nil keyer
// uses the default key layout.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: cache.Observed(c), Keyer: keyer, Logger: logger}
}

// Result is a replay: the mounted state followed by one entry per frame.
type Result struct {
	SceneHash string        `json:"scene_hash"`
	Frames    []FrameResult `json:"frames"`
	Stats     Stats         `json:"stats"`
	CacheInfo CacheInfo     `json:"-"`
}

// Final returns the state after the last replayed frame.
func (r *Result) Final() FrameResult {
	return r.Frames[len(r.Frames)-1]
}

// Stats summarizes a replay.
type Stats struct {
	Frames   int           `json:"frames"`
	Redraws  int           `json:"redraws"`
	Issues   int           `json:"issues"`
	Duration time.Duration `json:"duration"`
}

// CacheInfo reports which outputs came from the cache.
type CacheInfo struct {
	SnapshotHit bool
	GraphHit    bool
}

// Execute replays opts.Frames frames and returns every intermediate state.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	s := opts.Scene
	key := r.Keyer.SnapshotKey(s.Hash, opts.Frames)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var res Result
			if err := json.Unmarshal(data, &res); err == nil {
				res.CacheInfo.SnapshotHit = true
				return &res, nil
			}
		}
	}

	res, err := r.replay(ctx, opts)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLSnapshot); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return res, nil
}

func (r *Runner) replay(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	s := opts.Scene
	s.Reset()

	sess, mounted, err := NewSession(s, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("mount: %w", err)
	}
	defer sess.Close()

	res := &Result{SceneHash: s.Hash, Frames: []FrameResult{mounted}}
	r.Logger.Info("mounted scene",
		"nodes", len(mounted.Snapshot.Nodes),
		"views", len(mounted.Snapshot.Views),
		"duration", mounted.Duration)

	for range opts.Frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fr, ok, err := sess.Step()
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", s.Applied(), err)
		}
		if !ok {
			break
		}
		res.Frames = append(res.Frames, fr)
		r.Logger.Info("applied frame",
			"name", fr.Frame.Name,
			"redraws", fr.Redraws,
			"issues", len(fr.Issues),
			"duration", fr.Duration)
	}

	for _, fr := range res.Frames {
		res.Stats.Redraws += fr.Redraws
		res.Stats.Issues += len(fr.Issues)
	}
	res.Stats.Frames = len(res.Frames) - 1
	res.Stats.Duration = time.Since(start)
	return res, nil
}

// Graph replays the scene and exports the final state as a graph.
func (r *Runner) Graph(ctx context.Context, opts Options, g GraphOptions) ([]byte, *Result, error) {
	if err := g.setDefaults(); err != nil {
		return nil, nil, err
	}
	res, err := r.Execute(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	key := r.Keyer.GraphKey(res.SceneHash, cache.GraphKeyOpts{
		Format:   g.Format,
		Detailed: g.Detailed,
		Frame:    res.Stats.Frames,
	})
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			res.CacheInfo.GraphHit = true
			return data, res, nil
		}
	}

	dot := inspect.ToDOT(res.Final().Snapshot, inspect.Options{Detailed: g.Detailed})
	var out []byte
	switch g.Format {
	case FormatDOT:
		out = []byte(dot)
	case FormatSVG:
		out, err = inspect.RenderSVG(ctx, dot)
	case FormatPDF:
		out, err = inspect.RenderPDF(ctx, dot)
	case FormatPNG:
		out, err = inspect.RenderPNG(ctx, dot, g.Scale)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("render %s: %w", g.Format, err)
	}
	if err := r.Cache.Set(ctx, key, out, cache.TTLGraph); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
	}
	return out, res, nil
}
