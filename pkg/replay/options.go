package replay

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scenesync/pkg/sceneio"
)

// Graph export formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ValidFormats lists the supported graph formats.
var ValidFormats = []string{FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// DefaultPNGScale renders PNG graphs at twice their SVG size.
const DefaultPNGScale = 2.0

// Options configures a replay.
type Options struct {
	// Path is the scene file. Ignored when Scene is set.
	Path string `json:"path,omitempty"`
	// Scene is an already parsed scene. It is reset before replaying.
	Scene *sceneio.Scene `json:"-"`

	// Frames bounds how many frames are replayed. Zero or negative replays
	// every frame.
	Frames int `json:"frames,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults loads the scene and applies defaults. Calling it
// more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Scene == nil {
		if o.Path == "" {
			return fmt.Errorf("scene path is required")
		}
		s, err := sceneio.Load(o.Path)
		if err != nil {
			return err
		}
		o.Scene = s
	}
	if n := len(o.Scene.Frames()); o.Frames <= 0 || o.Frames > n {
		o.Frames = n
	}
	o.validated = true
	return nil
}

// GraphOptions configures graph export.
type GraphOptions struct {
	Format   string
	Detailed bool
	// Scale applies to PNG output. Defaults to DefaultPNGScale.
	Scale float64
}

// ValidateFormat checks that a graph format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png, pdf)", format)
	}
	return nil
}

func (g *GraphOptions) setDefaults() error {
	if g.Format == "" {
		g.Format = FormatSVG
	}
	if g.Scale == 0 {
		g.Scale = DefaultPNGScale
	}
	return ValidateFormat(g.Format)
}
