// Package colormap provides the named color presets applied to lookup tables.
//
// Presets are defined as ordered color stops over the normalized interval
// [0, 1]. A lookup table maps its data range onto that interval, so the same
// preset serves any scalar range:
//
//	p, ok := colormap.Resolve("Cool to Warm")
//	if ok {
//	    c := p.At(0.5) // colorful.Color
//	}
package colormap

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultPreset is applied when a representation does not name one.
const DefaultPreset = "Grayscale"

// Space is the color space stops are interpolated in.
type Space string

// Interpolation spaces.
const (
	SpaceRGB Space = "RGB"
	SpaceLab Space = "Lab"
)

// Stop is one control point of a preset.
type Stop struct {
	X     float64
	Color colorful.Color
}

// Preset is a named color ramp.
type Preset struct {
	Name  string
	Space Space
	Stops []Stop
}

// At returns the preset color at normalized position t. Values outside [0, 1]
// are clamped.
func (p *Preset) At(t float64) colorful.Color {
	if len(p.Stops) == 0 {
		return colorful.Color{}
	}
	t = math.Max(0, math.Min(1, t))
	i := sort.Search(len(p.Stops), func(i int) bool { return p.Stops[i].X >= t })
	switch {
	case i == 0:
		return p.Stops[0].Color
	case i == len(p.Stops):
		return p.Stops[len(p.Stops)-1].Color
	}
	a, b := p.Stops[i-1], p.Stops[i]
	f := (t - a.X) / (b.X - a.X)
	if p.Space == SpaceLab {
		return a.Color.BlendLab(b.Color, f).Clamped()
	}
	return a.Color.BlendRgb(b.Color, f)
}

// Sample returns n colors evenly spaced over the preset.
func (p *Preset) Sample(n int) []colorful.Color {
	out := make([]colorful.Color, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = p.At(t)
	}
	return out
}

func ramp(name string, space Space, hex ...string) *Preset {
	p := &Preset{Name: name, Space: space, Stops: make([]Stop, len(hex))}
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("colormap: preset %s: %v", name, err))
		}
		p.Stops[i] = Stop{X: float64(i) / float64(len(hex)-1), Color: c}
	}
	return p
}

var presets = map[string]*Preset{}

func init() {
	for _, p := range []*Preset{
		ramp("Grayscale", SpaceRGB, "#000000", "#ffffff"),
		ramp("X Ray", SpaceRGB, "#ffffff", "#000000"),
		ramp("Cool to Warm", SpaceLab, "#3b4cc0", "#dddddd", "#b40426"),
		ramp("jet", SpaceRGB, "#000080", "#0000ff", "#00ffff", "#ffff00", "#ff0000", "#800000"),
		ramp("hot", SpaceRGB, "#0b0000", "#ff0000", "#ffff00", "#ffffff"),
		ramp("Black-Body Radiation", SpaceRGB, "#000000", "#e64616", "#e6e645", "#ffffff"),
		ramp("Rainbow Desaturated", SpaceLab, "#474747", "#00006a", "#00ffff", "#008000", "#ffff00", "#ff6100", "#6b0000", "#e04d4d"),
		ramp("erdc_rainbow_bright", SpaceRGB, "#2b1ed2", "#1e9bdc", "#45d866", "#fffa00", "#f16f00", "#b2112e"),
		ramp("Viridis (matplotlib)", SpaceLab, "#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"),
		ramp("Inferno (matplotlib)", SpaceLab, "#000004", "#57106e", "#bc3754", "#f98e09", "#fcffa4"),
	} {
		presets[p.Name] = p
	}
}

// Resolve returns the preset registered under name.
func Resolve(name string) (*Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// Names returns all preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
