package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/scenesync/pkg/engine"
)

// ColorRange selects how a representation's color mapping range is chosen:
// derived from the data ("auto") or fixed to an explicit pair. The zero value
// means "not supplied".
type ColorRange struct {
	set    bool
	auto   bool
	lo, hi float64
}

// AutoRange derives the mapping range from the data's scalar range.
func AutoRange() ColorRange { return ColorRange{set: true, auto: true} }

// Range fixes the mapping range to [lo, hi].
func Range(lo, hi float64) ColorRange { return ColorRange{set: true, lo: lo, hi: hi} }

// IsSet reports whether the range was supplied.
func (c ColorRange) IsSet() bool { return c.set }

// IsAuto reports whether the range follows the data.
func (c ColorRange) IsAuto() bool { return c.set && c.auto }

// Bounds returns the explicit pair. It is (0, 0) for auto ranges.
func (c ColorRange) Bounds() (lo, hi float64) { return c.lo, c.hi }

// String returns "auto", "[lo, hi]" or "unset".
func (c ColorRange) String() string {
	switch {
	case !c.set:
		return "unset"
	case c.auto:
		return "auto"
	}
	return fmt.Sprintf("[%g, %g]", c.lo, c.hi)
}

// MarshalText implements encoding.TextMarshaler.
func (c ColorRange) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts the forms
// String produces, except "unset".
func (c *ColorRange) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "auto" {
		*c = AutoRange()
		return nil
	}
	inner, ok := strings.CutPrefix(s, "[")
	if ok {
		inner, ok = strings.CutSuffix(inner, "]")
	}
	lo, hi, found := strings.Cut(inner, ",")
	if !ok || !found {
		return fmt.Errorf("color range %q: want \"auto\" or \"[lo, hi]\"", s)
	}
	l, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return fmt.Errorf("color range %q: %w", s, err)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return fmt.Errorf("color range %q: %w", s, err)
	}
	*c = Range(l, h)
	return nil
}

// UnmarshalTOML decodes "auto" or a two-element numeric array.
func (c *ColorRange) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		return c.UnmarshalText([]byte(v))
	case []any:
		if len(v) != 2 {
			return fmt.Errorf("color range: want 2 bounds, got %d", len(v))
		}
		var b [2]float64
		for i, x := range v {
			switch x := x.(type) {
			case int64:
				b[i] = float64(x)
			case float64:
				b[i] = x
			default:
				return fmt.Errorf("color range: bound %v is not a number", x)
			}
		}
		*c = Range(b[0], b[1])
		return nil
	}
	return fmt.Errorf("color range: unsupported value %v", v)
}

// rampNodes returns opacity nodes rising from 0 at lo to 1 at hi.
func rampNodes(lo, hi float64) []engine.Node {
	return []engine.Node{
		{X: lo, Y: 0, Midpoint: 0.5, Sharpness: 0},
		{X: hi, Y: 1, Midpoint: 0.5, Sharpness: 0},
	}
}
