package colormap

import (
	"fmt"
	"testing"
)

func TestResolve(t *testing.T) {
	for _, name := range []string{DefaultPreset, "Cool to Warm", "jet", "hot"} {
		p, ok := Resolve(name)
		if !ok {
			t.Errorf("Resolve(%q) ok = false, want true", name)
			continue
		}
		if p.Name != name {
			t.Errorf("Resolve(%q).Name = %q", name, p.Name)
		}
	}

	if _, ok := Resolve("NoSuchPreset"); ok {
		t.Error("Resolve(unknown) ok = true, want false")
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	if len(names) < 5 {
		t.Fatalf("Names() returned %d presets, want at least 5", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("Names() not sorted at %d: %q > %q", i, names[i-1], names[i])
		}
	}
}

func TestAtEndpointsAndClamp(t *testing.T) {
	p, _ := Resolve("Grayscale")

	tests := []struct {
		t    float64
		want string
	}{
		{0, "#000000"},
		{1, "#ffffff"},
		{-3, "#000000"},
		{7, "#ffffff"},
	}
	for _, tt := range tests {
		if got := p.At(tt.t).Hex(); got != tt.want {
			t.Errorf("At(%v) = %s, want %s", tt.t, got, tt.want)
		}
	}

	mid := p.At(0.5)
	if mid.R < 0.49 || mid.R > 0.51 {
		t.Errorf("At(0.5).R = %v, want ~0.5", mid.R)
	}
}

func TestSample(t *testing.T) {
	p, _ := Resolve("jet")
	colors := p.Sample(3)
	if len(colors) != 3 {
		t.Fatalf("Sample(3) len = %d", len(colors))
	}
	if colors[0].Hex() != "#000080" || colors[2].Hex() != "#800000" {
		t.Errorf("Sample endpoints = %s, %s", colors[0].Hex(), colors[2].Hex())
	}
	if got := p.Sample(1); len(got) != 1 || got[0].Hex() != "#000080" {
		t.Errorf("Sample(1) = %v", got)
	}
}

func ExampleResolve() {
	p, ok := Resolve("Grayscale")
	fmt.Println(ok, p.At(1).Hex())
	// Output: true #ffffff
}

func TestRamp(t *testing.T) {
	p := ramp("test", SpaceRGB, "#3b4cc0", "#dddddd", "#b40426")
	want := []string{"#3b4cc0", "#dddddd", "#b40426"}
	for i, s := range p.Stops {
		if got := s.Color.Hex(); got != want[i] {
			t.Errorf("Stops[%d] = %s, want %s", i, got, want[i])
		}
	}
	if p.Stops[1].X != 0.5 {
		t.Errorf("Stops[1].X = %v, want 0.5", p.Stops[1].X)
	}

	defer func() {
		if recover() == nil {
			t.Error("ramp with a malformed color did not panic")
		}
	}()
	ramp("bad", SpaceRGB, "#000000", "not a color")
}
