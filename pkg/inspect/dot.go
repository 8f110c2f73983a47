package inspect

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/scenesync/pkg/scene"
)

// Options configures graph export.
type Options struct {
	// Detailed adds channels and representation state to node labels.
	// When false, only the kind and key are shown.
	Detailed bool
}

// ToDOT converts a snapshot to Graphviz DOT format. The result can be
// rendered with [RenderSVG], [RenderPDF] or [RenderPNG].
//
// Representations are filled green while visible and grey while hidden.
// Dataset sharing is drawn as dashed edges from each UseDataSet to the
// RegisterDataSet publishing its ID.
func ToDOT(s Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	ids := make(map[string]string, len(s.Nodes))
	publishers := make(map[string]string)
	for i, n := range s.Nodes {
		id := "n" + strconv.Itoa(i)
		ids[n.Path] = id
		if n.Kind == scene.KindRegisterDataSet && n.DataSet != "" {
			publishers[n.DataSet] = id
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", id, strings.Join(fmtAttrs(n, fmtLabel(n, opts.Detailed)), ", "))
	}

	buf.WriteString("\n")
	for _, n := range s.Nodes {
		if parent, ok := n.Parent(); ok {
			fmt.Fprintf(&buf, "  %s -> %s;\n", ids[parent], ids[n.Path])
		}
	}
	for _, n := range s.Nodes {
		if n.Kind != scene.KindUseDataSet {
			continue
		}
		if from, ok := publishers[n.DataSet]; ok {
			fmt.Fprintf(&buf, "  %s -> %s [style=dashed, color=steelblue, label=%q];\n", from, ids[n.Path], n.DataSet)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n Node, detailed bool) string {
	head := n.Kind
	if n.Key != "" {
		head += "\n" + n.Key
	}
	if !detailed {
		return head
	}

	var parts []string
	if len(n.Established) > 0 {
		parts = append(parts, "provides: "+strings.Join(n.Established, ", "))
	}
	if n.DataSet != "" {
		parts = append(parts, "dataset: "+n.DataSet)
	}
	if r := n.Representation; r != nil {
		parts = append(parts,
			fmt.Sprintf("visible: %t (data: %t)", r.Visible, r.ValidData),
			fmt.Sprintf("range: %g..%g", r.MappingRange[0], r.MappingRange[1]),
			"preset: "+r.Preset,
		)
	}
	if im := n.Image; im != nil {
		parts = append(parts, fmt.Sprintf("dims: %d x %d x %d", im.Dimensions[0], im.Dimensions[1], im.Dimensions[2]))
	}
	if a := n.Array; a != nil {
		parts = append(parts, fmt.Sprintf("%s %s x%d", a.Name, a.Kind, a.Components))
	}
	if len(parts) == 0 {
		return head
	}
	return head + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.Representation != nil && n.Representation.Visible:
		attrs = append(attrs, "fillcolor=palegreen")
	case n.Representation != nil:
		attrs = append(attrs, "fillcolor=lightgrey", "style=\"rounded,filled,dashed\"")
	case n.Kind == scene.KindView:
		attrs = append(attrs, "fillcolor=lightblue")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg tag with one whose viewBox
// starts at the origin and whose size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return rsvgConvert(ctx, svg, "pdf")
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// doubles the resolution.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return rsvgConvert(ctx, svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}
