// Package inspect reports on a mounted scene tree.
//
// [Take] captures a [Snapshot]: every mounted node with the channels it
// establishes, representation state, image geometry, registered arrays and
// the views of the tree. Snapshots marshal to JSON for the CLI and the HTTP
// inspector.
//
// [ToDOT] draws a snapshot as a Graphviz digraph: structural edges from
// parent to child, dashed edges from each UseDataSet to the RegisterDataSet
// it follows. [RenderSVG] lays the graph out with Graphviz; [RenderPDF] and
// [RenderPNG] convert the SVG through librsvg.
//
//	snap := inspect.Take(tree)
//	svg, err := inspect.RenderSVG(inspect.ToDOT(snap, inspect.Options{Detailed: true}))
package inspect
