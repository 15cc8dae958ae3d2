package hierarchy

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts the reference graph to Graphviz DOT format. Root cells
// are highlighted since they are the usual conversion targets.
func ToDOT(g *Graph) string {
	roots := make(map[string]bool)
	for _, r := range g.Roots() {
		roots[r] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph cells {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white];\n")
	buf.WriteString("\n")

	for _, name := range g.Cells() {
		if roots[name] {
			fmt.Fprintf(&buf, "  %q [fillcolor=lightblue];\n", name)
		} else {
			fmt.Fprintf(&buf, "  %q;\n", name)
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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
	return buf.Bytes(), nil
}
