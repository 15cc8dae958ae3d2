// Package hierarchy builds the cell-reference graph of a layout, for
// inspecting which cells a design instantiates. The converter itself only
// reads one flat cell; this package exists for exploring unfamiliar files.
package hierarchy

import (
	"slices"

	"github.com/vale981/klayout-converter/pkg/layout"
)

// Edge is one cell-to-cell reference.
type Edge struct {
	From string
	To   string
}

// Graph is the cell-reference graph of a layout. Cells are ordered as
// defined in the file.
type Graph struct {
	cells []string
	edges []Edge
}

// FromLayout extracts the reference graph.
func FromLayout(lay *layout.Layout) *Graph {
	g := &Graph{}
	for _, cell := range lay.Cells() {
		g.cells = append(g.cells, cell.Name)
		for _, ref := range cell.Refs() {
			g.edges = append(g.edges, Edge{From: cell.Name, To: ref})
		}
	}
	return g
}

// Cells returns the cell names in file order.
func (g *Graph) Cells() []string {
	return g.cells
}

// Edges returns all cell references.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Roots returns the cells no other cell references. These are the
// candidates for a conversion's top cell.
func (g *Graph) Roots() []string {
	referenced := make(map[string]bool, len(g.edges))
	for _, e := range g.edges {
		referenced[e.To] = true
	}

	var roots []string
	for _, name := range g.cells {
		if !referenced[name] {
			roots = append(roots, name)
		}
	}
	return roots
}

// ShapeCounts returns the number of shapes per cell, keyed by cell name.
func ShapeCounts(lay *layout.Layout) map[string]int {
	counts := make(map[string]int)
	for _, cell := range lay.Cells() {
		counts[cell.Name] = cell.ShapeCount()
	}
	return counts
}

// Sorted returns the cell names in lexical order, for stable display.
func (g *Graph) Sorted() []string {
	names := slices.Clone(g.cells)
	slices.Sort(names)
	return names
}
