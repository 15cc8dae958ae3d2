// Package geom normalizes raw layout polygons.
//
// Layout formats store a logical polygon as a single outline that may carry
// line-cut artifacts: a hole is reached through a zero-width slit, and one
// logical shape may be stitched together from several simple loops that
// touch at shared vertices. The normalizer undoes this encoding: it splits
// the outline into simple loops, recombines them as planar regions using
// the simplefeatures geometry engine, and emits one clean polygon with an
// outer hull and explicit holes, scaled into the caller's length unit.
package geom

// Point is a 2-D vertex. Before normalization coordinates are database
// units; afterwards they are in the requested output unit.
type Point struct {
	X, Y float64
}

// Ring is an ordered open vertex sequence describing a closed boundary.
// The closing vertex is not repeated.
type Ring []Point

// scaled returns a copy of the ring with every coordinate multiplied by f.
func (r Ring) scaled(f float64) Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[i] = Point{X: p.X * f, Y: p.Y * f}
	}
	return out
}

// Polygon is a normalized polygon: one simple outer hull and zero or more
// simple holes strictly inside it.
type Polygon struct {
	Hull  Ring
	Holes []Ring
}
