package geom

import (
	sf "github.com/peterstace/simplefeatures/geom"

	apperrors "github.com/vale981/klayout-converter/pkg/errors"
)

// Options configures polygon normalization.
type Options struct {
	// Scale multiplies every output coordinate. Zero means 1.
	Scale float64

	// Strict turns recoverable geometry anomalies (a shape whose parts
	// merge into more than one disjoint polygon) into hard errors.
	Strict bool

	// Warnf receives anomaly reports in non-strict mode. Optional.
	Warnf func(format string, args ...any)
}

func (o *Options) setDefaults() {
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Warnf == nil {
		o.Warnf = func(string, ...any) {}
	}
}

// NormalizeRing resolves one stored outline into a normalized polygon. It
// is the per-shape entry point of the conversion pipeline: split at
// line-cut artifacts, recombine, extract hull and holes, scale.
func NormalizeRing(ring Ring, opts Options) (Polygon, error) {
	parts := SplitRing(ring)
	if len(parts) == 0 {
		return Polygon{}, apperrors.New(apperrors.ErrCodeMalformedGeometry,
			"outline with %d vertices has no usable loop", len(ring))
	}
	return Normalize(parts, opts)
}

// Normalize recombines the simple loops of one logical shape into a single
// polygon. Loops at even containment depth contribute area, loops at odd
// depth cut holes; this recovers keyhole-encoded holes and merges disjoint
// fragments in one pass. If recombination still yields several disjoint
// polygons, the first is kept (with a warning), or the whole shape fails
// in strict mode.
func Normalize(parts []Ring, opts Options) (Polygon, error) {
	opts.setDefaults()

	if len(parts) == 1 {
		if _, err := toPolygon(parts[0]); err == nil {
			// Already simple: keep the stored vertex order.
			return Polygon{Hull: parts[0].scaled(opts.Scale), Holes: []Ring{}}, nil
		}
	}

	polys := make([]sf.Polygon, len(parts))
	for i, part := range parts {
		p, err := toPolygon(part)
		if err != nil {
			return Polygon{}, apperrors.Wrap(apperrors.ErrCodeMalformedGeometry, err,
				"loop %d of %d is not a valid polygon", i+1, len(parts))
		}
		polys[i] = p
	}

	merged, err := recombine(parts, polys)
	if err != nil {
		return Polygon{}, err
	}
	if len(merged) == 0 {
		return Polygon{}, apperrors.New(apperrors.ErrCodeMalformedGeometry,
			"loops cancel out to an empty region")
	}
	if len(merged) > 1 {
		if opts.Strict {
			return Polygon{}, apperrors.New(apperrors.ErrCodeMalformedGeometry,
				"shape merges into %d disjoint polygons", len(merged))
		}
		opts.Warnf("shape merges into %d disjoint polygons, keeping the first", len(merged))
	}

	poly := merged[0]
	out := Polygon{
		Hull:  extractRing(poly.ExteriorRing(), opts.Scale),
		Holes: make([]Ring, 0, poly.NumInteriorRings()),
	}
	for i := 0; i < poly.NumInteriorRings(); i++ {
		out.Holes = append(out.Holes, extractRing(poly.InteriorRingN(i), opts.Scale))
	}
	return out, nil
}

// recombine applies the boolean pass: union of even-depth loops minus the
// union of odd-depth loops, returning the disjoint result polygons.
func recombine(parts []Ring, polys []sf.Polygon) ([]sf.Polygon, error) {
	depth := make([]int, len(parts))
	for i := range parts {
		for j := range parts {
			if i != j && ringCovers(parts[j], parts[i]) {
				depth[i]++
			}
		}
	}

	var (
		add, sub       sf.Geometry
		hasAdd, hasSub bool
		err            error
	)
	for i, p := range polys {
		g := p.AsGeometry()
		if depth[i]%2 == 0 {
			add, hasAdd, err = accumulate(add, hasAdd, g)
		} else {
			sub, hasSub, err = accumulate(sub, hasSub, g)
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeMalformedGeometry, err, "union of loops")
		}
	}

	result := add
	if hasSub {
		result, err = sf.Difference(add, sub)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeMalformedGeometry, err, "subtracting holes")
		}
	}
	return polygonsOf(result), nil
}

func accumulate(acc sf.Geometry, has bool, g sf.Geometry) (sf.Geometry, bool, error) {
	if !has {
		return g, true, nil
	}
	u, err := sf.Union(acc, g)
	return u, true, err
}

// polygonsOf flattens a boolean-op result into its polygon constituents.
func polygonsOf(g sf.Geometry) []sf.Polygon {
	switch {
	case g.IsEmpty():
		return nil
	case g.Type() == sf.TypePolygon:
		return []sf.Polygon{g.MustAsPolygon()}
	case g.Type() == sf.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		out := make([]sf.Polygon, 0, mp.NumPolygons())
		for i := 0; i < mp.NumPolygons(); i++ {
			out = append(out, mp.PolygonN(i))
		}
		return out
	case g.Type() == sf.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		var out []sf.Polygon
		for i := 0; i < gc.NumGeometries(); i++ {
			out = append(out, polygonsOf(gc.GeometryN(i))...)
		}
		return out
	default:
		return nil
	}
}

// toPolygon builds a validated single-ring polygon from a loop.
func toPolygon(ring Ring) (sf.Polygon, error) {
	flat := make([]float64, 0, 2*(len(ring)+1))
	for _, p := range ring {
		flat = append(flat, p.X, p.Y)
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		flat = append(flat, ring[0].X, ring[0].Y)
	}

	ls := sf.NewLineString(sf.NewSequence(flat, sf.DimXY))
	poly := sf.NewPolygon([]sf.LineString{ls})
	if err := poly.Validate(); err != nil {
		return sf.Polygon{}, err
	}
	return poly, nil
}

// extractRing converts a polygon ring back into a scaled vertex sequence,
// dropping the closing vertex.
func extractRing(ls sf.LineString, scale float64) Ring {
	seq := ls.Coordinates()
	n := seq.Length()
	if n > 0 {
		n--
	}
	out := make(Ring, 0, n)
	for i := 0; i < n; i++ {
		xy := seq.GetXY(i)
		out = append(out, Point{X: xy.X * scale, Y: xy.Y * scale})
	}
	return out
}

// ringCovers reports whether inner lies inside outer. The loops of one
// shape only ever touch at the cut vertices they were split on, so testing
// a vertex of inner that outer does not share settles containment.
func ringCovers(outer, inner Ring) bool {
	shared := make(map[Point]bool, len(outer))
	for _, p := range outer {
		shared[p] = true
	}
	for _, p := range inner {
		if !shared[p] {
			return pointInRing(p, outer)
		}
	}
	return false
}

// pointInRing is a standard even-odd ray cast.
func pointInRing(p Point, ring Ring) bool {
	in := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}
