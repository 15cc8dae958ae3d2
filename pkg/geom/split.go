package geom

// SplitRing cuts a stored outline into simple loops at its line-cut
// artifacts. The cuts show up as repeated vertices: the outline runs into a
// hole (or a detached part) through a vertex it visits again on the way
// back. Whenever a vertex reoccurs, the enclosed loop is extracted and the
// walk continues from the first occurrence.
//
// Loops with fewer than three vertices (zero-width spikes, duplicate
// points) are dropped. A plain simple outline comes back as a single loop
// with its vertex order untouched.
func SplitRing(ring Ring) []Ring {
	pts := ring
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}

	var parts []Ring
	path := make(Ring, 0, len(pts))
	index := make(map[Point]int, len(pts))

	for _, p := range pts {
		if at, seen := index[p]; seen {
			loop := append(Ring(nil), path[at:]...)
			if len(loop) >= 3 {
				parts = append(parts, loop)
			}
			for _, q := range path[at:] {
				delete(index, q)
			}
			path = path[:at]
		}
		index[p] = len(path)
		path = append(path, p)
	}

	if len(path) >= 3 {
		parts = append(parts, path)
	}
	return parts
}
