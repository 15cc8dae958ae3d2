package convert

// Polygon is one normalized shape: an optional device name, the outer hull
// ring, and any hole rings. A shape without the name property serializes
// with "name": null.
type Polygon struct {
	Name       *string        `json:"name"`
	HullPoints [][2]float64   `json:"hull_points"`
	HolePoints [][][2]float64 `json:"hole_points"`
}

// LayerResult is the ordered list of normalized shapes of one layer.
type LayerResult struct {
	Name   string    `json:"name"`
	Shapes []Polygon `json:"shapes"`
}

// Result is the complete output of a conversion run. Layers keep the
// layout's native order.
type Result struct {
	LengthUnit int           `json:"length_unit"`
	Layers     []LayerResult `json:"layers"`
}

// ShapeCount returns the total number of shapes across all layers.
func (r *Result) ShapeCount() int {
	n := 0
	for _, l := range r.Layers {
		n += len(l.Shapes)
	}
	return n
}
