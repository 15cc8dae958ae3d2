// Package layout defines the in-memory model of an opened layout file.
//
// A Layout owns the database-unit scale of the file, the layers discovered
// while reading it, and its named cells. The model is produced once by a
// format reader (see [Reader]) and is read-only from the perspective of the
// conversion pipeline: readers populate it, everything downstream only
// traverses it.
//
// Layers are kept in the order they first appear in the file, and shapes
// within a cell keep their stored order, so downstream output is stable
// with respect to the source file.
package layout

import "fmt"

// Point is a vertex in database units.
type Point struct {
	X, Y int32
}

// LayerKey identifies a layer by its number and datatype.
type LayerKey struct {
	Layer    int
	Datatype int
}

// String returns the conventional "layer/datatype" notation.
func (k LayerKey) String() string {
	return fmt.Sprintf("%d/%d", k.Layer, k.Datatype)
}

// Layer is a layer discovered in the layout. Name is opaque pass-through
// metadata; formats without layer names get the "layer/datatype" default.
type Layer struct {
	Key  LayerKey
	Name string
}

// Shape is a single raw polygon entity as stored in the layout. The outline
// may be self-intersecting or carry line-cut artifacts; resolving that is
// the normalizer's job, not the model's.
type Shape struct {
	// Ring is the stored outline. The closing vertex may or may not repeat
	// the first one, depending on the source format.
	Ring []Point

	// Properties is the shape's property bag. Formats with numeric property
	// attributes store them under their decimal string representation.
	Properties map[string]string
}

// Property returns the property value for key and whether it was present.
func (s *Shape) Property(key string) (string, bool) {
	v, ok := s.Properties[key]
	return v, ok
}

// Cell is a named container of shapes organized per layer.
type Cell struct {
	Name string

	shapes map[LayerKey][]*Shape
	refs   []string
	refSet map[string]bool
}

// AddShape appends a shape to the cell on the given layer.
func (c *Cell) AddShape(key LayerKey, s *Shape) {
	if c.shapes == nil {
		c.shapes = make(map[LayerKey][]*Shape)
	}
	c.shapes[key] = append(c.shapes[key], s)
}

// ShapesOn returns the cell's shapes on the given layer, in stored order.
func (c *Cell) ShapesOn(key LayerKey) []*Shape {
	return c.shapes[key]
}

// ShapeCount returns the total number of shapes across all layers.
func (c *Cell) ShapeCount() int {
	n := 0
	for _, ss := range c.shapes {
		n += len(ss)
	}
	return n
}

// AddRef records a reference to another cell. Duplicates are ignored so the
// reference list reflects distinct children in first-seen order.
func (c *Cell) AddRef(name string) {
	if c.refSet == nil {
		c.refSet = make(map[string]bool)
	}
	if c.refSet[name] {
		return
	}
	c.refSet[name] = true
	c.refs = append(c.refs, name)
}

// Refs returns the names of cells referenced by this cell.
func (c *Cell) Refs() []string {
	return c.refs
}

// Layout is an opened layout document.
type Layout struct {
	// Name is the library name stored in the file, if any.
	Name string

	// DBUMeters is the size of one database unit in meters.
	DBUMeters float64

	// DBUUser is the size of one database unit in the file's user unit.
	DBUUser float64

	layers    []*Layer
	layerIdx  map[LayerKey]*Layer
	cells     map[string]*Cell
	cellOrder []string
}

// New creates an empty layout.
func New() *Layout {
	return &Layout{
		layerIdx: make(map[LayerKey]*Layer),
		cells:    make(map[string]*Cell),
	}
}

// Cell returns the named cell and whether it exists.
func (l *Layout) Cell(name string) (*Cell, bool) {
	c, ok := l.cells[name]
	return c, ok
}

// AddCell creates (or returns the existing) cell with the given name.
func (l *Layout) AddCell(name string) *Cell {
	if c, ok := l.cells[name]; ok {
		return c
	}
	c := &Cell{Name: name}
	l.cells[name] = c
	l.cellOrder = append(l.cellOrder, name)
	return c
}

// Cells returns all cells in first-seen order.
func (l *Layout) Cells() []*Cell {
	out := make([]*Cell, 0, len(l.cellOrder))
	for _, name := range l.cellOrder {
		out = append(out, l.cells[name])
	}
	return out
}

// Layer returns the layer for key, registering it with the default
// "layer/datatype" name on first touch.
func (l *Layout) Layer(key LayerKey) *Layer {
	if lay, ok := l.layerIdx[key]; ok {
		return lay
	}
	lay := &Layer{Key: key, Name: key.String()}
	l.layerIdx[key] = lay
	l.layers = append(l.layers, lay)
	return lay
}

// Layers returns all layers in the order they first appeared in the file.
func (l *Layout) Layers() []*Layer {
	return l.layers
}
