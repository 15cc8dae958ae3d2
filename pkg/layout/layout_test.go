package layout

import (
	"testing"
)

func TestLayerOrderFirstSeen(t *testing.T) {
	l := New()
	l.Layer(LayerKey{Layer: 8, Datatype: 0})
	l.Layer(LayerKey{Layer: 1, Datatype: 0})
	l.Layer(LayerKey{Layer: 8, Datatype: 0}) // repeat must not reorder
	l.Layer(LayerKey{Layer: 3, Datatype: 2})

	got := l.Layers()
	want := []string{"8/0", "1/0", "3/2"}
	if len(got) != len(want) {
		t.Fatalf("len(Layers()) = %d, want %d", len(got), len(want))
	}
	for i, lay := range got {
		if lay.Name != want[i] {
			t.Errorf("layer %d = %q, want %q", i, lay.Name, want[i])
		}
	}
}

func TestCellShapes(t *testing.T) {
	l := New()
	c := l.AddCell("devicegen")
	key := LayerKey{Layer: 1}

	c.AddShape(key, &Shape{Ring: []Point{{0, 0}, {1, 0}, {1, 1}}})
	c.AddShape(key, &Shape{Ring: []Point{{2, 2}, {3, 2}, {3, 3}}})

	if got := len(c.ShapesOn(key)); got != 2 {
		t.Errorf("ShapesOn = %d shapes, want 2", got)
	}
	if got := c.ShapeCount(); got != 2 {
		t.Errorf("ShapeCount = %d, want 2", got)
	}
	if got := len(c.ShapesOn(LayerKey{Layer: 9})); got != 0 {
		t.Errorf("empty layer should have 0 shapes, got %d", got)
	}

	if _, ok := l.Cell("devicegen"); !ok {
		t.Error("Cell(devicegen) should exist")
	}
	if _, ok := l.Cell("other"); ok {
		t.Error("Cell(other) should not exist")
	}
}

func TestCellRefsDeduplicated(t *testing.T) {
	c := &Cell{Name: "top"}
	c.AddRef("pad")
	c.AddRef("via")
	c.AddRef("pad")

	got := c.Refs()
	if len(got) != 2 || got[0] != "pad" || got[1] != "via" {
		t.Errorf("Refs() = %v, want [pad via]", got)
	}
}

func TestShapeProperty(t *testing.T) {
	s := &Shape{Properties: map[string]string{"devicegen_name": "pad1"}}

	if v, ok := s.Property("devicegen_name"); !ok || v != "pad1" {
		t.Errorf("Property = %q, %v", v, ok)
	}
	if _, ok := s.Property("missing"); ok {
		t.Error("missing property should not be found")
	}

	var empty Shape
	if _, ok := empty.Property("any"); ok {
		t.Error("empty bag should report missing")
	}
}

type fakeReader struct{ ext string }

func (f *fakeReader) Format() string          { return f.ext }
func (f *fakeReader) Detect(path string) bool { return false }
func (f *fakeReader) Read(string) (*Layout, error) {
	return nil, nil
}

func TestDetectUnsupported(t *testing.T) {
	_, err := Detect("chip.oas", &fakeReader{ext: "gdsii"})
	if err == nil {
		t.Fatal("Detect should fail for unclaimed files")
	}
}
