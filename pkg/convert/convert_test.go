package convert

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vale981/klayout-converter/pkg/cache"
	apperrors "github.com/vale981/klayout-converter/pkg/errors"
	"github.com/vale981/klayout-converter/pkg/layout"
)

func quietOpts() Options {
	return Options{Logger: log.New(io.Discard)}
}

// testLayout builds the canonical case: one cell "devicegen", one shape on
// layer 1/0 named via the devicegen_name property.
func testLayout() *layout.Layout {
	lay := layout.New()
	lay.DBUMeters = 1e-9
	lay.DBUUser = 1e-3

	key := layout.LayerKey{Layer: 1, Datatype: 0}
	lay.Layer(key)

	cell := lay.AddCell("devicegen")
	cell.AddShape(key, &layout.Shape{
		Ring:       []layout.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0}},
		Properties: map[string]string{"devicegen_name": "pad1"},
	})
	return lay
}

func TestFromLayoutEndToEnd(t *testing.T) {
	opts := quietOpts()
	opts.LayerNames = map[string]string{"1/0": "metal1"}

	res, err := FromLayout(context.Background(), testLayout(), opts)
	if err != nil {
		t.Fatal(err)
	}

	if res.LengthUnit != -9 {
		t.Errorf("LengthUnit = %d, want -9", res.LengthUnit)
	}
	if len(res.Layers) != 1 {
		t.Fatalf("got %d layers, want 1", len(res.Layers))
	}
	lyr := res.Layers[0]
	if lyr.Name != "metal1" {
		t.Errorf("layer name = %q, want metal1", lyr.Name)
	}
	if len(lyr.Shapes) != 1 {
		t.Fatalf("got %d shapes, want 1", len(lyr.Shapes))
	}

	shape := lyr.Shapes[0]
	if shape.Name == nil || *shape.Name != "pad1" {
		t.Errorf("shape name = %v, want pad1", shape.Name)
	}
	// dbu = 1e-9 m and exponent -9 give a scale factor of exactly 1.
	want := [][2]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if len(shape.HullPoints) != len(want) {
		t.Fatalf("hull has %d points, want %d", len(shape.HullPoints), len(want))
	}
	for i, p := range want {
		if shape.HullPoints[i] != p {
			t.Errorf("hull[%d] = %v, want %v", i, shape.HullPoints[i], p)
		}
	}
	if shape.HolePoints == nil || len(shape.HolePoints) != 0 {
		t.Errorf("hole_points = %v, want empty non-nil", shape.HolePoints)
	}
}

func TestFromLayoutScaleFactor(t *testing.T) {
	lay := testLayout()

	opts := quietOpts()
	opts.SetLengthUnit(-6) // micrometers: raw 10 dbu at 1 nm/dbu = 0.01 um

	res, err := FromLayout(context.Background(), lay, opts)
	if err != nil {
		t.Fatal(err)
	}
	got := res.Layers[0].Shapes[0].HullPoints[1][0]
	if math.Abs(got-0.01) > 1e-15 {
		t.Errorf("scaled x = %g, want 0.01", got)
	}
}

func TestFromLayoutMissingNameIsNull(t *testing.T) {
	lay := layout.New()
	lay.DBUMeters = 1e-9
	key := layout.LayerKey{Layer: 2, Datatype: 0}
	lay.Layer(key)
	cell := lay.AddCell("devicegen")
	cell.AddShape(key, &layout.Shape{
		Ring: []layout.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 5}, {X: 0, Y: 5}},
	})

	res, err := FromLayout(context.Background(), lay, quietOpts())
	if err != nil {
		t.Fatal(err)
	}
	if name := res.Layers[0].Shapes[0].Name; name != nil {
		t.Errorf("name = %q, want nil", *name)
	}
}

func TestFromLayoutPropertyAlias(t *testing.T) {
	lay := layout.New()
	lay.DBUMeters = 1e-9
	key := layout.LayerKey{Layer: 1, Datatype: 0}
	lay.Layer(key)
	cell := lay.AddCell("devicegen")
	cell.AddShape(key, &layout.Shape{
		Ring:       []layout.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 5}, {X: 0, Y: 5}},
		Properties: map[string]string{"2": "via7"},
	})

	opts := quietOpts()
	opts.PropertyAliases = map[string]int{"devicegen_name": 2}

	res, err := FromLayout(context.Background(), lay, opts)
	if err != nil {
		t.Fatal(err)
	}
	if name := res.Layers[0].Shapes[0].Name; name == nil || *name != "via7" {
		t.Errorf("name = %v, want via7", name)
	}
}

func TestFromLayoutPreservesLayerOrder(t *testing.T) {
	lay := layout.New()
	lay.DBUMeters = 1e-9
	cell := lay.AddCell("devicegen")
	ring := []layout.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	for _, k := range []layout.LayerKey{{Layer: 8}, {Layer: 1}, {Layer: 3, Datatype: 2}} {
		lay.Layer(k)
		cell.AddShape(k, &layout.Shape{Ring: ring})
	}

	res, err := FromLayout(context.Background(), lay, quietOpts())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"8/0", "1/0", "3/2"}
	for i, lr := range res.Layers {
		if lr.Name != want[i] {
			t.Errorf("layer %d = %q, want %q", i, lr.Name, want[i])
		}
	}
}

func TestFromLayoutMissingCell(t *testing.T) {
	opts := quietOpts()
	opts.TopCell = "nope"

	_, err := FromLayout(context.Background(), testLayout(), opts)
	if !apperrors.Is(err, apperrors.ErrCodeCellNotFound) {
		t.Errorf("error = %v, want CELL_NOT_FOUND", err)
	}
}

func TestFileNonexistent(t *testing.T) {
	_, err := File(context.Background(), filepath.Join(t.TempDir(), "missing.gds"), quietOpts())
	if !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestFileUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chip.oas")
	if err := os.WriteFile(path, []byte("not a layout"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := File(context.Background(), path, quietOpts())
	if !apperrors.Is(err, apperrors.ErrCodeUnsupportedFormat) {
		t.Errorf("error = %v, want UNSUPPORTED_FORMAT", err)
	}
}

// writeTestGDS writes a minimal GDSII file: library with 1 nm database
// units and one devicegen cell holding a named 10x10 rectangle on layer 1.
func writeTestGDS(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer

	rec := func(typ uint16, data []byte) {
		var hdr [4]byte
		binary.BigEndian.PutUint16(hdr[:2], uint16(len(data)+4))
		binary.BigEndian.PutUint16(hdr[2:], typ)
		buf.Write(hdr[:])
		buf.Write(data)
	}
	str := func(typ uint16, s string) {
		b := []byte(s)
		if len(b)%2 != 0 {
			b = append(b, 0)
		}
		rec(typ, b)
	}
	i16 := func(typ uint16, v int) {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(int16(v)))
		rec(typ, b[:])
	}
	real8 := func(v float64) []byte {
		b := make([]byte, 8)
		exp := 0
		for v >= 1 {
			v /= 16
			exp++
		}
		for v < 1.0/16 {
			v *= 16
			exp--
		}
		mant := uint64(math.Ldexp(v, 56))
		b[0] = byte(exp + 64)
		for i := 7; i >= 1; i-- {
			b[i] = byte(mant)
			mant >>= 8
		}
		return b
	}

	rec(0x0002, []byte{0x02, 0x58})                  // HEADER
	rec(0x0102, make([]byte, 24))                    // BGNLIB
	str(0x0206, "LIB")                               // LIBNAME
	rec(0x0305, append(real8(1e-3), real8(1e-9)...)) // UNITS
	rec(0x0502, make([]byte, 24))                    // BGNSTR
	str(0x0606, "devicegen")                         // STRNAME
	rec(0x0800, nil)                                 // BOUNDARY
	i16(0x0D02, 1)                                   // LAYER
	i16(0x0E02, 0)                                   // DATATYPE
	xy := make([]byte, 0, 40)
	for _, p := range [][2]int32{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}} {
		var c [8]byte
		binary.BigEndian.PutUint32(c[:4], uint32(p[0]))
		binary.BigEndian.PutUint32(c[4:], uint32(p[1]))
		xy = append(xy, c[:]...)
	}
	rec(0x1003, xy)     // XY
	i16(0x2B02, 2)      // PROPATTR
	str(0x2C06, "pad1") // PROPVALUE
	rec(0x1100, nil)    // ENDEL
	rec(0x0700, nil)    // ENDSTR
	rec(0x0400, nil)    // ENDLIB

	path := filepath.Join(t.TempDir(), "chip.gds")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileEndToEnd(t *testing.T) {
	path := writeTestGDS(t)

	opts := quietOpts()
	opts.PropertyAliases = map[string]int{"devicegen_name": 2}

	res, err := File(context.Background(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.ShapeCount() != 1 {
		t.Fatalf("ShapeCount = %d, want 1", res.ShapeCount())
	}
	shape := res.Layers[0].Shapes[0]
	if shape.Name == nil || *shape.Name != "pad1" {
		t.Errorf("name = %v, want pad1", shape.Name)
	}
	if shape.HullPoints[2] != [2]float64{10, 10} {
		t.Errorf("hull[2] = %v, want [10 10]", shape.HullPoints[2])
	}
}

func TestRunnerCaches(t *testing.T) {
	path := writeTestGDS(t)

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, log.New(io.Discard))

	res1, cached, err := runner.Convert(context.Background(), path, quietOpts())
	if err != nil {
		t.Fatal(err)
	}
	if cached {
		t.Error("first conversion should not be cached")
	}

	res2, cached, err := runner.Convert(context.Background(), path, quietOpts())
	if err != nil {
		t.Fatal(err)
	}
	if !cached {
		t.Error("second conversion should hit the cache")
	}
	if res1.ShapeCount() != res2.ShapeCount() {
		t.Error("cached result differs")
	}

	// A different option set must miss.
	opts := quietOpts()
	opts.TopCell = "devicegen"
	opts.SetLengthUnit(-6)
	if _, cached, _ := runner.Convert(context.Background(), path, opts); cached {
		t.Error("different options should not share cache entries")
	}
}
