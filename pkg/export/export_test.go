package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vale981/klayout-converter/pkg/convert"
)

func testResult() *convert.Result {
	name := "pad1"
	return &convert.Result{
		LengthUnit: -9,
		Layers: []convert.LayerResult{{
			Name: "metal1",
			Shapes: []convert.Polygon{
				{
					Name:       &name,
					HullPoints: [][2]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
					HolePoints: [][][2]float64{},
				},
				{
					Name:       nil,
					HullPoints: [][2]float64{{20, 0}, {30, 0}, {30, 10}, {20, 10}},
					HolePoints: [][][2]float64{},
				},
			},
		}},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(testResult(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, `"length_unit": -9`) {
		t.Errorf("missing length_unit: %s", out)
	}
	if !strings.Contains(out, `"name": "pad1"`) {
		t.Errorf("missing shape name: %s", out)
	}
	// An absent name serializes as null, empty holes as [].
	if !strings.Contains(out, `"name": null`) {
		t.Errorf("unnamed shape should serialize name as null: %s", out)
	}
	if !strings.Contains(out, `"hole_points": []`) {
		t.Errorf("empty holes should serialize as []: %s", out)
	}

	var back convert.Result
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if back.ShapeCount() != 2 {
		t.Errorf("round-trip ShapeCount = %d, want 2", back.ShapeCount())
	}
}

func TestToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.json")

	if err := ToFile(testResult(), path, false); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "metal1") {
		t.Error("written file missing layer data")
	}

	if err := ToFile(testResult(), path, false); !errors.Is(err, ErrExists) {
		t.Errorf("overwrite without force = %v, want ErrExists", err)
	}
	if err := ToFile(testResult(), path, true); err != nil {
		t.Errorf("overwrite with force = %v", err)
	}
}
