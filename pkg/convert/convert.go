// Package convert implements the conversion pipeline: open a layout file,
// walk the layers and shapes of one top-level cell, normalize every shape
// into hull and hole rings, and assemble the unit-scaled result.
//
// The pipeline is a pure traversal: it never mutates the layout, never
// recurses into referenced cells, and either fully succeeds or fails with
// no partial result.
package convert

import (
	"context"
	"math"
	"os"
	"strconv"

	"github.com/charmbracelet/log"

	apperrors "github.com/vale981/klayout-converter/pkg/errors"
	"github.com/vale981/klayout-converter/pkg/gds"
	"github.com/vale981/klayout-converter/pkg/geom"
	"github.com/vale981/klayout-converter/pkg/layout"
)

// Defaults for the conversion options.
const (
	// DefaultTopCell is the cell whose shapes are extracted.
	DefaultTopCell = "devicegen"

	// DefaultNameProperty is the property carrying a shape's device name.
	DefaultNameProperty = "devicegen_name"

	// DefaultLengthUnit is the output length unit as a power-of-ten
	// exponent relative to meters: -9 is nanometers.
	DefaultLengthUnit = -9
)

// Options configures a conversion run. The zero value converts the
// "devicegen" cell to nanometers.
type Options struct {
	// TopCell is the name of the cell to extract.
	TopCell string

	// NameProperty is the property key holding a shape's name.
	NameProperty string

	// LengthUnit is the power-of-ten exponent of the output unit
	// relative to meters.
	LengthUnit int

	// lengthUnitSet distinguishes an explicit 0 (meters) from the
	// unset zero value; use SetLengthUnit for explicit assignment.
	lengthUnitSet bool

	// Strict fails the run on geometry anomalies instead of warning.
	Strict bool

	// LayerNames maps "layer/datatype" keys to symbolic layer names,
	// overriding the names stored in (or defaulted by) the layout.
	LayerNames map[string]string

	// PropertyAliases maps symbolic property names to numeric property
	// attributes, for formats that only store numbered properties.
	PropertyAliases map[string]int

	// Logger receives progress and anomaly reports. Defaults to the
	// standard charmbracelet logger.
	Logger *log.Logger
}

// SetLengthUnit sets an explicit output unit exponent, including 0.
func (o *Options) SetLengthUnit(exp int) {
	o.LengthUnit = exp
	o.lengthUnitSet = true
}

// LengthUnitSet reports whether the unit exponent was set explicitly.
func (o *Options) LengthUnitSet() bool {
	return o.lengthUnitSet
}

// SetDefaults fills unset fields with the package defaults.
func (o *Options) SetDefaults() {
	if o.TopCell == "" {
		o.TopCell = DefaultTopCell
	}
	if o.NameProperty == "" {
		o.NameProperty = DefaultNameProperty
	}
	if o.LengthUnit == 0 && !o.lengthUnitSet {
		o.LengthUnit = DefaultLengthUnit
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// Readers returns the layout format readers known to the pipeline.
func Readers() []layout.Reader {
	return []layout.Reader{gds.NewReader()}
}

// File converts the layout file at path. The path must reference an
// existing regular file of a supported format.
func File(ctx context.Context, path string, opts Options) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid file: %s", path)
	}
	if !info.Mode().IsRegular() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid file: %s is not a regular file", path)
	}

	reader, err := layout.Detect(path, Readers()...)
	if err != nil {
		return nil, err
	}

	lay, err := reader.Read(path)
	if err != nil {
		return nil, err
	}
	return FromLayout(ctx, lay, opts)
}

// FromLayout converts an already opened layout. The scale factor that maps
// database units into the requested output unit is computed once for the
// whole run.
func FromLayout(ctx context.Context, lay *layout.Layout, opts Options) (*Result, error) {
	opts.SetDefaults()

	cell, ok := lay.Cell(opts.TopCell)
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeCellNotFound, "cell %s not found", opts.TopCell)
	}

	scale := lay.DBUMeters / math.Pow10(opts.LengthUnit)

	res := &Result{
		LengthUnit: opts.LengthUnit,
		Layers:     []LayerResult{},
	}

	for _, lyr := range lay.Layers() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := lyr.Name
		if override, ok := opts.LayerNames[lyr.Key.String()]; ok {
			name = override
		}
		opts.Logger.Infof("Adding layer %q", name)

		lr := LayerResult{Name: name, Shapes: []Polygon{}}
		for _, shape := range cell.ShapesOn(lyr.Key) {
			poly, err := normalizeShape(shape, opts, scale)
			if err != nil {
				return nil, err
			}
			lr.Shapes = append(lr.Shapes, poly)
		}
		res.Layers = append(res.Layers, lr)
	}
	return res, nil
}

// normalizeShape resolves one raw shape into an output polygon and attaches
// its name, if any. A missing name property is not an error.
func normalizeShape(shape *layout.Shape, opts Options, scale float64) (Polygon, error) {
	ring := make(geom.Ring, len(shape.Ring))
	for i, p := range shape.Ring {
		ring[i] = geom.Point{X: float64(p.X), Y: float64(p.Y)}
	}

	normalized, err := geom.NormalizeRing(ring, geom.Options{
		Scale:  scale,
		Strict: opts.Strict,
		Warnf:  opts.Logger.Warnf,
	})
	if err != nil {
		return Polygon{}, err
	}

	poly := Polygon{
		Name:       lookupName(shape, opts),
		HullPoints: toPairs(normalized.Hull),
		HolePoints: make([][][2]float64, 0, len(normalized.Holes)),
	}
	for _, hole := range normalized.Holes {
		poly.HolePoints = append(poly.HolePoints, toPairs(hole))
	}

	if poly.Name != nil {
		opts.Logger.Infof("Found polygon with name %q", *poly.Name)
	}
	return poly, nil
}

// lookupName resolves the shape name: the property key directly, or its
// numeric alias for formats with numbered property attributes.
func lookupName(shape *layout.Shape, opts Options) *string {
	if v, ok := shape.Property(opts.NameProperty); ok {
		return &v
	}
	if attr, ok := opts.PropertyAliases[opts.NameProperty]; ok {
		if v, ok := shape.Property(strconv.Itoa(attr)); ok {
			return &v
		}
	}
	return nil
}

func toPairs(r geom.Ring) [][2]float64 {
	out := make([][2]float64, len(r))
	for i, p := range r {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}
