// Package gds reads GDSII stream-format layout files into the layout model.
//
// The reader understands the subset of the format relevant to geometry
// extraction: library units, structures (cells), BOUNDARY and BOX elements
// with their property bags, and SREF/AREF structure references (recorded as
// plain cell names for hierarchy reporting). PATH, TEXT and NODE elements
// carry no polygon geometry in the sense of this tool and are skipped.
//
// Files compressed with gzip are decompressed transparently, matching the
// common practice of shipping layouts as .gds.gz.
package gds

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/vale981/klayout-converter/pkg/errors"
	"github.com/vale981/klayout-converter/pkg/layout"
)

// Reader parses GDSII files. It implements [layout.Reader].
type Reader struct{}

// NewReader creates a GDSII reader.
func NewReader() *Reader {
	return &Reader{}
}

// Format returns the format name.
func (r *Reader) Format() string { return "gdsii" }

// Detect claims files with conventional GDSII extensions, including
// gzip-compressed variants.
func (r *Reader) Detect(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".gds", ".gds2", ".gdsii", ".sgds"} {
		if strings.HasSuffix(lower, ext) || strings.HasSuffix(lower, ext+".gz") {
			return true
		}
	}
	return false
}

// Read opens and fully parses the file at path.
func (r *Reader) Read(path string) (*layout.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var src io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1F && magic[1] == 0x8B {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeParse, err, "gunzip %s", path)
		}
		defer zr.Close()
		src = zr
	}

	lay, err := parse(src)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeParse, err, "parse %s", path)
	}
	return lay, nil
}

// parse consumes the record stream and builds the layout model.
func parse(src io.Reader) (*layout.Layout, error) {
	lay := layout.New()

	rec, err := readRecord(src)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if rec.typ != recHeader {
		return nil, fmt.Errorf("expected HEADER, got %s", mnemonic(rec.typ))
	}

	var cell *layout.Cell
	sawUnits := false

	for {
		rec, err := readRecord(src)
		if err == io.EOF {
			return nil, fmt.Errorf("missing ENDLIB")
		}
		if err != nil {
			return nil, err
		}

		switch rec.typ {
		case recEndLib:
			if !sawUnits {
				return nil, fmt.Errorf("missing UNITS")
			}
			return lay, nil

		case recLibName:
			lay.Name = rec.str()

		case recUnits:
			if len(rec.data) != 16 {
				return nil, fmt.Errorf("UNITS: want 16 payload bytes, got %d", len(rec.data))
			}
			lay.DBUUser = rec.real8At(0)
			lay.DBUMeters = rec.real8At(1)
			sawUnits = true

		case recBgnStr:
			cell = nil // named by the following STRNAME

		case recStrName:
			cell = lay.AddCell(rec.str())

		case recEndStr:
			cell = nil

		case recBoundary, recBox:
			if cell == nil {
				return nil, fmt.Errorf("%s outside of a structure", mnemonic(rec.typ))
			}
			if err := parseShape(src, lay, cell); err != nil {
				return nil, err
			}

		case recSRef, recARef:
			if cell == nil {
				return nil, fmt.Errorf("%s outside of a structure", mnemonic(rec.typ))
			}
			if err := parseRef(src, cell); err != nil {
				return nil, err
			}

		case recPath, recText, recNode:
			if err := skipElement(src); err != nil {
				return nil, err
			}

		default:
			// BGNLIB timestamps, format extensions etc. carry nothing we need.
		}
	}
}

// parseShape consumes the records of a BOUNDARY or BOX element up to ENDEL
// and adds the resulting shape to cell.
func parseShape(src io.Reader, lay *layout.Layout, cell *layout.Cell) error {
	var (
		key      layout.LayerKey
		ring     []layout.Point
		props    map[string]string
		propAttr = -1
	)

	for {
		rec, err := readRecord(src)
		if err != nil {
			return fmt.Errorf("element: %w", err)
		}

		switch rec.typ {
		case recLayer:
			key.Layer = rec.int16At(0)
		case recDatatype, recBoxType:
			key.Datatype = rec.int16At(0)
		case recXY:
			for _, p := range rec.points() {
				ring = append(ring, layout.Point{X: p.x, Y: p.y})
			}
		case recPropAttr:
			propAttr = rec.int16At(0)
		case recPropValue:
			if propAttr < 0 {
				return fmt.Errorf("PROPVALUE without preceding PROPATTR")
			}
			if props == nil {
				props = make(map[string]string)
			}
			props[strconv.Itoa(propAttr)] = rec.str()
			propAttr = -1
		case recEndEl:
			if len(ring) == 0 {
				return fmt.Errorf("element on layer %s has no XY record", key)
			}
			lay.Layer(key)
			cell.AddShape(key, &layout.Shape{Ring: ring, Properties: props})
			return nil
		default:
			// ELFLAGS/PLEX and friends are irrelevant here.
		}
	}
}

// parseRef consumes an SREF/AREF element and records the referenced cell.
func parseRef(src io.Reader, cell *layout.Cell) error {
	for {
		rec, err := readRecord(src)
		if err != nil {
			return fmt.Errorf("reference: %w", err)
		}
		switch rec.typ {
		case recSName:
			cell.AddRef(rec.str())
		case recEndEl:
			return nil
		}
	}
}

// skipElement discards records up to the next ENDEL.
func skipElement(src io.Reader) error {
	for {
		rec, err := readRecord(src)
		if err != nil {
			return fmt.Errorf("element: %w", err)
		}
		if rec.typ == recEndEl {
			return nil
		}
	}
}
