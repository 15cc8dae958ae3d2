package gds

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
)

// Record types, encoded as the two-byte value from the stream: the high byte
// is the record kind, the low byte the data type of its payload.
const (
	recHeader    = 0x0002
	recBgnLib    = 0x0102
	recLibName   = 0x0206
	recUnits     = 0x0305
	recEndLib    = 0x0400
	recBgnStr    = 0x0502
	recStrName   = 0x0606
	recEndStr    = 0x0700
	recBoundary  = 0x0800
	recPath      = 0x0900
	recSRef      = 0x0A00
	recARef      = 0x0B00
	recText      = 0x0C00
	recLayer     = 0x0D02
	recDatatype  = 0x0E02
	recWidth     = 0x0F03
	recXY        = 0x1003
	recEndEl     = 0x1100
	recSName     = 0x1206
	recColRow    = 0x1302
	recNode      = 0x1500
	recTextType  = 0x1602
	recPresent   = 0x1701
	recString    = 0x1906
	recSTrans    = 0x1A01
	recMag       = 0x1B05
	recAngle     = 0x1C05
	recPathType  = 0x2102
	recNodeType  = 0x2A02
	recPropAttr  = 0x2B02
	recPropValue = 0x2C06
	recBox       = 0x2D00
	recBoxType   = 0x2E02
)

// recordName maps record types to their GDSII mnemonic for error messages.
var recordName = map[uint16]string{
	recHeader: "HEADER", recBgnLib: "BGNLIB", recLibName: "LIBNAME",
	recUnits: "UNITS", recEndLib: "ENDLIB", recBgnStr: "BGNSTR",
	recStrName: "STRNAME", recEndStr: "ENDSTR", recBoundary: "BOUNDARY",
	recPath: "PATH", recSRef: "SREF", recARef: "AREF", recText: "TEXT",
	recLayer: "LAYER", recDatatype: "DATATYPE", recXY: "XY",
	recEndEl: "ENDEL", recSName: "SNAME", recBox: "BOX",
	recBoxType: "BOXTYPE", recPropAttr: "PROPATTR", recPropValue: "PROPVALUE",
	recNode: "NODE",
}

func mnemonic(typ uint16) string {
	if n, ok := recordName[typ]; ok {
		return n
	}
	return fmt.Sprintf("0x%04X", typ)
}

// record is one decoded GDSII record: a type tag and its raw payload.
type record struct {
	typ  uint16
	data []byte
}

// readRecord decodes the next record from r. It returns io.EOF at a clean
// end of stream; a zero-length header (null padding after ENDLIB) is also
// treated as end of stream.
func readRecord(r io.Reader) (record, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return record{}, io.EOF
		}
		return record{}, err
	}

	length := binary.BigEndian.Uint16(hdr[:2])
	typ := binary.BigEndian.Uint16(hdr[2:])
	if length == 0 {
		// Tape-format null padding.
		return record{}, io.EOF
	}
	if length < 4 {
		return record{}, fmt.Errorf("record %s: invalid length %d", mnemonic(typ), length)
	}

	data := make([]byte, length-4)
	if _, err := io.ReadFull(r, data); err != nil {
		return record{}, fmt.Errorf("record %s: truncated payload: %w", mnemonic(typ), err)
	}
	return record{typ: typ, data: data}, nil
}

// str decodes an ASCII payload, trimming the NUL byte GDSII pads
// odd-length strings with.
func (rec record) str() string {
	return strings.TrimRight(string(rec.data), "\x00")
}

// int16At decodes the i-th big-endian two-byte integer of the payload.
func (rec record) int16At(i int) int {
	return int(int16(binary.BigEndian.Uint16(rec.data[2*i:])))
}

// int32At decodes the i-th big-endian four-byte integer of the payload.
func (rec record) int32At(i int) int32 {
	return int32(binary.BigEndian.Uint32(rec.data[4*i:]))
}

// real8At decodes the i-th eight-byte real of the payload. GDSII reals are
// excess-64 base-16 floats: a sign bit, a 7-bit exponent, and a 56-bit
// mantissa representing a value in [1/16, 1).
func (rec record) real8At(i int) float64 {
	b := rec.data[8*i : 8*i+8]
	exp := int(b[0]&0x7F) - 64
	var mant uint64
	for _, c := range b[1:] {
		mant = mant<<8 | uint64(c)
	}
	if mant == 0 {
		return 0
	}
	v := math.Ldexp(float64(mant), 4*exp-56)
	if b[0]&0x80 != 0 {
		return -v
	}
	return v
}

// points decodes an XY payload into coordinate pairs.
func (rec record) points() []point {
	n := len(rec.data) / 8
	pts := make([]point, n)
	for i := 0; i < n; i++ {
		pts[i] = point{x: rec.int32At(2 * i), y: rec.int32At(2*i + 1)}
	}
	return pts
}

type point struct {
	x, y int32
}
