// Package sexp provides shared S-expression helpers and fixed-point geometry
// for KiCad files.
//
// KiCad stores board coordinates as decimal millimetres in the file but works
// internally in integer nanometres. Coord follows the internal representation
// so that translating and re-serializing a point never accumulates float error.
package sexp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Scale is the number of Coord units per millimetre
const Scale = 1_000_000

// Coord is a distance or coordinate in nanometres
type Coord int64

// FromMM converts millimetres to a Coord, rounding to the nearest nanometre
func FromMM(mm float64) Coord {
	return Coord(math.Round(mm * Scale))
}

// MM returns c in millimetres
func (c Coord) MM() float64 {
	return float64(c) / Scale
}

// String formats c as the shortest exact decimal millimetre value,
// e.g. 1500000 -> "1.5", -250000 -> "-0.25".
func (c Coord) String() string {
	return FormatCoord(c)
}

// ParseCoord parses a decimal millimetre value into a Coord
func ParseCoord(s string) (Coord, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse coordinate %q: %w", s, err)
	}
	return FromMM(f), nil
}

// FormatCoord formats c as a decimal millimetre value without trailing zeros
func FormatCoord(c Coord) string {
	neg := c < 0
	u := uint64(c)
	if neg {
		u = uint64(-c)
	}
	whole := u / Scale
	frac := u % Scale

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteString(strconv.FormatUint(whole, 10))
	if frac != 0 {
		digits := fmt.Sprintf("%06d", frac)
		sb.WriteByte('.')
		sb.WriteString(strings.TrimRight(digits, "0"))
	}
	return sb.String()
}

// Point is a 2D coordinate in the KiCad coordinate system (Y grows downwards)
type Point struct {
	X Coord
	Y Coord
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y Coord) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by d
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the vector from q to p
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%s, %s)", p.X, p.Y)
}

// BoundingBox represents a rectangular boundary
type BoundingBox struct {
	Min Point // Minimum (top-left) corner
	Max Point // Maximum (bottom-right) corner
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Point{X: math.MaxInt64, Y: math.MaxInt64},
		Max: Point{X: math.MinInt64, Y: math.MinInt64},
	}
}

// Rect creates the bounding box spanned by two corners
func Rect(a, b Point) BoundingBox {
	bb := NewBoundingBox()
	bb.Expand(a)
	bb.Expand(b)
	return bb
}

// IsEmpty checks if the bounding box is empty
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Expand expands the bounding box to include a position
func (bb *BoundingBox) Expand(p Point) {
	if p.X < bb.Min.X {
		bb.Min.X = p.X
	}
	if p.Y < bb.Min.Y {
		bb.Min.Y = p.Y
	}
	if p.X > bb.Max.X {
		bb.Max.X = p.X
	}
	if p.Y > bb.Max.Y {
		bb.Max.Y = p.Y
	}
}

// ExpandBox expands to include another bounding box
func (bb *BoundingBox) ExpandBox(other BoundingBox) {
	if !other.IsEmpty() {
		bb.Expand(other.Min)
		bb.Expand(other.Max)
	}
}

// Inflate returns the box grown by dx on the left and right and by dy on the
// top and bottom
func (bb BoundingBox) Inflate(dx, dy Coord) BoundingBox {
	if bb.IsEmpty() {
		return bb
	}
	return BoundingBox{
		Min: Point{X: bb.Min.X - dx, Y: bb.Min.Y - dy},
		Max: Point{X: bb.Max.X + dx, Y: bb.Max.Y + dy},
	}
}

// Width returns the width of the bounding box
func (bb BoundingBox) Width() Coord {
	if bb.IsEmpty() {
		return 0
	}
	return bb.Max.X - bb.Min.X
}

// Height returns the height of the bounding box
func (bb BoundingBox) Height() Coord {
	if bb.IsEmpty() {
		return 0
	}
	return bb.Max.Y - bb.Min.Y
}

// Center returns the center point of the bounding box
func (bb BoundingBox) Center() Point {
	return Point{
		X: bb.Min.X + (bb.Max.X-bb.Min.X)/2,
		Y: bb.Min.Y + (bb.Max.Y-bb.Min.Y)/2,
	}
}

// Contains checks if a position is within the bounding box
func (bb BoundingBox) Contains(p Point) bool {
	return p.X >= bb.Min.X && p.X <= bb.Max.X &&
		p.Y >= bb.Min.Y && p.Y <= bb.Max.Y
}

func (bb BoundingBox) String() string {
	if bb.IsEmpty() {
		return "(empty)"
	}
	return fmt.Sprintf("%s-%s", bb.Min, bb.Max)
}
