// Package geometry converts analysis-space polygons into page-space
// rectangles.
//
// Analysis results describe regions as polygons whose coordinates use a
// top-left origin with the Y axis growing downward, measured either in
// inches or as fractions of the page size. PDF page space uses a
// bottom-left origin with the Y axis growing upward, measured in points.
// [ToPageRect] bridges the two: it scales the polygon into points, folds
// it into an axis-aligned bounding rectangle, and flips the Y axis.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// PointsPerInch is the scale factor between inch-based analysis
// coordinates and PDF page space.
const PointsPerInch = 72.0

// ErrInvalidGeometry is returned when a polygon cannot be converted to a
// page-space rectangle. Callers are expected to skip the offending entity
// and continue.
var ErrInvalidGeometry = errors.New("pdfmark: invalid polygon geometry")

// Unit identifies the coordinate convention of analysis-space polygons.
type Unit int

const (
	// UnitAuto selects the convention from the data: coordinates that all
	// fit inside the unit square are treated as normalized fractions,
	// anything larger as inches.
	UnitAuto Unit = iota

	// UnitInch treats coordinates as inches (scaled by PointsPerInch).
	UnitInch

	// UnitNormalized treats coordinates as fractions of the page size.
	UnitNormalized
)

func (u Unit) String() string {
	switch u {
	case UnitInch:
		return "inch"
	case UnitNormalized:
		return "normalized"
	default:
		return "auto"
	}
}

// Polygon is a flattened sequence of coordinates: x0, y0, x1, y1, ...
// in analysis space.
type Polygon []float64

// PointCount returns the number of (x, y) points in the polygon.
func (p Polygon) PointCount() int {
	return len(p) / 2
}

// PageSpace holds the dimensions of one page in points.
type PageSpace struct {
	Width  float64
	Height float64
}

// Rect is an axis-aligned rectangle in PDF page space (bottom-left
// origin, points).
type Rect struct {
	X      float64 // Left
	Y      float64 // Bottom
	Width  float64
	Height float64
}

// Left returns the left edge X coordinate.
func (r Rect) Left() float64 {
	return r.X
}

// Right returns the right edge X coordinate.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the bottom edge Y coordinate.
func (r Rect) Bottom() float64 {
	return r.Y
}

// Top returns the top edge Y coordinate.
func (r Rect) Top() float64 {
	return r.Y + r.Height
}

// IsValid returns true if the rectangle has positive dimensions.
func (r Rect) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// ToPageRect converts an analysis-space polygon into its axis-aligned
// bounding rectangle in page space. Rotated polygons are bounded, not
// rotated-rendered. The result is clamped to the page.
//
// ToPageRect fails with an error wrapping [ErrInvalidGeometry] when the
// polygon has fewer than 3 points, has an odd number of coordinates, or
// contains a non-finite coordinate.
func ToPageRect(p Polygon, space PageSpace, unit Unit) (Rect, error) {
	if len(p)%2 != 0 {
		return Rect{}, fmt.Errorf("%w: odd coordinate count %d", ErrInvalidGeometry, len(p))
	}
	if p.PointCount() < 3 {
		return Rect{}, fmt.Errorf("%w: %d points, need at least 3", ErrInvalidGeometry, p.PointCount())
	}
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Rect{}, fmt.Errorf("%w: non-finite coordinate", ErrInvalidGeometry)
		}
	}

	if unit == UnitAuto {
		unit = detect(p)
	}
	scaleX, scaleY := PointsPerInch, PointsPerInch
	if unit == UnitNormalized {
		scaleX, scaleY = space.Width, space.Height
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i+1 < len(p); i += 2 {
		x := p[i] * scaleX
		y := p[i+1] * scaleY
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}

	// Flip from top-left analysis space into bottom-left page space.
	rect := Rect{
		X:      minX,
		Y:      space.Height - maxY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
	return rect.clamp(space), nil
}

// clamp restricts the rectangle to the page boundaries.
func (r Rect) clamp(space PageSpace) Rect {
	left := math.Max(r.Left(), 0)
	bottom := math.Max(r.Bottom(), 0)
	right := math.Min(r.Right(), space.Width)
	top := math.Min(r.Top(), space.Height)
	if right < left {
		right = left
	}
	if top < bottom {
		top = bottom
	}
	return Rect{X: left, Y: bottom, Width: right - left, Height: top - bottom}
}

// DetectUnit applies the documented unit fallback to a whole set of
// polygons: if every coordinate fits inside the unit square, the data is
// treated as normalized fractions; otherwise as inches. Scanning the whole
// document at once avoids per-entity flapping on small inch-space polygons
// near the origin.
func DetectUnit(polys []Polygon) Unit {
	seen := false
	for _, p := range polys {
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			seen = true
			if v > 1 {
				return UnitInch
			}
		}
	}
	if !seen {
		return UnitInch
	}
	return UnitNormalized
}

func detect(p Polygon) Unit {
	return DetectUnit([]Polygon{p})
}
