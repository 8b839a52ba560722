// Package geom provides the 2D primitives shared by the page model and the
// extraction engine. Coordinates follow the renderer's convention: the origin
// is the top-left corner of the page and Y increases downward, in points.
package geom

import "image"

// Point is a 2D point in page space.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. X0,Y0 is the top-left corner and
// X1,Y1 the bottom-right corner.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// NewRect creates a rectangle, normalizing flipped corners.
func NewRect(x0, y0, x1, y1 float64) Rect {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// CenterX returns the horizontal center.
func (r Rect) CenterX() float64 {
	return (r.X0 + r.X1) / 2
}

// CenterY returns the vertical center.
func (r Rect) CenterY() float64 {
	return (r.Y0 + r.Y1) / 2
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Contains reports whether other lies entirely inside r.
func (r Rect) Contains(other Rect) bool {
	return other.X0 >= r.X0 && other.X1 <= r.X1 &&
		other.Y0 >= r.Y0 && other.Y1 <= r.Y1
}

// Intersects reports whether the two rectangles overlap.
func (r Rect) Intersects(other Rect) bool {
	return !(r.X1 <= other.X0 || r.X0 >= other.X1 ||
		r.Y1 <= other.Y0 || r.Y0 >= other.Y1)
}

// Intersect returns the overlapping area of the two rectangles, which may
// be empty.
func (r Rect) Intersect(other Rect) Rect {
	out := Rect{
		X0: max(r.X0, other.X0),
		Y0: max(r.Y0, other.Y0),
		X1: min(r.X1, other.X1),
		Y1: min(r.Y1, other.Y1),
	}
	if out.IsEmpty() {
		return Rect{}
	}
	return out
}

// Union returns the smallest rectangle covering both inputs.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return Rect{
		X0: min(r.X0, other.X0),
		Y0: min(r.Y0, other.Y0),
		X1: max(r.X1, other.X1),
		Y1: max(r.Y1, other.Y1),
	}
}

// Pixels maps the rectangle from page points into raster pixel space at the
// given zoom factor, rounding outward so no content pixel is lost.
func (r Rect) Pixels(zoom float64) image.Rectangle {
	return image.Rect(
		int(r.X0*zoom),
		int(r.Y0*zoom),
		int(r.X1*zoom+0.5),
		int(r.Y1*zoom+0.5),
	)
}
