package selection

import "fmt"

// Point is a position in global screen coordinates.
type Point struct {
	X int
	Y int
}

// Rect is a screen rectangle in global coordinates. Width and height may be
// negative while a drag is in flight; call Normalize before using the value
// as a capture region.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Bounds returns the normalized bounding box of two corner points.
func Bounds(a, b Point) Rect {
	return Rect{X: a.X, Y: a.Y, Width: b.X - a.X, Height: b.Y - a.Y}.Normalize()
}

// Normalize returns the rectangle with its origin at the minimum corner and
// non-negative width and height.
func (r Rect) Normalize() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Empty reports whether the rectangle has no capturable area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Label renders the dimensions as the WxH string shown above the live
// selection overlay.
func (r Rect) Label() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d) %dx%d", r.X, r.Y, r.Width, r.Height)
}
