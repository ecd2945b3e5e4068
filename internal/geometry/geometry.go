// Package geometry holds the integer value types used to describe window and
// output placement.
package geometry

import "fmt"

// Point is a position in compositor coordinates
type Point struct {
	X int32
	Y int32
}

// Size is a width/height pair
type Size struct {
	Width  int32
	Height int32
}

// Displacement is the difference between two points
type Displacement struct {
	DX int32
	DY int32
}

// Rectangle is an axis-aligned area
type Rectangle struct {
	TopLeft Point
	Size    Size
}

// Add moves a point by a displacement
func (p Point) Add(d Displacement) Point {
	return Point{X: p.X + d.DX, Y: p.Y + d.DY}
}

// Sub returns the displacement from q to p
func (p Point) Sub(q Point) Displacement {
	return Displacement{DX: p.X - q.X, DY: p.Y - q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Left returns the x coordinate of the left edge
func (r Rectangle) Left() int32 { return r.TopLeft.X }

// Right returns the x coordinate one past the right edge
func (r Rectangle) Right() int32 { return r.TopLeft.X + r.Size.Width }

// Top returns the y coordinate of the top edge
func (r Rectangle) Top() int32 { return r.TopLeft.Y }

// Bottom returns the y coordinate one past the bottom edge
func (r Rectangle) Bottom() int32 { return r.TopLeft.Y + r.Size.Height }

// Contains reports whether p lies inside r
func (r Rectangle) Contains(p Point) bool {
	return p.X >= r.Left() && p.X < r.Right() && p.Y >= r.Top() && p.Y < r.Bottom()
}

func (r Rectangle) String() string {
	return fmt.Sprintf("%s@%s", r.Size, r.TopLeft)
}
