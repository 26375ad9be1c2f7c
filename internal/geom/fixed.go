// Package geom provides the fixed-point types and overlap predicates used by
// hit detection. All arithmetic is integer-only so results are identical on
// every platform.
package geom

// Coord is a Q12.4 fixed-point coordinate or size: 4 fractional bits,
// 1/16-pixel precision.
type Coord int32

// CoordOne is one pixel expressed as a Coord.
const CoordOne Coord = 1 << 4

// CoordFromPixels converts a whole pixel count to a Coord.
func CoordFromPixels(px int) Coord {
	return Coord(px) << 4
}

// Pixels truncates a Coord to whole pixels.
func (c Coord) Pixels() int {
	return int(c >> 4)
}

// Float converts a Coord to a float64 pixel value. Display-only; the
// simulation never branches on float results.
func (c Coord) Float() float64 {
	return float64(c) / 16
}

// Radius is a Q8.8 fixed-point radius or angle: 8 fractional bits.
type Radius int32

// RadiusOne is one pixel expressed as a Radius.
const RadiusOne Radius = 1 << 8

// Coord converts a Radius to the Q12.4 coordinate domain. Precision below
// 1/16 pixel is dropped, matching the on-disk geometry resolution.
func (r Radius) Coord() Coord {
	return Coord(r >> 4)
}

// Scalar is a Q24.8 fixed-point number used by dynamic property values.
type Scalar int32

// ScalarOne is 1.0 expressed as a Scalar.
const ScalarOne Scalar = 1 << 8

// ScalarFromFloat quantizes an authored float to Q24.8. Only the export
// adapter calls this; the runtime never converts floats.
func ScalarFromFloat(f float64) Scalar {
	if f >= 0 {
		return Scalar(f*256 + 0.5)
	}
	return Scalar(f*256 - 0.5)
}

// Float converts a Scalar back to float64 for display.
func (s Scalar) Float() float64 {
	return float64(s) / 256
}

// Vec is a fixed-point position offset.
type Vec struct {
	X Coord `json:"x"`
	Y Coord `json:"y"`
}

// Add returns the component-wise sum of two vectors.
func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns the component-wise difference of two vectors.
func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y}
}
