package geom

import "math/bits"

// Kind tags the shape variants carried by the pack's shape table.
type Kind uint8

const (
	// KindBox is an axis-aligned box: origin (A, B), size (C, D).
	KindBox Kind = iota
	// KindRect is an oriented rectangle: origin (A, B), size (C, D),
	// angle E in Q8.8. The format carries it but no overlap predicate is
	// implemented; it never overlaps anything.
	KindRect
	// KindCircle is a circle: center (A, B), radius C in Q8.8.
	KindCircle
	// KindCapsule is a line segment with radius: endpoints (A, B) and
	// (C, D), radius E in Q8.8.
	KindCapsule
)

// Shape is one decoded entry of the pack's shape table. Field meaning depends
// on Kind; positions and sizes are Q12.4, radii and angles Q8.8.
type Shape struct {
	Kind          Kind
	A, B, C, D, E int32
}

// Box constructs an axis-aligned box shape.
func Box(x, y, w, h Coord) Shape {
	return Shape{Kind: KindBox, A: int32(x), B: int32(y), C: int32(w), D: int32(h)}
}

// Circle constructs a circle shape.
func Circle(x, y Coord, r Radius) Shape {
	return Shape{Kind: KindCircle, A: int32(x), B: int32(y), C: int32(r)}
}

// Capsule constructs a segment-with-radius shape.
func Capsule(x1, y1, x2, y2 Coord, r Radius) Shape {
	return Shape{Kind: KindCapsule, A: int32(x1), B: int32(y1), C: int32(x2), D: int32(y2), E: int32(r)}
}

// Translate returns the shape shifted by the given offset.
func (s Shape) Translate(v Vec) Shape {
	out := s
	out.A += int32(v.X)
	out.B += int32(v.Y)
	if s.Kind == KindCapsule {
		out.C += int32(v.X)
		out.D += int32(v.Y)
	}
	return out
}

// Overlap reports whether two shapes intersect with nonzero area. Shapes that
// merely touch along an edge or at a point do not overlap. Pairs without an
// implemented predicate (anything involving KindRect, and capsule against box
// or circle) never overlap.
func Overlap(a, b Shape) bool {
	switch {
	case a.Kind == KindBox && b.Kind == KindBox:
		return boxBox(a, b)
	case a.Kind == KindCircle && b.Kind == KindCircle:
		return circleCircle(a, b)
	case a.Kind == KindBox && b.Kind == KindCircle:
		return boxCircle(a, b)
	case a.Kind == KindCircle && b.Kind == KindBox:
		return boxCircle(b, a)
	case a.Kind == KindCapsule && b.Kind == KindCapsule:
		return capsuleCapsule(a, b)
	default:
		return false
	}
}

// OverlapAt translates both shapes by their owners' world positions before
// testing. This is the entry point used by hit detection.
func OverlapAt(a Shape, apos Vec, b Shape, bpos Vec) bool {
	return Overlap(a.Translate(apos), b.Translate(bpos))
}

func boxBox(a, b Shape) bool {
	if a.A >= b.A+b.C || b.A >= a.A+a.C {
		return false
	}
	if a.B >= b.B+b.D || b.B >= a.B+a.D {
		return false
	}
	return true
}

func circleCircle(a, b Shape) bool {
	ra := Radius(a.C).Coord()
	rb := Radius(b.C).Coord()
	dx := int64(a.A - b.A)
	dy := int64(a.B - b.B)
	r := int64(ra + rb)
	return dx*dx+dy*dy < r*r
}

func boxCircle(box, circle Shape) bool {
	cx := int64(circle.A)
	cy := int64(circle.B)
	closestX := clampInt64(cx, int64(box.A), int64(box.A+box.C))
	closestY := clampInt64(cy, int64(box.B), int64(box.B+box.D))
	dx := cx - closestX
	dy := cy - closestY
	r := int64(Radius(circle.C).Coord())
	return dx*dx+dy*dy < r*r
}

func capsuleCapsule(a, b Shape) bool {
	r := int64(Radius(a.E).Coord() + Radius(b.E).Coord())
	if r <= 0 {
		// Strict overlap requires positive combined radius.
		return false
	}
	if segmentsIntersect(a.A, a.B, a.C, a.D, b.A, b.B, b.C, b.D) {
		return true
	}
	r2 := r * r
	// Segments do not cross, so the closest approach involves an endpoint.
	return pointSegWithin(a.A, a.B, b, r2) ||
		pointSegWithin(a.C, a.D, b, r2) ||
		pointSegWithin(b.A, b.B, a, r2) ||
		pointSegWithin(b.C, b.D, a, r2)
}

// pointSegWithin reports whether the squared distance from point (px, py) to
// the segment of capsule s is strictly below r2.
func pointSegWithin(px, py int32, s Shape, r2 int64) bool {
	abx := int64(s.C - s.A)
	aby := int64(s.D - s.B)
	apx := int64(px - s.A)
	apy := int64(py - s.B)
	dot := apx*abx + apy*aby
	if dot <= 0 {
		return apx*apx+apy*apy < r2
	}
	len2 := abx*abx + aby*aby
	if dot >= len2 {
		bpx := int64(px - s.C)
		bpy := int64(py - s.D)
		return bpx*bpx+bpy*bpy < r2
	}
	// Interior projection: dist^2 = |ap|^2 - dot^2/len2, compared without
	// division as (|ap|^2 - r2) * len2 < dot^2. The products can exceed 64
	// bits, so compare as 128-bit values.
	ap2 := apx*apx + apy*apy
	if ap2 < r2 {
		return true
	}
	return lessProd(ap2-r2, len2, dot, dot)
}

// lessProd reports a*b < c*d for non-negative operands using 128-bit
// intermediate products.
func lessProd(a, b, c, d int64) bool {
	hi1, lo1 := bits.Mul64(uint64(a), uint64(b))
	hi2, lo2 := bits.Mul64(uint64(c), uint64(d))
	if hi1 != hi2 {
		return hi1 < hi2
	}
	return lo1 < lo2
}

func segmentsIntersect(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int32) bool {
	d1 := cross(bx1, by1, bx2, by2, ax1, ay1)
	d2 := cross(bx1, by1, bx2, by2, ax2, ay2)
	d3 := cross(ax1, ay1, ax2, ay2, bx1, by1)
	d4 := cross(ax1, ay1, ax2, ay2, bx2, by2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(bx1, by1, bx2, by2, ax1, ay1) {
		return true
	}
	if d2 == 0 && onSegment(bx1, by1, bx2, by2, ax2, ay2) {
		return true
	}
	if d3 == 0 && onSegment(ax1, ay1, ax2, ay2, bx1, by1) {
		return true
	}
	if d4 == 0 && onSegment(ax1, ay1, ax2, ay2, bx2, by2) {
		return true
	}
	return false
}

// cross returns the orientation of point (px, py) relative to the directed
// segment (x1, y1) -> (x2, y2).
func cross(x1, y1, x2, y2, px, py int32) int64 {
	return int64(x2-x1)*int64(py-y1) - int64(y2-y1)*int64(px-x1)
}

// onSegment assumes (px, py) is collinear with the segment and reports
// whether it lies within the segment's bounding range.
func onSegment(x1, y1, x2, y2, px, py int32) bool {
	return minInt32(x1, x2) <= px && px <= maxInt32(x1, x2) &&
		minInt32(y1, y2) <= py && py <= maxInt32(y1, y2)
}

func clampInt64(value, min, max int64) int64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func minInt32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
