package geom

import "testing"

func px(v int) Coord {
	return CoordFromPixels(v)
}

func TestBoxBoxOverlap(t *testing.T) {
	a := Box(px(0), px(0), px(10), px(10))

	cases := []struct {
		name string
		b    Shape
		want bool
	}{
		{"contained", Box(px(2), px(2), px(4), px(4)), true},
		{"partial", Box(px(5), px(5), px(10), px(10)), true},
		{"disjoint", Box(px(20), px(0), px(5), px(5)), false},
		{"edge touch right", Box(px(10), px(0), px(5), px(10)), false},
		{"edge touch top", Box(px(0), px(10), px(10), px(5)), false},
		{"corner touch", Box(px(10), px(10), px(5), px(5)), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlap(a, tc.b); got != tc.want {
				t.Fatalf("expected Overlap=%v, got %v", tc.want, got)
			}
			if got := Overlap(tc.b, a); got != tc.want {
				t.Fatalf("expected symmetric Overlap=%v, got %v", tc.want, got)
			}
		})
	}
}

func TestCircleCircleOverlap(t *testing.T) {
	a := Circle(px(0), px(0), 5*RadiusOne)

	cases := []struct {
		name string
		b    Shape
		want bool
	}{
		{"concentric", Circle(px(0), px(0), 2*RadiusOne), true},
		{"close", Circle(px(8), px(0), 5*RadiusOne), true},
		{"tangent", Circle(px(10), px(0), 5*RadiusOne), false},
		{"far", Circle(px(20), px(0), 5*RadiusOne), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlap(a, tc.b); got != tc.want {
				t.Fatalf("expected Overlap=%v, got %v", tc.want, got)
			}
			if got := Overlap(tc.b, a); got != tc.want {
				t.Fatalf("expected symmetric Overlap=%v, got %v", tc.want, got)
			}
		})
	}
}

func TestBoxCircleOverlap(t *testing.T) {
	box := Box(px(0), px(0), px(10), px(10))

	cases := []struct {
		name   string
		circle Shape
		want   bool
	}{
		{"center inside", Circle(px(5), px(5), RadiusOne), true},
		{"overlapping edge", Circle(px(12), px(5), 3*RadiusOne), true},
		{"tangent to edge", Circle(px(13), px(5), 3*RadiusOne), false},
		{"near corner outside", Circle(px(13), px(13), 3*RadiusOne), false},
		{"near corner inside", Circle(px(11), px(11), 3*RadiusOne), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlap(box, tc.circle); got != tc.want {
				t.Fatalf("expected Overlap=%v, got %v", tc.want, got)
			}
			if got := Overlap(tc.circle, box); got != tc.want {
				t.Fatalf("expected symmetric Overlap=%v, got %v", tc.want, got)
			}
		})
	}
}

func TestCapsuleCapsuleOverlap(t *testing.T) {
	horizontal := Capsule(px(0), px(0), px(10), px(0), 2*RadiusOne)

	cases := []struct {
		name string
		b    Shape
		want bool
	}{
		{"crossing", Capsule(px(5), px(-5), px(5), px(5), RadiusOne), true},
		{"parallel close", Capsule(px(0), px(3), px(10), px(3), 2*RadiusOne), true},
		{"parallel tangent", Capsule(px(0), px(4), px(10), px(4), 2*RadiusOne), false},
		{"collinear gap", Capsule(px(20), px(0), px(30), px(0), 2*RadiusOne), false},
		{"endpoint near", Capsule(px(13), px(0), px(20), px(0), 2*RadiusOne), true},
		{"endpoint tangent", Capsule(px(14), px(0), px(20), px(0), 2*RadiusOne), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlap(horizontal, tc.b); got != tc.want {
				t.Fatalf("expected Overlap=%v, got %v", tc.want, got)
			}
			if got := Overlap(tc.b, horizontal); got != tc.want {
				t.Fatalf("expected symmetric Overlap=%v, got %v", tc.want, got)
			}
		})
	}
}

func TestUnsupportedPairsNeverOverlap(t *testing.T) {
	rect := Shape{Kind: KindRect, A: 0, B: 0, C: int32(px(10)), D: int32(px(10))}
	box := Box(px(0), px(0), px(10), px(10))
	circle := Circle(px(5), px(5), 5*RadiusOne)
	capsule := Capsule(px(0), px(5), px(10), px(5), 5*RadiusOne)

	pairs := []struct {
		name string
		a, b Shape
	}{
		{"rect rect", rect, rect},
		{"rect box", rect, box},
		{"rect circle", rect, circle},
		{"capsule box", capsule, box},
		{"capsule circle", capsule, circle},
	}
	for _, tc := range pairs {
		t.Run(tc.name, func(t *testing.T) {
			if Overlap(tc.a, tc.b) {
				t.Fatalf("expected unsupported pair to report no overlap")
			}
			if Overlap(tc.b, tc.a) {
				t.Fatalf("expected unsupported pair to report no overlap when flipped")
			}
		})
	}
}

func TestOverlapAtAppliesPositions(t *testing.T) {
	a := Box(px(0), px(0), px(4), px(4))
	b := Box(px(0), px(0), px(4), px(4))

	if !OverlapAt(a, Vec{}, b, Vec{X: px(2)}) {
		t.Fatalf("expected shifted boxes to overlap")
	}
	if OverlapAt(a, Vec{}, b, Vec{X: px(4)}) {
		t.Fatalf("expected edge-touching boxes to report no overlap")
	}
	if OverlapAt(a, Vec{X: px(100)}, b, Vec{X: px(104)}) {
		t.Fatalf("expected translated edge touch to report no overlap")
	}
}

func TestTranslate(t *testing.T) {
	capsule := Capsule(px(1), px(2), px(3), px(4), RadiusOne)
	moved := capsule.Translate(Vec{X: px(10), Y: px(20)})
	if moved.A != int32(px(11)) || moved.B != int32(px(22)) {
		t.Fatalf("expected first endpoint (11, 22) px, got (%d, %d)", moved.A, moved.B)
	}
	if moved.C != int32(px(13)) || moved.D != int32(px(24)) {
		t.Fatalf("expected second endpoint (13, 24) px, got (%d, %d)", moved.C, moved.D)
	}
	if moved.E != capsule.E {
		t.Fatalf("expected radius unchanged by translation")
	}

	circle := Circle(px(5), px(5), 2*RadiusOne)
	movedCircle := circle.Translate(Vec{X: px(-5), Y: px(-5)})
	if movedCircle.A != 0 || movedCircle.B != 0 {
		t.Fatalf("expected circle center at origin, got (%d, %d)", movedCircle.A, movedCircle.B)
	}
}
