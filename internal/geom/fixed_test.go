package geom

import "testing"

func TestCoordConversions(t *testing.T) {
	if got := CoordFromPixels(3); got != 48 {
		t.Fatalf("expected 3px to encode as 48, got %d", got)
	}
	if got := Coord(48).Pixels(); got != 3 {
		t.Fatalf("expected 48 to decode as 3px, got %d", got)
	}
	if got := Coord(24).Float(); got != 1.5 {
		t.Fatalf("expected 24 to decode as 1.5px, got %g", got)
	}
}

func TestRadiusToCoordDropsSubpixelBits(t *testing.T) {
	cases := []struct {
		radius Radius
		want   Coord
	}{
		{RadiusOne, CoordOne},
		{5 * RadiusOne, 5 * CoordOne},
		{RadiusOne + 15, CoordOne}, // below 1/16px resolution
		{RadiusOne + 16, CoordOne + 1},
	}
	for _, tc := range cases {
		if got := tc.radius.Coord(); got != tc.want {
			t.Fatalf("expected radius %d to convert to %d, got %d", tc.radius, tc.want, got)
		}
	}
}

func TestScalarFromFloatRoundsHalfAway(t *testing.T) {
	cases := []struct {
		in   float64
		want Scalar
	}{
		{0, 0},
		{1, ScalarOne},
		{1.5, 384},
		{-1.5, -384},
		{0.001953125, 1},  // 0.5/256 rounds up
		{-0.001953125, -1},
	}
	for _, tc := range cases {
		if got := ScalarFromFloat(tc.in); got != tc.want {
			t.Fatalf("expected %g to quantize to %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestVecArithmetic(t *testing.T) {
	a := Vec{X: CoordFromPixels(3), Y: CoordFromPixels(4)}
	b := Vec{X: CoordFromPixels(1), Y: CoordFromPixels(-2)}

	sum := a.Add(b)
	if sum.X != CoordFromPixels(4) || sum.Y != CoordFromPixels(2) {
		t.Fatalf("expected sum (4, 2) px, got (%d, %d)", sum.X.Pixels(), sum.Y.Pixels())
	}
	diff := a.Sub(b)
	if diff.X != CoordFromPixels(2) || diff.Y != CoordFromPixels(6) {
		t.Fatalf("expected difference (2, 6) px, got (%d, %d)", diff.X.Pixels(), diff.Y.Pixels())
	}
}
