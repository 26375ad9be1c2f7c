package hit

import (
	"testing"

	"fightstate/runtime/internal/geom"
	"fightstate/runtime/internal/pack"
	"fightstate/runtime/internal/state"
)

type fixtureOpts struct {
	invulnerable bool
	hitWindows   int
}

// buildPack assembles a one-attack character: state 0 idle with a body
// hurtbox, state 1 a punch with a hitbox active on frames 3..4 reaching 24px
// forward.
func buildPack(t *testing.T, opts fixtureOpts) *pack.Pack {
	t.Helper()
	b := pack.NewBuilder()

	bodyFirst, bodyCount := b.AddShapes(
		geom.Box(geom.CoordFromPixels(-8), geom.CoordFromPixels(0), geom.CoordFromPixels(16), geom.CoordFromPixels(32)),
	)
	var flags uint16
	if opts.invulnerable {
		flags |= pack.HurtInvulnerable
	}
	hurtFirst, hurtCount := b.AddHurtWindows(pack.HurtWindow{
		StartF: 0, EndF: 200, Flags: flags,
		ShapeFirst: bodyFirst, ShapeCount: bodyCount,
	})

	b.AddState(pack.StateRecord{
		AnimKey:   pack.NoKey,
		HurtFirst: hurtFirst, HurtCount: hurtCount,
	})

	windows := opts.hitWindows
	if windows == 0 {
		windows = 1
	}
	punchShapeFirst, punchShapeCount := b.AddShapes(
		geom.Box(geom.CoordFromPixels(8), geom.CoordFromPixels(8), geom.CoordFromPixels(16), geom.CoordFromPixels(8)),
	)
	hits := make([]pack.HitWindow, 0, windows)
	for i := 0; i < windows; i++ {
		hits = append(hits, pack.HitWindow{
			StartF: 3, EndF: 4,
			Damage: 50, Chip: 5,
			Hitstun: 12, Blockstun: 8, Hitstop: 4,
			HitPush:    6 * geom.CoordOne,
			BlockPush:  4 * geom.CoordOne,
			ShapeFirst: punchShapeFirst, ShapeCount: punchShapeCount,
		})
	}
	hitFirst, hitCount := b.AddHitWindows(hits...)
	b.AddState(pack.StateRecord{
		AnimKey: pack.NoKey,
		Total:   10,
		HitFirst: hitFirst, HitCount: hitCount,
		HurtFirst: hurtFirst, HurtCount: hurtCount,
	})

	data, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	p, err := pack.Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return &p
}

func TestCheckHitsConnectsOnActiveFrames(t *testing.T) {
	pk := buildPack(t, fixtureOpts{})
	attacker := &state.CharacterState{Current: 1, Frame: 3}
	defender := &state.CharacterState{Current: 0}
	defenderPos := geom.Vec{X: geom.CoordFromPixels(20)}

	results := CheckHits(attacker, pk, geom.Vec{}, defender, pk, defenderPos, nil)
	if len(results) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(results))
	}
	r := results[0]
	if r.Move != 1 || r.Damage != 50 || r.Chip != 5 {
		t.Fatalf("unexpected result %+v", r)
	}
	if r.Hitstun != 12 || r.Blockstun != 8 || r.Hitstop != 4 {
		t.Fatalf("unexpected stun payload %+v", r)
	}
	if r.HitPush != 6*geom.CoordOne || r.BlockPush != 4*geom.CoordOne {
		t.Fatalf("unexpected pushback %+v", r)
	}
}

func TestCheckHitsRespectsFrameWindows(t *testing.T) {
	pk := buildPack(t, fixtureOpts{})
	defender := &state.CharacterState{Current: 0}
	defenderPos := geom.Vec{X: geom.CoordFromPixels(20)}

	for _, frame := range []uint16{0, 2, 5, 9} {
		attacker := &state.CharacterState{Current: 1, Frame: frame}
		results := CheckHits(attacker, pk, geom.Vec{}, defender, pk, defenderPos, nil)
		if len(results) != 0 {
			t.Fatalf("expected no hit on frame %d, got %d", frame, len(results))
		}
	}
}

func TestCheckHitsRespectsRange(t *testing.T) {
	pk := buildPack(t, fixtureOpts{})
	attacker := &state.CharacterState{Current: 1, Frame: 3}
	defender := &state.CharacterState{Current: 0}

	// Hitbox spans x 8..24; the defender body spans defenderX-8..+8. At
	// 32px the leading edges touch exactly and must not connect.
	touching := geom.Vec{X: geom.CoordFromPixels(32)}
	if got := CheckHits(attacker, pk, geom.Vec{}, defender, pk, touching, nil); len(got) != 0 {
		t.Fatalf("expected edge touch to miss, got %d hits", len(got))
	}
	far := geom.Vec{X: geom.CoordFromPixels(60)}
	if got := CheckHits(attacker, pk, geom.Vec{}, defender, pk, far, nil); len(got) != 0 {
		t.Fatalf("expected whiff at range, got %d hits", len(got))
	}
	near := geom.Vec{X: geom.CoordFromPixels(31)}
	if got := CheckHits(attacker, pk, geom.Vec{}, defender, pk, near, nil); len(got) != 1 {
		t.Fatalf("expected hit just inside range, got %d", len(got))
	}
}

func TestCheckHitsSkipsInvulnerableHurtboxes(t *testing.T) {
	attackerPack := buildPack(t, fixtureOpts{})
	defenderPack := buildPack(t, fixtureOpts{invulnerable: true})

	attacker := &state.CharacterState{Current: 1, Frame: 3}
	defender := &state.CharacterState{Current: 0}
	results := CheckHits(attacker, attackerPack, geom.Vec{},
		defender, defenderPack, geom.Vec{X: geom.CoordFromPixels(20)}, nil)
	if len(results) != 0 {
		t.Fatalf("expected invulnerable defender to be unhittable, got %d hits", len(results))
	}
}

func TestCheckHitsCapsResults(t *testing.T) {
	pk := buildPack(t, fixtureOpts{hitWindows: 12})
	attacker := &state.CharacterState{Current: 1, Frame: 3}
	defender := &state.CharacterState{Current: 0}

	buf := make([]Result, 0, MaxResults)
	results := CheckHits(attacker, pk, geom.Vec{}, defender, pk,
		geom.Vec{X: geom.CoordFromPixels(20)}, buf)
	if len(results) != MaxResults {
		t.Fatalf("expected results capped at %d, got %d", MaxResults, len(results))
	}
	if cap(results) != MaxResults {
		t.Fatalf("expected no buffer growth past %d, got cap %d", MaxResults, cap(results))
	}
}

func TestReportConfirmations(t *testing.T) {
	st := &state.CharacterState{}
	ReportHit(st)
	if !st.HitConfirmed {
		t.Fatalf("expected hit confirmation flag")
	}
	if st.BlockConfirmed {
		t.Fatalf("expected block flag untouched")
	}
	ReportBlock(st)
	if !st.BlockConfirmed {
		t.Fatalf("expected block confirmation flag")
	}
	ReportHit(nil)
	ReportBlock(nil)
}
