package authored

import (
	"strings"
	"testing"

	"fightstate/runtime/internal/cancel"
	"fightstate/runtime/internal/geom"
	"fightstate/runtime/internal/pack"
	"fightstate/runtime/internal/state"
)

const characterJSON = `{
	"name": "brawler",
	"version": 2,
	"resources": [
		{"name": "meter", "start": 0, "max": 100}
	],
	"charProps": [
		{"key": "walk_speed", "kind": "number", "number": 2.5}
	],
	"states": [
		{
			"name": "idle",
			"cancels": ["jump"],
			"tags": ["idle"],
			"chain": ["jab"],
			"hurtWindows": [
				{"start": 0, "end": 400, "shapes": [
					{"kind": "box", "x": -8, "y": 0, "w": 16, "h": 32}
				]}
			]
		},
		{
			"name": "jab",
			"anim": "jab_swing",
			"startup": 3,
			"active": 2,
			"recovery": 7,
			"tags": ["normal"],
			"notation": "5LP",
			"costs": [{"resource": "meter", "amount": 10}],
			"preconditions": [{"resource": "meter", "min": 10}],
			"deltas": [{"resource": "meter", "trigger": "hit", "amount": 5}],
			"hitWindows": [
				{
					"start": 3, "end": 4,
					"damage": 50, "chip": 5,
					"hitstun": 12, "blockstun": 8, "hitstop": 4,
					"guard": "high",
					"hitPush": 6, "blockPush": -8.5,
					"shapes": [
						{"kind": "circle", "x": 16, "y": 12, "r": 6}
					]
				}
			],
			"chain": ["special"]
		}
	],
	"rules": [
		{"from": "normal", "to": "idle", "condition": "on_whiff", "minFrame": 8}
	],
	"denies": [
		{"from": "jab", "to": "idle"}
	]
}`

func compileFixture(t *testing.T) *pack.Pack {
	t.Helper()
	doc, err := Load(strings.NewReader(characterJSON))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	data, err := Compile(doc)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	p, err := pack.Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return &p
}

func TestCompileResolvesStatesAndWindows(t *testing.T) {
	pk := compileFixture(t)
	if pk.StateCount() != 2 {
		t.Fatalf("expected 2 states, got %d", pk.StateCount())
	}

	idle, _ := pk.State(0)
	if idle.Flags&pack.FlagJumpCancel == 0 {
		t.Fatalf("expected jump cancel flag on idle")
	}
	if idle.HurtCount != 1 {
		t.Fatalf("expected 1 hurt window, got %d", idle.HurtCount)
	}
	if idle.AnimKey != pack.NoKey {
		t.Fatalf("expected no anim key on idle, got %d", idle.AnimKey)
	}

	jab, _ := pk.State(1)
	if jab.Total != 12 {
		t.Fatalf("expected total defaulted to 3+2+7=12, got %d", jab.Total)
	}
	if jab.AnimKey == pack.NoKey {
		t.Fatalf("expected jab to carry an anim key")
	}
	anim, ok := pk.AnimKey(int(jab.AnimKey))
	if !ok || string(anim) != "jab_swing" {
		t.Fatalf("expected anim key jab_swing, got %q", anim)
	}

	hw, ok := pk.HitWindow(int(jab.HitFirst))
	if !ok {
		t.Fatalf("expected jab hit window")
	}
	if hw.StartF != 3 || hw.EndF != 4 || hw.Damage != 50 || hw.Guard != pack.GuardHigh {
		t.Fatalf("unexpected hit window %+v", hw)
	}
	// Pixel floats quantize to Q12.4: 6px -> 96, -8.5px -> -136.
	if hw.HitPush != geom.Coord(96) || hw.BlockPush != geom.Coord(-136) {
		t.Fatalf("unexpected pushback %d/%d", hw.HitPush, hw.BlockPush)
	}
	shape, ok := pk.Shape(int(hw.ShapeFirst))
	if !ok || shape.Kind != geom.KindCircle {
		t.Fatalf("expected circle hitbox, got %+v", shape)
	}
	if shape.C != 6*256 {
		t.Fatalf("expected radius quantized to Q8.8, got %d", shape.C)
	}

	if notation, ok := pk.Notation(1); !ok || string(notation) != "5LP" {
		t.Fatalf("expected notation 5LP, got %q", notation)
	}
}

func TestCompileResolvesChainAndVirtualTargets(t *testing.T) {
	pk := compileFixture(t)

	idleExtras, ok := pk.Extras(0)
	if !ok || idleExtras.ChainCount != 1 {
		t.Fatalf("expected idle to carry 1 chain target, got %+v", idleExtras)
	}
	target, ok := pk.CancelTarget(int(idleExtras.ChainFirst))
	if !ok || target != 1 {
		t.Fatalf("expected idle to chain into jab, got %d", target)
	}

	jabExtras, ok := pk.Extras(1)
	if !ok || jabExtras.ChainCount != 1 {
		t.Fatalf("expected jab to carry 1 chain target, got %+v", jabExtras)
	}
	target, ok = pk.CancelTarget(int(jabExtras.ChainFirst))
	if !ok || target != uint16(pk.StateCount())+pack.ActionSpecial {
		t.Fatalf("expected jab chain to resolve the special action, got %d", target)
	}
}

func TestCompileResolvesResourceRefs(t *testing.T) {
	pk := compileFixture(t)

	extras, ok := pk.Extras(1)
	if !ok {
		t.Fatalf("expected jab extras")
	}
	cost, ok := pk.Cost(int(extras.CostFirst))
	if !ok || cost.Index != 0 || cost.Amount != 10 {
		t.Fatalf("unexpected cost %+v", cost)
	}
	pre, ok := pk.Precondition(int(extras.PrecondFirst))
	if !ok || pre.Min != 10 {
		t.Fatalf("unexpected precondition %+v", pre)
	}
	// A zero authored max means unbounded.
	if pre.Max != 1<<31-1 {
		t.Fatalf("expected unbounded max, got %d", pre.Max)
	}

	var st state.CharacterState
	st.Resources[0] = 9
	if cancel.CanCancelTo(&st, pk, 1) {
		t.Fatalf("expected 9 meter to fail the jab precondition")
	}
	st.Resources[0] = 10
	if !cancel.CanCancelTo(&st, pk, 1) {
		t.Fatalf("expected 10 meter to pass the jab precondition")
	}
}

func TestCompileRulesAndDenies(t *testing.T) {
	pk := compileFixture(t)
	if pk.CancelRuleCount() != 1 {
		t.Fatalf("expected 1 rule, got %d", pk.CancelRuleCount())
	}
	rule, _ := pk.CancelRule(0)
	if rule.Condition != pack.CondOnWhiff || rule.MinFrame != 8 {
		t.Fatalf("unexpected rule %+v", rule)
	}
	if !pk.Denied(1, 0) {
		t.Fatalf("expected jab->idle deny")
	}
	// The deny gates the whiff rule.
	st := &state.CharacterState{Current: 1, Frame: 9}
	if cancel.CanCancelTo(st, pk, 0) {
		t.Fatalf("expected deny to block the whiff rule")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader(`{"name": "x", "bogus": 1, "states": []}`))
	if err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
}

func TestCompileRejectsBadDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  Document
	}{
		{"no states", Document{Name: "x"}},
		{"duplicate state", Document{Name: "x", States: []State{{Name: "a"}, {Name: "a"}}}},
		{"unknown chain target", Document{Name: "x", States: []State{{Name: "a", Chain: []string{"nope"}}}}},
		{"unknown resource", Document{Name: "x", States: []State{
			{Name: "a", Costs: []CostRef{{Resource: "mana", Amount: 1}}},
		}}},
		{"unknown guard", Document{Name: "x", States: []State{{Name: "a", Guard: "sideways"}}}},
		{"inverted hit window", Document{Name: "x", States: []State{
			{Name: "a", HitWindows: []HitWindow{{Start: 5, End: 2, Shapes: []Shape{{Kind: "box", W: 1, H: 1}}}}},
		}}},
		{"zero-extent box", Document{Name: "x", States: []State{
			{Name: "a", HitWindows: []HitWindow{{Start: 0, End: 1, Shapes: []Shape{{Kind: "box"}}}}},
		}}},
		{"too many resources", Document{Name: "x",
			Resources: make([]Resource, state.MaxResources+1),
			States:    []State{{Name: "a"}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := tc.doc
			for i := range doc.Resources {
				doc.Resources[i].Name = strings.Repeat("r", i+1)
			}
			if _, err := Compile(&doc); err == nil {
				t.Fatalf("expected compile error")
			}
		})
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	doc, err := Load(strings.NewReader(characterJSON))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Emission args decode into a map; sorting on compile keeps bytes stable.
	doc.States[1].Emissions = []Emission{{
		Frame: 3, Name: "sfx.swing",
		Args: map[string]string{"volume": "0.8", "pan": "left", "bus": "sfx"},
	}}
	first, err := Compile(doc)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for i := 0; i < 8; i++ {
		again, err := Compile(doc)
		if err != nil {
			t.Fatalf("recompile: %v", err)
		}
		if string(again) != string(first) {
			t.Fatalf("expected identical bytes on recompile %d", i)
		}
	}
}
