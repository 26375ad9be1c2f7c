package authored

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	"fightstate/runtime/internal/geom"
	"fightstate/runtime/internal/pack"
	"fightstate/runtime/internal/state"
)

// Load decodes an authored character document, rejecting unknown fields so
// typos surface at compile time rather than as silently dropped data.
func Load(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("authored: decode: %w", err)
	}
	return &doc, nil
}

// Compile validates the document and encodes it into a binary pack.
func Compile(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("authored: nil document")
	}
	c := &compiler{doc: doc, stateIDs: make(map[string]uint16), resourceIdx: make(map[string]int)}
	if err := c.resolveNames(); err != nil {
		return nil, err
	}
	return c.compile()
}

type compiler struct {
	doc         *Document
	stateIDs    map[string]uint16
	resourceIdx map[string]int
}

func (c *compiler) resolveNames() error {
	if len(c.doc.States) == 0 {
		return fmt.Errorf("authored: document %q has no states", c.doc.Name)
	}
	for i, st := range c.doc.States {
		if st.Name == "" {
			return fmt.Errorf("authored: state %d has no name", i)
		}
		if _, dup := c.stateIDs[st.Name]; dup {
			return fmt.Errorf("authored: duplicate state name %q", st.Name)
		}
		c.stateIDs[st.Name] = uint16(i)
	}
	if len(c.doc.Resources) > state.MaxResources {
		return fmt.Errorf("authored: %d resources exceeds the %d pool slots",
			len(c.doc.Resources), state.MaxResources)
	}
	for i, r := range c.doc.Resources {
		if r.Name == "" {
			return fmt.Errorf("authored: resource %d has no name", i)
		}
		if _, dup := c.resourceIdx[r.Name]; dup {
			return fmt.Errorf("authored: duplicate resource name %q", r.Name)
		}
		c.resourceIdx[r.Name] = i
	}
	return nil
}

func (c *compiler) compile() ([]byte, error) {
	b := pack.NewBuilder()
	if c.doc.CompactProps {
		b.UseCompactProperties()
	}
	for _, r := range c.doc.Resources {
		b.AddResource(r.Name, r.Start, r.Max)
	}

	for i := range c.doc.States {
		if err := c.compileState(b, &c.doc.States[i]); err != nil {
			return nil, fmt.Errorf("authored: state %q: %w", c.doc.States[i].Name, err)
		}
	}
	for i := range c.doc.States {
		if err := c.attachStateRefs(b, uint16(i), &c.doc.States[i]); err != nil {
			return nil, fmt.Errorf("authored: state %q: %w", c.doc.States[i].Name, err)
		}
	}

	charProps, err := compileProps(c.doc.CharProps)
	if err != nil {
		return nil, fmt.Errorf("authored: char props: %w", err)
	}
	b.SetCharProps(charProps...)

	for i, rule := range c.doc.Rules {
		cond, err := parseCondition(rule.Condition)
		if err != nil {
			return nil, fmt.Errorf("authored: rule %d: %w", i, err)
		}
		b.AddCancelRule(pack.RuleDef{
			Src:       rule.From,
			Dst:       rule.To,
			Condition: cond,
			MinFrame:  uint16(rule.MinFrame),
			MaxFrame:  uint16(rule.MaxFrame),
			Priority:  uint16(rule.Priority),
		})
	}
	for i, deny := range c.doc.Denies {
		from, ok := c.stateIDs[deny.From]
		if !ok {
			return nil, fmt.Errorf("authored: deny %d: unknown state %q", i, deny.From)
		}
		to, err := c.cancelTarget(deny.To)
		if err != nil {
			return nil, fmt.Errorf("authored: deny %d: %w", i, err)
		}
		b.AddDeny(from, to)
	}

	return b.Build()
}

func (c *compiler) compileState(b *pack.Builder, st *State) error {
	rec := pack.StateRecord{
		AnimKey:   pack.NoKey,
		Startup:   uint16(st.Startup),
		Active:    uint16(st.Active),
		Recovery:  uint16(st.Recovery),
		Total:     uint16(st.Total),
		Damage:    uint16(st.Damage),
		Hitstun:   uint16(st.Hitstun),
		Blockstun: uint16(st.Blockstun),
		Hitstop:   uint16(st.Hitstop),
	}
	if st.Total == 0 {
		rec.Total = uint16(st.Startup + st.Active + st.Recovery)
	}
	if st.Anim != "" {
		rec.AnimKey = b.AddAnimKey(st.Anim)
	}
	if st.Mesh != "" {
		b.AddMeshKey(st.Mesh)
	}
	guard, err := parseGuard(st.Guard)
	if err != nil {
		return err
	}
	rec.Guard = guard
	flags, err := parseCancelFlags(st.Cancels)
	if err != nil {
		return err
	}
	rec.Flags = flags

	for _, w := range st.HitWindows {
		if w.Start > w.End {
			return fmt.Errorf("hit window frames %d..%d inverted", w.Start, w.End)
		}
		shapes, err := compileShapes(w.Shapes)
		if err != nil {
			return err
		}
		shapeFirst, shapeCount := b.AddShapes(shapes...)
		windowGuard, err := parseGuard(w.Guard)
		if err != nil {
			return err
		}
		first, count := b.AddHitWindows(pack.HitWindow{
			StartF:     uint16(w.Start),
			EndF:       uint16(w.End),
			Damage:     uint16(w.Damage),
			Chip:       uint16(w.Chip),
			Hitstun:    uint8(w.Hitstun),
			Blockstun:  uint8(w.Blockstun),
			Hitstop:    uint8(w.Hitstop),
			Guard:      windowGuard,
			HitPush:    quantizeCoord(w.HitPush),
			BlockPush:  quantizeCoord(w.BlockPush),
			ShapeFirst: shapeFirst,
			ShapeCount: shapeCount,
		})
		if rec.HitCount == 0 {
			rec.HitFirst = first
		}
		rec.HitCount += count
	}
	hurtFirst, hurtCount, err := compileWindows(b.AddHurtWindows, b, st.HurtWindows)
	if err != nil {
		return err
	}
	rec.HurtFirst, rec.HurtCount = hurtFirst, hurtCount
	pushFirst, pushCount, err := compileWindows(b.AddPushWindows, b, st.PushWindows)
	if err != nil {
		return err
	}
	rec.PushFirst, rec.PushCount = pushFirst, pushCount

	b.AddState(rec)
	return nil
}

func compileWindows(add func(...pack.HurtWindow) (uint16, uint16), b *pack.Builder, ws []Window) (first, count uint16, err error) {
	for i, w := range ws {
		if w.Start > w.End {
			return 0, 0, fmt.Errorf("window %d frames %d..%d inverted", i, w.Start, w.End)
		}
		shapes, err := compileShapes(w.Shapes)
		if err != nil {
			return 0, 0, err
		}
		shapeFirst, shapeCount := b.AddShapes(shapes...)
		var flags uint16
		if w.Invulnerable {
			flags |= pack.HurtInvulnerable
		}
		f, n := add(pack.HurtWindow{
			StartF:     uint16(w.Start),
			EndF:       uint16(w.End),
			Flags:      flags,
			ShapeFirst: shapeFirst,
			ShapeCount: shapeCount,
		})
		if count == 0 {
			first = f
		}
		count += n
	}
	return first, count, nil
}

func (c *compiler) attachStateRefs(b *pack.Builder, id uint16, st *State) error {
	if len(st.Chain) > 0 {
		targets := make([]uint16, 0, len(st.Chain))
		for _, name := range st.Chain {
			target, err := c.cancelTarget(name)
			if err != nil {
				return err
			}
			targets = append(targets, target)
		}
		b.SetChainCancels(id, targets...)
	}
	if len(st.Tags) > 0 {
		b.SetTags(id, st.Tags...)
	}
	if st.Notation != "" {
		b.SetNotation(id, st.Notation)
	}

	if len(st.Costs) > 0 {
		costs := make([]pack.Cost, 0, len(st.Costs))
		for _, cost := range st.Costs {
			idx, ok := c.resourceIdx[cost.Resource]
			if !ok {
				return fmt.Errorf("unknown resource %q", cost.Resource)
			}
			costs = append(costs, pack.Cost{Index: uint16(idx), Amount: cost.Amount})
		}
		b.SetCosts(id, costs...)
	}
	if len(st.Preconditions) > 0 {
		preconds := make([]pack.Precondition, 0, len(st.Preconditions))
		for _, pre := range st.Preconditions {
			idx, ok := c.resourceIdx[pre.Resource]
			if !ok {
				return fmt.Errorf("unknown resource %q", pre.Resource)
			}
			max := pre.Max
			if max == 0 {
				max = math.MaxInt32
			}
			preconds = append(preconds, pack.Precondition{Index: uint16(idx), Min: pre.Min, Max: max})
		}
		b.SetPreconditions(id, preconds...)
	}
	if len(st.Deltas) > 0 {
		deltas := make([]pack.Delta, 0, len(st.Deltas))
		for _, d := range st.Deltas {
			idx, ok := c.resourceIdx[d.Resource]
			if !ok {
				return fmt.Errorf("unknown resource %q", d.Resource)
			}
			trigger, err := parseTrigger(d.Trigger)
			if err != nil {
				return err
			}
			deltas = append(deltas, pack.Delta{Index: uint16(idx), Trigger: trigger, Amount: d.Amount})
		}
		b.SetDeltas(id, deltas...)
	}
	if len(st.Notifies) > 0 {
		notifies := make([]pack.Notify, 0, len(st.Notifies))
		for _, n := range st.Notifies {
			notifies = append(notifies, pack.Notify{
				Frame: uint16(n.Frame),
				Kind:  uint16(n.Kind),
				Param: geom.ScalarFromFloat(n.Param),
			})
		}
		b.SetNotifies(id, notifies...)
	}
	if len(st.Emissions) > 0 {
		emissions := make([]pack.EmissionDef, 0, len(st.Emissions))
		for _, e := range st.Emissions {
			def := pack.EmissionDef{Frame: uint16(e.Frame), Name: e.Name}
			// Sort argument keys so compiled bytes are reproducible.
			keys := make([]string, 0, len(e.Args))
			for k := range e.Args {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				def.Args = append(def.Args, [2]string{k, e.Args[k]})
			}
			emissions = append(emissions, def)
		}
		b.SetEmissions(id, emissions...)
	}
	if len(st.Props) > 0 {
		props, err := compileProps(st.Props)
		if err != nil {
			return err
		}
		b.SetStateProps(id, props...)
	}
	return nil
}

// cancelTarget resolves a state name or one of the virtual action names
// (chain, special, super, jump) offset past the state table.
func (c *compiler) cancelTarget(name string) (uint16, error) {
	if id, ok := c.stateIDs[name]; ok {
		return id, nil
	}
	base := uint16(len(c.doc.States))
	switch name {
	case "chain":
		return base + pack.ActionChain, nil
	case "special":
		return base + pack.ActionSpecial, nil
	case "super":
		return base + pack.ActionSuper, nil
	case "jump":
		return base + pack.ActionJump, nil
	}
	return 0, fmt.Errorf("unknown cancel target %q", name)
}

func compileProps(props []Prop) ([]pack.PropDef, error) {
	out := make([]pack.PropDef, 0, len(props))
	for _, p := range props {
		switch p.Kind {
		case "number":
			out = append(out, pack.NumberProp(p.Key, geom.ScalarFromFloat(p.Number)))
		case "bool":
			out = append(out, pack.BoolProp(p.Key, p.Bool))
		case "string":
			out = append(out, pack.StringProp(p.Key, p.String))
		default:
			return nil, fmt.Errorf("property %q has unknown kind %q", p.Key, p.Kind)
		}
	}
	return out, nil
}

func compileShapes(shapes []Shape) ([]geom.Shape, error) {
	if len(shapes) == 0 {
		return nil, fmt.Errorf("window has no shapes")
	}
	out := make([]geom.Shape, 0, len(shapes))
	for _, s := range shapes {
		switch s.Kind {
		case "box":
			if s.W <= 0 || s.H <= 0 {
				return nil, fmt.Errorf("box %gx%g has non-positive extent", s.W, s.H)
			}
			out = append(out, geom.Box(
				quantizeCoord(s.X), quantizeCoord(s.Y),
				quantizeCoord(s.W), quantizeCoord(s.H)))
		case "circle":
			if s.R <= 0 {
				return nil, fmt.Errorf("circle radius %g is non-positive", s.R)
			}
			out = append(out, geom.Circle(
				quantizeCoord(s.X), quantizeCoord(s.Y), quantizeRadius(s.R)))
		case "capsule":
			if s.R <= 0 {
				return nil, fmt.Errorf("capsule radius %g is non-positive", s.R)
			}
			out = append(out, geom.Capsule(
				quantizeCoord(s.X), quantizeCoord(s.Y),
				quantizeCoord(s.X2), quantizeCoord(s.Y2),
				quantizeRadius(s.R)))
		default:
			return nil, fmt.Errorf("unknown shape kind %q", s.Kind)
		}
	}
	return out, nil
}

// quantizeCoord rounds an authored pixel value to Q12.4.
func quantizeCoord(v float64) geom.Coord {
	return geom.Coord(math.Round(v * 16))
}

// quantizeRadius rounds an authored pixel radius to Q8.8.
func quantizeRadius(v float64) geom.Radius {
	return geom.Radius(math.Round(v * 256))
}

func parseGuard(s string) (uint8, error) {
	switch s {
	case "", "mid":
		return pack.GuardMid, nil
	case "high":
		return pack.GuardHigh, nil
	case "low":
		return pack.GuardLow, nil
	case "unblockable":
		return pack.GuardUnblockable, nil
	}
	return 0, fmt.Errorf("unknown guard level %q", s)
}

func parseCondition(s string) (uint8, error) {
	switch s {
	case "", "always":
		return pack.CondAlways, nil
	case "on_hit":
		return pack.CondOnHit, nil
	case "on_block":
		return pack.CondOnBlock, nil
	case "on_whiff":
		return pack.CondOnWhiff, nil
	}
	return 0, fmt.Errorf("unknown condition %q", s)
}

func parseTrigger(s string) (uint16, error) {
	switch s {
	case "", "enter":
		return 0, nil
	case "hit":
		return 1, nil
	case "block":
		return 2, nil
	}
	return 0, fmt.Errorf("unknown delta trigger %q", s)
}

func parseCancelFlags(cancels []string) (uint8, error) {
	var flags uint8
	for _, name := range cancels {
		switch name {
		case "chain":
			flags |= pack.FlagChainCancel
		case "special":
			flags |= pack.FlagSpecialCancel
		case "super":
			flags |= pack.FlagSuperCancel
		case "jump":
			flags |= pack.FlagJumpCancel
		default:
			return 0, fmt.Errorf("unknown cancel flag %q", name)
		}
	}
	return flags, nil
}
