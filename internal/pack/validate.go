package pack

import "fmt"

// validate walks every cross-reference in the parsed sections. A pack that
// passes validation can be accessed for the rest of the session without any
// accessor failing on well-formed indices.
func (p *Pack) validate() error {
	states := p.StateCount()
	hits := p.HitWindowCount()
	hurts := p.HurtWindowCount()
	pushes := p.PushWindowCount()
	shapes := p.ShapeCount()
	targets := p.CancelTargetCount()
	animKeys := p.AnimKeyCount()

	if err := p.validateRefArray(SectionMeshKeys, "mesh key"); err != nil {
		return err
	}
	if err := p.validateRefArray(SectionAnimKeys, "anim key"); err != nil {
		return err
	}
	if err := p.validateRefArray(SectionTagStrings, "tag string"); err != nil {
		return err
	}

	for i := 0; i < states; i++ {
		rec, _ := p.State(i)
		if int(rec.ID) != i {
			return fmt.Errorf("state %d: id %d: %w", i, rec.ID, ErrOutOfBounds)
		}
		if rec.AnimKey != NoKey && int(rec.AnimKey) >= animKeys {
			return fmt.Errorf("state %d: anim key %d: %w", i, rec.AnimKey, ErrOutOfBounds)
		}
		if err := checkRange("state hit windows", i, uint32(rec.HitFirst), uint32(rec.HitCount), hits); err != nil {
			return err
		}
		if err := checkRange("state hurt windows", i, uint32(rec.HurtFirst), uint32(rec.HurtCount), hurts); err != nil {
			return err
		}
		if err := checkRange("state push windows", i, uint32(rec.PushFirst), uint32(rec.PushCount), pushes); err != nil {
			return err
		}
	}

	for i := 0; i < hits; i++ {
		w, _ := p.HitWindow(i)
		if err := checkRange("hit window shapes", i, uint32(w.ShapeFirst), uint32(w.ShapeCount), shapes); err != nil {
			return err
		}
		if err := checkRange("hit window cancels", i, uint32(w.CancelFirst), uint32(w.CancelCount), targets); err != nil {
			return err
		}
	}
	for i := 0; i < hurts; i++ {
		w, _ := p.HurtWindow(i)
		if err := checkRange("hurt window shapes", i, uint32(w.ShapeFirst), uint32(w.ShapeCount), shapes); err != nil {
			return err
		}
	}
	for i := 0; i < pushes; i++ {
		w, _ := p.PushWindow(i)
		if err := checkRange("push window shapes", i, uint32(w.ShapeFirst), uint32(w.ShapeCount), shapes); err != nil {
			return err
		}
	}

	for i := 0; i < targets; i++ {
		id, _ := p.CancelTarget(i)
		if int(id) >= states+ActionCount {
			return fmt.Errorf("cancel target %d: state %d: %w", i, id, ErrOutOfBounds)
		}
	}

	defs := p.ResourceDefCount()
	if defs > maxResourceSlots {
		return fmt.Errorf("resource defs: %d slots: %w", defs, ErrOutOfBounds)
	}
	for i := 0; i < defs; i++ {
		def, _ := p.ResourceDef(i)
		if _, ok := p.String(uint32(def.NameOff), uint32(def.NameLen)); !ok {
			return fmt.Errorf("resource def %d: name: %w", i, ErrOutOfBounds)
		}
	}

	if err := p.validateExtras(states); err != nil {
		return err
	}
	if err := p.validatePerStateTags(states); err != nil {
		return err
	}
	if err := p.validateEvents(); err != nil {
		return err
	}
	if err := p.validateResourceRecords(); err != nil {
		return err
	}
	if err := p.validateCancelRules(states); err != nil {
		return err
	}
	if err := p.validateProps(); err != nil {
		return err
	}
	return nil
}

// maxResourceSlots mirrors state.MaxResources without importing it; the pack
// package sits below the state package.
const maxResourceSlots = 8

func (p *Pack) validateRefArray(kind int, what string) error {
	count := p.sectionCount(kind, stringRefSize)
	for i := 0; i < count; i++ {
		b, _ := p.record(kind, stringRefSize, i)
		ref := decodeStringRef(b)
		if _, ok := p.String(uint32(ref.Off), uint32(ref.Len)); !ok {
			return fmt.Errorf("%s %d: %w", what, i, ErrOutOfBounds)
		}
	}
	return nil
}

func (p *Pack) validateExtras(states int) error {
	count := p.sectionCount(SectionStateExtras, extrasRecordSize)
	if count == 0 {
		return nil
	}
	if count != states {
		return fmt.Errorf("extras: %d records for %d states: %w", count, states, ErrOutOfBounds)
	}
	emits := p.sectionCount(SectionEmissions, emissionSize)
	notifies := p.sectionCount(SectionNotifies, notifySize)
	costs := p.sectionCount(SectionCosts, costSize)
	preconds := p.sectionCount(SectionPreconditions, preconditionSize)
	deltas := p.sectionCount(SectionDeltas, deltaSize)
	targets := p.CancelTargetCount()
	props := p.StatePropCount()
	for i := 0; i < count; i++ {
		x, _ := p.Extras(uint16(i))
		if int(x.StateID) != i {
			return fmt.Errorf("extras %d: state id %d: %w", i, x.StateID, ErrOutOfBounds)
		}
		if err := checkRange("extras emissions", i, x.EmitFirst, x.EmitCount, emits); err != nil {
			return err
		}
		if err := checkRange("extras notifies", i, x.NotifyFirst, x.NotifyCount, notifies); err != nil {
			return err
		}
		if err := checkRange("extras costs", i, x.CostFirst, x.CostCount, costs); err != nil {
			return err
		}
		if err := checkRange("extras preconditions", i, x.PrecondFirst, x.PrecondCount, preconds); err != nil {
			return err
		}
		if err := checkRange("extras deltas", i, x.DeltaFirst, x.DeltaCount, deltas); err != nil {
			return err
		}
		if err := checkRange("extras chain cancels", i, x.ChainFirst, x.ChainCount, targets); err != nil {
			return err
		}
		if err := checkRange("extras properties", i, x.PropFirst, x.PropCount, props); err != nil {
			return err
		}
		if _, ok := p.String(x.NotationOff, x.NotationLen); !ok {
			return fmt.Errorf("extras %d: notation: %w", i, ErrOutOfBounds)
		}
	}
	return nil
}

func (p *Pack) validatePerStateTags(states int) error {
	count := p.sectionCount(SectionTagRanges, tagRangeSize)
	if count == 0 {
		return nil
	}
	if count != states {
		return fmt.Errorf("tag ranges: %d records for %d states: %w", count, states, ErrOutOfBounds)
	}
	tagStrings := p.TagStringCount()
	for i := 0; i < count; i++ {
		r, _ := p.TagsFor(uint16(i))
		if err := checkRange("tag range", i, uint32(r.First), uint32(r.Count), tagStrings); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pack) validateEvents() error {
	args := p.sectionCount(SectionEventArgs, eventArgSize)
	emits := p.sectionCount(SectionEmissions, emissionSize)
	for i := 0; i < emits; i++ {
		e, _ := p.Emission(i)
		if _, ok := p.String(uint32(e.NameOff), uint32(e.NameLen)); !ok {
			return fmt.Errorf("emission %d: name: %w", i, ErrOutOfBounds)
		}
		if err := checkRange("emission args", i, uint32(e.ArgsFirst), uint32(e.ArgsCount), args); err != nil {
			return err
		}
	}
	for i := 0; i < args; i++ {
		a, _ := p.EventArg(i)
		if _, ok := p.String(uint32(a.KeyOff), uint32(a.KeyLen)); !ok {
			return fmt.Errorf("event arg %d: key: %w", i, ErrOutOfBounds)
		}
		if _, ok := p.String(uint32(a.ValOff), uint32(a.ValLen)); !ok {
			return fmt.Errorf("event arg %d: value: %w", i, ErrOutOfBounds)
		}
	}
	return nil
}

func (p *Pack) validateResourceRecords() error {
	for i, n := 0, p.sectionCount(SectionCosts, costSize); i < n; i++ {
		c, _ := p.Cost(i)
		if int(c.Index) >= maxResourceSlots {
			return fmt.Errorf("cost %d: resource %d: %w", i, c.Index, ErrOutOfBounds)
		}
	}
	for i, n := 0, p.sectionCount(SectionPreconditions, preconditionSize); i < n; i++ {
		c, _ := p.Precondition(i)
		if int(c.Index) >= maxResourceSlots {
			return fmt.Errorf("precondition %d: resource %d: %w", i, c.Index, ErrOutOfBounds)
		}
	}
	for i, n := 0, p.sectionCount(SectionDeltas, deltaSize); i < n; i++ {
		c, _ := p.Delta(i)
		if int(c.Index) >= maxResourceSlots {
			return fmt.Errorf("delta %d: resource %d: %w", i, c.Index, ErrOutOfBounds)
		}
	}
	return nil
}

func (p *Pack) validateCancelRules(states int) error {
	for i, n := 0, p.CancelRuleCount(); i < n; i++ {
		r, _ := p.CancelRule(i)
		if _, ok := p.String(uint32(r.SrcOff), uint32(r.SrcLen)); !ok {
			return fmt.Errorf("cancel rule %d: source tag: %w", i, ErrOutOfBounds)
		}
		if _, ok := p.String(uint32(r.DstOff), uint32(r.DstLen)); !ok {
			return fmt.Errorf("cancel rule %d: target tag: %w", i, ErrOutOfBounds)
		}
	}
	for i, n := 0, p.DenyCount(); i < n; i++ {
		d, _ := p.Deny(i)
		if int(d.From) >= states {
			return fmt.Errorf("deny %d: from %d: %w", i, d.From, ErrOutOfBounds)
		}
		if int(d.To) >= states+ActionCount {
			return fmt.Errorf("deny %d: to %d: %w", i, d.To, ErrOutOfBounds)
		}
	}
	return nil
}

func (p *Pack) validateProps() error {
	if p.HasSchema() {
		section := p.sections[SectionSchema]
		if len(section) < 4 {
			return fmt.Errorf("schema header: %w", ErrOutOfBounds)
		}
		props := p.SchemaPropCount()
		tags := p.SchemaTagCount()
		if 4+(props+tags)*stringRefSize > len(section) {
			return fmt.Errorf("schema tables: %w", ErrOutOfBounds)
		}
		for i := 0; i < props; i++ {
			if _, ok := p.SchemaPropName(i); !ok {
				return fmt.Errorf("schema property %d: %w", i, ErrOutOfBounds)
			}
		}
		for i := 0; i < tags; i++ {
			if _, ok := p.SchemaTagName(i); !ok {
				return fmt.Errorf("schema tag %d: %w", i, ErrOutOfBounds)
			}
		}
	}
	size := p.propRecordSize()
	for _, kind := range [2]int{SectionCharProps, SectionStateProps} {
		if length := len(p.sections[kind]); length%size != 0 {
			return fmt.Errorf("property section %d length %d: %w", kind, length, ErrOutOfBounds)
		}
		for i, n := 0, p.sectionCount(kind, size); i < n; i++ {
			if _, ok := p.decodeProp(kind, i); !ok {
				return fmt.Errorf("property section %d entry %d: %w", kind, i, ErrOutOfBounds)
			}
		}
	}
	return nil
}

func checkRange(what string, i int, first, count uint32, limit int) error {
	if uint64(first)+uint64(count) > uint64(limit) {
		return fmt.Errorf("%s %d: range %d+%d of %d: %w", what, i, first, count, limit, ErrOutOfBounds)
	}
	return nil
}
