package pack

import (
	"fmt"

	"fightstate/runtime/internal/geom"
)

// Pack is a validated, read-only view over an FSPK buffer. It is immutable
// after Parse and may be shared across any number of simulation instances
// without locking. Accessors perform per-call bounds checks and report
// absence instead of panicking.
type Pack struct {
	buf      []byte
	flags    uint32
	sections [sectionKindCount][]byte
}

// Parse validates the container header, section table and every
// cross-reference in buf. It returns ErrTooShort, ErrInvalidMagic or
// ErrOutOfBounds (possibly wrapped with context) on structural failure; a
// failed buffer must not be retried. The returned Pack aliases buf, which
// must not be mutated afterwards.
func Parse(buf []byte) (Pack, error) {
	var p Pack
	if len(buf) < headerSize {
		return Pack{}, ErrTooShort
	}
	if buf[0] != Magic[0] || buf[1] != Magic[1] || buf[2] != Magic[2] || buf[3] != Magic[3] {
		return Pack{}, ErrInvalidMagic
	}
	p.flags = le32(buf, 4)
	total := int(le32(buf, 8))
	count := int(le32(buf, 12))
	if total < headerSize || total > len(buf) {
		return Pack{}, fmt.Errorf("total length %d: %w", total, ErrOutOfBounds)
	}
	tableEnd := headerSize + count*sectionHeaderSize
	if tableEnd > total {
		return Pack{}, fmt.Errorf("section table: %w", ErrOutOfBounds)
	}
	p.buf = buf[:total]
	for i := 0; i < count; i++ {
		base := headerSize + i*sectionHeaderSize
		kind := int(le32(buf, base))
		off := int(le32(buf, base+4))
		length := int(le32(buf, base+8))
		if off < tableEnd || length < 0 || off+length > total {
			return Pack{}, fmt.Errorf("section %d (kind %d): %w", i, kind, ErrOutOfBounds)
		}
		if kind < 0 || kind >= sectionKindCount {
			// Unknown kinds are skipped for forward compatibility.
			continue
		}
		if size := recordSizes[kind]; size > 0 && length%size != 0 {
			return Pack{}, fmt.Errorf("section %d (kind %d) length %d: %w", i, kind, length, ErrOutOfBounds)
		}
		p.sections[kind] = buf[off : off+length]
	}
	if err := p.validate(); err != nil {
		return Pack{}, err
	}
	return p, nil
}

// Flags returns the container-level flag word.
func (p *Pack) Flags() uint32 {
	return p.flags
}

// String resolves a byte range within the string table. The returned slice
// aliases the pack buffer.
func (p *Pack) String(off, length uint32) ([]byte, bool) {
	table := p.sections[SectionStrings]
	end := uint64(off) + uint64(length)
	if end > uint64(len(table)) {
		return nil, false
	}
	return table[off:end], true
}

func (p *Pack) sectionCount(kind, recordSize int) int {
	return len(p.sections[kind]) / recordSize
}

func (p *Pack) record(kind, recordSize, i int) ([]byte, bool) {
	section := p.sections[kind]
	if i < 0 || (i+1)*recordSize > len(section) {
		return nil, false
	}
	return section[i*recordSize : (i+1)*recordSize], true
}

// StateCount reports the number of state table entries.
func (p *Pack) StateCount() int {
	return p.sectionCount(SectionStates, stateRecordSize)
}

// State returns the i-th state record.
func (p *Pack) State(i int) (StateRecord, bool) {
	b, ok := p.record(SectionStates, stateRecordSize, i)
	if !ok {
		return StateRecord{}, false
	}
	return decodeState(b), true
}

// MeshKeyCount reports the number of mesh key references.
func (p *Pack) MeshKeyCount() int {
	return p.sectionCount(SectionMeshKeys, stringRefSize)
}

// MeshKey resolves the i-th mesh key to its string bytes.
func (p *Pack) MeshKey(i int) ([]byte, bool) {
	b, ok := p.record(SectionMeshKeys, stringRefSize, i)
	if !ok {
		return nil, false
	}
	ref := decodeStringRef(b)
	return p.String(uint32(ref.Off), uint32(ref.Len))
}

// AnimKeyCount reports the number of animation keyframe key references.
func (p *Pack) AnimKeyCount() int {
	return p.sectionCount(SectionAnimKeys, stringRefSize)
}

// AnimKey resolves the i-th animation key to its string bytes.
func (p *Pack) AnimKey(i int) ([]byte, bool) {
	b, ok := p.record(SectionAnimKeys, stringRefSize, i)
	if !ok {
		return nil, false
	}
	ref := decodeStringRef(b)
	return p.String(uint32(ref.Off), uint32(ref.Len))
}

// HitWindowCount reports the number of hit window records.
func (p *Pack) HitWindowCount() int {
	return p.sectionCount(SectionHitWindows, hitWindowSize)
}

// HitWindow returns the i-th hit window record.
func (p *Pack) HitWindow(i int) (HitWindow, bool) {
	b, ok := p.record(SectionHitWindows, hitWindowSize, i)
	if !ok {
		return HitWindow{}, false
	}
	return decodeHitWindow(b), true
}

// HurtWindowCount reports the number of hurt window records.
func (p *Pack) HurtWindowCount() int {
	return p.sectionCount(SectionHurtWindows, hurtWindowSize)
}

// HurtWindow returns the i-th hurt window record.
func (p *Pack) HurtWindow(i int) (HurtWindow, bool) {
	b, ok := p.record(SectionHurtWindows, hurtWindowSize, i)
	if !ok {
		return HurtWindow{}, false
	}
	return decodeHurtWindow(b), true
}

// PushWindowCount reports the number of push window records.
func (p *Pack) PushWindowCount() int {
	return p.sectionCount(SectionPushWindows, hurtWindowSize)
}

// PushWindow returns the i-th push window record.
func (p *Pack) PushWindow(i int) (HurtWindow, bool) {
	b, ok := p.record(SectionPushWindows, hurtWindowSize, i)
	if !ok {
		return HurtWindow{}, false
	}
	return decodeHurtWindow(b), true
}

// ShapeCount reports the number of shape records.
func (p *Pack) ShapeCount() int {
	return p.sectionCount(SectionShapes, shapeRecordSize)
}

// Shape returns the i-th fixed-point shape.
func (p *Pack) Shape(i int) (geom.Shape, bool) {
	b, ok := p.record(SectionShapes, shapeRecordSize, i)
	if !ok {
		return geom.Shape{}, false
	}
	return decodeShape(b), true
}

// CancelTargetCount reports the length of the cancel-target index array.
func (p *Pack) CancelTargetCount() int {
	return p.sectionCount(SectionCancelTargets, cancelTargetSize)
}

// CancelTarget returns the i-th cancel-target state id.
func (p *Pack) CancelTarget(i int) (uint16, bool) {
	b, ok := p.record(SectionCancelTargets, cancelTargetSize, i)
	if !ok {
		return 0, false
	}
	return le16(b, 0), true
}

// ResourceDefCount reports the number of resource definitions.
func (p *Pack) ResourceDefCount() int {
	return p.sectionCount(SectionResourceDefs, resourceDefSize)
}

// ResourceDef returns the i-th resource definition.
func (p *Pack) ResourceDef(i int) (ResourceDef, bool) {
	b, ok := p.record(SectionResourceDefs, resourceDefSize, i)
	if !ok {
		return ResourceDef{}, false
	}
	return decodeResourceDef(b), true
}

// ResourceName resolves the i-th resource definition's name bytes.
func (p *Pack) ResourceName(i int) ([]byte, bool) {
	def, ok := p.ResourceDef(i)
	if !ok {
		return nil, false
	}
	return p.String(uint32(def.NameOff), uint32(def.NameLen))
}

// Extras returns the per-state extras record for the given state id.
func (p *Pack) Extras(stateID uint16) (Extras, bool) {
	b, ok := p.record(SectionStateExtras, extrasRecordSize, int(stateID))
	if !ok {
		return Extras{}, false
	}
	return decodeExtras(b), true
}

// Emission returns the i-th event emission record.
func (p *Pack) Emission(i int) (Emission, bool) {
	b, ok := p.record(SectionEmissions, emissionSize, i)
	if !ok {
		return Emission{}, false
	}
	return decodeEmission(b), true
}

// EventArg returns the i-th flat event argument record.
func (p *Pack) EventArg(i int) (EventArg, bool) {
	b, ok := p.record(SectionEventArgs, eventArgSize, i)
	if !ok {
		return EventArg{}, false
	}
	return decodeEventArg(b), true
}

// Notify returns the i-th state notify point.
func (p *Pack) Notify(i int) (Notify, bool) {
	b, ok := p.record(SectionNotifies, notifySize, i)
	if !ok {
		return Notify{}, false
	}
	return decodeNotify(b), true
}

// Cost returns the i-th resource cost record.
func (p *Pack) Cost(i int) (Cost, bool) {
	b, ok := p.record(SectionCosts, costSize, i)
	if !ok {
		return Cost{}, false
	}
	return decodeCost(b), true
}

// Precondition returns the i-th resource precondition record.
func (p *Pack) Precondition(i int) (Precondition, bool) {
	b, ok := p.record(SectionPreconditions, preconditionSize, i)
	if !ok {
		return Precondition{}, false
	}
	return decodePrecondition(b), true
}

// Delta returns the i-th resource delta record.
func (p *Pack) Delta(i int) (Delta, bool) {
	b, ok := p.record(SectionDeltas, deltaSize, i)
	if !ok {
		return Delta{}, false
	}
	return decodeDelta(b), true
}

// TagsFor returns the tag string range attached to the given state id.
func (p *Pack) TagsFor(stateID uint16) (TagRange, bool) {
	b, ok := p.record(SectionTagRanges, tagRangeSize, int(stateID))
	if !ok {
		return TagRange{}, false
	}
	return decodeTagRange(b), true
}

// TagStringCount reports the number of tag string references.
func (p *Pack) TagStringCount() int {
	return p.sectionCount(SectionTagStrings, stringRefSize)
}

// TagString resolves the i-th tag string to its bytes.
func (p *Pack) TagString(i int) ([]byte, bool) {
	b, ok := p.record(SectionTagStrings, stringRefSize, i)
	if !ok {
		return nil, false
	}
	ref := decodeStringRef(b)
	return p.String(uint32(ref.Off), uint32(ref.Len))
}

// CancelRuleCount reports the number of tag-based cancel rules.
func (p *Pack) CancelRuleCount() int {
	return p.sectionCount(SectionCancelRules, cancelRuleSize)
}

// CancelRule returns the i-th tag-based cancel rule.
func (p *Pack) CancelRule(i int) (CancelRule, bool) {
	b, ok := p.record(SectionCancelRules, cancelRuleSize, i)
	if !ok {
		return CancelRule{}, false
	}
	return decodeCancelRule(b), true
}

// DenyCount reports the number of explicit cancel denials.
func (p *Pack) DenyCount() int {
	return p.sectionCount(SectionCancelDenies, denyPairSize)
}

// Deny returns the i-th explicit cancel denial.
func (p *Pack) Deny(i int) (DenyPair, bool) {
	b, ok := p.record(SectionCancelDenies, denyPairSize, i)
	if !ok {
		return DenyPair{}, false
	}
	return decodeDenyPair(b), true
}

// Denied reports whether an explicit denial exists for the transition.
func (p *Pack) Denied(from, to uint16) bool {
	section := p.sections[SectionCancelDenies]
	for off := 0; off+denyPairSize <= len(section); off += denyPairSize {
		if le16(section, off) == from && le16(section, off+2) == to {
			return true
		}
	}
	return false
}

// Notation resolves the input notation string attached to a state, if any.
func (p *Pack) Notation(stateID uint16) ([]byte, bool) {
	x, ok := p.Extras(stateID)
	if !ok || x.NotationLen == 0 {
		return nil, false
	}
	return p.String(x.NotationOff, x.NotationLen)
}
