package pack

import (
	"fmt"

	"fightstate/runtime/internal/geom"
)

// Builder assembles an FSPK buffer section by section. It is the write-side
// counterpart of Parse, used by the export adapter and by tests that need
// byte-exact packs without authored JSON. Build runs the full Parse
// validation over the produced bytes, so a successful Build always yields a
// loadable pack.
type Builder struct {
	flags   uint32
	compact bool

	strings  []byte
	interned map[string]StringRef

	meshKeys []string
	animKeys []string

	states []StateRecord
	extras []Extras
	tags   [][]string

	hits   []HitWindow
	hurts  []HurtWindow
	pushes []HurtWindow
	shapes []geom.Shape

	cancelTargets []uint16

	resources []builderResource

	emissions []EmissionDef
	notifies  []Notify
	costs     []Cost
	preconds  []Precondition
	deltas    []Delta

	rules  []RuleDef
	denies []DenyPair

	charProps  []PropDef
	stateProps []PropDef
}

type builderResource struct {
	name       string
	start, max int32
}

// EmissionDef describes one event emission with flat key/value arguments.
type EmissionDef struct {
	Frame uint16
	Name  string
	Args  [][2]string
}

// RuleDef describes one tag-based cancel rule. An empty tag is a wildcard.
type RuleDef struct {
	Src, Dst  string
	Condition uint8
	MinFrame  uint16
	MaxFrame  uint16
	Priority  uint16
}

// PropDef describes one dynamic property before encoding.
type PropDef struct {
	Key  string
	Kind PropKind
	Num  geom.Scalar
	Bool bool
	Str  string
}

// NumberProp builds a numeric property definition.
func NumberProp(key string, value geom.Scalar) PropDef {
	return PropDef{Key: key, Kind: PropNumber, Num: value}
}

// BoolProp builds a boolean property definition.
func BoolProp(key string, value bool) PropDef {
	return PropDef{Key: key, Kind: PropBool, Bool: value}
}

// StringProp builds a string property definition.
func StringProp(key, value string) PropDef {
	return PropDef{Key: key, Kind: PropString, Str: value}
}

// NewBuilder returns an empty pack builder.
func NewBuilder() *Builder {
	return &Builder{interned: make(map[string]StringRef)}
}

// SetFlags sets the container-level flag word.
func (b *Builder) SetFlags(flags uint32) {
	b.flags = flags
}

// UseCompactProperties enables the schema section and the 8-byte compact
// property encoding.
func (b *Builder) UseCompactProperties() {
	b.compact = true
}

// AddMeshKey appends a mesh key reference and returns its index.
func (b *Builder) AddMeshKey(name string) uint16 {
	b.meshKeys = append(b.meshKeys, name)
	return uint16(len(b.meshKeys) - 1)
}

// AddAnimKey appends an animation keyframe key and returns its index.
func (b *Builder) AddAnimKey(name string) uint16 {
	b.animKeys = append(b.animKeys, name)
	return uint16(len(b.animKeys) - 1)
}

// AddShapes appends shapes to the shape table and returns their range.
func (b *Builder) AddShapes(shapes ...geom.Shape) (first, count uint16) {
	first = uint16(len(b.shapes))
	b.shapes = append(b.shapes, shapes...)
	return first, uint16(len(shapes))
}

// AddHitWindows appends hit windows and returns their range.
func (b *Builder) AddHitWindows(ws ...HitWindow) (first, count uint16) {
	first = uint16(len(b.hits))
	b.hits = append(b.hits, ws...)
	return first, uint16(len(ws))
}

// AddHurtWindows appends hurt windows and returns their range.
func (b *Builder) AddHurtWindows(ws ...HurtWindow) (first, count uint16) {
	first = uint16(len(b.hurts))
	b.hurts = append(b.hurts, ws...)
	return first, uint16(len(ws))
}

// AddPushWindows appends push windows and returns their range.
func (b *Builder) AddPushWindows(ws ...HurtWindow) (first, count uint16) {
	first = uint16(len(b.pushes))
	b.pushes = append(b.pushes, ws...)
	return first, uint16(len(ws))
}

// AddState appends a state record, assigning its id from its table position,
// and creates its extras record. Window ranges must already be filled in.
func (b *Builder) AddState(rec StateRecord) uint16 {
	id := uint16(len(b.states))
	rec.ID = id
	b.states = append(b.states, rec)
	b.extras = append(b.extras, Extras{StateID: uint32(id)})
	b.tags = append(b.tags, nil)
	return id
}

// SetChainCancels attaches the explicit chain-cancel target list to a state.
func (b *Builder) SetChainCancels(stateID uint16, targets ...uint16) {
	first := uint32(len(b.cancelTargets))
	b.cancelTargets = append(b.cancelTargets, targets...)
	b.extras[stateID].ChainFirst = first
	b.extras[stateID].ChainCount = uint32(len(targets))
}

// SetTags attaches tag strings to a state.
func (b *Builder) SetTags(stateID uint16, tags ...string) {
	b.tags[stateID] = tags
}

// SetNotation attaches the input notation string to a state.
func (b *Builder) SetNotation(stateID uint16, notation string) {
	ref := b.intern(notation)
	b.extras[stateID].NotationOff = uint32(ref.Off)
	b.extras[stateID].NotationLen = uint32(ref.Len)
}

// SetCosts attaches resource cost records to a state.
func (b *Builder) SetCosts(stateID uint16, costs ...Cost) {
	b.extras[stateID].CostFirst = uint32(len(b.costs))
	b.extras[stateID].CostCount = uint32(len(costs))
	b.costs = append(b.costs, costs...)
}

// SetPreconditions attaches resource precondition records to a state.
func (b *Builder) SetPreconditions(stateID uint16, preconds ...Precondition) {
	b.extras[stateID].PrecondFirst = uint32(len(b.preconds))
	b.extras[stateID].PrecondCount = uint32(len(preconds))
	b.preconds = append(b.preconds, preconds...)
}

// SetDeltas attaches resource delta records to a state.
func (b *Builder) SetDeltas(stateID uint16, deltas ...Delta) {
	b.extras[stateID].DeltaFirst = uint32(len(b.deltas))
	b.extras[stateID].DeltaCount = uint32(len(deltas))
	b.deltas = append(b.deltas, deltas...)
}

// SetNotifies attaches notify points to a state.
func (b *Builder) SetNotifies(stateID uint16, notifies ...Notify) {
	b.extras[stateID].NotifyFirst = uint32(len(b.notifies))
	b.extras[stateID].NotifyCount = uint32(len(notifies))
	b.notifies = append(b.notifies, notifies...)
}

// SetEmissions attaches event emissions to a state.
func (b *Builder) SetEmissions(stateID uint16, emissions ...EmissionDef) {
	b.extras[stateID].EmitFirst = uint32(len(b.emissions))
	b.extras[stateID].EmitCount = uint32(len(emissions))
	b.emissions = append(b.emissions, emissions...)
}

// SetStateProps attaches dynamic properties to a state.
func (b *Builder) SetStateProps(stateID uint16, props ...PropDef) {
	b.extras[stateID].PropFirst = uint32(len(b.stateProps))
	b.extras[stateID].PropCount = uint32(len(props))
	b.stateProps = append(b.stateProps, props...)
}

// SetCharProps sets the character-level dynamic properties.
func (b *Builder) SetCharProps(props ...PropDef) {
	b.charProps = append(b.charProps[:0], props...)
}

// AddResource appends a resource definition and returns its slot index.
func (b *Builder) AddResource(name string, start, max int32) int {
	b.resources = append(b.resources, builderResource{name: name, start: start, max: max})
	return len(b.resources) - 1
}

// AddCancelRule appends a tag-based cancel rule.
func (b *Builder) AddCancelRule(rule RuleDef) {
	b.rules = append(b.rules, rule)
}

// AddDeny appends an explicit cancel denial.
func (b *Builder) AddDeny(from, to uint16) {
	b.denies = append(b.denies, DenyPair{From: from, To: to})
}

func (b *Builder) intern(s string) StringRef {
	if s == "" {
		return StringRef{}
	}
	if ref, ok := b.interned[s]; ok {
		return ref
	}
	ref := StringRef{Off: uint16(len(b.strings)), Len: uint16(len(s))}
	b.strings = append(b.strings, s...)
	b.interned[s] = ref
	return ref
}

// Build encodes all sections, assembles the container and re-parses the
// result as a self-check.
func (b *Builder) Build() ([]byte, error) {
	// Pre-intern everything so string refs are stable before encoding.
	for _, s := range b.meshKeys {
		b.intern(s)
	}
	for _, s := range b.animKeys {
		b.intern(s)
	}
	for _, r := range b.resources {
		b.intern(r.name)
	}
	for _, stateTags := range b.tags {
		for _, t := range stateTags {
			b.intern(t)
		}
	}
	for _, r := range b.rules {
		b.intern(r.Src)
		b.intern(r.Dst)
	}
	for _, e := range b.emissions {
		b.intern(e.Name)
		for _, arg := range e.Args {
			b.intern(arg[0])
			b.intern(arg[1])
		}
	}
	for _, prop := range b.charProps {
		b.internProp(prop)
	}
	for _, prop := range b.stateProps {
		b.internProp(prop)
	}
	if len(b.strings) > 0xFFFF {
		return nil, fmt.Errorf("pack: string table %d bytes exceeds 16-bit addressing", len(b.strings))
	}

	var schemaProps, schemaTags []string
	if b.compact {
		schemaProps, schemaTags = b.schemaTables()
	}

	sections := make(map[int][]byte, sectionKindCount)
	sections[SectionStrings] = b.strings
	sections[SectionMeshKeys] = b.encodeRefArray(b.meshKeys)
	sections[SectionAnimKeys] = b.encodeRefArray(b.animKeys)
	sections[SectionStates] = b.encodeStates()
	sections[SectionHitWindows] = encodeHitWindows(b.hits)
	sections[SectionHurtWindows] = encodeHurtWindows(b.hurts)
	sections[SectionPushWindows] = encodeHurtWindows(b.pushes)
	sections[SectionShapes] = encodeShapes(b.shapes)
	sections[SectionCancelTargets] = encodeTargets(b.cancelTargets)
	sections[SectionResourceDefs] = b.encodeResources()
	sections[SectionStateExtras] = b.encodeExtras()
	emissions, args := b.encodeEmissions()
	sections[SectionEmissions] = emissions
	sections[SectionEventArgs] = args
	sections[SectionNotifies] = encodeNotifies(b.notifies)
	sections[SectionCosts] = encodeCosts(b.costs)
	sections[SectionPreconditions] = encodePreconditions(b.preconds)
	sections[SectionDeltas] = encodeDeltas(b.deltas)
	tagRanges, tagStrings := b.encodeTags()
	sections[SectionTagRanges] = tagRanges
	sections[SectionTagStrings] = tagStrings
	sections[SectionCancelRules] = b.encodeRules()
	sections[SectionCancelDenies] = encodeDenies(b.denies)
	sections[SectionCharProps] = b.encodeProps(b.charProps, schemaProps)
	sections[SectionStateProps] = b.encodeProps(b.stateProps, schemaProps)
	if b.compact {
		sections[SectionSchema] = b.encodeSchema(schemaProps, schemaTags)
	}

	kinds := make([]int, 0, sectionKindCount)
	for kind := 0; kind < sectionKindCount; kind++ {
		if len(sections[kind]) > 0 {
			kinds = append(kinds, kind)
		}
	}

	total := headerSize + len(kinds)*sectionHeaderSize
	for _, kind := range kinds {
		total += len(sections[kind])
	}

	out := make([]byte, 0, total)
	out = append(out, Magic[0], Magic[1], Magic[2], Magic[3])
	out = appendLE32(out, b.flags)
	out = appendLE32(out, uint32(total))
	out = appendLE32(out, uint32(len(kinds)))

	offset := headerSize + len(kinds)*sectionHeaderSize
	for _, kind := range kinds {
		out = appendLE32(out, uint32(kind))
		out = appendLE32(out, uint32(offset))
		out = appendLE32(out, uint32(len(sections[kind])))
		align := recordSizes[kind]
		if align == 0 {
			align = 1
		}
		out = appendLE32(out, uint32(align))
		offset += len(sections[kind])
	}
	for _, kind := range kinds {
		out = append(out, sections[kind]...)
	}

	if _, err := Parse(out); err != nil {
		return nil, fmt.Errorf("pack: self-check failed: %w", err)
	}
	return out, nil
}

func (b *Builder) internProp(prop PropDef) {
	if !b.compact {
		b.intern(prop.Key)
	}
	if prop.Kind == PropString {
		b.intern(prop.Str)
	}
}

// schemaTables collects the property and tag name tables in first-use order.
func (b *Builder) schemaTables() (props, tags []string) {
	seenProps := make(map[string]bool)
	for _, prop := range b.charProps {
		if !seenProps[prop.Key] {
			seenProps[prop.Key] = true
			props = append(props, prop.Key)
		}
	}
	for _, prop := range b.stateProps {
		if !seenProps[prop.Key] {
			seenProps[prop.Key] = true
			props = append(props, prop.Key)
		}
	}
	seenTags := make(map[string]bool)
	for _, stateTags := range b.tags {
		for _, t := range stateTags {
			if !seenTags[t] {
				seenTags[t] = true
				tags = append(tags, t)
			}
		}
	}
	for _, s := range props {
		b.intern(s)
	}
	for _, s := range tags {
		b.intern(s)
	}
	return props, tags
}

func (b *Builder) encodeRefArray(names []string) []byte {
	out := make([]byte, 0, len(names)*stringRefSize)
	for _, name := range names {
		ref := b.intern(name)
		out = appendLE16(out, ref.Off)
		out = appendLE16(out, ref.Len)
	}
	return out
}

func (b *Builder) encodeStates() []byte {
	out := make([]byte, 0, len(b.states)*stateRecordSize)
	for _, rec := range b.states {
		out = appendLE16(out, rec.ID)
		out = appendLE16(out, rec.AnimKey)
		out = append(out, rec.Type, rec.Trigger, rec.Guard, rec.Flags)
		out = appendLE16(out, rec.Startup)
		out = appendLE16(out, rec.Active)
		out = appendLE16(out, rec.Recovery)
		out = appendLE16(out, rec.Total)
		out = appendLE16(out, rec.Damage)
		out = appendLE16(out, rec.Hitstun)
		out = appendLE16(out, rec.Blockstun)
		out = appendLE16(out, rec.Hitstop)
		out = appendLE16(out, rec.HitFirst)
		out = appendLE16(out, rec.HitCount)
		out = appendLE16(out, rec.HurtFirst)
		out = appendLE16(out, rec.HurtCount)
		out = appendLE16(out, rec.PushFirst)
		out = appendLE16(out, rec.PushCount)
	}
	return out
}

func encodeHitWindows(ws []HitWindow) []byte {
	out := make([]byte, 0, len(ws)*hitWindowSize)
	for _, w := range ws {
		out = appendLE16(out, w.StartF)
		out = appendLE16(out, w.EndF)
		out = appendLE16(out, w.Damage)
		out = appendLE16(out, w.Chip)
		out = append(out, w.Hitstun, w.Blockstun, w.Hitstop, w.Guard)
		out = appendLE16(out, uint16(int16(w.HitPush)))
		out = appendLE16(out, uint16(int16(w.BlockPush)))
		out = appendLE16(out, w.ShapeFirst)
		out = appendLE16(out, w.ShapeCount)
		out = appendLE16(out, w.CancelFirst)
		out = appendLE16(out, w.CancelCount)
	}
	return out
}

func encodeHurtWindows(ws []HurtWindow) []byte {
	out := make([]byte, 0, len(ws)*hurtWindowSize)
	for _, w := range ws {
		out = appendLE16(out, w.StartF)
		out = appendLE16(out, w.EndF)
		out = appendLE16(out, w.Flags)
		out = appendLE16(out, 0)
		out = appendLE16(out, w.ShapeFirst)
		out = appendLE16(out, w.ShapeCount)
	}
	return out
}

func encodeShapes(shapes []geom.Shape) []byte {
	out := make([]byte, 0, len(shapes)*shapeRecordSize)
	for _, s := range shapes {
		out = append(out, byte(s.Kind), 0)
		out = appendLE16(out, uint16(int16(s.A)))
		out = appendLE16(out, uint16(int16(s.B)))
		out = appendLE16(out, uint16(int16(s.C)))
		out = appendLE16(out, uint16(int16(s.D)))
		out = appendLE16(out, uint16(int16(s.E)))
	}
	return out
}

func encodeTargets(targets []uint16) []byte {
	out := make([]byte, 0, len(targets)*cancelTargetSize)
	for _, t := range targets {
		out = appendLE16(out, t)
	}
	return out
}

func (b *Builder) encodeResources() []byte {
	out := make([]byte, 0, len(b.resources)*resourceDefSize)
	for _, r := range b.resources {
		ref := b.intern(r.name)
		out = appendLE16(out, ref.Off)
		out = appendLE16(out, ref.Len)
		out = appendLE32(out, uint32(r.start))
		out = appendLE32(out, uint32(r.max))
	}
	return out
}

func (b *Builder) encodeExtras() []byte {
	out := make([]byte, 0, len(b.extras)*extrasRecordSize)
	for _, x := range b.extras {
		out = appendLE32(out, x.StateID)
		out = appendLE32(out, x.Flags)
		out = appendLE32(out, x.EmitFirst)
		out = appendLE32(out, x.EmitCount)
		out = appendLE32(out, x.NotifyFirst)
		out = appendLE32(out, x.NotifyCount)
		out = appendLE32(out, x.CostFirst)
		out = appendLE32(out, x.CostCount)
		out = appendLE32(out, x.PrecondFirst)
		out = appendLE32(out, x.PrecondCount)
		out = appendLE32(out, x.DeltaFirst)
		out = appendLE32(out, x.DeltaCount)
		out = appendLE32(out, x.NotationOff)
		out = appendLE32(out, x.NotationLen)
		out = appendLE32(out, x.ChainFirst)
		out = appendLE32(out, x.ChainCount)
		out = appendLE32(out, x.PropFirst)
		out = appendLE32(out, x.PropCount)
	}
	return out
}

func (b *Builder) encodeEmissions() (emissions, args []byte) {
	argIndex := 0
	for _, e := range b.emissions {
		nameRef := b.intern(e.Name)
		emissions = appendLE16(emissions, e.Frame)
		emissions = appendLE16(emissions, nameRef.Off)
		emissions = appendLE16(emissions, nameRef.Len)
		emissions = appendLE16(emissions, uint16(argIndex))
		emissions = appendLE16(emissions, uint16(len(e.Args)))
		emissions = appendLE16(emissions, 0)
		for _, arg := range e.Args {
			keyRef := b.intern(arg[0])
			valRef := b.intern(arg[1])
			args = appendLE16(args, keyRef.Off)
			args = appendLE16(args, keyRef.Len)
			args = appendLE16(args, valRef.Off)
			args = appendLE16(args, valRef.Len)
		}
		argIndex += len(e.Args)
	}
	return emissions, args
}

func encodeNotifies(notifies []Notify) []byte {
	out := make([]byte, 0, len(notifies)*notifySize)
	for _, n := range notifies {
		out = appendLE16(out, n.Frame)
		out = appendLE16(out, n.Kind)
		out = appendLE32(out, uint32(int32(n.Param)))
	}
	return out
}

func encodeCosts(costs []Cost) []byte {
	out := make([]byte, 0, len(costs)*costSize)
	for _, c := range costs {
		out = appendLE16(out, c.Index)
		out = appendLE16(out, c.Flags)
		out = appendLE32(out, uint32(c.Amount))
	}
	return out
}

func encodePreconditions(preconds []Precondition) []byte {
	out := make([]byte, 0, len(preconds)*preconditionSize)
	for _, c := range preconds {
		out = appendLE16(out, c.Index)
		out = appendLE16(out, 0)
		out = appendLE32(out, uint32(c.Min))
		out = appendLE32(out, uint32(c.Max))
	}
	return out
}

func encodeDeltas(deltas []Delta) []byte {
	out := make([]byte, 0, len(deltas)*deltaSize)
	for _, d := range deltas {
		out = appendLE16(out, d.Index)
		out = appendLE16(out, d.Trigger)
		out = appendLE32(out, uint32(d.Amount))
	}
	return out
}

func (b *Builder) encodeTags() (ranges, strings []byte) {
	index := 0
	for _, stateTags := range b.tags {
		ranges = appendLE16(ranges, uint16(index))
		ranges = appendLE16(ranges, uint16(len(stateTags)))
		for _, t := range stateTags {
			ref := b.intern(t)
			strings = appendLE16(strings, ref.Off)
			strings = appendLE16(strings, ref.Len)
		}
		index += len(stateTags)
	}
	return ranges, strings
}

func (b *Builder) encodeRules() []byte {
	out := make([]byte, 0, len(b.rules)*cancelRuleSize)
	for _, r := range b.rules {
		srcRef := b.intern(r.Src)
		dstRef := b.intern(r.Dst)
		out = appendLE16(out, srcRef.Off)
		out = appendLE16(out, srcRef.Len)
		out = appendLE16(out, dstRef.Off)
		out = appendLE16(out, dstRef.Len)
		out = append(out, r.Condition, 0)
		out = appendLE16(out, r.MinFrame)
		out = appendLE16(out, r.MaxFrame)
		out = appendLE16(out, r.Priority)
		out = append(out, 0, 0, 0, 0, 0, 0, 0, 0)
	}
	return out
}

func encodeDenies(denies []DenyPair) []byte {
	out := make([]byte, 0, len(denies)*denyPairSize)
	for _, d := range denies {
		out = appendLE16(out, d.From)
		out = appendLE16(out, d.To)
	}
	return out
}

func (b *Builder) encodeProps(props []PropDef, schemaProps []string) []byte {
	var out []byte
	for _, prop := range props {
		value := b.propValue(prop)
		if b.compact {
			out = appendLE16(out, uint16(indexOf(schemaProps, prop.Key)))
			out = append(out, byte(prop.Kind), 0)
			out = appendLE32(out, value)
		} else {
			ref := b.intern(prop.Key)
			out = appendLE16(out, ref.Off)
			out = appendLE16(out, ref.Len)
			out = append(out, byte(prop.Kind), 0, 0, 0)
			out = appendLE32(out, value)
		}
	}
	return out
}

func (b *Builder) propValue(prop PropDef) uint32 {
	switch prop.Kind {
	case PropNumber:
		return uint32(int32(prop.Num))
	case PropBool:
		if prop.Bool {
			return 1
		}
		return 0
	case PropString:
		ref := b.intern(prop.Str)
		return uint32(ref.Off) | uint32(ref.Len)<<16
	}
	return 0
}

func (b *Builder) encodeSchema(props, tags []string) []byte {
	out := make([]byte, 0, 4+(len(props)+len(tags))*stringRefSize)
	out = appendLE16(out, uint16(len(props)))
	out = appendLE16(out, uint16(len(tags)))
	for _, s := range props {
		ref := b.intern(s)
		out = appendLE16(out, ref.Off)
		out = appendLE16(out, ref.Len)
	}
	for _, s := range tags {
		ref := b.intern(s)
		out = appendLE16(out, ref.Off)
		out = appendLE16(out, ref.Len)
	}
	return out
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return 0
}

func appendLE16(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}

func appendLE32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
