package pack

import "fightstate/runtime/internal/geom"

// Multi-byte fields are read byte-by-byte in little-endian order; no
// alignment of the backing buffer is assumed.

func le16(b []byte, off int) uint16 {
	return uint16(b[off]) | uint16(b[off+1])<<8
}

func le32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}

// StateRecord is one 36-byte entry of the state table.
type StateRecord struct {
	ID      uint16
	AnimKey uint16
	Type    uint8
	Trigger uint8
	Guard   uint8
	Flags   uint8

	Startup  uint16
	Active   uint16
	Recovery uint16
	Total    uint16

	Damage    uint16
	Hitstun   uint16
	Blockstun uint16
	Hitstop   uint16

	HitFirst, HitCount   uint16
	HurtFirst, HurtCount uint16
	PushFirst, PushCount uint16
}

func decodeState(b []byte) StateRecord {
	return StateRecord{
		ID:        le16(b, 0),
		AnimKey:   le16(b, 2),
		Type:      b[4],
		Trigger:   b[5],
		Guard:     b[6],
		Flags:     b[7],
		Startup:   le16(b, 8),
		Active:    le16(b, 10),
		Recovery:  le16(b, 12),
		Total:     le16(b, 14),
		Damage:    le16(b, 16),
		Hitstun:   le16(b, 18),
		Blockstun: le16(b, 20),
		Hitstop:   le16(b, 22),
		HitFirst:  le16(b, 24),
		HitCount:  le16(b, 26),
		HurtFirst: le16(b, 28),
		HurtCount: le16(b, 30),
		PushFirst: le16(b, 32),
		PushCount: le16(b, 34),
	}
}

// HitWindow is one 24-byte entry of the hit window table. Frame bounds are
// inclusive; pushback distances are Q12.4.
type HitWindow struct {
	StartF uint16
	EndF   uint16
	Damage uint16
	Chip   uint16

	Hitstun   uint8
	Blockstun uint8
	Hitstop   uint8
	Guard     uint8

	HitPush   geom.Coord
	BlockPush geom.Coord

	ShapeFirst, ShapeCount   uint16
	CancelFirst, CancelCount uint16
}

func decodeHitWindow(b []byte) HitWindow {
	return HitWindow{
		StartF:      le16(b, 0),
		EndF:        le16(b, 2),
		Damage:      le16(b, 4),
		Chip:        le16(b, 6),
		Hitstun:     b[8],
		Blockstun:   b[9],
		Hitstop:     b[10],
		Guard:       b[11],
		HitPush:     geom.Coord(int16(le16(b, 12))),
		BlockPush:   geom.Coord(int16(le16(b, 14))),
		ShapeFirst:  le16(b, 16),
		ShapeCount:  le16(b, 18),
		CancelFirst: le16(b, 20),
		CancelCount: le16(b, 22),
	}
}

// HurtWindow is one 12-byte entry of the hurt window table. Push windows use
// the same layout for body-to-body separation boxes.
type HurtWindow struct {
	StartF uint16
	EndF   uint16
	Flags  uint16

	ShapeFirst, ShapeCount uint16
}

func decodeHurtWindow(b []byte) HurtWindow {
	return HurtWindow{
		StartF:     le16(b, 0),
		EndF:       le16(b, 2),
		Flags:      le16(b, 4),
		ShapeFirst: le16(b, 8),
		ShapeCount: le16(b, 10),
	}
}

func decodeShape(b []byte) geom.Shape {
	return geom.Shape{
		Kind: geom.Kind(b[0]),
		A:    int32(int16(le16(b, 2))),
		B:    int32(int16(le16(b, 4))),
		C:    int32(int16(le16(b, 6))),
		D:    int32(int16(le16(b, 8))),
		E:    int32(int16(le16(b, 10))),
	}
}

// ResourceDef is one 12-byte entry of the resource definition table.
type ResourceDef struct {
	NameOff uint16
	NameLen uint16
	Start   int32
	Max     int32
}

func decodeResourceDef(b []byte) ResourceDef {
	return ResourceDef{
		NameOff: le16(b, 0),
		NameLen: le16(b, 2),
		Start:   int32(le32(b, 4)),
		Max:     int32(le32(b, 8)),
	}
}

// Extras is the 72-byte per-state record bundling index ranges into the
// emission, notify, resource and property tables, the input notation string
// and the explicit chain-cancel target range.
type Extras struct {
	StateID uint32
	Flags   uint32

	EmitFirst, EmitCount       uint32
	NotifyFirst, NotifyCount   uint32
	CostFirst, CostCount       uint32
	PrecondFirst, PrecondCount uint32
	DeltaFirst, DeltaCount     uint32

	NotationOff, NotationLen uint32

	ChainFirst, ChainCount uint32
	PropFirst, PropCount   uint32
}

func decodeExtras(b []byte) Extras {
	return Extras{
		StateID:      le32(b, 0),
		Flags:        le32(b, 4),
		EmitFirst:    le32(b, 8),
		EmitCount:    le32(b, 12),
		NotifyFirst:  le32(b, 16),
		NotifyCount:  le32(b, 20),
		CostFirst:    le32(b, 24),
		CostCount:    le32(b, 28),
		PrecondFirst: le32(b, 32),
		PrecondCount: le32(b, 36),
		DeltaFirst:   le32(b, 40),
		DeltaCount:   le32(b, 44),
		NotationOff:  le32(b, 48),
		NotationLen:  le32(b, 52),
		ChainFirst:   le32(b, 56),
		ChainCount:   le32(b, 60),
		PropFirst:    le32(b, 64),
		PropCount:    le32(b, 68),
	}
}

// Emission is one 12-byte event emission record.
type Emission struct {
	Frame   uint16
	NameOff uint16
	NameLen uint16

	ArgsFirst, ArgsCount uint16
}

func decodeEmission(b []byte) Emission {
	return Emission{
		Frame:     le16(b, 0),
		NameOff:   le16(b, 2),
		NameLen:   le16(b, 4),
		ArgsFirst: le16(b, 6),
		ArgsCount: le16(b, 8),
	}
}

// EventArg is one flat key/value argument record referenced by emissions.
type EventArg struct {
	KeyOff, KeyLen uint16
	ValOff, ValLen uint16
}

func decodeEventArg(b []byte) EventArg {
	return EventArg{
		KeyOff: le16(b, 0),
		KeyLen: le16(b, 2),
		ValOff: le16(b, 4),
		ValLen: le16(b, 6),
	}
}

// Notify is one 8-byte state notify point. Param is Q24.8.
type Notify struct {
	Frame uint16
	Kind  uint16
	Param geom.Scalar
}

func decodeNotify(b []byte) Notify {
	return Notify{
		Frame: le16(b, 0),
		Kind:  le16(b, 2),
		Param: geom.Scalar(int32(le32(b, 4))),
	}
}

// Cost is one resource cost record.
type Cost struct {
	Index  uint16
	Flags  uint16
	Amount int32
}

func decodeCost(b []byte) Cost {
	return Cost{
		Index:  le16(b, 0),
		Flags:  le16(b, 2),
		Amount: int32(le32(b, 4)),
	}
}

// Precondition is one resource precondition record with inclusive bounds.
type Precondition struct {
	Index uint16
	Min   int32
	Max   int32
}

func decodePrecondition(b []byte) Precondition {
	return Precondition{
		Index: le16(b, 0),
		Min:   int32(le32(b, 4)),
		Max:   int32(le32(b, 8)),
	}
}

// Delta is one per-state resource delta record.
type Delta struct {
	Index   uint16
	Trigger uint16
	Amount  int32
}

func decodeDelta(b []byte) Delta {
	return Delta{
		Index:   le16(b, 0),
		Trigger: le16(b, 2),
		Amount:  int32(le32(b, 4)),
	}
}

// TagRange addresses a state's tags within the tag string table.
type TagRange struct {
	First uint16
	Count uint16
}

func decodeTagRange(b []byte) TagRange {
	return TagRange{First: le16(b, 0), Count: le16(b, 2)}
}

// StringRef addresses a byte range within the string table.
type StringRef struct {
	Off uint16
	Len uint16
}

func decodeStringRef(b []byte) StringRef {
	return StringRef{Off: le16(b, 0), Len: le16(b, 2)}
}

// CancelRule is one 24-byte tag-based cancel rule. A zero-length tag ref is a
// wildcard. Frame bounds are inclusive; 0 leaves that side unbounded.
type CancelRule struct {
	SrcOff, SrcLen uint16
	DstOff, DstLen uint16

	Condition uint8
	Flags     uint8
	MinFrame  uint16
	MaxFrame  uint16
	Priority  uint16
}

func decodeCancelRule(b []byte) CancelRule {
	return CancelRule{
		SrcOff:    le16(b, 0),
		SrcLen:    le16(b, 2),
		DstOff:    le16(b, 4),
		DstLen:    le16(b, 6),
		Condition: b[8],
		Flags:     b[9],
		MinFrame:  le16(b, 10),
		MaxFrame:  le16(b, 12),
		Priority:  le16(b, 14),
	}
}

// DenyPair is one explicit cancel denial.
type DenyPair struct {
	From uint16
	To   uint16
}

func decodeDenyPair(b []byte) DenyPair {
	return DenyPair{From: le16(b, 0), To: le16(b, 2)}
}
