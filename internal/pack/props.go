package pack

import "fightstate/runtime/internal/geom"

// PropKind tags the value variant of a dynamic property.
type PropKind uint8

const (
	// PropNumber carries a Q24.8 fixed-point number.
	PropNumber PropKind = iota
	// PropBool carries a boolean.
	PropBool
	// PropString carries a string table reference.
	PropString
)

// Property is one dynamic character or state property. The same logical
// value decodes from either the 12-byte verbose record or the 8-byte compact
// record; the encoding is selected purely by whether the pack carries a
// schema section. Key and Str alias the pack buffer.
type Property struct {
	Key  []byte
	Kind PropKind
	Num  geom.Scalar
	Bool bool
	Str  []byte
}

// HasSchema reports whether the pack carries a schema section, which selects
// the compact property encoding.
func (p *Pack) HasSchema() bool {
	return len(p.sections[SectionSchema]) > 0
}

func (p *Pack) propRecordSize() int {
	if p.HasSchema() {
		return propCompactSize
	}
	return propVerboseSize
}

// CharPropCount reports the number of character-level dynamic properties.
func (p *Pack) CharPropCount() int {
	return p.sectionCount(SectionCharProps, p.propRecordSize())
}

// CharProp returns the i-th character-level dynamic property.
func (p *Pack) CharProp(i int) (Property, bool) {
	return p.decodeProp(SectionCharProps, i)
}

// StatePropCount reports the total number of state-level dynamic properties.
// Per-state ranges come from the extras record's property range.
func (p *Pack) StatePropCount() int {
	return p.sectionCount(SectionStateProps, p.propRecordSize())
}

// StateProp returns the i-th state-level dynamic property.
func (p *Pack) StateProp(i int) (Property, bool) {
	return p.decodeProp(SectionStateProps, i)
}

func (p *Pack) decodeProp(kind, i int) (Property, bool) {
	size := p.propRecordSize()
	b, ok := p.record(kind, size, i)
	if !ok {
		return Property{}, false
	}
	var prop Property
	var value uint32
	if size == propCompactSize {
		key, ok := p.SchemaPropName(int(le16(b, 0)))
		if !ok {
			return Property{}, false
		}
		prop.Key = key
		prop.Kind = PropKind(b[2])
		value = le32(b, 4)
	} else {
		key, ok := p.String(uint32(le16(b, 0)), uint32(le16(b, 2)))
		if !ok {
			return Property{}, false
		}
		prop.Key = key
		prop.Kind = PropKind(b[4])
		value = le32(b, 8)
	}
	switch prop.Kind {
	case PropNumber:
		prop.Num = geom.Scalar(int32(value))
	case PropBool:
		prop.Bool = value != 0
	case PropString:
		str, ok := p.String(value&0xFFFF, value>>16)
		if !ok {
			return Property{}, false
		}
		prop.Str = str
	default:
		return Property{}, false
	}
	return prop, true
}

// Schema section layout: property ref count u16, tag ref count u16, then the
// property string refs followed by the tag string refs, 4 bytes each.

// SchemaPropCount reports the number of schema property names, or 0 when no
// schema section is present.
func (p *Pack) SchemaPropCount() int {
	section := p.sections[SectionSchema]
	if len(section) < 4 {
		return 0
	}
	return int(le16(section, 0))
}

// SchemaTagCount reports the number of schema tag names.
func (p *Pack) SchemaTagCount() int {
	section := p.sections[SectionSchema]
	if len(section) < 4 {
		return 0
	}
	return int(le16(section, 2))
}

// SchemaPropName resolves the i-th schema property name.
func (p *Pack) SchemaPropName(i int) ([]byte, bool) {
	section := p.sections[SectionSchema]
	if i < 0 || i >= p.SchemaPropCount() {
		return nil, false
	}
	off := 4 + i*stringRefSize
	if off+stringRefSize > len(section) {
		return nil, false
	}
	ref := decodeStringRef(section[off:])
	return p.String(uint32(ref.Off), uint32(ref.Len))
}

// SchemaTagName resolves the i-th schema tag name.
func (p *Pack) SchemaTagName(i int) ([]byte, bool) {
	section := p.sections[SectionSchema]
	if i < 0 || i >= p.SchemaTagCount() {
		return nil, false
	}
	off := 4 + (p.SchemaPropCount()+i)*stringRefSize
	if off+stringRefSize > len(section) {
		return nil, false
	}
	ref := decodeStringRef(section[off:])
	return p.String(uint32(ref.Off), uint32(ref.Len))
}
