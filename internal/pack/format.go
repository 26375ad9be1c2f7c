// Package pack implements the FSPK binary character pack: a byte-exact,
// offset-addressed container parsed once at load time into a validated,
// zero-copy view. Accessors never allocate; every returned slice references
// the original buffer.
package pack

import "errors"

// Magic is the four-byte signature opening every FSPK container.
var Magic = [4]byte{'F', 'S', 'P', 'K'}

// Load-time structural errors. Each is fatal for the buffer that produced it;
// the caller must treat the asset as unusable rather than retry.
var (
	// ErrTooShort reports a buffer smaller than the fixed container header.
	ErrTooShort = errors.New("pack: buffer too short")
	// ErrInvalidMagic reports a header signature mismatch.
	ErrInvalidMagic = errors.New("pack: invalid magic")
	// ErrOutOfBounds reports a section or cross-reference that does not
	// resolve within the buffer.
	ErrOutOfBounds = errors.New("pack: out of bounds")
)

const (
	headerSize        = 16
	sectionHeaderSize = 16
)

// Section kind identifiers, in on-disk id order.
const (
	SectionStrings       = 0
	SectionMeshKeys      = 1
	SectionAnimKeys      = 2
	SectionStates        = 3
	SectionHitWindows    = 4
	SectionHurtWindows   = 5
	SectionPushWindows   = 6
	SectionShapes        = 7
	SectionCancelTargets = 8
	SectionResourceDefs  = 9
	SectionStateExtras   = 10
	SectionEmissions     = 11
	SectionEventArgs     = 12
	SectionNotifies      = 13
	SectionCosts         = 14
	SectionPreconditions = 15
	SectionDeltas        = 16
	SectionTagRanges     = 17
	SectionTagStrings    = 18
	SectionCancelRules   = 19
	SectionCancelDenies  = 20
	SectionCharProps     = 21
	SectionStateProps    = 22
	SectionSchema        = 23

	sectionKindCount = 24
)

// Fixed record sizes in bytes. A section whose length is not a multiple of
// its record size fails the load.
const (
	stateRecordSize  = 36
	hitWindowSize    = 24
	hurtWindowSize   = 12
	shapeRecordSize  = 12
	cancelTargetSize = 2
	resourceDefSize  = 12
	extrasRecordSize = 72
	emissionSize     = 12
	eventArgSize     = 8
	notifySize       = 8
	costSize         = 8
	preconditionSize = 12
	deltaSize        = 8
	tagRangeSize     = 4
	stringRefSize    = 4
	cancelRuleSize   = 24
	denyPairSize     = 4
	propVerboseSize  = 12
	propCompactSize  = 8
)

// recordSizes maps section kinds to their fixed record size, or 0 when the
// section is free-form (string table, schema).
var recordSizes = [sectionKindCount]int{
	SectionMeshKeys:      stringRefSize,
	SectionAnimKeys:      stringRefSize,
	SectionStates:        stateRecordSize,
	SectionHitWindows:    hitWindowSize,
	SectionHurtWindows:   hurtWindowSize,
	SectionPushWindows:   hurtWindowSize,
	SectionShapes:        shapeRecordSize,
	SectionCancelTargets: cancelTargetSize,
	SectionResourceDefs:  resourceDefSize,
	SectionStateExtras:   extrasRecordSize,
	SectionEmissions:     emissionSize,
	SectionEventArgs:     eventArgSize,
	SectionNotifies:      notifySize,
	SectionCosts:         costSize,
	SectionPreconditions: preconditionSize,
	SectionDeltas:        deltaSize,
	SectionTagRanges:     tagRangeSize,
	SectionTagStrings:    stringRefSize,
	SectionCancelRules:   cancelRuleSize,
	SectionCancelDenies:  denyPairSize,
}

// Virtual action ids, offset from the pack's state count when used as cancel
// targets. They are never valid current-state values.
const (
	ActionChain   = 0
	ActionSpecial = 1
	ActionSuper   = 2
	ActionJump    = 3

	// ActionCount is the number of virtual action ids appended to the
	// state table for cancel-target purposes.
	ActionCount = 4
)

// State flag bits. Bit n grants virtual action n as a cancel target.
const (
	FlagChainCancel   = 1 << ActionChain
	FlagSpecialCancel = 1 << ActionSpecial
	FlagSuperCancel   = 1 << ActionSuper
	FlagJumpCancel    = 1 << ActionJump
)

// Guard levels carried by states and hit windows.
const (
	GuardMid = iota
	GuardHigh
	GuardLow
	GuardUnblockable
)

// Cancel rule conditions.
const (
	CondAlways = iota
	CondOnHit
	CondOnBlock
	CondOnWhiff
)

// Hurt window flag bits.
const (
	// HurtInvulnerable marks a hurt window that cannot be hit while active.
	HurtInvulnerable = 1 << 0
)

// NoKey marks a state record without a mesh or animation key reference.
const NoKey = 0xFFFF
