// Package authored defines the JSON character document that designers edit
// and compiles it into the binary pack consumed by the runtime. The document
// uses names and pixel floats; compilation resolves names to table indices
// and quantizes geometry to fixed point.
package authored

// Document is the root of an authored character file.
type Document struct {
	Name    string `json:"name" jsonschema:"minLength=1"`
	Version int    `json:"version,omitempty"`

	// CompactProps selects the schema-indexed property encoding.
	CompactProps bool `json:"compactProps,omitempty"`

	Resources []Resource `json:"resources,omitempty"`
	CharProps []Prop     `json:"charProps,omitempty"`
	States    []State    `json:"states" jsonschema:"minItems=1"`
	Rules     []Rule     `json:"rules,omitempty"`
	Denies    []Deny     `json:"denies,omitempty"`
}

// Resource declares one resource pool slot.
type Resource struct {
	Name  string `json:"name" jsonschema:"minLength=1"`
	Start int32  `json:"start,omitempty"`
	Max   int32  `json:"max,omitempty"`
}

// Prop is one dynamic property value.
type Prop struct {
	Key    string  `json:"key" jsonschema:"minLength=1"`
	Kind   string  `json:"kind" jsonschema:"enum=number,enum=bool,enum=string"`
	Number float64 `json:"number,omitempty"`
	Bool   bool    `json:"bool,omitempty"`
	String string  `json:"string,omitempty"`
}

// State is one authored character state. The first state in the document
// becomes state 0, idle by convention.
type State struct {
	Name  string `json:"name" jsonschema:"minLength=1"`
	Anim  string `json:"anim,omitempty"`
	Mesh  string `json:"mesh,omitempty"`
	Guard string `json:"guard,omitempty" jsonschema:"enum=mid,enum=high,enum=low,enum=unblockable"`

	// Cancels lists the virtual action flags granted while in this state:
	// chain, special, super, jump.
	Cancels []string `json:"cancels,omitempty"`

	Startup  int `json:"startup,omitempty"`
	Active   int `json:"active,omitempty"`
	Recovery int `json:"recovery,omitempty"`
	Total    int `json:"total,omitempty"`

	Damage    int `json:"damage,omitempty"`
	Hitstun   int `json:"hitstun,omitempty"`
	Blockstun int `json:"blockstun,omitempty"`
	Hitstop   int `json:"hitstop,omitempty"`

	Tags     []string `json:"tags,omitempty"`
	Notation string   `json:"notation,omitempty"`

	// Chain lists the explicit chain-cancel targets by state name.
	Chain []string `json:"chain,omitempty"`

	HitWindows  []HitWindow `json:"hitWindows,omitempty"`
	HurtWindows []Window    `json:"hurtWindows,omitempty"`
	PushWindows []Window    `json:"pushWindows,omitempty"`

	Costs         []CostRef     `json:"costs,omitempty"`
	Preconditions []PrecondRef  `json:"preconditions,omitempty"`
	Deltas        []DeltaRef    `json:"deltas,omitempty"`
	Notifies      []NotifyPoint `json:"notifies,omitempty"`
	Emissions     []Emission    `json:"emissions,omitempty"`
	Props         []Prop        `json:"props,omitempty"`
}

// HitWindow is one authored attack window. Frames are inclusive.
type HitWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`

	Damage int `json:"damage,omitempty"`
	Chip   int `json:"chip,omitempty"`

	Hitstun   int    `json:"hitstun,omitempty"`
	Blockstun int    `json:"blockstun,omitempty"`
	Hitstop   int    `json:"hitstop,omitempty"`
	Guard     string `json:"guard,omitempty" jsonschema:"enum=mid,enum=high,enum=low,enum=unblockable"`

	// Pushback distances in pixels; quantized to 1/16 pixel.
	HitPush   float64 `json:"hitPush,omitempty"`
	BlockPush float64 `json:"blockPush,omitempty"`

	Shapes []Shape `json:"shapes" jsonschema:"minItems=1"`
}

// Window is one authored hurt or push window.
type Window struct {
	Start        int     `json:"start"`
	End          int     `json:"end"`
	Invulnerable bool    `json:"invulnerable,omitempty"`
	Shapes       []Shape `json:"shapes" jsonschema:"minItems=1"`
}

// Shape is an authored collision shape in pixel coordinates relative to the
// combatant origin.
type Shape struct {
	Kind string `json:"kind" jsonschema:"enum=box,enum=circle,enum=capsule"`

	// Box: X/Y is the min corner, W/H the extent.
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	W float64 `json:"w,omitempty"`
	H float64 `json:"h,omitempty"`

	// Circle: X/Y is the center, R the radius. Capsule: X/Y and X2/Y2 are
	// the segment endpoints, R the radius.
	R  float64 `json:"r,omitempty"`
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`
}

// CostRef charges a resource when the state is entered through a cancel.
type CostRef struct {
	Resource string `json:"resource" jsonschema:"minLength=1"`
	Amount   int32  `json:"amount"`
}

// PrecondRef gates entry on a resource range. Bounds are inclusive; a zero
// Max means unbounded.
type PrecondRef struct {
	Resource string `json:"resource" jsonschema:"minLength=1"`
	Min      int32  `json:"min,omitempty"`
	Max      int32  `json:"max,omitempty"`
}

// DeltaRef adjusts a resource when the trigger fires.
type DeltaRef struct {
	Resource string `json:"resource" jsonschema:"minLength=1"`
	Trigger  string `json:"trigger" jsonschema:"enum=enter,enum=hit,enum=block"`
	Amount   int32  `json:"amount"`
}

// NotifyPoint marks a frame for engine-side callbacks.
type NotifyPoint struct {
	Frame int     `json:"frame"`
	Kind  int     `json:"kind,omitempty"`
	Param float64 `json:"param,omitempty"`
}

// Emission is one authored event emission with flat string arguments.
type Emission struct {
	Frame int               `json:"frame"`
	Name  string            `json:"name" jsonschema:"minLength=1"`
	Args  map[string]string `json:"args,omitempty"`
}

// Rule is one tag-based cancel rule. Empty tags are wildcards.
type Rule struct {
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Condition string `json:"condition,omitempty" jsonschema:"enum=always,enum=on_hit,enum=on_block,enum=on_whiff"`
	MinFrame  int    `json:"minFrame,omitempty"`
	MaxFrame  int    `json:"maxFrame,omitempty"`
	Priority  int    `json:"priority,omitempty"`
}

// Deny forbids a specific state-to-state cancel regardless of rules.
type Deny struct {
	From string `json:"from" jsonschema:"minLength=1"`
	To   string `json:"to" jsonschema:"minLength=1"`
}
