// Package ffmodel defines the flag and segment data model: the wire representation that a data
// source delivers and a data store persists, evaluated by package ffeval.
package ffmodel

import (
	"github.com/fluxflag/go-server-sdk/ffuser"
	"github.com/fluxflag/go-server-sdk/ffvalue"
)

// FeatureFlag describes an individual feature flag.
//
// Application code does not normally reference FeatureFlag fields directly; flag data is
// delivered by a data source and consumed by package ffeval.
type FeatureFlag struct {
	// Key is the unique string key of the flag.
	Key string `json:"key"`
	// On is true if targeting is turned on for this flag. If false, the evaluator always uses
	// OffVariation and ignores Prerequisites, Targets, Rules, and Fallthrough.
	On bool `json:"on"`
	// Prerequisites lists other flags that must return a specific variation for this flag's
	// targeting to apply. If any prerequisite is not met, the flag behaves as if targeting were off.
	Prerequisites []Prerequisite `json:"prerequisites"`
	// Targets are sets of individually targeted user keys. A Target match takes precedence over
	// Rules. Ignored when targeting is off.
	Targets []Target `json:"targets"`
	// Rules is an ordered list of rules that may match a user. The first rule whose clauses all
	// match wins; later rules are not evaluated. Ignored when targeting is off.
	Rules []FlagRule `json:"rules"`
	// Fallthrough is used when targeting is on but no Target or Rule matched.
	Fallthrough VariationOrRollout `json:"fallthrough"`
	// OffVariation is the variation index returned when targeting is off. Nil means the flag
	// evaluates to the caller's default with no variation index.
	OffVariation *int `json:"offVariation"`
	// Variations is the list of possible values for this flag; Target, Rule, and Fallthrough
	// variation indexes refer into this list.
	Variations []ffvalue.Value `json:"variations"`
	// Salt is a per-flag random value folded into the rollout hash so that bucketing is
	// consistent within a flag but unpredictable across flags.
	Salt string `json:"salt"`
	// Sel is an additional hashing salt, carried through from the ingest format but not
	// currently consulted by the evaluator.
	Sel string `json:"sel,omitempty"`
	// Version increases each time the flag's configuration changes.
	Version int `json:"version"`
	// Deleted marks this as a tombstone for a deleted flag rather than real flag data.
	Deleted bool `json:"deleted"`
	// TrackEvents, when true, asks the event pipeline to report full evaluation events for this
	// flag rather than just summary counts.
	TrackEvents bool `json:"trackEvents,omitempty"`
	// DebugEventsUntilDate, when non-nil, asks the event pipeline to include full event detail
	// (even without TrackEvents) until the given unix-millisecond timestamp.
	DebugEventsUntilDate *int64 `json:"debugEventsUntilDate,omitempty"`
	// ClientSide marks this flag as usable by client-side SDKs. Not consulted by the evaluator
	// itself; relevant only to AllFlagsState filtering.
	ClientSide bool `json:"clientSide,omitempty"`
}

// GetKey returns the flag's key, satisfying ffstoretypes.Item.
func (f *FeatureFlag) GetKey() string { return f.Key }

// GetVersion returns the flag's version, satisfying ffstoretypes.Item.
func (f *FeatureFlag) GetVersion() int { return f.Version }

// IsDeleted reports whether this is a tombstone.
func (f *FeatureFlag) IsDeleted() bool { return f.Deleted }

// FlagRule is a single rule within a flag: a set of ANDed Clauses plus the variation or rollout
// to apply when all of them match.
type FlagRule struct {
	VariationOrRollout
	// ID is a stable identifier for this rule, reported in RULE_MATCH reasons.
	ID string `json:"id,omitempty"`
	// Clauses must all match the user for this rule to match.
	Clauses []Clause `json:"clauses"`
	// TrackEvents, when true, asks the event pipeline to report full evaluation events when this
	// rule is the one that matched.
	TrackEvents bool `json:"trackEvents,omitempty"`
}

// VariationOrRollout specifies either a fixed variation or a percentage rollout. Exactly one of
// Variation or Rollout should be set.
type VariationOrRollout struct {
	Variation *int     `json:"variation,omitempty"`
	Rollout   *Rollout `json:"rollout,omitempty"`
}

// Rollout describes how users are bucketed into variations for a percentage rollout.
type Rollout struct {
	// Variations lists the weighted variations in this rollout. Weights are integers from 0 to
	// 100000 and should sum to 100000; if they sum to less, the last variation absorbs the gap.
	Variations []WeightedVariation `json:"variations"`
	// BucketBy names the user attribute used to bucket users. Defaults to the user's key when
	// unset.
	BucketBy *ffuser.UserAttribute `json:"bucketBy,omitempty"`
}

// WeightedVariation is one bucket of a Rollout.
type WeightedVariation struct {
	Variation int `json:"variation"`
	Weight    int `json:"weight"`
}

// Clause is a single test condition within a FlagRule or SegmentRule.
type Clause struct {
	// Attribute is the user attribute under test. Unused when Op is OperatorSegmentMatch.
	Attribute ffuser.UserAttribute `json:"attribute"`
	// Op is the comparison to apply.
	Op Operator `json:"op"`
	// Values are ORed: the clause matches if the user attribute matches any of them. When Op is
	// OperatorSegmentMatch, each value is a segment key and the clause matches if the user is in
	// any of those segments.
	Values []ffvalue.Value `json:"values"`
	// Negate inverts the match result, except when the clause is a non-match because the user
	// lacks the attribute entirely (that always stays a non-match).
	Negate bool `json:"negate"`
}

// Target is a fixed set of user keys that all receive the same variation.
type Target struct {
	Values    []string `json:"values"`
	Variation int      `json:"variation"`
}

// Prerequisite names another flag that must return a specific variation for this flag's own
// targeting to take effect.
type Prerequisite struct {
	Key       string `json:"key"`
	Variation int    `json:"variation"`
}
