package ffmodel

import "github.com/fluxflag/go-server-sdk/ffuser"

// Segment describes a group of users, identified by explicit key lists and/or matching rules. A
// flag clause can reference a segment with OperatorSegmentMatch.
type Segment struct {
	Key string `json:"key"`
	// Included user keys match this segment unless they are also in Excluded.
	Included []string `json:"included"`
	// Excluded user keys never match this segment, even if also present in Included.
	Excluded []string `json:"excluded"`
	// Salt is folded into the rollout hash for this segment's rules.
	Salt string `json:"salt"`
	// Rules is an ordered list; the first rule whose clauses all match (subject to its optional
	// rollout Weight) includes the user in the segment.
	Rules   []SegmentRule `json:"rules"`
	Version int           `json:"version"`
	Deleted bool          `json:"deleted"`
	// Unbounded marks this as a "big segment": membership is not stored in Included/Excluded/Rules
	// but is queried from an external store at evaluation time via a BigSegmentProvider.
	Unbounded bool `json:"unbounded,omitempty"`
}

// GetKey returns the segment's key, satisfying ffstoretypes.Item.
func (s *Segment) GetKey() string { return s.Key }

// GetVersion returns the segment's version, satisfying ffstoretypes.Item.
func (s *Segment) GetVersion() int { return s.Version }

// IsDeleted reports whether this is a tombstone.
func (s *Segment) IsDeleted() bool { return s.Deleted }

// SegmentRule is one rule within a Segment.
type SegmentRule struct {
	ID      string   `json:"id,omitempty"`
	Clauses []Clause `json:"clauses"`
	// Weight, if set, restricts matching users to a percentage rollout: 0 to 100000.
	Weight *int `json:"weight,omitempty"`
	// BucketBy names the user attribute used for the rollout; defaults to the user's key.
	BucketBy *ffuser.UserAttribute `json:"bucketBy,omitempty"`
}
