package ffeval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluxflag/go-server-sdk/ffmodel"
	"github.com/fluxflag/go-server-sdk/ffreason"
	"github.com/fluxflag/go-server-sdk/ffuser"
	"github.com/fluxflag/go-server-sdk/ffvalue"
)

type fakeProvider struct {
	flags    map[string]*ffmodel.FeatureFlag
	segments map[string]*ffmodel.Segment
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{flags: map[string]*ffmodel.FeatureFlag{}, segments: map[string]*ffmodel.Segment{}}
}

func (p *fakeProvider) GetFeatureFlag(key string) *ffmodel.FeatureFlag { return p.flags[key] }
func (p *fakeProvider) GetSegment(key string) *ffmodel.Segment         { return p.segments[key] }

func boolFlag(key string, on bool) *ffmodel.FeatureFlag {
	off := 0
	return &ffmodel.FeatureFlag{
		Key:          key,
		On:           on,
		OffVariation: &off,
		Fallthrough:  ffmodel.VariationOrRollout{Variation: intPtr(1)},
		Variations:   []ffvalue.Value{ffvalue.Bool(false), ffvalue.Bool(true)},
		Version:      1,
	}
}

func intPtr(i int) *int { return &i }

func TestEvaluateOff(t *testing.T) {
	provider := newFakeProvider()
	flag := boolFlag("flag", false)
	result := NewEvaluator(provider).Evaluate(flag, ffuser.NewUser("u1"), nil)
	assert.Equal(t, ffreason.OffKind, result.Reason.Kind())
	assert.False(t, result.Value.Bool())
}

func TestEvaluateFallthrough(t *testing.T) {
	provider := newFakeProvider()
	flag := boolFlag("flag", true)
	result := NewEvaluator(provider).Evaluate(flag, ffuser.NewUser("u1"), nil)
	assert.Equal(t, ffreason.FallthroughKind, result.Reason.Kind())
	assert.True(t, result.Value.Bool())
}

func TestEvaluateEmptyUserKeyIsError(t *testing.T) {
	provider := newFakeProvider()
	flag := boolFlag("flag", true)
	result := NewEvaluator(provider).Evaluate(flag, ffuser.NewUser(""), nil)
	assert.Equal(t, ffreason.ErrorKind, result.Reason.Kind())
	assert.Equal(t, ffreason.UserNotSpecifiedErrorKind, result.Reason.ErrorKind())
}

func TestEvaluateTargetMatch(t *testing.T) {
	provider := newFakeProvider()
	flag := boolFlag("flag", true)
	flag.Targets = []ffmodel.Target{{Values: []string{"u1"}, Variation: 0}}
	result := NewEvaluator(provider).Evaluate(flag, ffuser.NewUser("u1"), nil)
	assert.Equal(t, ffreason.TargetMatchKind, result.Reason.Kind())
	assert.False(t, result.Value.Bool())
}

func TestEvaluateRuleMatch(t *testing.T) {
	provider := newFakeProvider()
	flag := boolFlag("flag", true)
	flag.Rules = []ffmodel.FlagRule{
		{
			ID:                 "rule-1",
			VariationOrRollout: ffmodel.VariationOrRollout{Variation: intPtr(0)},
			Clauses: []ffmodel.Clause{
				{Attribute: "email", Op: ffmodel.OperatorEndsWith, Values: []ffvalue.Value{ffvalue.String("@example.com")}},
			},
		},
	}
	u := ffuser.NewUserBuilder("u1").Email("bob@example.com").Build()
	result := NewEvaluator(provider).Evaluate(flag, u, nil)
	assert.Equal(t, ffreason.RuleMatchKind, result.Reason.Kind())
	assert.Equal(t, 0, result.Reason.RuleIndex())
	assert.Equal(t, "rule-1", result.Reason.RuleID())
}

func TestPrerequisiteFailedWhenPrereqOff(t *testing.T) {
	provider := newFakeProvider()
	prereq := boolFlag("prereq", false)
	provider.flags["prereq"] = prereq

	flag := boolFlag("flag", true)
	flag.Prerequisites = []ffmodel.Prerequisite{{Key: "prereq", Variation: 1}}

	var recorded []PrerequisiteEvent
	result := NewEvaluator(provider).Evaluate(flag, ffuser.NewUser("u1"), func(e PrerequisiteEvent) {
		recorded = append(recorded, e)
	})
	assert.Equal(t, ffreason.PrerequisiteFailedKind, result.Reason.Kind())
	assert.Equal(t, "prereq", result.Reason.PrerequisiteKey())
	assert.Len(t, recorded, 1)
}

func TestPrerequisiteCycleIsMalformedFlag(t *testing.T) {
	provider := newFakeProvider()
	a := boolFlag("a", true)
	a.Prerequisites = []ffmodel.Prerequisite{{Key: "b", Variation: 1}}
	b := boolFlag("b", true)
	b.Prerequisites = []ffmodel.Prerequisite{{Key: "a", Variation: 1}}
	provider.flags["a"] = a
	provider.flags["b"] = b

	result := NewEvaluator(provider).Evaluate(a, ffuser.NewUser("u1"), nil)
	assert.Equal(t, ffreason.ErrorKind, result.Reason.Kind())
	assert.Equal(t, ffreason.MalformedFlagErrorKind, result.Reason.ErrorKind())
}

func TestRolloutZeroWeightsIsMalformedFlag(t *testing.T) {
	provider := newFakeProvider()
	flag := boolFlag("flag", true)
	flag.Fallthrough = ffmodel.VariationOrRollout{
		Rollout: &ffmodel.Rollout{Variations: []ffmodel.WeightedVariation{{Variation: 0, Weight: 0}}},
	}
	result := NewEvaluator(provider).Evaluate(flag, ffuser.NewUser("u1"), nil)
	assert.Equal(t, ffreason.ErrorKind, result.Reason.Kind())
	assert.Equal(t, ffreason.MalformedFlagErrorKind, result.Reason.ErrorKind())
}

func TestRolloutIsDeterministic(t *testing.T) {
	provider := newFakeProvider()
	flag := boolFlag("flag", true)
	flag.Salt = "saltvalue"
	flag.Fallthrough = ffmodel.VariationOrRollout{
		Rollout: &ffmodel.Rollout{
			Variations: []ffmodel.WeightedVariation{
				{Variation: 0, Weight: 50000},
				{Variation: 1, Weight: 50000},
			},
		},
	}
	r1 := NewEvaluator(provider).Evaluate(flag, ffuser.NewUser("user-key-1"), nil)
	r2 := NewEvaluator(provider).Evaluate(flag, ffuser.NewUser("user-key-1"), nil)
	assert.Equal(t, r1.VariationIndex, r2.VariationIndex)
}

func TestSegmentMatchClause(t *testing.T) {
	provider := newFakeProvider()
	provider.segments["seg1"] = &ffmodel.Segment{Key: "seg1", Included: []string{"u1"}}

	flag := boolFlag("flag", true)
	flag.Rules = []ffmodel.FlagRule{
		{
			ID:                 "rule-1",
			VariationOrRollout: ffmodel.VariationOrRollout{Variation: intPtr(0)},
			Clauses: []ffmodel.Clause{
				{Op: ffmodel.OperatorSegmentMatch, Values: []ffvalue.Value{ffvalue.String("seg1")}},
			},
		},
	}
	result := NewEvaluator(provider).Evaluate(flag, ffuser.NewUser("u1"), nil)
	assert.Equal(t, ffreason.RuleMatchKind, result.Reason.Kind())
}
