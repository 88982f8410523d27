package ffeval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluxflag/go-server-sdk/ffmodel"
	"github.com/fluxflag/go-server-sdk/ffreason"
	"github.com/fluxflag/go-server-sdk/ffstoretypes"
	"github.com/fluxflag/go-server-sdk/ffuser"
	"github.com/fluxflag/go-server-sdk/ffvalue"
)

type fakeMembership struct {
	included map[string]bool
}

func (m fakeMembership) CheckMembership(segmentKey string) (bool, bool) {
	included, ok := m.included[segmentKey]
	return included, ok
}

type fakeBigSegmentProvider struct {
	membership ffstoretypes.BigSegmentMembership
	status     ffreason.BigSegmentsStatus
}

func (p fakeBigSegmentProvider) GetUserMembership(userKey string) (ffstoretypes.BigSegmentMembership, ffreason.BigSegmentsStatus) {
	return p.membership, p.status
}

func unboundedFlag() (*ffmodel.FeatureFlag, *fakeProvider) {
	provider := newFakeProvider()
	provider.segments["big1"] = &ffmodel.Segment{Key: "big1", Unbounded: true}

	flag := boolFlag("flag", true)
	flag.Rules = []ffmodel.FlagRule{
		{
			ID:                 "rule-1",
			VariationOrRollout: ffmodel.VariationOrRollout{Variation: intPtr(0)},
			Clauses: []ffmodel.Clause{
				{Op: ffmodel.OperatorSegmentMatch, Values: []ffvalue.Value{ffvalue.String("big1")}},
			},
		},
	}
	return flag, provider
}

func TestUnboundedSegmentWithNoProviderNeverMatches(t *testing.T) {
	flag, provider := unboundedFlag()
	result := NewEvaluator(provider).Evaluate(flag, ffuser.NewUser("u1"), nil)
	assert.Equal(t, ffreason.FallthroughKind, result.Reason.Kind())
	assert.Equal(t, ffreason.BigSegmentsNotConfigured, result.Reason.BigSegmentsStatus())
}

func TestUnboundedSegmentMatchesViaProvider(t *testing.T) {
	flag, provider := unboundedFlag()
	evaluator := NewEvaluator(provider).WithBigSegments(fakeBigSegmentProvider{
		membership: fakeMembership{included: map[string]bool{"big1": true}},
		status:     ffreason.BigSegmentsHealthy,
	})

	result := evaluator.Evaluate(flag, ffuser.NewUser("u1"), nil)
	assert.Equal(t, ffreason.RuleMatchKind, result.Reason.Kind())
	assert.Equal(t, ffreason.BigSegmentsHealthy, result.Reason.BigSegmentsStatus())
}

func TestUnboundedSegmentReportsStaleStatus(t *testing.T) {
	flag, provider := unboundedFlag()
	evaluator := NewEvaluator(provider).WithBigSegments(fakeBigSegmentProvider{
		membership: fakeMembership{included: map[string]bool{}},
		status:     ffreason.BigSegmentsStale,
	})

	result := evaluator.Evaluate(flag, ffuser.NewUser("u1"), nil)
	assert.Equal(t, ffreason.FallthroughKind, result.Reason.Kind())
	assert.Equal(t, ffreason.BigSegmentsStale, result.Reason.BigSegmentsStatus())
}
