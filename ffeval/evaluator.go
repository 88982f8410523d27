// Package ffeval implements flag evaluation: the Hasher, Operators, Clause/Segment matcher, and
// the Rule/Flag evaluator pipeline that together turn a flag, a user, and a data provider into an
// EvaluationDetail.
package ffeval

import (
	"github.com/fluxflag/go-server-sdk/ffmodel"
	"github.com/fluxflag/go-server-sdk/ffreason"
	"github.com/fluxflag/go-server-sdk/ffstoretypes"
	"github.com/fluxflag/go-server-sdk/ffuser"
	"github.com/fluxflag/go-server-sdk/ffvalue"
)

// DataProvider resolves flags and segments referenced during evaluation: a flag's prerequisites,
// and a clause's segmentMatch targets.
type DataProvider interface {
	GetFeatureFlag(key string) *ffmodel.FeatureFlag
	GetSegment(key string) *ffmodel.Segment
}

// BigSegmentProvider resolves big ("unbounded") segment membership for a user. Consulted only
// when a segmentMatch clause references a Segment with Unbounded set.
type BigSegmentProvider interface {
	GetUserMembership(userKey string) (ffstoretypes.BigSegmentMembership, ffreason.BigSegmentsStatus)
}

// PrerequisiteEvent describes one prerequisite flag evaluation performed while evaluating a
// dependent flag, for the caller to shape into a feature-request event.
type PrerequisiteEvent struct {
	PrereqOfFlagKey string
	PrereqFlag      *ffmodel.FeatureFlag
	Result          ffreason.EvaluationDetail
}

// PrerequisiteEventRecorder receives one PrerequisiteEvent per prerequisite evaluated. It may be
// nil, in which case prerequisite events are simply not recorded.
type PrerequisiteEventRecorder func(event PrerequisiteEvent)

// Evaluator evaluates flags against a DataProvider.
type Evaluator struct {
	dataProvider DataProvider
	bigSegments  BigSegmentProvider
}

// NewEvaluator creates an Evaluator backed by the given DataProvider.
func NewEvaluator(dataProvider DataProvider) *Evaluator {
	return &Evaluator{dataProvider: dataProvider}
}

// WithBigSegments returns a copy of the evaluator that consults provider for segments with
// Unbounded set. With no provider, such segments never match.
func (e *Evaluator) WithBigSegments(provider BigSegmentProvider) *Evaluator {
	e2 := *e
	e2.bigSegments = provider
	return &e2
}

func (e *Evaluator) GetSegment(key string) *ffmodel.Segment { return e.dataProvider.GetSegment(key) }

func (e *Evaluator) checkBigSegmentMembership(segmentKey string, user ffuser.User) (bool, ffreason.BigSegmentsStatus) {
	if e.bigSegments == nil {
		return false, ffreason.BigSegmentsNotConfigured
	}
	membership, status := e.bigSegments.GetUserMembership(user.Key())
	if membership == nil {
		return false, status
	}
	included, defined := membership.CheckMembership(segmentKey)
	if !defined {
		return false, status
	}
	return included, status
}

// Evaluate runs the full evaluation pipeline for flag against user, recording any prerequisite
// evaluations via recorder (which may be nil).
func (e *Evaluator) Evaluate(
	flag *ffmodel.FeatureFlag,
	user ffuser.User,
	recorder PrerequisiteEventRecorder,
) ffreason.EvaluationDetail {
	if user.Key() == "" {
		return ffreason.NewEvaluationDetailForError(ffreason.UserNotSpecifiedErrorKind, ffvalue.Null())
	}
	es := &evalState{evaluator: e, user: user, recorder: recorder, visited: map[string]bool{flag.Key: true}}
	return es.evaluateFlag(flag)
}

// evalState carries the per-top-level-evaluation visited set used for prerequisite cycle
// detection; it is not safe to share across concurrent evaluations.
type evalState struct {
	evaluator         *Evaluator
	user              ffuser.User
	recorder          PrerequisiteEventRecorder
	visited           map[string]bool
	bigSegmentsStatus ffreason.BigSegmentsStatus
}

func (es *evalState) evaluateFlag(flag *ffmodel.FeatureFlag) ffreason.EvaluationDetail {
	if !flag.On {
		return es.offValue(flag, ffreason.NewEvalReasonOff())
	}

	if reason, ok := es.checkPrerequisites(flag); !ok {
		return es.offValue(flag, reason)
	}

	key := es.user.Key()
	for _, target := range flag.Targets {
		for _, v := range target.Values {
			if v == key {
				return es.variation(flag, target.Variation, ffreason.NewEvalReasonTargetMatch())
			}
		}
	}

	for i := range flag.Rules {
		rule := &flag.Rules[i]
		if ruleMatchesUser(rule.Clauses, es.user, es.evaluator, &es.bigSegmentsStatus) {
			reason := ffreason.NewEvalReasonRuleMatch(i, rule.ID)
			return es.attachBigSegmentsStatus(es.resolveVariationOrRollout(flag, rule.VariationOrRollout, reason))
		}
	}

	return es.attachBigSegmentsStatus(
		es.resolveVariationOrRollout(flag, flag.Fallthrough, ffreason.NewEvalReasonFallthrough()),
	)
}

func (es *evalState) attachBigSegmentsStatus(detail ffreason.EvaluationDetail) ffreason.EvaluationDetail {
	if es.bigSegmentsStatus == "" {
		return detail
	}
	detail.Reason = detail.Reason.WithBigSegmentsStatus(es.bigSegmentsStatus)
	return detail
}

func (es *evalState) checkPrerequisites(flag *ffmodel.FeatureFlag) (ffreason.EvaluationReason, bool) {
	for _, prereq := range flag.Prerequisites {
		prereqFlag := es.evaluator.dataProvider.GetFeatureFlag(prereq.Key)
		if prereqFlag == nil {
			return ffreason.NewEvalReasonPrerequisiteFailed(prereq.Key), false
		}

		if es.visited[prereq.Key] {
			return ffreason.NewEvalReasonError(ffreason.MalformedFlagErrorKind), false
		}
		es.visited[prereq.Key] = true

		result := es.evaluateFlag(prereqFlag)

		if es.recorder != nil {
			es.recorder(PrerequisiteEvent{PrereqOfFlagKey: flag.Key, PrereqFlag: prereqFlag, Result: result})
		}

		if result.Reason.Kind() == ffreason.ErrorKind && result.Reason.ErrorKind() == ffreason.MalformedFlagErrorKind {
			return result.Reason, false
		}

		ok := prereqFlag.On && !result.IsDefaultValue() && result.VariationIndex == prereq.Variation
		if !ok {
			return ffreason.NewEvalReasonPrerequisiteFailed(prereq.Key), false
		}
	}
	return ffreason.EvaluationReason{}, true
}

func (es *evalState) variation(
	flag *ffmodel.FeatureFlag,
	index int,
	reason ffreason.EvaluationReason,
) ffreason.EvaluationDetail {
	if index < 0 || index >= len(flag.Variations) {
		return ffreason.NewEvaluationDetailForError(ffreason.MalformedFlagErrorKind, ffvalue.Null())
	}
	return ffreason.NewEvaluationDetail(flag.Variations[index], index, reason)
}

func (es *evalState) offValue(flag *ffmodel.FeatureFlag, reason ffreason.EvaluationReason) ffreason.EvaluationDetail {
	if flag.OffVariation == nil {
		return ffreason.NewEvaluationDetail(ffvalue.Null(), ffreason.NoVariation, reason)
	}
	return es.variation(flag, *flag.OffVariation, reason)
}

func (es *evalState) resolveVariationOrRollout(
	flag *ffmodel.FeatureFlag,
	vr ffmodel.VariationOrRollout,
	reason ffreason.EvaluationReason,
) ffreason.EvaluationDetail {
	index, ok := es.variationIndexForUser(vr, flag.Key, flag.Salt)
	if !ok {
		return ffreason.NewEvaluationDetailForError(ffreason.MalformedFlagErrorKind, ffvalue.Null())
	}
	return es.variation(flag, index, reason)
}

func (es *evalState) variationIndexForUser(vr ffmodel.VariationOrRollout, flagKey, salt string) (int, bool) {
	if vr.Variation != nil {
		return *vr.Variation, true
	}
	if vr.Rollout == nil || len(vr.Rollout.Variations) == 0 {
		return 0, false
	}

	bucketBy := ffuser.KeyAttribute
	if vr.Rollout.BucketBy != nil {
		bucketBy = *vr.Rollout.BucketBy
	}

	b, ok := bucket(es.user, bucketBy, flagKey, salt)
	if !ok {
		return 0, false
	}

	totalWeight := 0
	for _, wv := range vr.Rollout.Variations {
		totalWeight += wv.Weight
	}
	if totalWeight <= 0 {
		return 0, false
	}

	var sum float64
	for _, wv := range vr.Rollout.Variations {
		sum += float64(wv.Weight) / 100000.0
		if b < sum {
			return wv.Variation, true
		}
	}
	return vr.Rollout.Variations[len(vr.Rollout.Variations)-1].Variation, true
}
