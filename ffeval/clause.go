package ffeval

import (
	"github.com/fluxflag/go-server-sdk/ffmodel"
	"github.com/fluxflag/go-server-sdk/ffreason"
	"github.com/fluxflag/go-server-sdk/ffuser"
	"github.com/fluxflag/go-server-sdk/ffvalue"
)

// clauseMatchesUser evaluates a single non-segmentMatch clause against a user. segmentMatch
// clauses are handled by the evaluator, which alone has access to the segment store.
func clauseMatchesUser(clause *ffmodel.Clause, user ffuser.User) bool {
	uValue, found := user.GetAttribute(string(clause.Attribute))
	if !found {
		// Absent is always a non-match, regardless of Negate.
		return false
	}

	fn := operatorFor(clause.Op)

	if uValue.Type() == ffvalue.ArrayType {
		for i := 0; i < uValue.Count(); i++ {
			if matchAny(fn, uValue.GetByIndex(i), clause.Values) {
				return maybeNegate(clause.Negate, true)
			}
		}
		return maybeNegate(clause.Negate, false)
	}

	return maybeNegate(clause.Negate, matchAny(fn, uValue, clause.Values))
}

func matchAny(fn opFn, userValue ffvalue.Value, clauseValues []ffvalue.Value) bool {
	for _, cv := range clauseValues {
		if fn(userValue, cv) {
			return true
		}
	}
	return false
}

func maybeNegate(negate, result bool) bool {
	if negate {
		return !result
	}
	return result
}

func ruleMatchesUser(
	clauses []ffmodel.Clause,
	user ffuser.User,
	segments segmentLookup,
	bigSegmentsStatus *ffreason.BigSegmentsStatus,
) bool {
	for i := range clauses {
		if !clauseOrSegmentMatches(&clauses[i], user, segments, bigSegmentsStatus) {
			return false
		}
	}
	return true
}

func clauseOrSegmentMatches(
	clause *ffmodel.Clause,
	user ffuser.User,
	segments segmentLookup,
	bigSegmentsStatus *ffreason.BigSegmentsStatus,
) bool {
	if clause.Op == ffmodel.OperatorSegmentMatch {
		for _, v := range clause.Values {
			if v.Type() != ffvalue.StringType {
				continue
			}
			segment := segments.GetSegment(v.String())
			if segment == nil {
				continue
			}
			matched, status := segmentContainsUser(segment, user, segments)
			if status != "" && bigSegmentsStatus != nil {
				*bigSegmentsStatus = status
			}
			if matched {
				return maybeNegate(clause.Negate, true)
			}
		}
		return maybeNegate(clause.Negate, false)
	}
	return clauseMatchesUser(clause, user)
}

// segmentLookup resolves a segment key to its data, used only while matching segmentMatch
// clauses and rollout bucketing, and resolves big segment membership for Unbounded segments.
type segmentLookup interface {
	GetSegment(key string) *ffmodel.Segment
	checkBigSegmentMembership(segmentKey string, user ffuser.User) (bool, ffreason.BigSegmentsStatus)
}

func segmentContainsUser(s *ffmodel.Segment, user ffuser.User, segments segmentLookup) (bool, ffreason.BigSegmentsStatus) {
	if s.Unbounded {
		return segments.checkBigSegmentMembership(s.Key, user)
	}

	key := user.Key()
	for _, excluded := range s.Excluded {
		if excluded == key {
			return false, ""
		}
	}
	for _, included := range s.Included {
		if included == key {
			return true, ""
		}
	}

	for i := range s.Rules {
		if segmentRuleMatchesUser(&s.Rules[i], s.Key, s.Salt, user) {
			return true, ""
		}
	}
	return false, ""
}

func segmentRuleMatchesUser(rule *ffmodel.SegmentRule, segmentKey, salt string, user ffuser.User) bool {
	for i := range rule.Clauses {
		if !clauseMatchesUser(&rule.Clauses[i], user) {
			return false
		}
	}

	if rule.Weight == nil {
		return true
	}

	bucketBy := ffuser.KeyAttribute
	if rule.BucketBy != nil {
		bucketBy = *rule.BucketBy
	}

	b, ok := bucket(user, bucketBy, segmentKey, salt)
	if !ok {
		return false
	}
	return b < float64(*rule.Weight)/100000.0
}
