package ffeval

import (
	"regexp"
	"strings"
	"time"

	"github.com/fluxflag/go-server-sdk/ffmodel"
	"github.com/fluxflag/go-server-sdk/ffvalue"
)

// opFn is a binary predicate over (user value, clause value). A type mismatch between operands
// always yields false, never an error.
type opFn func(userValue, clauseValue ffvalue.Value) bool

var operatorFns = map[ffmodel.Operator]opFn{ //nolint:gochecknoglobals
	ffmodel.OperatorIn:                 opIn,
	ffmodel.OperatorStartsWith:         opStartsWith,
	ffmodel.OperatorEndsWith:           opEndsWith,
	ffmodel.OperatorContains:           opContains,
	ffmodel.OperatorMatches:            opMatches,
	ffmodel.OperatorLessThan:           opLessThan,
	ffmodel.OperatorLessThanOrEqual:    opLessThanOrEqual,
	ffmodel.OperatorGreaterThan:        opGreaterThan,
	ffmodel.OperatorGreaterThanOrEqual: opGreaterThanOrEqual,
	ffmodel.OperatorBefore:             opBefore,
	ffmodel.OperatorAfter:              opAfter,
}

func operatorFor(op ffmodel.Operator) opFn {
	if fn, ok := operatorFns[op]; ok {
		return fn
	}
	return opNone
}

func opNone(userValue, clauseValue ffvalue.Value) bool { return false }

func opIn(userValue, clauseValue ffvalue.Value) bool {
	return userValue.Equal(clauseValue)
}

func stringOp(userValue, clauseValue ffvalue.Value, fn func(user, clause string) bool) bool {
	if userValue.Type() != ffvalue.StringType || clauseValue.Type() != ffvalue.StringType {
		return false
	}
	return fn(userValue.String(), clauseValue.String())
}

func opStartsWith(userValue, clauseValue ffvalue.Value) bool {
	return stringOp(userValue, clauseValue, strings.HasPrefix)
}

func opEndsWith(userValue, clauseValue ffvalue.Value) bool {
	return stringOp(userValue, clauseValue, strings.HasSuffix)
}

func opContains(userValue, clauseValue ffvalue.Value) bool {
	return stringOp(userValue, clauseValue, strings.Contains)
}

func opMatches(userValue, clauseValue ffvalue.Value) bool {
	return stringOp(userValue, clauseValue, func(user, clause string) bool {
		re, err := regexp.Compile(clause)
		if err != nil {
			return false
		}
		return re.MatchString(user)
	})
}

func numericOp(userValue, clauseValue ffvalue.Value, fn func(user, clause float64) bool) bool {
	if !userValue.IsNumber() || !clauseValue.IsNumber() {
		return false
	}
	return fn(userValue.Float64(), clauseValue.Float64())
}

func opLessThan(userValue, clauseValue ffvalue.Value) bool {
	return numericOp(userValue, clauseValue, func(u, c float64) bool { return u < c })
}

func opLessThanOrEqual(userValue, clauseValue ffvalue.Value) bool {
	return numericOp(userValue, clauseValue, func(u, c float64) bool { return u <= c })
}

func opGreaterThan(userValue, clauseValue ffvalue.Value) bool {
	return numericOp(userValue, clauseValue, func(u, c float64) bool { return u > c })
}

func opGreaterThanOrEqual(userValue, clauseValue ffvalue.Value) bool {
	return numericOp(userValue, clauseValue, func(u, c float64) bool { return u >= c })
}

// dateOp implements the dual-mode before/after comparison: both operands must be numeric unix-ms
// timestamps, or both must be ISO-8601 text with a timezone. Mixed modes, empty text, and parse
// failures all yield false.
func dateOp(userValue, clauseValue ffvalue.Value, fn func(user, clause time.Time) bool) bool {
	if userValue.IsNumber() != clauseValue.IsNumber() {
		return false
	}
	uTime, ok := parseInstant(userValue)
	if !ok {
		return false
	}
	cTime, ok := parseInstant(clauseValue)
	if !ok {
		return false
	}
	return fn(uTime, cTime)
}

func opBefore(userValue, clauseValue ffvalue.Value) bool {
	return dateOp(userValue, clauseValue, time.Time.Before)
}

func opAfter(userValue, clauseValue ffvalue.Value) bool {
	return dateOp(userValue, clauseValue, time.Time.After)
}

func parseInstant(v ffvalue.Value) (time.Time, bool) {
	if v.IsNumber() {
		ms := v.Float64()
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	if v.Type() == ffvalue.StringType {
		s := v.String()
		if s == "" {
			return time.Time{}, false
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			t, err = time.Parse(time.RFC3339, s)
			if err != nil {
				return time.Time{}, false
			}
		}
		return t, true
	}
	return time.Time{}, false
}
