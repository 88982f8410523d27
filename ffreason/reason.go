// Package ffreason defines the structured explanation attached to every flag evaluation result:
// EvaluationReason (why this value was chosen) and EvaluationDetail (the value plus that reason).
package ffreason

import "encoding/json"

// Kind describes the general category of an EvaluationReason.
type Kind string

// Evaluation reason kinds, per the evaluator's decision pipeline.
const (
	OffKind                 Kind = "OFF"
	FallthroughKind          Kind = "FALLTHROUGH"
	TargetMatchKind          Kind = "TARGET_MATCH"
	RuleMatchKind            Kind = "RULE_MATCH"
	PrerequisiteFailedKind   Kind = "PREREQUISITE_FAILED"
	ErrorKind                Kind = "ERROR"
)

// BigSegmentsStatus describes the state of the big segment store consulted while matching a
// segmentMatch clause against an unbounded segment. Only meaningful when BigSegmentsStatus() is
// non-empty on the resulting reason.
type BigSegmentsStatus string

// Big segment store states.
const (
	BigSegmentsHealthy       BigSegmentsStatus = "HEALTHY"
	BigSegmentsStale         BigSegmentsStatus = "STALE"
	BigSegmentsNotConfigured BigSegmentsStatus = "NOT_CONFIGURED"
	BigSegmentsStoreError    BigSegmentsStatus = "STORE_ERROR"
)

// EvalErrorKind describes the type of error, for reasons of EvalErrorKind.
type EvalErrorKind string

// Error kinds that can appear in an ERROR reason.
const (
	UserNotSpecifiedErrorKind EvalErrorKind = "USER_NOT_SPECIFIED"
	FlagNotFoundErrorKind     EvalErrorKind = "FLAG_NOT_FOUND"
	MalformedFlagErrorKind    EvalErrorKind = "MALFORMED_FLAG"
	WrongTypeErrorKind        EvalErrorKind = "WRONG_TYPE"
	ClientNotReadyErrorKind   EvalErrorKind = "CLIENT_NOT_READY"
	ExceptionErrorKind        EvalErrorKind = "EXCEPTION"
)

// EvaluationReason is an immutable description of why an evaluation produced the value it did.
// Construct one with the New* functions below; the zero value is not meaningful.
type EvaluationReason struct {
	kind              Kind
	ruleIndex         int
	ruleID            string
	prerequisiteKey   string
	errorKind         EvalErrorKind
	bigSegmentsStatus BigSegmentsStatus
}

// Kind returns the reason's category.
func (r EvaluationReason) Kind() Kind { return r.kind }

// RuleIndex returns the index of the matched rule, valid only when Kind is RuleMatchKind.
func (r EvaluationReason) RuleIndex() int { return r.ruleIndex }

// RuleID returns the stable id of the matched rule, valid only when Kind is RuleMatchKind.
func (r EvaluationReason) RuleID() string { return r.ruleID }

// PrerequisiteKey returns the key of the failed prerequisite, valid only when Kind is
// PrerequisiteFailedKind.
func (r EvaluationReason) PrerequisiteKey() string { return r.prerequisiteKey }

// ErrorKind returns the error category, valid only when Kind is ErrorKind.
func (r EvaluationReason) ErrorKind() EvalErrorKind { return r.errorKind }

// BigSegmentsStatus returns the big segment store status consulted during this evaluation, or ""
// if no unbounded segment was consulted.
func (r EvaluationReason) BigSegmentsStatus() BigSegmentsStatus { return r.bigSegmentsStatus }

// WithBigSegmentsStatus returns a copy of r with its BigSegmentsStatus set to status.
func (r EvaluationReason) WithBigSegmentsStatus(status BigSegmentsStatus) EvaluationReason {
	r.bigSegmentsStatus = status
	return r
}

// NewEvalReasonOff creates an OFF reason.
func NewEvalReasonOff() EvaluationReason { return EvaluationReason{kind: OffKind} }

// NewEvalReasonFallthrough creates a FALLTHROUGH reason.
func NewEvalReasonFallthrough() EvaluationReason { return EvaluationReason{kind: FallthroughKind} }

// NewEvalReasonTargetMatch creates a TARGET_MATCH reason.
func NewEvalReasonTargetMatch() EvaluationReason { return EvaluationReason{kind: TargetMatchKind} }

// NewEvalReasonRuleMatch creates a RULE_MATCH reason for the rule at ruleIndex with id ruleID.
func NewEvalReasonRuleMatch(ruleIndex int, ruleID string) EvaluationReason {
	return EvaluationReason{kind: RuleMatchKind, ruleIndex: ruleIndex, ruleID: ruleID}
}

// NewEvalReasonPrerequisiteFailed creates a PREREQUISITE_FAILED reason naming the prerequisite
// flag that failed.
func NewEvalReasonPrerequisiteFailed(prerequisiteKey string) EvaluationReason {
	return EvaluationReason{kind: PrerequisiteFailedKind, prerequisiteKey: prerequisiteKey}
}

// NewEvalReasonError creates an ERROR reason of the given kind.
func NewEvalReasonError(errKind EvalErrorKind) EvaluationReason {
	return EvaluationReason{kind: ErrorKind, errorKind: errKind}
}

// String returns a short human-readable description, e.g. "RULE_MATCH(1,rule-id)".
func (r EvaluationReason) String() string {
	switch r.kind {
	case RuleMatchKind:
		return string(r.kind) + "(" + itoa(r.ruleIndex) + "," + r.ruleID + ")"
	case PrerequisiteFailedKind:
		return string(r.kind) + "(" + r.prerequisiteKey + ")"
	case ErrorKind:
		return string(r.kind) + "(" + string(r.errorKind) + ")"
	default:
		return string(r.kind)
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

type reasonForMarshaling struct {
	Kind              Kind              `json:"kind"`
	RuleIndex         *int              `json:"ruleIndex,omitempty"`
	RuleID            string            `json:"ruleId,omitempty"`
	PrerequisiteKey   string            `json:"prerequisiteKey,omitempty"`
	ErrorKind         EvalErrorKind     `json:"errorKind,omitempty"`
	BigSegmentsStatus BigSegmentsStatus `json:"bigSegmentsStatus,omitempty"`
}

// MarshalJSON writes the reason's wire representation.
func (r EvaluationReason) MarshalJSON() ([]byte, error) {
	m := reasonForMarshaling{Kind: r.kind, BigSegmentsStatus: r.bigSegmentsStatus}
	switch r.kind {
	case RuleMatchKind:
		idx := r.ruleIndex
		m.RuleIndex = &idx
		m.RuleID = r.ruleID
	case PrerequisiteFailedKind:
		m.PrerequisiteKey = r.prerequisiteKey
	case ErrorKind:
		m.ErrorKind = r.errorKind
	}
	return json.Marshal(m)
}

// UnmarshalJSON parses a reason from its wire representation.
func (r *EvaluationReason) UnmarshalJSON(data []byte) error {
	var m reasonForMarshaling
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = EvaluationReason{
		kind:              m.Kind,
		ruleID:            m.RuleID,
		prerequisiteKey:   m.PrerequisiteKey,
		errorKind:         m.ErrorKind,
		bigSegmentsStatus: m.BigSegmentsStatus,
	}
	if m.RuleIndex != nil {
		r.ruleIndex = *m.RuleIndex
	}
	return nil
}
