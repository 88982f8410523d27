package ffreason

import "github.com/fluxflag/go-server-sdk/ffvalue"

// NoVariation is the VariationIndex value used when no variation was selected (the default value
// was returned).
const NoVariation = -1

// EvaluationDetail combines an evaluation's result value with the reason it was produced.
type EvaluationDetail struct {
	Value          ffvalue.Value
	VariationIndex int
	Reason         EvaluationReason
}

// IsDefaultValue reports whether no variation was selected, i.e. the caller's default was returned.
func (d EvaluationDetail) IsDefaultValue() bool {
	return d.VariationIndex == NoVariation
}

// NewEvaluationDetail creates an EvaluationDetail for a value that came from a specific variation.
func NewEvaluationDetail(value ffvalue.Value, variationIndex int, reason EvaluationReason) EvaluationDetail {
	return EvaluationDetail{Value: value, VariationIndex: variationIndex, Reason: reason}
}

// NewEvaluationDetailForError creates an EvaluationDetail representing an evaluation error: the
// default value is returned with VariationIndex = NoVariation.
func NewEvaluationDetailForError(errKind EvalErrorKind, defaultValue ffvalue.Value) EvaluationDetail {
	return EvaluationDetail{Value: defaultValue, VariationIndex: NoVariation, Reason: NewEvalReasonError(errKind)}
}
