package ffreason

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluxflag/go-server-sdk/ffvalue"
)

func TestReasonJSONRoundTrip(t *testing.T) {
	reasons := []EvaluationReason{
		NewEvalReasonOff(),
		NewEvalReasonFallthrough(),
		NewEvalReasonTargetMatch(),
		NewEvalReasonRuleMatch(2, "rule-id"),
		NewEvalReasonPrerequisiteFailed("other-flag"),
		NewEvalReasonError(MalformedFlagErrorKind),
		NewEvalReasonFallthrough().WithBigSegmentsStatus(BigSegmentsStale),
	}
	for _, r := range reasons {
		bytes, err := json.Marshal(r)
		assert.NoError(t, err)
		var parsed EvaluationReason
		assert.NoError(t, json.Unmarshal(bytes, &parsed))
		assert.Equal(t, r, parsed)
	}
}

func TestWithBigSegmentsStatusDoesNotMutateOriginal(t *testing.T) {
	original := NewEvalReasonFallthrough()
	updated := original.WithBigSegmentsStatus(BigSegmentsHealthy)
	assert.Equal(t, BigSegmentsStatus(""), original.BigSegmentsStatus())
	assert.Equal(t, BigSegmentsHealthy, updated.BigSegmentsStatus())
}

func TestDetailIsDefaultValue(t *testing.T) {
	d := NewEvaluationDetailForError(FlagNotFoundErrorKind, ffvalue.Bool(false))
	assert.True(t, d.IsDefaultValue())

	d2 := NewEvaluationDetail(ffvalue.Bool(true), 0, NewEvalReasonOff())
	assert.False(t, d2.IsDefaultValue())
}
