package ffmodel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluxflag/go-server-sdk/ffvalue"
)

func TestFeatureFlagJSONRoundTrip(t *testing.T) {
	off := 1
	flag := FeatureFlag{
		Key: "flag-1",
		On:  true,
		Prerequisites: []Prerequisite{
			{Key: "flag-0", Variation: 0},
		},
		Targets: []Target{
			{Values: []string{"user-1"}, Variation: 0},
		},
		Rules: []FlagRule{
			{
				ID: "rule-1",
				VariationOrRollout: VariationOrRollout{
					Variation: intPtr(1),
				},
				Clauses: []Clause{
					{Attribute: "email", Op: OperatorEndsWith, Values: []ffvalue.Value{ffvalue.String("@example.com")}},
				},
			},
		},
		Fallthrough: VariationOrRollout{Variation: intPtr(0)},
		OffVariation: &off,
		Variations:   []ffvalue.Value{ffvalue.Bool(false), ffvalue.Bool(true)},
		Salt:         "abc123",
		Version:      4,
	}

	bytes, err := json.Marshal(flag)
	assert.NoError(t, err)

	var parsed FeatureFlag
	assert.NoError(t, json.Unmarshal(bytes, &parsed))
	assert.Equal(t, flag.Key, parsed.Key)
	assert.Equal(t, flag.Rules[0].Clauses[0].Op, parsed.Rules[0].Clauses[0].Op)
	assert.Equal(t, "flag-1", parsed.GetKey())
	assert.Equal(t, 4, parsed.GetVersion())
}

func TestRolloutWeightsShouldSumTo100000(t *testing.T) {
	r := Rollout{
		Variations: []WeightedVariation{
			{Variation: 0, Weight: 50000},
			{Variation: 1, Weight: 50000},
		},
	}
	total := 0
	for _, v := range r.Variations {
		total += v.Weight
	}
	assert.Equal(t, 100000, total)
}

func intPtr(i int) *int { return &i }
