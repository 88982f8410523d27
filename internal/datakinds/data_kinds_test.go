package datakinds

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluxflag/go-server-sdk/ffmodel"
	"github.com/fluxflag/go-server-sdk/ffstoretypes"
)

func TestFeatureFlagSerializeRoundTrip(t *testing.T) {
	flag := &ffmodel.FeatureFlag{Key: "flag1", Version: 3, On: true}
	bytes := Features.Serialize(ffstoretypes.ItemDescriptor{Version: 3, Item: flag})

	item, err := Features.Deserialize(bytes)
	assert.NoError(t, err)
	assert.Equal(t, 3, item.Version)
	assert.Equal(t, "flag1", item.Item.(*ffmodel.FeatureFlag).Key)
}

func TestFeatureFlagTombstoneRoundTrip(t *testing.T) {
	bytes := Features.Serialize(ffstoretypes.ItemDescriptor{Version: 5, Item: nil})

	item, err := Features.Deserialize(bytes)
	assert.NoError(t, err)
	assert.Equal(t, 5, item.Version)
	assert.Nil(t, item.Item)
}

func TestSegmentSerializeRoundTrip(t *testing.T) {
	segment := &ffmodel.Segment{Key: "seg1", Version: 2}
	bytes := Segments.Serialize(ffstoretypes.ItemDescriptor{Version: 2, Item: segment})

	item, err := Segments.Deserialize(bytes)
	assert.NoError(t, err)
	assert.Equal(t, "seg1", item.Item.(*ffmodel.Segment).Key)
}

func TestAllDataKinds(t *testing.T) {
	kinds := AllDataKinds()
	assert.Len(t, kinds, 2)
}
