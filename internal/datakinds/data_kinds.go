// Package datakinds defines the ffstoretypes.DataKind implementations for the SDK's two built-in
// namespaces, flags and segments, used throughout the SDK to talk to the Store generically.
package datakinds

import (
	"encoding/json"

	"github.com/fluxflag/go-server-sdk/ffmodel"
	"github.com/fluxflag/go-server-sdk/ffstoretypes"
)

// deletedItemPlaceholderKey fills the Key field of a serialized tombstone so that persistent
// stores which round-trip through JSON never see a flag or segment with an empty key.
const deletedItemPlaceholderKey = "$deleted"

type featureFlagDataKind struct{}
type segmentDataKind struct{}

// Features is the DataKind for feature flags.
var Features ffstoretypes.DataKind = featureFlagDataKind{}

// Segments is the DataKind for user segments.
var Segments ffstoretypes.DataKind = segmentDataKind{}

// AllDataKinds returns every DataKind the Store knows about.
func AllDataKinds() []ffstoretypes.DataKind {
	return []ffstoretypes.DataKind{Features, Segments}
}

func (featureFlagDataKind) GetName() string { return "flags" }

func (featureFlagDataKind) Serialize(item ffstoretypes.ItemDescriptor) []byte {
	if item.Item == nil {
		flag := ffmodel.FeatureFlag{Key: deletedItemPlaceholderKey, Version: item.Version, Deleted: true}
		bytes, _ := json.Marshal(flag)
		return bytes
	}
	if flag, ok := item.Item.(*ffmodel.FeatureFlag); ok {
		bytes, _ := json.Marshal(flag)
		return bytes
	}
	return nil
}

func (featureFlagDataKind) Deserialize(data []byte) (ffstoretypes.ItemDescriptor, error) {
	var flag ffmodel.FeatureFlag
	if err := json.Unmarshal(data, &flag); err != nil {
		return ffstoretypes.ItemDescriptor{}, err
	}
	if flag.Deleted {
		return ffstoretypes.ItemDescriptor{Version: flag.Version}, nil
	}
	return ffstoretypes.ItemDescriptor{Version: flag.Version, Item: &flag}, nil
}

func (sk featureFlagDataKind) String() string { return sk.GetName() }

func (segmentDataKind) GetName() string { return "segments" }

func (segmentDataKind) Serialize(item ffstoretypes.ItemDescriptor) []byte {
	if item.Item == nil {
		segment := ffmodel.Segment{Key: deletedItemPlaceholderKey, Version: item.Version, Deleted: true}
		bytes, _ := json.Marshal(segment)
		return bytes
	}
	if segment, ok := item.Item.(*ffmodel.Segment); ok {
		bytes, _ := json.Marshal(segment)
		return bytes
	}
	return nil
}

func (segmentDataKind) Deserialize(data []byte) (ffstoretypes.ItemDescriptor, error) {
	var segment ffmodel.Segment
	if err := json.Unmarshal(data, &segment); err != nil {
		return ffstoretypes.ItemDescriptor{}, err
	}
	if segment.Deleted {
		return ffstoretypes.ItemDescriptor{Version: segment.Version}, nil
	}
	return ffstoretypes.ItemDescriptor{Version: segment.Version, Item: &segment}, nil
}

func (sk segmentDataKind) String() string { return sk.GetName() }
