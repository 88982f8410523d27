package datastore

import (
	"github.com/fluxflag/go-server-sdk/ffeval"
	"github.com/fluxflag/go-server-sdk/ffmodel"
	"github.com/fluxflag/go-server-sdk/ffstoretypes"
	"github.com/fluxflag/go-server-sdk/internal/datakinds"
)

// EvaluatorDataProvider adapts a Store into ffeval.DataProvider, so the evaluator can resolve
// prerequisite flags and segmentMatch targets without knowing how they're stored.
type EvaluatorDataProvider struct {
	Store ffstoretypes.Store
}

var _ ffeval.DataProvider = EvaluatorDataProvider{}

// GetFeatureFlag looks up a flag by key, returning nil if not found or deleted.
func (p EvaluatorDataProvider) GetFeatureFlag(key string) *ffmodel.FeatureFlag {
	item, err := p.Store.Get(datakinds.Features, key)
	if err != nil || item.Item == nil {
		return nil
	}
	flag, ok := item.Item.(*ffmodel.FeatureFlag)
	if !ok {
		return nil
	}
	return flag
}

// GetSegment looks up a segment by key, returning nil if not found or deleted.
func (p EvaluatorDataProvider) GetSegment(key string) *ffmodel.Segment {
	item, err := p.Store.Get(datakinds.Segments, key)
	if err != nil || item.Item == nil {
		return nil
	}
	segment, ok := item.Item.(*ffmodel.Segment)
	if !ok {
		return nil
	}
	return segment
}
