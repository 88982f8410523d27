package ffcomponents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fluxflag/go-server-sdk/fflog"
	"github.com/fluxflag/go-server-sdk/ffstoretypes"
)

type fakeBigSegmentStore struct{}

func (fakeBigSegmentStore) GetMetadata() (ffstoretypes.BigSegmentStoreMetadata, error) {
	return ffstoretypes.BigSegmentStoreMetadata{LastUpToDate: time.Now().UnixMilli()}, nil
}

func (fakeBigSegmentStore) GetUserMembership(userHash string) (ffstoretypes.BigSegmentMembership, error) {
	return nil, nil
}

func (fakeBigSegmentStore) Close() error { return nil }

func TestBigSegmentsBuilderWithNilStoreBuildsNothing(t *testing.T) {
	manager, provider := BigSegments(nil).Build(fflog.Loggers{})
	assert.Nil(t, manager)
	assert.Nil(t, provider)
}

func TestBigSegmentsBuilderAppliesSettings(t *testing.T) {
	manager, provider := BigSegments(fakeBigSegmentStore{}).
		UserCacheSize(10).
		UserCacheTime(time.Minute).
		StatusPollInterval(time.Millisecond).
		StaleAfter(time.Hour).
		Build(fflog.Loggers{})
	assert.NotNil(t, manager)
	assert.NotNil(t, provider)
	defer manager.Close()

	membership, status := provider.GetUserMembership("userkey1")
	assert.Nil(t, membership)
	assert.NotEmpty(t, status)
}
