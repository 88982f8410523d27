package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluxflag/go-server-sdk/ffstoretypes"
	"github.com/fluxflag/go-server-sdk/fflog"
)

type testKind struct{ name string }

func (k testKind) GetName() string { return k.name }
func (k testKind) Serialize(item ffstoretypes.ItemDescriptor) []byte {
	return nil
}
func (k testKind) Deserialize(data []byte) (ffstoretypes.ItemDescriptor, error) {
	return ffstoretypes.ItemDescriptor{}, nil
}

var flagsKind = testKind{name: "flags"}

func TestInitRoundTrip(t *testing.T) {
	store := NewInMemoryStore(fflog.Loggers{})
	assert.False(t, store.Initialized())

	snapshot := []ffstoretypes.Collection{
		{
			Kind: flagsKind,
			Items: []ffstoretypes.KeyedItemDescriptor{
				{Key: "flag1", Item: ffstoretypes.ItemDescriptor{Version: 1, Item: "payload"}},
			},
		},
	}
	assert.NoError(t, store.Init(snapshot))
	assert.True(t, store.Initialized())

	all, err := store.All(flagsKind)
	assert.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, "flag1", all[0].Key)
}

func TestUpsertIgnoresOlderOrEqualVersion(t *testing.T) {
	store := NewInMemoryStore(fflog.Loggers{})
	_, _ = store.Upsert(flagsKind, "flag1", ffstoretypes.ItemDescriptor{Version: 5, Item: "v5"})

	updated, _ := store.Upsert(flagsKind, "flag1", ffstoretypes.ItemDescriptor{Version: 5, Item: "tie"})
	assert.False(t, updated)

	updated, _ = store.Upsert(flagsKind, "flag1", ffstoretypes.ItemDescriptor{Version: 4, Item: "older"})
	assert.False(t, updated)

	item, _ := store.Get(flagsKind, "flag1")
	assert.Equal(t, "v5", item.Item)

	updated, _ = store.Upsert(flagsKind, "flag1", ffstoretypes.ItemDescriptor{Version: 6, Item: "v6"})
	assert.True(t, updated)
	item, _ = store.Get(flagsKind, "flag1")
	assert.Equal(t, "v6", item.Item)
}

func TestTombstoneBlocksOlderUpsertAndReadsAsNotFound(t *testing.T) {
	store := NewInMemoryStore(fflog.Loggers{})
	_, _ = store.Upsert(flagsKind, "flag1", ffstoretypes.ItemDescriptor{Version: 3, Item: "v3"})
	_, _ = store.Upsert(flagsKind, "flag1", ffstoretypes.ItemDescriptor{Version: 4, Item: nil}) // tombstone

	item, _ := store.Get(flagsKind, "flag1")
	assert.Nil(t, item.Item)

	updated, _ := store.Upsert(flagsKind, "flag1", ffstoretypes.ItemDescriptor{Version: 3, Item: "resurrected"})
	assert.False(t, updated)
}

func TestGetMissingKeyReturnsNotFound(t *testing.T) {
	store := NewInMemoryStore(fflog.Loggers{})
	item, err := store.Get(flagsKind, "nope")
	assert.NoError(t, err)
	assert.Equal(t, ffstoretypes.NotFound(), item)
}
