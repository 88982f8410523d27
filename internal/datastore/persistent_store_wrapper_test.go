package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fluxflag/go-server-sdk/ffstoretypes"
	"github.com/fluxflag/go-server-sdk/fflog"
)

type fakePersistentStore struct {
	data        map[string]map[string]ffstoretypes.SerializedItemDescriptor
	initialized bool
	getCalls    int
}

func newFakePersistentStore() *fakePersistentStore {
	return &fakePersistentStore{data: map[string]map[string]ffstoretypes.SerializedItemDescriptor{}}
}

func (f *fakePersistentStore) Init(allData []ffstoretypes.SerializedCollection) error {
	f.data = map[string]map[string]ffstoretypes.SerializedItemDescriptor{}
	for _, coll := range allData {
		items := map[string]ffstoretypes.SerializedItemDescriptor{}
		for _, item := range coll.Items {
			items[item.Key] = item.Item
		}
		f.data[coll.Kind.GetName()] = items
	}
	f.initialized = true
	return nil
}

func (f *fakePersistentStore) Get(kind ffstoretypes.DataKind, key string) (ffstoretypes.SerializedItemDescriptor, error) {
	f.getCalls++
	if coll, ok := f.data[kind.GetName()]; ok {
		if item, ok := coll[key]; ok {
			return item, nil
		}
	}
	return ffstoretypes.NotFoundSerialized(), nil
}

func (f *fakePersistentStore) GetAll(kind ffstoretypes.DataKind) ([]ffstoretypes.KeyedSerializedItemDescriptor, error) {
	var out []ffstoretypes.KeyedSerializedItemDescriptor
	for k, v := range f.data[kind.GetName()] {
		out = append(out, ffstoretypes.KeyedSerializedItemDescriptor{Key: k, Item: v})
	}
	return out, nil
}

func (f *fakePersistentStore) Upsert(
	kind ffstoretypes.DataKind,
	key string,
	newItem ffstoretypes.SerializedItemDescriptor,
) (bool, error) {
	coll, ok := f.data[kind.GetName()]
	if !ok {
		coll = map[string]ffstoretypes.SerializedItemDescriptor{}
		f.data[kind.GetName()] = coll
	}
	if existing, ok := coll[key]; ok && existing.Version >= newItem.Version {
		return false, nil
	}
	coll[key] = newItem
	return true, nil
}

func (f *fakePersistentStore) IsInitialized() bool  { return f.initialized }
func (f *fakePersistentStore) IsStoreAvailable() bool { return true }
func (f *fakePersistentStore) Close() error           { return nil }

func TestPersistentStoreWrapperCachesReads(t *testing.T) {
	core := newFakePersistentStore()
	wrapper := NewPersistentStoreWrapper(core, time.Minute, fflog.Loggers{})

	assert.NoError(t, wrapper.Init([]ffstoretypes.Collection{
		{Kind: flagsKind, Items: []ffstoretypes.KeyedItemDescriptor{
			{Key: "flag1", Item: ffstoretypes.ItemDescriptor{Version: 1, Item: "payload"}},
		}},
	}))

	callsBefore := core.getCalls
	_, _ = wrapper.Get(flagsKind, "flag1")
	_, _ = wrapper.Get(flagsKind, "flag1")
	assert.Equal(t, callsBefore, core.getCalls, "cached reads should not hit the core store")
}

func TestPersistentStoreWrapperUpsertInvalidatesCache(t *testing.T) {
	core := newFakePersistentStore()
	wrapper := NewPersistentStoreWrapper(core, time.Minute, fflog.Loggers{})
	assert.NoError(t, wrapper.Init(nil))

	updated, err := wrapper.Upsert(flagsKind, "flag1", ffstoretypes.ItemDescriptor{Version: 1, Item: "v1"})
	assert.NoError(t, err)
	assert.True(t, updated)

	item, err := wrapper.Get(flagsKind, "flag1")
	assert.NoError(t, err)
	assert.Equal(t, "v1", item.Item)

	updated, err = wrapper.Upsert(flagsKind, "flag1", ffstoretypes.ItemDescriptor{Version: 1, Item: "stale"})
	assert.NoError(t, err)
	assert.False(t, updated)
}
