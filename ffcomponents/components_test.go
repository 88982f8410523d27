package ffcomponents

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluxflag/go-server-sdk/fflog"
	"github.com/fluxflag/go-server-sdk/ffstoretypes"
)

func TestInMemoryDataStoreIsUsableImmediately(t *testing.T) {
	store := InMemoryDataStore(fflog.Loggers{})
	assert.NoError(t, store.Init(nil))
	assert.True(t, store.Initialized())
}

type fakePersistentStore struct {
	data   map[ffstoretypes.DataKind]map[string]ffstoretypes.SerializedItemDescriptor
	inited bool
}

func (f *fakePersistentStore) Init(allData []ffstoretypes.SerializedCollection) error {
	f.data = map[ffstoretypes.DataKind]map[string]ffstoretypes.SerializedItemDescriptor{}
	for _, coll := range allData {
		m := map[string]ffstoretypes.SerializedItemDescriptor{}
		for _, item := range coll.Items {
			m[item.Key] = item.Item
		}
		f.data[coll.Kind] = m
	}
	f.inited = true
	return nil
}

func (f *fakePersistentStore) Get(kind ffstoretypes.DataKind, key string) (ffstoretypes.SerializedItemDescriptor, error) {
	return f.data[kind][key], nil
}

func (f *fakePersistentStore) GetAll(kind ffstoretypes.DataKind) ([]ffstoretypes.KeyedSerializedItemDescriptor, error) {
	items := make([]ffstoretypes.KeyedSerializedItemDescriptor, 0, len(f.data[kind]))
	for key, item := range f.data[kind] {
		items = append(items, ffstoretypes.KeyedSerializedItemDescriptor{Key: key, Item: item})
	}
	return items, nil
}

func (f *fakePersistentStore) Upsert(kind ffstoretypes.DataKind, key string, newItem ffstoretypes.SerializedItemDescriptor) (bool, error) {
	if f.data == nil {
		f.data = map[ffstoretypes.DataKind]map[string]ffstoretypes.SerializedItemDescriptor{}
	}
	if f.data[kind] == nil {
		f.data[kind] = map[string]ffstoretypes.SerializedItemDescriptor{}
	}
	f.data[kind][key] = newItem
	return true, nil
}

func (f *fakePersistentStore) IsInitialized() bool   { return f.inited }
func (f *fakePersistentStore) IsStoreAvailable() bool { return true }
func (f *fakePersistentStore) Close() error           { return nil }

func TestPersistentDataStoreBuilderAppliesCacheSettings(t *testing.T) {
	core := &fakePersistentStore{}
	store := PersistentDataStore(core).CacheSeconds(30).Build(fflog.Loggers{})
	assert.NoError(t, store.Init(nil))
	assert.True(t, store.Initialized())
}

func TestNoCachingStillDelegatesReadsToCore(t *testing.T) {
	core := &fakePersistentStore{}
	store := PersistentDataStore(core).NoCaching().Build(fflog.Loggers{})
	assert.NoError(t, store.Init(nil))
	assert.True(t, store.Initialized())
}

func TestSendEventsBuilderDefaultsAreUsable(t *testing.T) {
	processor := SendEvents().Capacity(100).Build(fflog.Loggers{})
	defer processor.Close()
	processor.Flush()
}

func TestNoEventsDiscardsEverything(t *testing.T) {
	processor := NoEvents()
	defer processor.Close()
	processor.Flush()
}
