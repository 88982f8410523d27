package datastore

import (
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/singleflight"

	"github.com/fluxflag/go-server-sdk/ffstoretypes"
	"github.com/fluxflag/go-server-sdk/fflog"
)

// PersistentStoreWrapper adapts a ffstoretypes.PersistentStore (a database-backed adapter dealing
// only in serialized bytes) into a ffstoretypes.Store, adding an in-process read cache so that
// evaluation-path reads don't round-trip to the database on every call.
//
// Concurrent callers asking for the same missing cache entry are coalesced with singleflight so a
// cache stampede doesn't turn into a thundering herd against the database.
type PersistentStoreWrapper struct {
	core     ffstoretypes.PersistentStore
	cache    *gocache.Cache
	cacheTTL time.Duration
	requests singleflight.Group
	loggers  fflog.Loggers
	inited   bool
	initLock sync.RWMutex
}

const initCheckedKey = "$initChecked"

// NewPersistentStoreWrapper wraps core with a read cache of the given TTL. A zero TTL disables
// caching entirely; a negative TTL caches forever (until an Upsert invalidates an entry).
func NewPersistentStoreWrapper(
	core ffstoretypes.PersistentStore,
	cacheTTL time.Duration,
	loggers fflog.Loggers,
) *PersistentStoreWrapper {
	var myCache *gocache.Cache
	if cacheTTL != 0 {
		myCache = gocache.New(cacheTTL, 5*time.Minute)
	}
	return &PersistentStoreWrapper{core: core, cache: myCache, cacheTTL: cacheTTL, loggers: loggers}
}

// Init replaces the database's contents and the read cache together.
func (w *PersistentStoreWrapper) Init(allData []ffstoretypes.Collection) error {
	err := w.initCore(allData)
	if w.cache != nil {
		w.cache.Flush()
	}
	if err != nil && !w.hasInfiniteCache() {
		return err
	}
	if w.cache != nil {
		for _, coll := range allData {
			w.cacheItems(coll.Kind, coll.Items)
		}
	}
	w.initLock.Lock()
	w.inited = true
	w.initLock.Unlock()
	return err
}

// Get returns a single item, preferring the cache and coalescing concurrent misses.
func (w *PersistentStoreWrapper) Get(kind ffstoretypes.DataKind, key string) (ffstoretypes.ItemDescriptor, error) {
	if w.cache == nil {
		item, err := w.getAndDeserializeItem(kind, key)
		w.logError(err)
		return item, err
	}
	cacheKey := itemCacheKey(kind, key)
	if data, present := w.cache.Get(cacheKey); present {
		if item, ok := data.(ffstoretypes.ItemDescriptor); ok {
			return item, nil
		}
	}
	reqKey := fmt.Sprintf("get:%s:%s", kind.GetName(), key)
	itemIntf, err, _ := w.requests.Do(reqKey, func() (interface{}, error) {
		item, err := w.getAndDeserializeItem(kind, key)
		w.logError(err)
		if err != nil {
			return nil, err
		}
		w.cache.Set(cacheKey, item, gocache.DefaultExpiration)
		return item, nil
	})
	if err != nil || itemIntf == nil {
		return ffstoretypes.NotFound(), err
	}
	return itemIntf.(ffstoretypes.ItemDescriptor), nil
}

// All returns every item of kind, preferring the cache and coalescing concurrent misses.
func (w *PersistentStoreWrapper) All(kind ffstoretypes.DataKind) ([]ffstoretypes.KeyedItemDescriptor, error) {
	if w.cache == nil {
		items, err := w.getAllAndDeserialize(kind)
		w.logError(err)
		return items, err
	}
	cacheKey := allItemsCacheKey(kind)
	if data, present := w.cache.Get(cacheKey); present {
		if items, ok := data.([]ffstoretypes.KeyedItemDescriptor); ok {
			return items, nil
		}
	}
	reqKey := "all:" + kind.GetName()
	itemsIntf, err, _ := w.requests.Do(reqKey, func() (interface{}, error) {
		items, err := w.getAllAndDeserialize(kind)
		w.logError(err)
		if err != nil {
			return nil, err
		}
		w.cache.Set(cacheKey, items, gocache.DefaultExpiration)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return itemsIntf.([]ffstoretypes.KeyedItemDescriptor), nil
}

// Upsert writes through to the database, then updates or invalidates the cache to match.
func (w *PersistentStoreWrapper) Upsert(
	kind ffstoretypes.DataKind,
	key string,
	newItem ffstoretypes.ItemDescriptor,
) (bool, error) {
	serialized := w.serialize(kind, newItem)
	updated, err := w.core.Upsert(kind, key, serialized)
	w.logError(err)
	if err != nil && !w.hasInfiniteCache() {
		return updated, err
	}
	if w.cache == nil {
		return updated, err
	}
	cacheKey := itemCacheKey(kind, key)
	allCacheKey := allItemsCacheKey(kind)
	if !updated {
		// Someone else updated the item concurrently; drop our view and reread on next access.
		w.cache.Delete(cacheKey)
		w.cache.Delete(allCacheKey)
		return updated, err
	}
	w.cache.Set(cacheKey, newItem, gocache.DefaultExpiration)
	if w.hasInfiniteCache() {
		if data, present := w.cache.Get(allCacheKey); present {
			if items, ok := data.([]ffstoretypes.KeyedItemDescriptor); ok {
				w.cache.Set(allCacheKey, updateSingleItem(items, key, newItem), gocache.DefaultExpiration)
			}
		}
	} else {
		w.cache.Delete(allCacheKey)
	}
	return updated, err
}

// Initialized reports whether Init has succeeded at least once, checking the database directly
// once the cache's last-known answer might be stale.
func (w *PersistentStoreWrapper) Initialized() bool {
	w.initLock.RLock()
	previous := w.inited
	w.initLock.RUnlock()
	if previous {
		return true
	}
	if w.cache != nil {
		if _, found := w.cache.Get(initCheckedKey); found {
			return false
		}
	}
	current := w.core.IsInitialized()
	if current {
		w.initLock.Lock()
		w.inited = true
		w.initLock.Unlock()
		if w.cache != nil {
			w.cache.Delete(initCheckedKey)
		}
	} else if w.cache != nil {
		w.cache.Set(initCheckedKey, "", gocache.DefaultExpiration)
	}
	return current
}

// Destroy closes the underlying database connection.
func (w *PersistentStoreWrapper) Destroy() error {
	return w.core.Close()
}

func (w *PersistentStoreWrapper) hasInfiniteCache() bool {
	return w.cache != nil && w.cacheTTL < 0
}

func itemCacheKey(kind ffstoretypes.DataKind, key string) string {
	return kind.GetName() + ":" + key
}

func allItemsCacheKey(kind ffstoretypes.DataKind) string {
	return "all:" + kind.GetName()
}

func (w *PersistentStoreWrapper) initCore(allData []ffstoretypes.Collection) error {
	serializedAllData := make([]ffstoretypes.SerializedCollection, 0, len(allData))
	for _, coll := range allData {
		serializedAllData = append(serializedAllData, ffstoretypes.SerializedCollection{
			Kind:  coll.Kind,
			Items: w.serializeAll(coll.Kind, coll.Items),
		})
	}
	err := w.core.Init(serializedAllData)
	w.logError(err)
	return err
}

func (w *PersistentStoreWrapper) getAndDeserializeItem(
	kind ffstoretypes.DataKind,
	key string,
) (ffstoretypes.ItemDescriptor, error) {
	serializedItem, err := w.core.Get(kind, key)
	if err != nil {
		return ffstoretypes.NotFound(), err
	}
	return w.deserialize(kind, serializedItem)
}

func (w *PersistentStoreWrapper) getAllAndDeserialize(
	kind ffstoretypes.DataKind,
) ([]ffstoretypes.KeyedItemDescriptor, error) {
	serializedItems, err := w.core.GetAll(kind)
	if err != nil {
		return nil, err
	}
	ret := make([]ffstoretypes.KeyedItemDescriptor, 0, len(serializedItems))
	for _, serializedItem := range serializedItems {
		item, err := w.deserialize(kind, serializedItem.Item)
		if err != nil {
			return nil, err
		}
		ret = append(ret, ffstoretypes.KeyedItemDescriptor{Key: serializedItem.Key, Item: item})
	}
	return ret, nil
}

func (w *PersistentStoreWrapper) cacheItems(kind ffstoretypes.DataKind, items []ffstoretypes.KeyedItemDescriptor) {
	copyOfItems := slices.Clone(items)
	w.cache.Set(allItemsCacheKey(kind), copyOfItems, gocache.DefaultExpiration)
	for _, item := range items {
		w.cache.Set(itemCacheKey(kind, item.Key), item.Item, gocache.DefaultExpiration)
	}
}

func (w *PersistentStoreWrapper) serialize(
	kind ffstoretypes.DataKind,
	item ffstoretypes.ItemDescriptor,
) ffstoretypes.SerializedItemDescriptor {
	return ffstoretypes.SerializedItemDescriptor{
		Version:        item.Version,
		Deleted:        item.Item == nil,
		SerializedItem: kind.Serialize(item),
	}
}

func (w *PersistentStoreWrapper) serializeAll(
	kind ffstoretypes.DataKind,
	items []ffstoretypes.KeyedItemDescriptor,
) []ffstoretypes.KeyedSerializedItemDescriptor {
	ret := make([]ffstoretypes.KeyedSerializedItemDescriptor, 0, len(items))
	for _, item := range items {
		ret = append(ret, ffstoretypes.KeyedSerializedItemDescriptor{Key: item.Key, Item: w.serialize(kind, item.Item)})
	}
	return ret
}

func (w *PersistentStoreWrapper) deserialize(
	kind ffstoretypes.DataKind,
	s ffstoretypes.SerializedItemDescriptor,
) (ffstoretypes.ItemDescriptor, error) {
	if s.Deleted || s.SerializedItem == nil {
		return ffstoretypes.ItemDescriptor{Version: s.Version}, nil
	}
	deserialized, err := kind.Deserialize(s.SerializedItem)
	if err != nil {
		return ffstoretypes.NotFound(), err
	}
	if s.Version == 0 || s.Version == deserialized.Version {
		return deserialized, nil
	}
	// The database's recorded version wins over whatever version is encoded in the payload.
	return ffstoretypes.ItemDescriptor{Version: s.Version, Item: deserialized.Item}, nil
}

func updateSingleItem(
	items []ffstoretypes.KeyedItemDescriptor,
	key string,
	newItem ffstoretypes.ItemDescriptor,
) []ffstoretypes.KeyedItemDescriptor {
	found := false
	ret := make([]ffstoretypes.KeyedItemDescriptor, 0, len(items))
	for _, item := range items {
		if item.Key == key {
			ret = append(ret, ffstoretypes.KeyedItemDescriptor{Key: key, Item: newItem})
			found = true
		} else {
			ret = append(ret, item)
		}
	}
	if !found {
		ret = append(ret, ffstoretypes.KeyedItemDescriptor{Key: key, Item: newItem})
	}
	return ret
}

func (w *PersistentStoreWrapper) logError(err error) {
	if err != nil {
		w.loggers.Errorf("data store returned error: %s", err.Error())
	}
}
