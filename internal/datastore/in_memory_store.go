// Package datastore implements the in-memory Store: a versioned, namespaced map guarded by a
// single RWMutex, plus the typed flag/segment lookup adapter the evaluator runs against.
package datastore

import (
	"sync"

	"github.com/fluxflag/go-server-sdk/ffstoretypes"
	"github.com/fluxflag/go-server-sdk/fflog"
)

// InMemoryStore is the default Store implementation: an in-process, versioned, namespaced map.
//
// Implementation notes: methods deliberately avoid defer for unlocking. Using defer adds a small
// but consistent overhead, and Get/Initialized in particular run on every evaluation. To make it
// safe to hold a lock without deferring the unlock, no method returns between the lock and the
// unlock, and nothing between them can panic.
type InMemoryStore struct {
	allData       map[ffstoretypes.DataKind]map[string]ffstoretypes.ItemDescriptor
	isInitialized bool
	sync.RWMutex
	loggers fflog.Loggers
}

// NewInMemoryStore creates an empty, uninitialized Store.
func NewInMemoryStore(loggers fflog.Loggers) *InMemoryStore {
	return &InMemoryStore{
		allData: make(map[ffstoretypes.DataKind]map[string]ffstoretypes.ItemDescriptor),
		loggers: loggers,
	}
}

// Init atomically replaces all contents with the given snapshot and marks the store initialized.
// Safe to call repeatedly.
func (s *InMemoryStore) Init(allData []ffstoretypes.Collection) error {
	s.Lock()

	s.allData = make(map[ffstoretypes.DataKind]map[string]ffstoretypes.ItemDescriptor)
	for _, coll := range allData {
		items := make(map[string]ffstoretypes.ItemDescriptor, len(coll.Items))
		for _, item := range coll.Items {
			items[item.Key] = item.Item
		}
		s.allData[coll.Kind] = items
	}
	s.isInitialized = true

	s.Unlock()
	return nil
}

// Get returns the live item for key in kind, or NotFound if absent or tombstoned.
func (s *InMemoryStore) Get(kind ffstoretypes.DataKind, key string) (ffstoretypes.ItemDescriptor, error) {
	s.RLock()

	var coll map[string]ffstoretypes.ItemDescriptor
	var item ffstoretypes.ItemDescriptor
	var ok bool
	coll, ok = s.allData[kind]
	if ok {
		item, ok = coll[key]
	}

	s.RUnlock()

	if ok && item.Item != nil {
		return item, nil
	}
	if s.loggers.IsDebugEnabled() {
		s.loggers.Debugf(`Key %s not found in "%s"`, key, kind.GetName())
	}
	return ffstoretypes.NotFound(), nil
}

// All returns every item currently stored for kind, live items and tombstones alike; callers
// filter tombstones by checking ItemDescriptor.Item == nil.
func (s *InMemoryStore) All(kind ffstoretypes.DataKind) ([]ffstoretypes.KeyedItemDescriptor, error) {
	s.RLock()

	var itemsOut []ffstoretypes.KeyedItemDescriptor
	if itemsMap, ok := s.allData[kind]; ok && len(itemsMap) > 0 {
		itemsOut = make([]ffstoretypes.KeyedItemDescriptor, 0, len(itemsMap))
		for key, item := range itemsMap {
			itemsOut = append(itemsOut, ffstoretypes.KeyedItemDescriptor{Key: key, Item: item})
		}
	}

	s.RUnlock()
	return itemsOut, nil
}

// Upsert applies newItem iff its version is strictly greater than any existing entry's version;
// ties lose. Tombstones (Item == nil) occupy the slot like any other versioned entry.
func (s *InMemoryStore) Upsert(
	kind ffstoretypes.DataKind,
	key string,
	newItem ffstoretypes.ItemDescriptor,
) (bool, error) {
	s.Lock()

	var coll map[string]ffstoretypes.ItemDescriptor
	var ok bool
	shouldUpdate := true
	updated := false
	if coll, ok = s.allData[kind]; ok {
		if item, ok := coll[key]; ok && item.Version >= newItem.Version {
			shouldUpdate = false
		}
	} else {
		s.allData[kind] = map[string]ffstoretypes.ItemDescriptor{key: newItem}
		shouldUpdate = false // the map above already contains the new item
		updated = true
	}
	if shouldUpdate {
		coll[key] = newItem
		updated = true
	}

	s.Unlock()
	return updated, nil
}

// Initialized reports whether Init has been called at least once.
func (s *InMemoryStore) Initialized() bool {
	s.RLock()
	ret := s.isInitialized
	s.RUnlock()
	return ret
}

// Destroy releases the store's contents. The in-memory store holds no external resources, so
// this just drops references for the garbage collector.
func (s *InMemoryStore) Destroy() error {
	s.Lock()
	s.allData = nil
	s.isInitialized = false
	s.Unlock()
	return nil
}
