// Package ffcomponents provides configuration builders for the pluggable pieces of a Client: the
// data store and the event processor. These mirror the factory/builder pattern used throughout the
// SDK's configuration surface, but build concrete ffstoretypes.Store / ffevents.EventProcessor
// values directly rather than going through a ClientContext-based factory indirection, since
// ffclient.NewClient takes already-constructed values.
package ffcomponents

import (
	"time"

	"github.com/fluxflag/go-server-sdk/ffstoretypes"
	"github.com/fluxflag/go-server-sdk/fflog"
	"github.com/fluxflag/go-server-sdk/internal/datastore"
)

// PersistentDataStoreDefaultCacheTime is the default in-memory cache TTL used by PersistentDataStore.
const PersistentDataStoreDefaultCacheTime = 15 * time.Second

// InMemoryDataStore builds the default in-memory Store. This is what NewClient uses if no other
// store is specified.
func InMemoryDataStore(loggers fflog.Loggers) ffstoretypes.Store {
	return datastore.NewInMemoryStore(loggers)
}

// PersistentDataStoreBuilder configures a database-backed Store built on top of a
// ffstoretypes.PersistentStore adapter (such as one from package ffredis), adding the universal
// read-cache behavior every persistent store gets regardless of which database backs it.
type PersistentDataStoreBuilder struct {
	core     ffstoretypes.PersistentStore
	cacheTTL time.Duration
}

// PersistentDataStore returns a configuration builder wrapping core. The default cache TTL is
// PersistentDataStoreDefaultCacheTime; use CacheTime/CacheSeconds/CacheForever/NoCaching to change it.
//
//	store := ffcomponents.PersistentDataStore(ffredis.NewStore(redisOptions...)).CacheSeconds(30).Build(loggers)
func PersistentDataStore(core ffstoretypes.PersistentStore) *PersistentDataStoreBuilder {
	return &PersistentDataStoreBuilder{core: core, cacheTTL: PersistentDataStoreDefaultCacheTime}
}

// CacheTime sets the read-cache TTL. Zero disables caching; negative caches forever.
func (b *PersistentDataStoreBuilder) CacheTime(cacheTime time.Duration) *PersistentDataStoreBuilder {
	b.cacheTTL = cacheTime
	return b
}

// CacheSeconds is a shortcut for CacheTime with a duration in seconds.
func (b *PersistentDataStoreBuilder) CacheSeconds(seconds int) *PersistentDataStoreBuilder {
	return b.CacheTime(time.Duration(seconds) * time.Second)
}

// CacheForever specifies that cached items never expire on their own; they're only replaced by a
// later Init or Upsert.
func (b *PersistentDataStoreBuilder) CacheForever() *PersistentDataStoreBuilder {
	return b.CacheTime(-1 * time.Millisecond)
}

// NoCaching disables the read cache entirely: every read round-trips to the underlying store.
func (b *PersistentDataStoreBuilder) NoCaching() *PersistentDataStoreBuilder {
	return b.CacheTime(0)
}

// Build constructs the wrapped Store.
func (b *PersistentDataStoreBuilder) Build(loggers fflog.Loggers) ffstoretypes.Store {
	return datastore.NewPersistentStoreWrapper(b.core, b.cacheTTL, loggers)
}
