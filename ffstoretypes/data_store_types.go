// Package ffstoretypes defines the generic, namespace-agnostic item types the Store works with:
// DataKind distinguishes flags from segments without the store needing to know their structure.
package ffstoretypes

// DataKind identifies a namespace of storable items ("flags", "segments") and knows how to
// serialize/deserialize items of that kind for a persistent store.
type DataKind interface {
	GetName() string
	Serialize(item ItemDescriptor) []byte
	Deserialize(data []byte) (ItemDescriptor, error)
}

// ItemDescriptor is a versioned item, or a tombstone placeholder if Item is nil.
//
// Tombstones exist so that an update with version N that arrives after a deletion at version
// N+1 (out-of-order delivery) does not resurrect the item: Upsert always compares versions, never
// presence.
type ItemDescriptor struct {
	Version int
	Item    interface{}
}

// NotFound returns the sentinel value used to represent "no such item" (distinct from a
// tombstone, which has a real version).
func NotFound() ItemDescriptor {
	return ItemDescriptor{Version: -1, Item: nil}
}

// KeyedItemDescriptor pairs an item with its key, used when listing a whole DataKind.
type KeyedItemDescriptor struct {
	Key  string
	Item ItemDescriptor
}

// Collection is every item of one DataKind, used for Store.Init snapshots.
type Collection struct {
	Kind  DataKind
	Items []KeyedItemDescriptor
}

// SerializedItemDescriptor is the serialized form of ItemDescriptor, used by PersistentStore
// implementations that only deal in bytes.
type SerializedItemDescriptor struct {
	Version        int
	Deleted        bool
	SerializedItem []byte
}

// NotFoundSerialized returns the sentinel value used by persistent stores for "no such item".
func NotFoundSerialized() SerializedItemDescriptor {
	return SerializedItemDescriptor{Version: -1, SerializedItem: nil}
}
