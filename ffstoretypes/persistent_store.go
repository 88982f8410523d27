package ffstoretypes

// PersistentStore is the interface a database-backed store adapter (e.g. the Redis adapter)
// implements. The SDK wraps it in a caching layer so that callers always see the generic
// ItemDescriptor/Collection types; PersistentStore itself only deals in serialized bytes.
type PersistentStore interface {
	Init(allData []SerializedCollection) error
	Get(kind DataKind, key string) (SerializedItemDescriptor, error)
	GetAll(kind DataKind) ([]KeyedSerializedItemDescriptor, error)
	Upsert(kind DataKind, key string, newItem SerializedItemDescriptor) (bool, error)
	IsInitialized() bool
	IsStoreAvailable() bool
	Close() error
}

// KeyedSerializedItemDescriptor pairs a serialized item with its key.
type KeyedSerializedItemDescriptor struct {
	Key  string
	Item SerializedItemDescriptor
}

// SerializedCollection is every serialized item of one DataKind.
type SerializedCollection struct {
	Kind  DataKind
	Items []KeyedSerializedItemDescriptor
}
