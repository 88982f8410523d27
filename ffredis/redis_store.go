// Package ffredis is a Redis-backed ffstoretypes.PersistentStore, for use with
// ffcomponents.PersistentDataStore when flag/segment data should survive process restarts or be
// shared across multiple SDK instances.
package ffredis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fluxflag/go-server-sdk/ffstoretypes"
)

// DefaultURL is the Redis connection URL used if none is set via URL or Options.
const DefaultURL = "redis://localhost:6379"

// DefaultPrefix is the Redis key prefix used if none is set via Prefix.
const DefaultPrefix = "launchdarkly"

// Builder configures a Redis-backed PersistentStore.
type Builder struct {
	url    string
	prefix string
	opts   *redis.Options
	client *redis.Client
}

// DataStore returns a configuration builder with default settings: DefaultURL, DefaultPrefix, no
// pre-built client.
func DataStore() *Builder {
	return &Builder{url: DefaultURL, prefix: DefaultPrefix}
}

// URL sets the Redis connection URL, e.g. "redis://my-redis-host:6379". Passing "" resets to
// DefaultURL.
func (b *Builder) URL(url string) *Builder {
	if url == "" {
		url = DefaultURL
	}
	b.url = url
	return b
}

// HostAndPort is a shortcut for URL(fmt.Sprintf("redis://%s:%d", host, port)).
func (b *Builder) HostAndPort(host string, port int) *Builder {
	return b.URL(fmt.Sprintf("redis://%s:%d", host, port))
}

// Options sets the full go-redis client options, overriding URL.
func (b *Builder) Options(opts *redis.Options) *Builder {
	b.opts = opts
	return b
}

// Client supplies an already-constructed go-redis client, overriding URL/Options entirely.
func (b *Builder) Client(client *redis.Client) *Builder {
	b.client = client
	return b
}

// Prefix sets the prefix applied to every Redis key this store uses. Passing "" resets to
// DefaultPrefix.
func (b *Builder) Prefix(prefix string) *Builder {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	b.prefix = prefix
	return b
}

// Build constructs the Redis-backed PersistentStore. It does not contact Redis; connectivity
// failures surface on the first Init/Get/Upsert call, the same way the in-process store reports
// errors.
func (b *Builder) Build() (ffstoretypes.PersistentStore, error) {
	client := b.client
	if client == nil {
		opts := b.opts
		if opts == nil {
			parsed, err := redis.ParseURL(b.url)
			if err != nil {
				return nil, fmt.Errorf("ffredis: invalid URL %q: %w", b.url, err)
			}
			opts = parsed
		}
		client = redis.NewClient(opts)
	}
	return &Store{client: client, prefix: b.prefix}, nil
}

// Store is a Redis Hash-per-DataKind PersistentStore: each DataKind's items live in one Redis
// Hash keyed "<prefix>:<kindName>", with per-item hash fields keyed by item key. A separate string
// key "<prefix>:$inited" records whether Init has ever run, since an empty Hash is indistinguishable
// from a Hash that was never populated.
type Store struct {
	client *redis.Client
	prefix string
}

func (s *Store) hashKey(kind ffstoretypes.DataKind) string {
	return s.prefix + ":" + kind.GetName()
}

func (s *Store) initedKey() string {
	return s.prefix + ":$inited"
}

// Init replaces the contents of every given DataKind's Hash and marks the store initialized.
func (s *Store) Init(allData []ffstoretypes.SerializedCollection) error {
	ctx := context.Background()
	pipe := s.client.TxPipeline()
	for _, coll := range allData {
		key := s.hashKey(coll.Kind)
		pipe.Del(ctx, key)
		if len(coll.Items) > 0 {
			fields := make(map[string]interface{}, len(coll.Items))
			for _, item := range coll.Items {
				fields[item.Key] = encodeItem(item.Item)
			}
			pipe.HSet(ctx, key, fields)
		}
	}
	pipe.Set(ctx, s.initedKey(), "1", 0)
	_, err := pipe.Exec(ctx)
	return err
}

// Get returns a single item by key, or NotFoundSerialized if the hash field doesn't exist.
func (s *Store) Get(kind ffstoretypes.DataKind, key string) (ffstoretypes.SerializedItemDescriptor, error) {
	ctx := context.Background()
	raw, err := s.client.HGet(ctx, s.hashKey(kind), key).Result()
	if err == redis.Nil {
		return ffstoretypes.NotFoundSerialized(), nil
	}
	if err != nil {
		return ffstoretypes.NotFoundSerialized(), err
	}
	return decodeItem(raw), nil
}

// GetAll returns every item in kind's Hash.
func (s *Store) GetAll(kind ffstoretypes.DataKind) ([]ffstoretypes.KeyedSerializedItemDescriptor, error) {
	ctx := context.Background()
	raw, err := s.client.HGetAll(ctx, s.hashKey(kind)).Result()
	if err != nil {
		return nil, err
	}
	items := make([]ffstoretypes.KeyedSerializedItemDescriptor, 0, len(raw))
	for key, value := range raw {
		items = append(items, ffstoretypes.KeyedSerializedItemDescriptor{Key: key, Item: decodeItem(value)})
	}
	return items, nil
}

// Upsert writes newItem if no existing item has an equal or higher version, using WATCH/MULTI so
// concurrent writers racing on the same key don't clobber a newer version with an older one.
func (s *Store) Upsert(kind ffstoretypes.DataKind, key string, newItem ffstoretypes.SerializedItemDescriptor) (bool, error) {
	ctx := context.Background()
	hashKey := s.hashKey(kind)
	updated := false

	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, hashKey, key).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if err == nil {
			existing := decodeItem(raw)
			if existing.Version >= newItem.Version {
				updated = false
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hashKey, key, encodeItem(newItem))
			return nil
		})
		if err != nil {
			return err
		}
		updated = true
		return nil
	}

	err := s.client.Watch(ctx, txf, hashKey)
	return updated, err
}

// IsInitialized reports whether Init has ever been called against this database.
func (s *Store) IsInitialized() bool {
	ctx := context.Background()
	n, err := s.client.Exists(ctx, s.initedKey()).Result()
	return err == nil && n > 0
}

// IsStoreAvailable reports whether Redis currently answers a PING.
func (s *Store) IsStoreAvailable() bool {
	ctx := context.Background()
	return s.client.Ping(ctx).Err() == nil
}

// Close releases the underlying Redis connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
