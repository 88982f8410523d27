package ffredis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluxflag/go-server-sdk/ffstoretypes"
)

func TestBuilderDefaults(t *testing.T) {
	b := DataStore()
	assert.Equal(t, DefaultURL, b.url)
	assert.Equal(t, DefaultPrefix, b.prefix)
	assert.Nil(t, b.client)
	assert.Nil(t, b.opts)
}

func TestBuilderURL(t *testing.T) {
	b := DataStore().URL("redis://mine:1234")
	assert.Equal(t, "redis://mine:1234", b.url)

	b.URL("")
	assert.Equal(t, DefaultURL, b.url)
}

func TestBuilderHostAndPort(t *testing.T) {
	b := DataStore().HostAndPort("mine", 4000)
	assert.Equal(t, "redis://mine:4000", b.url)
}

func TestBuilderPrefix(t *testing.T) {
	b := DataStore().Prefix("myapp")
	assert.Equal(t, "myapp", b.prefix)

	b.Prefix("")
	assert.Equal(t, DefaultPrefix, b.prefix)
}

func TestBuildRejectsInvalidURL(t *testing.T) {
	_, err := DataStore().URL("not-a-url::").Build()
	assert.Error(t, err)
}

func TestEncodeDecodeItemRoundTrips(t *testing.T) {
	item := ffstoretypes.SerializedItemDescriptor{Version: 7, Deleted: false, SerializedItem: []byte(`{"key":"a"}`)}
	assert.Equal(t, item, decodeItem(encodeItem(item)))
}

func TestEncodeDecodeDeletedItem(t *testing.T) {
	item := ffstoretypes.SerializedItemDescriptor{Version: 9, Deleted: true, SerializedItem: nil}
	decoded := decodeItem(encodeItem(item))
	assert.Equal(t, 9, decoded.Version)
	assert.True(t, decoded.Deleted)
}

func TestDecodeMalformedFieldReturnsNotFound(t *testing.T) {
	decoded := decodeItem("garbage")
	assert.Equal(t, ffstoretypes.NotFoundSerialized(), decoded)
}
