package ffdatasource

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fluxflag/go-server-sdk/fflog"
	"github.com/fluxflag/go-server-sdk/internal/datakinds"
	"github.com/fluxflag/go-server-sdk/internal/datastore"
)

func TestPollPopulatesStoreFromServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"flags":{"a":{"key":"a","version":1,"on":true}},"segments":{}}`))
	}))
	defer server.Close()

	store := datastore.NewInMemoryStore(fflog.Loggers{})
	source := NewPollingDataSource(store, server.URL, "sdk-key", time.Minute, fflog.Loggers{})

	assert.NoError(t, source.poll())
	assert.True(t, store.Initialized())
	item, err := store.Get(datakinds.Features, "a")
	assert.NoError(t, err)
	assert.NotNil(t, item.Item)
}

func TestPollReturnsErrorOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	store := datastore.NewInMemoryStore(fflog.Loggers{})
	source := NewPollingDataSource(store, server.URL, "sdk-key", time.Minute, fflog.Loggers{})

	assert.Error(t, source.poll())
}

func TestDefaultPollIntervalAppliedWhenNonPositive(t *testing.T) {
	store := datastore.NewInMemoryStore(fflog.Loggers{})
	source := NewPollingDataSource(store, "https://example.com", "sdk-key", 0, fflog.Loggers{})
	assert.Equal(t, DefaultPollInterval, source.pollInterval)
}
