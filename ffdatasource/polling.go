package ffdatasource

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/fluxflag/go-server-sdk/fflog"
	"github.com/fluxflag/go-server-sdk/ffstoretypes"
	"github.com/fluxflag/go-server-sdk/internal/datakinds"
)

// DefaultPollInterval is the interval PollingDataSource uses between GET requests if none is set.
const DefaultPollInterval = 30 * time.Second

// PollingDataSource keeps a Store up to date by periodically GETting a full snapshot. It relies on
// httpcache's transport to honor ETag/Last-Modified so an unchanged snapshot short-circuits to a
// 304 and skips the store write.
type PollingDataSource struct {
	store        ffstoretypes.Store
	baseURI      string
	sdkKey       string
	pollInterval time.Duration
	client       *http.Client
	loggers      fflog.Loggers

	closeOnce sync.Once
	closeCh   chan struct{}
}

// NewPollingDataSource constructs a PollingDataSource. baseURI should point at the polling
// service's base URI (e.g. "https://sdk.launchdarkly.com"); "/sdk/latest-all" is appended on every
// request.
func NewPollingDataSource(store ffstoretypes.Store, baseURI, sdkKey string, pollInterval time.Duration, loggers fflog.Loggers) *PollingDataSource {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &PollingDataSource{
		store:        store,
		baseURI:      baseURI,
		sdkKey:       sdkKey,
		pollInterval: pollInterval,
		client:       &http.Client{Transport: &httpcache.Transport{Cache: httpcache.NewMemoryCache(), MarkCachedResponses: true}},
		loggers:      loggers,
		closeCh:      make(chan struct{}),
	}
}

// Start polls once immediately and then every PollInterval until Close is called. It blocks the
// calling goroutine; callers typically invoke it with `go`.
func (p *PollingDataSource) Start() {
	for {
		if err := p.poll(); err != nil {
			p.loggers.Warnf("ffdatasource: poll failed: %s", err)
		}
		select {
		case <-p.closeCh:
			return
		case <-time.After(p.pollInterval):
		}
	}
}

func (p *PollingDataSource) poll() error {
	req, err := http.NewRequest(http.MethodGet, p.baseURI+"/sdk/latest-all", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", p.sdkKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// httpcache replaces a server 304 with the cached 200 response, marked with XFromCache.
	if resp.StatusCode == http.StatusNotModified || resp.Header.Get(httpcache.XFromCache) != "" {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected response status %d", resp.StatusCode)
	}

	var data putData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Errorf("malformed poll response: %w", err)
	}

	flagItems := make([]ffstoretypes.KeyedItemDescriptor, 0, len(data.Flags))
	for key, flag := range data.Flags {
		flagItems = append(flagItems, ffstoretypes.KeyedItemDescriptor{
			Key: key, Item: ffstoretypes.ItemDescriptor{Version: flag.Version, Item: flag},
		})
	}
	segmentItems := make([]ffstoretypes.KeyedItemDescriptor, 0, len(data.Segments))
	for key, segment := range data.Segments {
		segmentItems = append(segmentItems, ffstoretypes.KeyedItemDescriptor{
			Key: key, Item: ffstoretypes.ItemDescriptor{Version: segment.Version, Item: segment},
		})
	}
	return p.store.Init(datakinds.OrderCollectionsForInit([]ffstoretypes.Collection{
		{Kind: datakinds.Features, Items: flagItems},
		{Kind: datakinds.Segments, Items: segmentItems},
	}))
}

// Close stops polling.
func (p *PollingDataSource) Close() error {
	p.closeOnce.Do(func() { close(p.closeCh) })
	return nil
}
