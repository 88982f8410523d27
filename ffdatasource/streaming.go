// Package ffdatasource supplies real, network-facing collaborators that populate a
// ffstoretypes.Store: a streaming (SSE) data source and a polling (HTTP GET) data source. Their
// retry/backoff policy is intentionally minimal — spec.md places the data source's internals out
// of scope, so these exist to exercise Store.Init/Upsert end to end rather than to fully replicate
// a production delivery pipeline.
package ffdatasource

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	es "github.com/launchdarkly/eventsource"

	"github.com/fluxflag/go-server-sdk/ffmodel"
	"github.com/fluxflag/go-server-sdk/fflog"
	"github.com/fluxflag/go-server-sdk/ffstoretypes"
	"github.com/fluxflag/go-server-sdk/internal/datakinds"
)

const (
	putEventName    = "put"
	patchEventName  = "patch"
	deleteEventName = "delete"
)

// putData is the payload of a "put" SSE event: a full snapshot of every flag and segment.
type putData struct {
	Flags    map[string]*ffmodel.FeatureFlag `json:"flags"`
	Segments map[string]*ffmodel.Segment     `json:"segments"`
}

// patchData is the payload of a "patch" SSE event: one changed item. Path is "/flags/<key>" or
// "/segments/<key>", mirroring the teacher's path-based routing.
type patchData struct {
	Path string          `json:"path"`
	Data json.RawMessage `json:"data"`
}

// deleteData is the payload of a "delete" SSE event: a tombstone for one item.
type deleteData struct {
	Path    string `json:"path"`
	Version int    `json:"version"`
}

// StreamingDataSource keeps a Store up to date by subscribing to a LaunchDarkly-style SSE stream
// and applying put/patch/delete events as they arrive.
type StreamingDataSource struct {
	store       ffstoretypes.Store
	streamURI   string
	sdkKey      string
	loggers     fflog.Loggers
	reconnectAt time.Duration

	stream    *es.Stream
	closeOnce sync.Once
	closeCh   chan struct{}
}

// NewStreamingDataSource constructs a StreamingDataSource. streamURI should point at the streaming
// service's base URI (e.g. "https://stream.launchdarkly.com"); "/all" is appended when subscribing.
func NewStreamingDataSource(store ffstoretypes.Store, streamURI, sdkKey string, loggers fflog.Loggers) *StreamingDataSource {
	return &StreamingDataSource{
		store:       store,
		streamURI:   strings.TrimRight(streamURI, "/"),
		sdkKey:      sdkKey,
		loggers:     loggers,
		reconnectAt: 2 * time.Second,
		closeCh:     make(chan struct{}),
	}
}

// Start subscribes to the stream and processes events until Close is called. It blocks the calling
// goroutine; callers typically invoke it with `go`.
func (s *StreamingDataSource) Start() {
	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		stream, err := s.subscribe()
		if err != nil {
			s.loggers.Warnf("ffdatasource: error subscribing to stream: %s", err)
			time.Sleep(s.reconnectAt)
			continue
		}
		s.stream = stream
		s.consume(stream)
	}
}

func (s *StreamingDataSource) subscribe() (*es.Stream, error) {
	headers := make(http.Header)
	headers.Add("Authorization", s.sdkKey)
	return es.Subscribe(s.streamURI+"/all", headers, "")
}

func (s *StreamingDataSource) consume(stream *es.Stream) {
	for {
		select {
		case <-s.closeCh:
			return
		case event, ok := <-stream.Events:
			if !ok {
				return
			}
			s.handleEvent(event)
		case err, ok := <-stream.Errors:
			if !ok {
				return
			}
			if err != nil {
				s.loggers.Warnf("ffdatasource: stream error: %s", err)
				return
			}
		}
	}
}

func (s *StreamingDataSource) handleEvent(event es.Event) {
	switch event.Event() {
	case putEventName:
		s.handlePut([]byte(event.Data()))
	case patchEventName:
		s.handlePatch([]byte(event.Data()))
	case deleteEventName:
		s.handleDelete([]byte(event.Data()))
	default:
		s.loggers.Warnf("ffdatasource: unexpected stream event type %q", event.Event())
	}
}

func (s *StreamingDataSource) handlePut(raw []byte) {
	var data putData
	if err := json.Unmarshal(raw, &data); err != nil {
		s.loggers.Errorf("ffdatasource: malformed put event: %s", err)
		return
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
	err := s.store.Init(datakinds.OrderCollectionsForInit([]ffstoretypes.Collection{
		{Kind: datakinds.Features, Items: flagItems},
		{Kind: datakinds.Segments, Items: segmentItems},
	}))
	if err != nil {
		s.loggers.Errorf("ffdatasource: store init failed: %s", err)
	}
}

func (s *StreamingDataSource) handlePatch(raw []byte) {
	var patch patchData
	if err := json.Unmarshal(raw, &patch); err != nil {
		s.loggers.Errorf("ffdatasource: malformed patch event: %s", err)
		return
	}
	kind, key, ok := parsePath(patch.Path)
	if !ok {
		s.loggers.Warnf("ffdatasource: patch event with unrecognized path %q", patch.Path)
		return
	}
	if kind == datakinds.Features {
		var flag ffmodel.FeatureFlag
		if err := json.Unmarshal(patch.Data, &flag); err != nil {
			s.loggers.Errorf("ffdatasource: malformed flag patch: %s", err)
			return
		}
		s.upsert(kind, key, ffstoretypes.ItemDescriptor{Version: flag.Version, Item: &flag})
		return
	}
	var segment ffmodel.Segment
	if err := json.Unmarshal(patch.Data, &segment); err != nil {
		s.loggers.Errorf("ffdatasource: malformed segment patch: %s", err)
		return
	}
	s.upsert(kind, key, ffstoretypes.ItemDescriptor{Version: segment.Version, Item: &segment})
}

func (s *StreamingDataSource) handleDelete(raw []byte) {
	var data deleteData
	if err := json.Unmarshal(raw, &data); err != nil {
		s.loggers.Errorf("ffdatasource: malformed delete event: %s", err)
		return
	}
	kind, key, ok := parsePath(data.Path)
	if !ok {
		s.loggers.Warnf("ffdatasource: delete event with unrecognized path %q", data.Path)
		return
	}
	s.upsert(kind, key, ffstoretypes.ItemDescriptor{Version: data.Version, Item: nil})
}

func (s *StreamingDataSource) upsert(kind ffstoretypes.DataKind, key string, item ffstoretypes.ItemDescriptor) {
	if _, err := s.store.Upsert(kind, key, item); err != nil {
		s.loggers.Errorf("ffdatasource: store upsert failed: %s", err)
	}
}

func parsePath(path string) (ffstoretypes.DataKind, string, bool) {
	path = strings.TrimPrefix(path, "/")
	switch {
	case strings.HasPrefix(path, "flags/"):
		return datakinds.Features, strings.TrimPrefix(path, "flags/"), true
	case strings.HasPrefix(path, "segments/"):
		return datakinds.Segments, strings.TrimPrefix(path, "segments/"), true
	default:
		return nil, "", false
	}
}

// Close stops the stream and releases its connection.
func (s *StreamingDataSource) Close() error {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		if s.stream != nil {
			s.stream.Close()
		}
	})
	return nil
}
