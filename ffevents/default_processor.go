package ffevents

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/fluxflag/go-server-sdk/fflog"
)

// EventSender hands a flushed batch of events off to an external collector. DefaultEventProcessor
// has no opinion on transport, retry, or response handling; a caller that wants real delivery
// supplies one. payloadID is a fresh UUID generated per flush, so a collector that sees the same
// ID twice knows it received a retried, not a new, payload.
type EventSender interface {
	SendEventData(payload []byte, eventCount int, payloadID string) error
}

// DefaultEventProcessor buffers events in memory up to a fixed capacity and ships them to an
// EventSender only when Flush is called. It does not run a background delivery loop: callers that
// want periodic flushing drive Flush themselves (e.g. from a ticker of their own).
type DefaultEventProcessor struct {
	mu       sync.Mutex
	buffer   []Event
	capacity int

	seenUsers *gocache.Cache

	sender  EventSender
	loggers fflog.Loggers
	closed  bool
}

// NewDefaultEventProcessor creates a processor with the given buffer capacity and identify-event
// dedup window. sender may be nil, in which case Flush simply discards the buffered batch after
// logging it at debug level; this is enough to exercise the shaping and buffering logic without
// requiring a live collector.
func NewDefaultEventProcessor(
	capacity int,
	identifyDedupTTL time.Duration,
	sender EventSender,
	loggers fflog.Loggers,
) *DefaultEventProcessor {
	if capacity <= 0 {
		capacity = 10000
	}
	return &DefaultEventProcessor{
		capacity:  capacity,
		seenUsers: gocache.New(identifyDedupTTL, identifyDedupTTL),
		sender:    sender,
		loggers:   loggers,
	}
}

// SendEvent queues event for the next Flush. Identify events for a user key already seen within
// the dedup window are dropped, since re-sending the same user attributes within that window adds
// nothing a collector doesn't already have.
func (p *DefaultEventProcessor) SendEvent(event Event) {
	if identify, ok := event.(IdentifyEvent); ok {
		if _, seen := p.seenUsers.Get(identify.User.Key); seen {
			return
		}
		p.seenUsers.SetDefault(identify.User.Key, struct{}{})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if len(p.buffer) >= p.capacity {
		p.loggers.Warn("event buffer full, dropping oldest event")
		p.buffer = p.buffer[1:]
	}
	p.buffer = append(p.buffer, event)
}

// Flush hands the current buffer to the configured EventSender (if any) and empties it. It does
// not retry on error; a send failure is logged and the batch is dropped, matching the "fire and
// forget" emission semantics events are specified to have.
func (p *DefaultEventProcessor) Flush() {
	p.mu.Lock()
	batch := p.buffer
	p.buffer = nil
	p.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	payload, err := json.Marshal(batch)
	if err != nil {
		p.loggers.Errorf("failed to marshal event batch: %s", err)
		return
	}
	if p.sender == nil {
		p.loggers.Debugf("no event sender configured; discarding %d events: %s", len(batch), payload)
		return
	}
	payloadID, err := uuid.NewRandom()
	if err != nil {
		// A failed random read is vanishingly rare; proceed with an empty ID rather than drop the batch.
		p.loggers.Warnf("failed to generate payload ID: %s", err)
	}
	if err := p.sender.SendEventData(payload, len(batch), payloadID.String()); err != nil {
		p.loggers.Warnf("failed to deliver event batch: %s", err)
	}
}

// Close flushes any remaining events and marks the processor closed; further SendEvent calls are
// no-ops.
func (p *DefaultEventProcessor) Close() error {
	p.Flush()
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}
