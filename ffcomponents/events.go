package ffcomponents

import (
	"time"

	"github.com/fluxflag/go-server-sdk/ffevents"
	"github.com/fluxflag/go-server-sdk/fflog"
)

// DefaultEventsCapacity is the default size of the event buffer used by SendEvents.
const DefaultEventsCapacity = 10000

// DefaultIdentifyDedupTTL is the default window in which repeated Identify calls for the same user
// key are suppressed to one event.
const DefaultIdentifyDedupTTL = 5 * time.Minute

// NoEvents returns an EventProcessor that discards everything sent to it. Pass this to
// ffclient.NewClient to disable analytics events entirely.
func NoEvents() ffevents.EventProcessor {
	return ffevents.NewNullEventProcessor()
}

// EventProcessorBuilder configures the buffered, manually-flushed EventProcessor returned by
// SendEvents.
type EventProcessorBuilder struct {
	capacity         int
	identifyDedupTTL time.Duration
	sender           ffevents.EventSender
}

// SendEvents returns a configuration builder for analytics events, buffered in memory until Flush
// or Close is called. Without a Sender (see Sender), flushed batches are discarded after being
// serialized; set one to actually deliver them somewhere.
func SendEvents() *EventProcessorBuilder {
	return &EventProcessorBuilder{capacity: DefaultEventsCapacity, identifyDedupTTL: DefaultIdentifyDedupTTL}
}

// Capacity sets the size of the in-memory event buffer. Once full, the oldest buffered event is
// dropped to make room for new ones.
func (b *EventProcessorBuilder) Capacity(capacity int) *EventProcessorBuilder {
	b.capacity = capacity
	return b
}

// IdentifyDedupTTL sets how long a user key is remembered to suppress duplicate identify events.
func (b *EventProcessorBuilder) IdentifyDedupTTL(ttl time.Duration) *EventProcessorBuilder {
	b.identifyDedupTTL = ttl
	return b
}

// Sender sets the destination that flushed event batches are delivered to. If unset, flushed
// batches are serialized but not sent anywhere.
func (b *EventProcessorBuilder) Sender(sender ffevents.EventSender) *EventProcessorBuilder {
	b.sender = sender
	return b
}

// Build constructs the configured EventProcessor.
func (b *EventProcessorBuilder) Build(loggers fflog.Loggers) ffevents.EventProcessor {
	return ffevents.NewDefaultEventProcessor(b.capacity, b.identifyDedupTTL, b.sender, loggers)
}
