package ffevents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fluxflag/go-server-sdk/fflog"
	"github.com/fluxflag/go-server-sdk/ffuser"
	"github.com/fluxflag/go-server-sdk/ffvalue"
)

type fakeSender struct {
	payloads   [][]byte
	payloadIDs []string
	eventCount int
}

func (f *fakeSender) SendEventData(payload []byte, count int, payloadID string) error {
	f.payloads = append(f.payloads, payload)
	f.payloadIDs = append(f.payloadIDs, payloadID)
	f.eventCount += count
	return nil
}

func TestDefaultEventProcessorFlushesToSender(t *testing.T) {
	sender := &fakeSender{}
	p := NewDefaultEventProcessor(10, time.Minute, sender, fflog.Loggers{})

	p.SendEvent(NewCustomEvent(1, "clicked", ffuser.NewUser("u1"), ffvalue.Null(), Redaction{}))
	p.SendEvent(NewCustomEvent(2, "clicked", ffuser.NewUser("u2"), ffvalue.Null(), Redaction{}))
	p.Flush()

	assert.Len(t, sender.payloads, 1)
	assert.Equal(t, 2, sender.eventCount)
	assert.NotEmpty(t, sender.payloadIDs[0])
}

func TestDefaultEventProcessorGeneratesDistinctPayloadIDsPerFlush(t *testing.T) {
	sender := &fakeSender{}
	p := NewDefaultEventProcessor(10, time.Minute, sender, fflog.Loggers{})

	p.SendEvent(NewCustomEvent(1, "clicked", ffuser.NewUser("u1"), ffvalue.Null(), Redaction{}))
	p.Flush()
	p.SendEvent(NewCustomEvent(2, "clicked", ffuser.NewUser("u2"), ffvalue.Null(), Redaction{}))
	p.Flush()

	assert.Len(t, sender.payloadIDs, 2)
	assert.NotEqual(t, sender.payloadIDs[0], sender.payloadIDs[1])
}

func TestDefaultEventProcessorFlushWithEmptyBufferDoesNotCallSender(t *testing.T) {
	sender := &fakeSender{}
	p := NewDefaultEventProcessor(10, time.Minute, sender, fflog.Loggers{})
	p.Flush()
	assert.Len(t, sender.payloads, 0)
}

func TestDefaultEventProcessorDedupsIdentifyWithinWindow(t *testing.T) {
	sender := &fakeSender{}
	p := NewDefaultEventProcessor(10, time.Minute, sender, fflog.Loggers{})

	p.SendEvent(NewIdentifyEvent(1, ffuser.NewUser("u1"), Redaction{}))
	p.SendEvent(NewIdentifyEvent(2, ffuser.NewUser("u1"), Redaction{}))
	assert.Len(t, p.buffer, 1)
}

func TestDefaultEventProcessorDropsOldestWhenFull(t *testing.T) {
	sender := &fakeSender{}
	p := NewDefaultEventProcessor(1, time.Minute, sender, fflog.Loggers{})

	p.SendEvent(NewCustomEvent(1, "a", ffuser.NewUser("u1"), ffvalue.Null(), Redaction{}))
	p.SendEvent(NewCustomEvent(2, "b", ffuser.NewUser("u2"), ffvalue.Null(), Redaction{}))

	assert.Len(t, p.buffer, 1)
	assert.Equal(t, "b", p.buffer[0].(CustomEvent).Key)
}

func TestCloseFlushesAndStopsAcceptingEvents(t *testing.T) {
	sender := &fakeSender{}
	p := NewDefaultEventProcessor(10, time.Minute, sender, fflog.Loggers{})
	p.SendEvent(NewCustomEvent(1, "a", ffuser.NewUser("u1"), ffvalue.Null(), Redaction{}))

	assert.NoError(t, p.Close())
	assert.Len(t, sender.payloads, 1)

	p.SendEvent(NewCustomEvent(2, "b", ffuser.NewUser("u2"), ffvalue.Null(), Redaction{}))
	assert.Len(t, p.buffer, 0)
}
