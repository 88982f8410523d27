package ffevents

// nullEventProcessor discards every event. It's the processor to pass to ffclient.NewClient when
// events are disabled (directly, or via ffcomponents.NoEvents()).
type nullEventProcessor struct{}

// NewNullEventProcessor returns an EventProcessor that discards everything sent to it.
func NewNullEventProcessor() EventProcessor {
	return nullEventProcessor{}
}

func (nullEventProcessor) SendEvent(Event) {}
func (nullEventProcessor) Flush()          {}
func (nullEventProcessor) Close() error    { return nil }
