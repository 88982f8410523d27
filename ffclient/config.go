package ffclient

import (
	"github.com/fluxflag/go-server-sdk/ffeval"
	"github.com/fluxflag/go-server-sdk/ffevents"
)

// Config holds the configuration knobs the evaluation core itself is sensitive to. Everything else
// (transport timeouts, URIs, event capacity, data source choice) is a property of the collaborators
// passed into NewClient, not of this struct.
type Config struct {
	// Offline short-circuits every evaluation to the caller's default with ERROR{CLIENT_NOT_READY},
	// without consulting the store or evaluator at all.
	Offline bool

	// AllAttributesPrivate redacts every user attribute (other than key) from emitted events,
	// regardless of what the user itself or PrivateAttributeNames marks private.
	AllAttributesPrivate bool

	// PrivateAttributeNames adds to the set of attribute names redacted from emitted events, on
	// top of whatever a given User already marked private via AsPrivateAttribute.
	PrivateAttributeNames []string

	// BigSegments, if set, is consulted whenever a segmentMatch clause references a Segment with
	// Unbounded set. With no provider, unbounded segments never match. Build one with
	// internal/bigsegments.Manager via ffcomponents.
	BigSegments ffeval.BigSegmentProvider
}

func (c Config) redaction() ffevents.Redaction {
	return ffevents.Redaction{
		AllAttributesPrivate:        c.AllAttributesPrivate,
		GlobalPrivateAttributeNames: c.PrivateAttributeNames,
	}
}
