// Package ffevents shapes analytics events out of evaluation results: feature-request events for
// every top-level and prerequisite evaluation, plus identify and custom events for application-level
// tracking calls. It does not implement delivery to any external collector; see EventProcessor.
package ffevents

import (
	"github.com/fluxflag/go-server-sdk/ffreason"
	"github.com/fluxflag/go-server-sdk/ffuser"
	"github.com/fluxflag/go-server-sdk/ffvalue"
)

// Event is anything that can be handed to an EventProcessor.
type Event interface {
	GetKind() string
	GetCreationDate() int64
}

// FeatureRequestEvent is emitted for every top-level flag evaluation and for every prerequisite
// flag evaluated along the way. PrereqOf is empty for a top-level evaluation and set to the
// dependent flag's key for a prerequisite evaluation.
type FeatureRequestEvent struct {
	CreationDate         int64                  `json:"creationDate"`
	Key                  string                 `json:"key"`
	User                 RedactedUser           `json:"user"`
	Variation            int                    `json:"variation"`
	Value                ffvalue.Value          `json:"value"`
	Default              ffvalue.Value          `json:"default"`
	Reason               ffreason.EvaluationReason `json:"reason"`
	Version              int                    `json:"version"`
	TrackEvents          bool                   `json:"trackEvents"`
	DebugEventsUntilDate *int64                 `json:"debugEventsUntilDate,omitempty"`
	PrereqOf             string                 `json:"prereqOf,omitempty"`
}

func (e FeatureRequestEvent) GetKind() string       { return "feature" }
func (e FeatureRequestEvent) GetCreationDate() int64 { return e.CreationDate }

// IdentifyEvent records that a user was seen, carrying its full (redacted) attribute set.
type IdentifyEvent struct {
	CreationDate int64        `json:"creationDate"`
	User         RedactedUser `json:"user"`
}

func (e IdentifyEvent) GetKind() string       { return "identify" }
func (e IdentifyEvent) GetCreationDate() int64 { return e.CreationDate }

// CustomEvent records an application-defined event, optionally carrying arbitrary JSON data and/or
// a numeric metric value (TrackMetric).
type CustomEvent struct {
	CreationDate int64         `json:"creationDate"`
	Key          string        `json:"key"`
	User         RedactedUser  `json:"user"`
	Data         ffvalue.Value `json:"data,omitempty"`
	HasMetric    bool          `json:"-"`
	MetricValue  float64       `json:"metricValue,omitempty"`
}

func (e CustomEvent) GetKind() string       { return "custom" }
func (e CustomEvent) GetCreationDate() int64 { return e.CreationDate }

// NewFeatureRequestEvent builds the feature-request record for a single evaluation. now is the
// creation timestamp in unix milliseconds, supplied by the caller rather than computed here so that
// callers control the clock.
func NewFeatureRequestEvent(
	now int64,
	flagKey string,
	user ffuser.User,
	variation int,
	value, defaultValue ffvalue.Value,
	reason ffreason.EvaluationReason,
	version int,
	trackEvents bool,
	debugEventsUntilDate *int64,
	prereqOf string,
	redaction Redaction,
) FeatureRequestEvent {
	return FeatureRequestEvent{
		CreationDate:         now,
		Key:                  flagKey,
		User:                 RedactUser(user, redaction),
		Variation:            variation,
		Value:                value,
		Default:              defaultValue,
		Reason:               reason,
		Version:              version,
		TrackEvents:          trackEvents,
		DebugEventsUntilDate: debugEventsUntilDate,
		PrereqOf:             prereqOf,
	}
}

// NewIdentifyEvent builds an identify event for an Identify() call.
func NewIdentifyEvent(now int64, user ffuser.User, redaction Redaction) IdentifyEvent {
	return IdentifyEvent{CreationDate: now, User: RedactUser(user, redaction)}
}

// NewCustomEvent builds a custom event for a Track()/TrackData() call.
func NewCustomEvent(now int64, key string, user ffuser.User, data ffvalue.Value, redaction Redaction) CustomEvent {
	return CustomEvent{CreationDate: now, Key: key, User: RedactUser(user, redaction), Data: data}
}

// NewCustomMetricEvent builds a custom event carrying a metric value for a TrackMetric() call.
func NewCustomMetricEvent(
	now int64,
	key string,
	user ffuser.User,
	metricValue float64,
	data ffvalue.Value,
	redaction Redaction,
) CustomEvent {
	return CustomEvent{
		CreationDate: now,
		Key:          key,
		User:         RedactUser(user, redaction),
		Data:         data,
		HasMetric:    true,
		MetricValue:  metricValue,
	}
}
