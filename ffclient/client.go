package ffclient

import (
	"time"

	"github.com/fluxflag/go-server-sdk/ffeval"
	"github.com/fluxflag/go-server-sdk/ffevents"
	"github.com/fluxflag/go-server-sdk/fflog"
	"github.com/fluxflag/go-server-sdk/ffmodel"
	"github.com/fluxflag/go-server-sdk/ffreason"
	"github.com/fluxflag/go-server-sdk/ffstoretypes"
	"github.com/fluxflag/go-server-sdk/ffuser"
	"github.com/fluxflag/go-server-sdk/ffvalue"
	"github.com/fluxflag/go-server-sdk/internal/datakinds"
	"github.com/fluxflag/go-server-sdk/internal/datastore"
)

// Client ties a Store, an Evaluator, and an EventProcessor together behind spec.md's typed
// variation methods. Construct one with NewClient once the Store has already been populated (by a
// data source, a test fixture, or a direct Init call) — Client itself never fetches data.
type Client struct {
	config         Config
	store          ffstoretypes.Store
	evaluator      *ffeval.Evaluator
	eventProcessor ffevents.EventProcessor
	loggers        fflog.Loggers
}

// NewClient builds a Client around an already-constructed Store and EventProcessor. Pass
// ffevents.NewNullEventProcessor() if analytics events aren't wanted.
func NewClient(store ffstoretypes.Store, eventProcessor ffevents.EventProcessor, config Config, loggers fflog.Loggers) *Client {
	evaluator := ffeval.NewEvaluator(datastore.EvaluatorDataProvider{Store: store})
	if config.BigSegments != nil {
		evaluator = evaluator.WithBigSegments(config.BigSegments)
	}
	return &Client{
		config:         config,
		store:          store,
		evaluator:      evaluator,
		eventProcessor: eventProcessor,
		loggers:        loggers,
	}
}

// Initialized reports whether the underlying Store has received its first full data set. In
// offline mode it always reports true.
func (c *Client) Initialized() bool {
	return c.config.Offline || c.store.Initialized()
}

// Close flushes any pending events and releases the Store's resources.
func (c *Client) Close() error {
	_ = c.eventProcessor.Close()
	return c.store.Destroy()
}

// Flush requests that any buffered analytics events be delivered as soon as possible. It does not
// block until delivery completes.
func (c *Client) Flush() {
	c.eventProcessor.Flush()
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// Identify records that a user was seen, without evaluating any flag.
func (c *Client) Identify(user ffuser.User) {
	if user.Key() == "" {
		c.loggers.Warn("Identify called with empty user key")
		return
	}
	c.eventProcessor.SendEvent(ffevents.NewIdentifyEvent(nowMillis(), user, c.config.redaction()))
}

// TrackEvent records that a user performed an application-defined event.
func (c *Client) TrackEvent(eventName string, user ffuser.User) {
	c.TrackData(eventName, user, ffvalue.Null())
}

// TrackData records that a user performed an application-defined event, with associated JSON data.
func (c *Client) TrackData(eventName string, user ffuser.User, data ffvalue.Value) {
	if user.Key() == "" {
		c.loggers.Warn("Track called with empty user key")
		return
	}
	c.eventProcessor.SendEvent(ffevents.NewCustomEvent(nowMillis(), eventName, user, data, c.config.redaction()))
}

// TrackMetric records that a user performed an application-defined event, with an associated
// numeric metric value and optional JSON data.
func (c *Client) TrackMetric(eventName string, user ffuser.User, metricValue float64, data ffvalue.Value) {
	if user.Key() == "" {
		c.loggers.Warn("Track called with empty user key")
		return
	}
	c.eventProcessor.SendEvent(
		ffevents.NewCustomMetricEvent(nowMillis(), eventName, user, metricValue, data, c.config.redaction()),
	)
}

func (c *Client) lookupFlag(key string) (*ffmodel.FeatureFlag, error) {
	item, err := c.store.Get(datakinds.Features, key)
	if err != nil {
		return nil, err
	}
	if item.Item == nil {
		return nil, nil
	}
	flag, ok := item.Item.(*ffmodel.FeatureFlag)
	if !ok {
		return nil, nil
	}
	return flag, nil
}

// evaluate runs the full evaluation + event-emission pipeline shared by every typed variation
// method. checkType controls whether a variation value/default type mismatch is reported as
// ERROR{WRONG_TYPE}; JSONVariation passes false since any JSON type is acceptable there.
func (c *Client) evaluate(key string, user ffuser.User, defaultVal ffvalue.Value, checkType bool) ffreason.EvaluationDetail {
	if c.config.Offline {
		detail := ffreason.NewEvaluationDetailForError(ffreason.ClientNotReadyErrorKind, defaultVal)
		c.recordEvent(key, nil, detail, user, defaultVal, "")
		return detail
	}

	if !c.store.Initialized() {
		detail := ffreason.NewEvaluationDetailForError(ffreason.ClientNotReadyErrorKind, defaultVal)
		c.recordEvent(key, nil, detail, user, defaultVal, "")
		return detail
	}

	flag, err := c.lookupFlag(key)
	if err != nil {
		detail := ffreason.NewEvaluationDetailForError(ffreason.ExceptionErrorKind, defaultVal)
		c.recordEvent(key, nil, detail, user, defaultVal, "")
		return detail
	}
	if flag == nil {
		detail := ffreason.NewEvaluationDetailForError(ffreason.FlagNotFoundErrorKind, defaultVal)
		c.recordEvent(key, nil, detail, user, defaultVal, "")
		return detail
	}

	detail := c.evaluator.Evaluate(flag, user, func(event ffeval.PrerequisiteEvent) {
		c.recordEvent(event.PrereqFlag.Key, event.PrereqFlag, event.Result, user, ffvalue.Null(), event.PrereqOfFlagKey)
	})

	if detail.IsDefaultValue() {
		detail = ffreason.NewEvaluationDetail(defaultVal, ffreason.NoVariation, detail.Reason)
	} else if checkType && !defaultVal.IsNull() && detail.Value.Type() != defaultVal.Type() {
		detail = ffreason.NewEvaluationDetailForError(ffreason.WrongTypeErrorKind, defaultVal)
	}

	c.recordEvent(key, flag, detail, user, defaultVal, "")
	return detail
}

func (c *Client) recordEvent(
	key string,
	flag *ffmodel.FeatureFlag,
	detail ffreason.EvaluationDetail,
	user ffuser.User,
	defaultVal ffvalue.Value,
	prereqOf string,
) {
	version := 0
	trackEvents := false
	var debugUntil *int64
	if flag != nil {
		version = flag.Version
		trackEvents = flag.TrackEvents
		debugUntil = flag.DebugEventsUntilDate
		if detail.Reason.Kind() == ffreason.RuleMatchKind {
			if idx := detail.Reason.RuleIndex(); idx >= 0 && idx < len(flag.Rules) && flag.Rules[idx].TrackEvents {
				trackEvents = true
			}
		}
	}
	c.eventProcessor.SendEvent(ffevents.NewFeatureRequestEvent(
		nowMillis(), key, user, detail.VariationIndex, detail.Value, defaultVal,
		detail.Reason, version, trackEvents, debugUntil, prereqOf, c.config.redaction(),
	))
}
