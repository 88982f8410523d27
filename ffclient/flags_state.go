package ffclient

import (
	"encoding/json"

	"github.com/fluxflag/go-server-sdk/ffmodel"
	"github.com/fluxflag/go-server-sdk/ffreason"
	"github.com/fluxflag/go-server-sdk/ffuser"
	"github.com/fluxflag/go-server-sdk/ffvalue"
	"github.com/fluxflag/go-server-sdk/internal/datakinds"
)

// FlagState is the evaluated state of a single flag at the time AllFlagsState was called.
type FlagState struct {
	Value                ffvalue.Value
	Variation            int // ffreason.NoVariation if evaluation selected no variation (error, or off with no off variation)
	Version              int
	Reason               ffreason.EvaluationReason
	TrackEvents          bool
	DebugEventsUntilDate *int64
}

// AllFlags is a snapshot of every flag's evaluated state for one user, suitable for bootstrapping
// a client-side SDK. A zero AllFlags{} is invalid; only the value returned by
// Client.AllFlagsState is meaningful.
type AllFlags struct {
	flags map[string]FlagState
	valid bool
}

// AllFlagsOption customizes what Client.AllFlagsState computes and includes.
type AllFlagsOption int

const (
	// ClientSideOnly restricts the snapshot to flags marked ClientSide.
	ClientSideOnly AllFlagsOption = iota
	// WithReasons includes each flag's EvaluationReason in the snapshot.
	WithReasons
	// DetailsOnlyForTrackedFlags omits the reason for flags that have neither TrackEvents nor a
	// DebugEventsUntilDate, shrinking the payload when WithReasons is also set. The version is
	// still included for every flag, and a DebugEventsUntilDate counts whenever it is set, even if
	// it lies in the past.
	DetailsOnlyForTrackedFlags
)

func hasOption(options []AllFlagsOption, want AllFlagsOption) bool {
	for _, o := range options {
		if o == want {
			return true
		}
	}
	return false
}

// IsValid reports whether the snapshot was computed successfully. It is false if the client was
// offline or the store was unavailable, in which case GetFlag/GetValue return zero values for
// every key.
func (a AllFlags) IsValid() bool { return a.valid }

// GetFlag returns a single flag's state by key.
func (a AllFlags) GetFlag(key string) (FlagState, bool) {
	f, ok := a.flags[key]
	return f, ok
}

// GetValue returns a single flag's value by key, or ffvalue.Null() if there is no such flag.
func (a AllFlags) GetValue(key string) ffvalue.Value {
	return a.flags[key].Value
}

// ToValuesMap returns a plain map of flag key to flag value, discarding all other metadata.
func (a AllFlags) ToValuesMap() map[string]ffvalue.Value {
	out := make(map[string]ffvalue.Value, len(a.flags))
	for k, v := range a.flags {
		out[k] = v.Value
	}
	return out
}

type flagStateJSON struct {
	Variation            *int                      `json:"variation,omitempty"`
	Version              int                       `json:"version"`
	Reason               *ffreason.EvaluationReason `json:"reason,omitempty"`
	TrackEvents          bool                      `json:"trackEvents,omitempty"`
	DebugEventsUntilDate *int64                    `json:"debugEventsUntilDate,omitempty"`
}

// MarshalJSON produces the flattened {flagKey: value, ..., "$flagsState": {...}, "$valid": bool}
// structure client-side SDKs expect for bootstrapping.
func (a AllFlags) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{"$valid": a.valid}
	states := map[string]flagStateJSON{}
	for key, flag := range a.flags {
		out[key] = flag.Value
		fj := flagStateJSON{Version: flag.Version, TrackEvents: flag.TrackEvents, DebugEventsUntilDate: flag.DebugEventsUntilDate}
		if flag.Variation != ffreason.NoVariation {
			v := flag.Variation
			fj.Variation = &v
		}
		if flag.Reason.Kind() != "" {
			r := flag.Reason
			fj.Reason = &r
		}
		states[key] = fj
	}
	out["$flagsState"] = states
	return json.Marshal(out)
}

// AllFlagsState evaluates every flag in the store for user and returns a snapshot suitable for
// bootstrapping a client-side SDK. If the client is offline or the store isn't usable, the
// returned AllFlags has IsValid() == false and no flags.
func (c *Client) AllFlagsState(user ffuser.User, options ...AllFlagsOption) AllFlags {
	if c.config.Offline {
		c.loggers.Warn("AllFlagsState called while offline; returning invalid state")
		return AllFlags{valid: false}
	}
	if !c.store.Initialized() {
		c.loggers.Warn("AllFlagsState called before the store is initialized; returning invalid state")
		return AllFlags{valid: false}
	}

	items, err := c.store.All(datakinds.Features)
	if err != nil {
		c.loggers.Warnf("AllFlagsState: unable to read flags from the store: %s", err)
		return AllFlags{valid: false}
	}

	clientSideOnly := hasOption(options, ClientSideOnly)
	withReasons := hasOption(options, WithReasons)
	detailsOnlyIfTracked := hasOption(options, DetailsOnlyForTrackedFlags)

	flags := make(map[string]FlagState, len(items))
	for _, item := range items {
		flag, ok := item.Item.Item.(*ffmodel.FeatureFlag)
		if !ok || flag == nil {
			continue
		}
		if clientSideOnly && !flag.ClientSide {
			continue
		}

		detail := c.evaluator.Evaluate(flag, user, nil)

		state := FlagState{
			Value:                detail.Value,
			Variation:            detail.VariationIndex,
			Version:              flag.Version,
			TrackEvents:          flag.TrackEvents,
			DebugEventsUntilDate: flag.DebugEventsUntilDate,
		}
		wantReason := withReasons
		if wantReason && detailsOnlyIfTracked && !flag.TrackEvents && flag.DebugEventsUntilDate == nil {
			wantReason = false
		}
		if wantReason {
			state.Reason = detail.Reason
		}
		flags[flag.Key] = state
	}
	return AllFlags{flags: flags, valid: true}
}
