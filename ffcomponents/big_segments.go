package ffcomponents

import (
	"time"

	"github.com/fluxflag/go-server-sdk/ffeval"
	"github.com/fluxflag/go-server-sdk/fflog"
	"github.com/fluxflag/go-server-sdk/ffstoretypes"
	"github.com/fluxflag/go-server-sdk/internal/bigsegments"
)

// Default tuning for BigSegmentsBuilder, mirroring the teacher's big segments configuration
// builder defaults.
const (
	DefaultBigSegmentsUserCacheSize      = 1000
	DefaultBigSegmentsUserCacheTime      = 5 * time.Second
	DefaultBigSegmentsStatusPollInterval = 5 * time.Second
	DefaultBigSegmentsStaleAfter         = 120 * time.Second
)

// BigSegmentsBuilder configures the SDK's big ("unbounded") segment support: a store, a
// per-user membership cache, and a status-polling interval.
type BigSegmentsBuilder struct {
	store              ffstoretypes.BigSegmentStore
	userCacheSize      int
	userCacheTime      time.Duration
	statusPollInterval time.Duration
	staleAfter         time.Duration
}

// BigSegments returns a builder for the big segments feature backed by store. With a nil store,
// Build returns nil and unbounded segments never match.
func BigSegments(store ffstoretypes.BigSegmentStore) *BigSegmentsBuilder {
	return &BigSegmentsBuilder{
		store:              store,
		userCacheSize:      DefaultBigSegmentsUserCacheSize,
		userCacheTime:      DefaultBigSegmentsUserCacheTime,
		statusPollInterval: DefaultBigSegmentsStatusPollInterval,
		staleAfter:         DefaultBigSegmentsStaleAfter,
	}
}

// UserCacheSize sets the maximum number of users whose membership state is cached at once.
func (b *BigSegmentsBuilder) UserCacheSize(size int) *BigSegmentsBuilder {
	b.userCacheSize = size
	return b
}

// UserCacheTime sets how long a cached membership entry remains valid.
func (b *BigSegmentsBuilder) UserCacheTime(d time.Duration) *BigSegmentsBuilder {
	b.userCacheTime = d
	return b
}

// StatusPollInterval sets how often the store's metadata is polled to refresh availability/staleness.
func (b *BigSegmentsBuilder) StatusPollInterval(d time.Duration) *BigSegmentsBuilder {
	if d <= 0 {
		d = DefaultBigSegmentsStatusPollInterval
	}
	b.statusPollInterval = d
	return b
}

// StaleAfter sets how far behind the store's last-updated timestamp can fall before its status is
// reported as stale.
func (b *BigSegmentsBuilder) StaleAfter(d time.Duration) *BigSegmentsBuilder {
	b.staleAfter = d
	return b
}

// Build creates the running big segments manager. The caller is responsible for calling Close on
// it (via *bigsegments.Manager, which this returns alongside the ffeval.BigSegmentProvider view)
// when the client shuts down.
func (b *BigSegmentsBuilder) Build(loggers fflog.Loggers) (*bigsegments.Manager, ffeval.BigSegmentProvider) {
	if b.store == nil {
		return nil, nil
	}
	manager := bigsegments.NewManager(
		b.store,
		b.statusPollInterval,
		b.staleAfter,
		b.userCacheSize,
		b.userCacheTime,
		loggers,
	)
	return manager, manager
}
