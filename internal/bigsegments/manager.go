package bigsegments

import (
	"sync"
	"time"

	"github.com/launchdarkly/ccache"
	"golang.org/x/sync/singleflight"

	"github.com/fluxflag/go-server-sdk/fflog"
	"github.com/fluxflag/go-server-sdk/ffreason"
	"github.com/fluxflag/go-server-sdk/ffstoretypes"
)

// Status describes the availability and freshness of the big segment store.
type Status struct {
	// Available is true if the store was reachable on the last poll.
	Available bool
	// Stale is true if the store's last known update is older than the configured stale threshold.
	Stale bool
}

// Manager owns the big segment store, polls its status, and maintains the per-user membership
// cache. Only created if a big segment store was actually configured.
type Manager struct {
	store      ffstoretypes.BigSegmentStore
	staleTime  time.Duration
	userCache  *ccache.Cache
	cacheTTL   time.Duration
	haveStatus bool
	lastStatus Status
	requests   singleflight.Group
	pollCloser chan struct{}
	loggers    fflog.Loggers
	lock       sync.RWMutex
}

// NewManager creates the Manager and starts polling the store's metadata at pollInterval. The
// store's lifecycle now belongs to the Manager: closing the Manager closes the store.
func NewManager(
	store ffstoretypes.BigSegmentStore,
	pollInterval time.Duration,
	staleTime time.Duration,
	userCacheSize int,
	userCacheTime time.Duration,
	loggers fflog.Loggers,
) *Manager {
	pollCloser := make(chan struct{})
	m := &Manager{
		store:      store,
		staleTime:  staleTime,
		userCache:  ccache.New(ccache.Configure().MaxSize(int64(userCacheSize))),
		cacheTTL:   userCacheTime,
		pollCloser: pollCloser,
		loggers:    loggers,
	}

	go m.runPollTask(pollInterval, pollCloser)

	return m
}

// Close shuts down the poll loop, the membership cache, and the underlying store.
func (m *Manager) Close() {
	m.lock.Lock()
	if m.pollCloser != nil {
		close(m.pollCloser)
		m.pollCloser = nil
	}
	if m.userCache != nil {
		m.userCache.Stop()
		m.userCache = nil
	}
	m.lock.Unlock()

	_ = m.store.Close()
}

// Status returns the store's current availability/staleness. If no poll has completed yet, it
// performs one synchronously and waits for the result.
func (m *Manager) Status() Status {
	m.lock.RLock()
	status := m.lastStatus
	haveStatus := m.haveStatus
	m.lock.RUnlock()

	if haveStatus {
		return status
	}
	return m.pollStoreAndUpdateStatus()
}

// GetUserMembership returns the user's big segment membership along with a status describing how
// much to trust it, mirroring the semantics clause evaluation needs: a store error yields
// ffreason.BigSegmentsStoreError, otherwise Healthy or Stale depending on the store's freshness.
func (m *Manager) GetUserMembership(userKey string) (ffstoretypes.BigSegmentMembership, ffreason.BigSegmentsStatus) {
	membership, ok := m.getUserMembership(userKey)
	if !ok {
		return nil, ffreason.BigSegmentsStoreError
	}
	status := ffreason.BigSegmentsHealthy
	if m.Status().Stale {
		status = ffreason.BigSegmentsStale
	}
	return membership, status
}

// getUserMembership returns the cached membership for userKey, querying and caching it if absent
// or expired. The second return value is false only on a store error.
func (m *Manager) getUserMembership(userKey string) (ffstoretypes.BigSegmentMembership, bool) {
	entry := m.safeCacheGet(userKey)
	if entry == nil || entry.Expired() {
		value, err, _ := m.requests.Do(userKey, func() (interface{}, error) {
			hash := HashForUserKey(userKey)
			m.loggers.Debugf("querying big segment state for user hash %q", hash)
			return m.store.GetUserMembership(hash)
		})
		if err != nil {
			m.loggers.Errorf("big segment store returned error: %s", err)
			return nil, false
		}
		if value == nil {
			m.safeCacheSet(userKey, nil, m.cacheTTL)
			return nil, true
		}
		if membership, ok := value.(ffstoretypes.BigSegmentMembership); ok {
			m.safeCacheSet(userKey, membership, m.cacheTTL)
			return membership, true
		}
		m.loggers.Error("big segment manager got wrong value type from request")
		return nil, false
	}
	if entry.Value() == nil {
		return nil, true
	}
	if membership, ok := entry.Value().(ffstoretypes.BigSegmentMembership); ok {
		return membership, true
	}
	m.loggers.Error("big segment manager got wrong value type from cache")
	return nil, false
}

func (m *Manager) pollStoreAndUpdateStatus() Status {
	m.loggers.Debug("querying big segment store metadata")
	metadata, err := m.store.GetMetadata()

	var newStatus Status
	m.lock.Lock()
	if err == nil {
		newStatus.Available = true
		newStatus.Stale = m.isStale(metadata.LastUpToDate)
	} else {
		m.loggers.Errorf("big segment store status query returned error: %s", err)
		newStatus.Available = false
	}
	m.lastStatus = newStatus
	m.haveStatus = true
	m.lock.Unlock()

	return newStatus
}

func (m *Manager) isStale(lastUpToDateMillis int64) bool {
	age := time.Duration(nowMillis()-lastUpToDateMillis) * time.Millisecond
	return age >= m.staleTime
}

func (m *Manager) runPollTask(pollInterval time.Duration, pollCloser <-chan struct{}) {
	if pollInterval > m.staleTime {
		pollInterval = m.staleTime
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-pollCloser:
			return
		case <-ticker.C:
			m.pollStoreAndUpdateStatus()
		}
	}
}

func (m *Manager) safeCacheGet(key string) *ccache.Item {
	var ret *ccache.Item
	m.lock.RLock()
	if m.userCache != nil {
		ret = m.userCache.Get(key)
	}
	m.lock.RUnlock()
	return ret
}

func (m *Manager) safeCacheSet(key string, value interface{}, ttl time.Duration) {
	m.lock.RLock()
	if m.userCache != nil {
		m.userCache.Set(key, value, ttl)
	}
	m.lock.RUnlock()
}

func nowMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}
