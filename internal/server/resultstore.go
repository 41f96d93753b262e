package server

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/MeKo-Tech/gomr/internal/pipeline"
)

// ResultStore keeps grading results retrievable for a limited time. A
// background janitor evicts expired entries so abandoned results do not
// accumulate.
type ResultStore struct {
	mu      sync.RWMutex
	entries map[string]storedResult
	ttl     time.Duration
	stop    chan struct{}
	done    chan struct{}
}

type storedResult struct {
	result    *pipeline.Result
	expiresAt time.Time
}

// NewResultStore creates a store whose entries expire after ttl.
func NewResultStore(ttl time.Duration) *ResultStore {
	rs := &ResultStore{
		entries: make(map[string]storedResult),
		ttl:     ttl,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go rs.janitor()
	return rs
}

// Put stores a result and returns its retrieval id.
func (rs *ResultStore) Put(res *pipeline.Result) string {
	id := newResultID()

	rs.mu.Lock()
	rs.entries[id] = storedResult{result: res, expiresAt: time.Now().Add(rs.ttl)}
	storedResults.Set(float64(len(rs.entries)))
	rs.mu.Unlock()

	return id
}

// Get retrieves a stored result. Expired entries behave as absent even if
// the janitor has not swept them yet.
func (rs *ResultStore) Get(id string) (*pipeline.Result, bool) {
	rs.mu.RLock()
	entry, ok := rs.entries[id]
	rs.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.result, true
}

// Len returns the number of entries currently held, expired or not.
func (rs *ResultStore) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.entries)
}

// Close stops the janitor. The store stays readable afterwards.
func (rs *ResultStore) Close() {
	select {
	case <-rs.stop:
	default:
		close(rs.stop)
		<-rs.done
	}
}

func (rs *ResultStore) janitor() {
	defer close(rs.done)

	interval := rs.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rs.evictExpired()
		case <-rs.stop:
			return
		}
	}
}

func (rs *ResultStore) evictExpired() {
	now := time.Now()

	rs.mu.Lock()
	for id, entry := range rs.entries {
		if now.After(entry.expiresAt) {
			delete(rs.entries, id)
		}
	}
	storedResults.Set(float64(len(rs.entries)))
	rs.mu.Unlock()
}

func newResultID() string {
	var buf [16]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
