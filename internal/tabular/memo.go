package tabular

import (
	"errors"
	"time"

	"github.com/bluele/gcache"
)

// Memo keeps decoded source rows for the lifetime of a repository
// instance, optionally bounded by a TTL.
type Memo struct {
	cache gcache.Cache
}

// NewMemo constructs a memo; ttl <= 0 keeps entries until the memo is dropped.
func NewMemo(ttl time.Duration) *Memo {
	builder := gcache.New(8).LRU()
	if ttl > 0 {
		builder = builder.Expiration(ttl)
	}
	return &Memo{cache: builder.Build()}
}

// Load returns the cached value for key or calls load and caches a
// successful result. A nil memo always calls load.
func (m *Memo) Load(key string, load func() (any, error)) (any, error) {
	if m == nil || m.cache == nil {
		return load()
	}
	value, err := m.cache.Get(key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, gcache.KeyNotFoundError) {
		return nil, err
	}
	value, err = load()
	if err != nil {
		return nil, err
	}
	if err := m.cache.Set(key, value); err != nil {
		return nil, err
	}
	return value, nil
}

// Purge drops every cached entry.
func (m *Memo) Purge() {
	if m == nil || m.cache == nil {
		return
	}
	m.cache.Purge()
}
