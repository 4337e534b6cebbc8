// Package memory is the in-process store. It is the reference implementation
// the unit tests run against and a usable backend for single-node deployments.
package memory

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"

	"shortlink/internal/domain"
)

// shardCount bounds lock contention: operations on different short codes hash
// to different shards and do not block each other.
const shardCount = 32

type shard struct {
	mu sync.RWMutex

	// urls holds live records keyed by short code. clicks holds the
	// append-only history keyed by short code, in arrival order; entries
	// outlive their record on delete.
	urls   map[string]*domain.URL
	clicks map[string][]*domain.Click
}

// Store implements repository.URLRepository and repository.ClickRepository
// over sharded in-memory maps. A click record takes the owning shard's write
// lock for both the counter increment and the event append, so readers on
// that shard always see the pair together.
type Store struct {
	shards [shardCount]*shard
}

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i] = &shard{
			urls:   make(map[string]*domain.URL),
			clicks: make(map[string][]*domain.Click),
		}
	}
	return s
}

func (s *Store) shardFor(shortCode string) *shard {
	h := fnv.New32a()
	h.Write([]byte(shortCode))
	return s.shards[h.Sum32()%shardCount]
}

// Create inserts a record, failing with domain.ErrDuplicateShortCode when the
// code is already live. The check and the insert run under one write lock.
func (s *Store) Create(ctx context.Context, url *domain.URL) error {
	sh := s.shardFor(url.ShortCode)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, exists := sh.urls[url.ShortCode]; exists {
		return domain.ErrDuplicateShortCode
	}
	sh.urls[url.ShortCode] = url.Clone()
	return nil
}

// GetByShortCode returns a copy of the record for a code, ignoring expiry and
// active state.
func (s *Store) GetByShortCode(ctx context.Context, shortCode string) (*domain.URL, error) {
	sh := s.shardFor(shortCode)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	url, ok := sh.urls[shortCode]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return url.Clone(), nil
}

// GetByID scans for the record with the given ID.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.URL, error) {
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, url := range sh.urls {
			if url.ID == id {
				c := url.Clone()
				sh.mu.RUnlock()
				return c, nil
			}
		}
		sh.mu.RUnlock()
	}
	return nil, domain.ErrNotFound
}

// Delete removes the record with the given ID. The click history for its
// short code is deliberately left in place.
func (s *Store) Delete(ctx context.Context, id string) error {
	for _, sh := range s.shards {
		sh.mu.Lock()
		for code, url := range sh.urls {
			if url.ID == id {
				delete(sh.urls, code)
				sh.mu.Unlock()
				return nil
			}
		}
		sh.mu.Unlock()
	}
	return domain.ErrNotFound
}

// List returns copies of all records, newest first.
func (s *Store) List(ctx context.Context) ([]*domain.URL, error) {
	var out []*domain.URL
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, url := range sh.urls {
			out = append(out, url.Clone())
		}
		sh.mu.RUnlock()
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Record appends a click and increments the owning record's counter under the
// shard's write lock, making the pair atomic with respect to every reader.
func (s *Store) Record(ctx context.Context, click *domain.Click) error {
	sh := s.shardFor(click.ShortCode)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	url, ok := sh.urls[click.ShortCode]
	if !ok {
		return domain.ErrNotFound
	}
	url.ClickCount++
	sh.clicks[click.ShortCode] = append(sh.clicks[click.ShortCode], click.Clone())
	return nil
}

// History returns the click events for a code, newest first. A code with no
// events (or whose record was deleted but never clicked) yields an empty
// slice, not an error.
func (s *Store) History(ctx context.Context, shortCode string) ([]*domain.Click, error) {
	sh := s.shardFor(shortCode)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	stored := sh.clicks[shortCode]
	out := make([]*domain.Click, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i].Clone())
	}
	// Arrival order tracks the click timestamps except under concurrent
	// appends; a stable sort makes the ordering contractual.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ClickedAt.After(out[j].ClickedAt)
	})
	return out, nil
}
