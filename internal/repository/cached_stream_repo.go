package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/cache"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
)

// CachedStreamRepository puts a read-through cache in front of another
// StreamRepository. Concurrent misses for one stream share a single load.
type CachedStreamRepository struct {
	next  StreamRepository
	cache cache.StreamCache
	ttl   time.Duration
	sf    singleflight.Group

	// gens counts status writes per stream; a load that overlaps one
	// invalidates what it cached.
	mu   sync.Mutex
	gens map[string]uint64
}

func NewCachedStreamRepository(next StreamRepository, streamCache cache.StreamCache, ttl time.Duration) *CachedStreamRepository {
	return &CachedStreamRepository{
		next:  next,
		cache: streamCache,
		ttl:   ttl,
		gens:  make(map[string]uint64),
	}
}

func (r *CachedStreamRepository) GetByID(ctx context.Context, id string) (*domain.Stream, error) {
	l := log.Ctx(ctx)
	// shared by every waiter, so one caller's cancellation must not end it
	loadCtx := context.WithoutCancel(ctx)

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		gen := r.generation(id)

		cached, err := r.cache.Get(loadCtx, id)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l.Warn().Err(err).Str(log.FieldStreamID, id).Msg("cache get error")
		}

		stream, err := r.next.GetByID(loadCtx, id)
		if err != nil {
			return nil, err
		}

		if err := r.cache.Set(loadCtx, stream, r.ttl); err != nil {
			l.Warn().Err(err).Str(log.FieldStreamID, id).Msg("cache set error")
		}
		if r.generation(id) != gen {
			r.invalidate(loadCtx, id)
		}
		return stream, nil
	})
	if err != nil {
		return nil, err
	}

	// copy so callers never share the coalesced pointer
	stream := *result.(*domain.Stream)
	return &stream, nil
}

// UpdateStatus writes through and then drops the cached copy.
func (r *CachedStreamRepository) UpdateStatus(ctx context.Context, id string, isLive bool) error {
	if err := r.next.UpdateStatus(ctx, id, isLive); err != nil {
		return err
	}
	r.mu.Lock()
	r.gens[id]++
	r.mu.Unlock()

	r.sf.Forget(id)
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedStreamRepository) generation(id string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gens[id]
}

func (r *CachedStreamRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, id); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldStreamID, id).Msg("cache invalidate error")
	}
}
