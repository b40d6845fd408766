//go:generate go run go.uber.org/mock/mockgen -source=interface.go -destination=../mocks/mock_cache.go -package=mocks
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// StreamCache holds short-lived copies of stream records.
type StreamCache interface {
	Get(ctx context.Context, streamID string) (*domain.Stream, error)
	Set(ctx context.Context, stream *domain.Stream, ttl time.Duration) error
	Delete(ctx context.Context, streamIDs ...string) error
	Close() error
}
