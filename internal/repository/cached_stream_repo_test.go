package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/cache"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/mocks"
)

func TestCachedStreamRepository_HitSkipsDatabase(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	next := mocks.NewMockStreamRepository(ctrl)
	streamCache := mocks.NewMockStreamCache(ctrl)
	repo := NewCachedStreamRepository(next, streamCache, time.Minute)

	// given
	streamCache.EXPECT().Get(gomock.Any(), "S1").Return(&domain.Stream{ID: "S1", IsLive: true}, nil)

	// when
	stream, err := repo.GetByID(context.Background(), "S1")

	// then
	req.NoError(err)
	req.True(stream.IsLive)
}

func TestCachedStreamRepository_MissLoadsAndFills(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	next := mocks.NewMockStreamRepository(ctrl)
	streamCache := mocks.NewMockStreamCache(ctrl)
	repo := NewCachedStreamRepository(next, streamCache, time.Minute)

	loaded := &domain.Stream{ID: "S1", CreatorID: "u1"}
	streamCache.EXPECT().Get(gomock.Any(), "S1").Return(nil, cache.ErrCacheMiss)
	next.EXPECT().GetByID(gomock.Any(), "S1").Return(loaded, nil)
	streamCache.EXPECT().Set(gomock.Any(), loaded, time.Minute).Return(errors.New("redis down"))

	stream, err := repo.GetByID(context.Background(), "S1")

	req.NoError(err)
	req.Equal("u1", stream.CreatorID)
}

func TestCachedStreamRepository_NotFoundIsNotCached(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	next := mocks.NewMockStreamRepository(ctrl)
	streamCache := mocks.NewMockStreamCache(ctrl)
	repo := NewCachedStreamRepository(next, streamCache, time.Minute)

	streamCache.EXPECT().Get(gomock.Any(), "S1").Return(nil, cache.ErrCacheMiss)
	next.EXPECT().GetByID(gomock.Any(), "S1").Return(nil, domain.ErrStreamNotFound)

	_, err := repo.GetByID(context.Background(), "S1")

	req.ErrorIs(err, domain.ErrStreamNotFound)
}

func TestCachedStreamRepository_UpdateStatusInvalidates(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	next := mocks.NewMockStreamRepository(ctrl)
	streamCache := mocks.NewMockStreamCache(ctrl)
	repo := NewCachedStreamRepository(next, streamCache, time.Minute)

	gomock.InOrder(
		next.EXPECT().UpdateStatus(gomock.Any(), "S1", true).Return(nil),
		streamCache.EXPECT().Delete(gomock.Any(), "S1").Return(nil),
	)

	req.NoError(repo.UpdateStatus(context.Background(), "S1", true))
}

func TestCachedStreamRepository_FailedWriteKeepsCache(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	next := mocks.NewMockStreamRepository(ctrl)
	streamCache := mocks.NewMockStreamCache(ctrl)
	repo := NewCachedStreamRepository(next, streamCache, time.Minute)

	boom := errors.New("db down")
	next.EXPECT().UpdateStatus(gomock.Any(), "S1", false).Return(boom)

	req.ErrorIs(repo.UpdateStatus(context.Background(), "S1", false), boom)
}

func TestCachedStreamRepository_LoadOverlappingWriteIsInvalidated(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	next := mocks.NewMockStreamRepository(ctrl)
	streamCache := mocks.NewMockStreamCache(ctrl)
	repo := NewCachedStreamRepository(next, streamCache, time.Minute)

	// given a miss whose database read is still in flight
	stale := &domain.Stream{ID: "S1", IsLive: false}
	loading := make(chan struct{})
	release := make(chan struct{})
	streamCache.EXPECT().Get(gomock.Any(), "S1").Return(nil, cache.ErrCacheMiss)
	next.EXPECT().GetByID(gomock.Any(), "S1").DoAndReturn(func(context.Context, string) (*domain.Stream, error) {
		close(loading)
		<-release
		return stale, nil
	})
	next.EXPECT().UpdateStatus(gomock.Any(), "S1", true).Return(nil)
	streamCache.EXPECT().Set(gomock.Any(), stale, time.Minute).Return(nil)
	// once by the write, once more by the load that cached the old row
	streamCache.EXPECT().Delete(gomock.Any(), "S1").Return(nil).Times(2)

	done := make(chan error, 1)
	go func() {
		_, err := repo.GetByID(context.Background(), "S1")
		done <- err
	}()
	<-loading

	// when the status write commits before the load fills the cache
	req.NoError(repo.UpdateStatus(context.Background(), "S1", true))
	close(release)

	// then
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		t.Fatal("load did not finish")
	}
}

func TestCachedStreamRepository_LoadIgnoresCallerCancellation(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	next := mocks.NewMockStreamRepository(ctrl)
	streamCache := mocks.NewMockStreamCache(ctrl)
	repo := NewCachedStreamRepository(next, streamCache, time.Minute)

	loaded := &domain.Stream{ID: "S1", CreatorID: "u1"}
	streamCache.EXPECT().Get(gomock.Any(), "S1").Return(nil, cache.ErrCacheMiss)
	next.EXPECT().GetByID(gomock.Any(), "S1").DoAndReturn(func(ctx context.Context, _ string) (*domain.Stream, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return loaded, nil
	})
	streamCache.EXPECT().Set(gomock.Any(), loaded, time.Minute).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream, err := repo.GetByID(ctx, "S1")

	req.NoError(err)
	req.Equal("u1", stream.CreatorID)
}
