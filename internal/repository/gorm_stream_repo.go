package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
)

// GormStreamRepository implements StreamRepository using GORM.
type GormStreamRepository struct {
	db *gorm.DB
}

// NewGormStreamRepository creates a new GORM-based stream repository.
func NewGormStreamRepository(db *gorm.DB) *GormStreamRepository {
	return &GormStreamRepository{db: db}
}

// GetByID retrieves a stream by ID.
func (r *GormStreamRepository) GetByID(ctx context.Context, id string) (*domain.Stream, error) {
	l := log.Ctx(ctx)

	var model domain.StreamModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStreamNotFound
		}
		l.Error().Err(result.Error).Str(log.FieldStreamID, id).Msg("failed to get stream by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// UpdateStatus flips the durable live flag and stamps started_at or ended_at.
func (r *GormStreamRepository) UpdateStatus(ctx context.Context, id string, isLive bool) error {
	l := log.Ctx(ctx)

	now := time.Now().UTC()
	updates := map[string]interface{}{"is_live": isLive}
	if isLive {
		updates["started_at"] = now
		updates["ended_at"] = nil
	} else {
		updates["ended_at"] = now
	}

	result := r.db.WithContext(ctx).
		Model(&domain.StreamModel{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldStreamID, id).Bool("is_live", isLive).Msg("failed to update stream status")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrStreamNotFound
	}

	l.Debug().Str(log.FieldStreamID, id).Bool("is_live", isLive).Msg("stream status updated")
	return nil
}
