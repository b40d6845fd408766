package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
)

// GormLedger implements Ledger with a single database transaction per tip.
type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

// Transfer debits the sender only while the balance covers the amount, so
// two racing tips cannot overdraw the wallet.
func (r *GormLedger) Transfer(ctx context.Context, tip domain.Tip) (*domain.Transaction, error) {
	l := log.Ctx(ctx)

	if tip.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if tip.SenderID == tip.RecipientID {
		return nil, domain.ErrSelfTip
	}

	model := &domain.TransactionModel{
		ID:          uuid.New().String(),
		SenderID:    tip.SenderID,
		RecipientID: tip.RecipientID,
		StreamID:    tip.StreamID,
		Amount:      tip.Amount,
		Kind:        string(domain.TransactionKindTip),
		CreatedAt:   time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		debit := tx.Model(&domain.UserModel{}).
			Where("id = ? AND wallet >= ?", tip.SenderID, tip.Amount).
			Update("wallet", gorm.Expr("wallet - ?", tip.Amount))
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&domain.UserModel{}).Where("id = ?", tip.SenderID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domain.ErrUserNotFound
			}
			return domain.ErrInsufficientBalance
		}

		credit := tx.Model(&domain.UserModel{}).
			Where("id = ?", tip.RecipientID).
			Update("wallet", gorm.Expr("wallet + ?", tip.Amount))
		if credit.Error != nil {
			return credit.Error
		}
		if credit.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}

		return tx.Create(model).Error
	})
	if err != nil {
		l.Warn().Err(err).
			Str(log.FieldStreamID, tip.StreamID).
			Str("sender_id", tip.SenderID).
			Str("recipient_id", tip.RecipientID).
			Int64("amount", tip.Amount).
			Msg("tip transfer rejected")
		return nil, err
	}

	l.Info().Str("transaction_id", model.ID).Str(log.FieldStreamID, tip.StreamID).Int64("amount", tip.Amount).Msg("tip transferred")
	return model.ToDomain(), nil
}
