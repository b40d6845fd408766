//go:generate go run go.uber.org/mock/mockgen -source=interface.go -destination=../mocks/mock_repository.go -package=mocks
package repository

import (
	"context"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
)

// StreamRepository persists stream records and their live flag.
type StreamRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Stream, error)
	UpdateStatus(ctx context.Context, id string, isLive bool) error
}

// UserRepository reads platform accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Ledger moves tokens between wallets. Transfer either debits the sender,
// credits the recipient and records the transaction, or changes nothing.
type Ledger interface {
	Transfer(ctx context.Context, tip domain.Tip) (*domain.Transaction, error)
}
