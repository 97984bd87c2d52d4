package ports

import (
	"context"
	"time"

	"github.com/DentShare/Mystom/internal/core/domain"
)

// SubscriptionUpdate is a partial change to an owner's subscription.
// Nil fields are left untouched.
type SubscriptionUpdate struct {
	Tier        *domain.Tier
	EndsAt      *time.Time
	ClearEndsAt bool
}

// AccountRepository persists accounts.
type AccountRepository interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// Create returns domain.ErrAccountExists when the telegram id is taken.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// List returns accounts newest first.
	List(ctx context.Context, limit int) ([]*domain.Account, error)
	UpdateSubscription(ctx context.Context, id string, upd SubscriptionUpdate) (*domain.Account, error)
	// Delete removes the account and, in the same transaction, resets its
	// delegates to owners and drops every link and invite that references it.
	Delete(ctx context.Context, id string) error
}
