package ports

import (
	"context"

	"github.com/DentShare/Mystom/internal/core/domain"
	"github.com/DentShare/Mystom/pkg/initdata"
)

type AccountService interface {
	// EnsureAccount returns the account of p, creating an owner on first contact.
	EnsureAccount(ctx context.Context, p initdata.Principal) (*domain.Account, error)
	Delete(ctx context.Context, account *domain.Account) error
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context, limit int) ([]*domain.Account, error)
	// UpdateSubscription applies an admin edit. endsAt is YYYY-MM-DD, or
	// "" / "null" to clear the end date.
	UpdateSubscription(ctx context.Context, id string, tier *int, endsAt *string) (*domain.Account, error)
	IsAdmin(telegramID int64) bool
}
