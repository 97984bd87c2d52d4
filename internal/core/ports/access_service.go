package ports

import (
	"context"

	"github.com/DentShare/Mystom/internal/core/domain"
)

// Decision is the outcome of a gated operation, ready to show to the user.
type Decision struct {
	Allowed bool
	Reason  error
	Message string
}

type AccessService interface {
	Resolve(ctx context.Context, account *domain.Account) (*domain.Access, error)
	ResolveTelegram(ctx context.Context, telegramID int64) (*domain.Access, error)
	Authorize(access *domain.Access, req domain.Requirement) error
	Check(ctx context.Context, telegramID int64, req domain.Requirement) (Decision, error)
}
