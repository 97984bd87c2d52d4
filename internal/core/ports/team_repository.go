package ports

import (
	"context"
	"time"

	"github.com/DentShare/Mystom/internal/core/domain"
)

// TeamRepository persists delegation links and invite codes.
type TeamRepository interface {
	// FindLink returns the link of a delegate, or domain.ErrNotBound.
	FindLink(ctx context.Context, delegateID string) (*domain.DelegationLink, error)
	ListLinks(ctx context.Context, ownerID string) ([]*domain.DelegationLink, error)
	UpdateLinkPermissions(ctx context.Context, delegateID string, perms domain.PermissionMap) error

	// CreateInvite returns ErrDuplicateCode when the code already exists.
	CreateInvite(ctx context.Context, invite *domain.InviteCode) error
	// FindInvite returns the invite, or domain.ErrCodeNotFound.
	FindInvite(ctx context.Context, code string) (*domain.InviteCode, error)
	ListInvites(ctx context.Context, ownerID string) ([]*domain.InviteCode, error)

	// Redeem consumes code and binds delegateID to its owner in one
	// transaction. Deleting the code is the serialization point: a caller
	// that finds it already gone gets domain.ErrCodeAlreadyRedeemed.
	Redeem(ctx context.Context, code, delegateID string, now time.Time) (*domain.DelegationLink, error)
	// Unbind deletes the link and resets the delegate to an owner in one
	// transaction. Returns domain.ErrNotBound when no link exists.
	Unbind(ctx context.Context, delegateID string) error
}
